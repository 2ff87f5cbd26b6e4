package seed

import (
	"fmt"
	"strings"

	"docvault/internal/service"
	"docvault/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
)

// Factory generates registration input that passes validation.
type Factory struct {
	faker *gofakeit.Faker
}

// NewFactory returns a Factory. A zero seed draws a random one.
func NewFactory(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed)}
}

// RegistrationInput builds a fresh submission with a plausible username,
// a 12 character password and a matching email address.
func (f *Factory) RegistrationInput() service.SubmitRegistrationInput {
	username := fmt.Sprintf("%s%d", strings.ToLower(f.faker.Username()), f.faker.Number(10, 9999))
	username = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
			return r
		}
		return -1
	}, username)
	if len(username) > validation.UsernameMaxLength {
		username = username[:validation.UsernameMaxLength]
	}

	return service.SubmitRegistrationInput{
		Username: username,
		Password: f.faker.Password(true, true, true, false, false, 12),
		Email:    username + "@" + strings.ToLower(f.faker.DomainName()),
	}
}
