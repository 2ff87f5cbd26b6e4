package security

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	t.Parallel()
	h := NewBcryptHasher(bcrypt.MinCost)

	first, err := h.Hash("longpassword")
	require.NoError(t, err)
	second, err := h.Hash("longpassword")
	require.NoError(t, err)

	assert.NotEqual(t, "longpassword", first)
	assert.NotEqual(t, first, second, "each hash must use a fresh salt")

	for _, hash := range []string{first, second} {
		ok, err := h.Verify("longpassword", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := h.Verify("wrongpassword", first)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBcryptHasher_UsesConfiguredCost(t *testing.T) {
	t.Parallel()
	h := NewBcryptHasher(5)
	hash, err := h.Hash("longpassword")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 5, cost)
}

func TestNewBcryptHasher_OutOfRangeFallsBack(t *testing.T) {
	t.Parallel()
	assert.Equal(t, DefaultCost, NewBcryptHasher(2).Cost())
	assert.Equal(t, DefaultCost, NewBcryptHasher(32).Cost())
	assert.Equal(t, 31, NewBcryptHasher(31).Cost())
}

func TestBcryptHasher_VerifyMalformedHash(t *testing.T) {
	t.Parallel()
	h := NewBcryptHasher(bcrypt.MinCost)

	ok, err := h.Verify("longpassword", "not-a-bcrypt-hash")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrMalformedHash)
}

func TestBcryptHasher_PasswordTooLong(t *testing.T) {
	t.Parallel()
	h := NewBcryptHasher(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("é", 50))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	// bcrypt only reads the first 72 bytes, so a longer input sharing that prefix must still fail.
	limit := strings.Repeat("a", 72)
	hash, err := h.Hash(limit)
	require.NoError(t, err)

	ok, err := h.Verify(limit, hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(limit+"b", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolveCost(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		raw     string
		want    int
		warning bool
	}{
		{name: "empty uses default", raw: "", want: DefaultCost},
		{name: "valid override", raw: "12", want: 12},
		{name: "trims whitespace", raw: " 6 ", want: 6},
		{name: "lower bound", raw: "4", want: 4},
		{name: "upper bound", raw: "31", want: 31},
		{name: "below range", raw: "3", want: DefaultCost, warning: true},
		{name: "above range", raw: "32", want: DefaultCost, warning: true},
		{name: "non numeric", raw: "fast", want: DefaultCost, warning: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			assert.Equal(t, tt.want, ResolveCost(tt.raw, logger))
			if tt.warning {
				assert.Contains(t, buf.String(), "bcrypt work factor")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestGeneratePrivateKey(t *testing.T) {
	t.Parallel()
	a, err := GeneratePrivateKey()
	require.NoError(t, err)
	b, err := GeneratePrivateKey()
	require.NoError(t, err)

	assert.Len(t, a, privateKeyBytes*2)
	assert.NotEqual(t, a, b)
}
