package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"docvault/internal/middleware"
	"docvault/internal/models"
	"docvault/internal/service"

	"gorm.io/gorm"
)

// SeedActorID is recorded as the deciding administrator for fixture decisions.
const SeedActorID = "seed"

// Workflow is the part of the registration service the seeder drives.
type Workflow interface {
	Submit(ctx context.Context, in service.SubmitRegistrationInput) (*models.RegistrationRequest, error)
	Decide(ctx context.Context, in service.DecideRegistrationInput) (*service.Decision, error)
}

// Result counts what a seeding run did.
type Result struct {
	Created  int
	Approved int
	Rejected int
	Skipped  int
}

func (r Result) String() string {
	return fmt.Sprintf("created=%d approved=%d rejected=%d skipped=%d", r.Created, r.Approved, r.Rejected, r.Skipped)
}

// Seeder submits requests through the registration workflow so seeded data
// obeys the same validation and uniqueness rules as real traffic.
type Seeder struct {
	registrations Workflow
	factory       *Factory
}

// NewSeeder returns a Seeder. factory may be nil when only fixtures are applied.
func NewSeeder(registrations Workflow, factory *Factory) *Seeder {
	if factory == nil {
		factory = NewFactory(0)
	}
	return &Seeder{registrations: registrations, factory: factory}
}

// ApplyFixtures submits every fixture and applies its decision, if any.
// Requests that conflict with existing data are skipped.
func (s *Seeder) ApplyFixtures(ctx context.Context, fx *Fixtures) (Result, error) {
	var res Result
	if fx == nil {
		return res, nil
	}

	for i, item := range fx.Requests {
		status := strings.ToUpper(strings.TrimSpace(item.Status))
		if status != "" && status != string(models.RegistrationStatusPending) {
			if parsed, err := models.ParseRegistrationStatus(status); err != nil || !parsed.IsTerminal() {
				return res, fmt.Errorf("fixture %d (%s): unsupported status %q", i, item.Username, item.Status)
			}
		}

		req, err := s.registrations.Submit(ctx, service.SubmitRegistrationInput{
			Username: item.Username,
			Password: item.Password,
			Email:    item.Email,
		})
		if err != nil {
			if appErr, ok := models.AsAppError(err); ok && appErr.Kind == models.KindConflict {
				middleware.Logger.Info("Skipping fixture",
					slog.String("username", item.Username),
					slog.String("code", appErr.Code),
				)
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("fixture %d (%s): %w", i, item.Username, err)
		}
		res.Created++

		if status == "" || status == string(models.RegistrationStatusPending) {
			continue
		}
		if _, err := s.registrations.Decide(ctx, service.DecideRegistrationInput{
			ID:      req.ID,
			Status:  status,
			ActorID: SeedActorID,
		}); err != nil {
			return res, fmt.Errorf("fixture %d (%s): decide %s: %w", i, item.Username, status, err)
		}
		if status == string(models.RegistrationStatusApproved) {
			res.Approved++
		} else {
			res.Rejected++
		}
	}

	middleware.Logger.Info("Fixtures applied", slog.String("result", res.String()))
	return res, nil
}

// SeedFake submits n generated pending requests. Generated usernames that
// collide with existing data are retried with a fresh value.
func (s *Seeder) SeedFake(ctx context.Context, n int) ([]*models.RegistrationRequest, error) {
	created := make([]*models.RegistrationRequest, 0, n)
	for attempts := 0; len(created) < n; attempts++ {
		if attempts >= n*3 {
			return created, fmt.Errorf("generated %d of %d requests before giving up on collisions", len(created), n)
		}

		req, err := s.registrations.Submit(ctx, s.factory.RegistrationInput())
		if err != nil {
			if appErr, ok := models.AsAppError(err); ok && appErr.Kind == models.KindConflict {
				continue
			}
			return created, err
		}
		created = append(created, req)
	}

	middleware.Logger.Info("Generated pending registration requests", slog.Int("count", len(created)))
	return created, nil
}

// ClearRequests deletes every registration request. Accounts are kept.
func ClearRequests(ctx context.Context, db *gorm.DB) error {
	res := db.WithContext(ctx).Where("1 = 1").Delete(&models.RegistrationRequest{})
	if res.Error != nil {
		return fmt.Errorf("clear registration requests: %w", res.Error)
	}
	middleware.Logger.Info("Cleared registration requests", slog.Int64("rows", res.RowsAffected))
	return nil
}
