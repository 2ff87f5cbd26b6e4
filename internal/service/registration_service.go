package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"docvault/internal/middleware"
	"docvault/internal/models"
	"docvault/internal/observability"
	"docvault/internal/repository"
	"docvault/internal/security"
	"docvault/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// RegistrationService drives registration requests through PENDING -> APPROVED | REJECTED.
type RegistrationService struct {
	requests    repository.RegistrationRequestRepository
	accounts    AccountStore
	hasher      security.PasswordHasher
	tx          repository.Transactor
	provisioner *AccountProvisioner
	audit       AuditRecorder
	forget      func(ctx context.Context, username string)
}

type SubmitRegistrationInput struct {
	Username string
	Password string
	Email    string
}

type DecideRegistrationInput struct {
	ID      string
	Status  string
	ActorID string
}

// Decision is the outcome of a successful Decide. Account is set only for approvals.
type Decision struct {
	Request *models.RegistrationRequest
	Account *models.User
}

func NewRegistrationService(
	requests repository.RegistrationRequestRepository,
	accounts AccountStore,
	hasher security.PasswordHasher,
	tx repository.Transactor,
	provisioner *AccountProvisioner,
	audit AuditRecorder,
) *RegistrationService {
	if audit == nil {
		audit = noopAuditRecorder
	}
	if provisioner == nil {
		provisioner = NewAccountProvisioner(ProvisioningDefaults{})
	}
	return &RegistrationService{
		requests:    requests,
		accounts:    accounts,
		hasher:      hasher,
		tx:          tx,
		provisioner: provisioner,
		audit:       audit,
		forget:      ForgetRegistrationStatus,
	}
}

// Submit validates the input and stores a new PENDING request for it.
func (s *RegistrationService) Submit(ctx context.Context, in SubmitRegistrationInput) (req *models.RegistrationRequest, err error) {
	span, ctx := observability.NewSpan(ctx, "RegistrationService.Submit")
	defer span.End()
	defer func() {
		observability.RegistrationSubmissions.WithLabelValues(observability.Outcome(err)).Inc()
		span.SetError(err)
	}()

	username, password, email, err := normalizeSubmission(in)
	if err != nil {
		return nil, err
	}
	span.AddAttributes(attribute.String("registration.username", username))

	existing, err := s.accounts.FindActiveByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError(models.CodeAlreadyExistingUsername, "Username already in use")
	}

	pending, err := s.requests.GetPendingByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, models.NewConflictError(models.CodeAlreadyExistingRequest,
			"A pending registration request already exists for this username")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooLong) {
			return nil, models.NewValidationError("password is too long")
		}
		return nil, models.NewInternalError(fmt.Errorf("hash password: %w", err))
	}

	req = &models.RegistrationRequest{
		Username:     username,
		PasswordHash: hash,
		Email:        email,
		Status:       models.RegistrationStatusPending,
	}
	// The partial unique index still rejects a concurrent submission that got past the check above.
	if _, err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	s.forget(ctx, req.Username)
	middleware.Logger.InfoContext(ctx, "Registration request submitted",
		slog.String("request_id", req.ID),
		slog.String("username", req.Username),
	)
	return req, nil
}

func normalizeSubmission(in SubmitRegistrationInput) (string, string, string, error) {
	username, err := validation.Required("username", in.Username)
	if err != nil {
		return "", "", "", models.NewValidationError(err.Error())
	}
	if strings.TrimSpace(in.Password) == "" {
		return "", "", "", models.NewValidationError("password is required")
	}
	email, err := validation.Required("email", in.Email)
	if err != nil {
		return "", "", "", models.NewValidationError(err.Error())
	}

	if err := validation.ValidateUsername(username); err != nil {
		return "", "", "", models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return "", "", "", models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return "", "", "", models.NewValidationError(err.Error())
	}
	return username, in.Password, email, nil
}

// Decide approves or rejects a PENDING request. Approval provisions the account in
// the same transaction as the status change.
func (s *RegistrationService) Decide(ctx context.Context, in DecideRegistrationInput) (result *Decision, err error) {
	span, ctx := observability.NewSpan(ctx, "RegistrationService.Decide",
		attribute.String("registration.id", in.ID),
		attribute.String("registration.decision", in.Status),
	)
	defer span.End()
	defer func() {
		observability.RegistrationDecisions.WithLabelValues(decisionLabel(in.Status), observability.Outcome(err)).Inc()
		span.SetError(err)
	}()

	decision, err := parseDecision(in.Status)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateIdentifier(in.ID); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	result = &Decision{}
	err = s.tx.RunInTx(ctx, func(ctx context.Context, stores repository.Stores) error {
		req, err := stores.Requests.GetByID(ctx, in.ID)
		if err != nil {
			return err
		}
		if req == nil || !req.Status.CanTransitionTo(decision) {
			return models.NewNotFoundError("Pending registration request", in.ID)
		}

		swapped, err := stores.Requests.TransitionStatus(ctx, req.ID, models.RegistrationStatusPending, decision)
		if err != nil {
			return err
		}
		if !swapped {
			// Another administrator decided it between the read and the update.
			return models.NewNotFoundError("Pending registration request", in.ID)
		}
		req.Status = decision
		result.Request = req

		if decision != models.RegistrationStatusApproved {
			return nil
		}
		account, err := s.provisioner.Provision(ctx, stores.Users, req)
		if err != nil {
			return models.NewInternalError(fmt.Errorf("provision account for request %s: %w", req.ID, err))
		}
		result.Account = account
		return nil
	})
	if err != nil {
		if _, ok := models.AsAppError(err); !ok {
			err = models.NewInternalError(err)
		}
		if appErr, _ := models.AsAppError(err); !appErr.IsClientError() {
			middleware.Logger.ErrorContext(ctx, "Registration decision failed",
				slog.String("request_id", in.ID),
				slog.String("decision", string(decision)),
				slog.String("error", err.Error()),
			)
		}
		return nil, err
	}

	s.forget(ctx, result.Request.Username)
	middleware.Logger.InfoContext(ctx, "Registration request decided",
		slog.String("request_id", result.Request.ID),
		slog.String("username", result.Request.Username),
		slog.String("decision", string(decision)),
		slog.String("actor_id", in.ActorID),
	)

	if result.Account != nil {
		observability.AccountsProvisioned.Inc()
		s.recordAccountCreation(ctx, result.Account, in.ActorID)
	}
	return result, nil
}

// recordAccountCreation runs after commit; a failure leaves the approval in place.
func (s *RegistrationService) recordAccountCreation(ctx context.Context, account *models.User, actorID string) {
	err := s.audit.Record(ctx, AuditEntry{
		EntityID:    account.ID,
		EntityClass: "User",
		Type:        models.AuditLogCreate,
		ActorID:     actorID,
		Message:     account.Username,
	})
	if err != nil {
		observability.AuditWriteFailures.Inc()
		middleware.Logger.ErrorContext(ctx, "Failed to record account creation audit entry",
			slog.String("entity_id", account.ID),
			slog.String("actor_id", actorID),
			slog.String("error", err.Error()),
		)
	}
}

func parseDecision(raw string) (models.RegistrationStatus, error) {
	if err := validation.Length("status", raw, validation.StatusMinLength, validation.StatusMaxLength); err != nil {
		return "", models.NewValidationError(err.Error())
	}
	status, err := models.ParseRegistrationStatus(raw)
	if err != nil || !status.IsTerminal() {
		return "", models.NewValidationError("status must be APPROVED or REJECTED")
	}
	return status, nil
}

// decisionLabel keeps the metric label set closed.
func decisionLabel(raw string) string {
	switch models.RegistrationStatus(raw) {
	case models.RegistrationStatusApproved, models.RegistrationStatusRejected:
		return raw
	default:
		return "invalid"
	}
}

// ListPending returns every PENDING request, newest first.
func (s *RegistrationService) ListPending(ctx context.Context) ([]models.RegistrationRequest, error) {
	return s.requests.FindAllPending(ctx)
}

// LookupStatus reports the status of the latest request for username. Lookup
// failures are logged and reported as absent.
func (s *RegistrationService) LookupStatus(ctx context.Context, username string) (models.RegistrationStatus, bool) {
	req, err := s.requests.GetByUsername(ctx, username)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "Registration status lookup failed",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return "", false
	}
	if req == nil {
		return "", false
	}
	return req.Status, true
}
