package server

import (
	"docvault/internal/featureflags"
	"docvault/internal/models"
	"docvault/internal/service"

	"github.com/gofiber/fiber/v2"
)

type registrationRequestBody struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Email    string `json:"email" form:"email"`
}

type decisionBody struct {
	Status string `json:"status" form:"status"`
}

// PendingRegistration is the admin view of a pending request.
type PendingRegistration struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	CreateDate int64  `json:"create_date"`
}

// SubmitRegistration handles PUT/POST /api/user/registration
// @Summary Request an account
// @Description Submit a registration request that an administrator must approve
// @Tags registration
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body object{username=string,password=string,email=string} true "Registration request"
// @Success 200 {object} object{status=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 429 {object} object{error=string}
// @Router /user/registration [put]
// @Router /user/registration [post]
func (s *Server) SubmitRegistration(c *fiber.Ctx) error {
	if !s.featureFlags.EnabledOr(featureflags.SelfRegistration, c.IP(), true) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError(models.CodeRegistrationDisabled, "Registration is currently closed"))
	}

	var body registrationRequestBody
	if err := c.BodyParser(&body); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	req, err := s.registrations.Submit(c.UserContext(), service.SubmitRegistrationInput{
		Username: body.Username,
		Password: body.Password,
		Email:    body.Email,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	s.publishAdminEvent(c.UserContext(), EventRegistrationRequestCreated, pendingRegistration(*req))
	return statusOK(c)
}

// ListPendingRegistrations handles GET /api/user/registration
// @Summary List pending registration requests
// @Description Returns every pending request, newest first
// @Tags registration
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{requests=[]PendingRegistration}
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /user/registration [get]
func (s *Server) ListPendingRegistrations(c *fiber.Ctx) error {
	requests, err := s.registrations.ListPending(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}

	out := make([]PendingRegistration, 0, len(requests))
	for _, req := range requests {
		out = append(out, pendingRegistration(req))
	}
	return c.JSON(fiber.Map{"requests": out})
}

// DecideRegistration handles POST /api/user/registration/:id
// @Summary Approve or reject a registration request
// @Description Approving creates the account; both decisions are final
// @Tags registration
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param request body object{status=string} true "APPROVED or REJECTED"
// @Success 200 {object} object{status=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /user/registration/{id} [post]
func (s *Server) DecideRegistration(c *fiber.Ctx) error {
	var body decisionBody
	if err := c.BodyParser(&body); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	actorID := currentUserID(c)
	decision, err := s.registrations.Decide(c.UserContext(), service.DecideRegistrationInput{
		ID:      c.Params("id"),
		Status:  body.Status,
		ActorID: actorID,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	payload := fiber.Map{
		"id":       decision.Request.ID,
		"username": decision.Request.Username,
		"status":   decision.Request.Status,
		"actor_id": actorID,
	}
	if decision.Account != nil {
		payload["user_id"] = decision.Account.ID
	}
	s.publishAdminEvent(c.UserContext(), EventRegistrationRequestReviewed, payload)
	return statusOK(c)
}

func pendingRegistration(req models.RegistrationRequest) PendingRegistration {
	return PendingRegistration{
		ID:         req.ID,
		Username:   req.Username,
		Email:      req.Email,
		CreateDate: req.CreateDate.UnixMilli(),
	}
}

