package handler

import (
	"go-inventory-pos/internal/middleware"
	"go-inventory-pos/internal/model"
	"go-inventory-pos/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// respondError writes err as {"error", "code", "details"} with the status its
// kind maps to. Unclassified errors are reported as INTERNAL without leaking
// their text.
func respondError(c *fiber.Ctx, err error) error {
	appErr := apperror.As(err)
	if appErr == nil {
		appErr = apperror.Internal(err, "internal server error")
	}

	body := fiber.Map{
		"error": appErr.Message(),
		"code":  appErr.Kind(),
	}
	if details := appErr.Details(); len(details) > 0 {
		body["details"] = details
	}
	return c.Status(apperror.HTTPStatus(appErr.Kind())).JSON(body)
}

func badRequest(c *fiber.Ctx, message string) error {
	return respondError(c, apperror.Validation(message))
}

// paramID parses the :id route parameter.
func paramID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid id")
	}
	return id, nil
}

func actorOf(c *fiber.Ctx) (model.Actor, error) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return model.Actor{}, apperror.Forbidden("unauthenticated")
	}
	return actor, nil
}

// statusQuery reads an optional ?status= filter.
func statusQuery(c *fiber.Ctx) (*model.ApprovalStatus, error) {
	status, err := model.ParseApprovalStatus(c.Query("status"))
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}
	return status, nil
}

// decisionRequest is the body of every approve/reject endpoint.
type decisionRequest struct {
	Comment string `json:"comment"`
}

func parseDecision(c *fiber.Ctx) (decisionRequest, error) {
	var req decisionRequest
	if len(c.Body()) == 0 {
		return req, nil
	}
	if err := c.BodyParser(&req); err != nil {
		return req, apperror.Validation("invalid JSON")
	}
	return req, nil
}
