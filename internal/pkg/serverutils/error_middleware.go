package serverutils

import (
	"errors"

	"restaurant-advisor-be/pkg/advisor/errs"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps the advisor error taxonomy to HTTP statuses
// with plain-language messages. Collaborator detail stays in the logs and
// never reaches the client.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		switch {
		case errors.Is(err, errs.ErrInvalidQuery):
			return ErrorResponse(ctx, fiber.StatusBadRequest, "The query is empty or unreadable. Please rephrase and try again.")
		case errors.Is(err, errs.ErrSessionInvalid):
			return ErrorResponse(ctx, fiber.StatusUnauthorized, "The session is not valid. Please start a new session.")
		case errors.Is(err, errs.ErrAllSourcesUnavailable):
			return ErrorResponse(ctx, fiber.StatusServiceUnavailable, "Evidence sources are currently unavailable. Please try again shortly.")
		case errors.Is(err, errs.ErrCollaboratorTimeout),
			errors.Is(err, errs.ErrCollaboratorUnavailable):
			return ErrorResponse(ctx, fiber.StatusServiceUnavailable, "A supporting service did not respond in time. Please try again.")
		case errors.Is(err, errs.ErrInvalidConfiguration):
			return ErrorResponse(ctx, fiber.StatusInternalServerError, "The service is misconfigured. Please contact support.")
		}

		var denied *errs.PermissionDenied
		if errors.As(err, &denied) {
			return ErrorResponse(ctx, fiber.StatusForbidden, denied.Error())
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ErrorResponse(ctx, fiberErr.Code, fiberErr.Message)
		}

		return ErrorResponse(ctx, fiber.StatusInternalServerError, "Something went wrong. Please try again.")
	}
}
