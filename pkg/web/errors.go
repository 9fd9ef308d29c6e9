package web

import (
	"errors"

	"github.com/deskflow/deskflow/pkg/services"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// validationFailed returns the full issue list, one entry per problem found
// in the submitted definition.
func validationFailed(c fiber.Ctx, issues []services.ValidationIssue) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"type":   "validation_error",
		"title":  "Validation failed",
		"status": fiber.StatusBadRequest,
		"errors": issues,
	})
}

// handleServiceError maps service layer errors onto HTTP statuses.
func handleServiceError(c fiber.Ctx, err error) error {
	var validationErr *services.ValidationError

	switch {
	case errors.As(err, &validationErr):
		return validationFailed(c, validationErr.Issues)

	case services.IsValidationError(err):
		return badRequest(c, err.Error())

	case services.IsConflict(err):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("conflict").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	case services.IsNotFound(err):
		return notFound(c, err.Error())

	default:
		return internalError(c, err)
	}
}
