// Package services implements the management operations behind the REST API:
// workflow CRUD and validation, execution history, analytics, the template
// catalog, and the webhook registry.
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/deskflow/deskflow/pkg/persistence"
)

var (
	// ErrWorkflowNotFound is returned when a workflow does not exist or
	// belongs to another tenant.
	ErrWorkflowNotFound = persistence.ErrWorkflowNotFound
	// ErrWebhookNotFound is the webhook equivalent.
	ErrWebhookNotFound = persistence.ErrWebhookNotFound

	// ErrInvalidRequest marks malformed request shapes the DTO layer let
	// through.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrWorkflowInactive is returned on manual execution of a paused
	// workflow.
	ErrWorkflowInactive = errors.New("workflow is inactive")
)

// ValidationIssue is one problem found in a workflow or webhook definition.
// Field is a dotted path into the submitted document.
type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries the full list of definition problems. The API
// returns all of them at once rather than the first one found.
type ValidationError struct {
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation failed"
	}

	messages := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		messages[i] = fmt.Sprintf("%s: %s", issue.Field, issue.Message)
	}

	return "validation failed: " + strings.Join(messages, "; ")
}

// IsValidationError checks if an error should surface as HTTP 400 with a
// structured issue list.
func IsValidationError(err error) bool {
	var validationErr *ValidationError

	return errors.As(err, &validationErr) || errors.Is(err, ErrInvalidRequest)
}

// IsNotFound checks if an error should surface as HTTP 404.
func IsNotFound(err error) bool {
	return persistence.IsWorkflowNotFound(err) || persistence.IsWebhookNotFound(err)
}

// IsConflict checks if an error should surface as HTTP 409.
func IsConflict(err error) bool {
	return errors.Is(err, ErrWorkflowInactive)
}
