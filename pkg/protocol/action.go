// Package protocol defines the contracts between the workflow engine and its
// pluggable parts: actions, receivers, and the external helpdesk collaborators.
package protocol

import (
	"context"
	"log/slog"

	"github.com/deskflow/deskflow/pkg/models"
)

// Action is one executable workflow effect. Execute must contain its failure:
// an error marks this action failed in the execution history but never aborts
// sibling actions or the triggering domain event.
type Action interface {
	Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (any, error)
}

// ActionFactory builds actions of one type from rendered parameters.
// ParamsSchema returns the JSON schema the parameters are validated against
// on workflow create/update; nil means no schema-enforceable parameters.
type ActionFactory interface {
	ID() models.ActionType
	Create(params map[string]any) (Action, error)
	ParamsSchema() map[string]any
}
