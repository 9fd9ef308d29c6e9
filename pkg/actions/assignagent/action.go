// Package assignagent implements the assign_agent workflow action.
package assignagent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/protocol"
)

// DefaultStrategy is used when the action does not name one.
const DefaultStrategy = "round_robin"

// ErrNoAssignmentTarget is returned when neither agent_id nor a selection
// strategy yields an agent.
var ErrNoAssignmentTarget = errors.New("no agent to assign")

// Action assigns an agent to the triggering resource, either a fixed agent_id
// or one picked from the directory by strategy.
type Action struct {
	AgentID    string
	Strategy   string
	Department string

	resources protocol.ResourceService
	directory protocol.AgentDirectory
}

func NewAction(params map[string]any, resources protocol.ResourceService, directory protocol.AgentDirectory) (*Action, error) {
	agentID, _ := params["agent_id"].(string)

	strategy, _ := params["strategy"].(string)
	if strategy == "" {
		strategy = DefaultStrategy
	}

	department, _ := params["department"].(string)

	return &Action{
		AgentID:    agentID,
		Strategy:   strategy,
		Department: department,
		resources:  resources,
		directory:  directory,
	}, nil
}

func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (any, error) {
	logger = logger.With("action_type", models.ActionAssignAgent)

	agentID := a.AgentID
	if agentID == "" {
		selected, err := a.directory.NextAgent(ctx, a.Department, a.Strategy)
		if err != nil {
			return nil, fmt.Errorf("agent selection failed: %w", err)
		}

		agentID = selected
	}

	if agentID == "" {
		return nil, ErrNoAssignmentTarget
	}

	err := a.resources.UpdateField(ctx, executionCtx.ResourceID, "owner_id", agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to assign agent: %w", err)
	}

	logger.InfoContext(ctx, "Assigned agent", "agent_id", agentID, "resource_id", executionCtx.ResourceID)

	return map[string]any{"agent_id": agentID, "strategy": a.Strategy}, nil
}
