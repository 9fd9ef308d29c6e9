package services

import "github.com/deskflow/deskflow/pkg/models"

// WorkflowTemplate is one predefined trigger/action bundle from the static
// catalog. Templates are starting points: the client copies one into a create
// request and adjusts it, they are not tenant data.
type WorkflowTemplate struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Category    string                  `json:"category"`
	Trigger     *models.WorkflowTrigger `json:"trigger"`
	Actions     []*models.WorkflowAction `json:"actions"`
}

// Templates returns the static template catalog.
func Templates() []WorkflowTemplate {
	return []WorkflowTemplate{
		{
			ID:          "high-priority-escalation",
			Name:        "High priority escalation",
			Description: "Notify the support lead and escalate when a high priority ticket is created and nobody picks it up.",
			Category:    "escalation",
			Trigger: &models.WorkflowTrigger{
				Type:            models.TriggerTicketCreated,
				LogicalOperator: models.LogicalAnd,
				Conditions: []*models.WorkflowCondition{
					{Field: "priority", Operator: models.OperatorEquals, Value: "high"},
				},
			},
			Actions: []*models.WorkflowAction{
				{
					Type:    models.ActionSendNotification,
					Params:  map[string]any{"recipients": []any{"support-leads"}, "message": "High priority ticket {{.ticket.number}} needs attention"},
					Enabled: true,
				},
				{
					Type:         models.ActionEscalate,
					Params:       map[string]any{"to": "tier-2", "reason": "unhandled high priority ticket"},
					DelaySeconds: 1800,
					Enabled:      true,
				},
			},
		},
		{
			ID:          "vip-customer-alert",
			Name:        "VIP customer alert",
			Description: "Flag and route tickets from enterprise customers the moment they arrive.",
			Category:    "routing",
			Trigger: &models.WorkflowTrigger{
				Type:            models.TriggerTicketCreated,
				LogicalOperator: models.LogicalOr,
				Conditions: []*models.WorkflowCondition{
					{Field: "customer.tier", Operator: models.OperatorEquals, Value: "enterprise"},
					{Field: "tags", Operator: models.OperatorContains, Value: "vip"},
				},
			},
			Actions: []*models.WorkflowAction{
				{Type: models.ActionAddTag, Params: map[string]any{"tag": "vip"}, Enabled: true},
				{Type: models.ActionAssignAgent, Params: map[string]any{"strategy": "round_robin", "department": "enterprise-support"}, Enabled: true},
			},
		},
		{
			ID:          "sla-breach-response",
			Name:        "SLA breach response",
			Description: "Escalate breached tickets, raise their priority, and alert the on-call channel.",
			Category:    "sla",
			Trigger: &models.WorkflowTrigger{
				Type: models.TriggerSLABreach,
			},
			Actions: []*models.WorkflowAction{
				{Type: models.ActionUpdatePriority, Params: map[string]any{"priority": "urgent"}, Enabled: true},
				{Type: models.ActionEscalate, Params: map[string]any{"to": "on-call", "reason": "SLA breached"}, Enabled: true},
				{
					Type:    models.ActionSendNotification,
					Params:  map[string]any{"recipients": []any{"on-call"}, "channels": []any{"chat"}, "message": "SLA breach on {{.ticket.number}}", "priority": "urgent"},
					Enabled: true,
				},
			},
		},
		{
			ID:          "auto-assign-new-tickets",
			Name:        "Auto-assign new tickets",
			Description: "Distribute unassigned incoming tickets round-robin across the support department.",
			Category:    "routing",
			Trigger: &models.WorkflowTrigger{
				Type: models.TriggerTicketCreated,
				Conditions: []*models.WorkflowCondition{
					{Field: "owner_id", Operator: models.OperatorIsEmpty},
				},
			},
			Actions: []*models.WorkflowAction{
				{Type: models.ActionAssignAgent, Params: map[string]any{"strategy": "round_robin", "department": "support"}, Enabled: true},
			},
		},
		{
			ID:          "customer-response-followup",
			Name:        "Customer response follow-up",
			Description: "Create a follow-up task for the owner when a customer replies on a pending ticket.",
			Category:    "follow-up",
			Trigger: &models.WorkflowTrigger{
				Type: models.TriggerCustomerResponse,
				Conditions: []*models.WorkflowCondition{
					{Field: "state", Operator: models.OperatorEquals, Value: "pending"},
				},
			},
			Actions: []*models.WorkflowAction{
				{
					Type:    models.ActionCreateTask,
					Params:  map[string]any{"title": "Reply to customer on {{.ticket.number}}", "assignee": "{{.ticket.owner_id}}", "due_date": "+1d"},
					Enabled: true,
				},
			},
		},
	}
}
