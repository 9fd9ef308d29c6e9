package models

// TriggerType selects which domain events a workflow listens to. The values
// double as event bus event types.
type TriggerType string

const (
	TriggerTicketCreated    TriggerType = "ticket.created"
	TriggerTicketUpdated    TriggerType = "ticket.updated"
	TriggerTicketAssigned   TriggerType = "ticket.assigned"
	TriggerSLABreach        TriggerType = "sla.breach"
	TriggerCustomerResponse TriggerType = "customer.response"
	TriggerTimeBased        TriggerType = "time.based"
	TriggerManual           TriggerType = "manual"
)

// TriggerTypes lists every known trigger type, used for validation and the
// template catalog.
func TriggerTypes() []TriggerType {
	return []TriggerType{
		TriggerTicketCreated,
		TriggerTicketUpdated,
		TriggerTicketAssigned,
		TriggerSLABreach,
		TriggerCustomerResponse,
		TriggerTimeBased,
		TriggerManual,
	}
}

// WorkflowTrigger gates workflow execution: the event type must match and the
// conditions, folded with LogicalOperator, must hold on the resource snapshot.
// An empty condition list is an unconditional trigger.
//
// Schedule carries a cron expression and is only meaningful for time.based
// triggers; the schedule receiver fires one time.based event per tick.
type WorkflowTrigger struct {
	Type            TriggerType          `json:"type"                validate:"required"`
	Conditions      []*WorkflowCondition `json:"conditions"`
	LogicalOperator LogicalOperator      `json:"logical_operator"`
	Schedule        string               `json:"schedule,omitempty"`
}
