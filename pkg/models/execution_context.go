package models

// ExecutionContext is the data an action sees when it fires: identifiers of
// the run, the triggering event, the resource snapshot, and the action's
// rendered parameters.
type ExecutionContext struct {
	ExecutionID  string           `json:"execution_id"`
	WorkflowID   string           `json:"workflow_id"`
	TenantID     string           `json:"tenant_id"`
	EventType    TriggerType      `json:"event_type"`
	ResourceType string           `json:"resource_type"`
	ResourceID   string           `json:"resource_id"`
	Resource     ResourceSnapshot `json:"resource,omitempty"`
	Params       map[string]any   `json:"params,omitempty"`
}
