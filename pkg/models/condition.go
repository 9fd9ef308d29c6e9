package models

// ConditionOperator is the comparison applied to a resolved field value.
type ConditionOperator string

const (
	OperatorEquals      ConditionOperator = "equals"
	OperatorNotEquals   ConditionOperator = "not_equals"
	OperatorContains    ConditionOperator = "contains"
	OperatorGreaterThan ConditionOperator = "greater_than"
	OperatorLessThan    ConditionOperator = "less_than"
	OperatorIsEmpty     ConditionOperator = "is_empty"
	OperatorIsNotEmpty  ConditionOperator = "is_not_empty"
)

// LogicalOperator combines condition results at the trigger level.
type LogicalOperator string

const (
	LogicalAnd LogicalOperator = "AND"
	LogicalOr  LogicalOperator = "OR"
)

// WorkflowCondition is one predicate over a named field of the triggering
// resource. Field is resolved by dotted-path lookup against the snapshot.
//
// LogicalOperator on the condition itself is stored but inert: only the
// trigger-level operator governs how conditions combine.
type WorkflowCondition struct {
	ID              string            `json:"id"`
	Field           string            `json:"field"    validate:"required"`
	Operator        ConditionOperator `json:"operator" validate:"required"`
	Value           any               `json:"value"`
	LogicalOperator LogicalOperator   `json:"logical_operator,omitempty"`
}

// KnownOperator reports whether op is one of the supported comparison operators.
func KnownOperator(op ConditionOperator) bool {
	switch op {
	case OperatorEquals, OperatorNotEquals, OperatorContains,
		OperatorGreaterThan, OperatorLessThan, OperatorIsEmpty, OperatorIsNotEmpty:
		return true
	}

	return false
}
