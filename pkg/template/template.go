// Package template renders dynamic action parameters against the triggering
// resource snapshot, e.g. "Ticket {{.ticket.id}} breached its SLA".
package template

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/deskflow/deskflow/pkg/models"
)

// RenderParams resolves every string value in params as a template over the
// execution context. Non-string values and nested structures pass through
// with their string leaves rendered. Rendering is best-effort: a value whose
// template fails to parse is kept verbatim so a typo in one parameter cannot
// sink the whole action.
func RenderParams(params map[string]any, executionCtx models.ExecutionContext) map[string]any {
	data := map[string]any{
		"ticket":   map[string]any(executionCtx.Resource),
		"resource": map[string]any(executionCtx.Resource),
		"event": map[string]any{
			"type":          string(executionCtx.EventType),
			"resource_type": executionCtx.ResourceType,
			"resource_id":   executionCtx.ResourceID,
		},
		"workflow": map[string]any{
			"id":           executionCtx.WorkflowID,
			"execution_id": executionCtx.ExecutionID,
			"tenant_id":    executionCtx.TenantID,
		},
	}

	return renderValue(params, data).(map[string]any)
}

func renderValue(value any, data map[string]any) any {
	switch v := value.(type) {
	case string:
		rendered, err := Render(v, data)
		if err != nil {
			return v
		}

		return rendered
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = renderValue(item, data)
		}

		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = renderValue(item, data)
		}

		return out
	default:
		return value
	}
}

// Render executes a single template string and coerces the result back into
// a JSON value, number, or boolean when it looks like one.
func Render(templateStr string, data any) (any, error) {
	if !strings.Contains(templateStr, "{{") {
		return templateStr, nil
	}

	tmpl, err := template.
		New("params").
		Option("missingkey=zero").
		Funcs(template.FuncMap{
			"now": func() string {
				return time.Now().UTC().Format(time.RFC3339)
			},
			"upper": strings.ToUpper,
			"lower": strings.ToLower,
		}).Parse(templateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %q: %w", templateStr, err)
	}

	var buf strings.Builder

	err = tmpl.Execute(&buf, data)
	if err != nil {
		return nil, fmt.Errorf("failed to execute template %q: %w", templateStr, err)
	}

	result := strings.TrimSpace(buf.String())

	// "<no value>" means a missing path rendered into the output; keep it
	// empty rather than leaking template internals into notifications.
	result = strings.ReplaceAll(result, "<no value>", "")

	if (strings.HasPrefix(result, "{") && strings.HasSuffix(result, "}")) ||
		(strings.HasPrefix(result, "[") && strings.HasSuffix(result, "]")) {
		var jsonResult any
		if err := json.Unmarshal([]byte(result), &jsonResult); err == nil {
			return jsonResult, nil
		}
	}

	if num, err := strconv.ParseFloat(result, 64); err == nil {
		return num, nil
	}

	if b, err := strconv.ParseBool(result); err == nil {
		return b, nil
	}

	return result, nil
}
