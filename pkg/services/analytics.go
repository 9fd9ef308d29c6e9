package services

import (
	"context"
	"sort"
	"time"

	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/persistence"
)

const analyticsPageSize = 200

// ActionStats aggregates per-action-type outcomes across the execution
// history of one workflow.
type ActionStats struct {
	Attempted   int     `json:"attempted"`
	Succeeded   int     `json:"succeeded"`
	Failed      int     `json:"failed"`
	Skipped     int     `json:"skipped"`
	SuccessRate float64 `json:"success_rate"`
}

// TrendPoint is one day of execution activity.
type TrendPoint struct {
	Date       string `json:"date"`
	Executions int    `json:"executions"`
	Successes  int    `json:"successes"`
}

// WorkflowAnalytics is the aggregated view served by the analytics endpoint.
// Counter fields come from the workflow's running counters; the per-action
// breakdown and trend come from the execution history.
type WorkflowAnalytics struct {
	WorkflowID     string                  `json:"workflow_id"`
	ExecutionCount int                     `json:"execution_count"`
	SuccessCount   int                     `json:"success_count"`
	FailureCount   int                     `json:"failure_count"`
	SuccessRate    float64                 `json:"success_rate"`
	LastExecutedAt *time.Time              `json:"last_executed_at,omitempty"`
	ActionStats    map[string]*ActionStats `json:"action_stats"`
	Trend          []TrendPoint            `json:"trend"`
}

// Analytics aggregates execution statistics for one workflow.
func (s *Workflow) Analytics(ctx context.Context, tenantID, id string) (*WorkflowAnalytics, error) {
	wf, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	analytics := &WorkflowAnalytics{
		WorkflowID:     wf.ID,
		ExecutionCount: wf.ExecutionCount,
		SuccessCount:   wf.SuccessCount,
		FailureCount:   wf.ExecutionCount - wf.SuccessCount,
		SuccessRate:    wf.SuccessRate,
		LastExecutedAt: wf.LastExecutedAt,
		ActionStats:    map[string]*ActionStats{},
	}

	trendByDay := map[string]*TrendPoint{}

	for offset := 0; ; offset += analyticsPageSize {
		executions, total, err := s.persistence.ExecutionRepository().ListByWorkflow(ctx, id,
			persistence.ListExecutionsOptions{Limit: analyticsPageSize, Offset: offset})
		if err != nil {
			return nil, err
		}

		for _, execution := range executions {
			accumulate(analytics.ActionStats, trendByDay, execution)
		}

		if offset+len(executions) >= total || len(executions) == 0 {
			break
		}
	}

	for _, stats := range analytics.ActionStats {
		if stats.Attempted > 0 {
			stats.SuccessRate = float64(stats.Succeeded) / float64(stats.Attempted) * 100
		}
	}

	analytics.Trend = make([]TrendPoint, 0, len(trendByDay))
	for _, point := range trendByDay {
		analytics.Trend = append(analytics.Trend, *point)
	}

	sort.Slice(analytics.Trend, func(i, j int) bool {
		return analytics.Trend[i].Date < analytics.Trend[j].Date
	})

	return analytics, nil
}

func accumulate(actionStats map[string]*ActionStats, trendByDay map[string]*TrendPoint, execution *models.WorkflowExecution) {
	day := execution.StartedAt.UTC().Format("2006-01-02")

	point, ok := trendByDay[day]
	if !ok {
		point = &TrendPoint{Date: day}
		trendByDay[day] = point
	}

	point.Executions++

	if execution.Status == models.ExecutionStatusSuccess {
		point.Successes++
	}

	for _, action := range execution.ExecutedActions {
		if action == nil {
			continue
		}

		stats, ok := actionStats[string(action.Type)]
		if !ok {
			stats = &ActionStats{}
			actionStats[string(action.Type)] = stats
		}

		switch action.Status {
		case models.ExecutionStatusSuccess:
			stats.Attempted++
			stats.Succeeded++
		case models.ExecutionStatusFailed:
			stats.Attempted++
			stats.Failed++
		case models.ExecutionStatusSkipped:
			stats.Skipped++
		case models.ExecutionStatusPending:
		}
	}
}
