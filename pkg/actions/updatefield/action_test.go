package updatefield

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/deskflow/deskflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResources struct {
	fields  map[string]any
	updates []string
}

func (f *fakeResources) GetField(_ context.Context, _, path string) (any, error) {
	return f.fields[path], nil
}

func (f *fakeResources) UpdateField(_ context.Context, _, path string, value any) error {
	f.fields[path] = value
	f.updates = append(f.updates, path)

	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUpdatePriority(t *testing.T) {
	resources := &fakeResources{fields: map[string]any{"priority": "normal"}}

	action, err := NewPriorityFactory(resources).Create(map[string]any{"priority": "urgent"})
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), models.ExecutionContext{ResourceID: "T-1"}, testLogger())
	require.NoError(t, err)

	assert.Equal(t, "urgent", resources.fields["priority"])
	assert.Equal(t, map[string]any{"field": "priority", "value": any("urgent"), "changed": true}, result)
}

func TestUpdateStatusMissingValue(t *testing.T) {
	resources := &fakeResources{fields: map[string]any{}}

	_, err := NewStatusFactory(resources).Create(map[string]any{})
	require.ErrorIs(t, err, ErrMissingValue)
}

func TestAddTagAppends(t *testing.T) {
	resources := &fakeResources{fields: map[string]any{"tags": []any{"vip"}}}

	action, err := NewTagFactory(resources).Create(map[string]any{"tag": "escalated"})
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), models.ExecutionContext{ResourceID: "T-1"}, testLogger())
	require.NoError(t, err)

	assert.Equal(t, []string{"vip", "escalated"}, resources.fields["tags"])
}

func TestAddTagSkipsDuplicate(t *testing.T) {
	resources := &fakeResources{fields: map[string]any{"tags": []string{"vip"}}}

	action, err := NewTagFactory(resources).Create(map[string]any{"tag": "vip"})
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), models.ExecutionContext{ResourceID: "T-1"}, testLogger())
	require.NoError(t, err)

	assert.Empty(t, resources.updates)

	resultMap, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, resultMap["changed"])
}
