// Package file provides file-based persistence for workflows, executions,
// and webhooks. Intended for development and tests; each entity is one JSON
// document under the root directory.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/deskflow/deskflow/pkg/persistence"
)

// Persistence implements persistence.Persistence on the local file system.
type Persistence struct {
	root string

	// Guards read-modify-write cycles (counter increments) across
	// repositories sharing the same root.
	mu sync.Mutex

	workflowRepo  *WorkflowRepository
	executionRepo *ExecutionRepository
	webhookRepo   *WebhookRepository
}

// NewPersistence creates a file persistence rooted at the given directory.
// Accepts plain paths and file:// URLs.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	p := &Persistence{root: cleanRoot}
	p.workflowRepo = &WorkflowRepository{store: p}
	p.executionRepo = &ExecutionRepository{store: p}
	p.webhookRepo = &WebhookRepository{store: p}

	return p
}

func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflowRepo
}

func (p *Persistence) ExecutionRepository() persistence.ExecutionRepository {
	return p.executionRepo
}

func (p *Persistence) WebhookRepository() persistence.WebhookRepository {
	return p.webhookRepo
}

// HealthCheck verifies the root directory exists, creating it when missing.
func (p *Persistence) HealthCheck(_ context.Context) error {
	return os.MkdirAll(p.root, 0o755)
}

// Close is a no-op for file persistence.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}

func (p *Persistence) entityPath(kind, id string) string {
	return filepath.Join(p.root, kind, id+".json")
}

func (p *Persistence) writeEntity(kind, id string, entity any) error {
	dir := filepath.Join(p.root, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", kind, err)
	}

	data, err := json.MarshalIndent(entity, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s %s: %w", kind, id, err)
	}

	return os.WriteFile(p.entityPath(kind, id), data, 0o644)
}

// readEntity loads one entity; found is false when the file does not exist.
func (p *Persistence) readEntity(kind, id string, entity any) (bool, error) {
	data, err := os.ReadFile(p.entityPath(kind, id))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, fmt.Errorf("failed to read %s %s: %w", kind, id, err)
	}

	if err := json.Unmarshal(data, entity); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s %s: %w", kind, id, err)
	}

	return true, nil
}

func (p *Persistence) listIDs(kind string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(p.root, kind))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to list %s directory: %w", kind, err)
	}

	ids := make([]string, 0, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}

	return ids, nil
}

func (p *Persistence) deleteEntity(kind, id string) (bool, error) {
	err := os.Remove(p.entityPath(kind, id))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, fmt.Errorf("failed to delete %s %s: %w", kind, id, err)
	}

	return true, nil
}
