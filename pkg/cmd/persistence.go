package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/deskflow/deskflow/pkg/persistence"
	"github.com/deskflow/deskflow/pkg/persistence/file"
	"github.com/deskflow/deskflow/pkg/persistence/postgresql"
)

// NewPersistence picks the storage backend from the database URL scheme.
// postgres:// gets the SQL backend; anything else falls back to the JSON file
// store, which is what local development runs on.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	default:
		return file.NewPersistence(databaseURL), nil
	}
}
