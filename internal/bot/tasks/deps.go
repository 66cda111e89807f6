// Package tasks implements the scheduled maintenance tasks: audit-log
// pruning and SQLite upkeep.
package tasks

import (
	"log/slog"

	"github.com/edgard/purgebot/internal/config"
	"github.com/edgard/purgebot/internal/database"
)

// TaskDeps carries the dependencies scheduled tasks need.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Config *config.Config
}
