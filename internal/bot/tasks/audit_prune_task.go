package tasks

import (
	"context"
	"fmt"
)

// newAuditPruneTask creates the task that trims audit rows past the
// configured retention window.
func newAuditPruneTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "audit_prune")

	return func(ctx context.Context) error {
		pruned, err := deps.Store.PruneOlderThan(ctx, deps.Config.Audit.Retention)
		if err != nil {
			log.ErrorContext(ctx, "Audit prune failed", "error", err)
			return fmt.Errorf("audit prune failed: %w", err)
		}
		log.InfoContext(ctx, "Audit prune completed",
			"pruned", pruned, "retention", deps.Config.Audit.Retention)
		return nil
	}
}
