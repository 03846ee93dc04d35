package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/models"
	"gorm.io/gorm"
)

// StartCleanup deletes system_logs older than retention once a day until ctx ends.
func StartCleanup(ctx context.Context, db *gorm.DB, retention time.Duration) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				deleted, err := PurgeLogs(db, time.Now().Add(-retention))
				if err != nil {
					slog.Error("log cleanup failed", "error", err)
				} else if deleted > 0 {
					slog.Info("log cleanup completed", "deleted", deleted)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

func PurgeLogs(db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}
