package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-order-errors/internal/domain"
)

// ErrorEventsStats returns the number of captured error events and the
// capture time of the newest one (nil when there are none).
func ErrorEventsStats(ctx context.Context, db *gorm.DB) (count int64, latest *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.ErrorEvent{})

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest created_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedAt time.Time
	}
	if err = q.Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}
