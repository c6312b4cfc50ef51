package repo

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"

	"github.com/tbourn/go-order-errors/internal/apperr"
	"github.com/tbourn/go-order-errors/internal/domain"
)

// newEventID returns a ULID, so event ids sort by capture time.
var newEventID = func() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// ErrorEventStore captures rendered error responses. It satisfies the
// recorder contract of the error middleware.
type ErrorEventStore struct {
	DB *gorm.DB
}

// RecordError stores resp as sent to the caller of requestID.
func (s *ErrorEventStore) RecordError(ctx context.Context, resp apperr.Response, requestID string) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	ev := &domain.ErrorEvent{
		ID:        newEventID(),
		RequestID: requestID,
		Code:      int(resp.Code),
		Category:  string(resp.Category),
		Name:      resp.Error,
		Status:    resp.Status,
		Instance:  resp.Instance,
		Payload:   string(payload),
		CreatedAt: time.Now().UTC(),
	}
	return Translate(s.DB.WithContext(ctx).Create(ev).Error, "INSERT", "error_events")
}

// CountErrorEvents returns the number of captured events.
func CountErrorEvents(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.ErrorEvent{}).Count(&total).Error
	return total, Translate(err, "SELECT", "error_events")
}

// ListErrorEventsPage returns a page of events, newest first.
func ListErrorEventsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.ErrorEvent, error) {
	var out []domain.ErrorEvent
	err := db.WithContext(ctx).
		Order("id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, Translate(err, "SELECT", "error_events")
}
