// Package audit appends dispatch outcomes and request submissions to
// the MySQL mirror for staff reporting. The store stays the source of
// truth; nothing here ever fails a guest request or a dispatch.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"core/internal/model"
	"core/internal/queue"
)

type Recorder struct {
	db *gorm.DB
}

// NewRecorder wraps the audit DB handle; a nil handle disables
// recording entirely.
func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

const dbTimeout = 10 * time.Second

// RecordDispatch mirrors one dispatch result.
func (r *Recorder) RecordDispatch(res queue.DispatchResult) {
	if r == nil || r.db == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	row := model.DeliveryLog{
		ID:        uuid.New(),
		EventID:   res.EventID,
		EventType: string(res.EventType),
		Outcome:   string(res.Outcome),
		Reason:    res.Reason,
		CreatedAt: time.Now(),
	}
	if res.Transition != nil {
		row.RetryCount = res.Transition.RetryCount
		row.LastError = res.Transition.LastError
		if detail, err := json.Marshal(res.Transition); err == nil {
			row.Detail = detail
		}
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		logrus.WithError(err).WithField("event_id", res.EventID).Error("Failed to record dispatch audit row")
	}
}

// RecordRequest mirrors one accepted prime request.
func (r *Recorder) RecordRequest(req model.PrimeRequest, deliveryMode string) {
	if r == nil || r.db == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	row := model.RequestLog{
		ID:           uuid.New(),
		RequestID:    req.RequestID,
		RequestType:  string(req.Type),
		BookingID:    req.BookingID,
		GuestUUID:    req.GuestUUID,
		DeliveryMode: deliveryMode,
		CreatedAt:    time.Now(),
	}
	if len(req.Payload) > 0 {
		if payload, err := json.Marshal(req.Payload); err == nil {
			row.Payload = payload
		}
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		logrus.WithError(err).WithField("request_id", req.RequestID).Error("Failed to record request audit row")
	}
}
