package logger

import (
	"log"
	"time"

	eventModel "residence-access/models/event"
	"residence-access/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AsyncLogger persists audit events into the event_log table without
// blocking request handlers. Entries are queued on a buffered channel and
// drained by a single goroutine; a full channel drops the entry rather
// than stalling the request.
type AsyncLogger struct {
	db      *gorm.DB
	channel chan types.AuditEntry
}

func NewAsyncLogger(db *gorm.DB) *AsyncLogger {
	return &AsyncLogger{
		db:      db,
		channel: make(chan types.AuditEntry, 100), // Buffered channel to hold audit entries
	}
}

func (logger *AsyncLogger) ProcessLog() {
	log.Println("Starting asynchronous audit logger...")

	for entry := range logger.channel {
		if entry.Timestamp == 0 {
			entry.Timestamp = time.Now().Unix()
		}

		dbEvent := eventModel.EventLog{
			ID:          uuid.NewString(),
			Type:        entry.Type,
			UserID:      entry.UserID,
			Details:     entry.Details,
			Timestamp:   entry.Timestamp,
			ResidenceID: entry.ResidenceID,
			IPAddress:   entry.IPAddress,
			UserAgent:   entry.UserAgent,
		}

		if err := logger.db.Create(&dbEvent).Error; err != nil {
			log.Printf("Failed to insert audit event: %v", err)
		}
	}
}

// Log queues an audit entry; it never blocks the caller.
func (logger *AsyncLogger) Log(entry types.AuditEntry) {
	select {
	case logger.channel <- entry:
	default:
		log.Printf("Audit channel full, dropping event: %s", entry.Type)
	}
}
