package attendance

import (
	"context"
	"time"
)

// AttendanceRepository reads and writes attendance rows through the gateway.
// Writes are stamped with now as the client-side updated_at (and created_at
// for new rows).
type AttendanceRepository interface {
	// ListByDate retrieves the raw rows of one calendar day
	ListByDate(ctx context.Context, date string) ([]RawRecord, error)

	// Add creates rows that have no attendance id yet
	Add(ctx context.Context, records []Record, now time.Time) error

	// Update overwrites rows by attendance id
	Update(ctx context.Context, records []Record, now time.Time) error

	// Delete removes rows by attendance id
	Delete(ctx context.Context, attendanceIDs []string) error
}
