package attendance

import (
	"context"

	"github.com/ydm-hris/attendance-gateway-go/internal/pkg/export"
	"github.com/ydm-hris/attendance-gateway-go/internal/pkg/sse"
)

// AttendanceService manages one working sheet per session and date. A sheet
// is loaded on first access and keeps unsaved edits until SaveChanges or
// DiscardChanges.
type AttendanceService interface {
	// GetSheet returns the records of the date, loading the sheet if needed
	GetSheet(ctx context.Context, sessionID, date string, query SheetQuery) (SheetView, error)

	// UpdateField edits one field of one record
	UpdateField(ctx context.Context, sessionID, date string, req UpdateFieldRequest) (Record, error)

	// MarkForDeletion flags a saved record for deletion on the next save
	MarkForDeletion(ctx context.Context, sessionID, date string, req MarkDeletionRequest) (Record, error)

	// ApplyBulkUpdate edits every active, non-deleted record matching the filters
	ApplyBulkUpdate(ctx context.Context, sessionID, date string, req BulkUpdateRequest) (BulkUpdateResult, error)

	// SaveChanges pushes pending edits and deletions, then reloads from the gateway
	SaveChanges(ctx context.Context, sessionID, date string) (SaveResult, error)

	// DiscardChanges drops pending edits by reloading the sheet
	DiscardChanges(ctx context.Context, sessionID, date string) (SheetView, error)

	// ExportSheet renders the filtered sheet
	ExportSheet(ctx context.Context, sessionID, date string, query SheetQuery, format export.Format) (export.File, error)

	// Subscribe streams save notifications for a date
	Subscribe(date string) (chan sse.Event, func())

	// DropSession forgets every sheet of a session
	DropSession(sessionID string)

	// EvictIdle forgets sheets untouched for longer than the idle TTL and returns how many
	EvictIdle(ctx context.Context) (int, error)
}
