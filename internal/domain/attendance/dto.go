package attendance

import (
	"strings"

	"github.com/ydm-hris/attendance-gateway-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE SHEET DTOs
// ========================================

// UpdateFieldRequest sets one field of one employee's record. Value may be a
// string, a number or null depending on the field.
type UpdateFieldRequest struct {
	EmployeeID string `json:"-"`
	Field      string `json:"field"`
	Value      any    `json:"value"`
}

func (r *UpdateFieldRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if validator.IsEmpty(r.Field) {
		errs = append(errs, validator.ValidationError{
			Field:   "field",
			Message: "field is required",
		})
	} else if _, ok := ParseField(r.Field); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "field",
			Message: "field must be one of: status, startTime, endTime, overtimeHours, notes",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// MarkDeletionRequest asks for the saved record of an employee to be deleted
// on the next save.
type MarkDeletionRequest struct {
	EmployeeID   string `json:"-"`
	AttendanceID string `json:"attendance_id"`
}

type BulkUpdateRequest struct {
	Status        string   `json:"status"`
	StartTime     *string  `json:"start_time,omitempty"`
	EndTime       *string  `json:"end_time,omitempty"`
	OvertimeHours *float64 `json:"overtime_hours,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
	Filters       Filters  `json:"filters"`
}

func (r *BulkUpdateRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Status) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status is required",
		})
	} else if _, ok := ParseStatus(r.Status); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be Present or Absent",
		})
	}

	if r.OvertimeHours != nil && *r.OvertimeHours < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "overtime_hours",
			Message: "overtime_hours must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ToBulkUpdate converts a validated request. Empty strings become explicit clears.
func (r *BulkUpdateRequest) ToBulkUpdate() BulkUpdate {
	status, _ := ParseStatus(r.Status)
	return BulkUpdate{
		Status:        status,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		OvertimeHours: r.OvertimeHours,
		Notes:         r.Notes,
	}
}

// SheetQuery selects what part of a loaded sheet to return.
type SheetQuery struct {
	Filters        Filters
	IncludeDeleted bool
}

type PendingChanges struct {
	ModifiedRows   []string `json:"modified_rows"`
	DeletedRecords []string `json:"deleted_records"`
	Count          int      `json:"count"`
}

type SheetView struct {
	Date    string         `json:"date"`
	Records []Record       `json:"records"`
	Stats   Stats          `json:"stats"`
	Pending PendingChanges `json:"pending"`
}

type BulkUpdateResult struct {
	Updated int            `json:"updated"`
	Pending PendingChanges `json:"pending"`
}

type SaveResult struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
	// NoChanges is set when there was nothing to save and no gateway call was made.
	NoChanges bool `json:"no_changes"`
}

// NormalizeDate validates a yyyy-MM-dd date and returns it trimmed.
func NormalizeDate(date string) (string, error) {
	date = strings.TrimSpace(date)
	if _, ok := validator.IsValidDate(date); !ok {
		return "", ErrInvalidDate
	}
	return date, nil
}
