package attendance

import (
	"strings"
)

// Status is the two-valued attendance state. Values are the display form;
// Wire gives the lowercase form sent to the gateway.
type Status string

const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
)

// ParseStatus is case-insensitive and ignores surrounding whitespace.
func ParseStatus(s string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "present":
		return StatusPresent, true
	case "absent":
		return StatusAbsent, true
	}
	return "", false
}

func (s Status) IsAbsent() bool {
	return s == StatusAbsent
}

func (s Status) IsPresent() bool {
	return s == StatusPresent
}

// Wire returns the lowercase form used on the gateway.
func (s Status) Wire() string {
	return strings.ToLower(string(s))
}

// RawRecord is one attendance row as returned by the gateway.
type RawRecord struct {
	AttendanceID string
	EmployeeID   string
	Date         string
	Status       string
	StartTime    *string
	EndTime      *string
	Overtime     *float64
	Note         *string
}

// UnknownEmployeeName labels records whose employee is not on the roster.
const UnknownEmployeeName = "Unknown Employee"

// Record is the view model of one employee on one date: the roster row joined
// with at most one raw attendance record.
type Record struct {
	EmployeeID          string   `json:"employee_id"`
	FullName            string   `json:"full_name"`
	IqamaNumber         string   `json:"id_iqama_national"`
	JobTitle            string   `json:"job_title"`
	Project             string   `json:"project"`
	Location            string   `json:"location"`
	PaymentType         string   `json:"payment_type"`
	Sponsorship         string   `json:"sponsorship"`
	Status              Status   `json:"status"`
	IsActive            bool     `json:"is_active"`
	HasAttendanceRecord bool     `json:"has_attendance_record"`
	StartTime           *string  `json:"start_time"`
	EndTime             *string  `json:"end_time"`
	OvertimeHours       *float64 `json:"overtime_hours"`
	Notes               *string  `json:"notes"`
	Date                string   `json:"date"`
	AttendanceID        string   `json:"attendance_id,omitempty"`
	MarkedForDeletion   bool     `json:"marked_for_deletion"`
}

// ClearTimesIfAbsent drops the start time, end time and overtime of an
// absent record.
func (r *Record) ClearTimesIfAbsent() {
	if r.Status.IsAbsent() {
		r.StartTime = nil
		r.EndTime = nil
		r.OvertimeHours = nil
	}
}

// Clone returns a copy that shares no pointers with r.
func (r Record) Clone() Record {
	r.StartTime = cloneString(r.StartTime)
	r.EndTime = cloneString(r.EndTime)
	r.Notes = cloneString(r.Notes)
	if r.OvertimeHours != nil {
		v := *r.OvertimeHours
		r.OvertimeHours = &v
	}
	return r
}

// EditState is the comparable part of a record that user edits can change.
type EditState struct {
	Status            Status
	StartTime         string
	HasStartTime      bool
	EndTime           string
	HasEndTime        bool
	OvertimeHours     float64
	HasOvertime       bool
	Notes             string
	HasNotes          bool
	MarkedForDeletion bool
}

func (r Record) EditState() EditState {
	s := EditState{Status: r.Status, MarkedForDeletion: r.MarkedForDeletion}
	if r.StartTime != nil {
		s.StartTime, s.HasStartTime = *r.StartTime, true
	}
	if r.EndTime != nil {
		s.EndTime, s.HasEndTime = *r.EndTime, true
	}
	if r.OvertimeHours != nil {
		s.OvertimeHours, s.HasOvertime = *r.OvertimeHours, true
	}
	if r.Notes != nil {
		s.Notes, s.HasNotes = *r.Notes, true
	}
	return s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Filters are the equality filters of the attendance page. An empty value
// places no constraint on that field.
type Filters struct {
	Project     string `json:"project"`
	Location    string `json:"location"`
	PaymentType string `json:"payment_type"`
	Sponsorship string `json:"sponsorship"`
}

func (f Filters) Matches(r Record) bool {
	return matchFilter(f.Project, r.Project) &&
		matchFilter(f.Location, r.Location) &&
		matchFilter(f.PaymentType, r.PaymentType) &&
		matchFilter(f.Sponsorship, r.Sponsorship)
}

func matchFilter(filter, value string) bool {
	return filter == "" || filter == value
}

// Field names a user-editable record field.
type Field string

const (
	FieldStatus        Field = "status"
	FieldStartTime     Field = "startTime"
	FieldEndTime       Field = "endTime"
	FieldOvertimeHours Field = "overtimeHours"
	FieldNotes         Field = "notes"
)

// ParseField accepts the camelCase names and their snake_case spellings.
func ParseField(s string) (Field, bool) {
	switch strings.TrimSpace(s) {
	case "status":
		return FieldStatus, true
	case "startTime", "start_time":
		return FieldStartTime, true
	case "endTime", "end_time":
		return FieldEndTime, true
	case "overtimeHours", "overtime_hours", "overtime":
		return FieldOvertimeHours, true
	case "notes", "note":
		return FieldNotes, true
	}
	return "", false
}

// BulkUpdate is applied to every matching record. Nil fields are left as
// they are; an empty string clears a text field.
type BulkUpdate struct {
	Status        Status
	StartTime     *string
	EndTime       *string
	OvertimeHours *float64
	Notes         *string
}

// Stats summarise the visible records. Rows marked for deletion are not counted.
type Stats struct {
	Total          int `json:"total"`
	Present        int `json:"present"`
	Absent         int `json:"absent"`
	PresentPercent int `json:"present_percent"`
	AbsentPercent  int `json:"absent_percent"`
}
