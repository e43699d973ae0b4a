package attendance

import (
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/ydm-hris/attendance-gateway-go/internal/domain/attendance"
)

// Sheet holds the records of one date with the user's unsaved edits.
// Dirtiness is always measured against the last synced snapshot, so editing a
// field back to its saved value makes the row clean again.
type Sheet struct {
	date string

	mu       sync.Mutex
	records  map[string]*attendance.Record
	order    []string
	original map[string]attendance.EditState
	// modified holds employee ids whose record differs from original
	modified map[string]struct{}
	// deleted maps attendance id to employee id
	deleted map[string]string
	saving  bool
}

// SavePlan is what a save has to push to the gateway.
type SavePlan struct {
	Add    []attendance.Record
	Update []attendance.Record
	Delete []string
}

func (p SavePlan) Empty() bool {
	return len(p.Add) == 0 && len(p.Update) == 0 && len(p.Delete) == 0
}

func NewSheet(date string, records []attendance.Record) *Sheet {
	s := &Sheet{date: date}
	s.reset(records)
	return s
}

func (s *Sheet) Date() string {
	return s.date
}

func (s *Sheet) reset(records []attendance.Record) {
	s.records = make(map[string]*attendance.Record, len(records))
	s.order = make([]string, 0, len(records))
	s.original = make(map[string]attendance.EditState, len(records))
	s.modified = make(map[string]struct{})
	s.deleted = make(map[string]string)

	for _, r := range records {
		if _, dup := s.records[r.EmployeeID]; dup {
			continue
		}
		rec := r.Clone()
		rec.ClearTimesIfAbsent()
		s.records[rec.EmployeeID] = &rec
		s.order = append(s.order, rec.EmployeeID)
		s.original[rec.EmployeeID] = rec.EditState()
	}
}

// Replace swaps in a freshly loaded set of records and drops every pending
// edit.
func (s *Sheet) Replace(records []attendance.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return attendance.ErrSaveInProgress
	}
	s.reset(records)
	return nil
}

// markDirty must be called with mu held after every change to a record.
func (s *Sheet) markDirty(employeeID string) {
	rec := s.records[employeeID]
	if rec.EditState() != s.original[employeeID] {
		s.modified[employeeID] = struct{}{}
	} else {
		delete(s.modified, employeeID)
	}
}

// UpdateField sets one field of one record. Setting the status to absent
// clears the times and overtime in the same step, and a record that is absent
// keeps them cleared.
func (s *Sheet) UpdateField(employeeID string, field attendance.Field, value any) (attendance.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saving {
		return attendance.Record{}, attendance.ErrSaveInProgress
	}
	rec, ok := s.records[employeeID]
	if !ok {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}

	updated := rec.Clone()
	switch field {
	case attendance.FieldStatus:
		text, ok := value.(string)
		if !ok {
			return attendance.Record{}, attendance.ErrInvalidFieldValue
		}
		status, ok := attendance.ParseStatus(text)
		if !ok {
			return attendance.Record{}, attendance.ErrInvalidFieldValue
		}
		updated.Status = status
	case attendance.FieldStartTime:
		v, err := textValue(value)
		if err != nil {
			return attendance.Record{}, err
		}
		updated.StartTime = v
	case attendance.FieldEndTime:
		v, err := textValue(value)
		if err != nil {
			return attendance.Record{}, err
		}
		updated.EndTime = v
	case attendance.FieldOvertimeHours:
		v, err := hoursValue(value)
		if err != nil {
			return attendance.Record{}, err
		}
		updated.OvertimeHours = v
	case attendance.FieldNotes:
		v, err := textValue(value)
		if err != nil {
			return attendance.Record{}, err
		}
		updated.Notes = v
	default:
		return attendance.Record{}, attendance.ErrUnknownField
	}
	updated.ClearTimesIfAbsent()

	*rec = updated
	s.markDirty(employeeID)
	return rec.Clone(), nil
}

// MarkForDeletion flags the saved record of an employee for deletion. An
// empty attendance id, or a record that was never saved, leaves the sheet
// untouched. Marking twice is the same as marking once.
func (s *Sheet) MarkForDeletion(employeeID, attendanceID string) (attendance.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saving {
		return attendance.Record{}, attendance.ErrSaveInProgress
	}
	rec, ok := s.records[employeeID]
	if !ok {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	if attendanceID == "" || rec.AttendanceID == "" {
		return rec.Clone(), nil
	}
	if rec.AttendanceID != attendanceID {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}

	rec.MarkedForDeletion = true
	s.deleted[attendanceID] = employeeID
	s.markDirty(employeeID)
	return rec.Clone(), nil
}

// ApplyBulkUpdate applies update to every active record that is not marked
// for deletion and matches filters. It returns how many records changed.
func (s *Sheet) ApplyBulkUpdate(update attendance.BulkUpdate, filters attendance.Filters) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saving {
		return 0, attendance.ErrSaveInProgress
	}

	changed := 0
	for _, id := range s.order {
		rec := s.records[id]
		if !rec.IsActive || rec.MarkedForDeletion || !filters.Matches(*rec) {
			continue
		}

		before := rec.EditState()
		updated := rec.Clone()
		if update.Status != "" {
			updated.Status = update.Status
		}
		if update.StartTime != nil {
			updated.StartTime = emptyAsNil(*update.StartTime)
		}
		if update.EndTime != nil {
			updated.EndTime = emptyAsNil(*update.EndTime)
		}
		if update.OvertimeHours != nil {
			v := *update.OvertimeHours
			updated.OvertimeHours = &v
		}
		if update.Notes != nil {
			updated.Notes = emptyAsNil(*update.Notes)
		}
		updated.ClearTimesIfAbsent()

		if updated.EditState() == before {
			continue
		}
		*rec = updated
		s.markDirty(id)
		changed++
	}
	return changed, nil
}

// BeginSave collects the pending changes and blocks further edits until
// CompleteSave or AbortSave. With nothing pending it returns an empty plan
// and the sheet stays editable.
func (s *Sheet) BeginSave() (SavePlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saving {
		return SavePlan{}, attendance.ErrSaveInProgress
	}

	var plan SavePlan
	if len(s.modified) == 0 {
		return plan, nil
	}

	for _, id := range s.order {
		rec := s.records[id]
		if rec.MarkedForDeletion {
			if _, ok := s.deleted[rec.AttendanceID]; ok {
				plan.Delete = append(plan.Delete, rec.AttendanceID)
			}
			continue
		}
		if _, ok := s.modified[id]; !ok {
			continue
		}
		if rec.AttendanceID == "" {
			plan.Add = append(plan.Add, rec.Clone())
		} else {
			plan.Update = append(plan.Update, rec.Clone())
		}
	}

	s.saving = true
	return plan, nil
}

// CompleteSave installs the records reloaded after a successful save.
func (s *Sheet) CompleteSave(records []attendance.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(records)
	s.saving = false
}

// AbortSave unblocks the sheet after a failed save. Pending edits are kept.
func (s *Sheet) AbortSave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false
}

func (s *Sheet) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

// Records returns copies of the records matching filters in sheet order.
func (s *Sheet) Records(filters attendance.Filters, includeDeleted bool) []attendance.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]attendance.Record, 0, len(s.order))
	for _, id := range s.order {
		rec := s.records[id]
		if rec.MarkedForDeletion && !includeDeleted {
			continue
		}
		if !filters.Matches(*rec) {
			continue
		}
		out = append(out, rec.Clone())
	}
	return out
}

// Record returns a copy of one employee's record.
func (s *Sheet) Record(employeeID string) (attendance.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[employeeID]
	if !ok {
		return attendance.Record{}, false
	}
	return rec.Clone(), true
}

func (s *Sheet) Stats(filters attendance.Filters) attendance.Stats {
	return ComputeStats(s.Records(filters, false))
}

func (s *Sheet) Pending() attendance.PendingChanges {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := attendance.PendingChanges{
		ModifiedRows:   []string{},
		DeletedRecords: []string{},
	}
	for _, id := range s.order {
		if _, ok := s.modified[id]; ok {
			pending.ModifiedRows = append(pending.ModifiedRows, id)
		}
		rec := s.records[id]
		if rec.MarkedForDeletion {
			if _, ok := s.deleted[rec.AttendanceID]; ok {
				pending.DeletedRecords = append(pending.DeletedRecords, rec.AttendanceID)
			}
		}
	}
	pending.Count = len(pending.ModifiedRows)
	return pending
}

func (s *Sheet) HasPendingChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.modified) > 0
}

func emptyAsNil(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// textValue accepts a string or null.
func textValue(value any) (*string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return emptyAsNil(v), nil
	case *string:
		if v == nil {
			return nil, nil
		}
		return emptyAsNil(*v), nil
	}
	return nil, attendance.ErrInvalidFieldValue
}

// hoursValue accepts a non-negative number, a numeric string or null.
func hoursValue(value any) (*float64, error) {
	var f float64
	switch v := value.(type) {
	case nil:
		return nil, nil
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case *float64:
		if v == nil {
			return nil, nil
		}
		f = *v
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, attendance.ErrInvalidFieldValue
		}
		f = parsed
	default:
		return nil, attendance.ErrInvalidFieldValue
	}
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, attendance.ErrInvalidFieldValue
	}
	return &f, nil
}
