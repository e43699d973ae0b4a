package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ydm-hris/attendance-gateway-go/internal/domain/attendance"
	"github.com/ydm-hris/attendance-gateway-go/internal/domain/employee"
	"github.com/ydm-hris/attendance-gateway-go/internal/pkg/export"
	"github.com/ydm-hris/attendance-gateway-go/internal/pkg/sse"
)

const EventAttendanceSaved = "attendance.saved"

type workspaceKey struct {
	sessionID string
	date      string
}

func (k workspaceKey) String() string {
	return k.sessionID + "|" + k.date
}

type workspace struct {
	sheet    *Sheet
	lastUsed time.Time
}

// SavedEvent is published on the date topic after a successful save.
type SavedEvent struct {
	Date   string                `json:"date"`
	Result attendance.SaveResult `json:"result"`
}

var _ attendance.AttendanceService = (*AttendanceServiceImpl)(nil)

type AttendanceServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	hub            *sse.Hub
	policy         VisibilityPolicy
	idleTTL        time.Duration
	loadTimeout    time.Duration
	now            func() time.Time

	loads singleflight.Group

	mu         sync.Mutex
	workspaces map[workspaceKey]*workspace
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	hub *sse.Hub,
	policy VisibilityPolicy,
	idleTTL time.Duration,
	loadTimeout time.Duration,
) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		hub:            hub,
		policy:         policy,
		idleTTL:        idleTTL,
		loadTimeout:    loadTimeout,
		now:            time.Now,
		workspaces:     make(map[workspaceKey]*workspace),
	}
}

// Topic is the SSE topic carrying save notifications for a date.
func Topic(date string) string {
	return "attendance:" + date
}

// loadRecords fetches the roster and the raw rows of date and joins them.
func (s *AttendanceServiceImpl) loadRecords(ctx context.Context, date string) ([]attendance.Record, error) {
	roster, err := s.employeeRepo.List(ctx)
	if err != nil {
		slog.Error("Failed to load roster", "date", date, "error", err)
		return nil, fmt.Errorf("%w: %w", attendance.ErrRosterUnavailable, err)
	}

	raw, err := s.attendanceRepo.ListByDate(ctx, date)
	if err != nil {
		slog.Error("Failed to load attendance", "date", date, "error", err)
		return nil, fmt.Errorf("failed to load attendance data: %w", err)
	}

	return Combine(roster, raw, date, s.policy), nil
}

// sheet returns the session's sheet for date, loading it on first use.
func (s *AttendanceServiceImpl) sheet(ctx context.Context, sessionID, date string) (*Sheet, error) {
	date, err := attendance.NormalizeDate(date)
	if err != nil {
		return nil, err
	}
	key := workspaceKey{sessionID: sessionID, date: date}

	s.mu.Lock()
	if ws, ok := s.workspaces[key]; ok {
		ws.lastUsed = s.now()
		s.mu.Unlock()
		return ws.sheet, nil
	}
	s.mu.Unlock()

	v, err, _ := s.loads.Do(key.String(), func() (interface{}, error) {
		// The load outlives the caller that started it, bounded by loadTimeout.
		loadCtx := context.WithoutCancel(ctx)
		if s.loadTimeout > 0 {
			var cancel context.CancelFunc
			loadCtx, cancel = context.WithTimeout(loadCtx, s.loadTimeout)
			defer cancel()
		}

		records, err := s.loadRecords(loadCtx, date)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if ws, ok := s.workspaces[key]; ok {
			return ws.sheet, nil
		}
		sheet := NewSheet(date, records)
		s.workspaces[key] = &workspace{sheet: sheet, lastUsed: s.now()}
		slog.Debug("Attendance sheet loaded", "date", date, "records", len(records))
		return sheet, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Sheet), nil
}

func view(sheet *Sheet, query attendance.SheetQuery) attendance.SheetView {
	return attendance.SheetView{
		Date:    sheet.Date(),
		Records: sheet.Records(query.Filters, query.IncludeDeleted),
		Stats:   sheet.Stats(query.Filters),
		Pending: sheet.Pending(),
	}
}

// GetSheet implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetSheet(ctx context.Context, sessionID, date string, query attendance.SheetQuery) (attendance.SheetView, error) {
	sheet, err := s.sheet(ctx, sessionID, date)
	if err != nil {
		return attendance.SheetView{}, err
	}
	return view(sheet, query), nil
}

// UpdateField implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) UpdateField(ctx context.Context, sessionID, date string, req attendance.UpdateFieldRequest) (attendance.Record, error) {
	if err := req.Validate(); err != nil {
		return attendance.Record{}, err
	}
	field, _ := attendance.ParseField(req.Field)

	sheet, err := s.sheet(ctx, sessionID, date)
	if err != nil {
		return attendance.Record{}, err
	}
	return sheet.UpdateField(req.EmployeeID, field, req.Value)
}

// MarkForDeletion implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) MarkForDeletion(ctx context.Context, sessionID, date string, req attendance.MarkDeletionRequest) (attendance.Record, error) {
	sheet, err := s.sheet(ctx, sessionID, date)
	if err != nil {
		return attendance.Record{}, err
	}
	return sheet.MarkForDeletion(req.EmployeeID, req.AttendanceID)
}

// ApplyBulkUpdate implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ApplyBulkUpdate(ctx context.Context, sessionID, date string, req attendance.BulkUpdateRequest) (attendance.BulkUpdateResult, error) {
	if err := req.Validate(); err != nil {
		return attendance.BulkUpdateResult{}, err
	}

	sheet, err := s.sheet(ctx, sessionID, date)
	if err != nil {
		return attendance.BulkUpdateResult{}, err
	}

	updated, err := sheet.ApplyBulkUpdate(req.ToBulkUpdate(), req.Filters)
	if err != nil {
		return attendance.BulkUpdateResult{}, err
	}
	return attendance.BulkUpdateResult{Updated: updated, Pending: sheet.Pending()}, nil
}

// SaveChanges implements attendance.AttendanceService. Updates, adds and
// deletes are sent one after another, then the sheet is rebuilt from a fresh
// read. Any failure leaves the pending edits in place.
func (s *AttendanceServiceImpl) SaveChanges(ctx context.Context, sessionID, date string) (attendance.SaveResult, error) {
	sheet, err := s.sheet(ctx, sessionID, date)
	if err != nil {
		return attendance.SaveResult{}, err
	}

	plan, err := sheet.BeginSave()
	if err != nil {
		return attendance.SaveResult{}, err
	}
	if plan.Empty() {
		return attendance.SaveResult{NoChanges: true}, nil
	}

	records, err := s.push(ctx, sheet.Date(), plan)
	if err != nil {
		sheet.AbortSave()
		return attendance.SaveResult{}, err
	}
	sheet.CompleteSave(records)

	result := attendance.SaveResult{
		Added:   len(plan.Add),
		Updated: len(plan.Update),
		Deleted: len(plan.Delete),
	}
	slog.Info("Attendance saved",
		"date", sheet.Date(),
		"added", result.Added,
		"updated", result.Updated,
		"deleted", result.Deleted)

	if s.hub != nil {
		topic := Topic(sheet.Date())
		s.hub.Publish(topic, sse.Event{
			Event: EventAttendanceSaved,
			Data:  SavedEvent{Date: sheet.Date(), Result: result},
		})
		slog.Debug("Attendance save published", "date", sheet.Date(), "subscribers", s.hub.SubscriberCount(topic))
	}
	return result, nil
}

func (s *AttendanceServiceImpl) push(ctx context.Context, date string, plan SavePlan) ([]attendance.Record, error) {
	now := s.now()

	if err := s.attendanceRepo.Update(ctx, plan.Update, now); err != nil {
		slog.Error("Failed to save attendance", "date", date, "operation", "update", "error", err)
		return nil, err
	}
	if err := s.attendanceRepo.Add(ctx, plan.Add, now); err != nil {
		slog.Error("Failed to save attendance", "date", date, "operation", "add", "error", err)
		return nil, err
	}
	if err := s.attendanceRepo.Delete(ctx, plan.Delete); err != nil {
		slog.Error("Failed to save attendance", "date", date, "operation", "delete", "error", err)
		return nil, err
	}

	return s.loadRecords(ctx, date)
}

// DiscardChanges implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) DiscardChanges(ctx context.Context, sessionID, date string) (attendance.SheetView, error) {
	sheet, err := s.sheet(ctx, sessionID, date)
	if err != nil {
		return attendance.SheetView{}, err
	}
	if sheet.Saving() {
		return attendance.SheetView{}, attendance.ErrSaveInProgress
	}

	records, err := s.loadRecords(ctx, sheet.Date())
	if err != nil {
		return attendance.SheetView{}, err
	}
	if err := sheet.Replace(records); err != nil {
		return attendance.SheetView{}, err
	}
	return view(sheet, attendance.SheetQuery{}), nil
}

var attendanceExportHeaders = []string{
	"Employee ID", "Full Name", "Iqama / National ID", "Job Title", "Project", "Location",
	"Payment Type", "Sponsorship", "Status", "Start Time", "End Time", "Overtime Hours", "Notes",
}

// ExportSheet implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ExportSheet(ctx context.Context, sessionID, date string, query attendance.SheetQuery, format export.Format) (export.File, error) {
	sheet, err := s.sheet(ctx, sessionID, date)
	if err != nil {
		return export.File{}, err
	}

	records := sheet.Records(query.Filters, false)
	if len(records) == 0 {
		return export.File{}, attendance.ErrNothingToExport
	}

	table := export.Table{
		Title:   "Attendance " + sheet.Date(),
		Sheet:   "Attendance",
		Headers: attendanceExportHeaders,
		Rows:    make([][]any, 0, len(records)),
	}
	for _, r := range records {
		table.Rows = append(table.Rows, []any{
			r.EmployeeID, r.FullName, r.IqamaNumber, r.JobTitle, r.Project, r.Location,
			r.PaymentType, r.Sponsorship, string(r.Status), r.StartTime, r.EndTime, r.OvertimeHours, r.Notes,
		})
	}

	file, err := export.Render(table, format, "attendance-"+sheet.Date())
	if err != nil {
		slog.Error("Failed to export attendance", "date", sheet.Date(), "format", format, "error", err)
		return export.File{}, err
	}
	return file, nil
}

// Subscribe implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Subscribe(date string) (chan sse.Event, func()) {
	return s.hub.Subscribe(Topic(date))
}

// DropSession implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) DropSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.workspaces {
		if key.sessionID == sessionID {
			delete(s.workspaces, key)
		}
	}
}

// EvictIdle implements attendance.AttendanceService. Sheets in the middle of
// a save are kept.
func (s *AttendanceServiceImpl) EvictIdle(ctx context.Context) (int, error) {
	if s.idleTTL <= 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.idleTTL)
	evicted := 0
	for key, ws := range s.workspaces {
		if err := ctx.Err(); err != nil {
			return evicted, err
		}
		if ws.lastUsed.After(cutoff) || ws.sheet.Saving() {
			continue
		}
		if ws.sheet.HasPendingChanges() {
			slog.Warn("Evicting idle attendance sheet with unsaved changes",
				"date", key.date,
				"pending", ws.sheet.Pending().Count)
		}
		delete(s.workspaces, key)
		evicted++
	}
	return evicted, nil
}

// WorkspaceCount returns the number of loaded sheets.
func (s *AttendanceServiceImpl) WorkspaceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.workspaces)
}
