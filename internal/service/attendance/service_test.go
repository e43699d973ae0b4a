package attendance

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ydm-hris/attendance-gateway-go/internal/domain/attendance"
	"github.com/ydm-hris/attendance-gateway-go/internal/domain/employee"
	"github.com/ydm-hris/attendance-gateway-go/internal/pkg/export"
	"github.com/ydm-hris/attendance-gateway-go/internal/pkg/sse"
	"github.com/ydm-hris/attendance-gateway-go/internal/pkg/validator"
)

type fakeRoster struct {
	employees []employee.Employee
	err       error
	lists     int
}

func (f *fakeRoster) List(ctx context.Context) ([]employee.Employee, error) {
	f.lists++
	return f.employees, f.err
}

func (f *fakeRoster) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeRoster) Create(ctx context.Context, input employee.EmployeeInput) error {
	return nil
}

func (f *fakeRoster) Update(ctx context.Context, id string, input employee.EmployeeInput) error {
	return nil
}

// fakeAttendanceStore keeps rows per date and records every write call.
type fakeAttendanceStore struct {
	mu      sync.Mutex
	rows    map[string][]attendance.RawRecord
	calls   []string
	failOn  string
	nextID  int
	blockOn string
	block   chan struct{}

	readDeadline bool
}

func newFakeAttendanceStore() *fakeAttendanceStore {
	return &fakeAttendanceStore{rows: map[string][]attendance.RawRecord{}}
}

func (f *fakeAttendanceStore) record(op string) error {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	block := f.block
	blockOn := f.blockOn
	fail := f.failOn == op
	f.mu.Unlock()

	if block != nil && blockOn == op {
		<-block
	}
	if fail {
		return errors.New("failed to " + op + " attendance: 502")
	}
	return nil
}

func (f *fakeAttendanceStore) writeCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []string{}
	for _, c := range f.calls {
		if c != "read" {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeAttendanceStore) ListByDate(ctx context.Context, date string) ([]attendance.RawRecord, error) {
	if err := f.record("read"); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, f.readDeadline = ctx.Deadline()
	return append([]attendance.RawRecord(nil), f.rows[date]...), nil
}

func (f *fakeAttendanceStore) Add(ctx context.Context, records []attendance.Record, now time.Time) error {
	if len(records) == 0 {
		return nil
	}
	if err := f.record("add"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range records {
		f.nextID++
		f.rows[r.Date] = append(f.rows[r.Date], attendance.RawRecord{
			AttendanceID: "new-" + strconv.Itoa(f.nextID),
			EmployeeID:   r.EmployeeID,
			Date:         r.Date,
			Status:       r.Status.Wire(),
			StartTime:    r.StartTime,
			EndTime:      r.EndTime,
			Overtime:     r.OvertimeHours,
			Note:         r.Notes,
		})
	}
	return nil
}

func (f *fakeAttendanceStore) Update(ctx context.Context, records []attendance.Record, now time.Time) error {
	if len(records) == 0 {
		return nil
	}
	if err := f.record("update"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range records {
		rows := f.rows[r.Date]
		for i := range rows {
			if rows[i].AttendanceID == r.AttendanceID {
				rows[i].Status = r.Status.Wire()
				rows[i].StartTime = r.StartTime
				rows[i].EndTime = r.EndTime
				rows[i].Overtime = r.OvertimeHours
				rows[i].Note = r.Notes
			}
		}
	}
	return nil
}

func (f *fakeAttendanceStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := f.record("delete"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	drop := map[string]bool{}
	for _, id := range ids {
		drop[id] = true
	}
	for date, rows := range f.rows {
		kept := rows[:0]
		for _, r := range rows {
			if !drop[r.AttendanceID] {
				kept = append(kept, r)
			}
		}
		f.rows[date] = kept
	}
	return nil
}

const testDate = "2024-05-01"

func newTestService(t *testing.T) (*AttendanceServiceImpl, *fakeRoster, *fakeAttendanceStore, *sse.Hub) {
	t.Helper()
	roster := &fakeRoster{employees: []employee.Employee{
		activeEmployee("e1", "Ali", "X"),
		activeEmployee("e2", "Omar", "Y"),
		activeEmployee("e3", "Fahad", "X"),
	}}
	store := newFakeAttendanceStore()
	store.rows[testDate] = []attendance.RawRecord{
		{AttendanceID: "a2", EmployeeID: "e2", Date: testDate, Status: "present", StartTime: strPtr("08:00 am")},
		{AttendanceID: "a3", EmployeeID: "e3", Date: testDate, Status: "present"},
	}
	hub := sse.NewHub()
	return NewAttendanceService(store, roster, hub, nil, time.Hour, 5*time.Second), roster, store, hub
}

func TestService_GetSheetLoadIgnoresCallerCancellation(t *testing.T) {
	svc, roster, store, _ := newTestService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	view, err := svc.GetSheet(ctx, "s1", testDate, attendance.SheetQuery{})
	require.NoError(t, err)
	assert.Len(t, view.Records, 3)
	assert.True(t, store.readDeadline)

	_, err = svc.GetSheet(context.Background(), "s1", testDate, attendance.SheetQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, roster.lists)
}

func TestService_GetSheetLoadsOncePerSession(t *testing.T) {
	svc, roster, _, _ := newTestService(t)
	ctx := context.Background()

	view, err := svc.GetSheet(ctx, "s1", testDate, attendance.SheetQuery{})
	require.NoError(t, err)
	assert.Len(t, view.Records, 3)
	assert.Equal(t, attendance.Stats{Total: 3, Present: 2, Absent: 1, PresentPercent: 67, AbsentPercent: 33}, view.Stats)
	assert.Equal(t, 0, view.Pending.Count)

	_, err = svc.GetSheet(ctx, "s1", testDate, attendance.SheetQuery{Filters: attendance.Filters{Project: "X"}})
	require.NoError(t, err)
	assert.Equal(t, 1, roster.lists)

	_, err = svc.GetSheet(ctx, "s2", testDate, attendance.SheetQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, roster.lists)
	assert.Equal(t, 2, svc.WorkspaceCount())
}

func TestService_InvalidDate(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.GetSheet(context.Background(), "s1", "01/05/2024", attendance.SheetQuery{})
	assert.ErrorIs(t, err, attendance.ErrInvalidDate)
}

func TestService_RosterFailure(t *testing.T) {
	svc, roster, _, _ := newTestService(t)
	roster.err = errors.New("failed to fetch employees: 500")

	_, err := svc.GetSheet(context.Background(), "s1", testDate, attendance.SheetQuery{})
	assert.ErrorIs(t, err, attendance.ErrRosterUnavailable)
	assert.Equal(t, 0, svc.WorkspaceCount())
}

func TestService_SaveWithNothingPendingMakesNoCalls(t *testing.T) {
	svc, _, store, _ := newTestService(t)

	result, err := svc.SaveChanges(context.Background(), "s1", testDate)
	require.NoError(t, err)
	assert.True(t, result.NoChanges)
	assert.Empty(t, store.writeCalls())
}

func TestService_SaveIsSequentialAndReloads(t *testing.T) {
	svc, _, store, hub := newTestService(t)
	ctx := context.Background()
	events, cleanup := hub.Subscribe(Topic(testDate))
	defer cleanup()

	_, err := svc.UpdateField(ctx, "s1", testDate, attendance.UpdateFieldRequest{EmployeeID: "e1", Field: "status", Value: "Present"})
	require.NoError(t, err)
	_, err = svc.UpdateField(ctx, "s1", testDate, attendance.UpdateFieldRequest{EmployeeID: "e2", Field: "notes", Value: "late bus"})
	require.NoError(t, err)
	_, err = svc.MarkForDeletion(ctx, "s1", testDate, attendance.MarkDeletionRequest{EmployeeID: "e3", AttendanceID: "a3"})
	require.NoError(t, err)

	result, err := svc.SaveChanges(ctx, "s1", testDate)
	require.NoError(t, err)
	assert.Equal(t, attendance.SaveResult{Added: 1, Updated: 1, Deleted: 1}, result)
	assert.Equal(t, []string{"update", "add", "delete"}, store.writeCalls())

	view, err := svc.GetSheet(ctx, "s1", testDate, attendance.SheetQuery{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Equal(t, 0, view.Pending.Count)
	require.Len(t, view.Records, 3)

	e1 := view.Records[0]
	assert.True(t, e1.HasAttendanceRecord)
	assert.Equal(t, "new-1", e1.AttendanceID)
	assert.Equal(t, "late bus", *view.Records[1].Notes)
	e3 := view.Records[2]
	assert.False(t, e3.HasAttendanceRecord, "deleted record is gone after reload")
	assert.False(t, e3.MarkedForDeletion)

	select {
	case ev := <-events:
		assert.Equal(t, EventAttendanceSaved, ev.Event)
		assert.Equal(t, SavedEvent{Date: testDate, Result: result}, ev.Data)
	default:
		t.Fatal("expected a saved event")
	}
}

func TestService_FailedSaveKeepsPendingChanges(t *testing.T) {
	svc, _, store, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpdateField(ctx, "s1", testDate, attendance.UpdateFieldRequest{EmployeeID: "e1", Field: "status", Value: "Present"})
	require.NoError(t, err)
	_, err = svc.MarkForDeletion(ctx, "s1", testDate, attendance.MarkDeletionRequest{EmployeeID: "e2", AttendanceID: "a2"})
	require.NoError(t, err)

	store.failOn = "delete"
	_, err = svc.SaveChanges(ctx, "s1", testDate)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to delete attendance: 502")

	view, err := svc.GetSheet(ctx, "s1", testDate, attendance.SheetQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, view.Pending.ModifiedRows)
	assert.Equal(t, []string{"a2"}, view.Pending.DeletedRecords)

	_, err = svc.UpdateField(ctx, "s1", testDate, attendance.UpdateFieldRequest{EmployeeID: "e1", Field: "notes", Value: "retry"})
	assert.NoError(t, err, "sheet is editable again after a failed save")
}

func TestService_SecondSaveWhileSavingIsRejected(t *testing.T) {
	svc, _, store, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpdateField(ctx, "s1", testDate, attendance.UpdateFieldRequest{EmployeeID: "e2", Field: "notes", Value: "x"})
	require.NoError(t, err)

	store.block = make(chan struct{})
	store.blockOn = "update"

	done := make(chan error, 1)
	go func() {
		_, err := svc.SaveChanges(ctx, "s1", testDate)
		done <- err
	}()

	require.Eventually(t, func() bool {
		return len(store.writeCalls()) == 1
	}, time.Second, 5*time.Millisecond)

	_, err = svc.SaveChanges(ctx, "s1", testDate)
	assert.ErrorIs(t, err, attendance.ErrSaveInProgress)
	_, err = svc.UpdateField(ctx, "s1", testDate, attendance.UpdateFieldRequest{EmployeeID: "e1", Field: "status", Value: "Present"})
	assert.ErrorIs(t, err, attendance.ErrSaveInProgress)
	_, err = svc.DiscardChanges(ctx, "s1", testDate)
	assert.ErrorIs(t, err, attendance.ErrSaveInProgress)

	close(store.block)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"update"}, store.writeCalls())
}

func TestService_UpdateFieldValidation(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.UpdateField(context.Background(), "s1", testDate, attendance.UpdateFieldRequest{EmployeeID: "e1", Field: "shift", Value: "night"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "field", verrs[0].Field)

	_, err = svc.UpdateField(context.Background(), "s1", testDate, attendance.UpdateFieldRequest{EmployeeID: "e1", Field: "start_time", Value: "07:00 am"})
	assert.NoError(t, err)
}

func TestService_BulkUpdate(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	result, err := svc.ApplyBulkUpdate(context.Background(), "s1", testDate, attendance.BulkUpdateRequest{
		Status:    "present",
		StartTime: strPtr("07:00 am"),
		Filters:   attendance.Filters{Project: "X"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Updated)
	assert.Equal(t, []string{"e1", "e3"}, result.Pending.ModifiedRows)

	_, err = svc.ApplyBulkUpdate(context.Background(), "s1", testDate, attendance.BulkUpdateRequest{Status: "late"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestService_DiscardReloads(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpdateField(ctx, "s1", testDate, attendance.UpdateFieldRequest{EmployeeID: "e1", Field: "status", Value: "Present"})
	require.NoError(t, err)

	view, err := svc.DiscardChanges(ctx, "s1", testDate)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Pending.Count)
	assert.Equal(t, attendance.StatusAbsent, view.Records[0].Status)
}

func TestService_ExportSheet(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	file, err := svc.ExportSheet(ctx, "s1", testDate, attendance.SheetQuery{}, export.FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, "attendance-2024-05-01.xlsx", file.Name)
	assert.NotEmpty(t, file.Data)

	_, err = svc.ExportSheet(ctx, "s1", testDate, attendance.SheetQuery{Filters: attendance.Filters{Project: "none"}}, export.FormatPDF)
	assert.ErrorIs(t, err, attendance.ErrNothingToExport)
}

func TestService_EvictIdleAndDropSession(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, err := svc.GetSheet(ctx, "s1", testDate, attendance.SheetQuery{})
	require.NoError(t, err)
	_, err = svc.GetSheet(ctx, "s1", "2024-05-02", attendance.SheetQuery{})
	require.NoError(t, err)

	now = now.Add(30 * time.Minute)
	_, err = svc.GetSheet(ctx, "s2", testDate, attendance.SheetQuery{})
	require.NoError(t, err)

	now = now.Add(45 * time.Minute)
	evicted, err := svc.EvictIdle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, evicted)
	assert.Equal(t, 1, svc.WorkspaceCount())

	svc.DropSession("s2")
	assert.Equal(t, 0, svc.WorkspaceCount())
}
