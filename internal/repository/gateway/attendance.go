package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/ydm-hris/attendance-gateway-go/internal/domain/attendance"
	"github.com/ydm-hris/attendance-gateway-go/internal/pkg/gateway"
	"github.com/ydm-hris/attendance-gateway-go/internal/pkg/sheetjson"
)

// attendanceRow is an attendance row as the gateway returns it.
type attendanceRow struct {
	AttendanceID sheetjson.String `json:"attendance_id"`
	EmployeeID   sheetjson.String `json:"employee_id"`
	Date         sheetjson.String `json:"date"`
	Status       sheetjson.String `json:"status"`
	StartTime    sheetjson.String `json:"start_time"`
	EndTime      sheetjson.String `json:"end_time"`
	Overtime     sheetjson.Float  `json:"overtime"`
	Note         sheetjson.String `json:"note"`
}

func (r attendanceRow) toRaw() attendance.RawRecord {
	return attendance.RawRecord{
		AttendanceID: r.AttendanceID.String(),
		EmployeeID:   r.EmployeeID.String(),
		Date:         r.Date.String(),
		Status:       r.Status.String(),
		StartTime:    nonEmpty(r.StartTime.String()),
		EndTime:      nonEmpty(r.EndTime.String()),
		Overtime:     r.Overtime.Ptr(),
		Note:         nonEmpty(r.Note.String()),
	}
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type attendanceRepositoryImpl struct {
	client gateway.Caller
}

func NewAttendanceRepository(client gateway.Caller) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{client: client}
}

// ListByDate implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListByDate(ctx context.Context, date string) ([]attendance.RawRecord, error) {
	var rows []attendanceRow
	if err := r.client.Do(ctx, gateway.ReadAttendance{Date: date}, &rows); err != nil {
		return nil, err
	}

	records := make([]attendance.RawRecord, 0, len(rows))
	for _, row := range rows {
		if row.EmployeeID == "" {
			continue
		}
		records = append(records, row.toRaw())
	}
	return records, nil
}

// Add implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Add(ctx context.Context, records []attendance.Record, now time.Time) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]gateway.AttendanceRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, toUpsertRow(rec, now, true))
	}
	if err := r.client.Do(ctx, gateway.AddAttendance{Records: rows}, nil); err != nil {
		return fmt.Errorf("failed to add attendance: %w", err)
	}
	return nil
}

// Update implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Update(ctx context.Context, records []attendance.Record, now time.Time) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]gateway.AttendanceRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, toUpsertRow(rec, now, false))
	}
	if err := r.client.Do(ctx, gateway.UpdateAttendance{Records: rows}, nil); err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	return nil
}

// Delete implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Delete(ctx context.Context, attendanceIDs []string) error {
	if len(attendanceIDs) == 0 {
		return nil
	}
	if err := r.client.Do(ctx, gateway.DeleteAttendance{IDs: attendanceIDs}, nil); err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	return nil
}

// toUpsertRow shapes a record for the wire: lowercase status, no times or
// overtime when absent, empty note sent as null.
func toUpsertRow(rec attendance.Record, now time.Time, isNew bool) gateway.AttendanceRow {
	stamp := now.UTC().Format(time.RFC3339Nano)
	row := gateway.AttendanceRow{
		EmployeeID: rec.EmployeeID,
		FullName:   rec.FullName,
		Date:       rec.Date,
		Status:     rec.Status.Wire(),
		UpdatedAt:  stamp,
	}
	if isNew {
		row.CreatedAt = stamp
	} else {
		row.AttendanceID = rec.AttendanceID
	}
	if !rec.Status.IsAbsent() {
		row.StartTime = rec.StartTime
		row.EndTime = rec.EndTime
		row.Overtime = rec.OvertimeHours
	}
	if rec.Notes != nil && *rec.Notes != "" {
		row.Note = rec.Notes
	}
	return row
}
