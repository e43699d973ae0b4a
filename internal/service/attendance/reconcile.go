package attendance

import (
	"log/slog"
	"math"
	"time"

	"github.com/ydm-hris/attendance-gateway-go/internal/domain/attendance"
	"github.com/ydm-hris/attendance-gateway-go/internal/domain/employee"
	"github.com/ydm-hris/attendance-gateway-go/internal/pkg/validator"
)

// VisibilityPolicy decides whether an employee appears on the sheet of a
// date. A nil policy shows everyone.
type VisibilityPolicy func(emp employee.Employee, date string) bool

const (
	PolicyAll                        = "all"
	PolicyFridayOrAttendanceRequired = "friday-or-required"
)

// FridayOrAttendanceRequired hides employees who are not required to record
// attendance, except on Fridays.
func FridayOrAttendanceRequired(emp employee.Employee, date string) bool {
	if emp.AttendanceRequired {
		return true
	}
	d, ok := validator.IsValidDate(date)
	return ok && d.Weekday() == time.Friday
}

// PolicyByName resolves a configured policy name. "" and "all" give a nil
// policy.
func PolicyByName(name string) (VisibilityPolicy, error) {
	switch name {
	case "", PolicyAll:
		return nil, nil
	case PolicyFridayOrAttendanceRequired:
		return FridayOrAttendanceRequired, nil
	}
	return nil, attendance.ErrUnknownVisibility
}

// Combine joins the roster with the raw rows of one date. Active employees
// always get a row; inactive ones only when a raw row exists for them; raw
// rows of employees missing from the roster come last as unknown employees.
// When several raw rows share an employee the first one wins.
func Combine(roster []employee.Employee, raw []attendance.RawRecord, date string, policy VisibilityPolicy) []attendance.Record {
	byEmployee := make(map[string]attendance.RawRecord, len(raw))
	for _, r := range raw {
		if _, seen := byEmployee[r.EmployeeID]; !seen {
			byEmployee[r.EmployeeID] = r
		}
	}

	records := make([]attendance.Record, 0, len(roster)+len(raw))
	emitted := make(map[string]struct{}, len(roster)+len(raw))
	known := make(map[string]struct{}, len(roster))

	for _, emp := range roster {
		known[emp.ID] = struct{}{}
		if _, dup := emitted[emp.ID]; dup {
			continue
		}
		if policy != nil && !policy(emp, date) {
			continue
		}

		rawRec, hasRecord := byEmployee[emp.ID]
		if !emp.IsActive() && !hasRecord {
			continue
		}

		rec := attendance.Record{
			EmployeeID:  emp.ID,
			FullName:    emp.FullName,
			IqamaNumber: emp.IqamaNumber,
			JobTitle:    emp.JobTitle,
			Project:     emp.Project,
			Location:    emp.Location,
			PaymentType: string(emp.PaymentType),
			Sponsorship: emp.Sponsorship,
			Status:      attendance.StatusAbsent,
			IsActive:    emp.IsActive(),
			Date:        date,
		}
		if rec.PaymentType == "" {
			rec.PaymentType = string(employee.PaymentMonthly)
		}
		if hasRecord {
			applyRaw(&rec, rawRec)
		}
		records = append(records, rec)
		emitted[emp.ID] = struct{}{}
	}

	for _, r := range raw {
		if _, ok := known[r.EmployeeID]; ok {
			continue
		}
		if _, dup := emitted[r.EmployeeID]; dup {
			continue
		}
		rec := attendance.Record{
			EmployeeID:  r.EmployeeID,
			FullName:    attendance.UnknownEmployeeName,
			PaymentType: string(employee.PaymentMonthly),
			Status:      attendance.StatusAbsent,
			Date:        date,
		}
		applyRaw(&rec, r)
		records = append(records, rec)
		emitted[r.EmployeeID] = struct{}{}
	}

	return records
}

func applyRaw(rec *attendance.Record, r attendance.RawRecord) {
	status, ok := attendance.ParseStatus(r.Status)
	if !ok {
		slog.Warn("Unrecognised attendance status, treating as absent",
			"employee_id", r.EmployeeID,
			"attendance_id", r.AttendanceID,
			"status", r.Status)
		status = attendance.StatusAbsent
	}
	rec.Status = status
	rec.HasAttendanceRecord = true
	rec.AttendanceID = r.AttendanceID
	rec.StartTime = nonEmpty(r.StartTime)
	rec.EndTime = nonEmpty(r.EndTime)
	if r.Overtime != nil {
		v := *r.Overtime
		rec.OvertimeHours = &v
	}
	rec.Notes = nonEmpty(r.Note)
	rec.ClearTimesIfAbsent()
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

// Filter keeps the records matching every non-empty filter field.
func Filter(records []attendance.Record, filters attendance.Filters) []attendance.Record {
	out := make([]attendance.Record, 0, len(records))
	for _, r := range records {
		if filters.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// ComputeStats counts present and absent rows. Rows marked for deletion are
// skipped.
func ComputeStats(records []attendance.Record) attendance.Stats {
	var stats attendance.Stats
	for _, r := range records {
		if r.MarkedForDeletion {
			continue
		}
		stats.Total++
		if r.Status.IsPresent() {
			stats.Present++
		} else {
			stats.Absent++
		}
	}
	if stats.Total > 0 {
		stats.PresentPercent = int(math.Round(float64(stats.Present) * 100 / float64(stats.Total)))
		stats.AbsentPercent = int(math.Round(float64(stats.Absent) * 100 / float64(stats.Total)))
	}
	return stats
}
