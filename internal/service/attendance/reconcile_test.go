package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ydm-hris/attendance-gateway-go/internal/domain/attendance"
	"github.com/ydm-hris/attendance-gateway-go/internal/domain/employee"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func activeEmployee(id, name, project string) employee.Employee {
	return employee.Employee{
		ID:                 id,
		FullName:           name,
		Project:            project,
		Location:           "Riyadh",
		Status:             employee.StatusActive,
		PaymentType:        employee.PaymentMonthly,
		AttendanceRequired: true,
	}
}

func inactiveEmployee(id, name string) employee.Employee {
	e := activeEmployee(id, name, "Legacy")
	e.Status = employee.StatusInactive
	return e
}

func TestCombine_Completeness(t *testing.T) {
	roster := []employee.Employee{
		activeEmployee("e1", "Ali", "Metro"),
		inactiveEmployee("e2", "Omar"),
		inactiveEmployee("e3", "Saeed"),
		activeEmployee("e4", "Fahad", "Port"),
	}
	raw := []attendance.RawRecord{
		{AttendanceID: "a3", EmployeeID: "e3", Status: "present", StartTime: strPtr("07:00 am")},
		{AttendanceID: "a9", EmployeeID: "e9", Status: "PRESENT"},
		{AttendanceID: "a4", EmployeeID: "e4", Status: "absent"},
	}

	records := Combine(roster, raw, "2024-05-01", nil)

	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.EmployeeID)
	}
	assert.Equal(t, []string{"e1", "e3", "e4", "e9"}, ids, "roster order then orphans; inactive e2 hidden")

	e1 := records[0]
	assert.Equal(t, attendance.StatusAbsent, e1.Status)
	assert.False(t, e1.HasAttendanceRecord)
	assert.True(t, e1.IsActive)
	assert.Nil(t, e1.StartTime)
	assert.Equal(t, "2024-05-01", e1.Date)

	e3 := records[1]
	assert.False(t, e3.IsActive)
	assert.True(t, e3.HasAttendanceRecord)
	assert.Equal(t, attendance.StatusPresent, e3.Status)
	assert.Equal(t, "a3", e3.AttendanceID)

	orphan := records[3]
	assert.Equal(t, attendance.UnknownEmployeeName, orphan.FullName)
	assert.False(t, orphan.IsActive)
	assert.True(t, orphan.HasAttendanceRecord)
	assert.Equal(t, attendance.StatusPresent, orphan.Status)
	assert.Empty(t, orphan.Project)
	assert.Equal(t, "Monthly", orphan.PaymentType)
}

func TestCombine_FirstRawRecordWins(t *testing.T) {
	roster := []employee.Employee{activeEmployee("e1", "Ali", "Metro")}
	raw := []attendance.RawRecord{
		{AttendanceID: "first", EmployeeID: "e1", Status: "present"},
		{AttendanceID: "second", EmployeeID: "e1", Status: "absent"},
		{AttendanceID: "o1", EmployeeID: "ghost", Status: "present"},
		{AttendanceID: "o2", EmployeeID: "ghost", Status: "present"},
	}

	records := Combine(roster, raw, "2024-05-01", nil)
	require.Len(t, records, 2)
	assert.Equal(t, "first", records[0].AttendanceID)
	assert.Equal(t, "o1", records[1].AttendanceID)
}

func TestCombine_AbsentRowsHaveNoTimes(t *testing.T) {
	roster := []employee.Employee{activeEmployee("e1", "Ali", "Metro")}
	raw := []attendance.RawRecord{
		{AttendanceID: "a1", EmployeeID: "e1", Status: "Absent", StartTime: strPtr("07:00 am"), EndTime: strPtr("05:00 pm"), Overtime: floatPtr(2), Note: strPtr("sick")},
		{AttendanceID: "a2", EmployeeID: "ghost", Status: "holiday", StartTime: strPtr("08:00 am")},
	}

	for _, r := range Combine(roster, raw, "2024-05-01", nil) {
		if r.Status.IsAbsent() {
			assert.Nil(t, r.StartTime, r.EmployeeID)
			assert.Nil(t, r.EndTime, r.EmployeeID)
			assert.Nil(t, r.OvertimeHours, r.EmployeeID)
		}
	}
	records := Combine(roster, raw, "2024-05-01", nil)
	assert.Equal(t, "sick", *records[0].Notes)
	assert.Equal(t, attendance.StatusAbsent, records[1].Status, "unknown status text reads as absent")
}

func TestCombine_EmptyStringsBecomeNull(t *testing.T) {
	roster := []employee.Employee{activeEmployee("e1", "Ali", "Metro")}
	raw := []attendance.RawRecord{{AttendanceID: "a1", EmployeeID: "e1", Status: "present", StartTime: strPtr(""), Note: strPtr("")}}

	records := Combine(roster, raw, "2024-05-01", nil)
	assert.Nil(t, records[0].StartTime)
	assert.Nil(t, records[0].Notes)
}

func TestCombine_VisibilityPolicy(t *testing.T) {
	exempt := activeEmployee("e2", "Exempt", "Metro")
	exempt.AttendanceRequired = false
	roster := []employee.Employee{activeEmployee("e1", "Ali", "Metro"), exempt}
	raw := []attendance.RawRecord{{AttendanceID: "a2", EmployeeID: "e2", Status: "present"}}

	// 2024-05-01 is a Wednesday, 2024-05-03 a Friday
	wednesday := Combine(roster, raw, "2024-05-01", FridayOrAttendanceRequired)
	require.Len(t, wednesday, 1)
	assert.Equal(t, "e1", wednesday[0].EmployeeID, "hidden employee's record is not shown as unknown")

	friday := Combine(roster, raw, "2024-05-03", FridayOrAttendanceRequired)
	assert.Len(t, friday, 2)

	everyone := Combine(roster, raw, "2024-05-01", nil)
	assert.Len(t, everyone, 2)
}

func TestPolicyByName(t *testing.T) {
	p, err := PolicyByName("")
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = PolicyByName(PolicyFridayOrAttendanceRequired)
	require.NoError(t, err)
	assert.NotNil(t, p)

	_, err = PolicyByName("weekends")
	assert.ErrorIs(t, err, attendance.ErrUnknownVisibility)
}

func TestFilter(t *testing.T) {
	records := []attendance.Record{
		{EmployeeID: "e1", Project: "Metro", Location: "Riyadh", PaymentType: "Monthly", Sponsorship: "YDM"},
		{EmployeeID: "e2", Project: "Port", Location: "Jeddah", PaymentType: "Daily", Sponsorship: "YDM"},
		{EmployeeID: "e3", Project: "Metro", Location: "Jeddah", PaymentType: "Daily", Sponsorship: "Other"},
	}

	tests := []struct {
		name    string
		filters attendance.Filters
		want    []string
	}{
		{"no filters", attendance.Filters{}, []string{"e1", "e2", "e3"}},
		{"project", attendance.Filters{Project: "Metro"}, []string{"e1", "e3"}},
		{"project and location", attendance.Filters{Project: "Metro", Location: "Jeddah"}, []string{"e3"}},
		{"payment and sponsorship", attendance.Filters{PaymentType: "Daily", Sponsorship: "YDM"}, []string{"e2"}},
		{"all is matched literally", attendance.Filters{Project: "All", Location: "Jeddah"}, []string{}},
		{"no match", attendance.Filters{Project: "metro"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []string{}
			for _, r := range Filter(records, tt.filters) {
				got = append(got, r.EmployeeID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeStats(t *testing.T) {
	stats := ComputeStats([]attendance.Record{
		{Status: attendance.StatusPresent},
		{Status: attendance.StatusPresent},
		{Status: attendance.StatusAbsent},
		{Status: attendance.StatusPresent, MarkedForDeletion: true},
	})
	assert.Equal(t, attendance.Stats{Total: 3, Present: 2, Absent: 1, PresentPercent: 67, AbsentPercent: 33}, stats)

	assert.Equal(t, attendance.Stats{}, ComputeStats(nil))
}
