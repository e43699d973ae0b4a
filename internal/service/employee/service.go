package employee

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/ydm-hris/attendance-gateway-go/internal/domain/employee"
	"github.com/ydm-hris/attendance-gateway-go/internal/pkg/export"
	"github.com/ydm-hris/attendance-gateway-go/internal/pkg/validator"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
}

func NewEmployeeService(employeeRepo employee.EmployeeRepository) employee.EmployeeService {
	return &EmployeeServiceImpl{employeeRepo: employeeRepo}
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	roster, err := s.employeeRepo.List(ctx)
	if err != nil {
		slog.Error("Failed to list employees", "error", err)
		return employee.ListEmployeeResponse{}, err
	}

	filtered := make([]employee.Employee, 0, len(roster))
	for _, e := range roster {
		if filter.Matches(e) {
			filtered = append(filtered, e)
		}
	}

	return employee.ListEmployeeResponse{
		Employees:     filtered,
		Total:         len(filtered),
		FiltersActive: filter.IsActive(),
		Options:       filterOptions(roster),
	}, nil
}

// filterOptions collects the distinct non-empty values of the whole roster,
// sorted, so the filter dropdowns do not shrink as filters are applied.
func filterOptions(roster []employee.Employee) employee.FilterOptions {
	locations := newValueSet()
	projects := newValueSet()
	sponsorships := newValueSet()
	statuses := newValueSet()
	jobTitles := newValueSet()

	for _, e := range roster {
		locations.add(e.Location)
		projects.add(e.Project)
		sponsorships.add(e.Sponsorship)
		statuses.add(string(e.Status))
		jobTitles.add(e.JobTitle)
	}

	return employee.FilterOptions{
		Locations:    locations.sorted(),
		Projects:     projects.sorted(),
		Sponsorships: sponsorships.sorted(),
		Statuses:     statuses.sorted(),
		JobTitles:    jobTitles.sorted(),
	}
}

type valueSet map[string]struct{}

func newValueSet() valueSet {
	return valueSet{}
}

func (v valueSet) add(s string) {
	if s = strings.TrimSpace(s); s != "" {
		v[s] = struct{}{}
	}
}

func (v valueSet) sorted() []string {
	out := make([]string, 0, len(v))
	for s := range v {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.EmployeeInput, error) {
	if strings.TrimSpace(id) == "" {
		return employee.EmployeeInput{}, employee.ErrEmployeeIDMissing
	}

	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, employee.ErrEmployeeNotFound) {
			slog.Error("Failed to get employee", "employee_id", id, "error", err)
		}
		return employee.EmployeeInput{}, err
	}
	return toInput(emp), nil
}

// toInput shapes a stored employee as the edit form.
func toInput(e employee.Employee) employee.EmployeeInput {
	input := employee.EmployeeInput{
		FullName:           e.FullName,
		Nationality:        e.Nationality,
		PhoneNumber:        e.PhoneNumber,
		Email:              e.Email,
		IBAN:               e.IBAN,
		StartDate:          formDate(e.StartDate),
		IqamaNumber:        e.IqamaNumber,
		IqamaExpiryDate:    formDate(e.IqamaExpiryDate),
		JobTitle:           e.JobTitle,
		Sponsorship:        e.Sponsorship,
		Project:            e.Project,
		Location:           e.Location,
		Status:             string(e.Status),
		PaymentType:        string(e.PaymentType),
		AttendanceRequired: e.AttendanceRequired,
		Comments:           e.Comments,
	}
	if input.PaymentType == "" {
		input.PaymentType = string(employee.PaymentMonthly)
	}
	if e.RateOfPayment != nil {
		input.RateOfPayment = strconv.FormatFloat(*e.RateOfPayment, 'f', -1, 64)
	}
	return input
}

// formDate cuts sheet timestamps such as 2023-01-15T00:00:00.000Z down to
// the date.
func formDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 10 {
		if _, ok := validator.IsValidDate(s[:10]); ok {
			return s[:10]
		}
	}
	return s
}

// CreateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.EmployeeInput) error {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}

	if err := s.employeeRepo.Create(ctx, req); err != nil {
		slog.Error("Failed to create employee", "full_name", req.FullName, "error", err)
		return err
	}
	return nil
}

// UpdateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, id string, req employee.EmployeeInput) error {
	if strings.TrimSpace(id) == "" {
		return employee.ErrEmployeeIDMissing
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}

	if err := s.employeeRepo.Update(ctx, id, req); err != nil {
		slog.Error("Failed to update employee", "employee_id", id, "error", err)
		return err
	}
	return nil
}

var employeeExportHeaders = []string{
	"Employee ID", "Iqama / National ID", "Full Name", "Job Title", "Project",
	"Location", "Sponsorship", "Status", "Payment Type",
}

// ExportEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ExportEmployees(ctx context.Context, filter employee.EmployeeFilter, format export.Format) (export.File, error) {
	list, err := s.ListEmployees(ctx, filter)
	if err != nil {
		return export.File{}, err
	}
	if list.Total == 0 {
		return export.File{}, employee.ErrNothingToExport
	}

	table := export.Table{
		Title:   "Employees",
		Sheet:   "Employees",
		Headers: employeeExportHeaders,
		Rows:    make([][]any, 0, len(list.Employees)),
	}
	for _, e := range list.Employees {
		table.Rows = append(table.Rows, []any{
			e.ID, e.IqamaNumber, e.FullName, e.JobTitle, e.Project,
			e.Location, e.Sponsorship, string(e.Status), string(e.PaymentType),
		})
	}

	file, err := export.Render(table, format, "employees")
	if err != nil {
		slog.Error("Failed to export employees", "format", format, "error", err)
		return export.File{}, err
	}
	return file, nil
}
