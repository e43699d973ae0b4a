package employee

import (
	"strings"

	"github.com/ydm-hris/attendance-gateway-go/internal/pkg/validator"
)

// ========================================
// EMPLOYEE FORM DTOs
// ========================================

// EmployeeInput is the employee form. It is sent to the gateway as is on
// employees/add and employees/update.
type EmployeeInput struct {
	FullName           string `json:"fullName"`
	Nationality        string `json:"nationality,omitempty"`
	PhoneNumber        string `json:"phoneNumber,omitempty"`
	Email              string `json:"email,omitempty"`
	IBAN               string `json:"iban,omitempty"`
	StartDate          string `json:"startDate,omitempty"`
	IqamaNumber        string `json:"iqamaNumber,omitempty"`
	IqamaExpiryDate    string `json:"iqamaExpiryDate,omitempty"`
	JobTitle           string `json:"jobTitle,omitempty"`
	Sponsorship        string `json:"sponsorship,omitempty"`
	Project            string `json:"project,omitempty"`
	Location           string `json:"location,omitempty"`
	Status             string `json:"status"`
	PaymentType        string `json:"paymentType"`
	RateOfPayment      string `json:"rateOfPayment,omitempty"`
	AttendanceRequired bool   `json:"attendanceRequired"`
	Comments           string `json:"comments,omitempty"`
}

// Normalize trims text fields and fills the form defaults.
func (r *EmployeeInput) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.TrimSpace(r.Email)
	r.IqamaNumber = strings.TrimSpace(r.IqamaNumber)
	r.RateOfPayment = strings.TrimSpace(r.RateOfPayment)
	if r.Status == "" {
		r.Status = string(StatusActive)
	}
	if r.PaymentType == "" {
		r.PaymentType = string(PaymentMonthly)
	}
}

func (r *EmployeeInput) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.FullName) {
		errs = append(errs, validator.ValidationError{
			Field:   "fullName",
			Message: "fullName is required",
		})
	} else if len(r.FullName) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "fullName",
			Message: "fullName must not exceed 255 characters",
		})
	}

	if !validator.IsInSlice(r.Status, []string{string(StatusActive), string(StatusInactive)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be Active or Inactive",
		})
	}

	if !validator.IsInSlice(r.PaymentType, PaymentTypes) {
		errs = append(errs, validator.ValidationError{
			Field:   "paymentType",
			Message: "paymentType must be one of: Monthly, Daily, Hourly",
		})
	}

	if r.Email != "" && !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must be a valid email address",
		})
	}

	if r.IqamaNumber != "" && !validator.IsValidIqama(r.IqamaNumber) {
		errs = append(errs, validator.ValidationError{
			Field:   "iqamaNumber",
			Message: "iqamaNumber must be 10 digits starting with 1 or 2",
		})
	}

	if r.StartDate != "" {
		if _, ok := validator.IsValidDate(r.StartDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "startDate",
				Message: "startDate must be in YYYY-MM-DD format",
			})
		}
	}

	if r.IqamaExpiryDate != "" {
		if _, ok := validator.IsValidDate(r.IqamaExpiryDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "iqamaExpiryDate",
				Message: "iqamaExpiryDate must be in YYYY-MM-DD format",
			})
		}
	}

	if r.RateOfPayment != "" && !validator.IsDecimal(r.RateOfPayment) {
		errs = append(errs, validator.ValidationError{
			Field:   "rateOfPayment",
			Message: "rateOfPayment must be a non-negative number",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// EmployeeFilter narrows the roster listing. Empty or "all" means no
// constraint on that field.
type EmployeeFilter struct {
	Search      string
	Location    string
	Project     string
	Sponsorship string
	Status      string
	JobTitle    string
}

// IsActive reports whether any constraint is set.
func (f EmployeeFilter) IsActive() bool {
	return f.Search != "" ||
		!isWildcard(f.Location) ||
		!isWildcard(f.Project) ||
		!isWildcard(f.Sponsorship) ||
		!isWildcard(f.Status) ||
		!isWildcard(f.JobTitle)
}

// Matches applies the search term (case-insensitive substring of the name)
// and the equality filters.
func (f EmployeeFilter) Matches(e Employee) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(e.FullName), strings.ToLower(f.Search)) {
		return false
	}
	return matchField(f.Location, e.Location) &&
		matchField(f.Project, e.Project) &&
		matchField(f.Sponsorship, e.Sponsorship) &&
		matchField(f.Status, string(e.Status)) &&
		matchField(f.JobTitle, e.JobTitle)
}

func isWildcard(v string) bool {
	return v == "" || v == "all"
}

func matchField(filter, value string) bool {
	return isWildcard(filter) || filter == value
}

// FilterOptions lists the distinct non-empty values of each filterable field.
type FilterOptions struct {
	Locations    []string `json:"locations"`
	Projects     []string `json:"projects"`
	Sponsorships []string `json:"sponsorships"`
	Statuses     []string `json:"statuses"`
	JobTitles    []string `json:"job_titles"`
}

type ListEmployeeResponse struct {
	Employees     []Employee    `json:"employees"`
	Total         int           `json:"total"`
	FiltersActive bool          `json:"filters_active"`
	Options       FilterOptions `json:"options"`
}
