package employee

import "strings"

// Employee is one roster row as kept by the remote store.
type Employee struct {
	ID                 string           `json:"employee_id"`
	FullName           string           `json:"full_name"`
	IqamaNumber        string           `json:"id_iqama_national"`
	JobTitle           string           `json:"job_title"`
	Project            string           `json:"project"`
	Location           string           `json:"location"`
	Sponsorship        string           `json:"sponsorship"`
	Status             EmploymentStatus `json:"status"`
	PaymentType        PaymentType      `json:"payment_type"`
	AttendanceRequired bool             `json:"attendance_required"`
	Nationality        string           `json:"nationality,omitempty"`
	PhoneNumber        string           `json:"phone_number,omitempty"`
	Email              string           `json:"email,omitempty"`
	IBAN               string           `json:"iban,omitempty"`
	StartDate          string           `json:"start_date,omitempty"`
	IqamaExpiryDate    string           `json:"iqama_expiry_date,omitempty"`
	RateOfPayment      *float64         `json:"rate_of_payment,omitempty"`
	Comments           string           `json:"comments,omitempty"`
}

// IsActive reports whether the employee is currently employed.
func (e Employee) IsActive() bool {
	return e.Status == StatusActive
}

type EmploymentStatus string

const (
	StatusActive   EmploymentStatus = "Active"
	StatusInactive EmploymentStatus = "Inactive"
)

// ParseEmploymentStatus is case-insensitive; anything but "active" is inactive.
func ParseEmploymentStatus(s string) EmploymentStatus {
	if strings.EqualFold(strings.TrimSpace(s), string(StatusActive)) {
		return StatusActive
	}
	return StatusInactive
}

type PaymentType string

const (
	PaymentMonthly PaymentType = "Monthly"
	PaymentDaily   PaymentType = "Daily"
	PaymentHourly  PaymentType = "Hourly"
)

var PaymentTypes = []string{string(PaymentMonthly), string(PaymentDaily), string(PaymentHourly)}

// ParsePaymentType defaults to Monthly for empty values and keeps unknown
// values as written so they still filter by equality.
func ParsePaymentType(s string) PaymentType {
	s = strings.TrimSpace(s)
	if s == "" {
		return PaymentMonthly
	}
	for _, pt := range PaymentTypes {
		if strings.EqualFold(pt, s) {
			return PaymentType(pt)
		}
	}
	return PaymentType(s)
}
