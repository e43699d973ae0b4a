package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ydm-hris/attendance-gateway-go/internal/domain/employee"
	"github.com/ydm-hris/attendance-gateway-go/internal/pkg/gateway"
	"github.com/ydm-hris/attendance-gateway-go/internal/pkg/sheetjson"
)

// employeeRow is an employee as the gateway returns it. Field names follow
// the sheet columns, which mix camelCase and snake_case.
type employeeRow struct {
	EmployeeID         sheetjson.String `json:"employee_id"`
	IqamaNumber        sheetjson.String `json:"id_iqama_national"`
	FullName           sheetjson.String `json:"fullName"`
	JobTitle           sheetjson.String `json:"jobTitle"`
	Project            sheetjson.String `json:"project"`
	Location           sheetjson.String `json:"location"`
	Sponsorship        sheetjson.String `json:"sponsorship"`
	Status             sheetjson.String `json:"status"`
	PaymentType        sheetjson.String `json:"paymentType"`
	AttendanceRequired sheetjson.String `json:"attendance_required"`
	Nationality        sheetjson.String `json:"nationality"`
	Phone              sheetjson.String `json:"phone"`
	Email              sheetjson.String `json:"email"`
	IBAN               sheetjson.String `json:"iban_bank"`
	StartDate          sheetjson.String `json:"start_date"`
	IqamaExpiryDate    sheetjson.String `json:"iqama_expiry_date"`
	RateOfPayment      sheetjson.Float  `json:"rateOfPayment"`
	Comments           sheetjson.String `json:"comments"`
}

func (r employeeRow) toEmployee() employee.Employee {
	// Only an explicit false opts out. Blank cells and rows without the
	// column count as required.
	v, ok := sheetjson.ParseBool(r.AttendanceRequired.String())
	required := !ok || v
	return employee.Employee{
		ID:                 r.EmployeeID.String(),
		FullName:           r.FullName.String(),
		IqamaNumber:        r.IqamaNumber.String(),
		JobTitle:           r.JobTitle.String(),
		Project:            r.Project.String(),
		Location:           r.Location.String(),
		Sponsorship:        r.Sponsorship.String(),
		Status:             employee.ParseEmploymentStatus(r.Status.String()),
		PaymentType:        employee.ParsePaymentType(r.PaymentType.String()),
		AttendanceRequired: required,
		Nationality:        r.Nationality.String(),
		PhoneNumber:        r.Phone.String(),
		Email:              r.Email.String(),
		IBAN:               r.IBAN.String(),
		StartDate:          r.StartDate.String(),
		IqamaExpiryDate:    r.IqamaExpiryDate.String(),
		RateOfPayment:      r.RateOfPayment.Ptr(),
		Comments:           r.Comments.String(),
	}
}

type employeeRepositoryImpl struct {
	client gateway.Caller
}

func NewEmployeeRepository(client gateway.Caller) employee.EmployeeRepository {
	return &employeeRepositoryImpl{client: client}
}

// List implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) List(ctx context.Context) ([]employee.Employee, error) {
	var rows []employeeRow
	if err := r.client.Do(ctx, gateway.ReadEmployees{}, &rows); err != nil {
		return nil, err
	}

	employees := make([]employee.Employee, 0, len(rows))
	for _, row := range rows {
		if row.EmployeeID == "" {
			continue
		}
		employees = append(employees, row.toEmployee())
	}
	return employees, nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	var row employeeRow
	if err := r.client.Do(ctx, gateway.GetEmployee{ID: id}, &row); err != nil {
		var statusErr *gateway.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, err
	}
	if row.EmployeeID == "" && row.FullName == "" {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}

	emp := row.toEmployee()
	if emp.ID == "" {
		emp.ID = id
	}
	return emp, nil
}

// Create implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Create(ctx context.Context, input employee.EmployeeInput) error {
	if err := r.client.Do(ctx, gateway.AddEmployee{Data: input}, nil); err != nil {
		return fmt.Errorf("failed to create employee: %w", err)
	}
	return nil
}

// Update implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Update(ctx context.Context, id string, input employee.EmployeeInput) error {
	if err := r.client.Do(ctx, gateway.UpdateEmployee{ID: id, Data: input}, nil); err != nil {
		return fmt.Errorf("failed to update employee %s: %w", id, err)
	}
	return nil
}
