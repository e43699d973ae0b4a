package gateway

type Entity string

const (
	EntityEmployees  Entity = "employees"
	EntityAttendance Entity = "attendance"
	EntityUsers      Entity = "users"
)

type Operation string

const (
	OpRead   Operation = "read"
	OpGet    Operation = "get"
	OpAdd    Operation = "add"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	OpLogin  Operation = "login"
)

// Envelope is the body of every call to the gateway. Only the fields relevant
// to the (entity, operation) pair are set.
type Envelope struct {
	Entity    Entity    `json:"entity"`
	Operation Operation `json:"operation"`
	Data      any       `json:"data,omitempty"`
	Date      string    `json:"date,omitempty"`
	ID        string    `json:"id,omitempty"`
	Email     string    `json:"email,omitempty"`
	Password  string    `json:"password,omitempty"`
}

// Request is implemented only by the request types of this package, one per
// supported (entity, operation) pair.
type Request interface {
	envelope() Envelope
}

type ReadEmployees struct{}

func (ReadEmployees) envelope() Envelope {
	return Envelope{Entity: EntityEmployees, Operation: OpRead}
}

type GetEmployee struct {
	ID string
}

func (r GetEmployee) envelope() Envelope {
	return Envelope{Entity: EntityEmployees, Operation: OpGet, ID: r.ID}
}

type AddEmployee struct {
	Data any
}

func (r AddEmployee) envelope() Envelope {
	return Envelope{Entity: EntityEmployees, Operation: OpAdd, Data: r.Data}
}

type UpdateEmployee struct {
	ID   string
	Data any
}

func (r UpdateEmployee) envelope() Envelope {
	return Envelope{Entity: EntityEmployees, Operation: OpUpdate, ID: r.ID, Data: r.Data}
}

// ReadAttendance lists the attendance rows of one calendar day (yyyy-MM-dd).
type ReadAttendance struct {
	Date string
}

func (r ReadAttendance) envelope() Envelope {
	return Envelope{Entity: EntityAttendance, Operation: OpRead, Date: r.Date}
}

type AddAttendance struct {
	Records []AttendanceRow
}

func (r AddAttendance) envelope() Envelope {
	return Envelope{Entity: EntityAttendance, Operation: OpAdd, Data: r.Records}
}

type UpdateAttendance struct {
	Records []AttendanceRow
}

func (r UpdateAttendance) envelope() Envelope {
	return Envelope{Entity: EntityAttendance, Operation: OpUpdate, Data: r.Records}
}

type DeleteAttendance struct {
	IDs []string
}

type attendanceKey struct {
	AttendanceID string `json:"attendance_id"`
}

func (r DeleteAttendance) envelope() Envelope {
	keys := make([]attendanceKey, 0, len(r.IDs))
	for _, id := range r.IDs {
		keys = append(keys, attendanceKey{AttendanceID: id})
	}
	return Envelope{Entity: EntityAttendance, Operation: OpDelete, Data: keys}
}

type Login struct {
	Email    string
	Password string
}

func (r Login) envelope() Envelope {
	return Envelope{Entity: EntityUsers, Operation: OpLogin, Email: r.Email, Password: r.Password}
}

// AttendanceRow is the upsert payload of one attendance record. Status is
// always lowercase on the wire.
type AttendanceRow struct {
	AttendanceID string   `json:"attendance_id,omitempty"`
	EmployeeID   string   `json:"employee_id"`
	FullName     string   `json:"fullName"`
	Date         string   `json:"date"`
	Status       string   `json:"status"`
	StartTime    *string  `json:"start_time"`
	EndTime      *string  `json:"end_time"`
	Overtime     *float64 `json:"overtime"`
	Note         *string  `json:"note"`
	CreatedAt    string   `json:"created_at,omitempty"`
	UpdatedAt    string   `json:"updated_at"`
}

// LoginResult is the body of a successful users/login call.
type LoginResult struct {
	Token string `json:"token"`
}
