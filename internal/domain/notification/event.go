package notification

// Recipient is an employee, a bare address, or both.
// Employees get an inbox row; anyone with an email gets an email.
type Recipient struct {
	EmployeeID string
	Name       string
	Email      string
}

// Payload is the typed content of an event.
type Payload interface {
	Type() NotificationType
}

// Event is one outbound notification produced by a mutation.
type Event struct {
	CompanyID string
	To        []Recipient
	// ToAdmins asks the dispatcher to resolve the tenant's admin recipients:
	// the owner email when configured, every admin otherwise.
	ToAdmins bool
	Payload  Payload
}

func (e Event) Type() NotificationType {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.Type()
}

// Outbox collects events during a mutation. It is drained after the write commits.
type Outbox struct {
	events   []Event
	warnings []string
}

func (o *Outbox) Add(e Event) {
	o.events = append(o.events, e)
}

func (o *Outbox) Events() []Event {
	out := make([]Event, len(o.events))
	copy(out, o.events)
	return out
}

func (o *Outbox) Len() int {
	return len(o.events)
}

// Fail records a notification that could not even be queued.
func (o *Outbox) Fail(t NotificationType) {
	o.warnings = append(o.warnings, WarningFor(t))
}

func (o *Outbox) Warnings() []string {
	return o.warnings
}

// RequestKind distinguishes the two kinds of employee requests an admin resolves.
type RequestKind string

const (
	RequestKindChange   RequestKind = "change_request"
	RequestKindVacation RequestKind = "vacation"
)

type ChangeRequestSubmitted struct {
	EntryID      string
	EmployeeName string
	Date         string
	Summary      string
	Reason       string
}

func (ChangeRequestSubmitted) Type() NotificationType { return TypeChangeRequestSubmitted }

type RequestResolved struct {
	EntryID      string
	EmployeeName string
	Date         string
	Kind         RequestKind
	Approved     bool
	Note         string
}

func (p RequestResolved) Type() NotificationType {
	if p.Kind == RequestKindVacation {
		return TypeVacationResolved
	}
	return TypeChangeRequestResolved
}

// Status is "approved" or "rejected".
func (p RequestResolved) Status() string {
	if p.Approved {
		return "approved"
	}
	return "rejected"
}

type VacationRequested struct {
	EntryID      string
	EmployeeName string
	Date         string
	Reason       string
}

func (VacationRequested) Type() NotificationType { return TypeVacationRequested }

type Invitation struct {
	EmployeeName string
	CompanyName  string
	Token        string
	AcceptURL    string
	ExpiresAt    string
}

func (Invitation) Type() NotificationType { return TypeInvitation }

// PeriodReportRow is one formatted line of the emailed report table.
type PeriodReportRow struct {
	Name         string
	Role         string
	Hours        string
	DaysWorked   int
	SickDays     string
	VacationDays int
	TotalPay     string
}

// Attachment is a file attached to an email.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type PeriodReport struct {
	CompanyName string
	PeriodLabel string
	Rows        []PeriodReportRow
	TotalHours  string
	TotalPay    string
	Attachment  *Attachment
}

func (PeriodReport) Type() NotificationType { return TypePeriodReport }

type MissingClockOut struct {
	EntryID      string
	EmployeeName string
	Date         string
	ClockIn      string
}

func (MissingClockOut) Type() NotificationType { return TypeMissingClockOut }

// WarningFor is the soft warning returned when delivery of t failed.
func WarningFor(t NotificationType) string {
	switch t {
	case TypeChangeRequestSubmitted:
		return "Change request was saved, but the notification email failed"
	case TypeChangeRequestResolved:
		return "Change request decision was saved, but the notification email failed"
	case TypeVacationRequested:
		return "Vacation request was saved, but the notification email failed"
	case TypeVacationResolved:
		return "Vacation decision was saved, but the notification email failed"
	case TypeInvitation:
		return "Employee was saved, but the invitation email failed"
	case TypePeriodReport:
		return "Report was generated, but the email failed"
	case TypeMissingClockOut:
		return "Missing clock-out reminder could not be sent"
	default:
		return "The notification email failed"
	}
}
