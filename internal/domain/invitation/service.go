package invitation

import (
	"context"

	"github.com/punchcard-hq/punchcard-backend/internal/domain/employee"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/notification"
)

// Issuer generates and stores a token for an employee and builds the invitation event.
// The caller dispatches the event after its transaction commits.
type Issuer interface {
	Issue(ctx context.Context, e employee.Employee, companyName string) (notification.Event, error)
}
