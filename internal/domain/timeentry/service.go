package timeentry

import "context"

// TimeEntryService defines business operations on time entries.
// The caller identity (company, employee, role) comes from the JWT claims in ctx.
type TimeEntryService interface {
	// Today returns the caller's entry, stats, status and allowed actions for the current business day
	Today(ctx context.Context) (TodayResponse, error)

	ClockIn(ctx context.Context) (MutationResponse, error)
	ClockOut(ctx context.Context) (MutationResponse, error)
	StartBreak(ctx context.Context) (MutationResponse, error)
	EndBreak(ctx context.Context) (MutationResponse, error)

	// ToggleOffDay switches sick, half-sick or vacation on today's entry. Vacation becomes a request.
	ToggleOffDay(ctx context.Context, req ToggleOffDayRequest) (MutationResponse, error)

	RequestVacation(ctx context.Context, req VacationRequest) (MutationResponse, error)

	// SubmitChangeRequest attaches a proposal to the day, creating a placeholder entry if needed
	SubmitChangeRequest(ctx context.Context, req ChangeRequestRequest) (MutationResponse, error)

	ListMine(ctx context.Context, filter MyTimeEntryFilter) (ListTimeEntryResponse, error)
	VacationBalance(ctx context.Context) (VacationBalanceResponse, error)

	// List retrieves entries with filters (admin, bookkeeper)
	List(ctx context.Context, filter TimeEntryFilter) (ListTimeEntryResponse, error)

	// Get returns one entry together with its change request reconciliation
	Get(ctx context.Context, id string) (TimeEntryDetailResponse, error)

	AdminCreate(ctx context.Context, req AdminCreateRequest) (MutationResponse, error)

	// AdminSave overwrites the entry and discards any pending change request
	AdminSave(ctx context.Context, req AdminSaveRequest) (MutationResponse, error)

	ApproveChangeRequest(ctx context.Context, req ResolveRequest) (MutationResponse, error)
	DenyChangeRequest(ctx context.Context, req ResolveRequest) (MutationResponse, error)
	ApproveVacation(ctx context.Context, req ResolveRequest) (MutationResponse, error)
	DenyVacation(ctx context.Context, req ResolveRequest) (MutationResponse, error)

	Delete(ctx context.Context, id string) error
}
