package timeentry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/punchcard-hq/punchcard-backend/internal/domain/employee"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/notification"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/timeentry"
)

const directEditNote = "Updated directly by an admin"

// isResidual is true when a resolved request leaves nothing behind but notes.
func isResidual(e timeentry.TimeEntry) bool {
	return !e.Current.HasWorkData() && !e.Current.HasOffDayFlag() &&
		e.Pending == nil && !e.PendingApproval
}

// List implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) List(ctx context.Context, filter timeentry.TimeEntryFilter) (timeentry.ListTimeEntryResponse, error) {
	if err := filter.Validate(); err != nil {
		return timeentry.ListTimeEntryResponse{}, err
	}

	sess, err := s.begin(ctx)
	if err != nil {
		return timeentry.ListTimeEntryResponse{}, err
	}

	entries, total, err := s.repo.List(ctx, timeentry.Filter{
		EmployeeID:  filter.EmployeeID,
		StartDate:   filter.StartDate,
		EndDate:     filter.EndDate,
		PendingOnly: filter.PendingOnly,
		Page:        filter.Page,
		Limit:       filter.Limit,
	}, sess.claims.CompanyID)
	if err != nil {
		return timeentry.ListTimeEntryResponse{}, fmt.Errorf("failed to list time entries: %w", err)
	}

	employees, err := s.employeeRepo.ListAll(ctx, sess.claims.CompanyID, true)
	if err != nil {
		return timeentry.ListTimeEntryResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}
	names := make(map[string]string, len(employees))
	for _, e := range employees {
		names[e.ID] = e.Name
	}

	return toListResponse(entries, names, total, filter.Page, filter.Limit, sess.now, sess.loc), nil
}

// Get implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) Get(ctx context.Context, id string) (timeentry.TimeEntryDetailResponse, error) {
	sess, err := s.begin(ctx)
	if err != nil {
		return timeentry.TimeEntryDetailResponse{}, err
	}

	entry, err := s.getEntry(ctx, id, sess.claims.CompanyID)
	if err != nil {
		return timeentry.TimeEntryDetailResponse{}, err
	}

	name := s.employeeName(ctx, entry.EmployeeID, entry.CompanyID)
	return toDetailResponse(entry, name, sess.now, sess.loc), nil
}

// AdminCreate implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) AdminCreate(ctx context.Context, req timeentry.AdminCreateRequest) (timeentry.MutationResponse, error) {
	if err := req.Validate(); err != nil {
		return timeentry.MutationResponse{}, err
	}

	sess, err := s.begin(ctx)
	if err != nil {
		return timeentry.MutationResponse{}, err
	}

	emp, err := s.loadEmployee(ctx, req.EmployeeID, sess.claims.CompanyID)
	if err != nil {
		return timeentry.MutationResponse{}, err
	}

	existing, err := s.findDay(ctx, sess.claims.CompanyID, emp.ID, req.Date)
	if err != nil {
		return timeentry.MutationResponse{}, err
	}
	if existing != nil {
		return timeentry.MutationResponse{}, timeentry.ErrTimeEntryExists
	}

	fields, err := req.ToFields(req.Date, sess.loc)
	if err != nil {
		return timeentry.MutationResponse{}, fmt.Errorf("failed to resolve entry times: %w", err)
	}
	fields, err = timeentry.PrepareForSave(fields)
	if err != nil {
		return timeentry.MutationResponse{}, err
	}

	saved, err := s.create(ctx, timeentry.TimeEntry{
		CompanyID:  sess.claims.CompanyID,
		EmployeeID: emp.ID,
		Date:       req.Date,
		Current:    fields,
	}, sess.now)
	if err != nil {
		return timeentry.MutationResponse{}, err
	}

	return s.finish(ctx, sess, &saved, emp.Name, nil), nil
}

// AdminSave implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) AdminSave(ctx context.Context, req timeentry.AdminSaveRequest) (timeentry.MutationResponse, error) {
	if err := req.Validate(); err != nil {
		return timeentry.MutationResponse{}, err
	}

	sess, err := s.begin(ctx)
	if err != nil {
		return timeentry.MutationResponse{}, err
	}

	entry, err := s.getEntry(ctx, req.ID, sess.claims.CompanyID)
	if err != nil {
		return timeentry.MutationResponse{}, err
	}

	fields, err := req.ToFields(entry.Date, sess.loc)
	if err != nil {
		return timeentry.MutationResponse{}, fmt.Errorf("failed to resolve entry times: %w", err)
	}
	fields, err = timeentry.PrepareForSave(fields)
	if err != nil {
		return timeentry.MutationResponse{}, err
	}

	hadChangeRequest := entry.Pending != nil
	updated := entry.Clone()
	updated.Current = fields
	updated.Pending = nil
	updated.PendingApproval = false

	saved, err := s.update(ctx, updated, sess.now)
	if err != nil {
		return timeentry.MutationResponse{}, err
	}

	var outbox notification.Outbox
	name := ""
	if hadChangeRequest {
		name = s.addResolved(ctx, &outbox, saved, notification.RequestKindChange, true, directEditNote)
	}
	return s.finish(ctx, sess, &saved, name, &outbox), nil
}

// ApproveChangeRequest implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) ApproveChangeRequest(ctx context.Context, req timeentry.ResolveRequest) (timeentry.MutationResponse, error) {
	return s.resolve(ctx, req, notification.RequestKindChange, true)
}

// DenyChangeRequest implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) DenyChangeRequest(ctx context.Context, req timeentry.ResolveRequest) (timeentry.MutationResponse, error) {
	return s.resolve(ctx, req, notification.RequestKindChange, false)
}

// ApproveVacation implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) ApproveVacation(ctx context.Context, req timeentry.ResolveRequest) (timeentry.MutationResponse, error) {
	return s.resolve(ctx, req, notification.RequestKindVacation, true)
}

// DenyVacation implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) DenyVacation(ctx context.Context, req timeentry.ResolveRequest) (timeentry.MutationResponse, error) {
	return s.resolve(ctx, req, notification.RequestKindVacation, false)
}

// resolve settles one pending request on an entry and notifies its employee.
// Denials that leave nothing behind delete the entry.
func (s *TimeEntryServiceImpl) resolve(ctx context.Context, req timeentry.ResolveRequest, kind notification.RequestKind, approve bool) (timeentry.MutationResponse, error) {
	if err := req.Validate(); err != nil {
		return timeentry.MutationResponse{}, err
	}

	sess, err := s.begin(ctx)
	if err != nil {
		return timeentry.MutationResponse{}, err
	}

	entry, err := s.getEntry(ctx, req.ID, sess.claims.CompanyID)
	if err != nil {
		return timeentry.MutationResponse{}, err
	}

	updated := entry.Clone()
	switch kind {
	case notification.RequestKindChange:
		if entry.Pending == nil {
			return timeentry.MutationResponse{}, timeentry.ErrNoChangeRequest
		}
		if approve {
			fields, err := timeentry.PrepareForSave(entry.Pending.Fields)
			if err != nil {
				return timeentry.MutationResponse{}, err
			}
			updated.Current = fields
		}
		updated.Pending = nil
	case notification.RequestKindVacation:
		if !entry.IsOpenVacationRequest() {
			return timeentry.MutationResponse{}, timeentry.ErrNoVacationRequest
		}
		if approve {
			updated.Current = timeentry.ToggleOffDay(updated.Current, timeentry.OffDayVacation, true)
		}
		updated.PendingApproval = false
	}

	var saved *timeentry.TimeEntry
	if !approve && isResidual(updated) {
		if err := s.remove(ctx, updated); err != nil {
			return timeentry.MutationResponse{}, err
		}
	} else {
		result, err := s.update(ctx, updated, sess.now)
		if err != nil {
			return timeentry.MutationResponse{}, err
		}
		saved = &result
	}

	var outbox notification.Outbox
	name := s.addResolved(ctx, &outbox, updated, kind, approve, req.Note)
	return s.finish(ctx, sess, saved, name, &outbox), nil
}

// addResolved queues the decision for the entry's employee and returns their name.
func (s *TimeEntryServiceImpl) addResolved(ctx context.Context, outbox *notification.Outbox, entry timeentry.TimeEntry, kind notification.RequestKind, approved bool, note string) string {
	payload := notification.RequestResolved{
		EntryID:  entry.ID,
		Date:     entry.Date,
		Kind:     kind,
		Approved: approved,
		Note:     note,
	}
	emp, err := s.employeeRepo.GetByID(ctx, entry.EmployeeID, entry.CompanyID)
	if err != nil {
		slog.Error("Failed to load employee for resolve notification", "error", err, "entry_id", entry.ID, "employee_id", entry.EmployeeID)
		outbox.Fail(payload.Type())
		return ""
	}

	payload.EmployeeName = emp.Name
	outbox.Add(notification.Event{
		CompanyID: entry.CompanyID,
		To:        []notification.Recipient{recipientFor(emp)},
		Payload:   payload,
	})
	return emp.Name
}

func recipientFor(emp employee.Employee) notification.Recipient {
	r := notification.Recipient{EmployeeID: emp.ID, Name: emp.Name}
	if emp.Email != nil {
		r.Email = *emp.Email
	}
	return r
}

// Delete implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) Delete(ctx context.Context, id string) error {
	sess, err := s.begin(ctx)
	if err != nil {
		return err
	}

	entry, err := s.getEntry(ctx, id, sess.claims.CompanyID)
	if err != nil {
		return err
	}
	return s.remove(ctx, entry)
}
