package timeentry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/notification"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/timeentry"
)

// Today implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) Today(ctx context.Context) (timeentry.TodayResponse, error) {
	sess, err := s.begin(ctx)
	if err != nil {
		return timeentry.TodayResponse{}, err
	}

	entry, err := s.findDay(ctx, sess.claims.CompanyID, sess.claims.EmployeeID, sess.today)
	if err != nil {
		return timeentry.TodayResponse{}, err
	}

	blocking, err := s.blockingEntry(ctx, sess)
	if err != nil {
		return timeentry.TodayResponse{}, err
	}

	resp := timeentry.TodayResponse{
		Date:           sess.today,
		Stats:          timeentry.ComputeStats(entry, sess.now, sess.loc),
		Status:         timeentry.DeriveStatus(entry),
		AllowedActions: s.allowedActions(sess, entry, blocking),
		HalfSickCutoff: sess.settings.Cutoff(),
	}
	if entry != nil {
		view := toResponse(*entry, "", sess.now, sess.loc)
		resp.Entry = &view
	}
	if blocking != nil {
		view := toResponse(*blocking, "", sess.now, sess.loc)
		resp.BlockingEntry = &view
	}
	return resp, nil
}

// allowedActions narrows the state machine's actions by the checks that
// depend on more than today's entry.
func (s *TimeEntryServiceImpl) allowedActions(sess session, entry *timeentry.TimeEntry, blocking *timeentry.TimeEntry) []timeentry.Action {
	status := timeentry.DeriveStatus(entry)
	out := []timeentry.Action{}
	if blocking != nil && status == timeentry.StatusIdle {
		return out
	}

	for _, action := range timeentry.AllowedActions(status) {
		switch action {
		case timeentry.ActionClockIn:
			if entry.IsOpenVacationRequest() {
				continue
			}
		case timeentry.ActionToggleHalfSick:
			if entry == nil || !entry.Current.IsHalfSickDay {
				allowed, err := sess.settings.HalfSickAllowedAt(sess.today, sess.now)
				if err != nil || !allowed {
					continue
				}
			}
		case timeentry.ActionToggleVacation:
			if entry != nil && !entry.Current.IsVacationDay && entry.Current.HasWorkData() {
				continue
			}
		}
		out = append(out, action)
	}
	return out
}

// ClockIn implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) ClockIn(ctx context.Context) (timeentry.MutationResponse, error) {
	sess, err := s.begin(ctx)
	if err != nil {
		return timeentry.MutationResponse{}, err
	}

	entry, err := s.findDay(ctx, sess.claims.CompanyID, sess.claims.EmployeeID, sess.today)
	if err != nil {
		return timeentry.MutationResponse{}, err
	}

	if entry.IsOpenVacationRequest() {
		return timeentry.MutationResponse{}, timeentry.ErrVacationRequestPending
	}
	status := timeentry.DeriveStatus(entry)
	if !status.Allows(timeentry.ActionClockIn) {
		switch status {
		case timeentry.StatusWorking, timeentry.StatusBreak, timeentry.StatusDone:
			return timeentry.MutationResponse{}, timeentry.ErrAlreadyClockedIn
		default:
			return timeentry.MutationResponse{}, timeentry.ErrActionNotAllowed
		}
	}

	blocking, err := s.blockingEntry(ctx, sess)
	if err != nil {
		return timeentry.MutationResponse{}, err
	}
	if blocking != nil {
		return timeentry.MutationResponse{}, timeentry.ErrBlockedByPastEntry
	}

	now := sess.now
	var saved timeentry.TimeEntry
	if entry == nil {
		saved, err = s.create(ctx, timeentry.TimeEntry{
			CompanyID:  sess.claims.CompanyID,
			EmployeeID: sess.claims.EmployeeID,
			Date:       sess.today,
			Current:    timeentry.Fields{ClockIn: &now, Breaks: []timeentry.Break{}},
		}, now)
	} else {
		updated := entry.Clone()
		updated.Current.ClockIn = &now
		saved, err = s.update(ctx, updated, now)
	}
	if err != nil {
		return timeentry.MutationResponse{}, err
	}

	return s.finish(ctx, sess, &saved, "", nil), nil
}

// ClockOut implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) ClockOut(ctx context.Context) (timeentry.MutationResponse, error) {
	return s.dayAction(ctx, timeentry.ActionClockOut, func(f *timeentry.Fields, now time.Time) {
		f.ClockOut = &now
	})
}

// StartBreak implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) StartBreak(ctx context.Context) (timeentry.MutationResponse, error) {
	return s.dayAction(ctx, timeentry.ActionStartBreak, func(f *timeentry.Fields, now time.Time) {
		f.Breaks = append(f.Breaks, timeentry.Break{ID: uuid.NewString(), StartTime: now})
	})
}

// EndBreak implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) EndBreak(ctx context.Context) (timeentry.MutationResponse, error) {
	return s.dayAction(ctx, timeentry.ActionEndBreak, func(f *timeentry.Fields, now time.Time) {
		if b := f.OpenBreak(); b != nil {
			b.EndTime = &now
		}
	})
}

// dayAction runs a clock action on today's existing entry once the status permits it.
func (s *TimeEntryServiceImpl) dayAction(ctx context.Context, action timeentry.Action, apply func(f *timeentry.Fields, now time.Time)) (timeentry.MutationResponse, error) {
	sess, err := s.begin(ctx)
	if err != nil {
		return timeentry.MutationResponse{}, err
	}

	entry, err := s.findDay(ctx, sess.claims.CompanyID, sess.claims.EmployeeID, sess.today)
	if err != nil {
		return timeentry.MutationResponse{}, err
	}

	status := timeentry.DeriveStatus(entry)
	if !status.Allows(action) {
		return timeentry.MutationResponse{}, actionError(status, action)
	}

	updated := entry.Clone()
	apply(&updated.Current, sess.now)
	fields, err := timeentry.PrepareForSave(updated.Current)
	if err != nil {
		return timeentry.MutationResponse{}, err
	}
	updated.Current = fields

	saved, err := s.update(ctx, updated, sess.now)
	if err != nil {
		return timeentry.MutationResponse{}, err
	}
	return s.finish(ctx, sess, &saved, "", nil), nil
}

func actionError(status timeentry.Status, action timeentry.Action) error {
	switch {
	case action == timeentry.ActionEndBreak:
		return timeentry.ErrNoOpenBreak
	case status == timeentry.StatusIdle:
		return timeentry.ErrNotClockedIn
	default:
		return timeentry.ErrActionNotAllowed
	}
}

// ToggleOffDay implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) ToggleOffDay(ctx context.Context, req timeentry.ToggleOffDayRequest) (timeentry.MutationResponse, error) {
	if err := req.Validate(); err != nil {
		return timeentry.MutationResponse{}, err
	}

	sess, err := s.begin(ctx)
	if err != nil {
		return timeentry.MutationResponse{}, err
	}

	entry, err := s.findDay(ctx, sess.claims.CompanyID, sess.claims.EmployeeID, sess.today)
	if err != nil {
		return timeentry.MutationResponse{}, err
	}

	status := timeentry.DeriveStatus(entry)
	if !status.Allows(timeentry.ToggleAction(req.Type)) {
		return timeentry.MutationResponse{}, timeentry.ErrActionNotAllowed
	}
	// Same gate as allowedActions: an idle day stays locked until the past entry is fixed.
	if status == timeentry.StatusIdle {
		blocking, err := s.blockingEntry(ctx, sess)
		if err != nil {
			return timeentry.MutationResponse{}, err
		}
		if blocking != nil {
			return timeentry.MutationResponse{}, timeentry.ErrBlockedByPastEntry
		}
	}

	if req.On && req.Type == timeentry.OffDayVacation {
		return s.requestVacation(ctx, sess, sess.today, "", entry)
	}

	if entry == nil {
		if !req.On {
			return timeentry.MutationResponse{}, nil
		}
		entry = &timeentry.TimeEntry{
			CompanyID:  sess.claims.CompanyID,
			EmployeeID: sess.claims.EmployeeID,
			Date:       sess.today,
			Current:    timeentry.Fields{Breaks: []timeentry.Break{}},
		}
	}
	exists := entry.ID != ""
	updated := entry.Clone()

	if req.On {
		if req.Type == timeentry.OffDayHalfSick {
			allowed, err := sess.settings.HalfSickAllowedAt(sess.today, sess.now)
			if err != nil {
				return timeentry.MutationResponse{}, fmt.Errorf("failed to evaluate half-sick cutoff: %w", err)
			}
			if !allowed {
				return timeentry.MutationResponse{}, timeentry.ErrHalfSickBeforeCutoff
			}
			if status == timeentry.StatusWorking {
				now := sess.now
				updated.Current.ClockOut = &now
			}
		}
		// Being sick replaces an open vacation request for the same day.
		if updated.IsOpenVacationRequest() {
			updated.PendingApproval = false
		}
	} else if req.Type == timeentry.OffDayVacation && updated.IsOpenVacationRequest() {
		updated.PendingApproval = false
		if isResidual(updated) {
			updated.Current.Notes = ""
		}
	}

	fields, err := timeentry.PrepareForSave(timeentry.ToggleOffDay(updated.Current, req.Type, req.On))
	if err != nil {
		return timeentry.MutationResponse{}, err
	}
	updated.Current = fields

	saved, err := s.save(ctx, updated, exists, sess.now)
	if err != nil {
		return timeentry.MutationResponse{}, err
	}
	return s.finish(ctx, sess, saved, "", nil), nil
}

// RequestVacation implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) RequestVacation(ctx context.Context, req timeentry.VacationRequest) (timeentry.MutationResponse, error) {
	if err := req.Validate(); err != nil {
		return timeentry.MutationResponse{}, err
	}

	sess, err := s.begin(ctx)
	if err != nil {
		return timeentry.MutationResponse{}, err
	}
	if req.Date < sess.today {
		return timeentry.MutationResponse{}, timeentry.ErrVacationInPast
	}

	entry, err := s.findDay(ctx, sess.claims.CompanyID, sess.claims.EmployeeID, req.Date)
	if err != nil {
		return timeentry.MutationResponse{}, err
	}
	return s.requestVacation(ctx, sess, req.Date, req.Reason, entry)
}

func (s *TimeEntryServiceImpl) requestVacation(ctx context.Context, sess session, date, reason string, entry *timeentry.TimeEntry) (timeentry.MutationResponse, error) {
	if entry != nil {
		switch {
		case entry.Current.IsVacationDay:
			return timeentry.MutationResponse{}, timeentry.ErrVacationAlreadyGranted
		case entry.IsOpenVacationRequest():
			return timeentry.MutationResponse{}, timeentry.ErrVacationRequestPending
		case entry.Current.HasWorkData():
			return timeentry.MutationResponse{}, timeentry.ErrDayAlreadyHasWorkRecord
		}
	}

	emp, err := s.loadEmployee(ctx, sess.claims.EmployeeID, sess.claims.CompanyID)
	if err != nil {
		return timeentry.MutationResponse{}, err
	}

	year := date[:4]
	count, err := s.repo.CountVacationDays(ctx, emp.ID, year+"-01-01", year+"-12-31", sess.claims.CompanyID)
	if err != nil {
		return timeentry.MutationResponse{}, fmt.Errorf("failed to count vacation days: %w", err)
	}
	if count.Granted+count.Pending >= emp.VacationDaysTotal {
		return timeentry.MutationResponse{}, timeentry.ErrVacationDaysExhausted
	}

	var (
		updated timeentry.TimeEntry
		exists  bool
	)
	if entry != nil {
		updated = entry.Clone()
		exists = true
	} else {
		updated = timeentry.TimeEntry{
			CompanyID:  sess.claims.CompanyID,
			EmployeeID: emp.ID,
			Date:       date,
			Current:    timeentry.Fields{Breaks: []timeentry.Break{}},
		}
	}
	updated.PendingApproval = true
	if reason != "" {
		updated.Current.Notes = reason
	}

	saved, err := s.save(ctx, updated, exists, sess.now)
	if err != nil {
		return timeentry.MutationResponse{}, err
	}

	var outbox notification.Outbox
	outbox.Add(notification.Event{
		CompanyID: sess.claims.CompanyID,
		ToAdmins:  true,
		Payload: notification.VacationRequested{
			EntryID:      saved.ID,
			EmployeeName: emp.Name,
			Date:         date,
			Reason:       reason,
		},
	})
	return s.finish(ctx, sess, saved, emp.Name, &outbox), nil
}

// SubmitChangeRequest implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) SubmitChangeRequest(ctx context.Context, req timeentry.ChangeRequestRequest) (timeentry.MutationResponse, error) {
	if err := req.Validate(); err != nil {
		return timeentry.MutationResponse{}, err
	}

	sess, err := s.begin(ctx)
	if err != nil {
		return timeentry.MutationResponse{}, err
	}
	if req.Date > sess.today {
		return timeentry.MutationResponse{}, timeentry.ErrFutureDate
	}

	entry, err := s.findDay(ctx, sess.claims.CompanyID, sess.claims.EmployeeID, req.Date)
	if err != nil {
		return timeentry.MutationResponse{}, err
	}
	if entry.HasChangeRequest() {
		return timeentry.MutationResponse{}, timeentry.ErrChangeRequestPending
	}
	if entry.IsOpenVacationRequest() {
		return timeentry.MutationResponse{}, timeentry.ErrVacationRequestPending
	}

	patch, err := req.ToPatch(sess.loc)
	if err != nil {
		return timeentry.MutationResponse{}, fmt.Errorf("failed to resolve change request times: %w", err)
	}
	if patch.IsEmpty() {
		return timeentry.MutationResponse{}, timeentry.ErrEmptyChangeRequest
	}

	var (
		updated timeentry.TimeEntry
		exists  bool
	)
	if entry != nil {
		updated = entry.Clone()
		exists = true
	} else {
		updated = timeentry.TimeEntry{
			CompanyID:  sess.claims.CompanyID,
			EmployeeID: sess.claims.EmployeeID,
			Date:       req.Date,
			Current:    timeentry.Fields{Breaks: []timeentry.Break{}},
		}
	}

	proposed, err := timeentry.PrepareForSave(timeentry.ApplyPatch(updated.Current, patch))
	if err != nil {
		return timeentry.MutationResponse{}, err
	}
	updated.Pending = &timeentry.ChangeRequest{
		Fields:      proposed,
		Reason:      req.Reason,
		SubmittedAt: sess.now,
	}

	saved, err := s.save(ctx, updated, exists, sess.now)
	if err != nil {
		return timeentry.MutationResponse{}, err
	}

	name := s.employeeName(ctx, sess.claims.EmployeeID, sess.claims.CompanyID)
	var outbox notification.Outbox
	outbox.Add(notification.Event{
		CompanyID: sess.claims.CompanyID,
		ToAdmins:  true,
		Payload: notification.ChangeRequestSubmitted{
			EntryID:      saved.ID,
			EmployeeName: name,
			Date:         req.Date,
			Summary:      timeentry.Summary(proposed, sess.loc),
			Reason:       req.Reason,
		},
	})
	return s.finish(ctx, sess, saved, name, &outbox), nil
}

// ListMine implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) ListMine(ctx context.Context, filter timeentry.MyTimeEntryFilter) (timeentry.ListTimeEntryResponse, error) {
	if err := filter.Validate(); err != nil {
		return timeentry.ListTimeEntryResponse{}, err
	}

	sess, err := s.begin(ctx)
	if err != nil {
		return timeentry.ListTimeEntryResponse{}, err
	}

	employeeID := sess.claims.EmployeeID
	entries, total, err := s.repo.List(ctx, timeentry.Filter{
		EmployeeID: &employeeID,
		StartDate:  filter.StartDate,
		EndDate:    filter.EndDate,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, sess.claims.CompanyID)
	if err != nil {
		return timeentry.ListTimeEntryResponse{}, fmt.Errorf("failed to list my time entries: %w", err)
	}

	return toListResponse(entries, nil, total, filter.Page, filter.Limit, sess.now, sess.loc), nil
}

// VacationBalance implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) VacationBalance(ctx context.Context) (timeentry.VacationBalanceResponse, error) {
	sess, err := s.begin(ctx)
	if err != nil {
		return timeentry.VacationBalanceResponse{}, err
	}

	emp, err := s.loadEmployee(ctx, sess.claims.EmployeeID, sess.claims.CompanyID)
	if err != nil {
		return timeentry.VacationBalanceResponse{}, err
	}

	year := sess.now.In(sess.loc).Year()
	count, err := s.repo.CountVacationDays(ctx, emp.ID, fmt.Sprintf("%d-01-01", year), fmt.Sprintf("%d-12-31", year), sess.claims.CompanyID)
	if err != nil {
		return timeentry.VacationBalanceResponse{}, fmt.Errorf("failed to count vacation days: %w", err)
	}

	remaining := emp.VacationDaysTotal - count.Granted
	if remaining < 0 {
		remaining = 0
	}

	return timeentry.VacationBalanceResponse{
		Year:      year,
		Allotment: emp.VacationDaysTotal,
		Used:      count.Granted,
		Pending:   count.Pending,
		Remaining: remaining,
	}, nil
}
