package timeentry

import (
	"fmt"
	"math"
	"time"

	"github.com/punchcard-hq/punchcard-backend/internal/domain/timeentry"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/timecalc"
)

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.UTC().Format(time.RFC3339)
	return &format
}

func toFieldsResponse(f timeentry.Fields, now time.Time, loc *time.Location) timeentry.FieldsResponse {
	breaks := make([]timeentry.BreakResponse, 0, len(f.Breaks))
	for _, b := range f.SortedBreaks() {
		start := b.StartTime
		breaks = append(breaks, timeentry.BreakResponse{
			ID:         b.ID,
			StartTime:  start.UTC().Format(time.RFC3339),
			EndTime:    timePtrToString(b.EndTime),
			StartLabel: timecalc.FormatClockTime(&start, loc),
			EndLabel:   timecalc.FormatClockTime(b.EndTime, loc),
			Minutes:    timecalc.MinutesBetween(b.StartTime, b.EndTime, now),
		})
	}

	return timeentry.FieldsResponse{
		ClockIn:       timePtrToString(f.ClockIn),
		ClockOut:      timePtrToString(f.ClockOut),
		ClockInLabel:  timecalc.FormatClockTime(f.ClockIn, loc),
		ClockOutLabel: timecalc.FormatClockTime(f.ClockOut, loc),
		Breaks:        breaks,
		Notes:         f.Notes,
		IsSickDay:     f.IsSickDay,
		IsHalfSickDay: f.IsHalfSickDay,
		IsVacationDay: f.IsVacationDay,
	}
}

func toResponse(e timeentry.TimeEntry, name string, now time.Time, loc *time.Location) timeentry.TimeEntryResponse {
	stats := timeentry.ComputeStats(&e, now, loc)
	resp := timeentry.TimeEntryResponse{
		ID:              e.ID,
		EmployeeID:      e.EmployeeID,
		EmployeeName:    name,
		Date:            e.Date,
		FieldsResponse:  toFieldsResponse(e.Current, now, loc),
		PendingApproval: e.PendingApproval,
		Stats:           stats,
		WorkedLabel:     timecalc.FormatDuration(stats.TotalWorkedMinutes),
		BreakLabel:      timecalc.FormatDuration(stats.TotalBreakMinutes),
		Status:          timeentry.DeriveStatus(&e),
	}
	if !e.CreatedAt.IsZero() {
		resp.CreatedAt = e.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !e.UpdatedAt.IsZero() {
		resp.UpdatedAt = e.UpdatedAt.UTC().Format(time.RFC3339)
	}
	if e.Pending != nil {
		resp.ChangeRequest = &timeentry.ChangeRequestResponse{
			FieldsResponse: toFieldsResponse(e.Pending.Fields, now, loc),
			Reason:         e.Pending.Reason,
			SubmittedAt:    e.Pending.SubmittedAt.UTC().Format(time.RFC3339),
			Summary:        timeentry.Summary(e.Pending.Fields, loc),
		}
	}
	return resp
}

func toDetailResponse(e timeentry.TimeEntry, name string, now time.Time, loc *time.Location) timeentry.TimeEntryDetailResponse {
	rec := timeentry.Reconcile(e, now, loc)
	detail := timeentry.TimeEntryDetailResponse{
		Entry: toResponse(e, name, now, loc),
		Reconciliation: timeentry.ReconciliationResponse{
			Merged:        toFieldsResponse(rec.Merged.Current, now, loc),
			Original:      toFieldsResponse(rec.Original, now, loc),
			OriginalStats: rec.OriginalStats,
			ProposedStats: rec.ProposedStats,
			DeltaMinutes:  rec.DeltaMinutes,
			DeltaLabel:    rec.DeltaLabel,
		},
	}
	if rec.Proposed != nil {
		proposed := toFieldsResponse(*rec.Proposed, now, loc)
		detail.Reconciliation.Proposed = &proposed
	}
	return detail
}

func toListResponse(entries []timeentry.TimeEntry, names map[string]string, total int64, page, limit int, now time.Time, loc *time.Location) timeentry.ListTimeEntryResponse {
	responses := make([]timeentry.TimeEntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, toResponse(e, names[e.EmployeeID], now, loc))
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	showing := fmt.Sprintf("%d-%d of %d", (page-1)*limit+1, min(page*limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return timeentry.ListTimeEntryResponse{
		TotalCount:  total,
		Page:        page,
		Limit:       limit,
		TotalPages:  totalPages,
		Showing:     showing,
		TimeEntries: responses,
	}
}
