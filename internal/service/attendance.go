package service

import (
	"context"
	"fmt"
	"time"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"github.com/cafedesk/cafedesk/internal/apperr"
	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/identity"
)

// AttendanceSummary is a staff member's attendance with totals.
type AttendanceSummary struct {
	Records        []domain.Attendance `json:"attendance"`
	TotalHours     float64             `json:"totalHours"`
	DaysWorked     int                 `json:"daysWorked"`
	AvgHoursPerDay float64             `json:"avgHoursPerDay"`
}

func (s *Service) openShift(ctx context.Context, email, date string) (domain.Attendance, bool) {
	return s.attendance.First(ctx, func(a domain.Attendance) bool {
		return a.StaffEmail == email && a.Date == date && a.Open()
	})
}

// ClockIn opens today's attendance record for a staff member. At most one
// record per day may be open.
func (s *Service) ClockIn(ctx context.Context, u *domain.User) (*domain.Attendance, error) {
	if err := identity.Require(u, domain.RoleStaff); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	date := now.Format(domain.DateLayout)
	if open, ok := s.openShift(ctx, u.Email, date); ok {
		return nil, apperr.Conflict("already clocked in at %s", open.ClockIn)
	}
	rec := domain.Attendance{
		ID:         s.attendance.NextID(ctx),
		StaffEmail: u.Email,
		Date:       date,
		ClockIn:    now.Format(domain.ClockLayout),
		Hours:      0,
		Status:     domain.AttendancePresent,
	}
	if err := s.attendance.Insert(ctx, rec); err != nil {
		return nil, storageFault(err, "clock in")
	}
	zap.L().Info("clock in",
		zap.String("namespace", "service"),
		zap.String("staff", u.Email),
		zap.String("at", rec.ClockIn))
	return &rec, nil
}

// ClockOut closes today's open record and stores the hours worked,
// rounded to two decimals.
func (s *Service) ClockOut(ctx context.Context, u *domain.User) (*domain.Attendance, error) {
	if err := identity.Require(u, domain.RoleStaff); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	date := now.Format(domain.DateLayout)
	rec, ok := s.openShift(ctx, u.Email, date)
	if !ok {
		return nil, apperr.Conflict("not clocked in today")
	}
	in, err := time.ParseInLocation(domain.DateLayout+" "+domain.ClockLayout, rec.Date+" "+rec.ClockIn, now.Location())
	if err != nil {
		return nil, apperr.Validation("attendance record %s has a bad clock-in time %q", rec.ID, rec.ClockIn)
	}
	rec.ClockOut = now.Format(domain.ClockLayout)
	rec.Hours = round2(now.Sub(in).Hours())
	if err := s.attendance.Patch(ctx, rec.ID, domain.Row{
		"clockOut": rec.ClockOut,
		"hours":    fmt.Sprint(rec.Hours),
	}); err != nil {
		return nil, storageFault(err, "clock out")
	}
	return &rec, nil
}

// ListAttendance returns the caller's records and totals.
func (s *Service) ListAttendance(ctx context.Context, u *domain.User) (*AttendanceSummary, error) {
	if err := identity.Require(u, domain.RoleStaff); err != nil {
		return nil, err
	}
	recs := s.attendance.Find(ctx, func(a domain.Attendance) bool { return a.StaffEmail == u.Email })
	out := &AttendanceSummary{Records: recs, DaysWorked: len(recs)}
	if len(recs) == 0 {
		out.Records = []domain.Attendance{}
		return out, nil
	}
	hours := make(stats.Float64Data, len(recs))
	for i, r := range recs {
		hours[i] = r.Hours
	}
	total, _ := hours.Sum()
	avg, _ := hours.Mean()
	out.TotalHours = round2(total)
	out.AvgHoursPerDay = round2(avg)
	return out, nil
}
