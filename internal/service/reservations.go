package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/cafedesk/cafedesk/internal/apperr"
	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/identity"
	"github.com/cafedesk/cafedesk/internal/validate"
)

// ReservationRequest is the input of CreateReservation.
type ReservationRequest struct {
	Date   string
	Time   string
	Guests interface{}
	Notes  string
}

// ReservationView is a reservation with its table number.
type ReservationView struct {
	domain.Reservation
	TableNumber *int `json:"tableNumber"`
}

// CreateReservation books the first available table that seats the party
// and has no active reservation for the same slot, then marks it reserved.
func (s *Service) CreateReservation(ctx context.Context, u *domain.User, req ReservationRequest) (*ReservationView, error) {
	if err := identity.Require(u); err != nil {
		return nil, err
	}
	date, err := validate.Required(req.Date, "date")
	if err != nil {
		return nil, err
	}
	clock, err := validate.Required(req.Time, "time")
	if err != nil {
		return nil, err
	}
	guests, err := validate.PositiveInt(req.Guests, "guests")
	if err != nil {
		return nil, err
	}
	at, err := validate.DateTime(date, clock)
	if err != nil {
		return nil, err
	}
	if err := validate.FutureDateTime(at, s.now(), "reservation time"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	booked := make(map[string]bool)
	for _, r := range s.reservations.All(ctx) {
		if r.Date == date && r.Time == clock && r.Active() {
			booked[r.TableID] = true
		}
	}
	var chosen *domain.Table
	for _, t := range s.tables.All(ctx) {
		if t.Capacity >= guests && t.Status == domain.TableAvailable && !booked[t.ID] {
			t := t
			chosen = &t
			break
		}
	}
	if chosen == nil {
		return nil, apperr.Conflict("no availability for %d guests on %s at %s", guests, date, clock)
	}

	res := domain.Reservation{
		ID:            s.nextStampID(domain.PrefixReservation, func(id string) bool { return s.reservations.Exists(ctx, "id", id) }),
		CustomerEmail: u.Email,
		Date:          date,
		Time:          clock,
		Guests:        guests,
		Notes:         strings.TrimSpace(req.Notes),
		Status:        domain.ReservationPending,
		TableID:       chosen.ID,
		CreatedAt:     s.timestamp(),
	}
	if err := s.reservations.Insert(ctx, res); err != nil {
		return nil, storageFault(err, "create reservation")
	}
	if err := s.tables.Patch(ctx, chosen.ID, domain.Row{"status": domain.TableReserved}); err != nil {
		return nil, storageFault(err, "reserve table")
	}
	zap.L().Info("reservation created",
		zap.String("namespace", "service"),
		zap.String("reservation_id", res.ID),
		zap.String("table_id", chosen.ID),
		zap.Int("guests", guests))
	s.publish(TopicReservationNew, res)

	number := chosen.Number
	return &ReservationView{Reservation: res, TableNumber: &number}, nil
}

// ListReservations returns the caller's reservations for a customer and
// all of them for staff and managers.
func (s *Service) ListReservations(ctx context.Context, u *domain.User) ([]ReservationView, error) {
	if err := identity.Require(u); err != nil {
		return nil, err
	}
	numbers := make(map[string]int)
	for _, t := range s.tables.All(ctx) {
		numbers[t.ID] = t.Number
	}
	out := make([]ReservationView, 0)
	for _, r := range s.reservations.All(ctx) {
		if u.Role == domain.RoleCustomer && r.CustomerEmail != u.Email {
			continue
		}
		v := ReservationView{Reservation: r}
		if n, ok := numbers[r.TableID]; ok {
			v.TableNumber = &n
		}
		if v.Status == "" {
			v.Status = domain.ReservationPending
		}
		out = append(out, v)
	}
	return out, nil
}

// UpdateReservationStatus changes a reservation's status. Cancelling or
// completing it releases its table when the table is still reserved and
// no other active reservation holds it.
func (s *Service) UpdateReservationStatus(ctx context.Context, id, status string) (*domain.Reservation, error) {
	if _, err := validate.OneOf(status, domain.ReservationStatuses, "reservation status"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.reservations.Get(ctx, id)
	if !ok {
		return nil, apperr.NotFound("reservation %s not found", id)
	}
	if err := s.reservations.Patch(ctx, id, domain.Row{"status": status}); err != nil {
		return nil, storageFault(err, "update reservation status")
	}
	res.Status = status
	if res.Active() || res.TableID == "" {
		return &res, nil
	}

	table, ok := s.tables.Get(ctx, res.TableID)
	if !ok || table.Status != domain.TableReserved {
		return &res, nil
	}
	held := s.reservations.Find(ctx, func(r domain.Reservation) bool {
		return r.ID != id && r.TableID == table.ID && r.Active()
	})
	if len(held) > 0 {
		return &res, nil
	}
	if err := s.tables.Patch(ctx, table.ID, domain.Row{"status": domain.TableAvailable}); err != nil {
		return nil, storageFault(err, "release table")
	}
	return &res, nil
}
