// Package service implements the cafe workflows on top of the record
// store. Every exported method returns an *apperr.Error on failure.
package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"github.com/cafedesk/cafedesk/internal/apperr"
	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/identity"
	"github.com/cafedesk/cafedesk/internal/store"
)

// Options carries the optional collaborators of a Service.
type Options struct {
	Bus    EventBus.Bus
	Tokens *identity.TokenStore
	Clock  func() time.Time
}

// Service owns one typed repo per collection and the workflow lock.
//
// Multi-collection workflows hold mu for their whole read-check-write
// sequence, so two of them never interleave their writes. Single reads do
// not take it.
type Service struct {
	st  store.Store
	bus EventBus.Bus
	now func() time.Time

	mu      sync.Mutex
	stamps  map[string]stamp
	tokens  *identity.TokenStore
	resolve *identity.Resolver

	users        *store.Repo[domain.User]
	menu         *store.Repo[domain.MenuItem]
	orders       *store.Repo[domain.Order]
	details      *store.Repo[domain.OrderDetail]
	tables       *store.Repo[domain.Table]
	inventory    *store.Repo[domain.InventoryItem]
	promotions   *store.Repo[domain.Promotion]
	feedback     *store.Repo[domain.Feedback]
	staff        *store.Repo[domain.Staff]
	customers    *store.Repo[domain.Customer]
	revenue      *store.Repo[domain.Revenue]
	attendance   *store.Repo[domain.Attendance]
	reservations *store.Repo[domain.Reservation]
	movements    *store.Repo[domain.StockMovement]
}

func New(st store.Store, opts Options) *Service {
	if opts.Bus == nil {
		opts.Bus = EventBus.New()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Tokens == nil {
		opts.Tokens = identity.NewTokenStore(identity.DefaultTokenTTL, opts.Clock)
	}
	return &Service{
		st:           st,
		bus:          opts.Bus,
		now:          opts.Clock,
		stamps:       make(map[string]stamp),
		tokens:       opts.Tokens,
		resolve:      identity.NewResolver(st),
		users:        store.NewRepo[domain.User](st, domain.Users),
		menu:         store.NewRepo[domain.MenuItem](st, domain.MenuItems),
		orders:       store.NewRepo[domain.Order](st, domain.Orders),
		details:      store.NewRepo[domain.OrderDetail](st, domain.OrderDetails),
		tables:       store.NewRepo[domain.Table](st, domain.Tables),
		inventory:    store.NewRepo[domain.InventoryItem](st, domain.Inventory),
		promotions:   store.NewRepo[domain.Promotion](st, domain.Promotions),
		feedback:     store.NewRepo[domain.Feedback](st, domain.Feedbacks),
		staff:        store.NewRepo[domain.Staff](st, domain.StaffMembers),
		customers:    store.NewRepo[domain.Customer](st, domain.Customers),
		revenue:      store.NewRepo[domain.Revenue](st, domain.Revenues),
		attendance:   store.NewRepo[domain.Attendance](st, domain.Attendances),
		reservations: store.NewRepo[domain.Reservation](st, domain.Reservations),
		movements:    store.NewRepo[domain.StockMovement](st, domain.StockMovements),
	}
}

// Bus exposes the event bus so the application can subscribe notifiers.
func (s *Service) Bus() EventBus.Bus {
	return s.bus
}

// Tokens exposes the reset token store for the sweeper job.
func (s *Service) Tokens() *identity.TokenStore {
	return s.tokens
}

// CurrentUser resolves a session token to its user.
func (s *Service) CurrentUser(ctx context.Context, token string) (*domain.User, bool) {
	return s.resolve.Resolve(ctx, token)
}

type stamp struct {
	base string
	n    int
}

// nextStampID returns prefix + YYYYMMDDHHMMSS. A second id issued within
// the same second, or one already taken, gets a -N suffix. Callers hold mu.
func (s *Service) nextStampID(prefix string, taken func(id string) bool) string {
	base := prefix + s.now().Format(domain.IDStampLayout)
	st := s.stamps[prefix]
	if st.base != base {
		st = stamp{base: base}
	}
	for {
		st.n++
		id := base
		if st.n > 1 {
			id = fmt.Sprintf("%s-%d", base, st.n)
		}
		if taken == nil || !taken(id) {
			s.stamps[prefix] = st
			return id
		}
	}
}

func (s *Service) today() string {
	return s.now().Format(domain.DateLayout)
}

func (s *Service) timestamp() string {
	return s.now().Format(domain.TimestampLayout)
}

// storageFault converts a write error into a StorageFault and logs it.
func storageFault(err error, op string) error {
	if err == nil {
		return nil
	}
	zap.L().Error("store write failed",
		zap.String("namespace", "service"),
		zap.String("operation", op),
		zap.Error(err))
	return apperr.Storage(err, op+" failed")
}

// round2 rounds money and hour values to two decimals.
func round2(v float64) float64 {
	r, err := stats.Round(v, 2)
	if err != nil {
		return v
	}
	return r
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
