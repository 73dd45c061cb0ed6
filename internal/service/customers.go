package service

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/cafedesk/cafedesk/internal/apperr"
	"github.com/cafedesk/cafedesk/internal/domain"
)

func (s *Service) ListCustomers(ctx context.Context) []domain.Customer {
	return s.customers.All(ctx)
}

// ResetCustomerPassword sets a customer's password, to the default one
// when newPassword is empty.
func (s *Service) ResetCustomerPassword(ctx context.Context, email, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		newPassword = domain.DefaultPassword
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users.GetBy(ctx, "email", email)
	if !ok || u.Role != domain.RoleCustomer {
		return apperr.NotFound("customer %s not found", email)
	}
	return storageFault(s.users.PatchBy(ctx, "email", email, domain.Row{"password": newPassword}), "reset customer password")
}

// RollupCustomers rebuilds the customers collection from customer accounts
// and their orders. Existing ids and statuses are kept.
func (s *Service) RollupCustomers(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]domain.Customer)
	maxID := 0
	for _, c := range s.customers.All(ctx) {
		existing[c.Email] = c
		if n := atoiOr(c.ID, 0); n > maxID {
			maxID = n
		}
	}
	counts := make(map[string]int)
	spent := make(map[string]float64)
	for _, o := range s.orders.All(ctx) {
		counts[o.CustomerEmail]++
		if o.PaymentStatus == domain.PaymentPaid {
			spent[o.CustomerEmail] += o.Total
		}
	}

	out := make([]domain.Customer, 0)
	for _, u := range s.users.All(ctx) {
		if u.Role != domain.RoleCustomer {
			continue
		}
		c, ok := existing[u.Email]
		if !ok {
			maxID++
			c = domain.Customer{ID: itoa(maxID), Status: "active"}
		}
		c.Name = u.Name
		c.Email = u.Email
		c.Phone = u.Phone
		c.TotalOrders = counts[u.Email]
		c.TotalSpent = round2(spent[u.Email])
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return atoiOr(out[i].ID, 0) < atoiOr(out[j].ID, 0) })
	if err := s.customers.Replace(ctx, out); err != nil {
		return 0, storageFault(err, "rollup customers")
	}
	zap.L().Debug("customers rolled up", zap.String("namespace", "service"), zap.Int("count", len(out)))
	return len(out), nil
}
