package service

import (
	"context"
	"sort"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"github.com/cafedesk/cafedesk/internal/apperr"
	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/identity"
	"github.com/cafedesk/cafedesk/internal/validate"
)

// PopularItemsLimit caps the popular items report.
const PopularItemsLimit = 5

// RevenueTotals summarizes the daily revenue rows. Week covers the last
// seven rows and month all of them.
type RevenueTotals struct {
	Today       float64 `json:"today"`
	Week        float64 `json:"week"`
	Month       float64 `json:"month"`
	OrdersToday int     `json:"orders_today"`
	OrdersWeek  int     `json:"orders_week"`
	AvgOrder    float64 `json:"avg_order"`
}

type RevenueReport struct {
	Daily  []domain.Revenue `json:"daily"`
	Totals RevenueTotals    `json:"totals"`
}

type PopularItem struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	TotalSold int     `json:"totalSold"`
	Revenue   float64 `json:"revenue"`
	Image     string  `json:"image"`
}

// ShiftInput is what a staff member declares when closing a shift.
type ShiftInput struct {
	ActualCash      interface{}
	Notes           string
	EquipmentStatus map[string]interface{}
}

type ShiftReport struct {
	StaffEmail      string                 `json:"staff_email"`
	Date            string                 `json:"date"`
	ExpectedCash    float64                `json:"expectedCash"`
	ActualCash      float64                `json:"actualCash"`
	Difference      float64                `json:"difference"`
	Notes           string                 `json:"notes"`
	EquipmentStatus map[string]interface{} `json:"equipmentStatus"`
	OrdersCompleted int                    `json:"ordersCompleted"`
	TotalRevenue    float64                `json:"totalRevenue"`
	CashMatched     bool                   `json:"cashMatched"`
	CreatedAt       string                 `json:"created_at"`
}

func sum(values []float64) float64 {
	total, err := stats.Sum(values)
	if err != nil {
		return 0
	}
	return round2(total)
}

func (s *Service) Revenue(ctx context.Context) RevenueReport {
	daily := s.revenue.All(ctx)
	today := s.today()

	var totals RevenueTotals
	all := make([]float64, len(daily))
	for i, d := range daily {
		all[i] = d.Revenue
		if d.Date == today {
			totals.Today = d.Revenue
			totals.OrdersToday = d.Orders
		}
	}
	week := daily
	if len(week) > 7 {
		week = week[len(week)-7:]
	}
	weekRevenue := make([]float64, len(week))
	for i, d := range week {
		weekRevenue[i] = d.Revenue
		totals.OrdersWeek += d.Orders
	}
	totals.Week = sum(weekRevenue)
	totals.Month = sum(all)
	if totals.OrdersWeek > 0 {
		totals.AvgOrder = round2(totals.Week / float64(totals.OrdersWeek))
	}
	return RevenueReport{Daily: daily, Totals: totals}
}

// PopularItems ranks menu items by quantity sold across all order lines.
func (s *Service) PopularItems(ctx context.Context) []PopularItem {
	menu := make(map[string]domain.MenuItem)
	for _, m := range s.menu.All(ctx) {
		menu[m.ID] = m
	}
	byID := make(map[string]*PopularItem)
	order := make([]string, 0)
	for _, d := range s.details.All(ctx) {
		p, ok := byID[d.MenuItemID]
		if !ok {
			m, known := menu[d.MenuItemID]
			name := m.Name
			if !known {
				name = "Unknown"
			}
			p = &PopularItem{ID: d.MenuItemID, Name: name, Category: m.Category, Image: m.Image}
			byID[d.MenuItemID] = p
			order = append(order, d.MenuItemID)
		}
		p.TotalSold += d.Quantity
		p.Revenue = round2(p.Revenue + d.Subtotal)
	}
	out := make([]PopularItem, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalSold > out[j].TotalSold })
	if len(out) > PopularItemsLimit {
		out = out[:PopularItemsLimit]
	}
	return out
}

// ShiftReport closes a staff shift. It fails while unpaid pending or in
// preparation orders remain, or before the staff member clocked out today.
func (s *Service) ShiftReport(ctx context.Context, u *domain.User, in ShiftInput) (*ShiftReport, error) {
	if err := identity.Require(u, domain.RoleStaff); err != nil {
		return nil, err
	}
	if in.ActualCash == nil {
		return nil, apperr.Validation("actual cash is required")
	}
	cash, err := validate.Number(in.ActualCash, "actual cash")
	if err != nil {
		return nil, err
	}

	orders := s.orders.All(ctx)
	open := 0
	for _, o := range orders {
		if (o.Status == domain.OrderPending || o.Status == domain.OrderInPreparation) && o.PaymentStatus != domain.PaymentPaid {
			open++
		}
	}
	if open > 0 {
		return nil, apperr.Conflict("%d orders are not finished yet", open)
	}

	today := s.today()
	closed := s.attendance.Find(ctx, func(a domain.Attendance) bool {
		return a.StaffEmail == u.Email && a.Date == today && !a.Open()
	})
	if len(closed) == 0 {
		return nil, apperr.Conflict("clock out before closing the shift")
	}

	var cashTotals []float64
	completed := 0
	for _, o := range orders {
		if o.Date != today {
			continue
		}
		if o.Status == domain.OrderCompleted {
			completed++
		}
		if o.PaymentStatus == domain.PaymentPaid && o.PaymentMethod == domain.PayCash {
			cashTotals = append(cashTotals, o.Total)
		}
	}
	expected := sum(cashTotals)
	diff := round2(cash - expected)
	report := &ShiftReport{
		StaffEmail:      u.Email,
		Date:            today,
		ExpectedCash:    expected,
		ActualCash:      cash,
		Difference:      diff,
		Notes:           in.Notes,
		EquipmentStatus: in.EquipmentStatus,
		OrdersCompleted: completed,
		TotalRevenue:    expected,
		CashMatched:     diff == 0,
		CreatedAt:       s.timestamp(),
	}
	if report.EquipmentStatus == nil {
		report.EquipmentStatus = map[string]interface{}{}
	}
	zap.L().Info("shift closed",
		zap.String("namespace", "service"),
		zap.String("staff", u.Email),
		zap.Float64("expected_cash", expected),
		zap.Float64("difference", diff))
	return report, nil
}

// RollupRevenue recomputes the daily revenue rows for every date with a
// paid order. Dates without paid orders keep their stored row.
func (s *Service) RollupRevenue(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type day struct {
		revenue float64
		orders  int
	}
	days := make(map[string]*day)
	for _, o := range s.orders.All(ctx) {
		if o.PaymentStatus != domain.PaymentPaid || o.Date == "" {
			continue
		}
		d, ok := days[o.Date]
		if !ok {
			d = &day{}
			days[o.Date] = d
		}
		d.revenue += o.Total
		d.orders++
	}
	if len(days) == 0 {
		return 0, nil
	}

	rows := make([]domain.Revenue, 0)
	for _, r := range s.revenue.All(ctx) {
		if _, ok := days[r.Date]; !ok {
			rows = append(rows, r)
		}
	}
	for date, d := range days {
		rows = append(rows, domain.Revenue{Date: date, Revenue: round2(d.revenue), Orders: d.orders})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
	if err := s.revenue.Replace(ctx, rows); err != nil {
		return 0, storageFault(err, "rollup revenue")
	}
	return len(days), nil
}
