package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"

	"github.com/cafedesk/cafedesk/internal/apperr"
	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/validate"
)

// PromotionInput creates a promotion. MaxDiscount and MinOrder may be nil
// for no limit.
type PromotionInput struct {
	Code        string
	Name        string
	Description string
	Discount    interface{}
	Type        string
	MaxDiscount interface{}
	MinOrder    interface{}
	StartDate   string
	EndDate     string
}

// PromotionPatch carries the promotion fields to change. For MaxDiscount
// and MinOrder, Set* reports presence and an empty value clears the limit.
type PromotionPatch struct {
	Code        *string
	Name        *string
	Description *string
	Discount    interface{}
	Type        *string
	SetMax      bool
	MaxDiscount interface{}
	SetMin      bool
	MinOrder    interface{}
	StartDate   *string
	EndDate     *string
	Status      *string
}

// Quote is the discount a promotion grants on a subtotal. Order totals
// never include it.
type Quote struct {
	Code     string  `json:"code"`
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

func (s *Service) ListPromotions(ctx context.Context) []domain.Promotion {
	return s.promotions.All(ctx)
}

// optionalLimit turns an absent or empty limit into "" and anything else
// into its non-negative numeric text.
func optionalLimit(v interface{}, name string) (string, error) {
	if v == nil || strings.TrimSpace(cast.ToString(v)) == "" {
		return "", nil
	}
	f, err := validate.NonNegativeNumber(v, name)
	if err != nil {
		return "", err
	}
	if f == 0 {
		return "", nil
	}
	return fmt.Sprint(f), nil
}

func (s *Service) CreatePromotion(ctx context.Context, in PromotionInput) (*domain.Promotion, error) {
	name, err := validate.Required(in.Name, "name")
	if err != nil {
		return nil, err
	}
	code, err := validate.Required(in.Code, "code")
	if err != nil {
		return nil, err
	}
	start, err := validate.Required(in.StartDate, "start date")
	if err != nil {
		return nil, err
	}
	end, err := validate.Required(in.EndDate, "end date")
	if err != nil {
		return nil, err
	}
	if _, _, err := validate.DateRange(start, end); err != nil {
		return nil, err
	}
	if in.Discount == nil {
		in.Discount = 0
	}
	discount, err := validate.NonNegativeNumber(in.Discount, "discount")
	if err != nil {
		return nil, err
	}
	kind := in.Type
	if kind == "" {
		kind = domain.PromotionPercentage
	}
	if _, err := validate.OneOf(kind, domain.PromotionTypes, "promotion type"); err != nil {
		return nil, err
	}
	maxDiscount, err := optionalLimit(in.MaxDiscount, "max discount")
	if err != nil {
		return nil, err
	}
	minOrder, err := optionalLimit(in.MinOrder, "min order")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.promotions.Exists(ctx, "code", code) {
		return nil, apperr.Conflict("promotion code %s already exists", code)
	}
	promo := domain.Promotion{
		ID:          s.promotions.NextID(ctx),
		Code:        code,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Discount:    discount,
		Type:        kind,
		MaxDiscount: maxDiscount,
		MinOrder:    minOrder,
		StartDate:   start,
		EndDate:     end,
		Status:      domain.PromotionActive,
	}
	if err := s.promotions.Insert(ctx, promo); err != nil {
		return nil, storageFault(err, "create promotion")
	}
	return &promo, nil
}

func (s *Service) UpdatePromotion(ctx context.Context, id string, p PromotionPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	promo, ok := s.promotions.Get(ctx, id)
	if !ok {
		return apperr.NotFound("promotion %s not found", id)
	}

	updates := domain.Row{}
	if p.Code != nil {
		code, err := validate.Required(*p.Code, "code")
		if err != nil {
			return err
		}
		if code != promo.Code && s.promotions.Exists(ctx, "code", code) {
			return apperr.Conflict("promotion code %s already exists", code)
		}
		updates["code"] = code
	}
	if p.Name != nil {
		updates["name"] = *p.Name
	}
	if p.Description != nil {
		updates["description"] = *p.Description
	}
	if p.Discount != nil {
		d, err := validate.NonNegativeNumber(p.Discount, "discount")
		if err != nil {
			return err
		}
		updates["discount"] = fmt.Sprint(d)
	}
	if p.Type != nil {
		if _, err := validate.OneOf(*p.Type, domain.PromotionTypes, "promotion type"); err != nil {
			return err
		}
		updates["type"] = *p.Type
	}
	if p.SetMax {
		v, err := optionalLimit(p.MaxDiscount, "max discount")
		if err != nil {
			return err
		}
		updates["maxDiscount"] = v
	}
	if p.SetMin {
		v, err := optionalLimit(p.MinOrder, "min order")
		if err != nil {
			return err
		}
		updates["minOrder"] = v
	}
	start, end := promo.StartDate, promo.EndDate
	if p.StartDate != nil {
		start = *p.StartDate
		updates["startDate"] = start
	}
	if p.EndDate != nil {
		end = *p.EndDate
		updates["endDate"] = end
	}
	if p.StartDate != nil || p.EndDate != nil {
		if _, _, err := validate.DateRange(start, end); err != nil {
			return err
		}
	}
	if p.Status != nil {
		if _, err := validate.OneOf(*p.Status, domain.PromotionStatuses, "promotion status"); err != nil {
			return err
		}
		updates["status"] = *p.Status
	}
	if len(updates) == 0 {
		return nil
	}
	return storageFault(s.promotions.Patch(ctx, id, updates), "update promotion")
}

func (s *Service) DeletePromotion(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.promotions.Exists(ctx, "id", id) {
		return apperr.NotFound("promotion %s not found", id)
	}
	return storageFault(s.promotions.Remove(ctx, id), "delete promotion")
}

// QuotePromotion computes the discount code grants on subtotal today.
func (s *Service) QuotePromotion(ctx context.Context, code string, subtotal interface{}) (*Quote, error) {
	code, err := validate.Required(code, "code")
	if err != nil {
		return nil, err
	}
	amount, err := validate.NonNegativeNumber(subtotal, "subtotal")
	if err != nil {
		return nil, err
	}
	promo, ok := s.promotions.GetBy(ctx, "code", code)
	if !ok {
		return nil, apperr.NotFound("promotion code %s not found", code)
	}
	if promo.Status != domain.PromotionActive {
		return nil, apperr.Conflict("promotion %s is %s", code, promo.Status)
	}
	today := s.today()
	if today < promo.StartDate || today > promo.EndDate {
		return nil, apperr.Conflict("promotion %s is not valid today", code)
	}
	if promo.MinOrder != "" {
		if floor := cast.ToFloat64(promo.MinOrder); amount < floor {
			return nil, apperr.Conflict("promotion %s needs an order of at least %v", code, floor)
		}
	}

	discount := promo.Discount
	if promo.Type == domain.PromotionPercentage {
		discount = amount * promo.Discount / 100
	}
	if promo.MaxDiscount != "" {
		if limit := cast.ToFloat64(promo.MaxDiscount); limit > 0 {
			discount = math.Min(discount, limit)
		}
	}
	discount = round2(math.Min(discount, amount))
	return &Quote{Code: code, Subtotal: amount, Discount: discount, Total: round2(amount - discount)}, nil
}
