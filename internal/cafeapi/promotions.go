package cafeapi

import (
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"

	"github.com/cafedesk/cafedesk/internal/apperr"
	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/service"
	"github.com/cafedesk/cafedesk/internal/webserver"
)

type promotionPayload struct {
	Code        string      `json:"code" validate:"required"`
	Name        string      `json:"name" validate:"required"`
	Description string      `json:"description"`
	Discount    interface{} `json:"discount"`
	Type        string      `json:"type" validate:"omitempty,oneof=percentage fixed"`
	MaxDiscount interface{} `json:"maxDiscount"`
	MinOrder    interface{} `json:"minOrder"`
	StartDate   string      `json:"startDate" validate:"required"`
	EndDate     string      `json:"endDate" validate:"required"`
}

type quotePayload struct {
	Code     string      `json:"code" validate:"required"`
	Subtotal interface{} `json:"subtotal"`
}

func registerPromotionRoutes() {
	webserver.ApiGET("/promotions", listPromotions)
	webserver.ApiPOST("/promotions", createPromotion)
	webserver.ApiPOST("/promotions/quote", quotePromotion)
	webserver.ApiPUT("/promotions/:id", updatePromotion)
	webserver.ApiDELETE("/promotions/:id", deletePromotion)
}

func listPromotions(c echo.Context) error {
	return ok(c, "", echo.Map{"promotions": svc.ListPromotions(c.Request().Context())})
}

func createPromotion(c echo.Context) error {
	if _, err := authorize(c, domain.RoleManager); err != nil {
		return failErr(c, err)
	}
	var payload promotionPayload
	if err := bindPayload(c, &payload); err != nil {
		return failErr(c, err)
	}
	promo, err := svc.CreatePromotion(c.Request().Context(), service.PromotionInput{
		Code:        payload.Code,
		Name:        payload.Name,
		Description: payload.Description,
		Discount:    payload.Discount,
		Type:        payload.Type,
		MaxDiscount: payload.MaxDiscount,
		MinOrder:    payload.MinOrder,
		StartDate:   payload.StartDate,
		EndDate:     payload.EndDate,
	})
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, "promotion created", echo.Map{"promotion": promo})
}

// promotionPatch reads a partial update body. Presence matters for the
// limits: a present but empty maxDiscount or minOrder clears the limit.
func promotionPatch(body map[string]interface{}) service.PromotionPatch {
	text := func(key string) *string {
		v, found := body[key]
		if !found {
			return nil
		}
		s := cast.ToString(v)
		return &s
	}
	p := service.PromotionPatch{
		Code:        text("code"),
		Name:        text("name"),
		Description: text("description"),
		Discount:    body["discount"],
		Type:        text("type"),
		StartDate:   text("startDate"),
		EndDate:     text("endDate"),
		Status:      text("status"),
	}
	p.MaxDiscount, p.SetMax = body["maxDiscount"]
	p.MinOrder, p.SetMin = body["minOrder"]
	return p
}

func updatePromotion(c echo.Context) error {
	if _, err := authorize(c, domain.RoleManager); err != nil {
		return failErr(c, err)
	}
	body := map[string]interface{}{}
	if err := c.Bind(&body); err != nil {
		return failErr(c, apperr.Validation("unable to parse request"))
	}
	id := c.Param("id")
	if err := svc.UpdatePromotion(c.Request().Context(), id, promotionPatch(body)); err != nil {
		return failErr(c, err)
	}
	return ok(c, "promotion updated", echo.Map{"id": id})
}

func deletePromotion(c echo.Context) error {
	if _, err := authorize(c, domain.RoleManager); err != nil {
		return failErr(c, err)
	}
	id := c.Param("id")
	if err := svc.DeletePromotion(c.Request().Context(), id); err != nil {
		return failErr(c, err)
	}
	return ok(c, "promotion deleted", echo.Map{"id": id})
}

func quotePromotion(c echo.Context) error {
	if _, err := authorize(c); err != nil {
		return failErr(c, err)
	}
	var payload quotePayload
	if err := bindPayload(c, &payload); err != nil {
		return failErr(c, err)
	}
	quote, err := svc.QuotePromotion(c.Request().Context(), payload.Code, payload.Subtotal)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, "", echo.Map{"quote": quote})
}
