package service

import (
	"context"
	"strings"

	"github.com/cafedesk/cafedesk/internal/apperr"
	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/identity"
	"github.com/cafedesk/cafedesk/internal/validate"
)

// FeedbackView is feedback as listed to managers.
type FeedbackView struct {
	ID            string `json:"id"`
	Customer      string `json:"customer"`
	Date          string `json:"date"`
	FoodRating    int    `json:"foodRating"`
	ServiceRating int    `json:"serviceRating"`
	Comment       string `json:"comment"`
	Status        string `json:"status"`
	Response      string `json:"response,omitempty"`
}

func (s *Service) SubmitFeedback(ctx context.Context, u *domain.User, foodRating, serviceRating interface{}, comment string) (*domain.Feedback, error) {
	if err := identity.Require(u); err != nil {
		return nil, err
	}
	food, err := validate.IntRange(foodRating, 1, 5, "food rating")
	if err != nil {
		return nil, err
	}
	service, err := validate.IntRange(serviceRating, 1, 5, "service rating")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	fb := domain.Feedback{
		ID:            s.feedback.NextID(ctx),
		CustomerEmail: u.Email,
		CustomerName:  u.Name,
		Date:          s.today(),
		FoodRating:    food,
		ServiceRating: service,
		Comment:       strings.TrimSpace(comment),
		Status:        domain.FeedbackPending,
	}
	if err := s.feedback.Insert(ctx, fb); err != nil {
		return nil, storageFault(err, "submit feedback")
	}
	return &fb, nil
}

func (s *Service) ListFeedback(ctx context.Context) []FeedbackView {
	out := make([]FeedbackView, 0)
	for _, fb := range s.feedback.All(ctx) {
		who := fb.CustomerName
		if who == "" {
			who = fb.CustomerEmail
		}
		if who == "" {
			who = "Unknown"
		}
		out = append(out, FeedbackView{
			ID:            fb.ID,
			Customer:      who,
			Date:          fb.Date,
			FoodRating:    fb.FoodRating,
			ServiceRating: fb.ServiceRating,
			Comment:       fb.Comment,
			Status:        fb.Status,
			Response:      fb.Response,
		})
	}
	return out
}

// RespondFeedback stores a reply and marks the feedback responded.
func (s *Service) RespondFeedback(ctx context.Context, id, response string) error {
	response, err := validate.Required(response, "response")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.feedback.Exists(ctx, "id", id) {
		return apperr.NotFound("feedback %s not found", id)
	}
	return storageFault(s.feedback.Patch(ctx, id, domain.Row{
		"response": response,
		"status":   domain.FeedbackResponded,
	}), "respond feedback")
}
