package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"crmmvp/internal/logging"
	"crmmvp/internal/models"
	"crmmvp/internal/repositories"
	"crmmvp/internal/textgen"
)

type FeedService interface {
	List(ctx context.Context, settings models.FeedListSettings) ([]models.Feed, error)
	Create(ctx context.Context, callerID string, req models.FeedCreateRequest) (*models.Feed, error)
	GetByID(ctx context.Context, id string) (*models.Feed, error)
	Update(ctx context.Context, id string, req models.FeedUpdateRequest) (*models.Feed, error)

	// Like reports true when a new like was recorded and false when the
	// caller had already liked the item.
	Like(ctx context.Context, userID, feedID string) (bool, error)
	LikeCount(ctx context.Context, feedID string) (int, error)

	// RequestBooking asks the text generator for travel options and stores
	// them in feedbackBooking.
	RequestBooking(ctx context.Context, feedID string, req models.BookingRequest) (*models.Feed, error)
}

type feedService struct {
	repo          repositories.FeedRepository
	likes         repositories.LikeRepository
	notifications NotificationService
	gen           textgen.Generator
}

func NewFeedService(
	repo repositories.FeedRepository,
	likes repositories.LikeRepository,
	notifications NotificationService,
	gen textgen.Generator,
) FeedService {
	return &feedService{repo: repo, likes: likes, notifications: notifications, gen: gen}
}

func (s *feedService) List(ctx context.Context, settings models.FeedListSettings) ([]models.Feed, error) {
	return s.repo.List(ctx, settings)
}

func (s *feedService) Create(ctx context.Context, callerID string, req models.FeedCreateRequest) (*models.Feed, error) {
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown feed type %q", ErrInvalidInput, req.Type)
	}
	feed := &models.Feed{
		Type:          req.Type,
		Status:        req.Status,
		ActionCall:    boolOr(req.ActionCall),
		ActionEmail:   boolOr(req.ActionEmail),
		ActionBooking: boolOr(req.ActionBooking),
		ActionTask:    boolOr(req.ActionTask),
		Metadata:      req.Metadata,
		Feedback:      req.Feedback,
		ClientID:      req.ClientID,
		TaskID:        req.TaskID,
	}
	if feed.Status == "" {
		feed.Status = models.FeedNew
	}
	if !feed.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown feed status %q", ErrInvalidInput, feed.Status)
	}
	if err := s.repo.Create(ctx, feed); err != nil {
		return nil, err
	}

	s.announce(ctx, callerID, feed)
	return feed, nil
}

// announce broadcasts a FEED notification. Failures are logged only.
func (s *feedService) announce(ctx context.Context, callerID string, feed *models.Feed) {
	if s.notifications == nil {
		return
	}
	msg := "New " + strings.ToLower(strings.ReplaceAll(string(feed.Type), "_", " ")) + " in the feed"
	if feed.Metadata != nil && strings.TrimSpace(*feed.Metadata) != "" {
		msg = *feed.Metadata
	}
	var sender *string
	if callerID != "" {
		sender = &callerID
	}
	_, err := s.notifications.Create(ctx, models.NotificationCreateRequest{
		SenderID: sender,
		Message:  msg,
		Type:     models.NotificationFeed,
	})
	if err != nil {
		logging.Logger.WithFields(logrus.Fields{"feed_id": feed.ID}).
			WithError(err).Warn("[feed][create] broadcast notification failed")
	}
}

func (s *feedService) GetByID(ctx context.Context, id string) (*models.Feed, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *feedService) Update(ctx context.Context, id string, req models.FeedUpdateRequest) (*models.Feed, error) {
	feed, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Type != nil && !req.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown feed type %q", ErrInvalidInput, *req.Type)
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown feed status %q", ErrInvalidInput, *req.Status)
	}
	req.Apply(feed)
	if err := s.repo.Update(ctx, feed); err != nil {
		return nil, err
	}
	// re-read so a changed clientId comes back with its client
	return s.repo.GetByID(ctx, id)
}

func (s *feedService) Like(ctx context.Context, userID, feedID string) (bool, error) {
	if _, err := s.repo.GetByID(ctx, feedID); err != nil {
		return false, err
	}
	return s.likes.Add(ctx, userID, feedID)
}

func (s *feedService) LikeCount(ctx context.Context, feedID string) (int, error) {
	return s.likes.Count(ctx, feedID)
}

func (s *feedService) RequestBooking(ctx context.Context, feedID string, req models.BookingRequest) (*models.Feed, error) {
	if s.gen == nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, textgen.ErrNotConfigured)
	}
	feed, err := s.repo.GetByID(ctx, feedID)
	if err != nil {
		return nil, err
	}

	out, err := s.gen.Generate(ctx, BookingPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	feed.FeedbackBooking = &out.OutputText
	if err := s.repo.Update(ctx, feed); err != nil {
		return nil, err
	}
	return feed, nil
}

const (
	bookingPreamble = "You are a travel agent. Please assist with the following booking requirements:\n\n"
	bookingTail     = "\n\nProvide suitable travel options including transportation and accommodation details if required. " +
		"Do not search for real data, just emulate the response providing 3 options in a structured format such as: " +
		"Option_1_:, Option_2_: and Option_3_:. Keep the response short and concise with most important booking information only."
)

// BookingPrompt renders the booking form into the travel agent prompt.
func BookingPrompt(r models.BookingRequest) string {
	option := r.TravelOption
	if option == "" {
		option = "Plane"
	}
	hotel := "No"
	if r.IsHotelRequired {
		hotel = "Yes"
	}
	other := r.OtherPreferences
	if other == "" {
		other = "None"
	}
	lines := []string{
		"Number of Travellers: " + strconv.Itoa(r.TravellersNumber),
		"Travel Dates: From " + r.DatesFrom + " to " + r.DatesTo,
		"Departure Country: " + r.DepartureCountry,
		"Departure City: " + r.DepartureCity,
		"Destination Country: " + r.Country,
		"Destination City: " + r.City,
		"Travel Option: " + option,
		"Hotel Required: " + hotel,
		"Other Preferences: " + other,
	}
	return bookingPreamble + strings.Join(lines, "\n") + bookingTail
}

func boolOr(p *bool) bool {
	return p != nil && *p
}
