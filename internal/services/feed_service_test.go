package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmmvp/internal/models"
	"crmmvp/internal/repositories"
	"crmmvp/internal/textgen"
)

type memFeeds struct {
	items   map[string]*models.Feed
	clients map[string]models.Client
}

func (m *memFeeds) Create(_ context.Context, f *models.Feed) error {
	f.ID = "f" + string(rune('0'+len(m.items)+1))
	cp := *f
	m.items[f.ID] = &cp
	return nil
}

func (m *memFeeds) Update(_ context.Context, f *models.Feed) error {
	if _, ok := m.items[f.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *f
	m.items[f.ID] = &cp
	return nil
}

func (m *memFeeds) GetByID(_ context.Context, id string) (*models.Feed, error) {
	f, ok := m.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *f
	cp.Client = nil
	if cp.ClientID != nil {
		if c, ok := m.clients[*cp.ClientID]; ok {
			cp.Client = &c
		}
	}
	return &cp, nil
}

func (m *memFeeds) List(context.Context, models.FeedListSettings) ([]models.Feed, error) { return nil, nil }
func (m *memFeeds) FindByClient(context.Context, string) ([]models.Feed, error)          { return nil, nil }

type memLikes struct {
	seen map[string]bool
}

func (m *memLikes) Add(_ context.Context, userID, feedID string) (bool, error) {
	k := userID + "/" + feedID
	if m.seen[k] {
		return false, nil
	}
	m.seen[k] = true
	return true, nil
}

func (m *memLikes) Count(_ context.Context, feedID string) (int, error) {
	n := 0
	for k := range m.seen {
		if strings.HasSuffix(k, "/"+feedID) {
			n++
		}
	}
	return n, nil
}

type capturingNotifications struct {
	created []models.NotificationCreateRequest
	err     error
}

func (c *capturingNotifications) Create(_ context.Context, req models.NotificationCreateRequest) (*models.Notification, error) {
	c.created = append(c.created, req)
	if c.err != nil {
		return nil, c.err
	}
	return &models.Notification{Message: req.Message, Type: req.Type}, nil
}

func (c *capturingNotifications) ListUnread(context.Context, string) ([]models.Notification, error) {
	return nil, nil
}

func (c *capturingNotifications) GetByID(context.Context, string) (*models.Notification, error) {
	return nil, repositories.ErrNotFound
}

func (c *capturingNotifications) Update(context.Context, string, models.NotificationUpdateRequest) (*models.Notification, error) {
	return nil, repositories.ErrNotFound
}

type stubGenerator struct {
	prompts []string
	out     string
	err     error
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (*textgen.Result, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return nil, g.err
	}
	return &textgen.Result{OutputText: g.out, Provider: "stub", Model: "stub-1"}, nil
}

func newFeedFixture(gen textgen.Generator) (*memFeeds, *capturingNotifications, FeedService) {
	feeds := &memFeeds{items: map[string]*models.Feed{}}
	notes := &capturingNotifications{}
	return feeds, notes, NewFeedService(feeds, &memLikes{seen: map[string]bool{}}, notes, gen)
}

func TestFeedCreate_DefaultsAndBroadcast(t *testing.T) {
	feeds, notes, svc := newFeedFixture(nil)

	feed, err := svc.Create(context.Background(), "alice", models.FeedCreateRequest{
		Type:       models.FeedClientActivity,
		ActionCall: ptr(true),
		Metadata:   ptr("ACME opened the offer"),
	})
	require.NoError(t, err)

	assert.Equal(t, models.FeedNew, feed.Status)
	assert.True(t, feed.ActionCall)
	assert.False(t, feed.ActionEmail)
	assert.False(t, feed.ActionBooking)
	assert.False(t, feed.ActionTask)
	assert.Nil(t, feed.ClientID)
	assert.Contains(t, feeds.items, feed.ID)

	require.Len(t, notes.created, 1)
	n := notes.created[0]
	assert.Equal(t, models.NotificationFeed, n.Type)
	assert.Nil(t, n.RecipientID, "feed notifications are broadcast")
	assert.Equal(t, "ACME opened the offer", n.Message)
	assert.Equal(t, "alice", *n.SenderID)
}

func TestFeedCreate_BroadcastFailureIsNotFatal(t *testing.T) {
	_, notes, svc := newFeedFixture(nil)
	notes.err = errBoom

	_, err := svc.Create(context.Background(), "alice", models.FeedCreateRequest{Type: models.FeedRecommendation})
	require.NoError(t, err)
}

func TestFeedCreate_InvalidType(t *testing.T) {
	_, _, svc := newFeedFixture(nil)

	_, err := svc.Create(context.Background(), "alice", models.FeedCreateRequest{Type: "GOSSIP"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestFeedUpdate_AnyStatusFollowsAny(t *testing.T) {
	_, _, svc := newFeedFixture(nil)
	ctx := context.Background()
	feed, err := svc.Create(ctx, "alice", models.FeedCreateRequest{Type: models.FeedRecommendation, Status: models.FeedClosed})
	require.NoError(t, err)

	status := models.FeedNew
	got, err := svc.Update(ctx, feed.ID, models.FeedUpdateRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.FeedNew, got.Status)
}

func TestFeedUpdate_ReturnsFreshClient(t *testing.T) {
	feeds, _, svc := newFeedFixture(nil)
	feeds.clients = map[string]models.Client{
		"c1": {ID: "c1", Name: "Acme"},
		"c2": {ID: "c2", Name: "Globex"},
	}
	ctx := context.Background()
	feed, err := svc.Create(ctx, "alice", models.FeedCreateRequest{Type: models.FeedRecommendation, ClientID: ptr("c1")})
	require.NoError(t, err)

	got, err := svc.Update(ctx, feed.ID, models.FeedUpdateRequest{ClientID: ptr("c2")})
	require.NoError(t, err)
	require.NotNil(t, got.Client)
	assert.Equal(t, "Globex", got.Client.Name)

	_, err = svc.Update(ctx, "nope", models.FeedUpdateRequest{})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestFeedLike_Idempotent(t *testing.T) {
	_, _, svc := newFeedFixture(nil)
	ctx := context.Background()
	feed, err := svc.Create(ctx, "alice", models.FeedCreateRequest{Type: models.FeedRecommendation})
	require.NoError(t, err)

	created, err := svc.Like(ctx, "bob", feed.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.Like(ctx, "bob", feed.ID)
	require.NoError(t, err)
	assert.False(t, created)

	n, err := svc.LikeCount(ctx, feed.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = svc.Like(ctx, "bob", "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestRequestBooking(t *testing.T) {
	gen := &stubGenerator{out: "Option_1_: train"}
	feeds, _, svc := newFeedFixture(gen)
	ctx := context.Background()
	feed, err := svc.Create(ctx, "alice", models.FeedCreateRequest{Type: models.FeedRecommendation})
	require.NoError(t, err)

	got, err := svc.RequestBooking(ctx, feed.ID, models.BookingRequest{TravellersNumber: 2, DatesFrom: "2024-06-01", DatesTo: "2024-06-05"})
	require.NoError(t, err)
	require.NotNil(t, got.FeedbackBooking)
	assert.Equal(t, "Option_1_: train", *got.FeedbackBooking)
	assert.Equal(t, "Option_1_: train", *feeds.items[feed.ID].FeedbackBooking)
	assert.Len(t, gen.prompts, 1, "generator is called once")
}

func TestRequestBooking_UpstreamFailure(t *testing.T) {
	gen := &stubGenerator{err: errBoom}
	feeds, _, svc := newFeedFixture(gen)
	ctx := context.Background()
	feed, err := svc.Create(ctx, "alice", models.FeedCreateRequest{Type: models.FeedRecommendation})
	require.NoError(t, err)

	_, err = svc.RequestBooking(ctx, feed.ID, models.BookingRequest{TravellersNumber: 1})
	require.ErrorIs(t, err, ErrUpstream)
	assert.Nil(t, feeds.items[feed.ID].FeedbackBooking)
	assert.Len(t, gen.prompts, 1, "no retry")
}

func TestRequestBooking_NoGenerator(t *testing.T) {
	_, _, svc := newFeedFixture(nil)
	_, err := svc.RequestBooking(context.Background(), "f1", models.BookingRequest{})
	require.ErrorIs(t, err, ErrUpstream)
}

func TestBookingPrompt(t *testing.T) {
	p := BookingPrompt(models.BookingRequest{
		TravellersNumber: 3,
		DatesFrom:        "2024-07-01",
		DatesTo:          "2024-07-10",
		DepartureCountry: "Germany",
		DepartureCity:    "Berlin",
		Country:          "Spain",
		City:             "Madrid",
		IsHotelRequired:  true,
	})

	assert.True(t, strings.HasPrefix(p, "You are a travel agent."))
	assert.Contains(t, p, "Number of Travellers: 3\n")
	assert.Contains(t, p, "Travel Dates: From 2024-07-01 to 2024-07-10\n")
	assert.Contains(t, p, "Departure City: Berlin\n")
	assert.Contains(t, p, "Destination Country: Spain\n")
	assert.Contains(t, p, "Travel Option: Plane\n", "travel option defaults to Plane")
	assert.Contains(t, p, "Hotel Required: Yes\n")
	assert.Contains(t, p, "Other Preferences: None")
	assert.Contains(t, p, "Option_1_:, Option_2_: and Option_3_:")
}
