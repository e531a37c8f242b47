package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"crmmvp/internal/middleware"
	"crmmvp/internal/models"
	"crmmvp/internal/pdf"
	"crmmvp/internal/textgen"
)

// asUser stands in for AuthMiddleware.
func asUser(id, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxUserID, id)
		c.Set(middleware.CtxRole, role)
		c.Next()
	}
}

func newTestRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body err=%v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode err=%v body=%s", err, rr.Body.String())
	}
	return out
}

type mockTaskService struct {
	CreateFn      func(ctx context.Context, callerID string, req models.TaskCreateRequest) (*models.Task, error)
	GetByIDFn     func(ctx context.Context, id string) (*models.Task, error)
	ListVisibleFn func(ctx context.Context, userID string, s models.TaskListSettings) ([]models.Task, error)
	UpdateFn      func(ctx context.Context, id string, req models.TaskUpdateRequest) (*models.Task, error)
}

func (m *mockTaskService) Create(ctx context.Context, callerID string, req models.TaskCreateRequest) (*models.Task, error) {
	return m.CreateFn(ctx, callerID, req)
}

func (m *mockTaskService) GetByID(ctx context.Context, id string) (*models.Task, error) {
	return m.GetByIDFn(ctx, id)
}

func (m *mockTaskService) ListVisible(ctx context.Context, userID string, s models.TaskListSettings) ([]models.Task, error) {
	return m.ListVisibleFn(ctx, userID, s)
}

func (m *mockTaskService) Update(ctx context.Context, id string, req models.TaskUpdateRequest) (*models.Task, error) {
	return m.UpdateFn(ctx, id, req)
}

type mockLifecycle struct {
	InitiateFn func(ctx context.Context, taskID, initiatorID string, req models.TransferRequest) (*models.LifecycleResult, error)
	ResolveFn  func(ctx context.Context, taskID, deciderID string, req models.ResolveTransferRequest) (*models.LifecycleResult, error)
	StatusFn   func(ctx context.Context, taskID string, req models.StatusChangeRequest) (*models.LifecycleResult, error)
}

func (m *mockLifecycle) InitiateTransfer(ctx context.Context, taskID, initiatorID string, req models.TransferRequest) (*models.LifecycleResult, error) {
	return m.InitiateFn(ctx, taskID, initiatorID, req)
}

func (m *mockLifecycle) ResolveTransfer(ctx context.Context, taskID, deciderID string, req models.ResolveTransferRequest) (*models.LifecycleResult, error) {
	return m.ResolveFn(ctx, taskID, deciderID, req)
}

func (m *mockLifecycle) ChangeStatus(ctx context.Context, taskID string, req models.StatusChangeRequest) (*models.LifecycleResult, error) {
	return m.StatusFn(ctx, taskID, req)
}

type mockUserService struct {
	ListFn       func(ctx context.Context) ([]models.UserRef, error)
	GetByIDFn    func(ctx context.Context, id string) (*models.User, error)
	UpdateRoleFn func(ctx context.Context, id, role string) error
}

func (m *mockUserService) List(ctx context.Context) ([]models.UserRef, error) { return m.ListFn(ctx) }

func (m *mockUserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return m.GetByIDFn(ctx, id)
}

func (m *mockUserService) UpdateRole(ctx context.Context, id, role string) error {
	return m.UpdateRoleFn(ctx, id, role)
}

type mockFeedService struct {
	ListFn      func(ctx context.Context, s models.FeedListSettings) ([]models.Feed, error)
	CreateFn    func(ctx context.Context, callerID string, req models.FeedCreateRequest) (*models.Feed, error)
	GetByIDFn   func(ctx context.Context, id string) (*models.Feed, error)
	UpdateFn    func(ctx context.Context, id string, req models.FeedUpdateRequest) (*models.Feed, error)
	LikeFn      func(ctx context.Context, userID, feedID string) (bool, error)
	LikeCountFn func(ctx context.Context, feedID string) (int, error)
	BookingFn   func(ctx context.Context, feedID string, req models.BookingRequest) (*models.Feed, error)
}

func (m *mockFeedService) List(ctx context.Context, s models.FeedListSettings) ([]models.Feed, error) {
	return m.ListFn(ctx, s)
}

func (m *mockFeedService) Create(ctx context.Context, callerID string, req models.FeedCreateRequest) (*models.Feed, error) {
	return m.CreateFn(ctx, callerID, req)
}

func (m *mockFeedService) GetByID(ctx context.Context, id string) (*models.Feed, error) {
	return m.GetByIDFn(ctx, id)
}

func (m *mockFeedService) Update(ctx context.Context, id string, req models.FeedUpdateRequest) (*models.Feed, error) {
	return m.UpdateFn(ctx, id, req)
}

func (m *mockFeedService) Like(ctx context.Context, userID, feedID string) (bool, error) {
	return m.LikeFn(ctx, userID, feedID)
}

func (m *mockFeedService) LikeCount(ctx context.Context, feedID string) (int, error) {
	return m.LikeCountFn(ctx, feedID)
}

func (m *mockFeedService) RequestBooking(ctx context.Context, feedID string, req models.BookingRequest) (*models.Feed, error) {
	return m.BookingFn(ctx, feedID, req)
}

type mockNotificationService struct {
	CreateFn     func(ctx context.Context, req models.NotificationCreateRequest) (*models.Notification, error)
	ListUnreadFn func(ctx context.Context, userID string) ([]models.Notification, error)
	GetByIDFn    func(ctx context.Context, id string) (*models.Notification, error)
	UpdateFn     func(ctx context.Context, id string, req models.NotificationUpdateRequest) (*models.Notification, error)
}

func (m *mockNotificationService) Create(ctx context.Context, req models.NotificationCreateRequest) (*models.Notification, error) {
	return m.CreateFn(ctx, req)
}

func (m *mockNotificationService) ListUnread(ctx context.Context, userID string) ([]models.Notification, error) {
	return m.ListUnreadFn(ctx, userID)
}

func (m *mockNotificationService) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	return m.GetByIDFn(ctx, id)
}

func (m *mockNotificationService) Update(ctx context.Context, id string, req models.NotificationUpdateRequest) (*models.Notification, error) {
	return m.UpdateFn(ctx, id, req)
}

type mockGenerator struct {
	GenerateFn func(ctx context.Context, prompt string) (*textgen.Result, error)
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (*textgen.Result, error) {
	return m.GenerateFn(ctx, prompt)
}

type mockReports struct {
	got pdf.TaskReportData
}

func (m *mockReports) TaskReport(w io.Writer, data pdf.TaskReportData) error {
	m.got = data
	_, err := w.Write([]byte("%PDF-1.3 test"))
	return err
}
