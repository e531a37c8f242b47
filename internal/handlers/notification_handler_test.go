package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmmvp/internal/models"
	"crmmvp/internal/textgen"
)

func newNotificationRouter(svc *mockNotificationService) *gin.Engine {
	h := NewNotificationHandler(svc, nil)
	r := newTestRouter(asUser("alice", "user"))
	r.GET("/notification", h.List)
	r.POST("/notification", h.Create)
	r.GET("/notification/:id", h.GetByID)
	r.PATCH("/notification/:id", h.Update)
	return r
}

func TestNotificationList(t *testing.T) {
	svc := &mockNotificationService{}
	svc.ListUnreadFn = func(_ context.Context, uid string) ([]models.Notification, error) {
		assert.Equal(t, "alice", uid)
		return []models.Notification{{ID: "n1"}}, nil
	}
	r := newNotificationRouter(svc)

	rr := doJSON(t, r, http.MethodGet, "/notification", nil)
	require.Equal(t, http.StatusOK, rr.Code, "userId defaults to the caller")
	assert.Len(t, decode[[]models.Notification](t, rr), 1)

	rr = doJSON(t, r, http.MethodGet, "/notification?userId=alice", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, r, http.MethodGet, "/notification?userId=bob", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestNotificationCreate_DefaultsSenderToCaller(t *testing.T) {
	svc := &mockNotificationService{}
	svc.CreateFn = func(_ context.Context, req models.NotificationCreateRequest) (*models.Notification, error) {
		require.NotNil(t, req.SenderID)
		assert.Equal(t, "alice", *req.SenderID)
		assert.Nil(t, req.RecipientID)
		return &models.Notification{ID: "n1", SenderID: req.SenderID, Message: req.Message, Type: models.NotificationGeneral}, nil
	}

	rr := doJSON(t, newNotificationRouter(svc), http.MethodPost, "/notification", map[string]any{"message": "hello all"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "hello all", decode[models.Notification](t, rr).Message)
}

func TestNotificationUpdate_MarkRead(t *testing.T) {
	svc := &mockNotificationService{}
	svc.UpdateFn = func(_ context.Context, id string, req models.NotificationUpdateRequest) (*models.Notification, error) {
		require.NotNil(t, req.Read)
		n := &models.Notification{ID: id}
		req.Apply(n)
		return n, nil
	}

	rr := doJSON(t, newNotificationRouter(svc), http.MethodPatch, "/notification/n1", map[string]any{"read": true})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[models.Notification](t, rr).Read)
}

func TestTextGenHandler(t *testing.T) {
	gen := &mockGenerator{}
	h := NewTextGenHandler(gen)
	r := newTestRouter(asUser("alice", "user"))
	r.POST("/openai", h.Generate)

	rr := doJSON(t, r, http.MethodPost, "/openai", map[string]any{"prompt": "  "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	out := decode[PromptResponse](t, rr)
	assert.False(t, out.Success)
	assert.Equal(t, "Missing prompt message", out.Error)

	gen.GenerateFn = func(_ context.Context, prompt string) (*textgen.Result, error) {
		return &textgen.Result{OutputText: "hi " + prompt, Provider: "openai", Model: "gpt-5"}, nil
	}
	rr = doJSON(t, r, http.MethodPost, "/openai", map[string]any{"prompt": "there"})
	require.Equal(t, http.StatusOK, rr.Code)
	out = decode[PromptResponse](t, rr)
	assert.True(t, out.Success)
	assert.Equal(t, "hi there", out.Result.OutputText)

	gen.GenerateFn = func(context.Context, string) (*textgen.Result, error) {
		return nil, textgen.ErrNotConfigured
	}
	rr = doJSON(t, r, http.MethodPost, "/openai", map[string]any{"prompt": "there"})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.False(t, decode[PromptResponse](t, rr).Success)
}
