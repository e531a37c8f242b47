package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"crmmvp/internal/authz"
	"crmmvp/internal/handlers"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := Handlers{
		Auth:         handlers.NewAuthHandler(nil),
		User:         handlers.NewUserHandler(nil),
		Task:         handlers.NewTaskHandler(nil, nil, nil, nil),
		Client:       handlers.NewClientHandler(nil),
		Contact:      handlers.NewContactHandler(nil),
		Feed:         handlers.NewFeedHandler(nil),
		Notification: handlers.NewNotificationHandler(nil, nil),
		TextGen:      handlers.NewTextGenHandler(nil),
	}
	return SetupRoutes(gin.New(), authz.NewTokens("secret", time.Hour), h)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	r := newRouter()
	for _, rt := range []struct{ method, path string }{
		{http.MethodGet, "/api/auth/session"},
		{http.MethodGet, "/api/task?userId=u1"},
		{http.MethodPost, "/api/task/t1/transfer"},
		{http.MethodPost, "/api/task/t1/transfer/resolve"},
		{http.MethodPatch, "/api/notification/n1"},
		{http.MethodGet, "/api/notification/stream"},
		{http.MethodPost, "/api/feed/f1/like"},
		{http.MethodPost, "/api/openai"},
		{http.MethodPatch, "/api/user/u1/role"},
	} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(rt.method, rt.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code, rt.method+" "+rt.path)
	}
}

func TestRoleRouteNeedsAdmin(t *testing.T) {
	r := newRouter()
	tok, _, err := authz.NewTokens("secret", time.Hour).Issue("u1", authz.RoleUser)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, "/api/user/u2/role", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestTelegramRoutesOnlyWithBot(t *testing.T) {
	rr := httptest.NewRecorder()
	newRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/integrations/telegram/webhook", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
