package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"crmmvp/internal/logging"
	"crmmvp/internal/middleware"
	"crmmvp/internal/repositories"
	"crmmvp/internal/services"
)

// ErrorResponse is the body of every error answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// callerID returns the session user or answers 401.
func callerID(c *gin.Context) (string, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return "", false
	}
	return id, true
}

func badRequest(c *gin.Context, tag string, err error) {
	logging.Logger.WithError(err).Debug(tag + "[bind][err]")
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
}

// respondError maps service and repository errors to a status code. Store
// failures answer 500 with failMsg; the cause is only logged.
func respondError(c *gin.Context, tag string, err error, failMsg string) {
	entry := logging.Logger.WithFields(logrus.Fields{
		"path":    c.Request.URL.Path,
		"user_id": c.GetString(middleware.CtxUserID),
	}).WithError(err)

	switch {
	case errors.Is(err, repositories.ErrNotFound):
		entry.Info(tag + "[404]")
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
	case errors.Is(err, services.ErrForbidden):
		entry.Warn(tag + "[deny]")
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
	case errors.Is(err, services.ErrInvalidInput):
		entry.Info(tag + "[400]")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrIllegalTransition):
		entry.Info(tag + "[409]")
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrEmailTaken):
		entry.Info(tag + "[409]")
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrInvalidCredential):
		entry.Info(tag + "[401]")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid email or password"})
	default:
		entry.Error(tag + "[err]")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: failMsg})
	}
}
