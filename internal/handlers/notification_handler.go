package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"crmmvp/internal/logging"
	"crmmvp/internal/models"
	"crmmvp/internal/services"
)

// NotificationStream serves a live notification feed over an upgraded
// connection.
type NotificationStream interface {
	Serve(w http.ResponseWriter, r *http.Request, userID string) error
}

type NotificationHandler struct {
	service services.NotificationService
	stream  NotificationStream
}

func NewNotificationHandler(service services.NotificationService, stream NotificationStream) *NotificationHandler {
	return &NotificationHandler{service: service, stream: stream}
}

// @Summary      List unread notifications
// @Description  Unread notifications addressed to the user or broadcast, newest first. userId defaults to the caller.
// @Tags         Notifications
// @Produce      json
// @Param        userId  query  string  false  "Must equal the caller"
// @Success      200  {array}   models.Notification
// @Failure      403  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /notification [get]
func (h *NotificationHandler) List(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	if q, set := c.GetQuery("userId"); set && q != uid {
		logging.Logger.WithFields(logrus.Fields{"user_id": uid, "requested": q}).Warn("[notification][list][deny] user mismatch")
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden: user mismatch"})
		return
	}
	list, err := h.service.ListUnread(c.Request.Context(), uid)
	if err != nil {
		respondError(c, "[notification][list]", err, "Failed to fetch notifications")
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary      Create a notification
// @Description  A missing recipientId broadcasts to every user.
// @Tags         Notifications
// @Accept       json
// @Produce      json
// @Param        notification  body      models.NotificationCreateRequest  true  "Notification"
// @Success      201           {object}  models.Notification
// @Failure      400           {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /notification [post]
func (h *NotificationHandler) Create(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	var req models.NotificationCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "[notification][create]", err)
		return
	}
	if req.SenderID == nil {
		req.SenderID = &uid
	}
	n, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, "[notification][create]", err, "Failed to create notification")
		return
	}
	c.JSON(http.StatusCreated, n)
}

// @Summary      Get a notification
// @Tags         Notifications
// @Produce      json
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  models.Notification
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /notification/{id} [get]
func (h *NotificationHandler) GetByID(c *gin.Context) {
	n, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "[notification][getByID]", err, "Failed to fetch notification")
		return
	}
	c.JSON(http.StatusOK, n)
}

// @Summary      Update a notification
// @Description  Typically used to mark it read.
// @Tags         Notifications
// @Accept       json
// @Produce      json
// @Param        id            path      string                            true  "Notification ID"
// @Param        notification  body      models.NotificationUpdateRequest  true  "Fields to change"
// @Success      200           {object}  models.Notification
// @Failure      404           {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /notification/{id} [patch]
func (h *NotificationHandler) Update(c *gin.Context) {
	var req models.NotificationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "[notification][update]", err)
		return
	}
	n, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, "[notification][update]", err, "Failed to update notification")
		return
	}
	c.JSON(http.StatusOK, n)
}

// @Summary      Live notification stream
// @Description  Websocket. The token may be passed as ?token= because browsers cannot set headers on upgrade.
// @Tags         Notifications
// @Param        token  query  string  false  "Access token"
// @Success      101
// @Security     BearerAuth
// @Router       /notification/stream [get]
func (h *NotificationHandler) Stream(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	// the upgrader has already answered when Serve fails
	if err := h.stream.Serve(c.Writer, c.Request, uid); err != nil {
		logging.Logger.WithField("user_id", uid).WithError(err).Warn("[notification][stream] upgrade failed")
	}
}
