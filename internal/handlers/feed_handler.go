package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"crmmvp/internal/models"
	"crmmvp/internal/services"
)

type FeedHandler struct {
	Service services.FeedService
}

func NewFeedHandler(service services.FeedService) *FeedHandler {
	return &FeedHandler{Service: service}
}

// LikeCountResponse is returned by GET /feed/{id}/like.
type LikeCountResponse struct {
	LikeCount int `json:"likeCount"`
}

// @Summary      List feed items
// @Tags         Feed
// @Produce      json
// @Param        type    query  string  false  "Feed type or ALL"
// @Param        status  query  string  false  "Feed status or ALL"
// @Param        sort    query  string  false  "asc|desc"
// @Success      200  {array}   models.Feed
// @Failure      400  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /feed [get]
func (h *FeedHandler) List(c *gin.Context) {
	settings, err := services.ParseFeedListSettings(c.Request.URL.Query())
	if err != nil {
		badRequest(c, "[feed][list]", fmt.Errorf("invalid listing options: %w", err))
		return
	}
	feeds, err := h.Service.List(c.Request.Context(), settings)
	if err != nil {
		respondError(c, "[feed][list]", err, "Failed to fetch feed")
		return
	}
	c.JSON(http.StatusOK, feeds)
}

// @Summary      Create a feed item
// @Description  Omitted action flags default to false. A FEED notification is broadcast.
// @Tags         Feed
// @Accept       json
// @Produce      json
// @Param        feed  body      models.FeedCreateRequest  true  "Feed item"
// @Success      201   {object}  models.Feed
// @Failure      400   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /feed [post]
func (h *FeedHandler) Create(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	var req models.FeedCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "[feed][create]", err)
		return
	}
	feed, err := h.Service.Create(c.Request.Context(), uid, req)
	if err != nil {
		respondError(c, "[feed][create]", err, "Failed to create feed")
		return
	}
	c.JSON(http.StatusCreated, feed)
}

// @Summary      Get a feed item
// @Tags         Feed
// @Produce      json
// @Param        id   path      string  true  "Feed ID"
// @Success      200  {object}  models.Feed
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /feed/{id} [get]
func (h *FeedHandler) GetByID(c *gin.Context) {
	feed, err := h.Service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "[feed][getByID]", err, "Failed to fetch feed")
		return
	}
	c.JSON(http.StatusOK, feed)
}

// @Summary      Partially update a feed item
// @Description  Any status may follow any other.
// @Tags         Feed
// @Accept       json
// @Produce      json
// @Param        id    path      string                    true  "Feed ID"
// @Param        feed  body      models.FeedUpdateRequest  true  "Fields to change"
// @Success      200   {object}  models.Feed
// @Failure      404   {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /feed/{id} [patch]
func (h *FeedHandler) Update(c *gin.Context) {
	var req models.FeedUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "[feed][update]", err)
		return
	}
	feed, err := h.Service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, "[feed][update]", err, "Failed to update feed")
		return
	}
	c.JSON(http.StatusOK, feed)
}

// @Summary      Like a feed item
// @Tags         Feed
// @Produce      json
// @Param        id   path      string  true  "Feed ID"
// @Success      200  {object}  MessageResponse
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /feed/{id}/like [post]
func (h *FeedHandler) Like(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	created, err := h.Service.Like(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		respondError(c, "[feed][like]", err, "Internal Server Error")
		return
	}
	if !created {
		c.JSON(http.StatusOK, MessageResponse{Message: "Already liked"})
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Liked successfully"})
}

// @Summary      Like count of a feed item
// @Tags         Feed
// @Produce      json
// @Param        id   path      string  true  "Feed ID"
// @Success      200  {object}  LikeCountResponse
// @Security     BearerAuth
// @Router       /feed/{id}/like [get]
func (h *FeedHandler) LikeCount(c *gin.Context) {
	n, err := h.Service.LikeCount(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "[feed][likeCount]", err, "Internal Server Error")
		return
	}
	c.JSON(http.StatusOK, LikeCountResponse{LikeCount: n})
}

// @Summary      Generate booking options for a feed item
// @Description  Sends the booking form to the text generator once and stores the answer in feedbackBooking.
// @Tags         Feed
// @Accept       json
// @Produce      json
// @Param        id       path      string                 true  "Feed ID"
// @Param        booking  body      models.BookingRequest  true  "Booking form"
// @Success      200      {object}  models.Feed
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Failure      500      {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /feed/{id}/booking [post]
func (h *FeedHandler) Booking(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "[feed][booking]", err)
		return
	}
	feed, err := h.Service.RequestBooking(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, "[feed][booking]", err, "Failed to generate booking options")
		return
	}
	c.JSON(http.StatusOK, feed)
}
