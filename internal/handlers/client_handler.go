package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crmmvp/internal/models"
	"crmmvp/internal/services"
)

type ClientHandler struct {
	Service services.ClientService
}

func NewClientHandler(service services.ClientService) *ClientHandler {
	return &ClientHandler{Service: service}
}

// @Summary      List clients
// @Tags         Clients
// @Produce      json
// @Success      200  {array}   models.Client
// @Security     BearerAuth
// @Router       /client [get]
func (h *ClientHandler) List(c *gin.Context) {
	clients, err := h.Service.List(c.Request.Context())
	if err != nil {
		respondError(c, "[client][list]", err, "Failed to fetch clients")
		return
	}
	c.JSON(http.StatusOK, clients)
}

// @Summary      Create a client
// @Tags         Clients
// @Accept       json
// @Produce      json
// @Param        client  body      models.ClientCreateRequest  true  "Client"
// @Success      201     {object}  models.Client
// @Failure      400     {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /client [post]
func (h *ClientHandler) Create(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	var req models.ClientCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "[client][create]", err)
		return
	}
	client, err := h.Service.Create(c.Request.Context(), uid, req)
	if err != nil {
		respondError(c, "[client][create]", err, "Failed to create client")
		return
	}
	c.JSON(http.StatusCreated, client)
}

// @Summary      Get a client with contacts, tasks and feed items
// @Tags         Clients
// @Produce      json
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  models.Client
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /client/{id} [get]
func (h *ClientHandler) GetByID(c *gin.Context) {
	client, err := h.Service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "[client][getByID]", err, "Failed to fetch client")
		return
	}
	c.JSON(http.StatusOK, client)
}

// @Summary      Partially update a client
// @Tags         Clients
// @Accept       json
// @Produce      json
// @Param        id      path      string                      true  "Client ID"
// @Param        client  body      models.ClientUpdateRequest  true  "Fields to change"
// @Success      200     {object}  models.Client
// @Failure      404     {object}  ErrorResponse
// @Failure      500     {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /client/{id} [patch]
func (h *ClientHandler) Update(c *gin.Context) {
	var req models.ClientUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "[client][update]", err)
		return
	}
	client, err := h.Service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, "[client][update]", err, "Failed to update client")
		return
	}
	c.JSON(http.StatusOK, client)
}
