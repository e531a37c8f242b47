package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crmmvp/internal/models"
	"crmmvp/internal/services"
)

type ContactHandler struct {
	Service services.ContactService
}

func NewContactHandler(service services.ContactService) *ContactHandler {
	return &ContactHandler{Service: service}
}

// @Summary      List contacts
// @Tags         Contacts
// @Produce      json
// @Success      200  {array}  models.Contact
// @Security     BearerAuth
// @Router       /contact [get]
func (h *ContactHandler) List(c *gin.Context) {
	contacts, err := h.Service.List(c.Request.Context())
	if err != nil {
		respondError(c, "[contact][list]", err, "Failed to fetch contacts")
		return
	}
	c.JSON(http.StatusOK, contacts)
}

// @Summary      Create a contact
// @Tags         Contacts
// @Accept       json
// @Produce      json
// @Param        contact  body      models.ContactCreateRequest  true  "Contact"
// @Success      201      {object}  models.Contact
// @Failure      400      {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /contact [post]
func (h *ContactHandler) Create(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	var req models.ContactCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "[contact][create]", err)
		return
	}
	contact, err := h.Service.Create(c.Request.Context(), uid, req)
	if err != nil {
		respondError(c, "[contact][create]", err, "Failed to create contact")
		return
	}
	c.JSON(http.StatusCreated, contact)
}

// @Summary      Get a contact with its client
// @Tags         Contacts
// @Produce      json
// @Param        id   path      string  true  "Contact ID"
// @Success      200  {object}  models.Contact
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /contact/{id} [get]
func (h *ContactHandler) GetByID(c *gin.Context) {
	contact, err := h.Service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "[contact][getByID]", err, "Failed to fetch contact")
		return
	}
	c.JSON(http.StatusOK, contact)
}

// @Summary      Partially update a contact
// @Tags         Contacts
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Contact ID"
// @Param        contact  body      models.ContactUpdateRequest  true  "Fields to change"
// @Success      200      {object}  models.Contact
// @Failure      404      {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /contact/{id} [patch]
func (h *ContactHandler) Update(c *gin.Context) {
	var req models.ContactUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "[contact][update]", err)
		return
	}
	contact, err := h.Service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, "[contact][update]", err, "Failed to update contact")
		return
	}
	c.JSON(http.StatusOK, contact)
}
