package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"crmmvp/internal/logging"
	"crmmvp/internal/models"
	"crmmvp/internal/services"
)

type UserHandler struct {
	service services.UserService
}

func NewUserHandler(service services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// @Summary      List users
// @Description  Public projection only (id, name, image), for assignee pickers
// @Tags         Users
// @Produce      json
// @Success      200  {array}  models.UserRef
// @Security     BearerAuth
// @Router       /user [get]
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, "[user][list]", err, "Failed to fetch users")
		return
	}
	c.JSON(http.StatusOK, users)
}

// @Summary      Change a user's role
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        id    path      string                    true  "User ID"
// @Param        body  body      models.RoleUpdateRequest  true  "user or admin"
// @Success      200   {object}  MessageResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /user/{id}/role [patch]
func (h *UserHandler) UpdateRole(c *gin.Context) {
	var req models.RoleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "[user][role]", err)
		return
	}
	id := c.Param("id")
	if err := h.service.UpdateRole(c.Request.Context(), id, req.Role); err != nil {
		respondError(c, "[user][role]", err, "Failed to update role")
		return
	}
	logging.Logger.WithFields(logrus.Fields{"user_id": id, "role": req.Role}).Info("[user][role][ok]")
	c.JSON(http.StatusOK, MessageResponse{Message: "Role updated"})
}
