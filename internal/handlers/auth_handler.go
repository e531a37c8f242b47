package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"crmmvp/internal/logging"
	"crmmvp/internal/models"
	"crmmvp/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// @Summary      Register
// @Description  Creates a USER account and returns an access token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.SignUpRequest  true  "Account"
// @Success      201   {object}  models.TokenResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /auth/sign-up [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "[auth][sign-up]", err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	res, err := h.authService.SignUp(c.Request.Context(), req)
	if err != nil {
		respondError(c, "[auth][sign-up]", err, "Failed to register")
		return
	}
	logging.Logger.WithField("user_id", res.User.ID).Info("[auth][sign-up][ok]")
	c.JSON(http.StatusCreated, res)
}

// @Summary      Sign in
// @Description  Checks the password and returns an access token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.SignInRequest  true  "Credentials"
// @Success      200   {object}  models.TokenResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /auth/sign-in [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	start := time.Now()

	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "[auth][sign-in]", err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	res, err := h.authService.SignIn(c.Request.Context(), req)
	if err != nil {
		respondError(c, "[auth][sign-in]", err, "Failed to sign in")
		return
	}
	logging.Logger.WithFields(logrus.Fields{
		"user_id": res.User.ID,
		"role":    res.User.Role,
		"took":    time.Since(start).Truncate(time.Millisecond),
	}).Info("[auth][sign-in][ok]")
	c.JSON(http.StatusOK, res)
}

// @Summary      Current session
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  models.Session
// @Failure      401  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	sess, err := h.authService.Session(c.Request.Context(), uid)
	if err != nil {
		respondError(c, "[auth][session]", err, "Failed to load session")
		return
	}
	c.JSON(http.StatusOK, sess)
}
