package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"crmmvp/internal/logging"
	"crmmvp/internal/textgen"
)

type PromptRequest struct {
	Prompt string `json:"prompt"`
}

type PromptResponse struct {
	Success bool            `json:"success"`
	Result  *textgen.Result `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// TextGenHandler exposes the text generator directly.
type TextGenHandler struct {
	gen textgen.Generator
}

func NewTextGenHandler(gen textgen.Generator) *TextGenHandler {
	return &TextGenHandler{gen: gen}
}

// @Summary      Generate text from a prompt
// @Tags         TextGen
// @Accept       json
// @Produce      json
// @Param        body  body      PromptRequest  true  "Prompt"
// @Success      200   {object}  PromptResponse
// @Failure      400   {object}  PromptResponse
// @Failure      500   {object}  PromptResponse
// @Security     BearerAuth
// @Router       /openai [post]
func (h *TextGenHandler) Generate(c *gin.Context) {
	var req PromptRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, PromptResponse{Error: "Missing prompt message"})
		return
	}
	if h.gen == nil {
		c.JSON(http.StatusInternalServerError, PromptResponse{Error: textgen.ErrNotConfigured.Error()})
		return
	}
	res, err := h.gen.Generate(c.Request.Context(), req.Prompt)
	if err != nil {
		if errors.Is(err, textgen.ErrEmptyPrompt) {
			c.JSON(http.StatusBadRequest, PromptResponse{Error: "Missing prompt message"})
			return
		}
		logging.Logger.WithError(err).Error("[textgen][generate][err]")
		c.JSON(http.StatusInternalServerError, PromptResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, PromptResponse{Success: true, Result: res})
}
