package handlers

import (
	"net/http"

	"orientation-service/internal/middleware"
	"orientation-service/internal/service"

	"github.com/gin-gonic/gin"
)

type AdviceHandler struct {
	advice *service.AdviceService
}

func NewAdviceHandler(advice *service.AdviceService) *AdviceHandler {
	return &AdviceHandler{advice: advice}
}

func (h *AdviceHandler) List(c *gin.Context) {
	items, err := h.advice.List(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *AdviceHandler) Create(c *gin.Context) {
	var input service.AdviceInput
	if !bindJSON(c, &input) {
		return
	}
	advice, err := h.advice.Create(c.Request.Context(), middleware.PrincipalFrom(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, advice)
}

// PATCH /api/advice/:id/read
func (h *AdviceHandler) MarkRead(c *gin.Context) {
	advice, err := h.advice.MarkRead(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, advice)
}
