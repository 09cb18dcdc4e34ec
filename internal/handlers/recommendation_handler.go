package handlers

import (
	"net/http"

	"orientation-service/internal/service"

	"github.com/gin-gonic/gin"
)

type RecommendationHandler struct {
	recommendations *service.RecommendationService
}

func NewRecommendationHandler(recommendations *service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{recommendations: recommendations}
}

// GET /api/recommendations?quizId=&score=&specialite=
// "category" is accepted in place of "specialite".
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	category := c.Query("specialite")
	if category == "" {
		category = c.Query("category")
	}
	result, err := h.recommendations.Recommend(c.Request.Context(), service.RecommendationRequest{
		QuizID:   c.Query("quizId"),
		Score:    c.Query("score"),
		Category: category,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
