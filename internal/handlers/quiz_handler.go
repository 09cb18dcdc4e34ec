package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"orientation-service/internal/middleware"
	"orientation-service/internal/models"
	"orientation-service/internal/service"

	"github.com/gin-gonic/gin"
)

type QuizHandler struct {
	quizzes *service.QuizService
	grading *service.GradingService
	results *service.ResultService
}

func NewQuizHandler(quizzes *service.QuizService, grading *service.GradingService, results *service.ResultService) *QuizHandler {
	return &QuizHandler{quizzes: quizzes, grading: grading, results: results}
}

// List serves students their level's quizzes with completion status and
// staff the full answer keys.
func (h *QuizHandler) List(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	if principal.Is(models.RoleStudent) {
		list, err := h.quizzes.ListForStudent(c.Request.Context(), principal)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
		return
	}
	quizzes, err := h.quizzes.ListAll(c.Request.Context(), principal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quizzes": quizzes})
}

func (h *QuizHandler) Get(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	if principal.Is(models.RoleStudent) {
		quiz, err := h.quizzes.GetForStudent(c.Request.Context(), principal, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, quiz)
		return
	}
	quiz, err := h.quizzes.Get(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

func (h *QuizHandler) Create(c *gin.Context) {
	var input service.QuizInput
	if !bindJSON(c, &input) {
		return
	}
	quiz, err := h.quizzes.Create(c.Request.Context(), middleware.PrincipalFrom(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, quiz)
}

func (h *QuizHandler) Update(c *gin.Context) {
	var input service.QuizInput
	if !bindJSON(c, &input) {
		return
	}
	quiz, err := h.quizzes.Update(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

func (h *QuizHandler) Delete(c *gin.Context) {
	if err := h.quizzes.Delete(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Quiz deleted"})
}

// POST /api/quizzes/submit
func (h *QuizHandler) Submit(c *gin.Context) {
	var req service.SubmitRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.grading.Submit(c.Request.Context(), middleware.PrincipalFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// GET /api/quizzes/results?page=&limit=&quizId=&userId=&sortBy=&sortOrder=&minScore=&maxScore=&from=&to=
func (h *QuizHandler) Results(c *gin.Context) {
	query, err := parseResultQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, err := h.results.List(c.Request.Context(), middleware.PrincipalFrom(c), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func parseResultQuery(c *gin.Context) (service.ResultQuery, error) {
	q := service.ResultQuery{
		QuizID:    c.Query("quizId"),
		UserID:    c.Query("userId"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
	var err error
	if q.Page, err = intParam(c, "page"); err != nil {
		return q, err
	}
	if q.Limit, err = intParam(c, "limit"); err != nil {
		return q, err
	}
	if q.MinScore, err = floatParam(c, "minScore"); err != nil {
		return q, err
	}
	if q.MaxScore, err = floatParam(c, "maxScore"); err != nil {
		return q, err
	}
	if q.From, err = timeParam(c, "from"); err != nil {
		return q, err
	}
	if q.To, err = timeParam(c, "to"); err != nil {
		return q, err
	}
	return q, nil
}

func intParam(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return value, nil
}

func floatParam(c *gin.Context, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", name)
	}
	return &value, nil
}

// timeParam accepts RFC 3339 timestamps or plain dates.
func timeParam(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%s must be a date (YYYY-MM-DD) or RFC 3339 timestamp", name)
}
