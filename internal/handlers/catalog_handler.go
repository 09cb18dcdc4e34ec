package handlers

import (
	"net/http"

	"orientation-service/internal/middleware"
	"orientation-service/internal/service"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalog *service.CatalogService
}

func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// GET /api/formations?category=
func (h *CatalogHandler) ListFormations(c *gin.Context) {
	formations, err := h.catalog.ListFormations(c.Request.Context(), c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, formations)
}

func (h *CatalogHandler) GetFormation(c *gin.Context) {
	formation, err := h.catalog.GetFormation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, formation)
}

func (h *CatalogHandler) CreateFormation(c *gin.Context) {
	var input service.FormationInput
	if !bindJSON(c, &input) {
		return
	}
	formation, err := h.catalog.CreateFormation(c.Request.Context(), middleware.PrincipalFrom(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, formation)
}

func (h *CatalogHandler) UpdateFormation(c *gin.Context) {
	var input service.FormationInput
	if !bindJSON(c, &input) {
		return
	}
	formation, err := h.catalog.UpdateFormation(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, formation)
}

func (h *CatalogHandler) DeleteFormation(c *gin.Context) {
	if err := h.catalog.DeleteFormation(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Formation deleted"})
}

// GET /api/universities?category=
func (h *CatalogHandler) ListUniversities(c *gin.Context) {
	universities, err := h.catalog.ListUniversities(c.Request.Context(), c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, universities)
}

func (h *CatalogHandler) GetUniversity(c *gin.Context) {
	university, err := h.catalog.GetUniversity(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, university)
}

func (h *CatalogHandler) CreateUniversity(c *gin.Context) {
	var input service.UniversityInput
	if !bindJSON(c, &input) {
		return
	}
	university, err := h.catalog.CreateUniversity(c.Request.Context(), middleware.PrincipalFrom(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, university)
}

func (h *CatalogHandler) UpdateUniversity(c *gin.Context) {
	var input service.UniversityInput
	if !bindJSON(c, &input) {
		return
	}
	university, err := h.catalog.UpdateUniversity(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, university)
}

func (h *CatalogHandler) DeleteUniversity(c *gin.Context) {
	if err := h.catalog.DeleteUniversity(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "University deleted"})
}
