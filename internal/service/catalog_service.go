package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"orientation-service/internal/models"
)

type FormationInput struct {
	Name        string       `json:"name"`
	Specialty   string       `json:"specialty"`
	Specialties []string     `json:"specialties"`
	MinLevel    models.Level `json:"minLevel"`
}

// Specialties accepts either a JSON array or a single string, which becomes a
// one-element list.
type Specialties []string

func (s *Specialties) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = Specialties{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("specialties must be a string or a list of strings")
	}
	*s = list
	return nil
}

type UniversityInput struct {
	Name        string      `json:"name"`
	Location    string      `json:"location"`
	Specialties Specialties `json:"specialties"`
}

type CatalogService struct {
	formations   FormationStore
	universities UniversityStore
}

func NewCatalogService(formations FormationStore, universities UniversityStore) *CatalogService {
	return &CatalogService{formations: formations, universities: universities}
}

func (s *CatalogService) ListFormations(ctx context.Context, category string) ([]models.Formation, error) {
	return s.formations.List(ctx, strings.TrimSpace(category))
}

func (s *CatalogService) GetFormation(ctx context.Context, id string) (*models.Formation, error) {
	formationID, err := parseID(id, "formation")
	if err != nil {
		return nil, err
	}
	formation, err := s.formations.FindByID(ctx, formationID)
	if err != nil {
		return nil, err
	}
	if formation == nil {
		return nil, fmt.Errorf("%w: formation %s", ErrNotFound, id)
	}
	return formation, nil
}

func (s *CatalogService) CreateFormation(ctx context.Context, principal *models.Principal, input FormationInput) (*models.Formation, error) {
	if err := requireRole(principal, models.RoleAdmin); err != nil {
		return nil, err
	}
	formation, err := formationFromInput(input)
	if err != nil {
		return nil, err
	}
	if err := s.formations.Create(ctx, formation); err != nil {
		return nil, err
	}
	return formation, nil
}

func (s *CatalogService) UpdateFormation(ctx context.Context, principal *models.Principal, id string, input FormationInput) (*models.Formation, error) {
	if err := requireRole(principal, models.RoleAdmin); err != nil {
		return nil, err
	}
	current, err := s.GetFormation(ctx, id)
	if err != nil {
		return nil, err
	}
	formation, err := formationFromInput(input)
	if err != nil {
		return nil, err
	}
	formation.ID = current.ID
	formation.CreatedAt = current.CreatedAt

	found, err := s.formations.Update(ctx, formation)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: formation %s", ErrNotFound, id)
	}
	return formation, nil
}

func (s *CatalogService) DeleteFormation(ctx context.Context, principal *models.Principal, id string) error {
	if err := requireRole(principal, models.RoleAdmin); err != nil {
		return err
	}
	formationID, err := parseID(id, "formation")
	if err != nil {
		return err
	}
	deleted, err := s.formations.Delete(ctx, formationID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: formation %s", ErrNotFound, id)
	}
	return nil
}

func (s *CatalogService) ListUniversities(ctx context.Context, category string) ([]models.University, error) {
	return s.universities.List(ctx, strings.TrimSpace(category))
}

func (s *CatalogService) GetUniversity(ctx context.Context, id string) (*models.University, error) {
	universityID, err := parseID(id, "university")
	if err != nil {
		return nil, err
	}
	university, err := s.universities.FindByID(ctx, universityID)
	if err != nil {
		return nil, err
	}
	if university == nil {
		return nil, fmt.Errorf("%w: university %s", ErrNotFound, id)
	}
	return university, nil
}

func (s *CatalogService) CreateUniversity(ctx context.Context, principal *models.Principal, input UniversityInput) (*models.University, error) {
	if err := requireRole(principal, models.RoleAdmin); err != nil {
		return nil, err
	}
	university, err := universityFromInput(input)
	if err != nil {
		return nil, err
	}
	if err := s.universities.Create(ctx, university); err != nil {
		return nil, err
	}
	return university, nil
}

func (s *CatalogService) UpdateUniversity(ctx context.Context, principal *models.Principal, id string, input UniversityInput) (*models.University, error) {
	if err := requireRole(principal, models.RoleAdmin); err != nil {
		return nil, err
	}
	current, err := s.GetUniversity(ctx, id)
	if err != nil {
		return nil, err
	}
	university, err := universityFromInput(input)
	if err != nil {
		return nil, err
	}
	university.ID = current.ID
	university.CreatedAt = current.CreatedAt

	found, err := s.universities.Update(ctx, university)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: university %s", ErrNotFound, id)
	}
	return university, nil
}

func (s *CatalogService) DeleteUniversity(ctx context.Context, principal *models.Principal, id string) error {
	if err := requireRole(principal, models.RoleAdmin); err != nil {
		return err
	}
	universityID, err := parseID(id, "university")
	if err != nil {
		return err
	}
	deleted, err := s.universities.Delete(ctx, universityID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: university %s", ErrNotFound, id)
	}
	return nil
}

func formationFromInput(input FormationInput) (*models.Formation, error) {
	f := &models.Formation{
		Name:        strings.TrimSpace(input.Name),
		Specialty:   strings.TrimSpace(input.Specialty),
		Specialties: cleanList(input.Specialties),
		MinLevel:    input.MinLevel,
	}
	if f.Name == "" || f.Specialty == "" {
		return nil, fmt.Errorf("%w: name and specialty are required", ErrInvalidInput)
	}
	if !f.MinLevel.Valid() {
		return nil, fmt.Errorf("%w: unknown level %q", ErrInvalidInput, f.MinLevel)
	}
	return f, nil
}

func universityFromInput(input UniversityInput) (*models.University, error) {
	u := &models.University{
		Name:        strings.TrimSpace(input.Name),
		Location:    strings.TrimSpace(input.Location),
		Specialties: cleanList(input.Specialties),
	}
	if u.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len(u.Specialties) == 0 {
		return nil, fmt.Errorf("%w: at least one specialty is required", ErrInvalidInput)
	}
	return u, nil
}

func cleanList(items []string) []string {
	out := []string{}
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
