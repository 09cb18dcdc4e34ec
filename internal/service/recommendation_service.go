package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"orientation-service/internal/metrics"
	"orientation-service/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	SpecializationThreshold = 50.0
	ExactFitBonus           = 20.0
	ListFitBonus            = 15.0
	MaxFormations           = 6
	MaxUniversities         = 5
)

// RecommendationRequest carries the raw query parameters; Score is parsed here
// so that malformed values are reported as invalid input.
type RecommendationRequest struct {
	QuizID   string
	Score    string
	Category string
}

type FormationMatch struct {
	models.Formation
	MatchScore int `json:"matchScore"`
}

type UniversityMatch struct {
	ID          primitive.ObjectID `json:"id"`
	Name        string             `json:"name"`
	Location    string             `json:"location,omitempty"`
	Specialties []string           `json:"specialties"`
	MatchScore  int                `json:"matchScore"`
}

type Recommendations struct {
	Formations    []FormationMatch  `json:"formations"`
	Universities  []UniversityMatch `json:"universities"`
	IsSpecialized bool              `json:"isSpecialized"`
	Message       string            `json:"message"`
}

type RecommendationService struct {
	quizzes      QuizStore
	formations   FormationStore
	universities UniversityStore
}

func NewRecommendationService(quizzes QuizStore, formations FormationStore, universities UniversityStore) *RecommendationService {
	return &RecommendationService{quizzes: quizzes, formations: formations, universities: universities}
}

// MatchScore blends the raw quiz score with the category-fit bonus, rounds it
// and clamps it to [0, 100].
func MatchScore(raw float64, fit models.CategoryFit) int {
	bonus := 0.0
	switch fit {
	case models.ExactFit:
		bonus = ExactFitBonus
	case models.ListFit:
		bonus = ListFitBonus
	}
	score := math.Round(raw + bonus)
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return int(score)
}

func parseScore(raw string) (float64, error) {
	score, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(score) {
		return 0, fmt.Errorf("%w: score %q is not a number", ErrInvalidInput, raw)
	}
	if score < 0 || score > 100 {
		return 0, fmt.Errorf("%w: score %v outside [0, 100]", ErrInvalidInput, score)
	}
	return score, nil
}

func (s *RecommendationService) Recommend(ctx context.Context, req RecommendationRequest) (*Recommendations, error) {
	category := strings.TrimSpace(req.Category)
	if strings.TrimSpace(req.QuizID) == "" || strings.TrimSpace(req.Score) == "" || category == "" {
		return nil, fmt.Errorf("%w: quizId, score and category are required", ErrInvalidInput)
	}
	score, err := parseScore(req.Score)
	if err != nil {
		return nil, err
	}

	quizID, err := parseID(req.QuizID, "quiz")
	if err != nil {
		return nil, err
	}
	quiz, err := s.quizzes.FindByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, fmt.Errorf("%w: quiz %s", ErrNotFound, req.QuizID)
	}

	specialized := score >= SpecializationThreshold
	filter := ""
	if specialized {
		filter = category
	}

	formations, err := s.formations.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	universities, err := s.universities.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := &Recommendations{
		Formations:    rankFormations(formations, score, category, specialized),
		Universities:  rankUniversities(universities, score, category, specialized),
		IsSpecialized: specialized,
		Message:       "General recommendations",
	}
	if specialized {
		result.Message = "Recommendations for " + category
		metrics.Recommendations.WithLabelValues("specialized").Inc()
	} else {
		metrics.Recommendations.WithLabelValues("general").Inc()
	}
	return result, nil
}

func rankFormations(candidates []models.Formation, score float64, category string, specialized bool) []FormationMatch {
	ranked := make([]FormationMatch, 0, len(candidates))
	for _, f := range candidates {
		fit := models.FitCategory(f.Specialty, f.Specialties, category)
		if specialized && fit == models.NoFit {
			continue
		}
		ranked = append(ranked, FormationMatch{Formation: f, MatchScore: MatchScore(score, fit)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MatchScore > ranked[j].MatchScore
	})
	if len(ranked) > MaxFormations {
		ranked = ranked[:MaxFormations]
	}
	return ranked
}

func rankUniversities(candidates []models.University, score float64, category string, specialized bool) []UniversityMatch {
	ranked := make([]UniversityMatch, 0, len(candidates))
	for _, u := range candidates {
		fit := models.FitCategory("", u.Specialties, category)
		if specialized && fit == models.NoFit {
			continue
		}
		specialties := u.Specialties
		if specialties == nil {
			specialties = []string{}
		}
		ranked = append(ranked, UniversityMatch{
			ID:          u.ID,
			Name:        u.Name,
			Location:    u.Location,
			Specialties: specialties,
			MatchScore:  MatchScore(score, fit),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MatchScore > ranked[j].MatchScore
	})
	if len(ranked) > MaxUniversities {
		ranked = ranked[:MaxUniversities]
	}
	return ranked
}
