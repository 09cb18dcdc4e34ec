package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"orientation-service/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultResultLimit = 10
	maxResultLimit     = 100

	// Keeps the skip offset far from overflow.
	maxResultPage = 100000
)

type ResultQuery struct {
	Page      int
	Limit     int
	QuizID    string
	UserID    string
	SortBy    string
	SortOrder string
	MinScore  *float64
	MaxScore  *float64
	From      *time.Time
	To        *time.Time
}

type Pagination struct {
	Total       int64 `json:"total"`
	Pages       int64 `json:"pages"`
	CurrentPage int   `json:"currentPage"`
	PerPage     int   `json:"perPage"`
}

type ResultPage struct {
	Results    []models.CompletionView `json:"results"`
	Pagination Pagination              `json:"pagination"`
	Stats      *models.CompletionStats `json:"stats"`
}

type ResultService struct {
	completions CompletionStore
	users       UserStore
	quizzes     QuizStore
}

func NewResultService(completions CompletionStore, users UserStore, quizzes QuizStore) *ResultService {
	return &ResultService{completions: completions, users: users, quizzes: quizzes}
}

// List pages through completion records. Students only ever see their own;
// staff see everyone's and also get aggregate stats for the filter.
func (s *ResultService) List(ctx context.Context, principal *models.Principal, q ResultQuery) (*ResultPage, error) {
	if principal == nil {
		return nil, ErrUnauthenticated
	}

	filter, page, err := buildResultFilter(principal, q)
	if err != nil {
		return nil, err
	}

	records, total, err := s.completions.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	views, err := s.resolve(ctx, records)
	if err != nil {
		return nil, err
	}

	result := &ResultPage{
		Results: views,
		Pagination: Pagination{
			Total:       total,
			Pages:       int64(math.Ceil(float64(total) / float64(page.Limit))),
			CurrentPage: page.Page,
			PerPage:     page.Limit,
		},
	}
	if principal.Is(models.RoleAdmin, models.RoleCounselor) {
		stats, err := s.completions.Stats(ctx, filter)
		if err != nil {
			return nil, err
		}
		result.Stats = stats
	}
	return result, nil
}

func buildResultFilter(principal *models.Principal, q ResultQuery) (models.CompletionFilter, models.CompletionPage, error) {
	var filter models.CompletionFilter
	page := models.CompletionPage{Page: q.Page, Limit: q.Limit, SortBy: q.SortBy, SortOrder: -1}

	if page.Page < 1 {
		page.Page = 1
	}
	if page.Page > maxResultPage {
		page.Page = maxResultPage
	}
	if page.Limit < 1 {
		page.Limit = defaultResultLimit
	}
	if page.Limit > maxResultLimit {
		page.Limit = maxResultLimit
	}
	switch q.SortBy {
	case "":
		page.SortBy = "completedAt"
	case "completedAt", "score", "timeSpent":
	default:
		return filter, page, fmt.Errorf("%w: cannot sort by %q", ErrInvalidInput, q.SortBy)
	}
	switch q.SortOrder {
	case "", "desc":
	case "asc":
		page.SortOrder = 1
	default:
		return filter, page, fmt.Errorf("%w: sort order must be asc or desc", ErrInvalidInput)
	}

	if principal.Role == models.RoleStudent {
		id := principal.UserID
		filter.UserID = &id
	} else if q.UserID != "" {
		id, err := primitive.ObjectIDFromHex(q.UserID)
		if err != nil {
			return filter, page, fmt.Errorf("%w: userId %q", ErrInvalidInput, q.UserID)
		}
		filter.UserID = &id
	}
	if q.QuizID != "" {
		id, err := primitive.ObjectIDFromHex(q.QuizID)
		if err != nil {
			return filter, page, fmt.Errorf("%w: quizId %q", ErrInvalidInput, q.QuizID)
		}
		filter.QuizID = &id
	}
	if q.MinScore != nil && q.MaxScore != nil && *q.MinScore > *q.MaxScore {
		return filter, page, fmt.Errorf("%w: minScore above maxScore", ErrInvalidInput)
	}
	filter.MinScore, filter.MaxScore = q.MinScore, q.MaxScore
	filter.From, filter.To = q.From, q.To
	return filter, page, nil
}

// resolve attaches user and quiz summaries to each record.
func (s *ResultService) resolve(ctx context.Context, records []models.CompletionRecord) ([]models.CompletionView, error) {
	userIDs := make([]primitive.ObjectID, 0, len(records))
	quizIDs := make([]primitive.ObjectID, 0, len(records))
	for _, r := range records {
		userIDs = append(userIDs, r.UserID)
		quizIDs = append(quizIDs, r.QuizID)
	}

	users, err := s.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	quizzes, err := s.quizzes.FindByIDs(ctx, quizIDs)
	if err != nil {
		return nil, err
	}
	userByID := make(map[primitive.ObjectID]*models.User, len(users))
	for i := range users {
		userByID[users[i].ID] = &users[i]
	}
	quizByID := make(map[primitive.ObjectID]*models.Quiz, len(quizzes))
	for i := range quizzes {
		quizByID[quizzes[i].ID] = &quizzes[i]
	}

	views := make([]models.CompletionView, 0, len(records))
	for _, r := range records {
		views = append(views, models.CompletionView{
			ID:          r.ID,
			User:        models.SummarizeUser(userByID[r.UserID]),
			Quiz:        models.SummarizeQuiz(quizByID[r.QuizID]),
			Score:       r.Score,
			Answers:     r.Answers,
			TimeSpent:   r.TimeSpent,
			CompletedAt: r.CompletedAt,
		})
	}
	return views, nil
}
