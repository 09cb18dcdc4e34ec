package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"orientation-service/internal/models"
	"orientation-service/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type QuizInput struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Level       models.Level      `json:"level"`
	Duration    int               `json:"duration"`
	Questions   []models.Question `json:"questions"`
	Active      *bool             `json:"active"`
}

// StudentQuiz is a quiz as a student sees it, with the student's latest attempt.
type StudentQuiz struct {
	models.PublicQuiz
	Completed   bool       `json:"completed"`
	Score       *float64   `json:"score"`
	TimeSpent   *int       `json:"timeSpent"`
	CompletedAt *time.Time `json:"completedAt"`
}

type StudentQuizStats struct {
	TotalCompleted int     `json:"totalCompleted"`
	TotalAvailable int     `json:"totalAvailable"`
	AverageScore   float64 `json:"averageScore"`
	CompletionRate int     `json:"completionRate"`
}

type StudentQuizList struct {
	Quizzes []StudentQuiz    `json:"quizzes"`
	Stats   StudentQuizStats `json:"stats"`
}

type QuizService struct {
	quizzes     QuizStore
	completions CompletionStore
	users       UserStore
}

func NewQuizService(quizzes QuizStore, completions CompletionStore, users UserStore) *QuizService {
	return &QuizService{quizzes: quizzes, completions: completions, users: users}
}

// ListAll returns every active quiz with its answer key, newest first.
func (s *QuizService) ListAll(ctx context.Context, principal *models.Principal) ([]models.Quiz, error) {
	if err := requireRole(principal, models.RoleAdmin, models.RoleCounselor); err != nil {
		return nil, err
	}
	return s.quizzes.List(ctx, repository.QuizFilter{ActiveOnly: true})
}

// ListForStudent returns the active quizzes at the student's level along with
// the student's completion status. A student without a level sees every quiz.
func (s *QuizService) ListForStudent(ctx context.Context, principal *models.Principal) (*StudentQuizList, error) {
	if err := requireRole(principal, models.RoleStudent); err != nil {
		return nil, err
	}
	student, err := s.currentUser(ctx, principal)
	if err != nil {
		return nil, err
	}

	quizzes, err := s.quizzes.List(ctx, repository.QuizFilter{ActiveOnly: true, Level: student.StudentLevel()})
	if err != nil {
		return nil, err
	}
	records, err := s.completions.FindByUser(ctx, student.ID)
	if err != nil {
		return nil, err
	}

	byQuiz := make(map[primitive.ObjectID]models.CompletionRecord, len(records))
	for _, r := range records {
		byQuiz[r.QuizID] = r
	}

	// Stats only count attempts on quizzes the student can still see.
	completed, total := 0, 0.0
	list := &StudentQuizList{Quizzes: make([]StudentQuiz, 0, len(quizzes))}
	for i := range quizzes {
		entry := StudentQuiz{PublicQuiz: quizzes[i].Public()}
		if r, ok := byQuiz[quizzes[i].ID]; ok {
			score, spent, at := r.Score, r.TimeSpent, r.CompletedAt
			entry.Completed = true
			entry.Score = &score
			entry.TimeSpent = &spent
			entry.CompletedAt = &at
			completed++
			total += r.Score
		}
		list.Quizzes = append(list.Quizzes, entry)
	}

	list.Stats.TotalCompleted = completed
	list.Stats.TotalAvailable = len(quizzes)
	if completed > 0 {
		list.Stats.AverageScore = math.Round(total/float64(completed)*10) / 10
	}
	if len(quizzes) > 0 {
		list.Stats.CompletionRate = int(math.Round(float64(completed) / float64(len(quizzes)) * 100))
	}
	return list, nil
}

// GetForStudent hides the answer key and refuses quizzes outside the
// student's level.
func (s *QuizService) GetForStudent(ctx context.Context, principal *models.Principal, id string) (*models.PublicQuiz, error) {
	if err := requireRole(principal, models.RoleStudent); err != nil {
		return nil, err
	}
	quiz, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !quiz.Active {
		return nil, fmt.Errorf("%w: quiz %s", ErrNotFound, id)
	}
	student, err := s.currentUser(ctx, principal)
	if err != nil {
		return nil, err
	}
	if level := student.StudentLevel(); level != "" && level != quiz.Level {
		return nil, fmt.Errorf("%w: quiz level %s does not match %s", ErrUnauthorized, quiz.Level, level)
	}
	public := quiz.Public()
	return &public, nil
}

func (s *QuizService) Get(ctx context.Context, principal *models.Principal, id string) (*models.Quiz, error) {
	if err := requireRole(principal, models.RoleAdmin, models.RoleCounselor); err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

func (s *QuizService) Create(ctx context.Context, principal *models.Principal, input QuizInput) (*models.Quiz, error) {
	if err := requireRole(principal, models.RoleAdmin); err != nil {
		return nil, err
	}
	quiz := &models.Quiz{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Level:       input.Level,
		Duration:    input.Duration,
		Questions:   input.Questions,
		Active:      true,
	}
	if err := validateQuiz(quiz); err != nil {
		return nil, err
	}
	if err := s.quizzes.Create(ctx, quiz); err != nil {
		return nil, err
	}
	log.Printf("Created quiz %s (%s)", quiz.ID.Hex(), quiz.Title)
	return quiz, nil
}

func (s *QuizService) Update(ctx context.Context, principal *models.Principal, id string, input QuizInput) (*models.Quiz, error) {
	if err := requireRole(principal, models.RoleAdmin); err != nil {
		return nil, err
	}
	quiz, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	quiz.Title = input.Title
	quiz.Description = input.Description
	quiz.Category = input.Category
	quiz.Level = input.Level
	quiz.Duration = input.Duration
	quiz.Questions = input.Questions
	if input.Active != nil {
		quiz.Active = *input.Active
	}
	if err := validateQuiz(quiz); err != nil {
		return nil, err
	}

	found, err := s.quizzes.Update(ctx, quiz)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: quiz %s", ErrNotFound, id)
	}
	return quiz, nil
}

// Delete removes the quiz and every completion recorded against it.
func (s *QuizService) Delete(ctx context.Context, principal *models.Principal, id string) error {
	if err := requireRole(principal, models.RoleAdmin); err != nil {
		return err
	}
	quizID, err := parseID(id, "quiz")
	if err != nil {
		return err
	}
	deleted, err := s.quizzes.Delete(ctx, quizID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: quiz %s", ErrNotFound, id)
	}
	removed, err := s.completions.DeleteByQuiz(ctx, quizID)
	if err != nil {
		return err
	}
	log.Printf("Deleted quiz %s and %d completions", id, removed)
	return nil
}

func (s *QuizService) find(ctx context.Context, id string) (*models.Quiz, error) {
	quizID, err := parseID(id, "quiz")
	if err != nil {
		return nil, err
	}
	quiz, err := s.quizzes.FindByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, fmt.Errorf("%w: quiz %s", ErrNotFound, id)
	}
	return quiz, nil
}

func (s *QuizService) currentUser(ctx context.Context, principal *models.Principal) (*models.User, error) {
	user, err := s.users.FindByID(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user no longer exists", ErrUnauthenticated)
	}
	return user, nil
}

func validateQuiz(quiz *models.Quiz) error {
	if err := quiz.Validate(); err != nil {
		if errors.Is(err, models.ErrInvalidQuiz) {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return err
	}
	return nil
}
