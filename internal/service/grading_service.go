package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"orientation-service/internal/event"
	"orientation-service/internal/metrics"
	"orientation-service/internal/models"
)

// AnswerInput fields are pointers so that an omitted or null value is
// rejected instead of reading as option 0.
type AnswerInput struct {
	QuestionIndex  *int `json:"questionIndex"`
	SelectedOption *int `json:"selectedOption"`
}

type SubmitRequest struct {
	QuizID    string        `json:"quizId"`
	Answers   []AnswerInput `json:"answers"`
	TimeSpent int           `json:"timeSpent"`
}

type SubmitResult struct {
	Score          float64               `json:"score"`
	CorrectAnswers int                   `json:"correctAnswers"`
	TotalQuestions int                   `json:"totalQuestions"`
	TimeSpent      int                   `json:"timeSpent"`
	Completion     models.CompletionView `json:"completion"`
}

type GradingService struct {
	quizzes     QuizStore
	completions CompletionStore
	users       UserStore
	publisher   event.Publisher
	now         func() time.Time
}

func NewGradingService(quizzes QuizStore, completions CompletionStore, users UserStore, publisher event.Publisher) *GradingService {
	if publisher == nil {
		publisher = event.NoopPublisher{}
	}
	return &GradingService{
		quizzes:     quizzes,
		completions: completions,
		users:       users,
		publisher:   publisher,
		now:         time.Now,
	}
}

// Grade checks answers against the quiz's answer key. Answers must cover
// every question exactly once; they may arrive in any order and come back
// sorted by question index.
func Grade(quiz *models.Quiz, answers []AnswerInput) ([]models.GradedAnswer, int, error) {
	total := len(quiz.Questions)
	if len(answers) != total {
		return nil, 0, fmt.Errorf("%w: expected %d answers, got %d", ErrInvalidInput, total, len(answers))
	}

	byIndex := make([]*AnswerInput, total)
	for i := range answers {
		if answers[i].QuestionIndex == nil || answers[i].SelectedOption == nil {
			return nil, 0, fmt.Errorf("%w: answer %d must name questionIndex and selectedOption", ErrInvalidInput, i)
		}
		idx := *answers[i].QuestionIndex
		if idx < 0 || idx >= total {
			return nil, 0, fmt.Errorf("%w: question index %d out of range", ErrInvalidInput, idx)
		}
		if byIndex[idx] != nil {
			return nil, 0, fmt.Errorf("%w: question %d answered twice", ErrInvalidInput, idx)
		}
		if selected := *answers[i].SelectedOption; selected < 0 || selected >= len(quiz.Questions[idx].Options) {
			return nil, 0, fmt.Errorf("%w: option %d out of range for question %d", ErrInvalidInput, selected, idx)
		}
		byIndex[idx] = &answers[i]
	}

	graded := make([]models.GradedAnswer, total)
	correct := 0
	for i, answer := range byIndex {
		selected := *answer.SelectedOption
		ok := selected == quiz.Questions[i].CorrectOption
		if ok {
			correct++
		}
		graded[i] = models.GradedAnswer{
			QuestionIndex:  i,
			SelectedOption: selected,
			Correct:        ok,
		}
	}
	return graded, correct, nil
}

// Score is the unrounded percentage of correct answers.
func Score(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// Submit grades a student's answers and stores them as the student's latest
// attempt at the quiz.
func (s *GradingService) Submit(ctx context.Context, principal *models.Principal, req SubmitRequest) (*SubmitResult, error) {
	result, err := s.submit(ctx, principal, req)
	switch {
	case err == nil:
		metrics.QuizSubmissions.WithLabelValues("graded").Inc()
		metrics.QuizScores.Observe(result.Score)
	case isClientError(err):
		metrics.QuizSubmissions.WithLabelValues("rejected").Inc()
	default:
		metrics.QuizSubmissions.WithLabelValues("failed").Inc()
	}
	return result, err
}

func (s *GradingService) submit(ctx context.Context, principal *models.Principal, req SubmitRequest) (*SubmitResult, error) {
	if principal == nil {
		return nil, ErrUnauthenticated
	}
	if principal.Role != models.RoleStudent {
		return nil, fmt.Errorf("%w: only students can submit quizzes", ErrUnauthorized)
	}

	user, err := s.users.FindByID(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user no longer exists", ErrUnauthenticated)
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

	if req.TimeSpent < 0 {
		return nil, fmt.Errorf("%w: timeSpent must not be negative", ErrInvalidInput)
	}
	graded, correct, err := Grade(quiz, req.Answers)
	if err != nil {
		return nil, err
	}
	score := Score(correct, len(quiz.Questions))

	saved, err := s.completions.Upsert(ctx, &models.CompletionRecord{
		UserID:      user.ID,
		QuizID:      quiz.ID,
		Score:       score,
		Answers:     graded,
		TimeSpent:   req.TimeSpent,
		CompletedAt: s.now(),
	})
	if err != nil {
		return nil, err
	}

	payload := event.QuizCompletedPayload{
		UserID:         user.ID.Hex(),
		QuizID:         quiz.ID.Hex(),
		Category:       quiz.Category,
		Score:          score,
		CorrectAnswers: correct,
		TotalQuestions: len(quiz.Questions),
		TimeSpent:      req.TimeSpent,
	}
	if err := s.publisher.Publish(ctx, event.QuizCompleted, payload); err != nil {
		log.Printf("Failed to publish %s event: %v", event.QuizCompleted, err)
	}

	return &SubmitResult{
		Score:          score,
		CorrectAnswers: correct,
		TotalQuestions: len(quiz.Questions),
		TimeSpent:      req.TimeSpent,
		Completion: models.CompletionView{
			ID:          saved.ID,
			User:        models.SummarizeUser(user),
			Quiz:        models.SummarizeQuiz(quiz),
			Score:       saved.Score,
			TimeSpent:   saved.TimeSpent,
			CompletedAt: saved.CompletedAt,
		},
	}, nil
}
