package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"orientation-service/internal/event"
	"orientation-service/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func fourQuestionQuiz(correct ...int) models.Quiz {
	questions := make([]models.Question, len(correct))
	for i, c := range correct {
		questions[i] = models.Question{
			Prompt:        "Question",
			Options:       []string{"a", "b", "c", "d"},
			CorrectOption: c,
		}
	}
	return models.Quiz{
		ID:          primitive.NewObjectID(),
		Title:       "Orientation",
		Description: "Find your path",
		Category:    "Informatique",
		Level:       models.LevelBac,
		Duration:    10,
		Questions:   questions,
		Active:      true,
	}
}

func answer(question, selected int) AnswerInput {
	return AnswerInput{QuestionIndex: &question, SelectedOption: &selected}
}

func answersInOrder(selected ...int) []AnswerInput {
	answers := make([]AnswerInput, len(selected))
	for i, s := range selected {
		answers[i] = answer(i, s)
	}
	return answers
}

type gradingFixture struct {
	service     *GradingService
	completions *fakeCompletionStore
	publisher   *recordingPublisher
	student     models.User
	quiz        models.Quiz
}

func newGradingFixture() *gradingFixture {
	student := newStudent(models.LevelBac)
	quiz := fourQuestionQuiz(1, 0, 2, 3)
	f := &gradingFixture{
		completions: newFakeCompletionStore(),
		publisher:   &recordingPublisher{},
		student:     student,
		quiz:        quiz,
	}
	f.service = NewGradingService(newFakeQuizStore(quiz), f.completions, newFakeUserStore(student), f.publisher)
	f.service.now = func() time.Time { return time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC) }
	return f
}

func TestScore(t *testing.T) {
	testCases := []struct {
		correct, total int
		expected       float64
	}{
		{3, 4, 75},
		{0, 4, 0},
		{4, 4, 100},
		{1, 3, 100.0 / 3},
		{0, 0, 0},
	}
	for _, tc := range testCases {
		got := Score(tc.correct, tc.total)
		if math.Abs(got-tc.expected) > 1e-9 {
			t.Errorf("Score(%d, %d): expected %v, got %v", tc.correct, tc.total, tc.expected, got)
		}
	}
}

func TestSubmitGradesAndStores(t *testing.T) {
	f := newGradingFixture()

	result, err := f.service.Submit(context.Background(), principalFor(f.student), SubmitRequest{
		QuizID:    f.quiz.ID.Hex(),
		Answers:   answersInOrder(1, 0, 1, 3),
		TimeSpent: 120,
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.Score != 75 {
		t.Errorf("Expected score 75, got %v", result.Score)
	}
	if result.CorrectAnswers != 3 || result.TotalQuestions != 4 {
		t.Errorf("Expected 3/4 correct, got %d/%d", result.CorrectAnswers, result.TotalQuestions)
	}
	if result.Completion.User == nil || result.Completion.User.ID != f.student.ID {
		t.Errorf("Expected completion to reference the student")
	}
	if result.Completion.Quiz == nil || result.Completion.Quiz.Title != f.quiz.Title {
		t.Errorf("Expected completion to reference the quiz")
	}

	records, _ := f.completions.FindByUser(context.Background(), f.student.ID)
	if len(records) != 1 {
		t.Fatalf("Expected 1 stored record, got %d", len(records))
	}
	stored := records[0]
	if stored.TimeSpent != 120 {
		t.Errorf("Expected timeSpent 120, got %d", stored.TimeSpent)
	}
	if len(stored.Answers) != 4 || stored.Answers[2].Correct {
		t.Errorf("Expected question 2 graded incorrect, got %+v", stored.Answers)
	}

	if len(f.publisher.events) != 1 || f.publisher.events[0].Type != event.QuizCompleted {
		t.Fatalf("Expected one quiz.completed event, got %+v", f.publisher.events)
	}
	payload := f.publisher.events[0].Payload.(event.QuizCompletedPayload)
	if payload.Category != "Informatique" || payload.Score != 75 {
		t.Errorf("Unexpected event payload %+v", payload)
	}
}

func TestSubmitTwiceKeepsLatestAttempt(t *testing.T) {
	f := newGradingFixture()
	ctx := context.Background()
	principal := principalFor(f.student)

	if _, err := f.service.Submit(ctx, principal, SubmitRequest{QuizID: f.quiz.ID.Hex(), Answers: answersInOrder(1, 0, 1, 3), TimeSpent: 120}); err != nil {
		t.Fatalf("First submit failed: %v", err)
	}
	second, err := f.service.Submit(ctx, principal, SubmitRequest{QuizID: f.quiz.ID.Hex(), Answers: answersInOrder(1, 0, 2, 3), TimeSpent: 90})
	if err != nil {
		t.Fatalf("Second submit failed: %v", err)
	}
	if second.Score != 100 {
		t.Errorf("Expected second score 100, got %v", second.Score)
	}

	records, _ := f.completions.FindByUser(ctx, f.student.ID)
	if len(records) != 1 {
		t.Fatalf("Expected a single record after resubmission, got %d", len(records))
	}
	if records[0].Score != 100 || records[0].TimeSpent != 90 {
		t.Errorf("Expected record to hold the second attempt, got score %v time %d", records[0].Score, records[0].TimeSpent)
	}
}

func TestSubmitAcceptsAnswersOutOfOrder(t *testing.T) {
	f := newGradingFixture()
	answers := []AnswerInput{
		answer(3, 3),
		answer(0, 1),
		answer(2, 2),
		answer(1, 0),
	}
	result, err := f.service.Submit(context.Background(), principalFor(f.student), SubmitRequest{QuizID: f.quiz.ID.Hex(), Answers: answers})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.Score != 100 {
		t.Errorf("Expected score 100, got %v", result.Score)
	}
}

func TestSubmitRejections(t *testing.T) {
	f := newGradingFixture()
	counselor := f.student
	counselor.Role = models.RoleCounselor

	testCases := []struct {
		name      string
		principal *models.Principal
		req       SubmitRequest
		expected  error
	}{
		{"no principal", nil, SubmitRequest{QuizID: f.quiz.ID.Hex(), Answers: answersInOrder(1, 0, 2, 3)}, ErrUnauthenticated},
		{"not a student", principalFor(counselor), SubmitRequest{QuizID: f.quiz.ID.Hex(), Answers: answersInOrder(1, 0, 2, 3)}, ErrUnauthorized},
		{"malformed quiz id", principalFor(f.student), SubmitRequest{QuizID: "nope", Answers: answersInOrder(1, 0, 2, 3)}, ErrNotFound},
		{"unknown quiz", principalFor(f.student), SubmitRequest{QuizID: primitive.NewObjectID().Hex(), Answers: answersInOrder(1, 0, 2, 3)}, ErrNotFound},
		{"too few answers", principalFor(f.student), SubmitRequest{QuizID: f.quiz.ID.Hex(), Answers: answersInOrder(1, 0, 2)}, ErrInvalidInput},
		{"too many answers", principalFor(f.student), SubmitRequest{QuizID: f.quiz.ID.Hex(), Answers: answersInOrder(1, 0, 2, 3, 0)}, ErrInvalidInput},
		{"negative time", principalFor(f.student), SubmitRequest{QuizID: f.quiz.ID.Hex(), Answers: answersInOrder(1, 0, 2, 3), TimeSpent: -1}, ErrInvalidInput},
		{"duplicate index", principalFor(f.student), SubmitRequest{QuizID: f.quiz.ID.Hex(), Answers: []AnswerInput{answer(0, 1), answer(0, 1), answer(2, 2), answer(3, 3)}}, ErrInvalidInput},
		{"index out of range", principalFor(f.student), SubmitRequest{QuizID: f.quiz.ID.Hex(), Answers: []AnswerInput{answer(0, 1), answer(1, 0), answer(2, 2), answer(4, 3)}}, ErrInvalidInput},
		{"option above range", principalFor(f.student), SubmitRequest{QuizID: f.quiz.ID.Hex(), Answers: answersInOrder(1, 0, 2, 99)}, ErrInvalidInput},
		{"negative option", principalFor(f.student), SubmitRequest{QuizID: f.quiz.ID.Hex(), Answers: answersInOrder(1, 0, -4, 3)}, ErrInvalidInput},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.Submit(context.Background(), tc.principal, tc.req)
			if !errors.Is(err, tc.expected) {
				t.Errorf("Expected %v, got %v", tc.expected, err)
			}
		})
	}

	if f.completions.upserts != 0 {
		t.Errorf("Expected no writes for rejected submissions, got %d", f.completions.upserts)
	}
}

func TestSubmitSurvivesPublishFailure(t *testing.T) {
	f := newGradingFixture()
	f.publisher.err = errors.New("broker down")

	if _, err := f.service.Submit(context.Background(), principalFor(f.student), SubmitRequest{QuizID: f.quiz.ID.Hex(), Answers: answersInOrder(1, 0, 2, 3)}); err != nil {
		t.Fatalf("Expected submit to succeed when publishing fails, got %v", err)
	}
}

func TestSubmitPropagatesStoreFailure(t *testing.T) {
	f := newGradingFixture()
	f.completions.err = errStoreDown

	_, err := f.service.Submit(context.Background(), principalFor(f.student), SubmitRequest{QuizID: f.quiz.ID.Hex(), Answers: answersInOrder(1, 0, 2, 3)})
	if !errors.Is(err, errStoreDown) {
		t.Errorf("Expected store error, got %v", err)
	}
	if isClientError(err) {
		t.Errorf("Store failure must not be reported as a client error")
	}
}

func TestSubmitRejectsIncompleteAnswers(t *testing.T) {
	f := newGradingFixture()
	zero, one, two, three := 0, 1, 2, 3

	testCases := []struct {
		name    string
		answers []AnswerInput
	}{
		{"no option selected", []AnswerInput{{QuestionIndex: &zero}, {QuestionIndex: &one}, {QuestionIndex: &two}, {QuestionIndex: &three}}},
		{"one option missing", []AnswerInput{answer(0, 1), answer(1, 0), {QuestionIndex: &two}, answer(3, 3)}},
		{"question index missing", []AnswerInput{answer(0, 1), {SelectedOption: &zero}, answer(2, 2), answer(3, 3)}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.Submit(context.Background(), principalFor(f.student), SubmitRequest{QuizID: f.quiz.ID.Hex(), Answers: tc.answers})
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput, got %v", err)
			}
		})
	}

	if f.completions.upserts != 0 {
		t.Errorf("Expected no writes for incomplete answers, got %d", f.completions.upserts)
	}
}
