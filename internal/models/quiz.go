package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Level is the ordinal proficiency band a quiz or formation targets.
type Level string

const (
	LevelBac       Level = "bac"
	LevelBac1      Level = "bac+1"
	LevelBac2      Level = "bac+2"
	LevelBac3      Level = "bac+3"
	LevelBac4      Level = "bac+4"
	LevelBac5      Level = "bac+5"
	LevelBac6      Level = "bac+6"
	LevelBeyondBac Level = ">bac+6"
)

var levelOrder = map[Level]int{
	LevelBac:       0,
	LevelBac1:      1,
	LevelBac2:      2,
	LevelBac3:      3,
	LevelBac4:      4,
	LevelBac5:      5,
	LevelBac6:      6,
	LevelBeyondBac: 7,
}

func (l Level) Valid() bool {
	_, ok := levelOrder[l]
	return ok
}

// Rank returns the ordinal position of the level, or -1 when unknown.
func (l Level) Rank() int {
	if r, ok := levelOrder[l]; ok {
		return r
	}
	return -1
}

type Question struct {
	Prompt        string   `bson:"question" json:"question"`
	Options       []string `bson:"options" json:"options"`
	CorrectOption int      `bson:"correct_option" json:"correctOption"`
}

type Quiz struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category" json:"category"`
	Level       Level              `bson:"level" json:"level"`
	Duration    int                `bson:"duration" json:"duration"`
	Questions   []Question         `bson:"questions" json:"questions"`
	Active      bool               `bson:"active" json:"active"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

var ErrInvalidQuiz = errors.New("invalid quiz")

// Validate checks the authoring invariants of a quiz.
func (q *Quiz) Validate() error {
	if strings.TrimSpace(q.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidQuiz)
	}
	if strings.TrimSpace(q.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidQuiz)
	}
	if strings.TrimSpace(q.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidQuiz)
	}
	if !q.Level.Valid() {
		return fmt.Errorf("%w: unknown level %q", ErrInvalidQuiz, q.Level)
	}
	if q.Duration < 1 {
		return fmt.Errorf("%w: duration must be at least 1 minute", ErrInvalidQuiz)
	}
	if len(q.Questions) == 0 {
		return fmt.Errorf("%w: a quiz needs at least one question", ErrInvalidQuiz)
	}
	for i, question := range q.Questions {
		if strings.TrimSpace(question.Prompt) == "" {
			return fmt.Errorf("%w: question %d has no text", ErrInvalidQuiz, i)
		}
		if len(question.Options) < 2 {
			return fmt.Errorf("%w: question %d needs at least two options", ErrInvalidQuiz, i)
		}
		if question.CorrectOption < 0 || question.CorrectOption >= len(question.Options) {
			return fmt.Errorf("%w: question %d correct option %d out of range", ErrInvalidQuiz, i, question.CorrectOption)
		}
	}
	return nil
}

// PublicQuestion is a question stripped of its answer key.
type PublicQuestion struct {
	Prompt  string   `json:"question"`
	Options []string `json:"options"`
}

// PublicQuiz is what a student is allowed to see of a quiz.
type PublicQuiz struct {
	ID          primitive.ObjectID `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Category    string             `json:"category"`
	Level       Level              `json:"level"`
	Duration    int                `json:"duration"`
	Questions   []PublicQuestion   `json:"questions"`
	Active      bool               `json:"active"`
	CreatedAt   time.Time          `json:"createdAt"`
}

func (q *Quiz) Public() PublicQuiz {
	questions := make([]PublicQuestion, len(q.Questions))
	for i, question := range q.Questions {
		questions[i] = PublicQuestion{Prompt: question.Prompt, Options: question.Options}
	}
	return PublicQuiz{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		Category:    q.Category,
		Level:       q.Level,
		Duration:    q.Duration,
		Questions:   questions,
		Active:      q.Active,
		CreatedAt:   q.CreatedAt,
	}
}
