package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type GradedAnswer struct {
	QuestionIndex  int  `bson:"question_index" json:"questionIndex"`
	SelectedOption int  `bson:"selected_option" json:"selectedOption"`
	Correct        bool `bson:"correct" json:"correct"`
}

// CompletionRecord is the latest attempt of one user at one quiz.
type CompletionRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"userId"`
	QuizID      primitive.ObjectID `bson:"quiz_id" json:"quizId"`
	Score       float64            `bson:"score" json:"score"`
	Answers     []GradedAnswer     `bson:"answers" json:"answers"`
	TimeSpent   int                `bson:"time_spent" json:"timeSpent"`
	CompletedAt time.Time          `bson:"completed_at" json:"completedAt"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// CompletionFilter narrows completion listings and aggregates.
type CompletionFilter struct {
	UserID   *primitive.ObjectID
	QuizID   *primitive.ObjectID
	MinScore *float64
	MaxScore *float64
	From     *time.Time
	To       *time.Time
}

type CompletionPage struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder int
}

type CompletionStats struct {
	AverageScore     float64 `bson:"average_score" json:"averageScore"`
	HighestScore     float64 `bson:"highest_score" json:"highestScore"`
	LowestScore      float64 `bson:"lowest_score" json:"lowestScore"`
	TotalAttempts    int64   `bson:"total_attempts" json:"totalAttempts"`
	AverageTimeSpent float64 `bson:"average_time_spent" json:"averageTimeSpent"`
}

type QuizSummary struct {
	ID       primitive.ObjectID `json:"id"`
	Title    string             `json:"title"`
	Level    Level              `json:"level"`
	Category string             `json:"category"`
}

func SummarizeQuiz(q *Quiz) *QuizSummary {
	if q == nil {
		return nil
	}
	return &QuizSummary{ID: q.ID, Title: q.Title, Level: q.Level, Category: q.Category}
}

// CompletionView is a completion record with its user and quiz resolved.
// User or Quiz is nil when the referenced document no longer exists.
type CompletionView struct {
	ID          primitive.ObjectID `json:"id"`
	User        *PersonSummary     `json:"user"`
	Quiz        *QuizSummary       `json:"quiz"`
	Score       float64            `json:"score"`
	Answers     []GradedAnswer     `json:"answers,omitempty"`
	TimeSpent   int                `json:"timeSpent"`
	CompletedAt time.Time          `json:"completedAt"`
}
