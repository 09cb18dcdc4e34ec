package event

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	QuizCompleted  EventType = "quiz.completed"
	AdviceCreated  EventType = "advice.created"
	UserRegistered EventType = "user.registered"
)

type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp int64       `json:"timestamp"`
	Version   string      `json:"version"`
	Payload   interface{} `json:"payload"`
}

func NewEvent(eventType EventType, payload interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().Unix(),
		Version:   "1.0",
		Payload:   payload,
	}
}

func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

type QuizCompletedPayload struct {
	UserID         string  `json:"user_id"`
	QuizID         string  `json:"quiz_id"`
	Category       string  `json:"category"`
	Score          float64 `json:"score"`
	CorrectAnswers int     `json:"correct_answers"`
	TotalQuestions int     `json:"total_questions"`
	TimeSpent      int     `json:"time_spent"`
}

type AdviceCreatedPayload struct {
	AdviceID    string `json:"advice_id"`
	CounselorID string `json:"counselor_id"`
	StudentID   string `json:"student_id"`
}

type UserRegisteredPayload struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}
