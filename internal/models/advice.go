package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AdviceStatus string

const (
	AdviceUnread AdviceStatus = "unread"
	AdviceRead   AdviceStatus = "read"
)

type Advice struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CounselorID primitive.ObjectID `bson:"counselor_id" json:"counselorId"`
	StudentID   primitive.ObjectID `bson:"student_id" json:"studentId"`
	Message     string             `bson:"message" json:"message"`
	Status      AdviceStatus       `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// PersonSummary is the public view of a user embedded in other payloads.
type PersonSummary struct {
	ID        primitive.ObjectID `json:"id"`
	FirstName string             `json:"firstName"`
	LastName  string             `json:"lastName"`
	Email     string             `json:"email"`
}

func SummarizeUser(u *User) *PersonSummary {
	if u == nil {
		return nil
	}
	return &PersonSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}

type AdviceView struct {
	ID        primitive.ObjectID `json:"id"`
	Counselor *PersonSummary     `json:"counselor"`
	Student   *PersonSummary     `json:"student"`
	Message   string             `json:"message"`
	Status    AdviceStatus       `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
}
