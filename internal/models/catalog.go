package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Formation struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Specialty   string             `bson:"specialty" json:"specialty"`
	Specialties []string           `bson:"specialties,omitempty" json:"specialties,omitempty"`
	MinLevel    Level              `bson:"min_level" json:"minLevel"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

type University struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	Specialties []string           `bson:"specialties" json:"specialties"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// CategoryFit describes how a candidate's categories relate to a target category.
type CategoryFit int

const (
	NoFit CategoryFit = iota
	ListFit
	ExactFit
)

// FitCategory compares case-insensitively. An exact single-category match
// wins over membership in the list.
func FitCategory(single string, list []string, category string) CategoryFit {
	if category == "" {
		return NoFit
	}
	if single != "" && strings.EqualFold(single, category) {
		return ExactFit
	}
	for _, s := range list {
		if strings.EqualFold(s, category) {
			return ListFit
		}
	}
	return NoFit
}
