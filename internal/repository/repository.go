package repository

import (
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrDuplicateKey is returned when a write violates a unique index.
var ErrDuplicateKey = errors.New("duplicate key")

func wrapWriteError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateKey
	}
	return err
}

// categoryFilter matches documents where any of fields equals category,
// ignoring case. A string field and an array field are matched the same way.
func categoryFilter(category string, fields ...string) bson.M {
	if category == "" {
		return bson.M{}
	}
	pattern := primitive.Regex{Pattern: "^" + regexp.QuoteMeta(category) + "$", Options: "i"}
	or := bson.A{}
	for _, field := range fields {
		or = append(or, bson.M{field: pattern})
	}
	return bson.M{"$or": or}
}
