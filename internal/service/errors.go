package service

import (
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrUnauthorized    = errors.New("not authorized")
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrConflict        = errors.New("conflict")
)

// parseID treats a malformed identifier like a missing document.
func parseID(raw, kind string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s %q", ErrNotFound, kind, raw)
	}
	return id, nil
}

func isClientError(err error) bool {
	for _, target := range []error{ErrUnauthenticated, ErrUnauthorized, ErrNotFound, ErrInvalidInput, ErrConflict} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
