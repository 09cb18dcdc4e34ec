package repository

import (
	"context"
	"fmt"
	"time"

	"orientation-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type QuizFilter struct {
	ActiveOnly bool
	Level      models.Level
}

type QuizRepository struct {
	collection *mongo.Collection
}

func NewQuizRepository(db *mongo.Database) *QuizRepository {
	return &QuizRepository{collection: db.Collection("quizzes")}
}

func (r *QuizRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Quiz, error) {
	var quiz models.Quiz
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&quiz)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return &quiz, nil
}

func (r *QuizRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Quiz, error) {
	quizzes := []models.Quiz{}
	if len(ids) == 0 {
		return quizzes, nil
	}
	cur, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to query quizzes: %w", err)
	}
	if err := cur.All(ctx, &quizzes); err != nil {
		return nil, fmt.Errorf("failed to decode quizzes: %w", err)
	}
	return quizzes, nil
}

// List returns quizzes newest first.
func (r *QuizRepository) List(ctx context.Context, filter QuizFilter) ([]models.Quiz, error) {
	query := bson.M{}
	if filter.ActiveOnly {
		query["active"] = true
	}
	if filter.Level != "" {
		query["level"] = filter.Level
	}

	cur, err := r.collection.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	defer cur.Close(ctx)

	quizzes := []models.Quiz{}
	for cur.Next(ctx) {
		var quiz models.Quiz
		if err := cur.Decode(&quiz); err != nil {
			return nil, fmt.Errorf("failed to decode quiz: %w", err)
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, cur.Err()
}

func (r *QuizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	now := time.Now()
	if quiz.ID.IsZero() {
		quiz.ID = primitive.NewObjectID()
	}
	quiz.CreatedAt = now
	quiz.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, quiz); err != nil {
		return fmt.Errorf("failed to insert quiz: %w", err)
	}
	return nil
}

// Update replaces the editable fields and reports whether the quiz existed.
func (r *QuizRepository) Update(ctx context.Context, quiz *models.Quiz) (bool, error) {
	quiz.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"title":       quiz.Title,
		"description": quiz.Description,
		"category":    quiz.Category,
		"level":       quiz.Level,
		"duration":    quiz.Duration,
		"questions":   quiz.Questions,
		"active":      quiz.Active,
		"updated_at":  quiz.UpdatedAt,
	}}
	res, err := r.collection.UpdateByID(ctx, quiz.ID, update)
	if err != nil {
		return false, fmt.Errorf("failed to update quiz: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (r *QuizRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("failed to delete quiz: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *QuizRepository) InitializeIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "active", Value: 1}, {Key: "level", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create quiz indexes: %w", err)
	}
	return nil
}
