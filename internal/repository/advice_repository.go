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

type AdviceRepository struct {
	collection *mongo.Collection
}

func NewAdviceRepository(db *mongo.Database) *AdviceRepository {
	return &AdviceRepository{collection: db.Collection("advice")}
}

func (r *AdviceRepository) Create(ctx context.Context, advice *models.Advice) error {
	now := time.Now()
	if advice.ID.IsZero() {
		advice.ID = primitive.NewObjectID()
	}
	if advice.Status == "" {
		advice.Status = models.AdviceUnread
	}
	advice.CreatedAt = now
	advice.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, advice); err != nil {
		return fmt.Errorf("failed to insert advice: %w", err)
	}
	return nil
}

func (r *AdviceRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Advice, error) {
	var advice models.Advice
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&advice)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get advice: %w", err)
	}
	return &advice, nil
}

func (r *AdviceRepository) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Advice, error) {
	return r.list(ctx, bson.M{"student_id": studentID})
}

func (r *AdviceRepository) ListByCounselor(ctx context.Context, counselorID primitive.ObjectID) ([]models.Advice, error) {
	return r.list(ctx, bson.M{"counselor_id": counselorID})
}

func (r *AdviceRepository) list(ctx context.Context, filter bson.M) ([]models.Advice, error) {
	cur, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list advice: %w", err)
	}
	items := []models.Advice{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode advice: %w", err)
	}
	return items, nil
}

func (r *AdviceRepository) MarkRead(ctx context.Context, id primitive.ObjectID) (bool, error) {
	update := bson.M{"$set": bson.M{"status": models.AdviceRead, "updated_at": time.Now()}}
	res, err := r.collection.UpdateByID(ctx, id, update)
	if err != nil {
		return false, fmt.Errorf("failed to update advice: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (r *AdviceRepository) InitializeIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "counselor_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create advice indexes: %w", err)
	}
	return nil
}
