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

type FormationRepository struct {
	collection *mongo.Collection
}

func NewFormationRepository(db *mongo.Database) *FormationRepository {
	return &FormationRepository{collection: db.Collection("formations")}
}

// List returns formations sorted by name. A non-empty category keeps only
// formations whose specialty or specialties equal it, ignoring case.
func (r *FormationRepository) List(ctx context.Context, category string) ([]models.Formation, error) {
	query := categoryFilter(category, "specialty", "specialties")
	cur, err := r.collection.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list formations: %w", err)
	}
	formations := []models.Formation{}
	if err := cur.All(ctx, &formations); err != nil {
		return nil, fmt.Errorf("failed to decode formations: %w", err)
	}
	return formations, nil
}

func (r *FormationRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Formation, error) {
	var formation models.Formation
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&formation)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get formation: %w", err)
	}
	return &formation, nil
}

func (r *FormationRepository) Create(ctx context.Context, formation *models.Formation) error {
	now := time.Now()
	if formation.ID.IsZero() {
		formation.ID = primitive.NewObjectID()
	}
	formation.CreatedAt = now
	formation.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, formation); err != nil {
		return fmt.Errorf("failed to insert formation: %w", err)
	}
	return nil
}

func (r *FormationRepository) Update(ctx context.Context, formation *models.Formation) (bool, error) {
	formation.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"name":        formation.Name,
		"specialty":   formation.Specialty,
		"specialties": formation.Specialties,
		"min_level":   formation.MinLevel,
		"updated_at":  formation.UpdatedAt,
	}}
	res, err := r.collection.UpdateByID(ctx, formation.ID, update)
	if err != nil {
		return false, fmt.Errorf("failed to update formation: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (r *FormationRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("failed to delete formation: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *FormationRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count formations: %w", err)
	}
	return n, nil
}

// Recent returns formations created since the given time, newest first.
func (r *FormationRepository) Recent(ctx context.Context, since time.Time, limit int64) ([]models.Formation, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cur, err := r.collection.Find(ctx, bson.M{"created_at": bson.M{"$gte": since}}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent formations: %w", err)
	}
	formations := []models.Formation{}
	if err := cur.All(ctx, &formations); err != nil {
		return nil, fmt.Errorf("failed to decode formations: %w", err)
	}
	return formations, nil
}

func (r *FormationRepository) InitializeIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "specialty", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create formation indexes: %w", err)
	}
	return nil
}
