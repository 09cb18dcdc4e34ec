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

type UniversityRepository struct {
	collection *mongo.Collection
}

func NewUniversityRepository(db *mongo.Database) *UniversityRepository {
	return &UniversityRepository{collection: db.Collection("universities")}
}

// List returns universities sorted by name, optionally restricted to those
// listing category among their specialties.
func (r *UniversityRepository) List(ctx context.Context, category string) ([]models.University, error) {
	query := categoryFilter(category, "specialties")
	cur, err := r.collection.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list universities: %w", err)
	}
	universities := []models.University{}
	if err := cur.All(ctx, &universities); err != nil {
		return nil, fmt.Errorf("failed to decode universities: %w", err)
	}
	return universities, nil
}

func (r *UniversityRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.University, error) {
	var university models.University
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&university)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get university: %w", err)
	}
	return &university, nil
}

func (r *UniversityRepository) Create(ctx context.Context, university *models.University) error {
	now := time.Now()
	if university.ID.IsZero() {
		university.ID = primitive.NewObjectID()
	}
	university.CreatedAt = now
	university.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, university); err != nil {
		return fmt.Errorf("failed to insert university: %w", err)
	}
	return nil
}

func (r *UniversityRepository) Update(ctx context.Context, university *models.University) (bool, error) {
	university.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"name":        university.Name,
		"location":    university.Location,
		"specialties": university.Specialties,
		"updated_at":  university.UpdatedAt,
	}}
	res, err := r.collection.UpdateByID(ctx, university.ID, update)
	if err != nil {
		return false, fmt.Errorf("failed to update university: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (r *UniversityRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("failed to delete university: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *UniversityRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count universities: %w", err)
	}
	return n, nil
}

func (r *UniversityRepository) InitializeIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "specialties", Value: 1}}},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create university indexes: %w", err)
	}
	return nil
}
