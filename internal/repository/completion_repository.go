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

var completionSortFields = map[string]string{
	"completedAt": "completed_at",
	"score":       "score",
	"timeSpent":   "time_spent",
}

type CompletionRepository struct {
	collection *mongo.Collection
}

func NewCompletionRepository(db *mongo.Database) *CompletionRepository {
	return &CompletionRepository{collection: db.Collection("completions")}
}

// Upsert writes the latest attempt of a user at a quiz. The (user_id, quiz_id)
// unique index makes concurrent first submissions race on insert; the loser
// retries once and lands on the update path.
func (r *CompletionRepository) Upsert(ctx context.Context, record *models.CompletionRecord) (*models.CompletionRecord, error) {
	now := time.Now()
	completedAt := record.CompletedAt
	if completedAt.IsZero() {
		completedAt = now
	}
	answers := record.Answers
	if answers == nil {
		answers = []models.GradedAnswer{}
	}

	filter := bson.M{"user_id": record.UserID, "quiz_id": record.QuizID}
	update := bson.M{
		"$set": bson.M{
			"score":        record.Score,
			"answers":      answers,
			"time_spent":   record.TimeSpent,
			"completed_at": completedAt,
			"updated_at":   now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved models.CompletionRecord
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved)
	if mongo.IsDuplicateKeyError(err) {
		err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to upsert completion: %w", err)
	}
	return &saved, nil
}

func (r *CompletionRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.CompletionRecord, error) {
	cur, err := r.collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to query completions: %w", err)
	}
	records := []models.CompletionRecord{}
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode completions: %w", err)
	}
	return records, nil
}

// List returns one page of matching records and the total match count.
func (r *CompletionRepository) List(ctx context.Context, filter models.CompletionFilter, page models.CompletionPage) ([]models.CompletionRecord, int64, error) {
	query := completionQuery(filter)

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count completions: %w", err)
	}

	sortField, ok := completionSortFields[page.SortBy]
	if !ok {
		sortField = "completed_at"
	}
	order := page.SortOrder
	if order != 1 {
		order = -1
	}
	findOpts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: order}, {Key: "_id", Value: order}}).
		SetSkip(int64((page.Page - 1) * page.Limit)).
		SetLimit(int64(page.Limit))

	cur, err := r.collection.Find(ctx, query, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list completions: %w", err)
	}
	records := []models.CompletionRecord{}
	if err := cur.All(ctx, &records); err != nil {
		return nil, 0, fmt.Errorf("failed to decode completions: %w", err)
	}
	return records, total, nil
}

func (r *CompletionRepository) Stats(ctx context.Context, filter models.CompletionFilter) (*models.CompletionStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: completionQuery(filter)}},
		{{Key: "$group", Value: bson.M{
			"_id":                nil,
			"average_score":      bson.M{"$avg": "$score"},
			"highest_score":      bson.M{"$max": "$score"},
			"lowest_score":       bson.M{"$min": "$score"},
			"total_attempts":     bson.M{"$sum": 1},
			"average_time_spent": bson.M{"$avg": "$time_spent"},
		}}},
	}

	var rows []models.CompletionStats
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("failed to aggregate completion stats: %w", err)
	}
	if len(rows) == 0 {
		return &models.CompletionStats{}, nil
	}
	return &rows[0], nil
}

func (r *CompletionRepository) DeleteByQuiz(ctx context.Context, quizID primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"quiz_id": quizID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete completions: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *CompletionRepository) Overview(ctx context.Context, since time.Time) (*models.CompletionOverview, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"completed_at": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id":                nil,
			"average_score":      bson.M{"$avg": "$score"},
			"total_quizzes":      bson.M{"$sum": 1},
			"average_time_spent": bson.M{"$avg": "$time_spent"},
			"success_count": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$gte": bson.A{"$score", 60}}, 1, 0},
			}},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":                0,
			"average_score":      1,
			"total_quizzes":      1,
			"average_time_spent": 1,
			"success_rate": bson.M{"$multiply": bson.A{
				bson.M{"$divide": bson.A{"$success_count", "$total_quizzes"}}, 100,
			}},
		}}},
	}

	var rows []models.CompletionOverview
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("failed to aggregate completion overview: %w", err)
	}
	if len(rows) == 0 {
		return &models.CompletionOverview{}, nil
	}
	return &rows[0], nil
}

func (r *CompletionRepository) Distribution(ctx context.Context, since time.Time) (*models.ScoreDistribution, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"completed_at": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$switch": bson.M{
				"branches": bson.A{
					bson.M{"case": bson.M{"$gte": bson.A{"$score", 80}}, "then": "excellent"},
					bson.M{"case": bson.M{"$gte": bson.A{"$score", 60}}, "then": "good"},
				},
				"default": "needsImprovement",
			}},
			"count": bson.M{"$sum": 1},
		}}},
	}

	var rows []struct {
		Bucket string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("failed to aggregate score distribution: %w", err)
	}

	dist := &models.ScoreDistribution{}
	for _, row := range rows {
		switch row.Bucket {
		case "excellent":
			dist.Excellent = row.Count
		case "good":
			dist.Good = row.Count
		default:
			dist.NeedsImprovement = row.Count
		}
	}
	return dist, nil
}

func (r *CompletionRepository) DailyCounts(ctx context.Context, since time.Time) ([]models.DailyCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"completed_at": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$completed_at"}},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
		{{Key: "$project", Value: bson.M{"_id": 0, "date": "$_id", "count": 1}}},
	}

	rows := []models.DailyCount{}
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("failed to aggregate daily completions: %w", err)
	}
	return rows, nil
}

// AverageByLevel joins completions with their students and groups by level.
func (r *CompletionRepository) AverageByLevel(ctx context.Context, since time.Time) ([]models.LevelAverage, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"completed_at": bson.M{"$gte": since}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "user_id",
			"foreignField": "_id",
			"as":           "user",
		}}},
		{{Key: "$unwind", Value: "$user"}},
		{{Key: "$group", Value: bson.M{
			"_id":           "$user.student.level",
			"average_score": bson.M{"$avg": "$score"},
			"count":         bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{"_id": 0, "level": "$_id", "average_score": 1, "count": 1}}},
		{{Key: "$sort", Value: bson.M{"level": 1}}},
	}

	rows := []models.LevelAverage{}
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("failed to aggregate scores by level: %w", err)
	}
	return rows, nil
}

func (r *CompletionRepository) InitializeIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "quiz_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "quiz_id", Value: 1}}},
		{Keys: bson.D{{Key: "completed_at", Value: -1}}},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create completion indexes: %w", err)
	}
	return nil
}

func (r *CompletionRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline, out interface{}) error {
	cur, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

func completionQuery(filter models.CompletionFilter) bson.M {
	query := bson.M{}
	if filter.UserID != nil {
		query["user_id"] = *filter.UserID
	}
	if filter.QuizID != nil {
		query["quiz_id"] = *filter.QuizID
	}
	score := bson.M{}
	if filter.MinScore != nil {
		score["$gte"] = *filter.MinScore
	}
	if filter.MaxScore != nil {
		score["$lte"] = *filter.MaxScore
	}
	if len(score) > 0 {
		query["score"] = score
	}
	completed := bson.M{}
	if filter.From != nil {
		completed["$gte"] = *filter.From
	}
	if filter.To != nil {
		completed["$lte"] = *filter.To
	}
	if len(completed) > 0 {
		query["completed_at"] = completed
	}
	return query
}
