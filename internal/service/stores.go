package service

import (
	"context"
	"time"

	"orientation-service/internal/models"
	"orientation-service/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type QuizStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Quiz, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Quiz, error)
	List(ctx context.Context, filter repository.QuizFilter) ([]models.Quiz, error)
	Create(ctx context.Context, quiz *models.Quiz) error
	Update(ctx context.Context, quiz *models.Quiz) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type CompletionStore interface {
	Upsert(ctx context.Context, record *models.CompletionRecord) (*models.CompletionRecord, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.CompletionRecord, error)
	List(ctx context.Context, filter models.CompletionFilter, page models.CompletionPage) ([]models.CompletionRecord, int64, error)
	Stats(ctx context.Context, filter models.CompletionFilter) (*models.CompletionStats, error)
	DeleteByQuiz(ctx context.Context, quizID primitive.ObjectID) (int64, error)
}

type CompletionAnalytics interface {
	Overview(ctx context.Context, since time.Time) (*models.CompletionOverview, error)
	Distribution(ctx context.Context, since time.Time) (*models.ScoreDistribution, error)
	DailyCounts(ctx context.Context, since time.Time) ([]models.DailyCount, error)
	AverageByLevel(ctx context.Context, since time.Time) ([]models.LevelAverage, error)
}

type FormationStore interface {
	List(ctx context.Context, category string) ([]models.Formation, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Formation, error)
	Create(ctx context.Context, formation *models.Formation) error
	Update(ctx context.Context, formation *models.Formation) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type UniversityStore interface {
	List(ctx context.Context, category string) ([]models.University, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.University, error)
	Create(ctx context.Context, university *models.University) error
	Update(ctx context.Context, university *models.University) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type UserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	List(ctx context.Context, role models.Role) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	CountByRole(ctx context.Context, role models.Role) (int64, error)
}

type UserAnalytics interface {
	CountByRole(ctx context.Context, role models.Role) (int64, error)
	CountCreated(ctx context.Context, role models.Role, from, to time.Time) (int64, error)
	Recent(ctx context.Context, role models.Role, since time.Time, limit int64) ([]models.User, error)
}

type FormationAnalytics interface {
	Count(ctx context.Context) (int64, error)
	Recent(ctx context.Context, since time.Time, limit int64) ([]models.Formation, error)
}

type UniversityCounter interface {
	Count(ctx context.Context) (int64, error)
}

type AdviceStore interface {
	Create(ctx context.Context, advice *models.Advice) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Advice, error)
	ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Advice, error)
	ListByCounselor(ctx context.Context, counselorID primitive.ObjectID) ([]models.Advice, error)
	MarkRead(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type SessionStore interface {
	Save(ctx context.Context, session *models.Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	RecordFailedLogin(ctx context.Context, email string, window time.Duration) (int64, error)
	FailedLogins(ctx context.Context, email string) (int64, error)
	ResetFailedLogins(ctx context.Context, email string) error
}
