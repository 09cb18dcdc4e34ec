package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"orientation-service/internal/event"
	"orientation-service/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AdviceInput struct {
	StudentID string `json:"studentId"`
	Message   string `json:"message"`
}

type AdviceService struct {
	advice    AdviceStore
	users     UserStore
	publisher event.Publisher
}

func NewAdviceService(advice AdviceStore, users UserStore, publisher event.Publisher) *AdviceService {
	if publisher == nil {
		publisher = event.NoopPublisher{}
	}
	return &AdviceService{advice: advice, users: users, publisher: publisher}
}

// List returns the advice a student received or a counselor sent, newest first.
func (s *AdviceService) List(ctx context.Context, principal *models.Principal) ([]models.AdviceView, error) {
	if err := requireRole(principal, models.RoleStudent, models.RoleCounselor); err != nil {
		return nil, err
	}
	var (
		items []models.Advice
		err   error
	)
	if principal.Role == models.RoleStudent {
		items, err = s.advice.ListByStudent(ctx, principal.UserID)
	} else {
		items, err = s.advice.ListByCounselor(ctx, principal.UserID)
	}
	if err != nil {
		return nil, err
	}
	return s.views(ctx, items)
}

func (s *AdviceService) Create(ctx context.Context, principal *models.Principal, input AdviceInput) (*models.AdviceView, error) {
	if err := requireRole(principal, models.RoleCounselor); err != nil {
		return nil, err
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	studentID, err := parseID(input.StudentID, "student")
	if err != nil {
		return nil, err
	}
	student, err := s.users.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil || student.Role != models.RoleStudent {
		return nil, fmt.Errorf("%w: student %s", ErrNotFound, input.StudentID)
	}

	advice := &models.Advice{
		CounselorID: principal.UserID,
		StudentID:   student.ID,
		Message:     message,
		Status:      models.AdviceUnread,
	}
	if err := s.advice.Create(ctx, advice); err != nil {
		return nil, err
	}

	payload := event.AdviceCreatedPayload{
		AdviceID:    advice.ID.Hex(),
		CounselorID: advice.CounselorID.Hex(),
		StudentID:   advice.StudentID.Hex(),
	}
	if err := s.publisher.Publish(ctx, event.AdviceCreated, payload); err != nil {
		log.Printf("Failed to publish %s event: %v", event.AdviceCreated, err)
	}

	views, err := s.views(ctx, []models.Advice{*advice})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// MarkRead lets a student mark advice addressed to them as read.
func (s *AdviceService) MarkRead(ctx context.Context, principal *models.Principal, id string) (*models.AdviceView, error) {
	if err := requireRole(principal, models.RoleStudent); err != nil {
		return nil, err
	}
	adviceID, err := parseID(id, "advice")
	if err != nil {
		return nil, err
	}
	advice, err := s.advice.FindByID(ctx, adviceID)
	if err != nil {
		return nil, err
	}
	if advice == nil || advice.StudentID != principal.UserID {
		return nil, fmt.Errorf("%w: advice %s", ErrNotFound, id)
	}
	if advice.Status != models.AdviceRead {
		found, err := s.advice.MarkRead(ctx, advice.ID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("%w: advice %s", ErrNotFound, id)
		}
		advice.Status = models.AdviceRead
	}
	views, err := s.views(ctx, []models.Advice{*advice})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *AdviceService) views(ctx context.Context, items []models.Advice) ([]models.AdviceView, error) {
	ids := make([]primitive.ObjectID, 0, 2*len(items))
	for _, a := range items {
		ids = append(ids, a.CounselorID, a.StudentID)
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	views := make([]models.AdviceView, 0, len(items))
	for _, a := range items {
		views = append(views, models.AdviceView{
			ID:        a.ID,
			Counselor: models.SummarizeUser(byID[a.CounselorID]),
			Student:   models.SummarizeUser(byID[a.StudentID]),
			Message:   a.Message,
			Status:    a.Status,
			CreatedAt: a.CreatedAt,
		})
	}
	return views, nil
}
