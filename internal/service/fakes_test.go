package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"orientation-service/internal/event"
	"orientation-service/internal/models"
	"orientation-service/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errStoreDown = errors.New("store unavailable")

type fakeQuizStore struct {
	quizzes map[primitive.ObjectID]models.Quiz
	err     error
}

func newFakeQuizStore(quizzes ...models.Quiz) *fakeQuizStore {
	s := &fakeQuizStore{quizzes: map[primitive.ObjectID]models.Quiz{}}
	for _, q := range quizzes {
		s.quizzes[q.ID] = q
	}
	return s
}

func (s *fakeQuizStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Quiz, error) {
	if s.err != nil {
		return nil, s.err
	}
	q, ok := s.quizzes[id]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (s *fakeQuizStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Quiz, error) {
	out := []models.Quiz{}
	for _, id := range ids {
		if q, ok := s.quizzes[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *fakeQuizStore) List(ctx context.Context, filter repository.QuizFilter) ([]models.Quiz, error) {
	out := []models.Quiz{}
	for _, q := range s.quizzes {
		if filter.ActiveOnly && !q.Active {
			continue
		}
		if filter.Level != "" && q.Level != filter.Level {
			continue
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeQuizStore) Create(ctx context.Context, quiz *models.Quiz) error {
	quiz.ID = primitive.NewObjectID()
	quiz.CreatedAt = time.Now()
	quiz.UpdatedAt = quiz.CreatedAt
	s.quizzes[quiz.ID] = *quiz
	return nil
}

func (s *fakeQuizStore) Update(ctx context.Context, quiz *models.Quiz) (bool, error) {
	if _, ok := s.quizzes[quiz.ID]; !ok {
		return false, nil
	}
	s.quizzes[quiz.ID] = *quiz
	return true, nil
}

func (s *fakeQuizStore) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	if _, ok := s.quizzes[id]; !ok {
		return false, nil
	}
	delete(s.quizzes, id)
	return true, nil
}

type completionKey struct {
	user primitive.ObjectID
	quiz primitive.ObjectID
}

// fakeCompletionStore keeps one record per (user, quiz) like the unique index.
type fakeCompletionStore struct {
	mu      sync.Mutex
	records map[completionKey]models.CompletionRecord
	upserts int
	err     error
}

func newFakeCompletionStore() *fakeCompletionStore {
	return &fakeCompletionStore{records: map[completionKey]models.CompletionRecord{}}
}

func (s *fakeCompletionStore) Upsert(ctx context.Context, record *models.CompletionRecord) (*models.CompletionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.upserts++
	key := completionKey{record.UserID, record.QuizID}
	saved, ok := s.records[key]
	if !ok {
		saved = models.CompletionRecord{
			ID:        primitive.NewObjectID(),
			UserID:    record.UserID,
			QuizID:    record.QuizID,
			CreatedAt: time.Now(),
		}
	}
	saved.Score = record.Score
	saved.Answers = record.Answers
	saved.TimeSpent = record.TimeSpent
	saved.CompletedAt = record.CompletedAt
	saved.UpdatedAt = time.Now()
	s.records[key] = saved
	return &saved, nil
}

func (s *fakeCompletionStore) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.CompletionRecord, error) {
	out := []models.CompletionRecord{}
	for k, r := range s.records {
		if k.user == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeCompletionStore) matching(filter models.CompletionFilter) []models.CompletionRecord {
	out := []models.CompletionRecord{}
	for _, r := range s.records {
		if filter.UserID != nil && r.UserID != *filter.UserID {
			continue
		}
		if filter.QuizID != nil && r.QuizID != *filter.QuizID {
			continue
		}
		if filter.MinScore != nil && r.Score < *filter.MinScore {
			continue
		}
		if filter.MaxScore != nil && r.Score > *filter.MaxScore {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (s *fakeCompletionStore) List(ctx context.Context, filter models.CompletionFilter, page models.CompletionPage) ([]models.CompletionRecord, int64, error) {
	all := s.matching(filter)
	sort.Slice(all, func(i, j int) bool {
		if page.SortOrder == 1 {
			return all[i].Score < all[j].Score
		}
		return all[i].Score > all[j].Score
	})
	start := (page.Page - 1) * page.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + page.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (s *fakeCompletionStore) Stats(ctx context.Context, filter models.CompletionFilter) (*models.CompletionStats, error) {
	all := s.matching(filter)
	stats := &models.CompletionStats{}
	for i, r := range all {
		stats.AverageScore += r.Score / float64(len(all))
		if i == 0 || r.Score > stats.HighestScore {
			stats.HighestScore = r.Score
		}
		if i == 0 || r.Score < stats.LowestScore {
			stats.LowestScore = r.Score
		}
	}
	stats.TotalAttempts = int64(len(all))
	return stats, nil
}

func (s *fakeCompletionStore) DeleteByQuiz(ctx context.Context, quizID primitive.ObjectID) (int64, error) {
	var n int64
	for k := range s.records {
		if k.quiz == quizID {
			delete(s.records, k)
			n++
		}
	}
	return n, nil
}

type fakeFormationStore struct {
	formations []models.Formation
	lastFilter string
}

func (s *fakeFormationStore) List(ctx context.Context, category string) ([]models.Formation, error) {
	s.lastFilter = category
	out := []models.Formation{}
	for _, f := range s.formations {
		if category == "" || models.FitCategory(f.Specialty, f.Specialties, category) != models.NoFit {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *fakeFormationStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Formation, error) {
	for _, f := range s.formations {
		if f.ID == id {
			found := f
			return &found, nil
		}
	}
	return nil, nil
}

func (s *fakeFormationStore) Create(ctx context.Context, formation *models.Formation) error {
	formation.ID = primitive.NewObjectID()
	formation.CreatedAt = time.Now()
	s.formations = append(s.formations, *formation)
	return nil
}

func (s *fakeFormationStore) Update(ctx context.Context, formation *models.Formation) (bool, error) {
	for i, f := range s.formations {
		if f.ID == formation.ID {
			s.formations[i] = *formation
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeFormationStore) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	for i, f := range s.formations {
		if f.ID == id {
			s.formations = append(s.formations[:i], s.formations[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeFormationStore) Count(ctx context.Context) (int64, error) {
	return int64(len(s.formations)), nil
}

func (s *fakeFormationStore) Recent(ctx context.Context, since time.Time, limit int64) ([]models.Formation, error) {
	out := []models.Formation{}
	for _, f := range s.formations {
		if !f.CreatedAt.Before(since) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeUniversityStore struct {
	universities []models.University
	lastFilter   string
}

func (s *fakeUniversityStore) List(ctx context.Context, category string) ([]models.University, error) {
	s.lastFilter = category
	out := []models.University{}
	for _, u := range s.universities {
		if category == "" || models.FitCategory("", u.Specialties, category) != models.NoFit {
			out = append(out, u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *fakeUniversityStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.University, error) {
	for _, u := range s.universities {
		if u.ID == id {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (s *fakeUniversityStore) Create(ctx context.Context, university *models.University) error {
	university.ID = primitive.NewObjectID()
	s.universities = append(s.universities, *university)
	return nil
}

func (s *fakeUniversityStore) Update(ctx context.Context, university *models.University) (bool, error) {
	for i, u := range s.universities {
		if u.ID == university.ID {
			s.universities[i] = *university
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeUniversityStore) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	for i, u := range s.universities {
		if u.ID == id {
			s.universities = append(s.universities[:i], s.universities[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeUniversityStore) Count(ctx context.Context) (int64, error) {
	return int64(len(s.universities)), nil
}

type fakeUserStore struct {
	users map[primitive.ObjectID]models.User
}

func newFakeUserStore(users ...models.User) *fakeUserStore {
	s := &fakeUserStore{users: map[primitive.ObjectID]models.User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *fakeUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	out := []models.User{}
	seen := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *fakeUserStore) List(ctx context.Context, role models.Role) ([]models.User, error) {
	out := []models.User{}
	for _, u := range s.users {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *fakeUserStore) emailTaken(email string, except primitive.ObjectID) bool {
	for _, u := range s.users {
		if u.Email == email && u.ID != except {
			return true
		}
	}
	return false
}

func (s *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	if s.emailTaken(user.Email, primitive.NilObjectID) {
		return repository.ErrDuplicateKey
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	s.users[user.ID] = *user
	return nil
}

func (s *fakeUserStore) Update(ctx context.Context, user *models.User) (bool, error) {
	if _, ok := s.users[user.ID]; !ok {
		return false, nil
	}
	if s.emailTaken(user.Email, user.ID) {
		return false, repository.ErrDuplicateKey
	}
	s.users[user.ID] = *user
	return true, nil
}

func (s *fakeUserStore) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	if _, ok := s.users[id]; !ok {
		return false, nil
	}
	delete(s.users, id)
	return true, nil
}

func (s *fakeUserStore) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	var n int64
	for _, u := range s.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (s *fakeUserStore) CountCreated(ctx context.Context, role models.Role, from, to time.Time) (int64, error) {
	var n int64
	for _, u := range s.users {
		if u.Role == role && !u.CreatedAt.Before(from) && u.CreatedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

func (s *fakeUserStore) Recent(ctx context.Context, role models.Role, since time.Time, limit int64) ([]models.User, error) {
	out := []models.User{}
	for _, u := range s.users {
		if u.Role == role && !u.CreatedAt.Before(since) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeAdviceStore struct {
	items []models.Advice
}

func (s *fakeAdviceStore) Create(ctx context.Context, advice *models.Advice) error {
	advice.ID = primitive.NewObjectID()
	advice.CreatedAt = time.Now()
	s.items = append(s.items, *advice)
	return nil
}

func (s *fakeAdviceStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Advice, error) {
	for _, a := range s.items {
		if a.ID == id {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

func (s *fakeAdviceStore) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Advice, error) {
	out := []models.Advice{}
	for _, a := range s.items {
		if a.StudentID == studentID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeAdviceStore) ListByCounselor(ctx context.Context, counselorID primitive.ObjectID) ([]models.Advice, error) {
	out := []models.Advice{}
	for _, a := range s.items {
		if a.CounselorID == counselorID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeAdviceStore) MarkRead(ctx context.Context, id primitive.ObjectID) (bool, error) {
	for i, a := range s.items {
		if a.ID == id {
			s.items[i].Status = models.AdviceRead
			return true, nil
		}
	}
	return false, nil
}

type fakeSessionStore struct {
	sessions map[string]models.Session
	failures map[string]int64
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]models.Session{}, failures: map[string]int64{}}
}

func (s *fakeSessionStore) Save(ctx context.Context, session *models.Session, ttl time.Duration) error {
	s.sessions[session.ID] = *session
	return nil
}

func (s *fakeSessionStore) Get(ctx context.Context, id string) (*models.Session, error) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

func (s *fakeSessionStore) Delete(ctx context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func (s *fakeSessionStore) RecordFailedLogin(ctx context.Context, email string, window time.Duration) (int64, error) {
	s.failures[email]++
	return s.failures[email], nil
}

func (s *fakeSessionStore) FailedLogins(ctx context.Context, email string) (int64, error) {
	return s.failures[email], nil
}

func (s *fakeSessionStore) ResetFailedLogins(ctx context.Context, email string) error {
	delete(s.failures, email)
	return nil
}

type publishedEvent struct {
	Type    event.EventType
	Payload interface{}
}

type recordingPublisher struct {
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, eventType event.EventType, payload interface{}) error {
	p.events = append(p.events, publishedEvent{Type: eventType, Payload: payload})
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func newStudent(level models.Level) models.User {
	return models.User{
		ID:        primitive.NewObjectID(),
		Email:     "student@example.com",
		FirstName: "Sara",
		LastName:  "Benali",
		Phone:     "0600000000",
		Role:      models.RoleStudent,
		Profile:   &models.StudentProfile{Level: level},
		CreatedAt: time.Now(),
	}
}

func principalFor(u models.User) *models.Principal {
	return &models.Principal{
		UserID:    u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		SessionID: "session-" + u.ID.Hex(),
	}
}

func adminPrincipal() *models.Principal {
	return &models.Principal{UserID: primitive.NewObjectID(), Role: models.RoleAdmin}
}
