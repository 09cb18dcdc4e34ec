package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"orientation-service/internal/event"
	"orientation-service/internal/models"
	"orientation-service/internal/repository"
)

// UserInput is the writable shape of a user. Role-specific fields are ignored
// for roles they do not belong to.
type UserInput struct {
	Email     string       `json:"email"`
	Password  string       `json:"password"`
	FirstName string       `json:"firstName"`
	LastName  string       `json:"lastName"`
	Phone     string       `json:"phone"`
	Role      models.Role  `json:"role"`
	Average   *float64     `json:"average"`
	Score     *float64     `json:"score"`
	Level     models.Level `json:"level"`
	Interests []string     `json:"interests"`
	Specialty string       `json:"specialty"`
}

// ProfileUpdate holds the fields users may change on themselves. Nil fields
// are left untouched.
type ProfileUpdate struct {
	FirstName *string       `json:"firstName"`
	LastName  *string       `json:"lastName"`
	Phone     *string       `json:"phone"`
	Level     *models.Level `json:"level"`
	Interests *[]string     `json:"interests"`
	Specialty *string       `json:"specialty"`
}

type DefaultAccount struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Role      models.Role
}

type UserService struct {
	users     UserStore
	publisher event.Publisher
}

func NewUserService(users UserStore, publisher event.Publisher) *UserService {
	if publisher == nil {
		publisher = event.NoopPublisher{}
	}
	return &UserService{users: users, publisher: publisher}
}

func requireRole(principal *models.Principal, roles ...models.Role) error {
	if principal == nil {
		return ErrUnauthenticated
	}
	if !principal.Is(roles...) {
		return fmt.Errorf("%w: role %s", ErrUnauthorized, principal.Role)
	}
	return nil
}

func (s *UserService) List(ctx context.Context, principal *models.Principal, role models.Role) ([]models.User, error) {
	if err := requireRole(principal, models.RoleAdmin); err != nil {
		return nil, err
	}
	if role != "" && !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	return s.users.List(ctx, role)
}

func (s *UserService) Get(ctx context.Context, principal *models.Principal, id string) (*models.User, error) {
	if err := requireRole(principal, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

func (s *UserService) Create(ctx context.Context, principal *models.Principal, input UserInput) (*models.User, error) {
	if err := requireRole(principal, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.create(ctx, input)
}

// Register is the public sign-up path; it always creates a student.
func (s *UserService) Register(ctx context.Context, input UserInput) (*models.User, error) {
	input.Role = models.RoleStudent
	user, err := s.create(ctx, input)
	if err != nil {
		return nil, err
	}
	payload := event.UserRegisteredPayload{UserID: user.ID.Hex(), Email: user.Email, Role: string(user.Role)}
	if err := s.publisher.Publish(ctx, event.UserRegistered, payload); err != nil {
		log.Printf("Failed to publish %s event: %v", event.UserRegistered, err)
	}
	return user, nil
}

func (s *UserService) create(ctx context.Context, input UserInput) (*models.User, error) {
	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user, err := normalize(applyInput(models.User{}, input))
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	existing, err := s.users.FindByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: email %s is already registered", ErrConflict, user.Email)
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: email %s is already registered", ErrConflict, user.Email)
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) Update(ctx context.Context, principal *models.Principal, id string, input UserInput) (*models.User, error) {
	if err := requireRole(principal, models.RoleAdmin); err != nil {
		return nil, err
	}
	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if current.Role == models.RoleAdmin && input.Role != "" && input.Role != models.RoleAdmin {
		if err := s.ensureAnotherAdmin(ctx); err != nil {
			return nil, err
		}
	}

	updated, err := normalize(applyInput(*current, input))
	if err != nil {
		return nil, err
	}
	if input.Password != "" {
		hash, err := hashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		updated.PasswordHash = hash
	}
	return s.save(ctx, &updated)
}

func (s *UserService) Delete(ctx context.Context, principal *models.Principal, id string) error {
	if err := requireRole(principal, models.RoleAdmin); err != nil {
		return err
	}
	current, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if current.Role == models.RoleAdmin {
		if err := s.ensureAnotherAdmin(ctx); err != nil {
			return err
		}
	}
	deleted, err := s.users.Delete(ctx, current.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	return nil
}

func (s *UserService) Me(ctx context.Context, principal *models.Principal) (*models.User, error) {
	if principal == nil {
		return nil, ErrUnauthenticated
	}
	user, err := s.users.FindByID(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}
	return user, nil
}

// UpdateMe applies the fields the caller's role may edit: names and phone for
// everyone, level and interests for students, specialty for counselors.
func (s *UserService) UpdateMe(ctx context.Context, principal *models.Principal, update ProfileUpdate) (*models.User, error) {
	user, err := s.Me(ctx, principal)
	if err != nil {
		return nil, err
	}
	u := *user

	if update.FirstName != nil {
		u.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		u.LastName = *update.LastName
	}
	if update.Phone != nil {
		u.Phone = *update.Phone
	}
	switch u.Role {
	case models.RoleStudent:
		profile := models.StudentProfile{}
		if p := u.AsStudent(); p != nil {
			profile = *p
		}
		if update.Level != nil {
			profile.Level = *update.Level
		}
		if update.Interests != nil {
			profile.Interests = *update.Interests
		}
		u.Profile = &profile
	case models.RoleCounselor:
		if update.Specialty != nil {
			u.Profile = &models.CounselorProfile{Specialty: strings.TrimSpace(*update.Specialty)}
		}
	}

	normalized, err := normalize(u)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, &normalized)
}

// EnsureDefaultAccounts creates each account whose role has no user yet.
// Accounts without credentials are skipped.
func (s *UserService) EnsureDefaultAccounts(ctx context.Context, accounts []DefaultAccount) error {
	for _, account := range accounts {
		if account.Email == "" || account.Password == "" {
			continue
		}
		count, err := s.users.CountByRole(ctx, account.Role)
		if err != nil {
			return err
		}
		if count > 0 {
			log.Printf("Default %s account already exists", account.Role)
			continue
		}
		_, err = s.create(ctx, UserInput{
			Email:     account.Email,
			Password:  account.Password,
			FirstName: account.FirstName,
			LastName:  account.LastName,
			Phone:     account.Phone,
			Role:      account.Role,
		})
		if err != nil {
			return fmt.Errorf("failed to create default %s account: %w", account.Role, err)
		}
		log.Printf("Default %s account created: %s", account.Role, account.Email)
	}
	return nil
}

func (s *UserService) find(ctx context.Context, id string) (*models.User, error) {
	userID, err := parseID(id, "user")
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	return user, nil
}

func (s *UserService) save(ctx context.Context, user *models.User) (*models.User, error) {
	found, err := s.users.Update(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: email %s is already registered", ErrConflict, user.Email)
		}
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, user.ID.Hex())
	}
	return user, nil
}

func (s *UserService) ensureAnotherAdmin(ctx context.Context) error {
	admins, err := s.users.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return err
	}
	if admins <= 1 {
		return fmt.Errorf("%w: cannot remove the last administrator", ErrConflict)
	}
	return nil
}

// applyInput overlays the non-empty fields of input on u.
func applyInput(u models.User, input UserInput) models.User {
	if input.Email != "" {
		u.Email = input.Email
	}
	if input.FirstName != "" {
		u.FirstName = input.FirstName
	}
	if input.LastName != "" {
		u.LastName = input.LastName
	}
	if input.Phone != "" {
		u.Phone = input.Phone
	}
	if input.Role != "" {
		u.Role = input.Role
	}

	student := models.StudentProfile{}
	if p := u.AsStudent(); p != nil {
		student = *p
	}
	if input.Average != nil {
		student.Average = input.Average
	}
	if input.Score != nil {
		student.Score = input.Score
	}
	if input.Level != "" {
		student.Level = input.Level
	}
	if input.Interests != nil {
		student.Interests = input.Interests
	}
	counselor := models.CounselorProfile{}
	if p := u.AsCounselor(); p != nil {
		counselor = *p
	}
	if input.Specialty != "" {
		counselor.Specialty = input.Specialty
	}

	if u.Role == models.RoleCounselor {
		u.Profile = &counselor
	} else {
		u.Profile = &student
	}
	return u
}

func normalize(u models.User) (models.User, error) {
	normalized, err := models.NormalizeUser(u)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return normalized, nil
}
