package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"orientation-service/internal/event"
	"orientation-service/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func validInput(email string) UserInput {
	return UserInput{
		Email:     email,
		Password:  "secret123",
		FirstName: "Yanis",
		LastName:  "Haddad",
		Phone:     "0611111111",
	}
}

func TestRegisterForcesStudentRole(t *testing.T) {
	store := newFakeUserStore()
	publisher := &recordingPublisher{}
	service := NewUserService(store, publisher)

	input := validInput("New@Example.com")
	input.Role = models.RoleAdmin
	input.Level = models.LevelBac2
	input.Specialty = "ignored"

	user, err := service.Register(context.Background(), input)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Role != models.RoleStudent {
		t.Errorf("Expected student role, got %s", user.Role)
	}
	if user.Email != "new@example.com" {
		t.Errorf("Expected normalized email, got %s", user.Email)
	}
	if user.AsCounselor() != nil {
		t.Errorf("Expected counselor profile to be dropped")
	}
	if user.StudentLevel() != models.LevelBac2 {
		t.Errorf("Expected level bac+2, got %s", user.StudentLevel())
	}
	if user.PasswordHash == "" || user.PasswordHash == "secret123" {
		t.Errorf("Expected password to be hashed")
	}
	if len(publisher.events) != 1 || publisher.events[0].Type != event.UserRegistered {
		t.Errorf("Expected a user.registered event, got %+v", publisher.events)
	}
}

func TestRegisterRejections(t *testing.T) {
	store := newFakeUserStore()
	service := NewUserService(store, nil)
	if _, err := service.Register(context.Background(), validInput("taken@example.com")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	short := validInput("short@example.com")
	short.Password = "123"
	long := validInput("long@example.com")
	long.Password = strings.Repeat("x", 73)
	noPhone := validInput("nophone@example.com")
	noPhone.Phone = " "
	badLevel := validInput("level@example.com")
	badLevel.Level = "bac+9"

	testCases := []struct {
		name     string
		input    UserInput
		expected error
	}{
		{"duplicate email", validInput("TAKEN@example.com"), ErrConflict},
		{"short password", short, ErrInvalidInput},
		{"password over 72 bytes", long, ErrInvalidInput},
		{"missing phone", noPhone, ErrInvalidInput},
		{"unknown level", badLevel, ErrInvalidInput},
		{"bad email", validInput("not-an-email"), ErrInvalidInput},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := service.Register(context.Background(), tc.input); !errors.Is(err, tc.expected) {
				t.Errorf("Expected %v, got %v", tc.expected, err)
			}
		})
	}
}

func TestAdminManagesUsers(t *testing.T) {
	store := newFakeUserStore()
	service := NewUserService(store, nil)
	ctx := context.Background()
	admin := adminPrincipal()

	input := validInput("counselor@example.com")
	input.Role = models.RoleCounselor
	input.Specialty = "Informatique"
	counselor, err := service.Create(ctx, admin, input)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if p := counselor.AsCounselor(); p == nil || p.Specialty != "Informatique" {
		t.Errorf("Expected counselor specialty, got %+v", counselor.Profile)
	}
	if counselor.AsStudent() != nil {
		t.Errorf("Expected no student profile on a counselor")
	}

	updated, err := service.Update(ctx, admin, counselor.ID.Hex(), UserInput{Phone: "0622222222"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Phone != "0622222222" || updated.FirstName != "Yanis" {
		t.Errorf("Expected partial update, got %+v", updated)
	}
	if p := updated.AsCounselor(); p == nil || p.Specialty != "Informatique" {
		t.Errorf("Expected specialty to survive a partial update, got %+v", updated.Profile)
	}

	list, err := service.List(ctx, admin, models.RoleCounselor)
	if err != nil || len(list) != 1 {
		t.Fatalf("Expected one counselor, got %d (%v)", len(list), err)
	}

	if err := service.Delete(ctx, admin, counselor.ID.Hex()); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := service.Get(ctx, admin, counselor.ID.Hex()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := service.Delete(ctx, admin, counselor.ID.Hex()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a second delete, got %v", err)
	}
}

func TestUserAdminRequiresAdmin(t *testing.T) {
	service := NewUserService(newFakeUserStore(), nil)
	student := newStudent(models.LevelBac)

	if _, err := service.List(context.Background(), principalFor(student), ""); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
	if _, err := service.Create(context.Background(), nil, validInput("x@example.com")); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Expected ErrUnauthenticated, got %v", err)
	}
	if _, err := service.List(context.Background(), adminPrincipal(), "superuser"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for unknown role, got %v", err)
	}
}

func TestLastAdminIsProtected(t *testing.T) {
	only := models.User{
		ID:        primitive.NewObjectID(),
		Email:     "admin@example.com",
		FirstName: "Admin",
		LastName:  "Root",
		Phone:     "0600000000",
		Role:      models.RoleAdmin,
	}
	store := newFakeUserStore(only)
	service := NewUserService(store, nil)
	ctx := context.Background()
	admin := principalFor(only)

	if err := service.Delete(ctx, admin, only.ID.Hex()); !errors.Is(err, ErrConflict) {
		t.Errorf("Expected ErrConflict deleting the last admin, got %v", err)
	}
	if _, err := service.Update(ctx, admin, only.ID.Hex(), UserInput{Role: models.RoleStudent}); !errors.Is(err, ErrConflict) {
		t.Errorf("Expected ErrConflict demoting the last admin, got %v", err)
	}

	second := only
	second.ID = primitive.NewObjectID()
	second.Email = "admin2@example.com"
	store.users[second.ID] = second
	if err := service.Delete(ctx, admin, only.ID.Hex()); err != nil {
		t.Errorf("Expected delete to succeed with another admin, got %v", err)
	}
}

func TestUpdateMeRestrictsFields(t *testing.T) {
	student := newStudent(models.LevelBac)
	store := newFakeUserStore(student)
	service := NewUserService(store, nil)

	level := models.LevelBac3
	specialty := "Droit"
	interests := []string{"maths"}
	name := " Samira "
	updated, err := service.UpdateMe(context.Background(), principalFor(student), ProfileUpdate{
		FirstName: &name,
		Level:     &level,
		Interests: &interests,
		Specialty: &specialty,
	})
	if err != nil {
		t.Fatalf("UpdateMe failed: %v", err)
	}
	if updated.FirstName != "Samira" {
		t.Errorf("Expected trimmed first name, got %q", updated.FirstName)
	}
	if p := updated.AsStudent(); p == nil || p.Level != models.LevelBac3 || len(p.Interests) != 1 {
		t.Errorf("Expected student fields updated, got %+v", updated.Profile)
	}
	if updated.AsCounselor() != nil {
		t.Errorf("Expected specialty to be ignored for a student")
	}

	bad := models.Level("bac+42")
	if _, err := service.UpdateMe(context.Background(), principalFor(student), ProfileUpdate{Level: &bad}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for unknown level, got %v", err)
	}
}

func TestEnsureDefaultAccounts(t *testing.T) {
	store := newFakeUserStore()
	service := NewUserService(store, nil)
	ctx := context.Background()
	accounts := []DefaultAccount{
		{Email: "admin@example.com", Password: "admin123", FirstName: "Admin", LastName: "Default", Phone: "0000000000", Role: models.RoleAdmin},
		{Email: "counselor@example.com", Password: "counsel123", FirstName: "Counselor", LastName: "Default", Phone: "0000000000", Role: models.RoleCounselor},
		{Email: "", Password: "", Role: models.RoleStudent},
	}

	if err := service.EnsureDefaultAccounts(ctx, accounts); err != nil {
		t.Fatalf("EnsureDefaultAccounts failed: %v", err)
	}
	if len(store.users) != 2 {
		t.Fatalf("Expected 2 seeded users, got %d", len(store.users))
	}
	if err := service.EnsureDefaultAccounts(ctx, accounts); err != nil {
		t.Fatalf("Second EnsureDefaultAccounts failed: %v", err)
	}
	if len(store.users) != 2 {
		t.Errorf("Expected seeding to be idempotent, got %d users", len(store.users))
	}
}
