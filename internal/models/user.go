package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleCounselor Role = "counselor"
	RoleStudent   Role = "student"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCounselor, RoleStudent:
		return true
	}
	return false
}

// Profile is the role-specific part of a user. StudentProfile and
// CounselorProfile are its only implementations; admins have none.
type Profile interface {
	ProfileRole() Role
	isProfile()
}

type StudentProfile struct {
	Average   *float64 `bson:"average,omitempty" json:"average,omitempty"`
	Score     *float64 `bson:"score,omitempty" json:"score,omitempty"`
	Level     Level    `bson:"level,omitempty" json:"level,omitempty"`
	Interests []string `bson:"interests,omitempty" json:"interests,omitempty"`
}

func (*StudentProfile) ProfileRole() Role { return RoleStudent }
func (*StudentProfile) isProfile()        {}

type CounselorProfile struct {
	Specialty string `bson:"specialty,omitempty" json:"specialty,omitempty"`
}

func (*CounselorProfile) ProfileRole() Role { return RoleCounselor }
func (*CounselorProfile) isProfile()        {}

// User is tagged by Role. Profile holds the variant for that role and is
// stored under "student" or "counselor".
type User struct {
	ID           primitive.ObjectID
	Email        string
	PasswordHash string
	LastName     string
	FirstName    string
	Phone        string
	Role         Role
	Profile      Profile
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// userDocument is how a User is stored and rendered.
type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	LastName     string             `bson:"last_name" json:"lastName"`
	FirstName    string             `bson:"first_name" json:"firstName"`
	Phone        string             `bson:"phone" json:"phone"`
	Role         Role               `bson:"role" json:"role"`
	Student      *StudentProfile    `bson:"student,omitempty" json:"student,omitempty"`
	Counselor    *CounselorProfile  `bson:"counselor,omitempty" json:"counselor,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}

func (u User) document() userDocument {
	doc := userDocument{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		LastName:     u.LastName,
		FirstName:    u.FirstName,
		Phone:        u.Phone,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	switch p := u.Profile.(type) {
	case *StudentProfile:
		doc.Student = p
	case *CounselorProfile:
		doc.Counselor = p
	}
	return doc
}

// user keeps only the profile that belongs to the stored role.
func (d userDocument) user() User {
	u := User{
		ID:           d.ID,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		LastName:     d.LastName,
		FirstName:    d.FirstName,
		Phone:        d.Phone,
		Role:         d.Role,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	switch {
	case d.Role == RoleStudent && d.Student != nil:
		u.Profile = d.Student
	case d.Role == RoleCounselor && d.Counselor != nil:
		u.Profile = d.Counselor
	}
	return u
}

func (u User) MarshalBSON() ([]byte, error) {
	return bson.Marshal(u.document())
}

func (u *User) UnmarshalBSON(data []byte) error {
	var doc userDocument
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}
	*u = doc.user()
	return nil
}

func (u User) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.document())
}

func (u *User) UnmarshalJSON(data []byte) error {
	var doc userDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*u = doc.user()
	return nil
}

// AsStudent returns the student profile, or nil for other roles.
func (u *User) AsStudent() *StudentProfile {
	p, _ := u.Profile.(*StudentProfile)
	return p
}

// AsCounselor returns the counselor profile, or nil for other roles.
func (u *User) AsCounselor() *CounselorProfile {
	p, _ := u.Profile.(*CounselorProfile)
	return p
}

var ErrInvalidUser = errors.New("invalid user")

// NormalizeUser validates the common fields and returns a copy whose
// role-specific profile matches its role. Missing roles default to student.
func NormalizeUser(u User) (User, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)
	u.Phone = strings.TrimSpace(u.Phone)
	if u.Role == "" {
		u.Role = RoleStudent
	}
	if !u.Role.Valid() {
		return User{}, fmt.Errorf("%w: unknown role %q", ErrInvalidUser, u.Role)
	}
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return User{}, fmt.Errorf("%w: a valid email is required", ErrInvalidUser)
	}
	if u.FirstName == "" || u.LastName == "" {
		return User{}, fmt.Errorf("%w: first and last name are required", ErrInvalidUser)
	}
	if u.Phone == "" {
		return User{}, fmt.Errorf("%w: phone is required", ErrInvalidUser)
	}

	switch u.Role {
	case RoleStudent:
		student := &StudentProfile{}
		if p := u.AsStudent(); p != nil {
			profile := *p
			student = &profile
		}
		if student.Level != "" && !student.Level.Valid() {
			return User{}, fmt.Errorf("%w: unknown level %q", ErrInvalidUser, student.Level)
		}
		u.Profile = student
	case RoleCounselor:
		counselor := &CounselorProfile{}
		if p := u.AsCounselor(); p != nil {
			profile := *p
			counselor = &profile
		}
		u.Profile = counselor
	default:
		u.Profile = nil
	}
	return u, nil
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// StudentLevel returns the student's level, or "" for other roles.
func (u *User) StudentLevel() Level {
	if p := u.AsStudent(); p != nil {
		return p.Level
	}
	return ""
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID    primitive.ObjectID
	Email     string
	FirstName string
	LastName  string
	Role      Role
	SessionID string
}

func (p *Principal) Is(roles ...Role) bool {
	if p == nil {
		return false
	}
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}
