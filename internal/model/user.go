package model

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, user User) (User, error)
	Update(ctx context.Context, id uuid.UUID, changes UserChanges) (User, error)
	Delete(ctx context.Context, id uuid.UUID) (User, error)
}

// User is a registered account. Credentials and the avatar reference never
// leave the process through JSON.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Age          int       `json:"age"`
	PasswordHash string    `json:"-"`
	AvatarKey    string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasAvatar reports whether an avatar image is stored for the user.
func (u User) HasAvatar() bool {
	return u.AvatarKey != ""
}

// UserDraft is the signup input.
type UserDraft struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=7,nopassword"`
	Age      int    `json:"age" validate:"gte=0"`
}

// Normalize trims fields and lower-cases the email.
func (d *UserDraft) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = NormalizeEmail(d.Email)
	d.Password = strings.TrimSpace(d.Password)
}

// Validate checks the draft against the account rules.
func (d UserDraft) Validate() error {
	return validateStruct(d)
}

// UserUpdate is a profile change request. Only fields present in the request
// body are non-nil.
type UserUpdate struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Age      *int    `json:"age"`
}

// DecodeUserUpdate reads a UserUpdate from JSON, rejecting any field outside
// name, email, password and age.
func DecodeUserUpdate(r io.Reader) (UserUpdate, error) {
	var u UserUpdate
	if err := decodeStrict(r, &u, "name", "email", "password", "age"); err != nil {
		return UserUpdate{}, err
	}
	return u, nil
}

// Normalize trims present fields and lower-cases the email.
func (u *UserUpdate) Normalize() {
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		u.Name = &name
	}
	if u.Email != nil {
		email := NormalizeEmail(*u.Email)
		u.Email = &email
	}
	if u.Password != nil {
		password := strings.TrimSpace(*u.Password)
		u.Password = &password
	}
}

// Validate applies the signup rules to each present field.
func (u UserUpdate) Validate() error {
	if u.Name != nil {
		if err := validateVar("name", *u.Name, "required"); err != nil {
			return err
		}
	}
	if u.Email != nil {
		if err := validateVar("email", *u.Email, "required,email"); err != nil {
			return err
		}
	}
	if u.Password != nil {
		if err := validateVar("password", *u.Password, "required,min=7,nopassword"); err != nil {
			return err
		}
	}
	if u.Age != nil {
		if err := validateVar("age", *u.Age, "gte=0"); err != nil {
			return err
		}
	}
	return nil
}

// UserChanges is the store-level form of an update. Nil fields are kept.
// A non-nil empty AvatarKey clears the avatar.
type UserChanges struct {
	Name         *string
	Email        *string
	Age          *int
	PasswordHash *string
	AvatarKey    *string
}

// IsEmpty reports whether no column would change.
func (c UserChanges) IsEmpty() bool {
	return c.Name == nil && c.Email == nil && c.Age == nil && c.PasswordHash == nil && c.AvatarKey == nil
}

// NormalizeEmail is the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// decodeStrict decodes a single JSON object into dst. Keys must match one of
// allowed exactly; any other key rejects the whole body.
func decodeStrict(r io.Reader, dst any, allowed ...string) error {
	dec := json.NewDecoder(r)

	var fields map[string]json.RawMessage
	if err := dec.Decode(&fields); err != nil {
		if errors.Is(err, io.EOF) {
			return NewValidationError("request body is empty")
		}
		return NewValidationError("request body is not valid JSON")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return NewValidationError("request body is not valid JSON")
	}

	for key := range fields {
		if !slices.Contains(allowed, key) {
			return NewValidationError("invalid updates")
		}
	}

	body, err := json.Marshal(fields)
	if err != nil {
		return NewValidationError("request body is not valid JSON")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return NewValidationError("request body is not valid JSON")
	}
	return nil
}
