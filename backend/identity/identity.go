// Package identity resolves the current user of a client from its storage.
// A missing record means the guest identity.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"coursetrack/backend/models"
	"coursetrack/backend/storage"

	"github.com/go-playground/validator/v10"
)

// UserKey is the client storage key holding the signed-in user.
const UserKey = "elearn_user_v1"

const maxIDLength = 40

var ErrNameRequired = errors.New("name is required")

var validate = validator.New()

type Store struct {
	storage storage.Storage
}

func NewStore(s storage.Storage) *Store {
	return &Store{storage: s}
}

// GetUser returns the persisted user, or nil for a guest. A malformed record yields
// nil together with an error wrapping models.ErrCorruptState.
func (s *Store) GetUser(ctx context.Context) (*models.User, error) {
	raw, ok, err := s.storage.Get(ctx, UserKey)
	if err != nil {
		if !errors.Is(err, storage.ErrUnavailable) {
			err = fmt.Errorf("%w: read user: %v", storage.ErrUnavailable, err)
		}
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("%w: user record: %v", models.ErrCorruptState, err)
	}
	if err := validate.Struct(user); err != nil {
		return nil, fmt.Errorf("%w: user record: %v", models.ErrCorruptState, err)
	}
	return &user, nil
}

// SetUser overwrites the persisted record.
func (s *Store) SetUser(ctx context.Context, user models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.storage.Set(ctx, UserKey, string(data))
}

func (s *Store) LogoutUser(ctx context.Context) error {
	return s.storage.Remove(ctx, UserKey)
}

// CurrentUser never fails: storage and decode errors fall back to the guest, and are
// returned alongside so the caller can log them.
func (s *Store) CurrentUser(ctx context.Context) (models.User, error) {
	user, err := s.GetUser(ctx)
	if user == nil {
		return models.User{ID: models.GuestID, Name: models.GuestName}, err
	}
	return *user, err
}

// ResolveUserID returns the id whose progress is in use. A corrupt user record counts
// as the guest. Read failures are returned.
func (s *Store) ResolveUserID(ctx context.Context) (string, error) {
	user, err := s.GetUser(ctx)
	if err != nil && !errors.Is(err, models.ErrCorruptState) {
		return "", err
	}
	if user == nil {
		return models.GuestID, nil
	}
	return user.ID, nil
}

func (s *Store) CurrentUserID(ctx context.Context) string {
	user, _ := s.CurrentUser(ctx)
	return user.ID
}

func (s *Store) CurrentUserName(ctx context.Context) string {
	user, _ := s.CurrentUser(ctx)
	return user.Name
}

// NewUser builds a user from sign-in form input. Only the name is required.
func NewUser(name, email string) (models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.User{}, ErrNameRequired
	}
	return models.User{
		ID:    Slugify(name),
		Name:  name,
		Email: strings.TrimSpace(email),
	}, nil
}

// Slugify lowercases name, turns whitespace runs into hyphens and truncates to 40
// characters. An empty result becomes "user".
func Slugify(name string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range strings.ToLower(name) {
		if isSpace(r) {
			if !inSpace {
				b.WriteByte('-')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}

	slug := b.String()
	if runes := []rune(slug); len(runes) > maxIDLength {
		slug = string(runes[:maxIDLength])
	}
	if slug == "" {
		return "user"
	}
	return slug
}

// isSpace is unicode.IsSpace plus U+FEFF.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\ufeff'
}

// Initials returns up to two uppercase initials for an avatar, "G" when none.
func Initials(name string) string {
	var b strings.Builder
	for i, word := range strings.Fields(name) {
		if i == 2 {
			break
		}
		r := []rune(word)[0]
		b.WriteRune(unicode.ToUpper(r))
	}
	if b.Len() == 0 {
		return "G"
	}
	return b.String()
}
