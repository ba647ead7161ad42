// Package progress owns per-user completion records: loading and saving the
// progress blob, deriving display values and applying mutations.
package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"coursetrack/backend/catalog"
	"coursetrack/backend/identity"
	"coursetrack/backend/models"
	"coursetrack/backend/storage"
)

// KeyPrefix namespaces progress blobs; the user id follows a colon.
const KeyPrefix = "elearn_progress_v1"

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrLessonNotFound = errors.New("lesson not found")
)

// Store reads and writes the progress blob of whichever user is current for the
// client. Switching identity switches the blob.
type Store struct {
	storage  storage.Storage
	identity *identity.Store
	catalog  *catalog.Catalog
}

func NewStore(s storage.Storage, ids *identity.Store, cat *catalog.Catalog) *Store {
	return &Store{storage: s, identity: ids, catalog: cat}
}

// StorageKey is the key of the current user's blob. It fails when the user record
// cannot be read at all.
func (s *Store) StorageKey(ctx context.Context) (string, error) {
	userID, err := s.identity.ResolveUserID(ctx)
	if err != nil {
		return "", err
	}
	return KeyPrefix + ":" + userID, nil
}

// LoadProgress returns the current user's progress. A missing blob is an empty
// state. A malformed blob is also returned as an empty state, with an error
// wrapping models.ErrCorruptState.
func (s *Store) LoadProgress(ctx context.Context) (models.ProgressState, error) {
	key, err := s.StorageKey(ctx)
	if err != nil {
		return models.ProgressState{}, err
	}
	raw, ok, err := s.storage.Get(ctx, key)
	if err != nil {
		return models.ProgressState{}, err
	}
	if !ok {
		return models.ProgressState{}, nil
	}
	return decode(raw)
}

// SaveProgress overwrites the whole blob.
func (s *Store) SaveProgress(ctx context.Context, state models.ProgressState) error {
	data, err := encode(state)
	if err != nil {
		return err
	}
	key, err := s.StorageKey(ctx)
	if err != nil {
		return err
	}
	return s.storage.Set(ctx, key, data)
}

// GetCourseState returns the record for courseID or the default record.
func (s *Store) GetCourseState(ctx context.Context, courseID string) (models.CourseState, error) {
	state, err := s.LoadProgress(ctx)
	return courseState(state, courseID), err
}

// SetCourseState replaces one course's record inside the blob atomically.
func (s *Store) SetCourseState(ctx context.Context, courseID string, next models.CourseState) error {
	return s.UpdateCourseState(ctx, courseID, func(models.CourseState) (models.CourseState, error) {
		return next, nil
	})
}

// UpdateCourseState applies fn to the current record of courseID under the storage
// backend's read-modify-write guarantee. A corrupt blob is reset to empty first.
func (s *Store) UpdateCourseState(ctx context.Context, courseID string, fn func(models.CourseState) (models.CourseState, error)) error {
	key, err := s.StorageKey(ctx)
	if err != nil {
		return err
	}
	return s.storage.Update(ctx, key, func(current string, ok bool) (string, error) {
		state := models.ProgressState{}
		if ok {
			// decode always hands back a usable state; a corrupt blob is dropped here.
			state, _ = decode(current)
		}
		next, err := fn(courseState(state, courseID))
		if err != nil {
			return "", err
		}
		if next.CompletedLessons == nil {
			next.CompletedLessons = map[string]bool{}
		}
		state[courseID] = next
		return encode(state)
	})
}

// ComputeProgress derives the summary for courseID from the stored record.
func (s *Store) ComputeProgress(ctx context.Context, courseID string) (models.ProgressSummary, error) {
	course, ok := s.catalog.CourseByID(courseID)
	if !ok {
		return models.ProgressSummary{}, fmt.Errorf("%w: %s", ErrCourseNotFound, courseID)
	}
	state, err := s.GetCourseState(ctx, courseID)
	return ComputeProgress(course, state), err
}

func courseState(state models.ProgressState, courseID string) models.CourseState {
	cs, ok := state[courseID]
	if !ok {
		return models.DefaultCourseState()
	}
	return cs.Clone()
}

func decode(raw string) (models.ProgressState, error) {
	var state models.ProgressState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return models.ProgressState{}, fmt.Errorf("%w: progress blob: %v", models.ErrCorruptState, err)
	}
	if state == nil {
		// "null" decodes to a nil map.
		return models.ProgressState{}, nil
	}
	for id, cs := range state {
		if cs.CompletedLessons == nil {
			cs.CompletedLessons = map[string]bool{}
			state[id] = cs
		}
	}
	return state, nil
}

func encode(state models.ProgressState) (string, error) {
	if state == nil {
		state = models.ProgressState{}
	}
	data, err := json.Marshal(state)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
