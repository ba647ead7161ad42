package progress

import (
	"context"
	"fmt"

	"coursetrack/backend/models"
)

// ToggleLesson sets one lesson flag and re-derives completed: the course is
// complete exactly when every catalog lesson is marked true.
func (s *Store) ToggleLesson(ctx context.Context, courseID, lessonID string, checked bool) (models.CourseState, error) {
	course, ok := s.catalog.CourseByID(courseID)
	if !ok {
		return models.CourseState{}, fmt.Errorf("%w: %s", ErrCourseNotFound, courseID)
	}
	if !course.HasLesson(lessonID) {
		return models.CourseState{}, fmt.Errorf("%w: %s in %s", ErrLessonNotFound, lessonID, courseID)
	}

	var out models.CourseState
	err := s.UpdateCourseState(ctx, courseID, func(cs models.CourseState) (models.CourseState, error) {
		cs.CompletedLessons[lessonID] = checked
		cs.Completed = AllLessonsDone(course, cs)
		out = cs
		return cs, nil
	})
	return out, err
}

// MarkAllLessons marks every lesson done and the course completed.
func (s *Store) MarkAllLessons(ctx context.Context, courseID string) (models.CourseState, error) {
	course, ok := s.catalog.CourseByID(courseID)
	if !ok {
		return models.CourseState{}, fmt.Errorf("%w: %s", ErrCourseNotFound, courseID)
	}

	var out models.CourseState
	err := s.UpdateCourseState(ctx, courseID, func(cs models.CourseState) (models.CourseState, error) {
		for _, l := range course.Lessons {
			cs.CompletedLessons[l.ID] = true
		}
		cs.Completed = true
		out = cs
		return cs, nil
	})
	return out, err
}

// ToggleCourse flips the whole-course flag. Turning it on marks every lesson done;
// turning it off clears only the flag and keeps lesson checks, from either view.
func (s *Store) ToggleCourse(ctx context.Context, courseID string) (models.CourseState, error) {
	course, ok := s.catalog.CourseByID(courseID)
	if !ok {
		return models.CourseState{}, fmt.Errorf("%w: %s", ErrCourseNotFound, courseID)
	}

	var out models.CourseState
	err := s.UpdateCourseState(ctx, courseID, func(cs models.CourseState) (models.CourseState, error) {
		cs.Completed = !cs.Completed
		if cs.Completed {
			for _, l := range course.Lessons {
				cs.CompletedLessons[l.ID] = true
			}
		}
		out = cs
		return cs, nil
	})
	return out, err
}

// ResetProgress replaces the record with the default one.
func (s *Store) ResetProgress(ctx context.Context, courseID string) (models.CourseState, error) {
	if _, ok := s.catalog.CourseByID(courseID); !ok {
		return models.CourseState{}, fmt.Errorf("%w: %s", ErrCourseNotFound, courseID)
	}
	out := models.DefaultCourseState()
	return out, s.SetCourseState(ctx, courseID, out)
}
