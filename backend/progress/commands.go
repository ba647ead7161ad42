package progress

import (
	"context"
	"errors"
	"fmt"

	"coursetrack/backend/models"
)

type CommandType string

const (
	CmdToggleLesson CommandType = "toggle_lesson"
	CmdMarkAll      CommandType = "mark_all"
	CmdToggleCourse CommandType = "toggle_course"
	CmdReset        CommandType = "reset"
)

var ErrUnknownCommand = errors.New("unknown command")

// Command is a user action against one course, as posted by the views or the API.
type Command struct {
	Type     CommandType `json:"type" validate:"required"`
	CourseID string      `json:"course_id"`
	LessonID string      `json:"lesson_id,omitempty"`
	Checked  bool        `json:"checked,omitempty"`
}

// Dispatch applies cmd and returns the resulting record.
func (s *Store) Dispatch(ctx context.Context, cmd Command) (models.CourseState, error) {
	switch cmd.Type {
	case CmdToggleLesson:
		return s.ToggleLesson(ctx, cmd.CourseID, cmd.LessonID, cmd.Checked)
	case CmdMarkAll:
		return s.MarkAllLessons(ctx, cmd.CourseID)
	case CmdToggleCourse:
		return s.ToggleCourse(ctx, cmd.CourseID)
	case CmdReset:
		return s.ResetProgress(ctx, cmd.CourseID)
	}
	return models.CourseState{}, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
}
