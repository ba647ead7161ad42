package models

import "errors"

// ErrCorruptState marks a persisted record that could not be decoded or failed validation.
// Callers recover by falling back to the default value.
var ErrCorruptState = errors.New("corrupt persisted state")

// CourseState is the completion record for one course.
type CourseState struct {
	CompletedLessons map[string]bool `json:"completedLessons"`
	Completed        bool            `json:"completed"`
}

// DefaultCourseState is the record used for a course that has never been touched.
func DefaultCourseState() CourseState {
	return CourseState{CompletedLessons: map[string]bool{}}
}

// Clone returns a deep copy so callers can mutate it freely.
func (s CourseState) Clone() CourseState {
	out := CourseState{
		CompletedLessons: make(map[string]bool, len(s.CompletedLessons)),
		Completed:        s.Completed,
	}
	for k, v := range s.CompletedLessons {
		out.CompletedLessons[k] = v
	}
	return out
}

// ProgressState maps course id to completion record. One blob per user.
type ProgressState map[string]CourseState

// ProgressSummary is what the calculator derives for display.
type ProgressSummary struct {
	Done      int  `json:"done"`
	Total     int  `json:"total"`
	Pct       int  `json:"pct"`
	Completed bool `json:"completed"`
}
