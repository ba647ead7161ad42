package progress

import "coursetrack/backend/models"

// Percent returns done/total as a whole percentage, rounding halves up. Zero lessons give 0.
func Percent(done, total int) int {
	if total <= 0 {
		return 0
	}
	return (done*200 + total) / (total * 2)
}

// ComputeProgress counts true lesson flags against the course's lesson count. The
// completed flag is passed through as stored.
func ComputeProgress(course models.Course, state models.CourseState) models.ProgressSummary {
	done := 0
	for _, v := range state.CompletedLessons {
		if v {
			done++
		}
	}
	total := len(course.Lessons)
	return models.ProgressSummary{
		Done:      done,
		Total:     total,
		Pct:       Percent(done, total),
		Completed: state.Completed,
	}
}

// AllLessonsDone reports whether every catalog lesson of course is marked true in state.
func AllLessonsDone(course models.Course, state models.CourseState) bool {
	for _, l := range course.Lessons {
		if !state.CompletedLessons[l.ID] {
			return false
		}
	}
	return true
}
