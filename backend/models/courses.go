package models

type Course struct {
	ID          string   `json:"id" yaml:"id" validate:"required"`
	Title       string   `json:"title" yaml:"title" validate:"required"`
	Description string   `json:"description" yaml:"description"`
	Lessons     []Lesson `json:"lessons" yaml:"lessons" validate:"dive"`
}

type Lesson struct {
	ID    string `json:"id" yaml:"id" validate:"required"`
	Title string `json:"title" yaml:"title" validate:"required"`
}

// LessonIDs returns the lesson ids in catalog order.
func (c Course) LessonIDs() []string {
	ids := make([]string, 0, len(c.Lessons))
	for _, l := range c.Lessons {
		ids = append(ids, l.ID)
	}
	return ids
}

// HasLesson reports whether lessonID belongs to the course.
func (c Course) HasLesson(lessonID string) bool {
	for _, l := range c.Lessons {
		if l.ID == lessonID {
			return true
		}
	}
	return false
}
