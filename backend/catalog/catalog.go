// Package catalog holds the static list of courses. A catalog is loaded once at
// startup and never changes afterwards.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"coursetrack/backend/models"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Catalog struct {
	courses []models.Course
	byID    map[string]int
}

type document struct {
	Courses []models.Course `yaml:"courses" validate:"dive"`
}

// Default returns the built-in demo catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog file, or the built-in catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(doc.Courses)
}

// New builds a catalog from courses after checking ids.
func New(courses []models.Course) (*Catalog, error) {
	if err := Validate(courses); err != nil {
		return nil, err
	}
	c := &Catalog{
		courses: make([]models.Course, len(courses)),
		byID:    make(map[string]int, len(courses)),
	}
	for i, course := range courses {
		c.courses[i] = copyCourse(course)
		c.byID[course.ID] = i
	}
	return c, nil
}

var validate = validator.New()

// Validate checks required fields, unique course ids and unique lesson ids per course.
func Validate(courses []models.Course) error {
	if err := validate.Struct(document{Courses: courses}); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}
	seen := make(map[string]bool, len(courses))
	for _, course := range courses {
		if seen[course.ID] {
			return fmt.Errorf("invalid catalog: duplicate course id %q", course.ID)
		}
		seen[course.ID] = true

		lessons := make(map[string]bool, len(course.Lessons))
		for _, l := range course.Lessons {
			if lessons[l.ID] {
				return fmt.Errorf("invalid catalog: duplicate lesson id %q in course %q", l.ID, course.ID)
			}
			lessons[l.ID] = true
		}
	}
	return nil
}

// Courses returns all courses in catalog order.
func (c *Catalog) Courses() []models.Course {
	out := make([]models.Course, len(c.courses))
	for i, course := range c.courses {
		out[i] = copyCourse(course)
	}
	return out
}

func (c *Catalog) CourseByID(id string) (models.Course, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Course{}, false
	}
	return copyCourse(c.courses[i]), true
}

func (c *Catalog) Len() int {
	return len(c.courses)
}

func copyCourse(course models.Course) models.Course {
	course.Lessons = append([]models.Lesson(nil), course.Lessons...)
	return course
}
