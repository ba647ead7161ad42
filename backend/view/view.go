// Package view turns (route, identity, progress, catalog) into a view description.
// Building a view has no side effects; rendering it to HTML lives in render.go.
package view

import (
	"fmt"

	"coursetrack/backend/catalog"
	"coursetrack/backend/identity"
	"coursetrack/backend/models"
	"coursetrack/backend/progress"
	"coursetrack/backend/router"
)

type Kind string

const (
	KindHome     Kind = "home"
	KindCourse   Kind = "course"
	KindNotFound Kind = "not_found"
)

// State is everything a view needs besides the route and catalog. It is read
// fresh for every request.
type State struct {
	User     models.User
	SignedIn bool
	Progress models.ProgressState
	Notice   string
}

type View struct {
	Kind     Kind         `json:"kind"`
	Route    router.Route `json:"route"`
	Header   Header       `json:"header"`
	Notice   string       `json:"notice,omitempty"`
	Home     *Home        `json:"home,omitempty"`
	Course   *Course      `json:"course,omitempty"`
	NotFound *NotFound    `json:"not_found,omitempty"`
}

type Header struct {
	SignedIn bool   `json:"signed_in"`
	Name     string `json:"name"`
	Initials string `json:"initials,omitempty"`
	Hint     string `json:"hint,omitempty"`
}

type Home struct {
	Welcome string       `json:"welcome"`
	Cards   []CourseCard `json:"cards"`
}

type CourseCard struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Pct         int    `json:"pct"`
	Completed   bool   `json:"completed"`
	ToggleLabel string `json:"toggle_label"`
	Link        string `json:"link"`
}

type Course struct {
	ID            string                 `json:"id"`
	Title         string                 `json:"title"`
	Description   string                 `json:"description"`
	Summary       models.ProgressSummary `json:"summary"`
	ProgressLabel string                 `json:"progress_label"`
	Lessons       []LessonItem           `json:"lessons"`
	ToggleLabel   string                 `json:"toggle_label"`
}

type LessonItem struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Checked bool   `json:"checked"`
}

type NotFound struct {
	Message  string `json:"message"`
	BackLink string `json:"back_link"`
}

// Build assembles the view for route.
func Build(route router.Route, cat *catalog.Catalog, st State) View {
	v := View{
		Route:  route,
		Header: buildHeader(st),
		Notice: st.Notice,
	}

	if route.Name != router.Course {
		v.Kind = KindHome
		v.Home = buildHome(cat, st)
		return v
	}

	course, ok := cat.CourseByID(route.ID)
	if !ok {
		v.Kind = KindNotFound
		v.NotFound = &NotFound{Message: "Course not found.", BackLink: router.Route{Name: router.Home}.Path()}
		return v
	}
	v.Kind = KindCourse
	v.Course = buildCourse(course, st)
	return v
}

func buildHeader(st State) Header {
	if !st.SignedIn {
		return Header{Name: models.GuestName, Hint: "Guest mode"}
	}
	return Header{SignedIn: true, Name: st.User.Name, Initials: identity.Initials(st.User.Name)}
}

func buildHome(cat *catalog.Catalog, st State) *Home {
	name := st.User.Name
	if name == "" {
		name = models.GuestName
	}
	home := &Home{
		Welcome: fmt.Sprintf("Welcome, %s. Browse the catalog and track your progress.", name),
	}
	for _, course := range cat.Courses() {
		summary := progress.ComputeProgress(course, stateFor(st, course.ID))
		label := "Mark Completed"
		if summary.Completed {
			label = "Mark Incomplete"
		}
		home.Cards = append(home.Cards, CourseCard{
			ID:          course.ID,
			Title:       course.Title,
			Description: course.Description,
			Pct:         summary.Pct,
			Completed:   summary.Completed,
			ToggleLabel: label,
			Link:        router.Route{Name: router.Course, ID: course.ID}.Path(),
		})
	}
	return home
}

func buildCourse(course models.Course, st State) *Course {
	cs := stateFor(st, course.ID)
	summary := progress.ComputeProgress(course, cs)

	label := "Mark Course as Completed"
	if summary.Completed {
		label = "Mark as Incomplete"
	}

	lessons := make([]LessonItem, 0, len(course.Lessons))
	for _, l := range course.Lessons {
		lessons = append(lessons, LessonItem{ID: l.ID, Title: l.Title, Checked: cs.CompletedLessons[l.ID]})
	}

	return &Course{
		ID:            course.ID,
		Title:         course.Title,
		Description:   course.Description,
		Summary:       summary,
		ProgressLabel: fmt.Sprintf("%d/%d lessons completed (%d%%)", summary.Done, summary.Total, summary.Pct),
		Lessons:       lessons,
		ToggleLabel:   label,
	}
}

func stateFor(st State, courseID string) models.CourseState {
	cs, ok := st.Progress[courseID]
	if !ok || cs.CompletedLessons == nil {
		def := models.DefaultCourseState()
		def.Completed = ok && cs.Completed
		return def
	}
	return cs
}
