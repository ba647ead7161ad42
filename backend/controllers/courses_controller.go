package controllers

import (
	"coursetrack/backend/models"
	"coursetrack/backend/progress"
	"coursetrack/backend/router"
	"coursetrack/backend/utils"
	"coursetrack/backend/view"

	"github.com/gofiber/fiber/v2"
)

// CoursesController serves the two HTML views and the form actions posted from them.
type CoursesController struct {
	*Deps
}

func NewCoursesController(deps *Deps) *CoursesController {
	return &CoursesController{Deps: deps}
}

func (cc *CoursesController) Home(c *fiber.Ctx) error {
	return cc.renderPage(c, cc.session(c), router.Route{Name: router.Home}, fiber.StatusOK, "")
}

func (cc *CoursesController) Course(c *fiber.Ctx) error {
	route := router.Route{Name: router.Course, ID: c.Params("id")}
	return cc.renderPage(c, cc.session(c), route, fiber.StatusOK, "")
}

// ToggleCourse handles the whole-course button on both views. ?from=home returns to
// the catalog, anything else to the course page.
func (cc *CoursesController) ToggleCourse(c *fiber.Ctx) error {
	courseID := c.Params("id")
	route := router.Route{Name: router.Course, ID: courseID}
	if c.Query("from") == "home" {
		route = router.Route{Name: router.Home}
	}
	return cc.dispatch(c, route, progress.Command{Type: progress.CmdToggleCourse, CourseID: courseID})
}

func (cc *CoursesController) ToggleLesson(c *fiber.Ctx) error {
	courseID := c.Params("id")
	cmd := progress.Command{
		Type:     progress.CmdToggleLesson,
		CourseID: courseID,
		LessonID: c.Params("lessonId"),
		Checked:  c.FormValue("checked") == "true",
	}
	return cc.dispatch(c, router.Route{Name: router.Course, ID: courseID}, cmd)
}

func (cc *CoursesController) MarkAll(c *fiber.Ctx) error {
	courseID := c.Params("id")
	return cc.dispatch(c, router.Route{Name: router.Course, ID: courseID},
		progress.Command{Type: progress.CmdMarkAll, CourseID: courseID})
}

func (cc *CoursesController) Reset(c *fiber.Ctx) error {
	courseID := c.Params("id")
	return cc.dispatch(c, router.Route{Name: router.Course, ID: courseID},
		progress.Command{Type: progress.CmdReset, CourseID: courseID})
}

// GetCatalog returns the static course list.
func (cc *CoursesController) GetCatalog(c *fiber.Ctx) error {
	return utils.Success(c, fiber.StatusOK, cc.Catalog.Courses())
}

// GetView resolves a raw fragment (?hash=#/course/<id>) and returns the view as JSON.
func (cc *CoursesController) GetView(c *fiber.Ctx) error {
	route := router.ParseRoute(c.Query("hash"))
	v, err := cc.buildView(c, cc.session(c), route)
	if err != nil {
		return apiError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, v)
}

// dispatch applies cmd, then redirects to route so a reload never repeats the post.
// On failure the page is rendered in place with the error as a notice.
func (cc *CoursesController) dispatch(c *fiber.Ctx, route router.Route, cmd progress.Command) error {
	s := cc.session(c)
	if _, err := s.Progress.Dispatch(c.UserContext(), cmd); err != nil {
		status, msg := classify(err)
		s.logger.Warn("command failed", "command", cmd.Type, "course_id", cmd.CourseID, "error", err)
		return cc.renderPage(c, s, route, status, msg)
	}
	return c.Redirect(route.Path(), fiber.StatusSeeOther)
}

func (cc *CoursesController) renderPage(c *fiber.Ctx, s *session, route router.Route, status int, notice string) error {
	v, err := cc.buildView(c, s, route)
	if err != nil {
		errStatus, msg := classify(err)
		if status < fiber.StatusBadRequest {
			status = errStatus
		}
		s.logger.Error("could not read client state", "error", err)
		v = view.Build(route, cc.Catalog, view.State{
			User:   models.User{ID: models.GuestID, Name: models.GuestName},
			Notice: msg,
		})
	}
	if notice != "" {
		v.Notice = notice
	}
	if v.Kind == view.KindNotFound && status < fiber.StatusBadRequest {
		status = fiber.StatusNotFound
	}

	c.Status(status)
	c.Type("html", "utf-8")
	return view.Render(c, v)
}
