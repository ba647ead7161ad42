package controllers

import (
	"strings"

	"coursetrack/backend/models"
	"coursetrack/backend/progress"
	"coursetrack/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type ProgressController struct {
	*Deps
}

func NewProgressController(deps *Deps) *ProgressController {
	return &ProgressController{Deps: deps}
}

type courseProgress struct {
	CourseID string                 `json:"course_id"`
	State    models.CourseState     `json:"state"`
	Summary  models.ProgressSummary `json:"summary"`
}

// GetProgress returns the current user's record and summary for every catalog course.
func (pc *ProgressController) GetProgress(c *fiber.Ctx) error {
	s := pc.session(c)
	ctx := c.UserContext()

	state, err := s.Progress.LoadProgress(ctx)
	if err != nil && !corrupt(s, err) {
		return apiError(c, err)
	}

	result := make([]courseProgress, 0, pc.Catalog.Len())
	for _, course := range pc.Catalog.Courses() {
		cs, ok := state[course.ID]
		if !ok {
			cs = models.DefaultCourseState()
		}
		result = append(result, courseProgress{
			CourseID: course.ID,
			State:    cs,
			Summary:  progress.ComputeProgress(course, cs),
		})
	}

	key, err := s.Progress.StorageKey(ctx)
	if err != nil {
		return apiError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, result, fiber.Map{
		"user_id": strings.TrimPrefix(key, progress.KeyPrefix+":"),
		"key":     key,
	})
}

func (pc *ProgressController) GetCourseProgress(c *fiber.Ctx) error {
	s := pc.session(c)
	courseID := c.Params("courseId")

	summary, err := s.Progress.ComputeProgress(c.UserContext(), courseID)
	if err != nil && !corrupt(s, err) {
		return apiError(c, err)
	}
	cs, _ := s.Progress.GetCourseState(c.UserContext(), courseID)

	return utils.Success(c, fiber.StatusOK, courseProgress{CourseID: courseID, State: cs, Summary: summary})
}

// PostCommand applies one command to the course in the path and returns the new record.
func (pc *ProgressController) PostCommand(c *fiber.Ctx) error {
	var cmd progress.Command
	if err := c.BodyParser(&cmd); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(cmd); err != nil {
		return utils.ValidationError(c, map[string]string{"type": "required"})
	}
	cmd.CourseID = c.Params("courseId")

	s := pc.session(c)
	ctx := c.UserContext()
	state, err := s.Progress.Dispatch(ctx, cmd)
	if err != nil {
		s.logger.Warn("command failed", "command", cmd.Type, "course_id", cmd.CourseID, "error", err)
		return apiError(c, err)
	}

	summary, err := s.Progress.ComputeProgress(ctx, cmd.CourseID)
	if err != nil && !corrupt(s, err) {
		return apiError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, courseProgress{CourseID: cmd.CourseID, State: state, Summary: summary})
}
