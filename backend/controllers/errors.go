package controllers

import (
	"errors"

	"coursetrack/backend/identity"
	"coursetrack/backend/models"
	"coursetrack/backend/progress"
	"coursetrack/backend/storage"
	"coursetrack/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// classify maps domain errors to an HTTP status and a message safe to show users.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, progress.ErrCourseNotFound):
		return fiber.StatusNotFound, "Course not found"
	case errors.Is(err, progress.ErrLessonNotFound):
		return fiber.StatusNotFound, "Lesson not found"
	case errors.Is(err, progress.ErrUnknownCommand):
		return fiber.StatusBadRequest, "Unknown command"
	case errors.Is(err, identity.ErrNameRequired):
		return fiber.StatusUnprocessableEntity, "Please enter your name."
	case errors.Is(err, storage.ErrQuotaExceeded):
		return fiber.StatusServiceUnavailable, "Storage is full. Your change was not saved."
	case errors.Is(err, storage.ErrWriteFailed):
		return fiber.StatusServiceUnavailable, "Your change could not be saved. Please try again."
	case errors.Is(err, storage.ErrUnavailable):
		return fiber.StatusServiceUnavailable, "Storage is unavailable right now."
	}
	return fiber.StatusInternalServerError, "Something went wrong"
}

// apiError writes the JSON error envelope for err.
func apiError(c *fiber.Ctx, err error) error {
	status, msg := classify(err)
	return utils.Error(c, status, fiber.NewError(status, msg))
}

// corrupt reports whether err is a recoverable corrupt-state error, logging it if so.
// The request then continues with default values.
func corrupt(s *session, err error) bool {
	if !errors.Is(err, models.ErrCorruptState) {
		return false
	}
	s.logger.Warn("resetting unreadable stored record", "error", err)
	return true
}
