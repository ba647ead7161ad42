package controllers

import (
	"errors"

	"coursetrack/backend/identity"
	"coursetrack/backend/models"
	"coursetrack/backend/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	*Deps
}

func NewUserController(deps *Deps) *UserController {
	return &UserController{Deps: deps}
}

type SignInRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email"`
}

var validate = validator.New()

// GetUser returns the current identity; guests get the synthetic guest record.
func (uc *UserController) GetUser(c *fiber.Ctx) error {
	s := uc.session(c)
	user, err := s.Identity.GetUser(c.UserContext())
	switch {
	case errors.Is(err, models.ErrCorruptState):
		s.logger.Warn("treating unreadable user record as guest", "error", err)
	case err != nil:
		return apiError(c, err)
	}

	current := models.User{ID: models.GuestID, Name: models.GuestName}
	if user != nil {
		current = *user
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"user":      current,
		"signed_in": user != nil,
		"initials":  identity.Initials(current.Name),
	})
}

func (uc *UserController) SignIn(c *fiber.Ctx) error {
	var input SignInRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, map[string]string{"name": "required"})
	}

	user, err := identity.NewUser(input.Name, input.Email)
	if errors.Is(err, identity.ErrNameRequired) {
		return utils.ValidationError(c, map[string]string{"name": "required"})
	}

	s := uc.session(c)
	if err := s.Identity.SetUser(c.UserContext(), user); err != nil {
		s.logger.Warn("sign in failed", "error", err)
		return apiError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, user)
}

func (uc *UserController) Logout(c *fiber.Ctx) error {
	s := uc.session(c)
	if err := s.Identity.LogoutUser(c.UserContext()); err != nil {
		return apiError(c, err)
	}
	return utils.NoContent(c)
}
