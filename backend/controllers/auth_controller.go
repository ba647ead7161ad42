package controllers

import (
	"coursetrack/backend/identity"
	"coursetrack/backend/router"

	"github.com/gofiber/fiber/v2"
)

// AuthController handles the sign-in form and log-out button. Sign-in is a local
// identity switch: nothing is verified.
type AuthController struct {
	*Deps
	pages *CoursesController
}

func NewAuthController(deps *Deps) *AuthController {
	return &AuthController{Deps: deps, pages: NewCoursesController(deps)}
}

// SignIn stores the user built from the form and returns to the page it came from.
func (ac *AuthController) SignIn(c *fiber.Ctx) error {
	route := router.FromPath(c.FormValue("return_to"))
	s := ac.session(c)

	user, err := identity.NewUser(c.FormValue("name"), c.FormValue("email"))
	if err == nil {
		err = s.Identity.SetUser(c.UserContext(), user)
	}
	if err != nil {
		status, msg := classify(err)
		s.logger.Warn("sign in failed", "error", err)
		return ac.pages.renderPage(c, s, route, status, msg)
	}

	s.logger.Info("signed in", "user_id", user.ID)
	return c.Redirect(route.Path(), fiber.StatusSeeOther)
}

func (ac *AuthController) Logout(c *fiber.Ctx) error {
	s := ac.session(c)
	if err := s.Identity.LogoutUser(c.UserContext()); err != nil {
		status, msg := classify(err)
		s.logger.Warn("log out failed", "error", err)
		return ac.pages.renderPage(c, s, router.Route{Name: router.Home}, status, msg)
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}
