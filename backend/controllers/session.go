package controllers

import (
	"errors"

	"coursetrack/backend/catalog"
	"coursetrack/backend/config"
	"coursetrack/backend/identity"
	"coursetrack/backend/middleware"
	"coursetrack/backend/models"
	"coursetrack/backend/progress"
	"coursetrack/backend/router"
	"coursetrack/backend/storage"
	"coursetrack/backend/utils"
	"coursetrack/backend/view"

	"github.com/gofiber/fiber/v2"
)

const corruptNotice = "Some saved data could not be read and was reset."

// Deps is shared by every controller.
type Deps struct {
	Cfg     *config.Config
	Storage storage.Storage
	Catalog *catalog.Catalog
	Logger  *utils.Logger
}

// session is the per-request pair of stores scoped to the caller's client storage.
type session struct {
	Identity *identity.Store
	Progress *progress.Store
	logger   *utils.Logger
}

func (d *Deps) session(c *fiber.Ctx) *session {
	clientID := middleware.ClientID(c)
	scoped := storage.Scoped(d.Storage, clientID)
	ids := identity.NewStore(scoped)
	return &session{
		Identity: ids,
		Progress: progress.NewStore(scoped, ids, d.Catalog),
		logger:   d.Logger.With("client_id", clientID),
	}
}

// state reads identity and progress fresh. Corrupt records are logged, replaced by
// defaults and reported through the returned notice.
func (s *session) state(c *fiber.Ctx) (view.State, error) {
	ctx := c.UserContext()
	var st view.State

	user, err := s.Identity.GetUser(ctx)
	switch {
	case errors.Is(err, models.ErrCorruptState):
		s.logger.Warn("resetting unreadable user record", "error", err)
		st.Notice = corruptNotice
	case err != nil:
		return st, err
	}
	if user != nil {
		st.User = *user
		st.SignedIn = true
	} else {
		st.User = models.User{ID: models.GuestID, Name: models.GuestName}
	}

	state, err := s.Progress.LoadProgress(ctx)
	switch {
	case errors.Is(err, models.ErrCorruptState):
		key, _ := s.Progress.StorageKey(ctx)
		s.logger.Warn("resetting unreadable progress blob", "key", key, "error", err)
		st.Notice = corruptNotice
	case err != nil:
		return st, err
	}
	st.Progress = state
	return st, nil
}

// buildView reads state and builds the view for route.
func (d *Deps) buildView(c *fiber.Ctx, s *session, route router.Route) (view.View, error) {
	st, err := s.state(c)
	if err != nil {
		return view.View{}, err
	}
	return view.Build(route, d.Catalog, st), nil
}
