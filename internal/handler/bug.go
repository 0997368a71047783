package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sumire/bugtracker/internal/domain"
	"github.com/sumire/bugtracker/internal/service"
)

// BugHandler handles the /api/bugs endpoints.
type BugHandler struct {
	bugs *service.BugService
}

// NewBugHandler creates a new BugHandler.
func NewBugHandler(bugs *service.BugService) *BugHandler {
	return &BugHandler{bugs: bugs}
}

// List returns all bugs, newest first.
func (h *BugHandler) List(c echo.Context) error {
	bugs, err := h.bugs.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bugs)
}

// Create validates the candidate and stores it as a new bug.
func (h *BugHandler) Create(c echo.Context) error {
	in, err := bindBug(c)
	if err != nil {
		return err
	}
	if err := c.Validate(&in); err != nil {
		return err
	}

	bug, err := h.bugs.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, bug)
}

// Update validates the candidate and merges it into an existing bug.
// An unknown id is reported as not found even when the body is malformed or invalid.
func (h *BugHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	in, err := bindBug(c)
	if err == nil {
		err = c.Validate(&in)
	}
	if err != nil {
		exists, existsErr := h.bugs.Exists(ctx, id)
		if existsErr != nil {
			return existsErr
		}
		if !exists {
			return domain.ErrNotFound
		}
		return err
	}

	bug, err := h.bugs.Update(ctx, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bug)
}

// Delete removes a bug.
func (h *BugHandler) Delete(c echo.Context) error {
	if err := h.bugs.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: msgBugRemoved})
}

func bindBug(c echo.Context) (domain.BugInput, error) {
	var in domain.BugInput
	err := (&echo.DefaultBinder{}).BindBody(c, &in)
	if errors.Is(err, echo.ErrUnsupportedMediaType) {
		// A body in an unknown format is ignored; the empty candidate then
		// fails validation field by field.
		return domain.BugInput{}, nil
	}
	if err != nil {
		return in, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return in, nil
}
