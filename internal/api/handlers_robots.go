// handlers_robots.go - Robot session handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/urdf-visualizer/backend/internal/session"
)

// RobotHandlerImpl implements the RobotHandler interface
type RobotHandlerImpl struct {
	sessions SessionManager
}

// NewRobotHandler creates a new robot handler
func NewRobotHandler(sessions SessionManager) RobotHandler {
	return &RobotHandlerImpl{sessions: sessions}
}

// HandleOpenRobot opens a session for an uploaded file or a local path
func (h *RobotHandlerImpl) HandleOpenRobot(c echo.Context) error {
	var req session.OpenRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.FileID == "" && req.Path == "" {
		return NewValidationError("fileId")
	}

	sess, err := h.sessions.Open(c.Request().Context(), req)
	if err != nil {
		return FromError("failed to open robot", err)
	}
	return c.JSON(http.StatusCreated, sess)
}

// HandleListRobots lists open sessions
func (h *RobotHandlerImpl) HandleListRobots(c echo.Context) error {
	return c.JSON(http.StatusOK, h.sessions.List())
}

// HandleGetRobot returns session metadata
func (h *RobotHandlerImpl) HandleGetRobot(c echo.Context) error {
	id := c.Param("id")
	sess, ok := h.sessions.Get(id)
	if !ok {
		return NewNotFoundError("robot", id)
	}
	return c.JSON(http.StatusOK, sess)
}

// HandleCloseRobot ends a session
func (h *RobotHandlerImpl) HandleCloseRobot(c echo.Context) error {
	id := c.Param("id")
	if err := h.sessions.Close(c.Request().Context(), id); err != nil {
		return FromError("failed to close robot", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleReloadRobot re-reads the session's document from disk
func (h *RobotHandlerImpl) HandleReloadRobot(c echo.Context) error {
	sess, err := h.sessions.Reload(c.Request().Context(), c.Param("id"))
	if err != nil {
		return FromError("reload failed", err)
	}
	return c.JSON(http.StatusOK, sess)
}

// HandleKeepAlive keeps a session from being cleaned up
func (h *RobotHandlerImpl) HandleKeepAlive(c echo.Context) error {
	id := c.Param("id")
	if !h.sessions.Touch(id) {
		return NewNotFoundError("robot", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleGetModel returns the parsed robot with its current joint values
func (h *RobotHandlerImpl) HandleGetModel(c echo.Context) error {
	robot, err := h.sessions.Robot(c.Param("id"))
	if err != nil {
		return FromError("failed to load model", err)
	}
	return c.JSON(http.StatusOK, robot)
}

// HandleGetTree returns the kinematic tree
func (h *RobotHandlerImpl) HandleGetTree(c echo.Context) error {
	tree, err := h.sessions.Tree(c.Param("id"))
	if err != nil {
		return FromError("failed to build tree", err)
	}
	return c.JSON(http.StatusOK, tree)
}

// HandleGetControls returns the actuation range of every movable joint
func (h *RobotHandlerImpl) HandleGetControls(c echo.Context) error {
	controls, err := h.sessions.Controls(c.Param("id"))
	if err != nil {
		return FromError("failed to list controls", err)
	}
	return c.JSON(http.StatusOK, controls)
}
