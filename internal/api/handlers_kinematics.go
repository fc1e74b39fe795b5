// handlers_kinematics.go - Actuation and pose handlers
package api

import (
	"bytes"
	"encoding/base64"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/urdf-visualizer/backend/internal/parser"
	"github.com/vmihailenco/msgpack/v5"
)

// MIMEApplicationMsgpack is the content type of binary pose payloads.
const MIMEApplicationMsgpack = "application/msgpack"

// KinematicsHandlerImpl implements the KinematicsHandler interface
type KinematicsHandlerImpl struct {
	sessions SessionManager
}

// NewKinematicsHandler creates a new kinematics handler
func NewKinematicsHandler(sessions SessionManager) KinematicsHandler {
	return &KinematicsHandlerImpl{sessions: sessions}
}

// HandleSetJoints applies joint values and returns the resulting pose
func (h *KinematicsHandlerImpl) HandleSetJoints(c echo.Context) error {
	var req setJointsRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if len(req.Values) == 0 {
		return NewValidationError("values")
	}

	snap, err := h.sessions.SetJointValues(c.Request().Context(), c.Param("id"), req.Values)
	if err != nil {
		return FromError("failed to set joints", err)
	}
	return c.JSON(http.StatusOK, snap)
}

// HandleResetJoints zeroes every joint
func (h *KinematicsHandlerImpl) HandleResetJoints(c echo.Context) error {
	snap, err := h.sessions.ResetJoints(c.Request().Context(), c.Param("id"))
	if err != nil {
		return FromError("failed to reset joints", err)
	}
	return c.JSON(http.StatusOK, snap)
}

// HandleApplyPreset applies a YAML joint preset sent as base64 JSON
func (h *KinematicsHandlerImpl) HandleApplyPreset(c echo.Context) error {
	var req uploadFileRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.Data == "" {
		return NewValidationError("data")
	}

	decoded, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return NewBadRequestError("invalid base64 data", err)
	}

	preset, err := parser.ParsePresetFromReader(bytes.NewReader(decoded))
	if err != nil {
		return FromError("invalid preset", err)
	}
	if preset.Name == "" {
		preset.Name = req.Name
	}

	snap, err := h.sessions.ApplyPreset(c.Request().Context(), c.Param("id"), preset)
	if err != nil {
		return FromError("failed to apply preset", err)
	}
	return c.JSON(http.StatusOK, snap)
}

// HandleGetTransforms returns the world transform of every resolved link
func (h *KinematicsHandlerImpl) HandleGetTransforms(c echo.Context) error {
	snap, err := h.sessions.Transforms(c.Param("id"))
	if err != nil {
		return FromError("failed to resolve transforms", err)
	}
	return c.JSON(http.StatusOK, snap)
}

// HandleGetTransformsMsgpack returns the same pose encoded as MessagePack
func (h *KinematicsHandlerImpl) HandleGetTransformsMsgpack(c echo.Context) error {
	snap, err := h.sessions.Transforms(c.Param("id"))
	if err != nil {
		return FromError("failed to resolve transforms", err)
	}

	data, err := msgpack.Marshal(snap)
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(http.StatusOK, MIMEApplicationMsgpack, data)
}

// HandleGetFrames returns the world frame of every joint
func (h *KinematicsHandlerImpl) HandleGetFrames(c echo.Context) error {
	frames, err := h.sessions.JointFrames(c.Param("id"))
	if err != nil {
		return FromError("failed to resolve joint frames", err)
	}
	return c.JSON(http.StatusOK, frames)
}

// HandleGetHistory returns recorded positions, optionally for one link
func (h *KinematicsHandlerImpl) HandleGetHistory(c echo.Context) error {
	limit := 0
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return NewValidationError("limit")
		}
		limit = n
	}

	samples, err := h.sessions.History(c.Request().Context(), c.Param("id"), c.QueryParam("link"), limit)
	if err != nil {
		return FromError("failed to query history", err)
	}
	return c.JSON(http.StatusOK, samples)
}

type setJointsRequest struct {
	Values map[string]float64 `json:"values"`
}
