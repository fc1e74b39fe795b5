// handlers_meshes.go - Mesh resolution handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/urdf-visualizer/backend/internal/models"
)

// MeshHandlerImpl implements the MeshHandler interface
type MeshHandlerImpl struct {
	sessions SessionManager
}

// NewMeshHandler creates a new mesh handler
func NewMeshHandler(sessions SessionManager) MeshHandler {
	return &MeshHandlerImpl{sessions: sessions}
}

// HandleGetMeshes resolves every mesh reference of the robot. Unresolved
// references are reported, not treated as errors.
func (h *MeshHandlerImpl) HandleGetMeshes(c echo.Context) error {
	refs, err := h.sessions.Meshes(c.Param("id"))
	if err != nil {
		return FromError("failed to resolve meshes", err)
	}

	unresolved := 0
	for _, r := range refs {
		if r.Status == models.MeshUnresolved {
			unresolved++
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"meshes":     refs,
		"unresolved": unresolved,
	})
}

// HandleGetPackageTree lists the robot's package directory
func (h *MeshHandlerImpl) HandleGetPackageTree(c echo.Context) error {
	tree, err := h.sessions.PackageTree(c.Param("id"))
	if err != nil {
		return FromError("failed to list package", err)
	}
	return c.JSON(http.StatusOK, tree)
}
