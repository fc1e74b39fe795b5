// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/urdf-visualizer/backend/internal/models"
	"github.com/urdf-visualizer/backend/internal/session"
)

// UploadHandler handles robot document files
type UploadHandler interface {
	HandleUploadFile(c echo.Context) error
	HandleUploadBinary(c echo.Context) error
	HandleGetRecentFiles(c echo.Context) error
	HandleGetFile(c echo.Context) error
	HandleDeleteFile(c echo.Context) error
	HandleRenameFile(c echo.Context) error
}

// RobotHandler handles robot session lifecycle and model queries
type RobotHandler interface {
	HandleOpenRobot(c echo.Context) error
	HandleListRobots(c echo.Context) error
	HandleGetRobot(c echo.Context) error
	HandleCloseRobot(c echo.Context) error
	HandleReloadRobot(c echo.Context) error
	HandleKeepAlive(c echo.Context) error
	HandleGetModel(c echo.Context) error
	HandleGetTree(c echo.Context) error
	HandleGetControls(c echo.Context) error
}

// KinematicsHandler handles actuation and pose queries
type KinematicsHandler interface {
	HandleSetJoints(c echo.Context) error
	HandleResetJoints(c echo.Context) error
	HandleApplyPreset(c echo.Context) error
	HandleGetTransforms(c echo.Context) error
	HandleGetTransformsMsgpack(c echo.Context) error
	HandleGetFrames(c echo.Context) error
	HandleGetHistory(c echo.Context) error
}

// MeshHandler handles mesh resolution and package browsing
type MeshHandler interface {
	HandleGetMeshes(c echo.Context) error
	HandleGetPackageTree(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// SessionManager defines the interface for session management
// This allows mocking in tests
type SessionManager interface {
	Open(ctx context.Context, req session.OpenRequest) (*models.RobotSession, error)
	Get(id string) (*models.RobotSession, bool)
	List() []models.RobotSession
	Close(ctx context.Context, id string) error
	Touch(id string) bool
	Reload(ctx context.Context, id string) (*models.RobotSession, error)
	CleanupOldSessions(ctx context.Context, maxAge time.Duration) int

	Robot(id string) (*models.Robot, error)
	Tree(id string) (*session.TreeView, error)
	Controls(id string) ([]models.JointControl, error)

	SetJointValues(ctx context.Context, id string, values map[string]float64) (*models.PoseSnapshot, error)
	ResetJoints(ctx context.Context, id string) (*models.PoseSnapshot, error)
	ApplyPreset(ctx context.Context, id string, preset *models.JointPreset) (*models.PoseSnapshot, error)
	Transforms(id string) (*models.PoseSnapshot, error)
	JointFrames(id string) ([]models.JointFrame, error)
	History(ctx context.Context, id, link string, limit int) ([]models.PoseSample, error)
	Subscribe(id string) (<-chan *models.PoseSnapshot, func(), error)

	Meshes(id string) ([]models.MeshReference, error)
	PackageTree(id string) (*models.FileNode, error)
}

var _ SessionManager = (*session.Manager)(nil)
