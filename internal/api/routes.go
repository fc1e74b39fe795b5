// routes.go - Route registration helpers
package api

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/urdf-visualizer/backend/internal/storage"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store      storage.Store
	SessionMgr SessionManager
	Logger     *slog.Logger
	Version    string
}

// Handlers holds all handler instances
type Handlers struct {
	Health     HealthHandler
	Upload     UploadHandler
	Robot      RobotHandler
	Kinematics KinematicsHandler
	Mesh       MeshHandler
	WebSocket  *WebSocketHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:     NewHealthHandler(deps.Version, deps.SessionMgr),
		Upload:     NewUploadHandler(deps.Store),
		Robot:      NewRobotHandler(deps.SessionMgr),
		Kinematics: NewKinematicsHandler(deps.SessionMgr),
		Mesh:       NewMeshHandler(deps.SessionMgr),
		WebSocket:  NewWebSocketHandler(deps.SessionMgr, deps.Logger),
	}
}

// RouteOptions toggles optional routes
type RouteOptions struct {
	AllowFileDeletion bool
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers, opts RouteOptions) {
	api := e.Group("/api")

	api.GET("/health", handlers.Health.HandleHealth)

	// Document files
	files := api.Group("/files")
	files.POST("/upload", handlers.Upload.HandleUploadFile)
	files.POST("/upload/binary", handlers.Upload.HandleUploadBinary)
	files.GET("/recent", handlers.Upload.HandleGetRecentFiles)
	files.GET("/:id", handlers.Upload.HandleGetFile)
	files.PUT("/:id", handlers.Upload.HandleRenameFile)
	if opts.AllowFileDeletion {
		files.DELETE("/:id", handlers.Upload.HandleDeleteFile)
	}

	// Robot sessions
	robots := api.Group("/robots")
	robots.POST("", handlers.Robot.HandleOpenRobot)
	robots.GET("", handlers.Robot.HandleListRobots)
	robots.GET("/:id", handlers.Robot.HandleGetRobot)
	robots.DELETE("/:id", handlers.Robot.HandleCloseRobot)
	robots.POST("/:id/reload", handlers.Robot.HandleReloadRobot)
	robots.POST("/:id/keepalive", handlers.Robot.HandleKeepAlive)
	robots.GET("/:id/model", handlers.Robot.HandleGetModel)
	robots.GET("/:id/tree", handlers.Robot.HandleGetTree)
	robots.GET("/:id/controls", handlers.Robot.HandleGetControls)

	// Actuation and poses
	robots.PUT("/:id/joints", handlers.Kinematics.HandleSetJoints)
	robots.POST("/:id/joints/reset", handlers.Kinematics.HandleResetJoints)
	robots.POST("/:id/presets", handlers.Kinematics.HandleApplyPreset)
	robots.GET("/:id/transforms", handlers.Kinematics.HandleGetTransforms)
	robots.GET("/:id/transforms/msgpack", handlers.Kinematics.HandleGetTransformsMsgpack)
	robots.GET("/:id/frames", handlers.Kinematics.HandleGetFrames)
	robots.GET("/:id/history", handlers.Kinematics.HandleGetHistory)

	// Meshes
	robots.GET("/:id/meshes", handlers.Mesh.HandleGetMeshes)
	robots.GET("/:id/package", handlers.Mesh.HandleGetPackageTree)

	// Live actuation
	api.GET("/ws/robots/:id", handlers.WebSocket.HandleWebSocket)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo) {
	e.HTTPErrorHandler = ErrorHandler
}
