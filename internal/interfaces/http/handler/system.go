package handler

import (
	"runtime"
	"time"

	"github.com/academy/backend/internal/infrastructure/persistence"
	"github.com/gin-gonic/gin"
)

// SystemHandler serves the unauthenticated liveness and info endpoints.
type SystemHandler struct {
	BaseHandler
	db        *persistence.Database
	startTime time.Time
}

// NewSystemHandler creates a SystemHandler. db may be nil, in which case
// the info endpoint omits connection pool statistics.
func NewSystemHandler(db *persistence.Database) *SystemHandler {
	return &SystemHandler{
		db:        db,
		startTime: time.Now(),
	}
}

// DBPoolInfo summarizes database connection pool health.
// @name HandlerDBPoolInfo
type DBPoolInfo struct {
	OpenConnections int   `json:"open_connections" example:"10"`
	InUse           int   `json:"in_use" example:"3"`
	Idle            int   `json:"idle" example:"7"`
	WaitCount       int64 `json:"wait_count" example:"0"`
}

// SystemInfoResponse represents the system information response
// @name HandlerSystemInfoResponse
type SystemInfoResponse struct {
	Name      string      `json:"name" example:"Academy Backend API"`
	Version   string      `json:"version" example:"1.0.0"`
	GoVersion string      `json:"go_version" example:"go1.25.5"`
	Uptime    string      `json:"uptime" example:"1h30m45s"`
	DBPool    *DBPoolInfo `json:"db_pool,omitempty"`
}

// GetSystemInfo godoc
// @ID           getSystemSystemInfo
// @Summary      Get system information
// @Description  Returns version, uptime and database pool statistics
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Failure      500 {object} ErrorResponse
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      "Academy Backend API",
		Version:   "1.0.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	if h.db != nil {
		if stats, err := h.db.Stats(); err == nil {
			info.DBPool = &DBPoolInfo{
				OpenConnections: stats.OpenConnections,
				InUse:           stats.InUse,
				Idle:            stats.Idle,
				WaitCount:       stats.WaitCount,
			}
		}
	}

	h.Success(c, info)
}

// PingResponse represents the ping response
// @name HandlerPingResponse
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Ping godoc
// @ID           pingSystem
// @Summary      Ping the API
// @Description  Simple ping endpoint to check if the API is responsive
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[PingResponse]
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	response := PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	}

	h.Success(c, response)
}
