package handler

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence"
	"github.com/cmlibra71/keenan-group-channels/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Health statuses.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

const healthCheckTimeout = 3 * time.Second

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// DatabaseProbe is the part of the database the health check needs.
type DatabaseProbe interface {
	Ping(ctx context.Context) error
	Stats() (persistence.ConnectionStats, error)
}

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	channelID int64
	startTime time.Time
	db        DatabaseProbe
	checks    map[string]HealthCheck
}

// SystemOption configures a SystemHandler.
type SystemOption func(*SystemHandler)

// WithVersion sets the build version reported by health and info.
func WithVersion(version string) SystemOption {
	return func(h *SystemHandler) { h.version = version }
}

// WithChannel reports the storefront channel this process serves.
func WithChannel(channelID int64) SystemOption {
	return func(h *SystemHandler) { h.channelID = channelID }
}

// WithDatabase adds the database ping and pool statistics to health output.
func WithDatabase(db DatabaseProbe) SystemOption {
	return func(h *SystemHandler) { h.db = db }
}

// WithHealthCheck adds a named dependency probe.
func WithHealthCheck(name string, check HealthCheck) SystemOption {
	return func(h *SystemHandler) { h.checks[name] = check }
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name string, opts ...SystemOption) *SystemHandler {
	h := &SystemHandler{
		name:      name,
		version:   "dev",
		startTime: time.Now(),
		checks:    make(map[string]HealthCheck),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Health godoc
// @ID           getHealth
// @Summary      Health check
// @Description  Pings the database and any other configured dependency. Responds 503 when one of them fails.
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.HealthResponse
// @Failure      503 {object} dto.HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	resp := dto.HealthResponse{
		Status:  StatusHealthy,
		Time:    time.Now().UTC().Format(time.RFC3339),
		Checks:  make(map[string]string, len(h.checks)+1),
		Version: h.version,
		Channel: h.channelID,
	}

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			resp.Checks["database"] = err.Error()
			resp.Status = StatusUnhealthy
		} else {
			resp.Checks["database"] = "ok"
		}
		if stats, err := h.db.Stats(); err == nil {
			resp.Database = &dto.DatabaseStats{
				OpenConnections: stats.OpenConnections,
				InUse:           stats.InUse,
				Idle:            stats.Idle,
			}
		}
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = StatusUnhealthy
			continue
		}
		resp.Checks[name] = "ok"
	}

	status := http.StatusOK
	if resp.Status != StatusHealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name" example:"keenan-group-channels"`
	Version   string `json:"version" example:"1.4.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// GetSystemInfo godoc
// @ID           getSystemInfo
// @Summary      Get system information
// @Description  Returns the service name, version and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response
// @Failure      401 {object} dto.ErrorResponse
// @Security     APIKeyAuth
// @Router       /api/v3/system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Ping godoc
// @ID           pingSystem
// @Summary      Ping the API
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response
// @Security     APIKeyAuth
// @Router       /api/v3/system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{
		Message:   "pong",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
