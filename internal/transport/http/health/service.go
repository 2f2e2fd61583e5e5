// Package health exposes liveness and host-resource information.
package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"civic-eye-server-go/internal/platform/logging"
	httptransport "civic-eye-server-go/internal/transport/http"
)

// Service reports process and host health.
type Service struct {
	logger    *logging.Logger
	startedAt time.Time
}

func NewService(logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.DefaultLogger
	}
	return &Service{
		logger:    logger,
		startedAt: time.Now(),
	}
}

// Register mounts the health route on the engine root so load balancers
// can probe it without the API prefix.
func (s *Service) Register(_ context.Context, engine *gin.Engine) error {
	engine.GET("/health", s.handleGet)
	s.logger.InfoTag("HTTP", "health route registered")
	return nil
}

// handleGet returns liveness plus best-effort host metrics.
// @Summary Service health
// @Description Liveness probe with host CPU and memory usage
// @Tags Health
// @Produce json
// @Success 200 {object} httptransport.APIResponse
// @Router /health [get]
func (s *Service) handleGet(c *gin.Context) {
	payload := gin.H{
		"status":     "healthy",
		"uptime_s":   int(time.Since(s.startedAt).Seconds()),
		"goroutines": runtime.NumGoroutine(),
	}

	// Host metrics are informational; a gopsutil failure never degrades
	// the probe itself.
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		payload["cpu_percent"] = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		payload["mem_percent"] = vm.UsedPercent
		payload["mem_total"] = vm.Total
	}

	httptransport.RespondSuccess(c, http.StatusOK, payload, "ok")
}
