package handlers

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/chipwave/internal/metrics"
)

// RenderTotals exposes process-lifetime render counters
type RenderTotals interface {
	Snapshot() metrics.RenderSnapshot
}

type MetricsHandler struct {
	startTime time.Time
	version   string
	renders   RenderTotals
}

func NewMetricsHandler(version string, renders RenderTotals) *MetricsHandler {
	return &MetricsHandler{
		startTime: time.Now(),
		version:   version,
		renders:   renders,
	}
}

const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
)

// formatUptime formats the uptime duration with seconds rounded to 2 decimal places
func formatUptime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % secondsPerMinute
	seconds := d.Seconds() - float64(hours*secondsPerHour) - float64(minutes*secondsPerMinute)

	if hours > 0 {
		return fmt.Sprintf("%dh%dm%.2fs", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm%.2fs", minutes, seconds)
	}
	return fmt.Sprintf("%.2fs", seconds)
}

type MetricsResponse struct {
	Status    string                 `json:"status"`
	Uptime    string                 `json:"uptime"`
	Timestamp string                 `json:"timestamp"`
	Version   string                 `json:"version"`
	StartTime string                 `json:"start_time"`
	System    SystemMetrics          `json:"system"`
	API       map[string]interface{} `json:"api"`
	Renders   metrics.RenderSnapshot `json:"renders"`
}

type SystemMetrics struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAllocMB   uint64 `json:"mem_alloc_mb"`
	MemTotalMB   uint64 `json:"mem_total_mb"`
	NumGC        uint32 `json:"num_gc"`
}

const (
	bytesToMB = 1024 * 1024
)

func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	uptime := time.Since(h.startTime)

	resp := MetricsResponse{
		Status:    "healthy",
		Uptime:    formatUptime(uptime),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		StartTime: h.startTime.UTC().Format(time.RFC3339),
		System: SystemMetrics{
			GoVersion:    runtime.Version(),
			NumGoroutine: runtime.NumGoroutine(),
			MemAllocMB:   mem.Alloc / bytesToMB,
			MemTotalMB:   mem.TotalAlloc / bytesToMB,
			NumGC:        mem.NumGC,
		},
		API: map[string]interface{}{
			"version": apiVersion,
			"endpoints": []string{
				"POST /api/v1/render/script",
				"POST /api/v1/render/table",
			},
		},
	}
	if h.renders != nil {
		resp.Renders = h.renders.Snapshot()
	}

	c.JSON(http.StatusOK, resp)
}
