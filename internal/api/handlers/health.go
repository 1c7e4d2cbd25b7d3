package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/chipwave/internal/services"
)

type HealthHandler struct {
	svc *services.RenderService
}

func NewHealthHandler(svc *services.RenderService) *HealthHandler {
	return &HealthHandler{svc: svc}
}

// HealthCheck returns the health status of the API and the render defaults
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	cfg := h.svc.Defaults()
	out := h.svc.Output()

	status := "healthy"
	engine := gin.H{
		"tempo_bpm":          cfg.TempoBPM,
		"base_frequency_hz":  cfg.BaseFrequencyHz,
		"sample_rate_hz":     cfg.SampleRateHz,
		"pitch_mode":         cfg.PitchMode.String(),
		"transpose":          cfg.Transpose,
		"encoding":           out.Encoding.String(),
		"max_render_seconds": cfg.MaxRenderSeconds,
	}
	if err := cfg.Validate(); err != nil {
		status = "degraded"
		engine["error"] = err.Error()
	}

	c.JSON(http.StatusOK, gin.H{
		"status": status,
		"engine": engine,
	})
}
