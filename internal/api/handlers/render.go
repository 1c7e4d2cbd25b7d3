package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/chipwave/internal/api/middleware"
	"github.com/Conceptual-Machines/chipwave/internal/config"
	"github.com/Conceptual-Machines/chipwave/internal/logger"
	"github.com/Conceptual-Machines/chipwave/internal/models"
	"github.com/Conceptual-Machines/chipwave/internal/pcm"
	"github.com/Conceptual-Machines/chipwave/internal/script"
	"github.com/Conceptual-Machines/chipwave/internal/services"
	"github.com/Conceptual-Machines/chipwave/internal/synth"
)

const (
	contentTypeWAV  = "audio/wav"
	defaultSongName = "render"

	headerRenderID     = "X-Chipwave-Render-ID"
	headerMixLength    = "X-Chipwave-Mix-Length"
	headerTrackLengths = "X-Chipwave-Track-Lengths"
	headerClipped      = "X-Chipwave-Clipped-Samples"
	headerWarning      = "X-Chipwave-Warning"
)

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

type RenderHandler struct {
	svc            *services.RenderService
	maxUploadBytes int64
}

func NewRenderHandler(cfg *config.Config, svc *services.RenderService) *RenderHandler {
	return &RenderHandler{
		svc:            svc,
		maxUploadBytes: cfg.MaxUploadBytes,
	}
}

// RenderScript renders an uploaded note script.
// Form fields: file (required), bpm (required), song_name, encoding, pitch_mode.
func (h *RenderHandler) RenderScript(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+formOverheadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.badRequest(c, "Missing note script", err)
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		h.badRequest(c, "Note script too large", fmt.Errorf("%d bytes exceeds limit of %d", fileHeader.Size, h.maxUploadBytes))
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		h.badRequest(c, "Unreadable note script", err)
		return
	}
	defer f.Close()
	noteScript, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes))
	if err != nil {
		h.badRequest(c, "Unreadable note script", err)
		return
	}

	bpm, err := strconv.ParseFloat(strings.TrimSpace(c.PostForm("bpm")), 64)
	if err != nil {
		h.badRequest(c, "Invalid bpm", err)
		return
	}

	opts := models.RenderOptions{
		SongName:  c.PostForm("song_name"),
		Encoding:  c.PostForm("encoding"),
		PitchMode: c.PostForm("pitch_mode"),
	}
	cfg, out, err := h.requestConfig(c, bpm, opts)
	if err != nil {
		h.badRequest(c, "Invalid render options", err)
		return
	}

	log.Printf("📥 Script upload: %s (%d bytes, %.1f bpm)", fileHeader.Filename, len(noteScript), bpm)

	res, err := h.svc.RenderScript(c.Request.Context(), noteScript, services.RenderRequest{
		Noise:  services.UploadNoise(),
		Synth:  cfg,
		Output: out,
		Source: services.SourceScript,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.sendAudio(c, opts.SongName, res)
}

// RenderTable renders literal note tables posted as JSON.
func (h *RenderHandler) RenderTable(c *gin.Context) {
	var req models.RenderTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body", err)
		return
	}

	melody, base, base2, err := req.Tracks()
	if err != nil {
		h.badRequest(c, "Invalid note table", err)
		return
	}
	noise, err := req.Noise.NoiseSpec()
	if err != nil {
		h.badRequest(c, "Invalid noise spec", err)
		return
	}

	var opts models.RenderOptions
	if req.Opts != nil {
		opts = *req.Opts
	}
	cfg, out, err := h.requestConfig(c, req.BPM, opts)
	if err != nil {
		h.badRequest(c, "Invalid render options", err)
		return
	}

	res, err := h.svc.Render(c.Request.Context(), services.RenderRequest{
		Melody: melody,
		Base:   base,
		Base2:  base2,
		Noise:  noise,
		Synth:  cfg,
		Output: out,
		Source: services.SourceTable,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.sendAudio(c, opts.SongName, res)
}

// requestConfig layers per-request options over the service defaults
func (h *RenderHandler) requestConfig(c *gin.Context, bpm float64, opts models.RenderOptions) (synth.Config, pcm.Options, error) {
	cfg := h.svc.Defaults()
	out := h.svc.Output()

	cfg.TempoBPM = bpm
	if opts.PitchMode != "" {
		mode, err := synth.ParsePitchMode(opts.PitchMode)
		if err != nil {
			return cfg, out, err
		}
		cfg.PitchMode = mode
	}
	if opts.Transpose != nil {
		cfg.Transpose = *opts.Transpose
	}
	if opts.BaseFrequencyHz != nil {
		cfg.BaseFrequencyHz = *opts.BaseFrequencyHz
	}
	if opts.NoiseSeed != nil {
		cfg.NoiseSeed = *opts.NoiseSeed
	}
	if err := cfg.Validate(); err != nil {
		return cfg, out, err
	}

	if opts.Encoding != "" {
		enc, err := pcm.ParseEncoding(opts.Encoding)
		if err != nil {
			return cfg, out, err
		}
		out.Encoding = enc
	}

	out.Metadata = &pcm.Metadata{
		Title:    opts.SongName,
		Artist:   middleware.RenderArtist(c),
		Comments: fmt.Sprintf("bpm=%g", bpm),
	}
	return cfg, out, nil
}

func (h *RenderHandler) sendAudio(c *gin.Context, songName string, res *services.RenderResult) {
	diag := res.Diagnostics
	c.Header(headerRenderID, diag.RenderID)
	c.Header(headerMixLength, strconv.Itoa(diag.MixLength))
	c.Header(headerTrackLengths, joinInts(diag.TrackLengths))
	c.Header(headerClipped, strconv.Itoa(diag.ClippedSamples))
	for _, w := range diag.Warnings {
		c.Writer.Header().Add(headerWarning, w)
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.wav"`, safeFilename(songName)))

	log.Printf("✅ Render %s complete: %d samples, %d clipped", diag.RenderID, diag.MixLength, diag.ClippedSamples)
	c.Data(http.StatusOK, contentTypeWAV, res.Audio)
}

func (h *RenderHandler) badRequest(c *gin.Context, msg string, err error) {
	logger.Warn(msg, mergeFields(logger.WithContext(c), logger.Fields{"error": err.Error()}))
	c.JSON(http.StatusBadRequest, models.RenderErrorResponse{
		Error:     msg,
		Message:   err.Error(),
		RequestID: c.GetString("request_id"),
	})
}

func (h *RenderHandler) renderError(c *gin.Context, err error) {
	var perr *script.ParseError
	switch {
	case errors.As(err, &perr):
		logger.Warn("Note script rejected", mergeFields(logger.WithContext(c), logger.Fields{"line": perr.Line}))
		c.JSON(http.StatusBadRequest, models.RenderErrorResponse{
			Error:     "Invalid note script",
			Message:   perr.Err.Error(),
			Line:      perr.Line,
			Text:      perr.Text,
			RequestID: c.GetString("request_id"),
		})
	case errors.Is(err, synth.ErrInvalidParameter):
		h.badRequest(c, "Invalid synthesis parameter", err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		logger.Warn("Render aborted", mergeFields(logger.WithContext(c), logger.Fields{"error": err.Error()}))
		c.JSON(http.StatusServiceUnavailable, models.RenderErrorResponse{
			Error:     "Render aborted",
			Message:   err.Error(),
			RequestID: c.GetString("request_id"),
		})
	default:
		logger.Error("Render failed", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, models.RenderErrorResponse{
			Error:     "Render failed",
			RequestID: c.GetString("request_id"),
		})
	}
}

func safeFilename(name string) string {
	name = strings.Trim(unsafeFilename.ReplaceAllString(strings.TrimSpace(name), "_"), "_")
	if name == "" {
		return defaultSongName
	}
	return name
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func mergeFields(base, extra logger.Fields) logger.Fields {
	for k, v := range extra {
		base[k] = v
	}
	return base
}
