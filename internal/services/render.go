package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Conceptual-Machines/chipwave/internal/logger"
	"github.com/Conceptual-Machines/chipwave/internal/metrics"
	"github.com/Conceptual-Machines/chipwave/internal/pcm"
	"github.com/Conceptual-Machines/chipwave/internal/script"
	"github.com/Conceptual-Machines/chipwave/internal/synth"
)

// Render sources, used as metric dimensions
const (
	SourceScript = "script"
	SourceTable  = "table"
	SourceCLI    = "cli"
)

// Track slots in Diagnostics.TrackLengths
const (
	trackMelody = iota
	trackBase
	trackBase2
	trackNoise
	numTracks
)

// UploadNoise is the ambience used for uploaded scripts, which carry no
// noise section: a 0.1 s burst followed by 30 s of silence.
func UploadNoise() synth.NoiseSpec {
	return synth.DurationPairs(0.1, 30)
}

// Recorder receives one RenderStats per pipeline run
type Recorder interface {
	RecordRender(ctx context.Context, stats metrics.RenderStats)
}

// RenderRequest is everything one render needs; nothing is filled in
// implicitly except Output.SampleRate, which follows Synth when zero.
type RenderRequest struct {
	Melody synth.Track
	Base   synth.Track
	Base2  synth.Track
	Noise  synth.NoiseSpec

	Synth  synth.Config
	Output pcm.Options

	Source string
}

// Diagnostics exposes the recoverable conditions of a render
type Diagnostics struct {
	RenderID       string        `json:"render_id"`
	TrackLengths   []int         `json:"track_lengths"`
	MixLength      int           `json:"mix_length"`
	LengthMismatch bool          `json:"length_mismatch"`
	ClippedSamples int           `json:"clipped_samples"`
	Warnings       []string      `json:"warnings,omitempty"`
	Duration       time.Duration `json:"-"`
}

// RenderResult carries the encoded file and the mixed samples it was built from
type RenderResult struct {
	Audio       []byte
	Samples     synth.Buffer
	Diagnostics Diagnostics
}

// RenderService runs the parse, sequence, mix and encode pipeline
type RenderService struct {
	defaults synth.Config
	output   pcm.Options
	recorder Recorder
}

// NewRenderService creates a render service. defaults and output are used by
// RenderUpload; recorder may be nil.
func NewRenderService(defaults synth.Config, output pcm.Options, recorder Recorder) *RenderService {
	return &RenderService{
		defaults: defaults,
		output:   output,
		recorder: recorder,
	}
}

// Defaults returns a copy of the service's synthesis defaults
func (s *RenderService) Defaults() synth.Config {
	return s.defaults
}

// Output returns the service's default encoder options
func (s *RenderService) Output() pcm.Options {
	return s.output
}

// RenderUpload is the upload contract: note script bytes plus tempo in,
// WAV bytes out, everything else from the service defaults.
func (s *RenderService) RenderUpload(ctx context.Context, noteScript []byte, tempoBPM float64) ([]byte, error) {
	cfg := s.defaults
	cfg.TempoBPM = tempoBPM
	res, err := s.RenderScript(ctx, noteScript, RenderRequest{
		Noise:  UploadNoise(),
		Synth:  cfg,
		Output: s.output,
		Source: SourceScript,
	})
	if err != nil {
		return nil, err
	}
	return res.Audio, nil
}

// RenderScript parses noteScript into the request's three melodic tracks
// and renders it.
func (s *RenderService) RenderScript(ctx context.Context, noteScript []byte, req RenderRequest) (*RenderResult, error) {
	if req.Source == "" {
		req.Source = SourceScript
	}
	score, err := script.ParseBytes(noteScript)
	if err != nil {
		s.record(ctx, req, metrics.RenderStats{}, false)
		return nil, err
	}
	req.Melody, req.Base, req.Base2 = score.Melody, score.Base, score.Base2
	return s.Render(ctx, req)
}

// Render synthesizes the four tracks in parallel, mixes them down to the
// shortest and encodes the result.
func (s *RenderService) Render(ctx context.Context, req RenderRequest) (*RenderResult, error) {
	start := time.Now()
	renderID := uuid.New().String()

	res, err := s.render(ctx, req, renderID)
	elapsed := time.Since(start)
	if err != nil {
		s.record(ctx, req, metrics.RenderStats{Duration: elapsed}, false)
		return nil, err
	}
	res.Diagnostics.Duration = elapsed

	s.record(ctx, req, metrics.RenderStats{
		Duration:       elapsed,
		Samples:        res.Diagnostics.MixLength,
		ClippedSamples: res.Diagnostics.ClippedSamples,
		LengthMismatch: res.Diagnostics.LengthMismatch,
	}, true)

	fields := logger.Fields{
		"render_id":       renderID,
		"source":          req.Source,
		"mix_length":      res.Diagnostics.MixLength,
		"clipped_samples": res.Diagnostics.ClippedSamples,
		"encoding":        req.Output.Encoding.String(),
	}
	for _, w := range res.Diagnostics.Warnings {
		logger.Warn("Render warning", logger.Fields{"render_id": renderID, "warning": w})
	}
	logger.LogRenderRequest(ctx, elapsed, fields)

	return res, nil
}

func (s *RenderService) render(ctx context.Context, req RenderRequest, renderID string) (*RenderResult, error) {
	cfg := req.Synth
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid synthesis config: %w", err)
	}
	out := req.Output
	if out.SampleRate == 0 {
		out.SampleRate = cfg.SampleRateHz
	}
	if out.SampleRate != cfg.SampleRateHz {
		return nil, fmt.Errorf("%w: output sample rate %d differs from synthesis rate %d",
			synth.ErrInvalidParameter, out.SampleRate, cfg.SampleRateHz)
	}

	if err := checkRenderLength(req, cfg); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Printf("🎹 Rendering %s (melody=%d base=%d base2=%d notes, %.1f bpm, %s)",
		renderID, len(req.Melody), len(req.Base), len(req.Base2), cfg.TempoBPM, cfg.PitchMode)

	var buffers [numTracks]synth.Buffer
	g, gctx := errgroup.WithContext(ctx)
	voices := []struct {
		slot  int
		name  string
		track synth.Track
		tc    synth.TrackConfig
	}{
		{trackMelody, "melody", req.Melody, cfg.Melody},
		{trackBase, "base", req.Base, cfg.Base},
		{trackBase2, "base2", req.Base2, cfg.Base2},
	}
	for _, v := range voices {
		g.Go(func() error {
			// Each voice owns its source; a noise-shaped voice never shares
			// the ambience generator.
			buf, err := synth.RenderTrack(v.track, v.tc, cfg, synth.NewSource(cfg.NoiseSeed+uint64(v.slot)+1))
			if err != nil {
				return fmt.Errorf("%s track: %w", v.name, err)
			}
			buffers[v.slot] = buf
			return gctx.Err()
		})
	}
	g.Go(func() error {
		buf, err := synth.RenderNoise(req.Noise, cfg.Noise, cfg, synth.NewSource(cfg.NoiseSeed))
		if err != nil {
			return fmt.Errorf("noise track: %w", err)
		}
		buffers[trackNoise] = buf
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	mix, report := synth.Mixdown(buffers[:]...)
	diag := Diagnostics{
		RenderID:       renderID,
		TrackLengths:   report.TrackLengths,
		MixLength:      report.Length,
		LengthMismatch: report.Mismatch,
	}
	if err := report.Err(); err != nil {
		diag.Warnings = append(diag.Warnings, err.Error())
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	audio, encReport, err := pcm.EncodeBytes(mix, out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode: %w", err)
	}
	diag.ClippedSamples = encReport.Clipped
	if err := encReport.Err(); err != nil {
		diag.Warnings = append(diag.Warnings, err.Error())
	}

	return &RenderResult{Audio: audio, Samples: mix, Diagnostics: diag}, nil
}

// checkRenderLength sizes every track before anything is allocated and
// rejects the request when one runs past cfg.MaxRenderSeconds.
func checkRenderLength(req RenderRequest, cfg synth.Config) error {
	limit := cfg.MaxRenderSamples()
	check := func(name string, n int, err error) error {
		if err != nil {
			return fmt.Errorf("%s track: %w", name, err)
		}
		if limit > 0 && n > limit {
			return fmt.Errorf("%w: %s track is %.1fs, longer than the %gs limit",
				synth.ErrInvalidParameter, name, float64(n)/float64(cfg.SampleRateHz), cfg.MaxRenderSeconds)
		}
		return nil
	}

	for _, v := range []struct {
		name  string
		track synth.Track
	}{{"melody", req.Melody}, {"base", req.Base}, {"base2", req.Base2}} {
		n, err := synth.ExpectedTrackLength(v.track, cfg)
		if err := check(v.name, n, err); err != nil {
			return err
		}
	}
	n, err := synth.ExpectedNoiseLength(req.Noise, cfg)
	return check("noise", n, err)
}

func (s *RenderService) record(ctx context.Context, req RenderRequest, stats metrics.RenderStats, success bool) {
	if s.recorder == nil {
		return
	}
	stats.Source = req.Source
	stats.Encoding = req.Output.Encoding.String()
	stats.Success = success
	s.recorder.RecordRender(ctx, stats)
}
