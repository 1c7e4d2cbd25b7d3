package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/Conceptual-Machines/chipwave/internal/pcm"
	"github.com/Conceptual-Machines/chipwave/internal/synth"
)

const defaultMaxUploadBytes = 1 << 20

// Config holds the application configuration
// Note: This is a stateless configuration - no database or auth secrets needed
// Script storage and user accounts are handled by the gateway in front of us
type Config struct {
	// Environment
	Environment string
	Port        string

	// Observability
	SentryDSN string // Sentry DSN for error tracking

	// Auth mode
	// - "none": No auth (self-hosted, local dev)
	// - "gateway": Trust X-User-* headers from the gateway
	AuthMode string

	// Render defaults, overridable per request
	TempoBPM        float64
	BaseFrequencyHz float64
	SampleRateHz    int
	PitchMode       string // "absolute" or "transposed"
	Transpose       int
	Encoding        string // "float32" or "int16"
	NoiseSeed       uint64

	// Voices
	MelodyShape     string
	MelodyAmplitude float64
	BaseShape       string
	BaseAmplitude   float64
	Base2Shape      string
	Base2Amplitude  float64
	NoiseAmplitude  float64

	// Per-track length ceiling in seconds, 0 disables it
	MaxRenderSeconds float64

	// Upload limit for note scripts
	MaxUploadBytes int64
}

func Load() *Config {
	def := synth.DefaultConfig()
	return &Config{
		Environment:      getEnv("ENVIRONMENT", "development"),
		Port:             getEnv("PORT", "8080"),
		SentryDSN:        getEnv("SENTRY_DSN", ""),
		AuthMode:         getEnv("AUTH_MODE", "none"), // Default to no auth for self-hosted
		TempoBPM:         getEnvFloat("CHIPWAVE_BPM", def.TempoBPM),
		BaseFrequencyHz:  getEnvFloat("CHIPWAVE_BASE_FREQUENCY", def.BaseFrequencyHz),
		SampleRateHz:     int(getEnvInt("CHIPWAVE_SAMPLE_RATE", int64(def.SampleRateHz))),
		// The upload path has always rendered transposed
		PitchMode:        getEnv("CHIPWAVE_PITCH_MODE", synth.PitchTransposed.String()),
		Transpose:        int(getEnvInt("CHIPWAVE_TRANSPOSE", synth.DefaultTranspose)),
		Encoding:         getEnv("CHIPWAVE_ENCODING", pcm.EncodingFloat32.String()),
		NoiseSeed:        uint64(getEnvInt("CHIPWAVE_NOISE_SEED", int64(def.NoiseSeed))),
		MelodyShape:      getEnv("CHIPWAVE_MELODY_SHAPE", def.Melody.Shape.String()),
		MelodyAmplitude:  getEnvFloat("CHIPWAVE_MELODY_AMPLITUDE", def.Melody.Amplitude),
		BaseShape:        getEnv("CHIPWAVE_BASE_SHAPE", def.Base.Shape.String()),
		BaseAmplitude:    getEnvFloat("CHIPWAVE_BASE_AMPLITUDE", def.Base.Amplitude),
		Base2Shape:       getEnv("CHIPWAVE_BASE2_SHAPE", def.Base2.Shape.String()),
		Base2Amplitude:   getEnvFloat("CHIPWAVE_BASE2_AMPLITUDE", def.Base2.Amplitude),
		NoiseAmplitude:   getEnvFloat("CHIPWAVE_NOISE_AMPLITUDE", def.Noise.Amplitude),
		MaxUploadBytes:   getEnvInt("CHIPWAVE_MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
		MaxRenderSeconds: getEnvFloat("CHIPWAVE_MAX_RENDER_SECONDS", def.MaxRenderSeconds),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		log.Printf("⚠️  Ignoring %s=%q: %v", key, value, err)
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("⚠️  Ignoring %s=%q: %v", key, value, err)
		return defaultValue
	}
	return f
}

// IsGatewayMode returns true if running behind the gateway
func (c *Config) IsGatewayMode() bool {
	return c.AuthMode == "gateway"
}

// IsProduction reports whether production-only integrations should run
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SynthConfig builds the engine configuration from the loaded values
func (c *Config) SynthConfig() (synth.Config, error) {
	mode, err := synth.ParsePitchMode(c.PitchMode)
	if err != nil {
		return synth.Config{}, err
	}

	sc := synth.Config{
		TempoBPM:         c.TempoBPM,
		BaseFrequencyHz:  c.BaseFrequencyHz,
		SampleRateHz:     c.SampleRateHz,
		PitchMode:        mode,
		Transpose:        c.Transpose,
		Noise:            synth.TrackConfig{Shape: synth.ShapeNoise, Amplitude: c.NoiseAmplitude},
		NoiseSeed:        c.NoiseSeed,
		MaxRenderSeconds: c.MaxRenderSeconds,
	}

	voices := []struct {
		name  string
		shape string
		amp   float64
		dst   *synth.TrackConfig
	}{
		{"melody", c.MelodyShape, c.MelodyAmplitude, &sc.Melody},
		{"base", c.BaseShape, c.BaseAmplitude, &sc.Base},
		{"base2", c.Base2Shape, c.Base2Amplitude, &sc.Base2},
	}
	for _, v := range voices {
		shape, err := synth.ParseShape(v.shape)
		if err != nil {
			return synth.Config{}, fmt.Errorf("%s: %w", v.name, err)
		}
		*v.dst = synth.TrackConfig{Shape: shape, Amplitude: v.amp}
	}

	if err := sc.Validate(); err != nil {
		return synth.Config{}, err
	}
	return sc, nil
}

// PCMOptions builds the encoder options from the loaded values
func (c *Config) PCMOptions() (pcm.Options, error) {
	enc, err := pcm.ParseEncoding(c.Encoding)
	if err != nil {
		return pcm.Options{}, err
	}
	return pcm.Options{SampleRate: c.SampleRateHz, Encoding: enc}, nil
}
