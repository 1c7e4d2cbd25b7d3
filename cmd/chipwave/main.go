// Command chipwave renders a note script, or the bundled demo song, to a WAV file.
//
//	chipwave [-bpm N] [-o out.wav] [-encoding int16|float32] [-mode absolute|transposed] [-demo] [script.txt]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Conceptual-Machines/chipwave/internal/config"
	"github.com/Conceptual-Machines/chipwave/internal/logger"
	"github.com/Conceptual-Machines/chipwave/internal/metrics"
	"github.com/Conceptual-Machines/chipwave/internal/pcm"
	"github.com/Conceptual-Machines/chipwave/internal/services"
	"github.com/Conceptual-Machines/chipwave/internal/synth"
	"github.com/Conceptual-Machines/chipwave/pkg/embedded"
)

const (
	exitError = 1
	exitUsage = 2
)

var errUsage = errors.New("usage")

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if err := run(context.Background(), os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(exitUsage)
		}
		logger.Error("Render failed", err, nil)
		os.Exit(exitError)
	}
}

type options struct {
	bpm      float64
	out      string
	encoding string
	mode     string
	noise    string
	seed     uint64
	demo     bool
	input    string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("chipwave", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Float64Var(&o.bpm, "bpm", 0, "tempo in beats per minute (default: CHIPWAVE_BPM, or the demo tempo with -demo)")
	fs.StringVar(&o.out, "o", "output.wav", "output WAV path")
	fs.StringVar(&o.encoding, "encoding", "", "sample encoding: float32 or int16 (default: CHIPWAVE_ENCODING)")
	fs.StringVar(&o.mode, "mode", synth.PitchAbsolute.String(), "pitch mapping: absolute or transposed")
	fs.StringVar(&o.noise, "noise", "", "noise/silence durations in seconds, comma separated (default: 0.1,30)")
	fs.Uint64Var(&o.seed, "seed", 0, "noise seed (default: CHIPWAVE_NOISE_SEED)")
	fs.BoolVar(&o.demo, "demo", false, "render the bundled demo song")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: chipwave [flags] [script.txt]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return o, errUsage
	}
	switch {
	case o.demo && fs.NArg() == 0:
	case !o.demo && fs.NArg() == 1:
		o.input = fs.Arg(0)
	default:
		fs.Usage()
		return o, errUsage
	}
	return o, nil
}

func parseNoise(s string) (synth.NoiseSpec, error) {
	var durations []float64
	for _, field := range strings.Split(s, ",") {
		d, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return synth.NoiseSpec{}, fmt.Errorf("invalid noise duration %q: %w", field, err)
		}
		durations = append(durations, d)
	}
	return synth.DurationPairs(durations...), nil
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg := config.Load()
	synthCfg, err := cfg.SynthConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	out, err := cfg.PCMOptions()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	mode, err := synth.ParsePitchMode(opts.mode)
	if err != nil {
		return err
	}
	synthCfg.PitchMode = mode
	if opts.encoding != "" {
		if out.Encoding, err = pcm.ParseEncoding(opts.encoding); err != nil {
			return err
		}
	}
	if opts.seed != 0 {
		synthCfg.NoiseSeed = opts.seed
	}

	noteScript := embedded.DemoScript
	songName := "demo"
	if opts.demo {
		synthCfg.TempoBPM = embedded.DemoBPM
	} else {
		if noteScript, err = os.ReadFile(opts.input); err != nil {
			return fmt.Errorf("failed to read script: %w", err)
		}
		songName = strings.TrimSuffix(filepath.Base(opts.input), filepath.Ext(opts.input))
	}
	if opts.bpm != 0 {
		synthCfg.TempoBPM = opts.bpm
	}

	noise := services.UploadNoise()
	if opts.demo {
		noise = synth.DurationPairs(embedded.DemoNoiseSections...)
	}
	if opts.noise != "" {
		if noise, err = parseNoise(opts.noise); err != nil {
			return err
		}
	}

	out.Metadata = &pcm.Metadata{
		Title:    songName,
		Comments: fmt.Sprintf("bpm=%g", synthCfg.TempoBPM),
	}

	recorder := metrics.NewRecorder(nil, nil)
	svc := services.NewRenderService(synthCfg, out, recorder)
	log.Printf("🎼 Rendering %s at %.1f bpm (%s, %s)", songName, synthCfg.TempoBPM, mode, out.Encoding)

	res, err := svc.RenderScript(ctx, noteScript, services.RenderRequest{
		Noise:  noise,
		Synth:  synthCfg,
		Output: out,
		Source: services.SourceCLI,
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(opts.out, res.Audio, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.out, err)
	}

	diag := res.Diagnostics
	log.Printf("✅ Wrote %s: %d samples (%.2fs), track lengths %v, %d clipped",
		opts.out, diag.MixLength, float64(diag.MixLength)/float64(synthCfg.SampleRateHz),
		diag.TrackLengths, diag.ClippedSamples)
	for _, w := range diag.Warnings {
		log.Printf("⚠️  %s", w)
	}
	return nil
}
