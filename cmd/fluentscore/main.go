package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"

	"github.com/cbegin/fluentscore-go"
)

const defaultScore = "C C G G A A G/2 F F E E D D C/2"

// logger is the package-wide structured logger.
var logger = slog.Default()

// initLogger configures the shared slog logger and calls slog.SetDefault so
// the stdlib log package also routes through the same handler.
func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

func main() {
	// A missing .env is fine; the environment and flags still apply.
	_ = godotenv.Load()

	var (
		sampleRate = flag.Int("sample-rate", envInt("FLUENTSCORE_SAMPLE_RATE", fluentscore.DefaultSampleRate), "output sample rate")
		soundFont  = flag.String("soundfont", os.Getenv("FLUENTSCORE_SOUNDFONT"), "path to an .sf2 SoundFont (built-in synth when empty)")
		inline     = flag.String("score", "", "inline score text")
		outDir     = flag.String("out", "", "output directory (defaults to each score's directory)")
		writeWAV   = flag.Bool("wav", true, "write a 16-bit WAV file per score")
		floatWAV   = flag.Bool("float", false, "write 32-bit float WAV instead of 16-bit")
		writeMIDI  = flag.Bool("midi", false, "also write a Standard MIDI File per score")
		play       = flag.Bool("play", false, "play each rendered score")
		check      = flag.Bool("check", false, "parse and validate only")
		reverb     = flag.Bool("reverb", false, "add master reverb")
		compress   = flag.Bool("compress", false, "add master compressor")
		normalize  = flag.Float64("normalize", 0, "normalize the mix to this peak (0 = off)")
		jobs       = flag.Int("jobs", runtime.NumCPU(), "scores rendered in parallel")
		debug      = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()
	initLogger(*debug)

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
		}); err != nil {
			logger.Warn("sentry disabled", "err", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	inputs, err := collectInputs(flag.Args(), *inline)
	if err != nil {
		log.Fatal(err)
	}

	opts := []fluentscore.Option{
		fluentscore.WithSampleRate(*sampleRate),
		fluentscore.WithLogger(logger),
	}
	if *soundFont != "" {
		sf, err := fluentscore.LoadSoundFont(*soundFont)
		if err != nil {
			log.Fatal(err)
		}
		opts = append(opts, fluentscore.WithSoundFont(sf))
	}
	if *compress {
		opts = append(opts, fluentscore.WithCompressor(fluentscore.DefaultCompressor()))
	}
	if *reverb {
		opts = append(opts, fluentscore.WithReverb(fluentscore.DefaultReverb()))
	}
	if *normalize > 0 {
		opts = append(opts, fluentscore.WithNormalize(float32(*normalize)))
	}

	r := &renderer{
		opts:       opts,
		sampleRate: *sampleRate,
		outDir:     *outDir,
		wav:        *writeWAV && !*check,
		floatWAV:   *floatWAV,
		midi:       *writeMIDI && !*check,
		check:      *check,
	}
	results := r.renderAll(inputs, *jobs)

	failed := 0
	for _, res := range results {
		if res.err != nil {
			failed++
			continue
		}
		fmt.Println(res.summary())
	}

	if *play && !*check {
		pl, err := fluentscore.NewPlayer(opts...)
		if err != nil {
			log.Fatal(err)
		}
		for _, res := range results {
			if res.err != nil || res.buf == nil {
				continue
			}
			fmt.Printf("playing %s\n", res.input.name)
			if err := pl.PlayBuffer(res.buf); err != nil {
				log.Fatal(err)
			}
			pl.Wait()
		}
	}

	if failed > 0 {
		sentry.Flush(2 * time.Second)
		log.Fatalf("%d of %d scores failed", failed, len(results))
	}
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("ignoring invalid integer", "key", key, "value", v)
		return fallback
	}
	return n
}
