package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/getsentry/sentry-go"
	"github.com/hako/durafmt"
	"github.com/remeh/sizedwaitgroup"

	"github.com/cbegin/fluentscore-go"
)

type input struct {
	name string // file name without extension
	path string // empty for inline scores
	text string
}

func collectInputs(paths []string, inline string) ([]input, error) {
	if strings.TrimSpace(inline) != "" {
		return []input{{name: "score", text: inline}}, nil
	}
	if len(paths) == 0 {
		return []input{{name: "score", text: defaultScore}}, nil
	}
	inputs := make([]input, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		base := filepath.Base(p)
		inputs = append(inputs, input{
			name: strings.TrimSuffix(base, filepath.Ext(base)),
			path: p,
			text: string(data),
		})
	}
	return inputs, nil
}

type output struct {
	path string
	size int64
}

type result struct {
	input    input
	measures int
	duration time.Duration
	outputs  []output
	buf      *fluentscore.Buffer
	err      error
}

func (r result) summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d measures, %s", r.input.name, r.measures, durafmt.Parse(r.duration).LimitFirstN(2))
	for _, o := range r.outputs {
		fmt.Fprintf(&b, "\n  wrote %s (%s)", o.path, humanize.Bytes(uint64(o.size)))
	}
	return b.String()
}

type renderer struct {
	opts       []fluentscore.Option
	sampleRate int
	outDir     string
	wav        bool
	floatWAV   bool
	midi       bool
	check      bool
}

// renderAll renders every input with at most jobs in flight. Each render
// builds its own tone engine, so nothing stateful is shared between them.
func (r *renderer) renderAll(inputs []input, jobs int) []result {
	results := make([]result, len(inputs))
	swg := sizedwaitgroup.New(max(jobs, 1))
	for i, in := range inputs {
		swg.Add()
		go func(i int, in input) {
			defer swg.Done()
			hub := sentry.CurrentHub().Clone()
			ctx := sentry.SetHubOnContext(context.Background(), hub)
			results[i] = r.render(ctx, in)
			if err := results[i].err; err != nil {
				hub.CaptureException(fmt.Errorf("%s: %w", in.name, err))
				logger.Error("render failed", "score", in.name, "err", err)
			}
		}(i, in)
	}
	swg.Wait()
	return results
}

func (r *renderer) render(ctx context.Context, in input) result {
	span := sentry.StartSpan(ctx, "score.render")
	span.SetTag("score", in.name)
	defer span.Finish()

	res := result{input: in}
	s, err := fluentscore.Compile(in.text)
	if err != nil {
		span.Status = sentry.SpanStatusInvalidArgument
		res.err = err
		return res
	}
	res.measures = len(s.Measures)
	res.duration = time.Duration(s.TotalSeconds()) * time.Second
	if r.check {
		return res
	}

	opts := r.opts
	if in.path != "" {
		opts = append(opts[:len(opts):len(opts)], fluentscore.WithClipRoot(filepath.Dir(in.path)))
	}
	buf, err := fluentscore.RenderScore(s, opts...)
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		res.err = err
		return res
	}
	res.buf = buf

	if r.wav {
		o, err := writeFile(outputPath(in, r.outDir, ".wav"), func(f *os.File) error {
			if r.floatWAV {
				return fluentscore.WriteWAVFloat(f, buf, r.sampleRate)
			}
			return fluentscore.WriteWAV(f, buf, r.sampleRate)
		})
		if err != nil {
			res.err = err
			return res
		}
		res.outputs = append(res.outputs, o)
	}
	if r.midi {
		o, err := writeFile(outputPath(in, r.outDir, ".mid"), func(f *os.File) error {
			return fluentscore.ExportMIDI(f, s)
		})
		if err != nil {
			res.err = err
			return res
		}
		res.outputs = append(res.outputs, o)
	}
	span.Status = sentry.SpanStatusOK
	return res
}

func outputPath(in input, outDir, ext string) string {
	dir := outDir
	if dir == "" && in.path != "" {
		dir = filepath.Dir(in.path)
	}
	return filepath.Join(dir, in.name+ext)
}

func writeFile(path string, write func(*os.File) error) (output, error) {
	f, err := os.Create(path)
	if err != nil {
		return output{}, err
	}
	if err := write(f); err != nil {
		f.Close()
		return output{}, fmt.Errorf("write %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return output{}, err
	}
	if err := f.Close(); err != nil {
		return output{}, err
	}
	return output{path: path, size: info.Size()}, nil
}
