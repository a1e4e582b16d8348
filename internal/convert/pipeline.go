// Package convert runs subtitle conversions: read, retime, resolve against
// the video's frame timebase, write.
package convert

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mgpai22/subshift/internal/retime"
	"github.com/mgpai22/subshift/internal/subtitle"
	"github.com/mgpai22/subshift/internal/timebase"
	"github.com/mgpai22/subshift/internal/timecode"
	"github.com/mgpai22/subshift/internal/video"
	"go.uber.org/zap"
)

// Pipeline converts subtitle files one at a time. Frame indexes, and
// failures to build them, are kept for the pipeline's lifetime, so a
// Pipeline is not safe for concurrent use.
type Pipeline struct {
	Frames video.FrameOpener
	// Video is the timebase source. Empty means look for a companion video
	// next to each input.
	Video       string
	Transform   retime.Transform
	ReadOptions subtitle.ReadOptions
	Logger      *zap.SugaredLogger

	indexes  map[string]*timebase.Index
	failures map[string]error
}

// Outcome is the result of converting one input.
type Outcome struct {
	Input   string
	Output  string
	Entries int
	PastEnd int // boundaries written as timebase.PastEnd
	Err     error
}

type target struct {
	path    string
	grammar subtitle.Grammar
}

func (p *Pipeline) logger() *zap.SugaredLogger {
	if p.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return p.Logger
}

// BuildIndex returns the frame index of videoPath, probing it on first
// request. A failed probe is not retried for the same video.
func (p *Pipeline) BuildIndex(ctx context.Context, videoPath string) (*timebase.Index, error) {
	key := absPath(videoPath)
	if idx, ok := p.indexes[key]; ok {
		return idx, nil
	}
	if err, ok := p.failures[key]; ok {
		return nil, err
	}

	idx, err := p.buildIndex(ctx, videoPath)
	if err != nil {
		// cancellation says nothing about the video itself
		if ctx.Err() == nil {
			if p.failures == nil {
				p.failures = make(map[string]error)
			}
			p.failures[key] = err
		}
		return nil, err
	}

	if p.indexes == nil {
		p.indexes = make(map[string]*timebase.Index)
	}
	p.indexes[key] = idx
	return idx, nil
}

func (p *Pipeline) buildIndex(ctx context.Context, videoPath string) (*timebase.Index, error) {
	if p.Frames == nil {
		return nil, errors.New("no frame source configured")
	}

	logger := p.logger()
	logger.Infow("Indexing video frames", "video", videoPath)

	stream, err := p.Frames.OpenFrames(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to probe %s: %w", videoPath, err)
	}
	defer func() {
		_ = stream.Close()
	}()

	idx, err := timebase.Build(stream, func(frames int) {
		logger.Debugw("Indexing progress", "video", videoPath, "frames", frames)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to index %s: %w", videoPath, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.Infow("Indexed video",
		"video", videoPath,
		"frames", idx.Len(),
		"duration", timecode.Format(idx.Duration()),
	)
	return idx, nil
}

// Convert converts each input to its output. outputs holds one path or
// grammar token per input, a single token applied to every input, or
// nothing, which converts each input to the other grammar next to it.
// Every input gets an Outcome; a failure stops only that input.
func (p *Pipeline) Convert(ctx context.Context, inputs, outputs []string) []Outcome {
	outcomes := make([]Outcome, len(inputs))

	targets, err := resolveTargets(inputs, outputs)
	if err != nil {
		for i, input := range inputs {
			outcomes[i] = Outcome{Input: input, Err: err}
		}
		return outcomes
	}

	for i, input := range inputs {
		if err := ctx.Err(); err != nil {
			outcomes[i] = Outcome{Input: input, Output: targets[i].path, Err: err}
			continue
		}
		outcomes[i] = p.convertOne(ctx, input, targets[i])
		if outcomes[i].Err != nil {
			p.logger().Errorw("Conversion failed",
				"input", input,
				"error", outcomes[i].Err,
			)
		}
	}
	return outcomes
}

func (p *Pipeline) convertOne(ctx context.Context, input string, out target) Outcome {
	outcome := Outcome{Input: input, Output: out.path}
	logger := p.logger()

	opts := p.ReadOptions
	if opts.Logger == nil {
		opts.Logger = logger
	}
	doc, err := subtitle.Read(input, opts)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Entries = len(doc.Entries)

	from := doc.Grammar.Kind()
	to := out.grammar.Kind()

	var idx *timebase.Index
	if len(doc.Entries) > 0 && p.needsIndex(from, to) {
		videoPath := p.Video
		if videoPath == "" {
			videoPath, err = CompanionVideo(input)
			if err != nil {
				outcome.Err = err
				return outcome
			}
		}
		if idx, err = p.BuildIndex(ctx, videoPath); err != nil {
			outcome.Err = err
			return outcome
		}
	}

	converted, pastEnd, err := p.retimeDocument(doc, idx, out.grammar)
	if err != nil {
		outcome.Err = fmt.Errorf("%s: %w", input, err)
		return outcome
	}
	outcome.PastEnd = pastEnd

	if err := subtitle.Write(out.path, converted, out.grammar, nil); err != nil {
		outcome.Err = fmt.Errorf("failed to write %s: %w", out.path, err)
		return outcome
	}

	logger.Infow("Converted subtitles",
		"input", input,
		"output", out.path,
		"entries", outcome.Entries,
	)
	return outcome
}

// needsIndex reports whether converting between kinds needs the video's
// frame timebase. Time-coded input only needs it when the output is frame
// coded; frame-coded input needs it unless it is copied untouched.
func (p *Pipeline) needsIndex(from, to timebase.Kind) bool {
	if from != to {
		return true
	}
	return from == timebase.KindFrame && !p.Transform.IsIdentity()
}

// retimeDocument returns a copy of doc in grammar, every range converted to
// the grammar's kind. Times moved before zero by the transform are clamped
// to zero.
func (p *Pipeline) retimeDocument(
	doc *subtitle.Document,
	idx *timebase.Index,
	grammar subtitle.Grammar,
) (*subtitle.Document, int, error) {
	to := grammar.Kind()
	out := &subtitle.Document{
		SourcePath: doc.SourcePath,
		Grammar:    grammar,
		Entries:    make([]subtitle.Entry, len(doc.Entries)),
	}
	from := doc.Grammar.Kind()
	copyRanges := p.Transform.IsIdentity() && from == to
	pastEnd := 0

	for i, entry := range doc.Entries {
		out.Entries[i] = subtitle.Entry{
			Range: entry.Range,
			Lines: append([]string(nil), entry.Lines...),
		}
		if copyRanges {
			continue
		}

		var bounds [2]int64
		for j, v := range []int64{entry.Range.Start, entry.Range.End} {
			resolved, err := p.moveBoundary(v, entry.Range.Kind, to, idx)
			if err != nil {
				return nil, 0, fmt.Errorf("entry %d: %w", i+1, err)
			}
			if to == timebase.KindFrame && resolved == timebase.PastEnd {
				pastEnd++
				p.logger().Warnw("Cue boundary lies past the last video frame",
					"source", doc.SourcePath,
					"entry", i+1,
					"frame", timebase.PastEnd,
				)
			}
			bounds[j] = resolved
		}
		out.Entries[i].Range = subtitle.CueRange{
			Kind:  to,
			Start: bounds[0],
			End:   bounds[1],
		}
	}
	return out, pastEnd, nil
}

func (p *Pipeline) moveBoundary(
	v int64,
	from, to timebase.Kind,
	idx *timebase.Index,
) (int64, error) {
	us := v
	if from != timebase.KindTime {
		if idx == nil {
			return 0, errors.New("frame-coded boundary needs a video timebase")
		}
		var err error
		if us, err = idx.Resolve(v, from, timebase.KindTime); err != nil {
			return 0, err
		}
	}

	us = p.Transform.Apply(us)
	if us < 0 {
		us = 0
	}

	if to == timebase.KindTime {
		return us, nil
	}
	if idx == nil {
		return 0, errors.New("frame-coded output needs a video timebase")
	}
	return idx.Resolve(us, timebase.KindTime, to)
}

// resolveTargets pairs every input with its output path and grammar. The
// whole batch is refused when any output would replace an input or two
// inputs would write the same file, so nothing is written before the
// conflict is reported.
func resolveTargets(inputs, outputs []string) ([]target, error) {
	targets, err := pairTargets(inputs, outputs)
	if err != nil {
		return nil, err
	}
	if err := checkTargets(inputs, targets); err != nil {
		return nil, err
	}
	return targets, nil
}

func checkTargets(inputs []string, targets []target) error {
	sources := make(map[string]string, len(inputs))
	for _, input := range inputs {
		sources[absPath(input)] = input
	}

	writers := make(map[string]int, len(targets))
	for i, t := range targets {
		key := absPath(t.path)
		if src, ok := sources[key]; ok {
			msg := fmt.Sprintf("output %s for %s would overwrite input %s", t.path, inputs[i], src)
			if absPath(inputs[i]) == key {
				msg = fmt.Sprintf("output %s would overwrite its input", t.path)
			}
			return &retime.ConfigError{Msg: msg}
		}
		if j, ok := writers[key]; ok {
			return &retime.ConfigError{
				Msg: fmt.Sprintf(
					"%s and %s would both be written to %s",
					inputs[j],
					inputs[i],
					t.path,
				),
			}
		}
		writers[key] = i
	}
	return nil
}

func pairTargets(inputs, outputs []string) ([]target, error) {
	targets := make([]target, len(inputs))

	switch {
	case len(outputs) == 0:
		for i, input := range inputs {
			g, err := subtitle.GrammarFromPath(input)
			if err != nil {
				return nil, err
			}
			other := subtitle.GrammarSUB
			if g == subtitle.GrammarSUB {
				other = subtitle.GrammarSRT
			}
			targets[i] = targetFor(input, other)
		}
		return targets, nil

	case len(outputs) == 1 && len(inputs) > 1:
		g, ok := grammarToken(outputs[0])
		if !ok {
			return nil, &retime.ConfigError{
				Msg: fmt.Sprintf(
					"output path %s given for %d inputs: pass one output per input or a format (srt, sub)",
					outputs[0],
					len(inputs),
				),
			}
		}
		for i, input := range inputs {
			targets[i] = targetFor(input, g)
		}
		return targets, nil

	case len(outputs) != len(inputs):
		return nil, &retime.ConfigError{
			Msg: fmt.Sprintf(
				"%d outputs given for %d inputs",
				len(outputs),
				len(inputs),
			),
		}
	}

	for i, spec := range outputs {
		if g, ok := grammarToken(spec); ok {
			targets[i] = targetFor(inputs[i], g)
			continue
		}
		g, err := subtitle.GrammarFromPath(spec)
		if err != nil {
			return nil, &retime.ConfigError{Msg: "invalid output", Err: err}
		}
		targets[i] = target{path: spec, grammar: g}
	}
	return targets, nil
}

// grammarToken accepts a bare format name ("srt", ".sub"), not a path.
func grammarToken(spec string) (subtitle.Grammar, bool) {
	if strings.ContainsAny(spec, `/\`) {
		return "", false
	}
	trimmed := strings.TrimPrefix(spec, ".")
	if strings.Contains(trimmed, ".") {
		return "", false
	}
	return subtitle.ParseGrammar(trimmed)
}

func targetFor(input string, g subtitle.Grammar) target {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return target{
		path:    base + subtitle.GetExtensionForGrammar(g),
		grammar: g,
	}
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
