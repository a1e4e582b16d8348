package subtitle

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mgpai22/subshift/internal/timebase"
	"go.uber.org/zap"
)

// represents supported subtitle grammars
type Grammar string

const (
	GrammarSRT Grammar = "srt" // time-coded
	GrammarSUB Grammar = "sub" // frame-coded
)

// Kind is the cue range kind every document of this grammar carries.
func (g Grammar) Kind() timebase.Kind {
	if g == GrammarSUB {
		return timebase.KindFrame
	}
	return timebase.KindTime
}

// ParseGrammar accepts a CLI grammar token such as "srt" or ".sub".
func ParseGrammar(token string) (Grammar, bool) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(token), ".")) {
	case "srt":
		return GrammarSRT, true
	case "sub":
		return GrammarSUB, true
	default:
		return "", false
	}
}

// subtitle grammar based on file extension
func GrammarFromPath(path string) (Grammar, error) {
	ext := filepath.Ext(path)
	g, ok := ParseGrammar(ext)
	if !ok || ext == "" {
		return "", fmt.Errorf(
			"unsupported subtitle format %q: use .srt or .sub",
			ext,
		)
	}
	return g, nil
}

// CueRange bounds one cue. Start and End are microseconds for KindTime and
// frame ordinals for KindFrame. Start <= End is not enforced.
type CueRange struct {
	Kind  timebase.Kind
	Start int64
	End   int64
}

// represents single subtitle entry
type Entry struct {
	Range CueRange
	Lines []string
}

// represents complete subtitle track, in file order
type Document struct {
	SourcePath string
	Grammar    Grammar
	Entries    []Entry
}

// Resolver translates boundary values between range kinds.
// *timebase.Index implements it.
type Resolver interface {
	Resolve(value int64, from, to timebase.Kind) (int64, error)
}

type ReadOptions struct {
	// Charset decodes input that carries no byte-order mark. Any WHATWG
	// encoding label is accepted; empty means UTF-8.
	Charset string

	// Strict fails on malformed frame-coded lines instead of skipping them
	// with a warning.
	Strict bool

	Logger *zap.SugaredLogger
}

func (o ReadOptions) logger() *zap.SugaredLogger {
	if o.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return o.Logger
}

// GrammarError reports a malformed subtitle record.
type GrammarError struct {
	Path   string
	Line   int // 1-based
	Record int // 1-based position of the record in the file
	Text   string
	Reason string
}

func (e *GrammarError) Error() string {
	return fmt.Sprintf(
		"%s:%d: record %d: %s: %q",
		e.Path,
		e.Line,
		e.Record,
		e.Reason,
		e.Text,
	)
}
