package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/mgpai22/subshift/internal/timebase"
)

var subLineRegex = regexp.MustCompile(`^\{(\d+)\}\{(\d+)\}(.*)$`)

// parseSUB reads one {start}{end}text|text record per line. Each line stands
// alone, so malformed lines are skipped with a warning unless opts.Strict.
func parseSUB(r io.Reader, path string, opts ReadOptions) (*Document, error) {
	doc := &Document{SourcePath: path, Grammar: GrammarSUB}
	log := opts.logger()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNum := 0

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if strings.TrimSpace(line) == "" {
			continue
		}

		matches := subLineRegex.FindStringSubmatch(strings.TrimRight(line, " \t"))
		var start, end int64
		var err error
		if matches != nil {
			start, err = strconv.ParseInt(matches[1], 10, 64)
			if err == nil {
				end, err = strconv.ParseInt(matches[2], 10, 64)
			}
		}

		if matches == nil || err != nil {
			if opts.Strict {
				return nil, &GrammarError{
					Path:   path,
					Line:   lineNum,
					Record: len(doc.Entries) + 1,
					Text:   line,
					Reason: "expected {start}{end}text",
				}
			}
			log.Warnw("Skipping malformed SUB line",
				"file", path,
				"line", lineNum,
				"text", line,
			)
			continue
		}

		var lines []string
		if matches[3] != "" {
			lines = strings.Split(matches[3], "|")
		}

		doc.Entries = append(doc.Entries, Entry{
			Range: CueRange{Kind: timebase.KindFrame, Start: start, End: end},
			Lines: lines,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SUB file: %w", err)
	}

	return doc, nil
}

// writes one line per entry; boundaries that cannot be resolved to a frame
// are written as timebase.PastEnd
func writeSUB(w io.Writer, doc *Document, resolver Resolver) error {
	bw := bufio.NewWriter(w)

	for i, entry := range doc.Entries {
		if entry.Range.Kind != timebase.KindFrame && resolver == nil {
			return fmt.Errorf(
				"entry %d: converting %s ranges to frames requires a video timebase",
				i+1,
				entry.Range.Kind,
			)
		}
		start, end := subFrames(entry.Range, resolver)
		fmt.Fprintf(bw, "{%d}{%d}%s\n", start, end, strings.Join(entry.Lines, "|"))
	}

	return bw.Flush()
}

func subFrames(r CueRange, resolver Resolver) (int64, int64) {
	if r.Kind == timebase.KindFrame {
		return r.Start, r.End
	}
	return frameOrPastEnd(r.Start, r.Kind, resolver),
		frameOrPastEnd(r.End, r.Kind, resolver)
}

func frameOrPastEnd(v int64, from timebase.Kind, resolver Resolver) int64 {
	f, err := resolver.Resolve(v, from, timebase.KindFrame)
	if err != nil {
		return timebase.PastEnd
	}
	return f
}
