package subtitle

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/mgpai22/subshift/internal/segment"
	"github.com/mgpai22/subshift/internal/timebase"
	"github.com/mgpai22/subshift/internal/timecode"
)

var (
	srtIndexRegex  = regexp.MustCompile(`^\d+$`)
	srtTimingRegex = regexp.MustCompile(
		`^(\d+:\d{2}:\d{2}[,.]\d{3})\s*-->\s*(\d+:\d{2}:\d{2}[,.]\d{3})(?:\s.*)?$`,
	)
)

// parseSRT reads blank-line separated records. The first malformed record
// aborts the whole read: every later cue depends on the boundaries before it.
func parseSRT(r io.Reader, path string) (*Document, error) {
	doc := &Document{SourcePath: path, Grammar: GrammarSRT}
	records := segment.NewReader(r, segment.Blank)

	for {
		lines, err := records.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading SRT file: %w", err)
		}
		if len(lines) == 0 {
			continue
		}

		record := len(doc.Entries) + 1
		start := records.StartLine()

		if !srtIndexRegex.MatchString(strings.TrimSpace(lines[0])) {
			return nil, &GrammarError{
				Path:   path,
				Line:   start,
				Record: record,
				Text:   lines[0],
				Reason: "expected sequence number",
			}
		}

		if len(lines) < 2 {
			return nil, &GrammarError{
				Path:   path,
				Line:   start,
				Record: record,
				Text:   lines[0],
				Reason: "missing timing line",
			}
		}

		matches := srtTimingRegex.FindStringSubmatch(strings.TrimSpace(lines[1]))
		if matches == nil {
			return nil, &GrammarError{
				Path:   path,
				Line:   start + 1,
				Record: record,
				Text:   lines[1],
				Reason: "expected HH:MM:SS,mmm --> HH:MM:SS,mmm",
			}
		}

		startTime, err := timecode.Parse(matches[1])
		if err != nil {
			return nil, fmt.Errorf(
				"invalid start timestamp at line %d: %w",
				start+1,
				err,
			)
		}
		endTime, err := timecode.Parse(matches[2])
		if err != nil {
			return nil, fmt.Errorf(
				"invalid end timestamp at line %d: %w",
				start+1,
				err,
			)
		}

		doc.Entries = append(doc.Entries, Entry{
			Range: CueRange{
				Kind:  timebase.KindTime,
				Start: startTime,
				End:   endTime,
			},
			// a cue without text is kept so empty SUB cues survive conversion
			Lines: trimTrailingBlank(lines[2:]),
		})
	}

	return doc, nil
}

// writes the document as SubRip, renumbering records from 1
func writeSRT(w io.Writer, doc *Document, resolver Resolver) error {
	bw := bufio.NewWriter(w)

	for i, entry := range doc.Entries {
		start, end, err := resolveRange(entry.Range, timebase.KindTime, resolver)
		if err != nil {
			return fmt.Errorf("entry %d: %w", i+1, err)
		}
		if start < 0 || end < 0 {
			return fmt.Errorf(
				"entry %d: negative time cannot be written to SRT",
				i+1,
			)
		}

		fmt.Fprintf(bw, "%d\n", i+1)
		fmt.Fprintf(bw, "%s --> %s\n", timecode.Format(start), timecode.Format(end))
		for _, line := range entry.Lines {
			bw.WriteString(line)
			bw.WriteString("\n")
		}
		bw.WriteString("\n")
	}

	return bw.Flush()
}

func trimTrailingBlank(lines []string) []string {
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return append([]string(nil), lines[:end]...)
}

func resolveRange(
	r CueRange,
	to timebase.Kind,
	resolver Resolver,
) (int64, int64, error) {
	if r.Kind == to {
		return r.Start, r.End, nil
	}
	if resolver == nil {
		return 0, 0, fmt.Errorf(
			"converting %s ranges to %s requires a video timebase",
			r.Kind,
			to,
		)
	}
	start, err := resolver.Resolve(r.Start, r.Kind, to)
	if err != nil {
		return 0, 0, err
	}
	end, err := resolver.Resolve(r.End, r.Kind, to)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}
