package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mgpai22/subshift/internal/video"
)

// CompanionVideo finds the video a subtitle file belongs to: a video in the
// same directory named like the subtitle without its extension. Language
// suffixes are dropped one at a time, so "movie.en.srt" matches "movie.mkv".
func CompanionVideo(subPath string) (string, error) {
	dir := filepath.Dir(subPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to list %s: %w", dir, err)
	}

	videos := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || !video.IsVideoFile(e.Name()) {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if _, ok := videos[stem]; !ok {
			videos[stem] = e.Name()
		}
	}

	name := filepath.Base(subPath)
	for stem := strings.TrimSuffix(name, filepath.Ext(name)); stem != ""; {
		if match, ok := videos[stem]; ok {
			return filepath.Join(dir, match), nil
		}
		ext := filepath.Ext(stem)
		if ext == "" {
			break
		}
		stem = strings.TrimSuffix(stem, ext)
	}

	return "", fmt.Errorf(
		"no video found for %s: pass one with --video",
		subPath,
	)
}

// CompanionSubtitles lists the .srt and .sub files next to videoPath whose
// names start with the video's name, sorted.
func CompanionSubtitles(videoPath string) ([]string, error) {
	base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
	pattern := escapeGlob(base)

	var found []string
	for _, ext := range []string{".srt", ".sub"} {
		matches, err := filepath.Glob(pattern + "*" + ext)
		if err != nil {
			return nil, fmt.Errorf("failed to search subtitles: %w", err)
		}
		found = append(found, matches...)
	}
	sort.Strings(found)
	return found, nil
}

// escapeGlob quotes pattern metacharacters. Windows patterns have no
// escape character, so paths are used as is there.
func escapeGlob(path string) string {
	if filepath.Separator == '\\' {
		return path
	}
	var b strings.Builder
	for _, r := range path {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
