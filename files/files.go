// Package files accepts video paths from the command line, the file field and terminal drag-and-drop.
package files

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/pitchloop/pitchloop/filesystem"
	"github.com/pitchloop/pitchloop/key"
	"github.com/pitchloop/pitchloop/recent"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"
)

var (
	// ErrNotVideo is returned for files whose declared media type is not video/*.
	ErrNotVideo = errors.New("not a video file")

	// ErrNotFound is returned when the path does not name an existing regular file.
	ErrNotFound = errors.New("file not found")
)

// extra covers containers some platforms' mime tables lack.
var extra = map[string]string{
	".mp4":  "video/mp4",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".ogv":  "video/ogg",
}

func init() {
	for ext, typ := range extra {
		if mime.TypeByExtension(ext) == "" {
			_ = mime.AddExtensionType(ext, typ)
		}
	}
}

// Extensions lists the known video extensions without the leading dot, sorted.
func Extensions() []string {
	exts := lo.Map(lo.Keys(extra), func(ext string, _ int) string {
		return strings.TrimPrefix(ext, ".")
	})
	slices.Sort(exts)
	return exts
}

// MediaType returns the declared media type of path, judged by its extension.
func MediaType(path string) string {
	return mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
}

// IsVideo reports whether path declares a video/* media type.
func IsVideo(path string) bool {
	return strings.HasPrefix(MediaType(path), "video/")
}

// Clean turns raw input into a path. Terminals paste dropped files quoted or
// with escaped spaces, and may prefix file://.
func Clean(raw string) string {
	p := strings.TrimSpace(raw)
	if len(p) >= 2 && (p[0] == '\'' || p[0] == '"') && p[len(p)-1] == p[0] {
		p = p[1 : len(p)-1]
	}
	p = strings.TrimPrefix(p, "file://")
	p = strings.ReplaceAll(p, `\ `, " ")

	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// Resolve cleans raw input and checks that it names an existing video.
// The returned path is absolute.
func Resolve(raw string) (string, error) {
	p := Clean(raw)
	if p == "" {
		return "", fmt.Errorf("%w: empty path", ErrNotFound)
	}

	if !IsVideo(p) {
		return "", fmt.Errorf("%w: %s", ErrNotVideo, filepath.Base(p))
	}

	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", p, err)
	}

	info, err := filesystem.API().Stat(abs)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotFound, abs)
	}
	return abs, nil
}

// Suggest completes a partially typed path: remembered videos first, then
// videos and directories next to it whose names fuzzily match the typed base name.
func Suggest(partial string) []string {
	limit := viper.GetInt(key.FilesMaxSuggestions)
	if limit <= 0 {
		limit = 5
	}

	p := Clean(partial)
	if p == "" {
		return []string{}
	}

	suggestions := recent.SuggestMany(p)

	dir, base := filepath.Split(p)
	if dir == "" {
		dir = "."
	}

	entries, err := filesystem.API().ReadDir(dir)
	if err == nil {
		for _, entry := range entries {
			name := entry.Name()
			if strings.HasPrefix(name, ".") && !strings.HasPrefix(base, ".") {
				continue
			}
			if !entry.IsDir() && !IsVideo(name) {
				continue
			}
			if base != "" && !fuzzy.MatchFold(base, name) {
				continue
			}

			candidate := filepath.Join(dir, name)
			if entry.IsDir() {
				candidate += string(filepath.Separator)
			}
			suggestions = append(suggestions, candidate)
		}
	}

	suggestions = lo.Uniq(suggestions)
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions
}
