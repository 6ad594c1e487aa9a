package theme

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	domain "github.com/oshokin/daylight-sync/internal/domain/sun"
	"github.com/oshokin/daylight-sync/internal/logger"
)

// themeReferencePattern recognizes YAML anchor references to a color scheme,
// e.g. "colors: *solarized_light_base". The prefix and suffix around the mode
// token are captured so any anchor naming convention survives the rewrite.
// The pattern is deliberately this narrow to avoid touching unrelated lines
// that merely contain the words "light" or "dark".
var themeReferencePattern = regexp.MustCompile(`colors: \*([_\w]+)(light|dark)([_\w]+)`)

// ErrNotFound is returned when the theme config file does not exist.
// The file is externally provisioned; there is no sensible anchor naming
// convention to synthesize, so it is never auto-created.
var ErrNotFound = errors.New("theme config not found")

// Rewrite reads the theme config at path, switches the mode token of every
// theme-reference line to match the target state, and writes the result back.
// All other lines are preserved byte-for-byte, as are line count and order.
func Rewrite(ctx context.Context, path string, target domain.State) error {
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, ErrNotFound)
		}

		return fmt.Errorf("stat theme config: %w", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read theme config: %w", err)
	}

	lines := splitLines(string(contents))

	rewritten := 0

	for i, line := range lines {
		updated, ok := rewriteLine(line, target)
		if !ok {
			continue
		}

		lines[i] = updated
		rewritten++
	}

	logger.DebugKV(ctx, "Rewrote theme config",
		"path", path,
		"lines", len(lines),
		"theme_references", rewritten)

	output := strings.Join(lines, "\n") + "\n"
	if err = os.WriteFile(path, []byte(output), info.Mode().Perm()); err != nil {
		return fmt.Errorf("write theme config: %w", err)
	}

	return nil
}

// rewriteLine re-synthesizes a theme-reference line with the target mode
// token, reporting whether the line matched. Non-matching lines are returned
// unchanged.
func rewriteLine(line string, target domain.State) (string, bool) {
	match := themeReferencePattern.FindStringSubmatch(line)
	if match == nil {
		return line, false
	}

	return "colors: *" + match[1] + target.ModeToken() + match[3], true
}

// splitLines splits file contents into lines the way the rewrite joins them
// back: one trailing newline is consumed here and re-added on output, so a
// newline-terminated file round-trips byte-identically.
func splitLines(contents string) []string {
	return strings.Split(strings.TrimSuffix(contents, "\n"), "\n")
}
