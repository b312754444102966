package patch

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrConflict reports that a patch could not be reconciled with the
// current file content.
var ErrConflict = errors.New("conflicts detected")

var hunkHeader = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// splitAfterLines splits content into lines, each keeping its trailing
// newline. The final line keeps whatever it has (possibly no newline).
// Empty content yields no lines.
func splitAfterLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// applyUnified applies unified patch text to content, verifying that
// every context and deletion line matches the content it is applied to.
// Any mismatch returns ErrConflict; partial application is never
// returned.
func applyUnified(content, patchText string) (string, error) {
	curLines := splitAfterLines(content)
	patchLines := splitAfterLines(patchText)

	var out []string
	cur := 0 // index into curLines
	i := 0

	for i < len(patchLines) {
		line := patchLines[i]

		if strings.HasPrefix(line, "--- ") || strings.HasPrefix(line, "+++ ") {
			i++
			continue
		}

		header := hunkHeader.FindStringSubmatch(line)
		if header == nil {
			// Text outside any hunk that is not a file header means the
			// patch is malformed.
			return "", ErrConflict
		}

		oldStart, _ := strconv.Atoi(header[1])
		oldCount := 1
		if header[2] != "" {
			oldCount, _ = strconv.Atoi(header[2])
		}

		// For an insertion-only hunk (count 0) the start is the line
		// after which to insert; otherwise it is the first line touched.
		target := oldStart
		if oldCount > 0 {
			target = oldStart - 1
		}
		if target < cur || target > len(curLines) {
			return "", ErrConflict
		}
		out = append(out, curLines[cur:target]...)
		cur = target
		i++

		for i < len(patchLines) {
			body := patchLines[i]
			if hunkHeader.MatchString(body) || strings.HasPrefix(body, "--- ") {
				break
			}
			if body == "" {
				i++
				continue
			}
			text := body[1:]
			switch body[0] {
			case ' ':
				if cur >= len(curLines) || !sameLine(curLines[cur], text) {
					return "", ErrConflict
				}
				out = append(out, curLines[cur])
				cur++
			case '-':
				if cur >= len(curLines) || !sameLine(curLines[cur], text) {
					return "", ErrConflict
				}
				cur++
			case '+':
				out = append(out, text)
			default:
				return "", ErrConflict
			}
			i++
		}
	}

	out = append(out, curLines[cur:]...)
	return strings.Join(out, ""), nil
}

// sameLine compares two lines ignoring the presence of a trailing
// newline, which differs only for the final line of a file.
func sameLine(a, b string) bool {
	return strings.TrimSuffix(a, "\n") == strings.TrimSuffix(b, "\n")
}
