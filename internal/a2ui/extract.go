// ABOUTME: Extracts an embedded view from free-form model output
// ABOUTME: Tolerant by design, a malformed candidate degrades to plain text

package a2ui

import "regexp"

var fencedJSON = regexp.MustCompile("(?s)```json\\s*(.*?)```")

// ExtractView scans model output for the first fenced json block and tries
// to parse it as a view. Returns nil when no block is present or the
// candidate fails validation; the caller treats the response as plain text.
func ExtractView(content string) *View {
	match := fencedJSON.FindStringSubmatch(content)
	if match == nil {
		return nil
	}

	view, err := ParseView([]byte(match[1]))
	if err != nil {
		return nil
	}
	return view
}

// StripView removes fenced json blocks from model output, so the
// conversational text can be shown alongside the rendered view.
func StripView(content string) string {
	return fencedJSON.ReplaceAllString(content, "")
}
