package vision

import (
	"strings"
	"time"
)

// headerDelimiter opens and closes the document header block.
const headerDelimiter = "---"

// SplitDocument isolates the leading delimited header block from the rest
// of a document. The first line whose trimmed content is the delimiter
// opens the block, the second closes it; lines between them are header
// lines and everything after the closing delimiter is body. Fewer than
// two delimiters means the document is headerless: the whole input
// becomes body and every header field keeps its default.
func SplitDocument(text string) VisionDocument {
	return splitDocument(text, time.Now())
}

func splitDocument(text string, now time.Time) VisionDocument {
	doc := VisionDocument{
		Header: DocumentHeader{Version: "1.0", Created: now, Updated: now},
	}

	lines := strings.Split(text, "\n")
	first, second := -1, -1
	for i, line := range lines {
		if strings.TrimSpace(line) != headerDelimiter {
			continue
		}
		if first == -1 {
			first = i
		} else {
			second = i
			break
		}
	}
	if second == -1 {
		doc.Body = text
		return doc
	}

	for _, line := range lines[first+1 : second] {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		applyHeaderField(&doc.Header, strings.ToLower(strings.TrimSpace(key)), strings.TrimSpace(value))
	}
	doc.Body = strings.Join(lines[second+1:], "\n")
	return doc
}

// applyHeaderField sets a recognized header key. Unknown keys and values
// that fail to parse are ignored, leaving the defaults in place.
func applyHeaderField(h *DocumentHeader, key, value string) {
	switch key {
	case "version":
		if value != "" {
			h.Version = value
		}
	case "created":
		if t, ok := parseHeaderTime(value); ok {
			h.Created = t
		}
	case "updated":
		if t, ok := parseHeaderTime(value); ok {
			h.Updated = t
		}
	}
}

// parseHeaderTime accepts RFC 3339 first, then the zone-less and
// date-only forms hand-edited documents tend to carry.
func parseHeaderTime(value string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
