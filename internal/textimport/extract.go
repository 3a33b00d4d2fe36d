package textimport

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParsedItem is a URL pulled out of pasted text together with the
// best-guess title and description taken from the surrounding lines.
type ParsedItem struct {
	URL         string `json:"url"`
	Title       string `json:"parsed_title,omitempty"`
	Description string `json:"parsed_description,omitempty"`
	Order       int    `json:"order"`
}

const maxTitleLength = 100

var (
	urlPattern = regexp.MustCompile(`https?://[^\s<>()\[\]]+`)

	// Matches leading ordinal markers: "1.", "1)", "1 →", "1 ➤"
	ordinalPattern = regexp.MustCompile(`^\d+\s*[.)→➤]\s*`)
)

// trailing sentence punctuation that is almost never part of a URL
const trailingPunct = ".,;:!?)"

// ExtractURLs returns every http(s) URL found in text, deduplicated
// case-insensitively with the first occurrence's casing retained, in
// order of first appearance.
func ExtractURLs(text string) []string {
	var urls []string
	seen := make(map[string]bool)

	for _, raw := range urlPattern.FindAllString(text, -1) {
		u := strings.TrimRight(raw, trailingPunct)
		if u == "" {
			continue
		}
		key := strings.ToLower(u)
		if seen[key] {
			continue
		}
		seen[key] = true
		urls = append(urls, u)
	}

	return urls
}

// ParseTextWithContext extracts URLs and associates each with a title and
// description drawn from the non-empty lines between the previous URL and
// this one. The text is consumed left to right; context lines are never
// attributed to more than one URL.
func ParseTextWithContext(text string) []ParsedItem {
	matches := urlPattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	var items []ParsedItem
	seen := make(map[string]bool)
	cursor := 0

	for _, m := range matches {
		context := text[cursor:m[0]]
		cursor = m[1]

		u := strings.TrimRight(text[m[0]:m[1]], trailingPunct)
		if u == "" {
			continue
		}
		key := strings.ToLower(u)
		if seen[key] {
			continue
		}
		seen[key] = true

		title, description := parseContext(context)
		items = append(items, ParsedItem{
			URL:         u,
			Title:       title,
			Description: description,
			Order:       len(items),
		})
	}

	return items
}

// ValidateParseResults truncates items to maxItems and returns a non-fatal
// warning when truncation occurred. Oversized input is never an error.
func ValidateParseResults(items []ParsedItem, maxItems int) ([]ParsedItem, string) {
	if maxItems <= 0 {
		maxItems = 50
	}
	if len(items) <= maxItems {
		return items, ""
	}
	warning := fmt.Sprintf("found %d links, keeping only the first %d", len(items), maxItems)
	return items[:maxItems], warning
}

// parseContext splits the text preceding a URL into a title and a
// description. The title candidate is the first line containing an arrow
// or a colon, else the first line; it only qualifies when the cleaned line
// is non-empty and under 100 characters.
func parseContext(context string) (title, description string) {
	var lines []string
	for _, line := range strings.Split(context, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return "", ""
	}

	titleIdx := -1
	for i, line := range lines {
		if strings.ContainsAny(line, "→➤:") {
			titleIdx = i
			break
		}
	}
	if titleIdx == -1 {
		titleIdx = 0
	}

	title = cleanLine(lines[titleIdx])
	if title == "" || utf8.RuneCountInString(title) >= maxTitleLength {
		// No usable title; everything becomes description.
		title = ""
		titleIdx = -1
	}

	var descParts []string
	for i, line := range lines {
		if i == titleIdx {
			continue
		}
		if cleaned := cleanLine(line); cleaned != "" {
			descParts = append(descParts, cleaned)
		}
	}
	description = strings.Join(descParts, " ")

	return title, description
}

// cleanLine strips leading ordinal markers ("1.", "1)", "1 →"), bullet
// characters and decorative emoji from a context line.
func cleanLine(line string) string {
	s := strings.TrimSpace(line)

	for {
		prev := s
		s = strings.TrimSpace(ordinalPattern.ReplaceAllString(s, ""))
		s = strings.TrimSpace(trimLeadingDecoration(s))
		if s == prev {
			break
		}
	}

	return s
}

// trimLeadingDecoration removes bullets, arrows and emoji from the start
// of a line. It stops at the first rune that carries content.
func trimLeadingDecoration(s string) string {
	return strings.TrimLeftFunc(s, func(r rune) bool {
		switch r {
		case '-', '*', '•', '‣', '▪', '◦', '·', '–', '—':
			return true
		}
		return isDecorativeRune(r) || unicode.IsSpace(r)
	})
}

// isDecorativeRune reports whether r is an emoji or symbol commonly used
// to decorate list entries.
func isDecorativeRune(r rune) bool {
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF: // emoji, pictographs, symbols
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols and dingbats
		return true
	case r >= 0x2190 && r <= 0x21FF: // arrows
		return true
	case r >= 0x2B00 && r <= 0x2BFF: // more arrows and symbols
		return true
	case r == 0xFE0F || r == 0x200D: // variation selector, ZWJ
		return true
	}
	return false
}
