package textimport

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractURLs_NoURLs(t *testing.T) {
	inputs := []string{
		"",
		"just some plain text",
		"ftp://not-a-web-url.example.com/file",
		"www.example.com without a scheme",
	}

	for _, input := range inputs {
		assert.Empty(t, ExtractURLs(input), "input: %q", input)
		assert.Empty(t, ParseTextWithContext(input), "input: %q", input)
	}
}

func TestExtractURLs_StripsTrailingPunctuation(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"see https://example.com/page.", "https://example.com/page"},
		{"see https://example.com/page, and more", "https://example.com/page"},
		{"(wrapped https://example.com/page)", "https://example.com/page"},
		{"really? https://example.com/page!?", "https://example.com/page"},
		{"list: https://example.com/page;", "https://example.com/page"},
	}

	for _, tt := range tests {
		urls := ExtractURLs(tt.input)
		require.Len(t, urls, 1, "input: %q", tt.input)
		assert.Equal(t, tt.want, urls[0])
	}
}

func TestExtractURLs_DeduplicatesCaseInsensitively(t *testing.T) {
	input := "first https://Example.com/Page then https://example.com/page again https://example.com/other"

	urls := ExtractURLs(input)

	require.Len(t, urls, 2)
	// First occurrence's casing is retained, first-appearance order preserved.
	assert.Equal(t, "https://Example.com/Page", urls[0])
	assert.Equal(t, "https://example.com/other", urls[1])
}

func TestExtractURLs_PreservesFirstAppearanceOrder(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&sb, "line %d https://example.com/%d\n", i, i)
	}

	urls := ExtractURLs(sb.String())

	require.Len(t, urls, 10)
	for i, u := range urls {
		assert.Equal(t, fmt.Sprintf("https://example.com/%d", i), u)
	}
}

func TestParseTextWithContext_LinkedInStyleEntry(t *testing.T) {
	input := "1 → THE CODE\nScale at global level.\nhttps://lnkd.in/dcibJhzQ"

	items := ParseTextWithContext(input)

	require.Len(t, items, 1)
	assert.Equal(t, "https://lnkd.in/dcibJhzQ", items[0].URL)
	assert.Contains(t, items[0].Title, "THE CODE")
	assert.Contains(t, items[0].Description, "Scale at global level.")
	assert.Equal(t, 0, items[0].Order)
}

func TestParseTextWithContext_ContextIsConsumedPerURL(t *testing.T) {
	input := `First article: a great read
https://example.com/one
Second article: even better
Some more detail here.
https://example.com/two`

	items := ParseTextWithContext(input)

	require.Len(t, items, 2)
	assert.Contains(t, items[0].Title, "First article")
	assert.Empty(t, items[0].Description)
	assert.Contains(t, items[1].Title, "Second article")
	assert.Contains(t, items[1].Description, "Some more detail here.")
	// Context lines are never shared between URLs.
	assert.NotContains(t, items[1].Title, "First article")
}

func TestParseTextWithContext_LongLineBecomesDescriptionOnly(t *testing.T) {
	longLine := strings.Repeat("x", 120)
	input := longLine + "\nhttps://example.com/page"

	items := ParseTextWithContext(input)

	require.Len(t, items, 1)
	assert.Empty(t, items[0].Title)
	assert.Contains(t, items[0].Description, longLine)
}

func TestParseTextWithContext_URLWithoutContext(t *testing.T) {
	items := ParseTextWithContext("https://example.com/bare")

	require.Len(t, items, 1)
	assert.Equal(t, "https://example.com/bare", items[0].URL)
	assert.Empty(t, items[0].Title)
	assert.Empty(t, items[0].Description)
}

func TestCleanLine_OrdinalFormsAreEquivalent(t *testing.T) {
	forms := []string{"3. Some headline", "3) Some headline", "3 → Some headline"}

	for _, form := range forms {
		assert.Equal(t, "Some headline", cleanLine(form), "form: %q", form)
	}
}

func TestCleanLine_StripsBulletsAndEmoji(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"- bullet item", "bullet item"},
		{"• bullet item", "bullet item"},
		{"🚀 launch announcement", "launch announcement"},
		{"👉 check this out", "check this out"},
		{"   plain with spaces   ", "plain with spaces"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanLine(tt.input), "input: %q", tt.input)
	}
}

func TestValidateParseResults(t *testing.T) {
	makeItems := func(n int) []ParsedItem {
		items := make([]ParsedItem, n)
		for i := range items {
			items[i] = ParsedItem{URL: fmt.Sprintf("https://example.com/%d", i), Order: i}
		}
		return items
	}

	t.Run("truncates and warns", func(t *testing.T) {
		items, warning := ValidateParseResults(makeItems(60), 50)
		assert.Len(t, items, 50)
		assert.NotEmpty(t, warning)
	})

	t.Run("under the limit passes through", func(t *testing.T) {
		items, warning := ValidateParseResults(makeItems(30), 50)
		assert.Len(t, items, 30)
		assert.Empty(t, warning)
	})
}
