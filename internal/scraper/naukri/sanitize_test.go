package naukri

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFragmentKeepsAllowedTags(t *testing.T) {
	in := `<p>Intro</p><ul><li>One</li><li>Two</li></ul><h3>Head</h3>`
	assert.Equal(t, in, SanitizeFragment(in))
}

func TestSanitizeFragmentDropsRiskySubtrees(t *testing.T) {
	in := `<p>Safe</p><script>alert(1)</script><img src="x.png"><iframe src="y"></iframe>`
	out := SanitizeFragment(in)
	assert.Equal(t, "<p>Safe</p>", out)
}

func TestSanitizeFragmentUnwrapsUnknownTags(t *testing.T) {
	in := `<div><section><p>Inside</p></section></div>`
	assert.Equal(t, "<p>Inside</p>", SanitizeFragment(in))
}

func TestSanitizeFragmentFiltersAttributes(t *testing.T) {
	in := `<p class="x" onclick="evil()">Text</p><a href="/jobs" onclick="evil()" target="_blank">Link</a>`
	out := SanitizeFragment(in)
	assert.Equal(t, `<p>Text</p><a href="/jobs">Link</a>`, out)
}

func TestSanitizeFragmentDropsEmptyElements(t *testing.T) {
	in := `<p>Kept</p><p>   </p><ul><li></li></ul>`
	assert.Equal(t, "<p>Kept</p>", SanitizeFragment(in))
}

func TestSanitizeFragmentKeepsBreaks(t *testing.T) {
	out := SanitizeFragment(`<p>One<br>Two</p>`)
	assert.Equal(t, "<p>One<br/>Two</p>", out)
}

func TestSanitizeFragmentIdempotent(t *testing.T) {
	in := `<div class="jd"><p>Role</p><span>detail</span><ul><li>a</li></ul><script>x</script></div>`
	once := SanitizeFragment(in)
	twice := SanitizeFragment(once)
	assert.Equal(t, once, twice)
}

func TestReadableTextBlocks(t *testing.T) {
	in := `<h3>Requirements</h3><p>We need Go.</p><ul><li>HTTP</li><li>SQL</li></ul>`
	expected := "Requirements\nWe need Go.\n- HTTP\n- SQL"
	assert.Equal(t, expected, ReadableText(in))
}

func TestReadableTextNoBlockStructure(t *testing.T) {
	assert.Equal(t, "just text", ReadableText("just text"))
}

func TestReadableTextCollapsesBlankLines(t *testing.T) {
	out := ReadableText("a\n\n\n\n\nb")
	assert.Equal(t, "a\n\nb", out)
}

func TestExtractCleanSectionPicksFirstPassing(t *testing.T) {
	longText := strings.Repeat("Responsibilities include building services. ", 5)
	page := `<html><body>
		<div class="dang-inner-html"><p>` + longText + `</p></div>
		<section class="job-desc"><p>secondary</p></section>
	</body></html>`

	html, text := ExtractCleanSection(docFromHTML(t, page), detailPrimarySelectors, minDescriptionTextLen)
	require.NotEmpty(t, html)
	assert.Contains(t, text, "Responsibilities include")
}

func TestExtractCleanSectionRejectsShortMatches(t *testing.T) {
	page := `<html><body><div class="dang-inner-html"><p>tiny</p></div></body></html>`
	html, text := ExtractCleanSection(docFromHTML(t, page), detailPrimarySelectors, minDescriptionTextLen)
	assert.Empty(t, html)
	assert.Empty(t, text)
}

func TestExtractCleanSectionRejectsBundleEcho(t *testing.T) {
	longText := strings.Repeat("filler text for length requirements ", 5)
	page := `<html><body><div class="dang-inner-html">
		<p>` + longText + `static.naukimg.com/bundle.js</p>
	</div></body></html>`
	html, _ := ExtractCleanSection(docFromHTML(t, page), detailPrimarySelectors, minDescriptionTextLen)
	assert.Empty(t, html)
}

func TestExtractCleanSectionRejectsInterstitial(t *testing.T) {
	longText := strings.Repeat("padding words to pass the minimum ", 5)
	page := `<html><body><div class="dang-inner-html">
		<p>` + longText + `This page could not be found.</p>
	</div></body></html>`
	html, _ := ExtractCleanSection(docFromHTML(t, page), detailPrimarySelectors, minDescriptionTextLen)
	assert.Empty(t, html)
}
