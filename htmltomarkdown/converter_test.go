package htmltomarkdown_test

import (
	"testing"

	"github.com/fwojciec/lorecrawl"
	"github.com/fwojciec/lorecrawl/htmltomarkdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Converter implements lorecrawl.Converter at compile time.
var _ lorecrawl.Converter = (*htmltomarkdown.Converter)(nil)

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	t.Run("converts basic paragraph", func(t *testing.T) {
		t.Parallel()

		html := `<p>Aang was the Avatar during the Hundred Year War.</p>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "Aang was the Avatar during the Hundred Year War.")
	})

	t.Run("converts section headings", func(t *testing.T) {
		t.Parallel()

		html := `<h1>Aang</h1><h2>History</h2><h3>Early life</h3>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "# Aang")
		assert.Contains(t, md, "## History")
		assert.Contains(t, md, "### Early life")
	})

	t.Run("keeps site-relative wiki links relative", func(t *testing.T) {
		t.Parallel()

		html := `<p>His closest ally was <a href="/wiki/Katara">Katara</a>.</p>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "[Katara](/wiki/Katara)")
	})

	t.Run("converts unordered lists", func(t *testing.T) {
		t.Parallel()

		html := `<ul><li>Water</li><li>Earth</li><li>Fire</li><li>Air</li></ul>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "- Water")
		assert.Contains(t, md, "- Earth")
		assert.Contains(t, md, "- Fire")
		assert.Contains(t, md, "- Air")
	})

	t.Run("converts ordered episode lists", func(t *testing.T) {
		t.Parallel()

		html := `<ol><li>The Boy in the Iceberg</li><li>The Avatar Returns</li><li>The Southern Air Temple</li></ol>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "1. The Boy in the Iceberg")
		assert.Contains(t, md, "2. The Avatar Returns")
		assert.Contains(t, md, "3. The Southern Air Temple")
	})

	t.Run("converts infobox-style tables", func(t *testing.T) {
		t.Parallel()

		html := `<table class="wikitable">
<thead><tr><th>Nation</th><th>Element</th></tr></thead>
<tbody>
<tr><td>Water Tribe</td><td>Water</td></tr>
<tr><td>Earth Kingdom</td><td>Earth</td></tr>
</tbody>
</table>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		// Table cells may have padding for alignment, so check for content
		assert.Contains(t, md, "Nation")
		assert.Contains(t, md, "Element")
		assert.Contains(t, md, "Water Tribe")
		assert.Contains(t, md, "Earth Kingdom")
		assert.Contains(t, md, "|")
		assert.Contains(t, md, "---")
	})

	t.Run("converts bold and italic", func(t *testing.T) {
		t.Parallel()

		html := `<p><strong>Avatar Aang</strong> appears in <em>The Boy in the Iceberg</em>.</p>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "**Avatar Aang**")
		assert.Contains(t, md, "*The Boy in the Iceberg*")
	})

	t.Run("converts quote blocks", func(t *testing.T) {
		t.Parallel()

		html := `<blockquote><p>When we hit our lowest point, we are open to the greatest change.</p></blockquote>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "> When we hit our lowest point, we are open to the greatest change.")
	})

	t.Run("returns error for empty input", func(t *testing.T) {
		t.Parallel()

		conv := htmltomarkdown.NewConverter()
		_, err := conv.Convert("")

		require.Error(t, err)
		assert.Equal(t, lorecrawl.EINVALID, lorecrawl.ErrorCode(err))
	})

	t.Run("handles a full article body", func(t *testing.T) {
		t.Parallel()

		html := `<div class="mw-parser-output">
<h1>Ba Sing Se</h1>
<p>Ba Sing Se is the capital of the <a href="/wiki/Earth_Kingdom">Earth Kingdom</a>.</p>
<h2>Layout</h2>
<p>The city is divided into rings:</p>
<ul>
<li>Lower Ring</li>
<li>Middle Ring</li>
<li>Upper Ring</li>
</ul>
<h2>Notable residents</h2>
<table>
<thead><tr><th>Name</th><th>Occupation</th></tr></thead>
<tbody>
<tr><td>Iroh</td><td>Tea shop owner</td></tr>
<tr><td>Long Feng</td><td>Grand Secretariat</td></tr>
</tbody>
</table>
</div>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "# Ba Sing Se")
		assert.Contains(t, md, "## Layout")
		assert.Contains(t, md, "[Earth Kingdom](/wiki/Earth_Kingdom)")
		assert.Contains(t, md, "- Lower Ring")
		// Table cells may have padding for alignment
		assert.Contains(t, md, "Iroh")
		assert.Contains(t, md, "Long Feng")
	})
}
