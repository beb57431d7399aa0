package crawl_test

import (
	"testing"

	"github.com/fwojciec/lorecrawl"
	"github.com/fwojciec/lorecrawl/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "lowercases scheme and host",
			in:   "HTTPS://Wiki.Example.COM/Page_One",
			want: "https://wiki.example.com/Page_One",
		},
		{
			name: "strips fragment",
			in:   "https://wiki.example.com/page#History",
			want: "https://wiki.example.com/page",
		},
		{
			name: "strips trailing slash",
			in:   "https://wiki.example.com/page/",
			want: "https://wiki.example.com/page",
		},
		{
			name: "sorts query parameters",
			in:   "https://wiki.example.com/index?title=Foo&action=view",
			want: "https://wiki.example.com/index?action=view&title=Foo",
		},
		{
			name: "preserves path case",
			in:   "https://wiki.example.com/wiki/Aang",
			want: "https://wiki.example.com/wiki/Aang",
		},
		{
			name: "preserves port",
			in:   "http://localhost:8080/wiki/Main_Page/",
			want: "http://localhost:8080/wiki/Main_Page",
		},
		{
			name: "trims surrounding whitespace",
			in:   "  https://wiki.example.com/page  ",
			want: "https://wiki.example.com/page",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := crawl.NormalizeURL(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeURL_variants_collapse_to_one_form(t *testing.T) {
	t.Parallel()

	variants := []string{
		"https://wiki.example.com/wiki/Aang",
		"HTTPS://WIKI.EXAMPLE.COM/wiki/Aang",
		"https://wiki.example.com/wiki/Aang/",
		"https://wiki.example.com/wiki/Aang#Early_life",
	}

	first, err := crawl.NormalizeURL(variants[0])
	require.NoError(t, err)
	for _, v := range variants[1:] {
		got, err := crawl.NormalizeURL(v)
		require.NoError(t, err)
		assert.Equal(t, first, got, "variant %q should normalize to %q", v, first)
	}
}

func TestNormalizeURL_rejects_invalid_URLs(t *testing.T) {
	t.Parallel()

	for _, in := range []string{
		"ftp://wiki.example.com/page",
		"mailto:someone@example.com",
		"javascript:void(0)",
		"/wiki/Relative_Path",
		"",
	} {
		_, err := crawl.NormalizeURL(in)
		require.Error(t, err, "expected error for %q", in)
		assert.Equal(t, lorecrawl.EINVALID, lorecrawl.ErrorCode(err))
	}
}

func TestDomain(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "wiki.example.com", crawl.Domain("https://Wiki.Example.com/wiki/Aang"))
	assert.Equal(t, "localhost:8080", crawl.Domain("http://localhost:8080/page"))
	assert.Equal(t, "", crawl.Domain("://not-a-url"))
}
