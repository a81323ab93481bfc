package render

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToHTML_Basics(t *testing.T) {
	r := NewMarkdownRenderer()

	out, err := r.ToHTML("**bold** and `code`")
	require.NoError(t, err)
	require.Contains(t, out, "<strong>bold</strong>")
	require.Contains(t, out, "<code>code</code>")
}

func TestToHTML_Table(t *testing.T) {
	out, err := NewMarkdownRenderer().ToHTML("| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	require.Contains(t, out, "<table>")
	require.Contains(t, out, "<td>2</td>")
}

func TestToHTML_StripsScripts(t *testing.T) {
	out, err := NewMarkdownRenderer().ToHTML("hi <script>alert(1)</script> [x](javascript:alert(1))")
	require.NoError(t, err)
	require.NotContains(t, out, "<script")
	require.NotContains(t, out, "javascript:")
}

func TestToHTML_ExternalLinks(t *testing.T) {
	out, err := NewMarkdownRenderer().ToHTML("[docs](https://example.com)")
	require.NoError(t, err)
	require.Contains(t, out, `href="https://example.com"`)
	require.Contains(t, out, "nofollow")
	require.Contains(t, out, "noopener")
	require.Contains(t, out, `target="_blank"`)
}
