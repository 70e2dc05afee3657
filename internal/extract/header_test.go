package extract

import (
	"testing"

	"github.com/jonathan/resume-viewer/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestFormatHeader(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		label      string
		department string
		want       types.TrustedHTML
	}{
		{"no url returns name", "", "Acme", "", "Acme"},
		{"nothing set", "", "", "", ""},
		{"url without scheme", "example.com", "Acme", "", `<a href="http://example.com" target="_blank">Acme</a>`},
		{"url with https scheme", "https://example.com", "Acme", "", `<a href="https://example.com" target="_blank">Acme</a>`},
		{"url with http scheme", "http://example.com/x", "Acme", "", `<a href="http://example.com/x" target="_blank">Acme</a>`},
		{"url without name uses url", "example.com", "", "", `<a href="http://example.com" target="_blank">example.com</a>`},
		{"department appended", "", "Acme", "R&D", "Acme, R&D"},
		{"link with department", "acme.io", "Acme", "Platform", `<a href="http://acme.io" target="_blank">Acme</a>, Platform`},
		{"blank url treated as missing", "  \t", "Acme", "", "Acme"},
		{"url surrounded by spaces", " example.com ", "", "", `<a href="http://example.com" target="_blank">example.com</a>`},
		{"query string escaped in href", "example.com/?a=1&b=2", "Acme", "", `<a href="http://example.com/?a=1&amp;b=2" target="_blank">Acme</a>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatHeader(tt.url, tt.label, tt.department)
			assert.Equal(t, tt.want, got)
			// pure: same inputs, same output
			assert.Equal(t, got, FormatHeader(tt.url, tt.label, tt.department))
		})
	}
}

func TestEnsureScheme(t *testing.T) {
	assert.Equal(t, "", EnsureScheme(""))
	assert.Equal(t, "", EnsureScheme("   "))
	assert.Equal(t, "http://example.com", EnsureScheme("example.com"))
	assert.Equal(t, "http://example.com", EnsureScheme(" example.com "))
	assert.Equal(t, "https://example.com", EnsureScheme("https://example.com"))
	assert.Equal(t, "ftp://files.example.com", EnsureScheme("ftp://files.example.com"))
}

func TestIsAbsoluteHTTP(t *testing.T) {
	assert.True(t, isAbsoluteHTTP("http://example.com"))
	assert.True(t, isAbsoluteHTTP("HTTPS://example.com"))
	assert.False(t, isAbsoluteHTTP("example.com"))
	assert.False(t, isAbsoluteHTTP("mailto:me@example.com"))
	assert.False(t, isAbsoluteHTTP(""))
}
