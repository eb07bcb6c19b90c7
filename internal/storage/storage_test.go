package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "resume.pdf", want: "resume.pdf"},
		{in: "../../etc/passwd", want: "passwd"},
		{in: `C:\Users\jane\My Resume.docx`, want: "My_Resume.docx"},
		{in: "  jane doe (final).pdf ", want: "jane_doe__final_.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := SanitizeFileName(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "..", "???"} {
		_, err := SanitizeFileName(bad)
		assert.ErrorIs(t, err, ErrInvalidName, bad)
	}
}

func TestNewKey(t *testing.T) {
	a, err := NewKey("owner-1", "cv.pdf")
	require.NoError(t, err)
	b, err := NewKey("owner-1", "cv.pdf")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, HashOwner("owner-1")+"/"))
	assert.True(t, strings.HasSuffix(a, "_cv.pdf"))
	assert.NotContains(t, a, "owner-1")
}

func TestCleanKey(t *testing.T) {
	got, err := CleanKey("abc/./def.pdf")
	require.NoError(t, err)
	assert.Equal(t, "abc/def.pdf", got)

	for _, bad := range []string{"", ".", "../x", "/abs/x", `..\x`} {
		_, err := CleanKey(bad)
		assert.ErrorIs(t, err, ErrInvalidKey, bad)
	}
}
