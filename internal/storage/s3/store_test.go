package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyPrefix(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "owner/file.pdf", want: "owner/file.pdf"},
		{name: "simple prefix", prefix: "uploads", key: "owner/file.pdf", want: "uploads/owner/file.pdf"},
		{name: "slashes", prefix: "/uploads/", key: "/owner/file.pdf", want: "uploads/owner/file.pdf"},
		{name: "empty key", prefix: "uploads", key: "", want: "uploads"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, applyPrefix(tt.prefix, tt.key))
		})
	}
}
