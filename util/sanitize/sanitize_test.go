package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForFileName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain uuid", "a1b2c3d4-e5f6", "a1b2c3d4-e5f6"},
		{"path traversal stripped", "../../etc/passwd", "etc-passwd"},
		{"slashes collapse", "foo/bar/baz", "foo-bar-baz"},
		{"spaces collapse", "my session", "my-session"},
		{"leading dots stripped", "..hidden", "hidden"},
		{"inner dots kept", "v1.2.3", "v1.2.3"},
		{"empty", "", ""},
		{"only unsafe chars", "///", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ForFileName(tt.input))
		})
	}
}
