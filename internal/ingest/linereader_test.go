package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineReader(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   []string
	}{
		{
			name:   "plain lines",
			input:  "one\ntwo\nthree",
			maxLen: 100,
			want:   []string{"one", "two", "three"},
		},
		{
			name:   "blank lines skipped",
			input:  "one\n\n\ntwo\n",
			maxLen: 100,
			want:   []string{"one", "two"},
		},
		{
			name:   "oversized line skipped",
			input:  "short\n" + strings.Repeat("x", 50) + "\nafter",
			maxLen: 10,
			want:   []string{"short", "after"},
		},
		{
			name:   "empty input",
			input:  "",
			maxLen: 10,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lr := newLineReader(strings.NewReader(tt.input), tt.maxLen)
			var got []string
			for {
				line, ok := lr.next()
				if !ok {
					break
				}
				got = append(got, line)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
