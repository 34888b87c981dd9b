package statfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitRecord(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected []string
	}{
		{
			name:     "plain record",
			line:     "0;4;8;16;16;9;3",
			expected: []string{"0", "4", "8", "16", "16", "9", "3"},
		},
		{
			name:     "spaces removed everywhere",
			line:     " 0 ; 4 ;8 ; 16;16 ;9; 3 ",
			expected: []string{"0", "4", "8", "16", "16", "9", "3"},
		},
		{
			name:     "trailing newline trimmed",
			line:     "0;0;0;16;16;9;3\n",
			expected: []string{"0", "0", "0", "16", "16", "9", "3"},
		},
		{
			name:     "header record",
			line:     "%;type;9;MVDL0;vector",
			expected: []string{"%", "type", "9", "MVDL0", "vector"},
		},
		{
			name:     "empty line",
			line:     "",
			expected: []string{""},
		},
		{
			name:     "trailing delimiter yields empty field",
			line:     "0;1;",
			expected: []string{"0", "1", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitRecord(tt.line, DefaultDelimiter))
		})
	}
}

func TestIsHeaderRecord(t *testing.T) {
	assert.True(t, isHeaderRecord(SplitRecord("%;type;9;Name;map", DefaultDelimiter)))
	assert.True(t, isHeaderRecord(SplitRecord("% ;seq-specs;s;0;0;0;0", DefaultDelimiter)))
	assert.False(t, isHeaderRecord(SplitRecord("0;0;0;16;16;9;3", DefaultDelimiter)))
	assert.False(t, isHeaderRecord(SplitRecord("", DefaultDelimiter)))
}
