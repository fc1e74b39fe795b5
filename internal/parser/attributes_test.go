package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urdf-visualizer/backend/internal/models"
)

func TestParseVector(t *testing.T) {
	tests := []struct {
		name    string
		attr    string
		n       int
		want    []float64
		wantErr bool
	}{
		{"full", "1 2 3", 3, []float64{1, 2, 3}, false},
		{"blank", "", 3, []float64{0, 0, 0}, false},
		{"whitespace only", "   \t", 3, []float64{0, 0, 0}, false},
		{"short", "0.5", 3, []float64{0.5, 0, 0}, false},
		{"extra ignored", "1 2 3 4 5", 3, []float64{1, 2, 3}, false},
		{"mixed separators", " 1\t-2\n3e-1 ", 3, []float64{1, -2, 0.3}, false},
		{"scientific", "1e3", 1, []float64{1000}, false},
		{"invalid", "0 abc 0", 3, nil, true},
		{"invalid beyond n is ignored", "1 2 3 nope", 3, []float64{1, 2, 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVector(tt.attr, tt.n)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidNumericLiteral)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseJointType(t *testing.T) {
	jt, err := ParseJointType("continuous")
	require.NoError(t, err)
	assert.Equal(t, models.JointContinuous, jt)

	_, err = ParseJointType("ball")
	assert.ErrorIs(t, err, ErrMalformedDocument)

	_, err = ParseJointType("")
	assert.ErrorIs(t, err, ErrMalformedDocument)
}
