package circuitfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMapping(t *testing.T) {
	tests := []struct {
		input string
		want  map[int]int
	}{
		{"0:3,2:4", map[int]int{0: 3, 2: 4}},
		{" 0 : 1 , 1:0 ", map[int]int{0: 1, 1: 0}},
		{"5:5,", map[int]int{5: 5}},
	}
	for _, tt := range tests {
		got, err := ParseMapping(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	for _, bad := range []string{"", "0", "a:1", "0:b", "0:1,0:2"} {
		_, err := ParseMapping(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseAssignment(t *testing.T) {
	v, err := ParseAssignment(" t = pi/2 ")
	require.NoError(t, err)
	assert.Equal(t, Variable{Name: "t", Expr: "pi/2"}, v)

	for _, bad := range []string{"t", "=1", "t=", ""} {
		_, err := ParseAssignment(bad)
		assert.Error(t, err, bad)
	}
}
