package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(vals map[string]int) Lookup {
	return func(name string) (int, bool) {
		v, ok := vals[name]
		return v, ok
	}
}

func TestEvalArithmetic(t *testing.T) {
	l := lookupFrom(nil)
	cases := []struct {
		expr string
		want int
	}{
		{"1 + 2", 3},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 - 2 - 3", 5},
		{"7 / 2", 3},
		{"-5 + 8", 3},
		{"-(2 + 3)", -5},
	}
	for _, c := range cases {
		got, err := Eval(c.expr, l)
		require.NoError(t, err, c.expr)
		assert.Equal(t, c.want, got, c.expr)
	}
}

func TestEvalIdentifiers(t *testing.T) {
	l := lookupFrom(map[string]int{"strength": 60, "筋力": 60, "hp": 25})
	got, err := Eval("strength / 2 + 10", l)
	require.NoError(t, err)
	assert.Equal(t, 40, got)

	got, err = Eval("筋力 - hp", l)
	require.NoError(t, err)
	assert.Equal(t, 35, got)
}

func TestEvalMinMax(t *testing.T) {
	l := lookupFrom(map[string]int{"focus": 70})
	got, err := Eval("min(focus, 50)", l)
	require.NoError(t, err)
	assert.Equal(t, 50, got)

	got, err = Eval("max(10, focus / 2, 20)", l)
	require.NoError(t, err)
	assert.Equal(t, 35, got)
}

func TestEvalErrors(t *testing.T) {
	l := lookupFrom(map[string]int{"hp": 10})

	_, err := Eval("hp / 0", l)
	assert.ErrorContains(t, err, "division by zero")

	_, err = Eval("mystery + 1", l)
	assert.ErrorContains(t, err, "unknown identifier")

	_, err = Eval("1 + 2 )", l)
	assert.Error(t, err)

	_, err = Eval("", l)
	assert.Error(t, err)

	_, err = Eval("sqrt(4)", l)
	assert.ErrorContains(t, err, "unknown function")
}
