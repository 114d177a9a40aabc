package sapling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueArithmetic(t *testing.T) {
	sum, err := Vec2(1, 2).Add(Vec2(3, 4))
	require.NoError(t, err)
	assert.Equal(t, Vec2(4, 6), sum)

	diff, err := Color(1, 1, 1, 1).Sub(Color(0.5, 0, 0.25, 1))
	require.NoError(t, err)
	assert.Equal(t, Color(0.5, 1, 0.75, 0), diff)

	scaled, err := Rect(1, 2, 3, 4).Scale(2)
	require.NoError(t, err)
	assert.Equal(t, Rect(2, 4, 6, 8), scaled)
}

func TestValueUnsupported(t *testing.T) {
	_, err := Float(1).Add(Vec2(1, 1))
	assert.ErrorIs(t, err, ErrUnsupportedInterpolation)
	_, err = String("a").Sub(String("b"))
	assert.ErrorIs(t, err, ErrUnsupportedInterpolation)
	_, err = Bool(true).Scale(2)
	assert.ErrorIs(t, err, ErrUnsupportedInterpolation)
	_, err = Nil.Add(Nil)
	assert.ErrorIs(t, err, ErrUnsupportedInterpolation)
}

func TestValueAccessors(t *testing.T) {
	assert.True(t, Bool(true).AsBool())
	assert.Equal(t, 0.0, String("x").AsFloat())
	x, y := Float(3).AsVec2()
	assert.Zero(t, x)
	assert.Zero(t, y)
	assert.True(t, Nil.IsNil())
	assert.Equal(t, "(1, 2)", Vec2(1, 2).String())
	assert.Equal(t, `"hi"`, String("hi").String())
}

func TestValueComparable(t *testing.T) {
	assert.True(t, Vec2(1, 2) == Vec2(1, 2))
	assert.False(t, Float(0) == Vec2(0, 0))
	assert.True(t, Vec2(1, 2).ApproxEqual(Vec2(1+1e-12, 2), 1e-9))
	assert.False(t, Vec2(1, 2).ApproxEqual(Float(1), 1))
}

func TestInterpolate(t *testing.T) {
	v, err := interpolate(Vec2(0, 0), Vec2(10, 0), EaseLinear, 1, 0.5, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, Vec2(5, 0), v)

	// Zero duration jumps unless elapsed is negative.
	v, err = interpolate(Float(0), Float(1), EaseLinear, 1, 0, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, Float(1), v)
	v, err = interpolate(Float(0), Float(1), EaseLinear, 1, -0.1, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, Float(0), v)

	// Unknown start holds the target.
	v, err = interpolate(Nil, Float(4), EaseLinear, 1, 0.5, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, Float(4), v)

	_, err = interpolate(String("a"), String("b"), EaseLinear, 1, 0.5, 1, nil)
	assert.ErrorIs(t, err, ErrUnsupportedInterpolation)
}
