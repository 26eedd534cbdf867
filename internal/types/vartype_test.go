package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lustre/internal/types"
)

func TestMerge(t *testing.T) {
	cases := []struct {
		name     string
		a, b     types.VarType
		wantOK   bool
		wantInit bool
	}{
		{
			name:     "both initialized ints merge to initialized",
			a:        types.Prim(types.Int),
			b:        types.Prim(types.Int),
			wantOK:   true,
			wantInit: true,
		},
		{
			name:     "one uninitialized operand yields uninitialized result",
			a:        types.Prim(types.Int),
			b:        types.Prim(types.Int).WithInit(false),
			wantOK:   true,
			wantInit: false,
		},
		{
			name:   "mismatched kinds do not merge",
			a:      types.Prim(types.Int),
			b:      types.Prim(types.Bool),
			wantOK: false,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := types.Merge(c.a, c.b)
			require.Equal(t, c.wantOK, ok)
			if ok {
				assert.Equal(t, c.wantInit, got.Initialized)
			}
		})
	}
}

func TestMergeArrayLength(t *testing.T) {
	known := types.NewArray(types.Prim(types.Int), types.KnownLength(3))
	unknown := types.NewArray(types.Prim(types.Int), types.UnknownLength)

	merged, ok := types.Merge(known, unknown)
	require.True(t, ok)
	assert.True(t, merged.Len.Known)
	assert.Equal(t, 3, merged.Len.Value)

	mismatched := types.NewArray(types.Prim(types.Int), types.KnownLength(4))
	_, ok = types.Merge(known, mismatched)
	assert.False(t, ok)
}

func TestEqualWithoutPreIgnoresInit(t *testing.T) {
	a := types.Prim(types.Int)
	b := types.Prim(types.Int).WithInit(false)
	assert.True(t, types.EqualWithoutPre(a, b))
	assert.False(t, types.Equal(a, b))
}

func TestEqualArrayOf(t *testing.T) {
	elem := types.Prim(types.Float)
	arr := types.NewArray(elem, types.KnownLength(2))
	assert.True(t, types.EqualArrayOf(arr, elem))
	assert.False(t, types.EqualArrayOf(elem, elem))
}

func TestRemoveOnePre(t *testing.T) {
	uninit := types.Prim(types.Int).WithInit(false)
	assert.True(t, types.RemoveOnePre(uninit).Initialized)
}

func TestString(t *testing.T) {
	tup := types.NewTuple([]types.VarType{types.Prim(types.Int), types.Prim(types.Bool)})
	assert.Equal(t, "(int, bool)", tup.String())

	arr := types.NewArray(types.Prim(types.Int), types.KnownLength(3))
	assert.Equal(t, "[int; 3]", arr.String())

	assert.Equal(t, "pre int", types.Prim(types.Int).WithInit(false).String())
}
