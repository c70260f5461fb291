package calibration

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/ciderworks/pkg/errors"
)

func TestSolveLinearSystem(t *testing.T) {
	cases := []struct {
		name string
		a    [][]float64
		b    []float64
		want []float64
	}{
		{
			name: "2x2",
			a:    [][]float64{{2, 1}, {1, 3}},
			b:    []float64{3, 5},
			want: []float64{0.8, 1.4},
		},
		{
			name: "3x3 needs pivoting",
			a:    [][]float64{{0, 2, 1}, {1, 1, 1}, {2, 1, 3}},
			b:    []float64{7, 6, 13},
			want: []float64{1, 2, 3},
		},
		{
			name: "4x4",
			a:    [][]float64{{4, 0, 0, 1}, {0, 3, 0, 0}, {0, 0, 2, 0}, {1, 0, 0, 1}},
			b:    []float64{9, 6, 8, 5},
			want: []float64{4.0 / 3, 2, 4, 11.0 / 3},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := solveLinearSystem(tc.a, tc.b)
			require.NoError(t, err)
			require.Len(t, got, len(tc.want))
			for i := range tc.want {
				require.InDelta(t, tc.want[i], got[i], 1e-9)
			}
		})
	}
}

func TestSolveLinearSystemDoesNotMutateInput(t *testing.T) {
	a := [][]float64{{0, 1}, {1, 0}}
	b := []float64{2, 3}
	_, err := solveLinearSystem(a, b)
	require.NoError(t, err)
	require.Equal(t, [][]float64{{0, 1}, {1, 0}}, a)
	require.Equal(t, []float64{2, 3}, b)
}

func TestSolveLinearSystemSingular(t *testing.T) {
	_, err := solveLinearSystem([][]float64{{1, 2}, {2, 4}}, []float64{3, 6})
	require.ErrorIs(t, err, ErrSingularMatrix)
	require.True(t, apperrors.IsCode(err, apperrors.CodeSingularMatrix))
}

func TestSolveLinearSystemShapeMismatch(t *testing.T) {
	_, err := solveLinearSystem([][]float64{{1, 2}}, []float64{3, 6})
	require.Error(t, err)

	_, err = solveLinearSystem([][]float64{{1, 2}, {3}}, []float64{3, 6})
	require.Error(t, err)
}
