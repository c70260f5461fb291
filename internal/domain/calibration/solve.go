package calibration

import (
	"fmt"
	"math"

	apperrors "github.com/yanqian/ciderworks/pkg/errors"
)

const pivotTolerance = 1e-10

// solveLinearSystem solves a·x = b for a square matrix using Gaussian
// elimination with partial pivoting. Inputs are not modified.
func solveLinearSystem(a [][]float64, b []float64) ([]float64, error) {
	n := len(b)
	if len(a) != n {
		return nil, fmt.Errorf("matrix has %d rows, right-hand side has %d", len(a), n)
	}
	m := make([][]float64, n)
	for i, row := range a {
		if len(row) != n {
			return nil, fmt.Errorf("matrix row %d has %d columns, want %d", i, len(row), n)
		}
		m[i] = make([]float64, n+1)
		copy(m[i], row)
		m[i][n] = b[i]
	}

	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(m[row][col]) > math.Abs(m[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(m[pivot][col]) < pivotTolerance {
			return nil, apperrors.Wrap(apperrors.CodeSingularMatrix, "calibration readings are collinear; vary original gravity and refractometer values", ErrSingularMatrix)
		}
		m[col], m[pivot] = m[pivot], m[col]

		for row := col + 1; row < n; row++ {
			factor := m[row][col] / m[col][col]
			for k := col; k <= n; k++ {
				m[row][k] -= factor * m[col][k]
			}
		}
	}

	x := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		sum := m[row][n]
		for k := row + 1; k < n; k++ {
			sum -= m[row][k] * x[k]
		}
		x[row] = sum / m[row][row]
	}
	return x, nil
}
