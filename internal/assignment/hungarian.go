// Package assignment wraps a Kuhn-Munkres (Hungarian algorithm)
// implementation for the SORT voting engine's cost-matrix maximization.
//
// Generalized from the reference tracker's scipy.optimize.linear_sum_assignment
// port, which wraps the same go-hungarian solver; that port minimizes a cost
// matrix, while the voting engine here maximizes a reward matrix directly
// (SortVoting builds its matrix already scaled so higher is better), so the
// cost-to-profit conversion is dropped.
package assignment

import (
	hungarian "github.com/arthurkushman/go-hungarian"
)

// Assignment is one resolved row/column pairing.
type Assignment struct {
	Row, Col int
}

// MaximizeAssignment solves the assignment problem for a (possibly
// rectangular) reward matrix, returning one assignment per row. The matrix
// is padded to square with zero-reward dummy columns/rows as needed, and
// padding assignments are omitted from the result.
//
// Reference: https://github.com/arthurkushman/go-hungarian
func MaximizeAssignment(reward [][]float64) []Assignment {
	numRows := len(reward)
	if numRows == 0 {
		return nil
	}
	numCols := len(reward[0])
	if numCols == 0 {
		return nil
	}

	size := numRows
	if numCols > size {
		size = numCols
	}
	padded := make([][]float64, size)
	for i := range padded {
		padded[i] = make([]float64, size)
		if i < numRows {
			copy(padded[i][:numCols], reward[i])
		}
	}

	result := hungarian.SolveMax(padded)

	assignments := make([]Assignment, 0, numRows)
	for row, cols := range result {
		if row >= numRows {
			continue
		}
		for col := range cols {
			if col >= numCols {
				continue
			}
			assignments = append(assignments, Assignment{Row: row, Col: col})
		}
	}
	return assignments
}
