/*
Package sparse implements a simple type for sparse integer matrices.
It is mainly used for parser tables (GOTO-table and ACTION-table), which
are mostly empty: only a small fraction of (state, symbol) slots carry an
entry.

This implementation uses the COO algorithm (a.k.a. triplet-encoding).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package sparse

import (
	"fmt"
)

// DefaultNullValue is used as a marker for an absent entry,
// if clients do not have specific requirements.
const DefaultNullValue int32 = -9999

// IntMatrix is a type for a sparse matrix of integer values. Construct with
//
//	M := sparse.NewIntMatrix(10, 10, sparse.DefaultNullValue)
//
// Now
//
//	M.Set(2, 3, 4711)      // set a value
//	v := M.Value(2, 3)     // returns 4711
//	M.Set(2, 3, 4712)      // overwrite it
//	cnt := M.ValueCount()  // still returns 1 (one position set)
//	v = M.Value(9, 9)      // returns the null-value
//
// Values cannot be deleted, but may be overwritten with the null-value.
// Space for null-values is not re-claimed.
type IntMatrix struct {
	triplets []triplet
	rowcnt   int
	colcnt   int
	nullval  int32
}

// Triplet values to store: a position and the value at that position.
type triplet struct {
	row, col uint
	value    int32
}

// NewIntMatrix creates a new matrix for int32, size m x n. The 3rd argument
// is a null-value, indicating empty entries.
func NewIntMatrix(m, n int, nullValue int32) *IntMatrix {
	return &IntMatrix{
		rowcnt:  m,
		colcnt:  n,
		nullval: nullValue,
	}
}

// NullValue returns the null-value of the matrix, i.e. the value used for
// marking empty entries.
func (m *IntMatrix) NullValue() int32 {
	return m.nullval
}

// Value returns the entry at position (i, j), or the null-value if the
// position is empty.
func (m *IntMatrix) Value(i, j uint) int32 {
	if t := m.find(i, j); t != nil {
		return t.value
	}
	return m.nullval
}

// Set stores a value at position (i, j), overwriting any previous value
// at that position.
func (m *IntMatrix) Set(i, j uint, value int32) {
	if t := m.find(i, j); t != nil {
		t.value = value
		return
	}
	m.triplets = append(m.triplets, triplet{row: i, col: j, value: value})
}

// ValueCount returns the number of positions set.
func (m *IntMatrix) ValueCount() int {
	return len(m.triplets)
}

func (m *IntMatrix) find(i, j uint) *triplet {
	for n := range m.triplets {
		if m.triplets[n].row == i && m.triplets[n].col == j {
			return &m.triplets[n]
		}
	}
	return nil
}

func (m *IntMatrix) String() string {
	return fmt.Sprintf("(%d x %d)-matrix with %d values", m.rowcnt, m.colcnt, len(m.triplets))
}
