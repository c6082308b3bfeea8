// Package dataset loads tabular data for tree fitting. A CSV file is
// read into a Table: a feature matrix, a target vector, and the Schema
// (column names plus the designated response column) established at load
// time. The schema travels with every derived split, so downstream code
// can detect train/test mismatches.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"

	cartErrors "github.com/treeops/cart/pkg/errors"
)

// Schema describes the columns of a Table: feature names in order and
// the response column name.
type Schema struct {
	Features []string
	Response string
}

// Equal reports whether two schemas have the same response and the same
// feature names in the same order.
func (s Schema) Equal(other Schema) bool {
	if s.Response != other.Response || len(s.Features) != len(other.Features) {
		return false
	}
	for i, f := range s.Features {
		if f != other.Features[i] {
			return false
		}
	}
	return true
}

// Table is an in-memory dataset: features X, targets Y, and the schema
// both were loaded under. For classification data loaded from string
// labels, Labels maps the integer class values in Y back to the
// original label strings.
type Table struct {
	Schema Schema
	X      *mat.Dense
	Y      *mat.VecDense
	Labels []string // nil for numeric responses
}

// Rows returns the number of records.
func (t *Table) Rows() int {
	r, _ := t.X.Dims()
	return r
}

// OpenCSV reads the file at path, treating the named column as the
// response. See ReadCSV.
func OpenCSV(path, response string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, cartErrors.NewModelError("OpenCSV", "opening "+path, err)
	}
	defer func() { _ = f.Close() }()

	return ReadCSV(f, response)
}

// ReadCSV parses CSV data with a header row. The response column is
// selected by name; all other columns become features and must be
// numeric. A numeric response is loaded as-is; a string response is
// label-encoded to integer classes (sorted label order) with the
// original strings kept in Labels.
func ReadCSV(r io.Reader, response string) (*Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, cartErrors.NewModelError("ReadCSV", "reading header", err)
	}

	respCol := -1
	features := make([]string, 0, len(header)-1)
	for i, name := range header {
		if name == response {
			if respCol >= 0 {
				return nil, cartErrors.NewValueError("ReadCSV", "duplicate response column "+response)
			}
			respCol = i
		} else {
			features = append(features, name)
		}
	}
	if respCol < 0 {
		return nil, cartErrors.NewValueError("ReadCSV", "response column "+response+" not found in header")
	}
	if len(features) == 0 {
		return nil, cartErrors.NewValueError("ReadCSV", "no feature columns")
	}

	var xs []float64
	var rawY []string
	row := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, cartErrors.NewModelError("ReadCSV", fmt.Sprintf("reading row %d", row), err)
		}
		if len(rec) != len(header) {
			return nil, cartErrors.NewValueError("ReadCSV",
				fmt.Sprintf("row %d has %d columns, header has %d", row, len(rec), len(header)))
		}

		for i, field := range rec {
			if i == respCol {
				rawY = append(rawY, field)
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, cartErrors.NewValueError("ReadCSV",
					fmt.Sprintf("row %d column %q is not numeric: %q", row, header[i], field))
			}
			xs = append(xs, v)
		}
		row++
	}

	n := len(rawY)
	if n == 0 {
		return nil, cartErrors.NewModelError("ReadCSV", "no data rows", cartErrors.ErrEmptyData)
	}

	y, labels, err := parseResponse(rawY)
	if err != nil {
		return nil, err
	}

	return &Table{
		Schema: Schema{Features: features, Response: response},
		X:      mat.NewDense(n, len(features), xs),
		Y:      y,
		Labels: labels,
	}, nil
}

// parseResponse loads the response column: numeric values directly, or
// string labels encoded to sorted integer classes.
func parseResponse(raw []string) (*mat.VecDense, []string, error) {
	vals := make([]float64, len(raw))
	numeric := true
	for i, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			numeric = false
			break
		}
		vals[i] = v
	}
	if numeric {
		return mat.NewVecDense(len(vals), vals), nil, nil
	}

	seen := make(map[string]bool)
	for _, s := range raw {
		seen[s] = true
	}
	labels := make([]string, 0, len(seen))
	for s := range seen {
		labels = append(labels, s)
	}
	sort.Strings(labels)

	index := make(map[string]int, len(labels))
	for i, s := range labels {
		index[s] = i
	}
	for i, s := range raw {
		vals[i] = float64(index[s])
	}
	return mat.NewVecDense(len(vals), vals), labels, nil
}

// Split partitions the table into train and test tables by a seeded
// shuffle. testFraction must be in (0, 1) and both sides must end up
// non-empty.
func (t *Table) Split(testFraction float64, seed int64) (train, test *Table, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, cartErrors.NewValueError("Table.Split", "testFraction must be in (0, 1)")
	}

	n := t.Rows()
	nTest := int(float64(n) * testFraction)
	if nTest == 0 || nTest == n {
		return nil, nil, cartErrors.NewValueError("Table.Split", "split leaves an empty partition")
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	test = t.subset(perm[:nTest])
	train = t.subset(perm[nTest:])
	return train, test, nil
}

func (t *Table) subset(idx []int) *Table {
	_, cols := t.X.Dims()
	X := mat.NewDense(len(idx), cols, nil)
	Y := mat.NewVecDense(len(idx), nil)
	for r, i := range idx {
		for c := 0; c < cols; c++ {
			X.Set(r, c, t.X.At(i, c))
		}
		Y.SetVec(r, t.Y.AtVec(i))
	}
	return &Table{Schema: t.Schema, X: X, Y: Y, Labels: t.Labels}
}

// CheckCompatible verifies that other was loaded under the same schema
// as t, returning a SchemaMismatchError otherwise. Call this before
// evaluating a model trained on t against data from other.
func (t *Table) CheckCompatible(other *Table) error {
	if !t.Schema.Equal(other.Schema) {
		return cartErrors.NewSchemaMismatchError("Table.CheckCompatible",
			len(t.Schema.Features), len(other.Schema.Features))
	}
	return nil
}
