// Package errors defines the error types shared by all estimators and
// selection routines in this library.
//
// Errors come in two layers: sentinel errors (ErrNotFitted, ErrEmptyPath,
// ...) usable with errors.Is, and typed errors (NotFittedError,
// EmptyPathError, ...) usable with errors.As when the caller needs the
// structured fields. Constructors return the typed form; every typed error
// unwraps to its sentinel.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel errors for errors.Is checks.
var (
	// ErrNotFitted indicates an estimator was used before Fit.
	ErrNotFitted = errors.New("model is not fitted")

	// ErrEmptyData indicates an operation received an empty matrix or vector.
	ErrEmptyData = errors.New("empty data")

	// ErrDimensionMismatch indicates input dimensions are inconsistent.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrEmptyPath indicates a pruning path with zero candidates.
	ErrEmptyPath = errors.New("empty pruning path")

	// ErrInvalidParameter indicates a complexity parameter outside the
	// range established by the pruning path.
	ErrInvalidParameter = errors.New("invalid complexity parameter")

	// ErrSchemaMismatch indicates evaluation data whose columns do not
	// match the schema the model was trained on.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrNotImplemented indicates a requested capability is not available.
	ErrNotImplemented = errors.New("not implemented")
)

// NotFittedError is returned when a method requiring a trained model is
// called on an untrained one.
type NotFittedError struct {
	ModelName string // estimator type, e.g. "Regressor"
	Method    string // method that was called, e.g. "Predict"
}

// NewNotFittedError creates a NotFittedError for the given model and method.
func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("cart: %s.%s: model is not fitted", e.ModelName, e.Method)
}

func (e *NotFittedError) Unwrap() error { return ErrNotFitted }

// DimensionError reports a mismatch between an expected and an actual
// dimension along a given axis (0 = rows, 1 = columns).
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int
}

// NewDimensionError creates a DimensionError for the given operation.
func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("cart: %s: dimension mismatch on axis %d: expected %d, got %d",
		e.Op, e.Axis, e.Expected, e.Got)
}

func (e *DimensionError) Unwrap() error { return ErrDimensionMismatch }

// ValueError reports an invalid argument value.
type ValueError struct {
	Op      string
	Message string
}

// NewValueError creates a ValueError for the given operation.
func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("cart: %s: %s", e.Op, e.Message)
}

// ModelError wraps an underlying cause with model context.
type ModelError struct {
	Op      string
	Message string
	Err     error
}

// NewModelError creates a ModelError wrapping err.
func NewModelError(op, message string, err error) error {
	return errors.WithStack(&ModelError{Op: op, Message: message, Err: err})
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cart: %s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("cart: %s: %s", e.Op, e.Message)
}

func (e *ModelError) Unwrap() error { return e.Err }

// EmptyPathError is returned when complexity selection is attempted on a
// pruning path with no candidates.
type EmptyPathError struct {
	Op string
}

// NewEmptyPathError creates an EmptyPathError for the given operation.
func NewEmptyPathError(op string) error {
	return errors.WithStack(&EmptyPathError{Op: op})
}

func (e *EmptyPathError) Error() string {
	return fmt.Sprintf("cart: %s: pruning path has no candidates", e.Op)
}

func (e *EmptyPathError) Unwrap() error { return ErrEmptyPath }

// InvalidParameterError is returned when a complexity parameter is
// negative or exceeds the maximum alpha present in the pruning path.
type InvalidParameterError struct {
	Op    string
	Alpha float64
	Max   float64
}

// NewInvalidParameterError creates an InvalidParameterError for the given
// operation. Max is the largest valid alpha; it is zero when the request
// failed before a maximum was established.
func NewInvalidParameterError(op string, alpha, max float64) error {
	return errors.WithStack(&InvalidParameterError{Op: op, Alpha: alpha, Max: max})
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("cart: %s: complexity parameter %g outside valid range [0, %g]",
		e.Op, e.Alpha, e.Max)
}

func (e *InvalidParameterError) Unwrap() error { return ErrInvalidParameter }

// SchemaMismatchError is returned when evaluation data does not match the
// feature schema the model was trained on.
type SchemaMismatchError struct {
	Op       string
	Expected int // feature columns seen at training time
	Got      int // feature columns in the offending data
}

// NewSchemaMismatchError creates a SchemaMismatchError for the given
// operation.
func NewSchemaMismatchError(op string, expected, got int) error {
	return errors.WithStack(&SchemaMismatchError{Op: op, Expected: expected, Got: got})
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("cart: %s: data has %d feature columns, model was trained on %d",
		e.Op, e.Got, e.Expected)
}

func (e *SchemaMismatchError) Unwrap() error { return ErrSchemaMismatch }

// Recover converts a panic inside op into an error assigned to *err.
// Use as: defer errors.Recover(&err, "Regressor.Fit").
func Recover(err *error, op string) {
	if r := recover(); r != nil {
		*err = errors.Newf("cart: %s: panic: %v", op, r)
	}
}
