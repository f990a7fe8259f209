package testutil

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

const DatabaseError = "database error occurred"

// OperationResult is a typed return value for a mocked call.
type OperationResult[T any] struct {
	Data T
	Err  error
}

// Return a generic typed error return for a Database call.
func GetMockRepoError[T any]() *OperationResult[T] {
	return NewErrorResult[T](DatabaseError)
}

func NewErrorResult[T any](err string) *OperationResult[T] {
	return &OperationResult[T]{
		Data: *new(T),
		Err:  errors.New(err),
	}
}

// Wrap a generic Data into a OperationResult struct.
func NewSuccessResult[T any](Data T) *OperationResult[T] {
	return &OperationResult[T]{
		Data: Data,
		Err:  nil,
	}
}

// FixedNow is the reference time used by the duel tests.
var FixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// Clock returns a function that always reports the given time.
func Clock(now time.Time) func() time.Time {
	return func() time.Time {
		return now
	}
}

// Build returns the stored JSON of a single car.
func Build(archetype string, engine, tires, style, reliability int) datatypes.JSON {
	return datatypes.JSON(fmt.Sprintf(
		`{"id":%q,"name":%q,"parts":{"engine":{"level":%d},"tires":{"level":%d},"style_body":{"level":%d},"reliability_base":{"level":%d}}}`,
		archetype, archetype, engine, tires, style, reliability,
	))
}

// Garage builds the stored garage JSON of a single car.
func Garage(archetype string, engine, tires, style, reliability int) datatypes.JSON {
	return datatypes.JSON("[" + string(Build(archetype, engine, tires, style, reliability)) + "]")
}
