package search

import (
	"errors"
	"fmt"
)

// ErrEmptyQuery is returned before any fetch or oracle call when the query is
// missing or blank. The HTTP layer maps it to a 400.
var ErrEmptyQuery = errors.New("query parameter is required")

// FetchError reports a failed candidate-collection fetch. The whole request
// fails with it; no partial results are returned.
type FetchError struct {
	Collection string
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Collection, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
