package report

import (
	"errors"
	"fmt"

	"github.com/chrissnell/wxreport/internal/types"
)

// ErrInvalidRequest is returned when the request is rejected before any fetch
var ErrInvalidRequest = types.ErrInvalidRequest

// ErrNoDataAvailable is returned when every station and parameter yielded zero points
var ErrNoDataAvailable = errors.New("no data available")

// WorkspaceError reports a failure to create or remove a job workspace
type WorkspaceError struct {
	Op   string
	Path string
	Err  error
}

func (e *WorkspaceError) Error() string {
	return fmt.Sprintf("workspace %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *WorkspaceError) Unwrap() error {
	return e.Err
}
