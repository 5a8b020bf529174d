package errors

import (
	"context"
	"errors"
	"io/fs"

	"github.com/matzehuels/stacktree/pkg/cache"
	"github.com/matzehuels/stacktree/pkg/config"
	stio "github.com/matzehuels/stacktree/pkg/io"
	"github.com/matzehuels/stacktree/pkg/render"
	"github.com/matzehuels/stacktree/pkg/source"
	"github.com/matzehuels/stacktree/pkg/table"
	"github.com/matzehuels/stacktree/pkg/tree"
)

var classes = []struct {
	target error
	code   Code
}{
	{tree.ErrUnknownColumn, ErrCodeUnknownColumn},
	{tree.ErrNonNumericMeasure, ErrCodeInvalidMeasure},
	{table.ErrRaggedColumns, ErrCodeInvalidTable},
	{table.ErrDuplicateColumn, ErrCodeInvalidTable},
	{table.ErrInvalidColumnID, ErrCodeInvalidTable},
	{table.ErrUnknownOrder, ErrCodeInvalidTable},
	{table.ErrUnsupportedCell, ErrCodeInvalidTable},
	{source.ErrDatasetNotFound, ErrCodeDatasetNotFound},
	{source.ErrInvalidDataset, ErrCodeInvalidInput},
	{stio.ErrUnsupportedExtension, ErrCodeInvalidFormat},
	{config.ErrInvalid, ErrCodeInvalidConfig},
	{cache.ErrNetwork, ErrCodeNetwork},
	{render.ErrConverterMissing, ErrCodeUnavailable},
	{fs.ErrNotExist, ErrCodeFileNotFound},
	{context.DeadlineExceeded, ErrCodeTimeout},
}

// Classify attaches a code to err based on the library sentinel it wraps.
// The message is the text of err.
// Errors that already carry a code, nil and context.Canceled are returned
// unchanged. Unrecognized errors get ErrCodeInternal.
func Classify(err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return err
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	for _, c := range classes {
		if errors.Is(err, c.target) {
			return &Error{Code: c.code, Message: err.Error(), Cause: err}
		}
	}
	return &Error{Code: ErrCodeInternal, Message: err.Error(), Cause: err}
}
