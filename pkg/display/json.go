package display

import (
	"encoding/json"
	"io"

	"github.com/arthur-debert/dotfold/pkg/errors"
)

// WriteJSON emits a command result as indented JSON for scripting.
// The raw result goes out, not the report, so nothing display-shaped
// leaks into the machine format.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode result")
	}
	return nil
}
