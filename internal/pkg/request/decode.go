// Package request decodes HTTP request bodies.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/futig/coach-backend/internal/entity"
)

const maxBodyBytes = 1 << 20

// DecodeJSON reads one JSON object from the body into dst. Unknown fields and trailing
// data are rejected with entity.ErrInvalidFormat. An empty body is accepted when
// allowEmpty is set.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return nil
		}
		return fmt.Errorf("%w: %v", entity.ErrInvalidFormat, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: body must contain a single JSON object", entity.ErrInvalidFormat)
	}
	return nil
}
