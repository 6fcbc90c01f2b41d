package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aussiebroadwan/mindful/pkg/validatex"
)

// MaxBodyBytes caps request bodies read by this package.
const MaxBodyBytes = 64 << 10

// ErrMalformedBody is returned when a request body is not the expected JSON.
var ErrMalformedBody = errors.New("httpx: malformed request body")

// DecodeJSON decodes the request body into v and validates it. Errors wrap
// ErrMalformedBody or are a *validatex.Error.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", ErrMalformedBody)
		}
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	return validatex.Struct(v)
}

// PeekJSONField returns the top-level string field of a JSON body without
// consuming it; the body is restored for the next reader. Non-JSON or
// missing fields yield "".
func PeekJSONField(r *http.Request, field string) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(fields[field], &s); err != nil {
		return ""
	}
	return s
}
