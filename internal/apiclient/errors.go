// internal/apiclient/errors.go
//
// Error shape returned for non-2xx responses.
// The backend answers errors as {"detail": ...} where detail is one of:
//   - a string,
//   - a list of {msg, ...} objects (validation errors),
//   - an object with a msg field.
// All three fold into Error.Message; anything else falls back to
// "HTTP <code> <status text>".

package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/samber/lo"
)

// Error is a non-2xx response from the backend.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == http.StatusUnauthorized
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// errorFromBody builds an *Error from a response body.
func errorFromBody(status int, body []byte) *Error {
	return &Error{Status: status, Message: extractMessage(status, body)}
}

func extractMessage(status int, body []byte) string {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &env); err == nil && len(env.Detail) > 0 {
		if msg := detailMessage(env.Detail); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("HTTP %d %s", status, http.StatusText(status))
}

// detailMessage decodes the three accepted detail shapes.
func detailMessage(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}

	var list []json.RawMessage
	if json.Unmarshal(raw, &list) == nil && len(list) > 0 {
		msgs := lo.Map(list, func(item json.RawMessage, _ int) string {
			var e struct {
				Msg string `json:"msg"`
			}
			if json.Unmarshal(item, &e) == nil && e.Msg != "" {
				return e.Msg
			}
			return string(item)
		})
		return strings.Join(msgs, "; ")
	}

	var obj struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		return obj.Msg
	}
	return ""
}
