package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTimeout means the request was cut off before the server answered.
	// The server-side effect may still have happened; callers must treat
	// the outcome as unknown, not failed.
	ErrTimeout = errors.New("request timed out")

	// ErrSessionExpired is returned for a 401 on any call made while a
	// token was held. Distinct from a rejected login, which is a plain
	// StatusError.
	ErrSessionExpired = errors.New("session expired")
)

// ValidationError carries the first field-level message from a structured
// 422 response.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// StatusError is any other non-success HTTP response, with the best
// message the body yielded.
type StatusError struct {
	Status int
	Msg    string
}

func (e *StatusError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("HTTP error %d", e.Status)
}

const genericValidationMsg = "Validation error"

// errorBody is the server's error envelope. FastAPI puts everything under
// "detail", which may be a string, an object, or a list of field errors.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

type fieldError struct {
	Msg     string `json:"msg"`
	Message string `json:"message"`
}

func firstValidationMessage(raw []byte) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return genericValidationMsg
	}

	var fields []fieldError
	if err := json.Unmarshal(body.Detail, &fields); err == nil {
		for _, f := range fields {
			if f.Msg != "" {
				return f.Msg
			}
			if f.Message != "" {
				return f.Message
			}
		}
		return genericValidationMsg
	}

	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil && s != "" {
		return s
	}
	return genericValidationMsg
}

// extractMessage pulls a human-readable message out of an error body:
// detail string, detail.message, or top-level message, in that order.
func extractMessage(raw []byte) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if len(body.Detail) > 0 {
		var s string
		if err := json.Unmarshal(body.Detail, &s); err == nil && strings.TrimSpace(s) != "" {
			return s
		}
		var nested fieldError
		if err := json.Unmarshal(body.Detail, &nested); err == nil {
			if nested.Message != "" {
				return nested.Message
			}
			if nested.Msg != "" {
				return nested.Msg
			}
		}
	}
	return body.Message
}
