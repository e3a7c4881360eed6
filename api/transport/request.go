package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tasklite/backend/domain"
)

// CreateTaskRequest is the wire shape of POST /api/tasks. Pointer fields
// distinguish "absent" from "present but zero".
type CreateTaskRequest struct {
	Title    *string `json:"title,omitempty"`
	Priority *string `json:"priority,omitempty"`
}

// UpdateTaskRequest is the wire shape of PATCH /api/tasks/{id}. Any subset
// of the fields may be present.
type UpdateTaskRequest struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	Priority  *string `json:"priority,omitempty"`
}

// ErrInvalidJSON marks a request body that could not be parsed at all, as
// opposed to one that parsed but failed validation.
var ErrInvalidJSON = domain.NewError(domain.ErrCodeInvalid, "invalid JSON in request body")

// DecodeJSON unmarshals a request body into dst. Unparseable bodies yield
// ErrInvalidJSON; bodies that parse but carry a wrong-typed field yield a
// field-specific validation error.
func DecodeJSON(body []byte, dst interface{}) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return ErrInvalidJSON
	}
	if err := json.Unmarshal(body, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return domain.NewError(domain.ErrCodeInvalid, typeMismatchMessage(typeErr))
		}
		return ErrInvalidJSON
	}
	return nil
}

func typeMismatchMessage(err *json.UnmarshalTypeError) string {
	switch err.Field {
	case "":
		return "request body must be an object"
	case "title":
		return "title must be a string"
	case "completed":
		return "completed must be a boolean"
	case "priority":
		return "priority must be a string"
	default:
		return fmt.Sprintf("%s has the wrong type", err.Field)
	}
}
