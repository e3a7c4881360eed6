package transport

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tasklite/backend/domain"
)

// MaxTitleLength bounds task titles, measured in runes. Length 500 is
// accepted, 501 is rejected.
const MaxTitleLength = 500

func validateTitle(title string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", domain.NewError(domain.ErrCodeInvalid, "title cannot be empty")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", domain.NewError(domain.ErrCodeInvalid,
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	return strings.TrimSpace(title), nil
}

func validatePriority(raw string) (domain.Priority, error) {
	priority := domain.Priority(raw)
	if !priority.Valid() {
		return "", domain.NewError(domain.ErrCodeInvalid,
			"priority must be one of: low, medium, high")
	}
	return priority, nil
}

// ValidateCreate checks a create request and produces the domain payload.
func ValidateCreate(req CreateTaskRequest) (domain.CreateTaskPayload, error) {
	var payload domain.CreateTaskPayload

	if req.Title == nil {
		return payload, domain.NewError(domain.ErrCodeInvalid, "title is required")
	}
	title, err := validateTitle(*req.Title)
	if err != nil {
		return payload, err
	}
	payload.Title = title

	if req.Priority != nil {
		priority, err := validatePriority(*req.Priority)
		if err != nil {
			return payload, err
		}
		payload.Priority = priority
	}
	return payload, nil
}

// ValidateUpdate checks an update request and produces the sparse domain
// payload. At least one field must be present; each present field is
// validated independently.
func ValidateUpdate(req UpdateTaskRequest) (domain.UpdateTaskPayload, error) {
	var payload domain.UpdateTaskPayload

	if req.Title == nil && req.Completed == nil && req.Priority == nil {
		return payload, domain.NewError(domain.ErrCodeInvalid,
			"at least one field (title, completed or priority) must be provided")
	}

	if req.Title != nil {
		title, err := validateTitle(*req.Title)
		if err != nil {
			return payload, err
		}
		payload.Title = &title
	}
	if req.Completed != nil {
		completed := *req.Completed
		payload.Completed = &completed
	}
	if req.Priority != nil {
		priority, err := validatePriority(*req.Priority)
		if err != nil {
			return payload, err
		}
		payload.Priority = &priority
	}
	return payload, nil
}
