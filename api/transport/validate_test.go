package transport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklite/backend/domain"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestValidateCreate_TitleRequired(t *testing.T) {
	_, err := ValidateCreate(CreateTaskRequest{})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	assert.Equal(t, "title is required", err.Error())
}

func TestValidateCreate_BlankTitle(t *testing.T) {
	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := ValidateCreate(CreateTaskRequest{Title: strPtr(title)})
		require.Error(t, err, "title %q should be rejected", title)
		assert.Equal(t, "title cannot be empty", err.Error())
	}
}

func TestValidateCreate_TrimsTitle(t *testing.T) {
	payload, err := ValidateCreate(CreateTaskRequest{Title: strPtr("  Test task  ")})
	require.NoError(t, err)
	assert.Equal(t, "Test task", payload.Title)
}

func TestValidateCreate_TitleLengthBoundary(t *testing.T) {
	payload, err := ValidateCreate(CreateTaskRequest{Title: strPtr(strings.Repeat("a", 500))})
	require.NoError(t, err)
	assert.Len(t, payload.Title, 500)

	_, err = ValidateCreate(CreateTaskRequest{Title: strPtr(strings.Repeat("a", 501))})
	require.Error(t, err)
	assert.Equal(t, "title must be 500 characters or less", err.Error())
}

func TestValidateCreate_Priority(t *testing.T) {
	tests := []struct {
		name     string
		priority *string
		want     domain.Priority
		wantErr  bool
	}{
		{name: "omitted defaults later", priority: nil, want: ""},
		{name: "low", priority: strPtr("low"), want: domain.PriorityLow},
		{name: "medium", priority: strPtr("medium"), want: domain.PriorityMedium},
		{name: "high", priority: strPtr("high"), want: domain.PriorityHigh},
		{name: "unknown value", priority: strPtr("urgent"), wantErr: true},
		{name: "wrong case", priority: strPtr("HIGH"), wantErr: true},
		{name: "empty string", priority: strPtr(""), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := ValidateCreate(CreateTaskRequest{
				Title:    strPtr("walk the dog"),
				Priority: tt.priority,
			})
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, "priority must be one of: low, medium, high", err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, payload.Priority)
		})
	}
}

func TestValidateUpdate_RequiresAtLeastOneField(t *testing.T) {
	_, err := ValidateUpdate(UpdateTaskRequest{})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	assert.Equal(t, "at least one field (title, completed or priority) must be provided", err.Error())
}

func TestValidateUpdate_EachFieldIndependently(t *testing.T) {
	payload, err := ValidateUpdate(UpdateTaskRequest{Completed: boolPtr(true)})
	require.NoError(t, err)
	require.NotNil(t, payload.Completed)
	assert.True(t, *payload.Completed)
	assert.Nil(t, payload.Title)
	assert.Nil(t, payload.Priority)

	payload, err = ValidateUpdate(UpdateTaskRequest{Title: strPtr("  renamed  ")})
	require.NoError(t, err)
	require.NotNil(t, payload.Title)
	assert.Equal(t, "renamed", *payload.Title)

	_, err = ValidateUpdate(UpdateTaskRequest{Title: strPtr("   ")})
	require.Error(t, err)
	assert.Equal(t, "title cannot be empty", err.Error())

	_, err = ValidateUpdate(UpdateTaskRequest{
		Completed: boolPtr(true),
		Priority:  strPtr("sideways"),
	})
	require.Error(t, err)
	assert.Equal(t, "priority must be one of: low, medium, high", err.Error())
}

func TestDecodeJSON_MalformedVsWrongType(t *testing.T) {
	var create CreateTaskRequest

	err := DecodeJSON([]byte("{not json"), &create)
	require.Error(t, err)
	assert.Equal(t, "invalid JSON in request body", err.Error())

	err = DecodeJSON(nil, &create)
	require.Error(t, err)
	assert.Equal(t, "invalid JSON in request body", err.Error())

	err = DecodeJSON([]byte(`{"title": 42}`), &create)
	require.Error(t, err)
	assert.Equal(t, "title must be a string", err.Error())

	err = DecodeJSON([]byte(`[1,2,3]`), &create)
	require.Error(t, err)
	assert.Equal(t, "request body must be an object", err.Error())

	var update UpdateTaskRequest
	err = DecodeJSON([]byte(`{"completed": "yes"}`), &update)
	require.Error(t, err)
	assert.Equal(t, "completed must be a boolean", err.Error())

	err = DecodeJSON([]byte(`{"title":"ok","completed":true}`), &update)
	require.NoError(t, err)
	require.NotNil(t, update.Title)
	assert.Equal(t, "ok", *update.Title)
}
