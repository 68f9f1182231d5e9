package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryThroughWrapping(t *testing.T) {
	base := Invalid("faces[2]", "index out of range")
	wrapped := fmt.Errorf("roof container Main: %w", base)

	assert.True(t, IsCategory(wrapped, CategoryValidation))
	assert.False(t, IsCategory(wrapped, CategoryService))
	assert.Equal(t, CategoryValidation, GetCategory(wrapped))
	assert.False(t, Sent(wrapped))

	var e *Error
	require.True(t, stderrors.As(wrapped, &e))
	assert.Equal(t, "faces[2]", e.Context["field"])
}

func TestSentForRemoteFailures(t *testing.T) {
	cause := stderrors.New("connection refused")
	assert.True(t, Sent(Transport("/projects", cause)))
	assert.True(t, Sent(Service("/projects", cause)))
	assert.False(t, Sent(ConfigRequired("PARAGON_API_KEY")))
	assert.False(t, Sent(cause))
	assert.Equal(t, CategoryInternal, GetCategory(cause))
}

func TestErrorString(t *testing.T) {
	err := Transport("/projects", stderrors.New("timeout"))
	assert.Equal(t, "network: design service unreachable: timeout", err.Error())
	assert.ErrorContains(t, New(CategoryConfig, "bad"), "config: bad")
}
