package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsAppErrorDirect(t *testing.T) {
	err := New(CodeInsufficientCredits, "insufficient credits")

	appErr := AsAppError(err)
	assert.Equal(t, CodeInsufficientCredits, appErr.Code)
	assert.Equal(t, http.StatusPaymentRequired, appErr.HTTPStatus)
}

func TestAsAppErrorUnwrapsWrappedChain(t *testing.T) {
	// 业务错误常被事务层再包一层 %w，错误码和状态码不能因此退化成 500
	inner := New(CodeInsufficientCredits, "insufficient credits")
	wrapped := fmt.Errorf("transaction failed: %w", inner)

	appErr := AsAppError(wrapped)
	assert.Equal(t, CodeInsufficientCredits, appErr.Code)
	assert.Equal(t, http.StatusPaymentRequired, appErr.HTTPStatus)
}

func TestAsAppErrorForeignError(t *testing.T) {
	appErr := AsAppError(stderrors.New("boom"))
	assert.Equal(t, CodeInternalError, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus)
}

func TestIsCodeAcrossWrapping(t *testing.T) {
	inner := New(CodeUsageLimitReached, "daily limit reached")
	wrapped := fmt.Errorf("generate: %w", fmt.Errorf("quota: %w", inner))

	assert.True(t, IsCode(wrapped, CodeUsageLimitReached))
	assert.False(t, IsCode(wrapped, CodeValidation))
	assert.True(t, IsAppError(wrapped))
	assert.False(t, IsAppError(stderrors.New("plain")))
}

func TestWithDetailReturnsCopy(t *testing.T) {
	detailed := ErrValidation.WithDetail("storeID is required")
	require.Equal(t, "storeID is required", detailed.Detail)
	assert.Empty(t, ErrValidation.Detail)
}
