package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTypeFollowsWrapChain(t *testing.T) {
	base := Timeout("what-if still running")
	wrapped := fmt.Errorf("estimate: %w", base)

	assert.True(t, IsType(wrapped, TypeTimeout))
	assert.False(t, IsType(wrapped, TypeNetwork))
	assert.False(t, IsType(stderrors.New("plain"), TypeTimeout))

	typ, ok := TypeOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, TypeTimeout, typ)
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "without cause",
			err:  Input("template file is required"),
			want: "[INPUT_ERROR] template file is required",
		},
		{
			name: "with cause",
			err:  Network("submit what-if", stderrors.New("connection refused")),
			want: "[NETWORK_ERROR] submit what-if: connection refused",
		},
		{
			name: "missing field",
			err:  MissingField("Microsoft.Storage/storageAccounts", "sku.name"),
			want: "[MISSING_FIELD] Microsoft.Storage/storageAccounts state has no sku.name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestWithContext(t *testing.T) {
	err := New(TypeParsing, "bad body").WithContext("status", 200)
	assert.Equal(t, 200, err.Context["status"])
	assert.True(t, err.Is(TypeParsing))
}
