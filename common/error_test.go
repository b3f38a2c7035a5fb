package common

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		code Code
	}{
		{err: nil, code: Ok},
		{err: sql.ErrNoRows, code: Internal},
		{err: &Error{Code: NotFound, Err: fmt.Errorf("memo not found")}, code: NotFound},
		{err: fmt.Errorf("wrapped: %w", &Error{Code: Conflict, Err: fmt.Errorf("dup")}), code: Conflict},
	}
	for _, test := range tests {
		require.Equal(t, test.code, ErrorCode(test.err))
	}
}

func TestErrorMessage(t *testing.T) {
	require.Equal(t, "", ErrorMessage(nil))
	require.Equal(t, "Internal error.", ErrorMessage(fmt.Errorf("boom")))
	require.Equal(t, "memo not found", ErrorMessage(&Error{Code: NotFound, Err: fmt.Errorf("memo not found")}))
}

func TestGenUUID(t *testing.T) {
	a, b := GenUUID(), GenUUID()
	require.Len(t, a, 36)
	require.NotEqual(t, a, b)
}
