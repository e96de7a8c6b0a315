package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "not found", err: NotFound("tenant %d not found", 42), want: KindNotFound},
		{name: "validation", err: Validation("amount must be positive"), want: KindValidation},
		{name: "conflict", err: Conflict("bed occupied"), want: KindConflict},
		{name: "invalid state", err: InvalidState("payment is not pending"), want: KindInvalidState},
		{name: "plain error", err: errors.New("boom"), want: KindUnknown},
		{name: "nil", err: nil, want: KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := Conflict("bed 2 is already occupied")
	outer := fmt.Errorf("check in tenant: %w", inner)

	assert.True(t, IsKind(outer, KindConflict))
	assert.False(t, IsKind(outer, KindNotFound))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindNotFound, cause, "load tenant %d", 7)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Contains(t, err.Error(), "load tenant 7")
	assert.Contains(t, err.Error(), "connection reset")
}
