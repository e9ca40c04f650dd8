package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindHelpers(t *testing.T) {
	testCases := []struct {
		name      string
		err       error
		check     func(error) bool
		wantMatch bool
	}{
		{name: "validation", err: Validation("bad %s", "input"), check: IsValidation, wantMatch: true},
		{name: "not found wrapped", err: fmt.Errorf("lookup: %w", NotFound("client %d not found", 3)), check: IsNotFound, wantMatch: true},
		{name: "duplicate sentinel", err: ErrDuplicateMail, check: IsDuplicate, wantMatch: true},
		{name: "config missing", err: ErrEmailNotSetUp, check: IsConfigMissing, wantMatch: true},
		{name: "transport", err: Wrap(errors.New("dial tcp"), ErrCodeTransport, "smtp failed"), check: IsTransport, wantMatch: true},
		{name: "plain error", err: errors.New("boom"), check: IsNotFound, wantMatch: false},
		{name: "other kind", err: ErrInvalidStatus, check: IsNotFound, wantMatch: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantMatch, tc.check(tc.err))
		})
	}
}

func TestMessageAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("send: %w", Wrap(cause, ErrCodeTransport, "could not send email"))

	assert.Equal(t, "could not send email", Message(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "boom", Message(errors.New("boom")))
	assert.Contains(t, Wrap(cause, ErrCodeTransport, "x").Error(), "caused by: connection refused")
}
