package hwscan

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusErr(t *testing.T) {
	tests := []struct {
		status   Status
		kind     Kind
		sentinel error
	}{
		{StatusCritical, KindCritical, ErrCritical},
		{StatusDriverFailure, KindDriverFailure, ErrDriverFailure},
		{StatusOperationFailed, KindOperationFailed, ErrOperationFailed},
		{StatusConversionFailed, KindConversionFailed, ErrConversionFailed},
		{Status(4), KindUnrecognized, ErrUnrecognized},
		{Status(-1), KindUnrecognized, ErrUnrecognized},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprint(int32(tc.status)), func(t *testing.T) {
			err := tc.status.Err()
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.sentinel)
			assert.Equal(t, tc.kind, KindOf(err))

			var scanErr *Error
			require.ErrorAs(t, err, &scanErr)
			assert.Equal(t, tc.status, scanErr.Code)
		})
	}

	assert.NoError(t, StatusSuccess.Err())
}

func TestUnrecognizedKeepsCode(t *testing.T) {
	err := Status(42).Err()
	assert.Contains(t, err.Error(), "unknown error: 42")
	assert.Contains(t, err.Error(), "code 42")
}

func TestErrorKindsAreDistinct(t *testing.T) {
	err := StatusDriverFailure.Err()
	assert.NotErrorIs(t, err, ErrOperationFailed)
	assert.NotErrorIs(t, err, ErrCritical)
}

func TestErrorFormat(t *testing.T) {
	cause := errors.New("boom")
	err := conversionError([]string{"devices[0]", "codecs[1]", "codec"}, "unknown code 999", cause)

	assert.Equal(t,
		"hwscan: conversion_failed (code 3) at devices[0].codecs[1].codec: unknown code 999 (caused by: boom)",
		err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrConversionFailed)
}

func TestConversionErrorCopiesPath(t *testing.T) {
	path := []string{"devices[0]", "num_codecs"}
	err := conversionError(path, "count exceeds the address space", nil)
	path[1] = "path"
	assert.Equal(t, []string{"devices[0]", "num_codecs"}, err.Path)
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("other")))
	assert.Equal(t, KindDriverFailure, KindOf(fmt.Errorf("wrapped: %w", StatusDriverFailure.Err())))
}
