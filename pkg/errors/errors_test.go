package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCauseAndCode(t *testing.T) {
	cause := stderrors.New("pivot below tolerance")
	err := Wrap(CodeSingularMatrix, "calibration data is collinear", cause)

	require.True(t, IsCode(err, CodeSingularMatrix))
	require.False(t, IsCode(err, CodeInvalidInput))
	require.ErrorIs(t, err, cause)
	require.Equal(t, "calibration data is collinear: pivot below tolerance", err.Error())
	require.Equal(t, CodeSingularMatrix, CodeOf(err))
}

func TestWrapWithoutCause(t *testing.T) {
	err := Wrap(CodeNotFound, "batch not found", nil)
	require.Equal(t, "batch not found", err.Error())
	require.Equal(t, "", CodeOf(stderrors.New("plain")))
}
