package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorMatchesSentinel(t *testing.T) {
	err := Newf(ErrCodecMismatch, "tag %d", 3)
	assert.ErrorIs(t, err, ErrCodecMismatch)
	assert.NotErrorIs(t, err, ErrCorruptIndex)
	assert.Equal(t, "dictionary codec mismatch: tag 3", err.Error())
}

func TestAppErrorSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(ErrQuerySyntax, "empty query"))
	assert.ErrorIs(t, err, ErrQuerySyntax)
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{New(ErrQuerySyntax, "x"), 2},
		{New(ErrInvalidInput, "x"), 2},
		{New(ErrCodecMismatch, "x"), 3},
		{New(ErrCorruptIndex, "x"), 3},
		{New(ErrConstruction, "x"), 4},
		{errors.New("unrelated"), 1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ExitCode(tc.err), "%v", tc.err)
	}
}
