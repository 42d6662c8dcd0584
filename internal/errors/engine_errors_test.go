package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelMatching(t *testing.T) {
	err := Newf(KindInvalidStopDistance, "risk", "PositionSize", "stop distance must be positive, got %.4f", -1.0)
	assert.ErrorIs(t, err, ErrInvalidStopDistance)
	assert.NotErrorIs(t, err, ErrOrderNotFound)
}

func TestWrapPreservesUnderlying(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrap(cause, KindCalendarMismatch, "portfolio", "BuildPortfolioCurve")
	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrCalendarMismatch)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "CALENDAR_MISMATCH")
	assert.Contains(t, err.Error(), "boom")

	assert.Nil(t, Wrap(nil, KindCalendarMismatch, "portfolio", "BuildPortfolioCurve"))
}

func TestSentinelMatchingThroughWrapping(t *testing.T) {
	inner := New(KindDegenerateCurve, "portfolio", "MaxDrawdown", "too short")
	outer := fmt.Errorf("run failed: %w", inner)
	assert.ErrorIs(t, outer, ErrDegenerateCurve)
}

func TestAbortsPortfolio(t *testing.T) {
	assert.True(t, AbortsPortfolio(New(KindCalendarMismatch, "portfolio", "Validate", "dup")))
	assert.True(t, AbortsPortfolio(New(KindDegenerateCurve, "portfolio", "MaxDrawdown", "short")))
	assert.False(t, AbortsPortfolio(New(KindInvalidStopDistance, "risk", "PositionSize", "bad stop")))
	assert.False(t, AbortsPortfolio(stderrors.New("unrelated")))
}
