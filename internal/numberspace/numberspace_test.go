package numberspace

import (
	"errors"
	"testing"

	"github.com/rafflehq/raffle-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxValue(t *testing.T) {
	assert.Equal(t, int64(9), MaxValue(1))
	assert.Equal(t, int64(999), MaxValue(3))
	assert.Equal(t, int64(9999999999), MaxValue(10))

	assert.Equal(t, int64(-1), MaxValue(0))
	assert.Equal(t, int64(-1), MaxValue(11))
	assert.Equal(t, int64(-1), MaxValue(-3))
}

func TestFormat(t *testing.T) {
	got, err := Format(7, 4)
	require.NoError(t, err)
	assert.Equal(t, "0007", got)

	got, err = Format(0, 1)
	require.NoError(t, err)
	assert.Equal(t, "0", got)

	got, err = Format(999, 3)
	require.NoError(t, err)
	assert.Equal(t, "999", got)
}

func TestFormatOutOfRange(t *testing.T) {
	_, err := Format(1000, 3)
	assert.True(t, errors.Is(err, models.ErrOutOfRange))

	_, err = Format(-1, 3)
	assert.True(t, errors.Is(err, models.ErrOutOfRange))

	_, err = Format(5, 0)
	assert.True(t, errors.Is(err, models.ErrOutOfRange))
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("042", 3))
	assert.True(t, IsValid("000", 3))
	assert.True(t, IsValid("9", 1))

	assert.False(t, IsValid("42", 3), "too short")
	assert.False(t, IsValid("0042", 3), "too long")
	assert.False(t, IsValid("04a", 3), "non-digit")
	assert.False(t, IsValid("", 1))
	assert.False(t, IsValid("123", 0), "invalid width")
}
