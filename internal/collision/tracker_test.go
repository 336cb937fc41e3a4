package collision

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/geokey/errs"
)

func TestNewTracker(t *testing.T) {
	tracker := NewTracker(errs.ErrDuplicateDimension)

	require.NotNil(t, tracker)
	require.Equal(t, 0, tracker.Count())
	require.Empty(t, tracker.Names())
}

func TestTracker_Track(t *testing.T) {
	tracker := NewTracker(errs.ErrDuplicateDimension)

	require.NoError(t, tracker.Track("lon"))
	require.NoError(t, tracker.Track("lat"))
	require.Equal(t, 2, tracker.Count())
	require.Equal(t, []string{"lon", "lat"}, tracker.Names())
	require.True(t, tracker.Contains("lat"))
	require.False(t, tracker.Contains("time"))

	err := tracker.Track("lon")
	require.ErrorIs(t, err, errs.ErrDuplicateDimension)
	require.ErrorContains(t, err, `"lon"`)
	require.Equal(t, 2, tracker.Count())

	require.ErrorIs(t, tracker.Track(""), errs.ErrEmptyName)
}

func TestTracker_TrackAll(t *testing.T) {
	tracker := NewTracker(errs.ErrDuplicateIndex)

	require.NoError(t, tracker.TrackAll("spatial", "spatio-temporal"))
	err := tracker.TrackAll("events", "spatial", "never-reached")
	require.ErrorIs(t, err, errs.ErrDuplicateIndex)
	require.Equal(t, []string{"spatial", "spatio-temporal", "events"}, tracker.Names())
}

func TestTracker_Reset(t *testing.T) {
	tracker := NewTracker(errs.ErrDuplicateDimension)
	require.NoError(t, tracker.TrackAll("x", "y"))

	tracker.Reset()
	require.Equal(t, 0, tracker.Count())
	require.False(t, tracker.Contains("x"))
	require.NoError(t, tracker.Track("x"))
}
