package display

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodexForgeBR/ballroute/internal/scoring"
	"github.com/CodexForgeBR/ballroute/internal/sim"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		st   scoring.Status
		want Lines
	}{
		{
			name: "power on",
			st:   scoring.Status{},
			want: Lines{"---- - SHUT ?", "Fo Bo --- -", "NONE READY ?"},
		},
		{
			name: "mid goal back",
			st: scoring.Status{
				Mode:         scoring.ModeMidGoal,
				Direction:    scoring.DirectionBack,
				Active:       true,
				Elapsed:      1200 * time.Millisecond,
				StorageCount: 2,
			},
			want: Lines{"-M-- - SHUT *", "Fo B* ##- <", "MID 1.2s *"},
		},
		{
			name: "top goal front from storage",
			st: scoring.Status{
				Mode:           scoring.ModeTopGoal,
				Direction:      scoring.DirectionFront,
				Active:         true,
				StorageCount:   3,
				StorageRouting: true,
				FlapOpen:       true,
			},
			want: Lines{"---T S OPEN *", "F* Bo ### >", "TOP 0.0s *"},
		},
		{
			name: "collection idle",
			st:   scoring.Status{Mode: scoring.ModeCollection, StorageCount: 1},
			want: Lines{"C--- - SHUT .", "Fo Bo #-- -", "COLLECT READY ."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.st)
			assert.Equal(t, tt.want, got)
			for _, l := range got {
				assert.LessOrEqual(t, len(l), Width)
			}
		})
	}
}

func TestRender_TruncatesLongRuntime(t *testing.T) {
	st := scoring.Status{Mode: scoring.ModeCollection, Active: true, Elapsed: 123456 * time.Second}
	l := Render(st)
	assert.Len(t, l[2], Width)
}

func TestStorageVisual(t *testing.T) {
	assert.Equal(t, "---", StorageVisual(0))
	assert.Equal(t, "###", StorageVisual(3))
	assert.Equal(t, "???", StorageVisual(4))
	assert.Equal(t, "???", StorageVisual(-1))
}

func TestUpdater_ThrottlesAndDiffs(t *testing.T) {
	screen := &sim.Feedback{}
	u := NewUpdater(screen)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	st := scoring.Status{Mode: scoring.ModeMidGoal}
	require.True(t, u.Update(st, now))
	assert.Len(t, screen.Prints, 3, "first draw pushes every line")

	assert.False(t, u.Update(st, now.Add(100*time.Millisecond)), "inside refresh interval")

	st.StorageCount = 1
	require.True(t, u.Update(st, now.Add(RefreshInterval)))
	assert.Len(t, screen.Prints, 4, "only the changed line is pushed")
	assert.Equal(t, "Fo Bo #-- -", screen.Lines[1])

	u.Force()
	require.True(t, u.Update(st, now.Add(RefreshInterval+time.Millisecond)))
	assert.Len(t, screen.Prints, 7, "forced draw pushes every line")
	assert.Equal(t, 3, u.Draws())
}

func TestUpdater_Disconnected(t *testing.T) {
	screen := &sim.Feedback{Disconnected: true}
	u := NewUpdater(screen)
	assert.False(t, u.Update(scoring.Status{}, time.Now()))
	assert.Empty(t, screen.Prints)

	assert.False(t, NewUpdater(nil).Update(scoring.Status{}, time.Now()))
}

func TestConsoleSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleSink(&buf)
	require.True(t, s.Connected())

	require.NoError(t, s.Flush())
	assert.Empty(t, buf.String(), "nothing to draw yet")

	s.Print(0, "MID GOAL STORAGE EXTRA")
	s.Print(5, "ignored")
	s.Rumble("..")
	assert.Equal(t, "MID GOAL STORAGE", s.Lines()[0])
	assert.Contains(t, s.View(), "rumble ..")

	require.NoError(t, s.Flush())
	assert.Contains(t, buf.String(), "MID GOAL STORAGE")
	assert.Contains(t, buf.String(), "rumble ..")

	buf.Reset()
	s.Print(0, "MID GOAL STORAGE")
	require.NoError(t, s.Flush())
	assert.Empty(t, buf.String(), "unchanged screen is not redrawn")

	assert.False(t, NewConsoleSink(nil).Connected())
}
