package calendar

import (
	"testing"
	"time"

	"clinic-console/internal/domain/entity"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastInstant(t time.Time) time.Time {
	return t.Add(-time.Nanosecond)
}

func TestRangeFor(t *testing.T) {
	anchor := at(2025, time.January, 8, 15, 30) // Wednesday

	tests := []struct {
		name  string
		mode  entity.ViewMode
		start time.Time
		end   time.Time
	}{
		{"day", entity.ViewDay, day(2025, time.January, 8), lastInstant(day(2025, time.January, 9))},
		{"week starts on monday", entity.ViewWeek, day(2025, time.January, 6), lastInstant(day(2025, time.January, 13))},
		{"month", entity.ViewMonth, day(2025, time.January, 1), lastInstant(day(2025, time.February, 1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := RangeFor(tt.mode, anchor, jakarta)
			assert.True(t, r.Start.Equal(tt.start), "start %s", r.Start)
			assert.True(t, r.End.Equal(tt.end), "end %s", r.End)
		})
	}

	t.Run("sunday belongs to the week before", func(t *testing.T) {
		r := RangeFor(entity.ViewWeek, at(2025, time.January, 12, 9, 0), jakarta)
		assert.True(t, r.Start.Equal(day(2025, time.January, 6)))
	})
}

func newTestWindow() (*Window, *clock.Mock) {
	clk := newMockClock(at(2025, time.January, 8, 10, 0))
	return NewWindow(clk, jakarta, quietLogger()), clk
}

func TestWindow_SetRange(t *testing.T) {
	w, _ := newTestWindow()

	var got []entity.DateRange
	w.Subscribe(func(r entity.DateRange, _ entity.ViewMode) {
		got = append(got, r)
	})

	week := entity.DateRange{Start: day(2025, time.January, 6), End: day(2025, time.January, 13)}
	require.NoError(t, w.SetRange(week, entity.ViewWeek))

	t.Run("same range is not announced twice", func(t *testing.T) {
		require.NoError(t, w.SetRange(week, entity.ViewWeek))
		assert.Len(t, got, 1)
	})

	t.Run("invalid range keeps the previous one", func(t *testing.T) {
		bad := entity.DateRange{Start: day(2025, time.January, 13), End: day(2025, time.January, 6)}
		err := w.SetRange(bad, entity.ViewWeek)
		assert.ErrorIs(t, err, ErrInvalidRange)

		empty := entity.DateRange{Start: day(2025, time.January, 6), End: day(2025, time.January, 6)}
		assert.ErrorIs(t, w.SetRange(empty, entity.ViewWeek), ErrInvalidRange)

		current, mode, ok := w.Current()
		assert.True(t, ok)
		assert.Equal(t, entity.ViewWeek, mode)
		assert.True(t, current.Equal(week))
		assert.Len(t, got, 1)
	})

	t.Run("invalid view mode", func(t *testing.T) {
		assert.ErrorIs(t, w.SetRange(week, entity.ViewMode("year")), ErrInvalidViewMode)
	})
}

func TestWindow_Navigate(t *testing.T) {
	w, clk := newTestWindow()

	require.NoError(t, w.Navigate(NavToday))
	r, mode, ok := w.Current()
	require.True(t, ok)
	assert.Equal(t, entity.ViewWeek, mode)
	assert.True(t, r.Start.Equal(day(2025, time.January, 6)))

	require.NoError(t, w.Navigate(NavNext))
	r, _, _ = w.Current()
	assert.True(t, r.Start.Equal(day(2025, time.January, 13)))

	require.NoError(t, w.Navigate(NavPrev))
	require.NoError(t, w.Navigate(NavPrev))
	r, _, _ = w.Current()
	assert.True(t, r.Start.Equal(day(2024, time.December, 30)))

	clk.Set(at(2025, time.March, 3, 8, 0))
	require.NoError(t, w.Navigate(NavToday))
	r, _, _ = w.Current()
	assert.True(t, r.Start.Equal(day(2025, time.March, 3)))

	assert.ErrorIs(t, w.Navigate(NavAction("sideways")), ErrInvalidNavigation)
}

func TestWindow_NavigateMonthDoesNotSkip(t *testing.T) {
	w, _ := newTestWindow()
	require.NoError(t, w.SetRange(RangeFor(entity.ViewMonth, day(2025, time.January, 31), jakarta), entity.ViewMonth))

	require.NoError(t, w.Navigate(NavNext))
	r, _, _ := w.Current()
	assert.True(t, r.Start.Equal(day(2025, time.February, 1)))
	assert.True(t, r.End.Equal(lastInstant(day(2025, time.March, 1))))
}

func TestWindow_SwitchView(t *testing.T) {
	w, _ := newTestWindow()

	var modes []entity.ViewMode
	w.Subscribe(func(_ entity.DateRange, mode entity.ViewMode) {
		modes = append(modes, mode)
	})

	require.NoError(t, w.SetRange(RangeFor(entity.ViewWeek, day(2025, time.January, 27), jakarta), entity.ViewWeek))
	require.NoError(t, w.SwitchView(entity.ViewDay))

	r, mode, _ := w.Current()
	assert.Equal(t, entity.ViewDay, mode)
	assert.True(t, r.Start.Equal(day(2025, time.January, 27)))

	require.NoError(t, w.SwitchView(entity.ViewMonth))
	r, _, _ = w.Current()
	assert.True(t, r.Start.Equal(day(2025, time.January, 1)))

	assert.ErrorIs(t, w.SwitchView(entity.ViewMode("agenda")), ErrInvalidViewMode)
	assert.Equal(t, []entity.ViewMode{entity.ViewWeek, entity.ViewDay, entity.ViewMonth}, modes)
}
