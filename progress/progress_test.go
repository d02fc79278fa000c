package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func collect(updates *[]Update) Sink {
	return func(update Update) {
		*updates = append(*updates, update)
	}
}

func TestSpan_At(t *testing.T) {
	span := Span{Start: 12, End: 35}
	assert.Equal(t, 12.0, span.At(0))
	assert.Equal(t, 35.0, span.At(1))
	assert.InDelta(t, 23.5, span.At(0.5), 0.0001)
}

func TestSpan_Sub(t *testing.T) {
	span := Span{Start: 35, End: 60}
	sub := span.Sub(0.05, 0.65)
	assert.InDelta(t, 36.25, sub.Start, 0.0001)
	assert.InDelta(t, 51.25, sub.End, 0.0001)
}

func TestTracker_BeginStageEmitsAtStart(t *testing.T) {
	var updates []Update
	tracker := New(collect(&updates))
	tracker.BeginStage(Span{Start: 12, End: 35}, "Installing Minecraft 1.20.1")

	if assert.Len(t, updates, 1) {
		assert.Equal(t, "Installing Minecraft 1.20.1", updates[0].Message)
		if assert.NotNil(t, updates[0].Percent) {
			assert.Equal(t, 12.0, *updates[0].Percent)
		}
		assert.False(t, updates[0].Err)
	}
}

func TestTracker_RemapsCollaboratorTicks(t *testing.T) {
	var updates []Update
	tracker := New(collect(&updates))
	tracker.BeginStage(Span{Start: 10, End: 20}, "stage")
	tracker.SetMax(4)
	tracker.SetProgress(1)
	tracker.SetProgress(2)
	tracker.SetProgress(4)

	last := func() float64 { return *updates[len(updates)-1].Percent }
	assert.InDelta(t, 20.0, last(), 0.0001)

	positions := make([]float64, 0, len(updates))
	for _, update := range updates {
		if update.Percent != nil {
			positions = append(positions, *update.Percent)
		}
	}
	for i := 1; i < len(positions); i++ {
		assert.GreaterOrEqual(t, positions[i], positions[i-1], "bar moved backwards within a stage")
	}
}

func TestTracker_OverflowClampsToRangeEnd(t *testing.T) {
	var updates []Update
	tracker := New(collect(&updates))
	tracker.BeginStage(Span{Start: 0, End: 50}, "stage")
	tracker.SetMax(2)
	tracker.SetProgress(5)
	assert.InDelta(t, 50.0, *updates[len(updates)-1].Percent, 0.0001)
}

func TestTracker_NonPositiveMaxIgnored(t *testing.T) {
	var updates []Update
	tracker := New(collect(&updates))
	tracker.BeginStage(Span{Start: 30, End: 40}, "stage")
	tracker.SetMax(0)
	tracker.SetProgress(3)
	// position holds at the stage start while no max is known
	assert.InDelta(t, 30.0, *updates[len(updates)-1].Percent, 0.0001)
}

func TestTracker_SetStatusCombinesLabel(t *testing.T) {
	var updates []Update
	tracker := New(collect(&updates))
	tracker.BeginStage(Span{Start: 0, End: 10}, "Installing Fabric 0.15.11")
	tracker.SetStatus("resolving libraries")
	assert.Equal(t, "Installing Fabric 0.15.11: resolving libraries", updates[len(updates)-1].Message)
}

func TestTracker_ErrorAndMessage(t *testing.T) {
	var updates []Update
	tracker := New(collect(&updates))
	tracker.Error("download failed", 12)
	tracker.Message("note", false)

	assert.True(t, updates[0].Err)
	assert.Equal(t, 12.0, *updates[0].Percent)
	assert.Nil(t, updates[1].Percent)
}

func TestTracker_NilSink(t *testing.T) {
	tracker := New(nil)
	assert.NotPanics(t, func() {
		tracker.BeginStage(Span{Start: 0, End: 100}, "stage")
		tracker.SetMax(3)
		tracker.SetProgress(2)
	})
}
