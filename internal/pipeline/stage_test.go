package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageState_Transitions(t *testing.T) {
	tests := []struct {
		name        string
		apply       func(s *StageState)
		wantStatus  StageStatus
		wantMessage string
		wantErr     bool
	}{
		{
			name:       "pending",
			apply:      func(s *StageState) {},
			wantStatus: StageStatusPending,
		},
		{
			name:       "active",
			apply:      func(s *StageState) { s.Start() },
			wantStatus: StageStatusActive,
		},
		{
			name: "completed",
			apply: func(s *StageState) {
				s.Start()
				s.Complete("loaded 3 records")
			},
			wantStatus:  StageStatusCompleted,
			wantMessage: "loaded 3 records",
		},
		{
			name: "failed",
			apply: func(s *StageState) {
				s.Start()
				s.Fail(errors.New("boom"))
			},
			wantStatus:  StageStatusFailed,
			wantMessage: "boom",
			wantErr:     true,
		},
		{
			name:        "skipped",
			apply:       func(s *StageState) { s.Skip("previous stage failed") },
			wantStatus:  StageStatusSkipped,
			wantMessage: "previous stage failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStageState(StageFit)
			tt.apply(s)

			assert.Equal(t, StageFit, s.Stage)
			assert.Equal(t, tt.wantStatus, s.GetStatus())
			assert.Equal(t, tt.wantMessage, s.Message)
			if tt.wantErr {
				assert.Error(t, s.Error)
			} else {
				assert.NoError(t, s.Error)
			}
		})
	}
}

func TestStageState_Duration(t *testing.T) {
	s := NewStageState(StageLoad)
	assert.Zero(t, s.Duration())

	s.Start()
	time.Sleep(5 * time.Millisecond)
	assert.Greater(t, s.Duration(), time.Duration(0))

	s.Complete("done")
	d := s.Duration()
	require.GreaterOrEqual(t, d, 5*time.Millisecond)
	assert.Equal(t, d, s.Duration())

	// A stage skipped without starting has no duration
	skipped := NewStageState(StageWrite)
	skipped.Skip("aborted")
	assert.Zero(t, skipped.Duration())
}

func TestStages_Order(t *testing.T) {
	assert.Equal(t, []Stage{StageLoad, StageFit, StageForecast, StageWrite}, Stages)
}
