package fermentation

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/ciderworks/pkg/errors"
)

func TestPercentFermented(t *testing.T) {
	require.Equal(t, 57.7, PercentFermented(1.050, 1.020, 0.998))
	require.Equal(t, 100.0, PercentFermented(1.050, 0.998, 0.998))
	require.Equal(t, 0.0, PercentFermented(1.050, 1.050, 0.998))
}

func TestPercentFermentedSafeDegrade(t *testing.T) {
	require.Zero(t, PercentFermented(1.040, 1.045, 0.998), "current above OG after blending")
	require.Zero(t, PercentFermented(1.000, 0.999, 1.000), "target not below OG")
	require.Zero(t, PercentFermented(1.050, 1.020, 1.060))
}

func TestStrictPercentFermented(t *testing.T) {
	got, err := StrictPercentFermented(1.050, 1.020, 0.998)
	require.NoError(t, err)
	require.Equal(t, 57.7, got)

	_, err = StrictPercentFermented(1.040, 1.045, 0.998)
	require.ErrorIs(t, err, ErrGravityOrder)
	require.True(t, apperrors.IsCode(err, apperrors.CodeDomainInconsistency))

	_, err = StrictPercentFermented(1.040, 1.020, 1.040)
	require.ErrorIs(t, err, ErrGravityOrder)

	_, err = StrictPercentFermented(1.3, 1.020, 1.000)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestDetermineStageDefaults(t *testing.T) {
	thresholds := DefaultStageThresholds()
	cases := map[float64]Stage{
		-0.1:  StageUnknown,
		0:     StageEarly,
		57.7:  StageEarly,
		70:    StageMid,
		89.9:  StageMid,
		90:    StageApproachingDry,
		97.99: StageApproachingDry,
		98:    StageTerminal,
		104:   StageTerminal,
	}
	for percent, want := range cases {
		require.Equal(t, want, DetermineStage(percent, thresholds), "percent %v", percent)
	}
}

func TestDetermineStageIsMonotonic(t *testing.T) {
	rank := map[Stage]int{StageUnknown: 0, StageEarly: 1, StageMid: 2, StageApproachingDry: 3, StageTerminal: 4}
	thresholdSets := []StageThresholds{
		DefaultStageThresholds(),
		{EarlyMax: 50, MidMax: 80, ApproachingDryMax: 95},
		{EarlyMax: 10, MidMax: 11, ApproachingDryMax: 100},
	}
	for _, thresholds := range thresholdSets {
		require.NoError(t, thresholds.Validate())
		prev := -1
		for x := -5.0; x <= 105; x += 0.25 {
			r := rank[DetermineStage(x, thresholds)]
			require.GreaterOrEqual(t, r, prev, "x=%v thresholds=%+v", x, thresholds)
			prev = r
		}
	}
}

func TestStageThresholdsValidate(t *testing.T) {
	require.NoError(t, DefaultStageThresholds().Validate())
	require.ErrorIs(t, StageThresholds{EarlyMax: 0, MidMax: 50, ApproachingDryMax: 90}.Validate(), ErrInvalidSettings)
	require.ErrorIs(t, StageThresholds{EarlyMax: 70, MidMax: 70, ApproachingDryMax: 90}.Validate(), ErrInvalidSettings)
	require.ErrorIs(t, StageThresholds{EarlyMax: 70, MidMax: 90, ApproachingDryMax: 101}.Validate(), ErrInvalidSettings)
}

func TestSettingsValidate(t *testing.T) {
	require.NoError(t, DefaultSettings().Validate())

	s := DefaultSettings()
	s.Stall.MinDays = 0
	require.ErrorIs(t, s.Validate(), ErrInvalidSettings)

	s.Stall.Enabled = false
	require.NoError(t, s.Validate())

	s = DefaultSettings()
	s.Stall.SGThreshold = -0.001
	require.ErrorIs(t, s.Validate(), ErrInvalidSettings)
}

func TestRecommendedFrequency(t *testing.T) {
	require.Equal(t, FrequencyWindow{MinDays: 1, MaxDays: 2}, RecommendedFrequency(StageEarly))
	require.Equal(t, FrequencyWindow{MinDays: 2, MaxDays: 3}, RecommendedFrequency(StageMid))
	require.Equal(t, FrequencyWindow{MinDays: 3, MaxDays: 4}, RecommendedFrequency(StageApproachingDry))
	require.Equal(t, FrequencyWindow{MinDays: 7, MaxDays: 14}, RecommendedFrequency(StageTerminal))
	require.Equal(t, FrequencyWindow{MinDays: 1, MaxDays: 3}, RecommendedFrequency(StageUnknown))
}
