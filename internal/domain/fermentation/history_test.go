package fermentation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC)

func at(hours float64) time.Time {
	return baseTime.Add(time.Duration(hours * float64(time.Hour)))
}

func hydrometer(sg float64, hours float64) Measurement {
	return Measurement{SpecificGravity: sg, MeasuredAt: at(hours), Method: MethodHydrometer}
}

func refractometer(sg float64, hours float64) Measurement {
	return Measurement{SpecificGravity: sg, MeasuredAt: at(hours), Method: MethodRefractometer}
}

func TestNewHistorySortsNewestFirstWithoutMutatingInput(t *testing.T) {
	input := []Measurement{hydrometer(1.050, 0), hydrometer(1.030, 48), hydrometer(1.040, 24)}
	h := NewHistory(input)

	require.Equal(t, 3, h.Len())
	require.Equal(t, 1.030, h.At(0).SpecificGravity)
	require.Equal(t, 1.040, h.At(1).SpecificGravity)
	require.Equal(t, 1.050, h.At(2).SpecificGravity)
	require.Equal(t, 1.050, input[0].SpecificGravity)

	latest, ok := h.Latest()
	require.True(t, ok)
	require.Equal(t, at(48), latest.MeasuredAt)

	_, ok = NewHistory(nil).Latest()
	require.False(t, ok)
}

func TestHistoryOnly(t *testing.T) {
	h := NewHistory([]Measurement{hydrometer(1.01, 0), refractometer(1.02, 10), hydrometer(1.005, 20)})
	only := h.Only(MethodHydrometer)
	require.Equal(t, 2, only.Len())
	require.Equal(t, 1.005, only.At(0).SpecificGravity)
	require.Len(t, h.Measurements(), 3)
}
