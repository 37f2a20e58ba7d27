package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/transit-bot/internal/domain"
)

func TestParseArrivalTime(t *testing.T) {
	got, err := domain.ParseArrivalTime("08:15")

	require.NoError(t, err)
	assert.Equal(t, domain.ArrivalTime{Hour: 8, Minute: 15}, got)
	assert.Equal(t, 495, got.Minutes())
	assert.Equal(t, "08:15", got.String())
}

func TestParseArrivalTime_PastMidnight(t *testing.T) {
	got, err := domain.ParseArrivalTime("24:05")

	require.NoError(t, err)
	assert.Equal(t, 24*60+5, got.Minutes())
}

func TestParseArrivalTime_Invalid(t *testing.T) {
	for _, in := range []string{"", "0815", "aa:10", "08:60", "-1:00", "08:xx"} {
		t.Run(in, func(t *testing.T) {
			_, err := domain.ParseArrivalTime(in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestDefaultFavoriteLabel(t *testing.T) {
	assert.Equal(t, "12/Central Square", domain.DefaultFavoriteLabel("12", "Central Square"))
}

func TestRoute_Serves(t *testing.T) {
	r := domain.Route{ID: 1, Number: "4", StopIDs: []int{10, 20}}

	assert.True(t, r.Serves(20))
	assert.False(t, r.Serves(30))
}
