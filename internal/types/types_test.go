package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"unauthorized", Unauthorized(""), KindUnauthorized},
		{"forbidden", Forbidden("nope"), KindForbidden},
		{"not found", NotFound("Shift not found"), KindNotFound},
		{"validation", Validation("bad"), KindValidation},
		{"wrapped validation", fmt.Errorf("ctx: %w", Validation("bad")), KindValidation},
		{"plain error", errors.New("connection refused"), KindInternal},
		{"nil", nil, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, KindOf(tc.err))
		})
	}
}

func TestPublicMessage_HidesInternalCause(t *testing.T) {
	err := Internal("Failed to create shift", errors.New("pq: relation does not exist"))

	assert.Equal(t, "Failed to create shift", PublicMessage(err, "Failed to create shift"))
	assert.Equal(t, "fallback", PublicMessage(errors.New("raw"), "fallback"))
	assert.Equal(t, "Shift not found", PublicMessage(NotFound("Shift not found"), "fallback"))
	assert.ErrorContains(t, err, "relation does not exist")
}

func TestOptionalTime_UnmarshalJSON(t *testing.T) {
	type body struct {
		NewEndTime OptionalTime `json:"newEndTime"`
	}

	var absent body
	require.NoError(t, json.Unmarshal([]byte(`{}`), &absent))
	assert.False(t, absent.NewEndTime.Set)
	assert.False(t, absent.NewEndTime.Clears())

	var null body
	require.NoError(t, json.Unmarshal([]byte(`{"newEndTime": null}`), &null))
	assert.True(t, null.NewEndTime.Set)
	assert.True(t, null.NewEndTime.Clears())

	var value body
	require.NoError(t, json.Unmarshal([]byte(`{"newEndTime": "2025-03-10T10:30:00Z"}`), &value))
	require.NotNil(t, value.NewEndTime.Value)
	assert.True(t, value.NewEndTime.Value.Equal(time.Date(2025, 3, 10, 10, 30, 0, 0, time.UTC)))
	assert.False(t, value.NewEndTime.Clears())
}

func TestDay_UnmarshalJSON(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)
	march10 := time.Date(2025, time.March, 10, 0, 0, 0, 0, rome)

	testCases := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "date only is local midnight", input: `"2025-03-10"`, want: march10},
		{name: "timestamp keeps its instant", input: `"2025-03-09T23:00:00Z"`, want: march10},
		{name: "dotted day", input: `"10.03.2025"`, want: march10},
		{name: "unsupported", input: `"10th of March"`, wantErr: true},
		{name: "not a string", input: `20250310`, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var day Day
			err := json.Unmarshal([]byte(tc.input), &day)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.False(t, day.IsZero())
			assert.True(t, tc.want.Equal(day.In(rome)), "got %s", day.In(rome))
		})
	}
}

func TestDay_ZoneDependsOnLocation(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	var body struct {
		Dates []Day `json:"dates"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"dates":["2025-01-01"]}`), &body))
	require.Len(t, body.Dates, 1)

	got := body.Dates[0].In(newYork)
	assert.Equal(t, 1, got.Day())
	assert.Equal(t, time.January, got.Month())
	assert.Equal(t, newYork, got.Location())

	assert.True(t, Day{}.IsZero())
	assert.True(t, Day{}.In(newYork).IsZero())
}
