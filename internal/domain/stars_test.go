package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStarsFromFloat(t *testing.T) {
	tests := []struct {
		in      float64
		want    Stars
		wantErr bool
	}{
		{in: 0, want: 0},
		{in: 4.5, want: 450},
		{in: 5, want: 500},
		{in: 3.333, want: 333},
		{in: 5.01, wantErr: true},
		{in: -0.01, wantErr: true},
		{in: math.NaN(), wantErr: true},
		{in: math.Inf(1), wantErr: true},
	}
	for _, tt := range tests {
		got, err := StarsFromFloat(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrOutOfRange, "input %v", tt.in)
			continue
		}
		require.NoError(t, err, "input %v", tt.in)
		assert.Equal(t, tt.want, got, "input %v", tt.in)
	}
}

func TestParseStars(t *testing.T) {
	for in, want := range map[string]Stars{"0.00": 0, "4.5": 450, "5": 500, "3.67": 367, " 2.10 ": 210} {
		got, err := ParseStars(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "5.01", "4.567", "-1", "abc", ".5"} {
		_, err := ParseStars(in)
		assert.ErrorIs(t, err, ErrOutOfRange, in)
	}
}

func TestStarsString(t *testing.T) {
	assert.Equal(t, "0.00", Stars(0).String())
	assert.Equal(t, "4.05", Stars(405).String())
	assert.Equal(t, "5.00", MaxStars.String())
	assert.InDelta(t, 4.5, Stars(450).Float64(), 1e-9)
}

func TestStarsJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Stars Stars `json:"stars"`
	}{Stars: 450})
	require.NoError(t, err)
	assert.JSONEq(t, `{"stars": 4.50}`, string(b))

	var v struct {
		Score Stars `json:"score"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"score": 3.5}`), &v))
	assert.Equal(t, Stars(350), v.Score)

	require.NoError(t, json.Unmarshal([]byte(`{"score": "4.25"}`), &v))
	assert.Equal(t, Stars(425), v.Score)

	assert.ErrorIs(t, json.Unmarshal([]byte(`{"score": 6}`), &v), ErrOutOfRange)
}

func TestMeanStars(t *testing.T) {
	tests := []struct {
		name   string
		scores []Stars
		want   Stars
	}{
		{"no ratings", nil, 0},
		{"single", []Stars{450}, 450},
		{"exact", []Stars{500, 400}, 450},
		{"repeating decimal", []Stars{500, 500, 100}, 367},
		{"half rounds up", []Stars{1, 2}, 2},
		{"thirds round down", []Stars{400, 400, 500}, 433},
		{"all zero", []Stars{0, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MeanStars(tt.scores))
		})
	}
}
