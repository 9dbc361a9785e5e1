package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RoundsToCent(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		cents int64
	}{
		{"already exact", "12.34", 1234},
		{"rounds down", "12.341", 1234},
		{"rounds up", "12.346", 1235},
		{"half rounds away from zero", "12.345", 1235},
		{"negative half rounds away from zero", "-12.345", -1235},
		{"zero", "0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := decimal.NewFromString(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.cents, New(d).Cents())
		})
	}
}

func TestArithmetic_RoundsEachOperation(t *testing.T) {
	a := FromCents(1033) // 10.33
	b := FromCents(525)  // 5.25

	assert.Equal(t, int64(1558), a.Add(b).Cents())
	assert.Equal(t, int64(508), a.Sub(b).Cents())
	assert.Equal(t, int64(-1033), a.Neg().Cents())

	third := decimal.NewFromInt(3)
	// 10.33 / 3 = 3.44333... -> 3.44, immediately
	assert.Equal(t, int64(344), a.Div(third).Cents())
	// Multiplying back never resurrects the lost fraction.
	assert.Equal(t, int64(1032), a.Div(third).Mul(third).Cents())
}

func TestEqual(t *testing.T) {
	d, err := decimal.NewFromString("12.340")
	require.NoError(t, err)
	assert.True(t, FromCents(1234).Equal(New(d)))
	assert.False(t, FromCents(1234).Equal(FromCents(1235)))
}

func TestString_FixedTwoDigits(t *testing.T) {
	assert.Equal(t, "12.30", FromCents(1230).String())
	assert.Equal(t, "0.00", Zero().String())
	assert.Equal(t, "-0.05", FromCents(-5).String())
}

func TestJSON_RoundTrip(t *testing.T) {
	for _, cents := range []int64{0, 1, -1, 1234, -98765, 100} {
		m := FromCents(cents)
		data, err := json.Marshal(m)
		require.NoError(t, err)

		var back Money
		require.NoError(t, json.Unmarshal(data, &back))
		assert.True(t, m.Equal(back), "round trip of %d cents", cents)
	}
}

func TestUnmarshal_AcceptsTrailingZeros(t *testing.T) {
	var m Money
	require.NoError(t, json.Unmarshal([]byte(`"12.3400"`), &m))
	assert.Equal(t, int64(1234), m.Cents())
}

func TestUnmarshal_RejectsSubCentPrecision(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"non-zero third decimal", `"12.341"`},
		{"non-zero deep decimal", `"12.340001"`},
		{"negative sub-cent", `"-0.005"`},
		{"not a number", `"twelve"`},
		{"json number instead of string", `12.34`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Money
			err := json.Unmarshal([]byte(tt.in), &m)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidFormat)
		})
	}
}

func TestParse(t *testing.T) {
	m, err := Parse("-18.52")
	require.NoError(t, err)
	assert.Equal(t, int64(-1852), m.Cents())

	_, err = Parse("1.999")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
