package promo

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/feedback"
)

func TestTable_Lookup(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		percent int64
		wantErr bool
	}{
		{name: "exact", input: "SAVE20", want: "SAVE20", percent: 20},
		{name: "lower case", input: "first10", want: "FIRST10", percent: 10},
		{name: "mixed case with spaces", input: "  WelCome15 ", want: "WELCOME15", percent: 15},
		{name: "unknown", input: "bogus", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DefaultTable().Lookup(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidCode)
				var icErr *InvalidCodeError
				require.ErrorAs(t, err, &icErr)
				assert.Equal(t, tt.input, icErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Code)
			assert.True(t, decimal.NewFromInt(tt.percent).Equal(got.Percent))
		})
	}
}

func TestSelection_ApplyReplacesPrevious(t *testing.T) {
	var buf feedback.Buffer
	s := NewSelection(DefaultTable(), &buf)

	_, ok := s.Applied()
	require.False(t, ok)

	_, err := s.Apply("first10")
	require.NoError(t, err)

	c, err := s.Apply("SAVE20")
	require.NoError(t, err)
	assert.Equal(t, "SAVE20", c.Code)

	applied, ok := s.Applied()
	require.True(t, ok)
	assert.Equal(t, "SAVE20", applied.Code)

	events, _ := buf.Drain()
	require.Len(t, events, 2)
	assert.Equal(t, "Promo Code Applied!", events[1].Title)
	assert.Equal(t, "You saved 20% on your order.", events[1].Description)
}

func TestSelection_InvalidCodeKeepsState(t *testing.T) {
	var buf feedback.Buffer
	s := NewSelection(DefaultTable(), &buf)

	_, err := s.Apply("bogus")
	require.ErrorIs(t, err, ErrInvalidCode)
	_, ok := s.Applied()
	assert.False(t, ok)

	_, err = s.Apply("WELCOME15")
	require.NoError(t, err)
	_, err = s.Apply("bogus")
	require.Error(t, err)

	applied, ok := s.Applied()
	require.True(t, ok)
	assert.Equal(t, "WELCOME15", applied.Code)

	events, _ := buf.Drain()
	require.Len(t, events, 3)
	assert.Equal(t, feedback.SeverityDestructive, events[0].Severity)
	assert.Equal(t, "Invalid Promo Code", events[2].Title)
}

func TestSelection_Remove(t *testing.T) {
	s := NewSelection(DefaultTable(), nil)
	_, err := s.Apply("SAVE20")
	require.NoError(t, err)

	s.Remove()
	_, ok := s.Applied()
	assert.False(t, ok)
}

func TestTable_Validate(t *testing.T) {
	require.NoError(t, DefaultTable().Validate())
	require.Error(t, Table{"save20": decimal.NewFromInt(20)}.Validate())
	require.Error(t, Table{"HUGE": decimal.NewFromInt(120)}.Validate())
	require.Error(t, Table{"NEG": decimal.NewFromInt(-1)}.Validate())
}
