package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/aquabill/internal/domain"
)

// ---------------------------------------------------------------------------
// 1. BillStatus.ValidTransition: full 2x2 state-machine matrix.
// ---------------------------------------------------------------------------

func TestBillStatus_ValidTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from domain.BillStatus
		to   domain.BillStatus
		want bool
	}{
		{domain.BillStatusGenerated, domain.BillStatusPaid, true},
		{domain.BillStatusGenerated, domain.BillStatusGenerated, false},
		{domain.BillStatusPaid, domain.BillStatusGenerated, false}, // no reversal
		{domain.BillStatusPaid, domain.BillStatusPaid, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.from.ValidTransition(tt.to))
		})
	}
}

func TestBill_Outstanding(t *testing.T) {
	t.Parallel()

	assert.True(t, (&domain.Bill{Status: domain.BillStatusGenerated}).Outstanding())
	assert.False(t, (&domain.Bill{Status: domain.BillStatusPaid}).Outstanding())
}

// ---------------------------------------------------------------------------
// 2. Charge: consumption and total computation.
// ---------------------------------------------------------------------------

func TestCharge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		start     string
		end       string
		rate      string
		wantUnits string
		wantTotal string
	}{
		{name: "monthly example", start: "1000", end: "1150", rate: "2.50", wantUnits: "150", wantTotal: "375"},
		{name: "fractional units", start: "10.5", end: "12.75", rate: "2.50", wantUnits: "2.25", wantTotal: "5.63"},
		{name: "no consumption", start: "100", end: "100", rate: "2.50", wantUnits: "0", wantTotal: "0"},
		{name: "meter regression is not clamped", start: "100", end: "90", rate: "2.50", wantUnits: "-10", wantTotal: "-25"},
		{name: "long rate rounds to cents", start: "0", end: "3", rate: "0.3333", wantUnits: "3", wantTotal: "1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			start := &domain.WaterReading{ReadingUnits: decimal.RequireFromString(tc.start)}
			end := &domain.WaterReading{ReadingUnits: decimal.RequireFromString(tc.end)}

			units, total := domain.Charge(start, end, decimal.RequireFromString(tc.rate))
			assert.True(t, units.Equal(decimal.RequireFromString(tc.wantUnits)), "units = %s", units)
			assert.True(t, total.Equal(decimal.RequireFromString(tc.wantTotal)), "total = %s", total)
		})
	}
}

// ---------------------------------------------------------------------------
// 3. DateOf
// ---------------------------------------------------------------------------

func TestDateOf(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, time.March, 31, 23, 59, 59, 999, time.UTC)
	got := domain.DateOf(ts)

	assert.Equal(t, time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, got, domain.DateOf(got), "idempotent")
}

// ---------------------------------------------------------------------------
// 4. DeleteMode
// ---------------------------------------------------------------------------

func TestParseDeleteMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    domain.DeleteMode
		wantErr bool
	}{
		{in: "soft", want: domain.DeleteSoft},
		{in: "hard", want: domain.DeleteHard},
		{in: "", wantErr: true},
		{in: "HARD", wantErr: true},
	}

	for _, tc := range tests {
		t.Run("mode_"+tc.in, func(t *testing.T) {
			t.Parallel()

			got, err := domain.ParseDeleteMode(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.in, got.String())
		})
	}
}

func TestDeleteMode_StringUnknown(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "DeleteMode(7)", domain.DeleteMode(7).String())
}

// ---------------------------------------------------------------------------
// 5. Sentinel errors are distinct.
// ---------------------------------------------------------------------------

func TestSentinelErrors_Distinct(t *testing.T) {
	t.Parallel()

	all := []error{
		domain.ErrNotFound,
		domain.ErrDuplicateKey,
		domain.ErrInvalidState,
		domain.ErrValidation,
		domain.ErrStorage,
	}
	for i, a := range all {
		for j, b := range all {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
			}
		}
	}
}
