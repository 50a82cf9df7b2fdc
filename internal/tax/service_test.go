package tax

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/countryharvest/storefront-backend/pkg/types"
)

func TestRateFor(t *testing.T) {
	t.Parallel()

	svc, err := NewService(decimal.RequireFromString("0.10"))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	tests := []struct {
		name    string
		address types.Address
		want    string
	}{
		{
			name:    "zero address falls back to default",
			address: types.Address{},
			want:    "0.10",
		},
		{
			name:    "us state",
			address: types.Address{Country: "US", State: "ny"},
			want:    "0.08",
		},
		{
			name:    "canadian province",
			address: types.Address{Country: "Canada", State: "ON"},
			want:    "0.13",
		},
		{
			name:    "unknown us state is untaxed",
			address: types.Address{Country: "US", State: "XX"},
			want:    "0",
		},
		{
			name:    "unknown country is untaxed",
			address: types.Address{Country: "FR", State: "75"},
			want:    "0",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := svc.RateFor(tc.address)
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestNewServiceRejectsOutOfRangeRate(t *testing.T) {
	t.Parallel()

	if _, err := NewService(decimal.RequireFromString("1.5")); err == nil {
		t.Fatal("expected error for rate above 1")
	}
	if _, err := NewService(decimal.RequireFromString("-0.1")); err == nil {
		t.Fatal("expected error for negative rate")
	}
}
