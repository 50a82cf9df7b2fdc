package tax

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/countryharvest/storefront-backend/pkg/types"
)

// Service resolves the sales tax rate for a destination. Carts without a
// shipping address yet use the configured default rate; once an address is
// known the jurisdiction table wins, with unknown jurisdictions taxed at zero.
type Service interface {
	DefaultRate() decimal.Decimal
	RateFor(address types.Address) decimal.Decimal
}

type service struct {
	defaultRate decimal.Decimal
}

// NewService builds a tax service around the configured fallback rate.
func NewService(defaultRate decimal.Decimal) (Service, error) {
	if defaultRate.IsNegative() || defaultRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("default tax rate must be within [0, 1]")
	}
	return &service{defaultRate: defaultRate}, nil
}

var usStateRates = map[string]string{
	"AL": "0.04", "AK": "0", "AZ": "0.056", "AR": "0.065", "CA": "0.0725",
	"CO": "0.029", "CT": "0.0635", "DE": "0", "FL": "0.06", "GA": "0.04",
	"HI": "0.04", "ID": "0.06", "IL": "0.0625", "IN": "0.07", "IA": "0.06",
	"KS": "0.065", "KY": "0.06", "LA": "0.0445", "ME": "0.055", "MD": "0.06",
	"MA": "0.0625", "MI": "0.06", "MN": "0.06875", "MS": "0.07", "MO": "0.04225",
	"MT": "0", "NE": "0.055", "NV": "0.0685", "NH": "0", "NJ": "0.06625",
	"NM": "0.05125", "NY": "0.08", "NC": "0.0475", "ND": "0.05", "OH": "0.0575",
	"OK": "0.045", "OR": "0", "PA": "0.06", "RI": "0.07", "SC": "0.06",
	"SD": "0.045", "TN": "0.07", "TX": "0.0625", "UT": "0.0485", "VT": "0.06",
	"VA": "0.053", "WA": "0.065", "WV": "0.06", "WI": "0.05", "WY": "0.04",
	"DC": "0.06",
}

var caProvinceRates = map[string]string{
	"AB": "0.05", "BC": "0.12", "MB": "0.12", "NB": "0.15", "NL": "0.15",
	"NS": "0.15", "NT": "0.05", "NU": "0.05", "ON": "0.13", "PE": "0.15",
	"QC": "0.14975", "SK": "0.11", "YT": "0.05",
}

func (s *service) DefaultRate() decimal.Decimal {
	return s.defaultRate
}

func (s *service) RateFor(address types.Address) decimal.Decimal {
	if address.IsZero() {
		return s.defaultRate
	}

	region := strings.ToUpper(strings.TrimSpace(address.State))
	switch strings.ToUpper(strings.TrimSpace(address.Country)) {
	case "US", "USA", "UNITED STATES":
		if rate, ok := usStateRates[region]; ok {
			return decimal.RequireFromString(rate)
		}
	case "CA", "CAN", "CANADA":
		if rate, ok := caProvinceRates[region]; ok {
			return decimal.RequireFromString(rate)
		}
	}
	return decimal.Zero
}
