// internal/scoring/rates.go
package scoring

import (
	"errors"
	"fmt"
)

var ErrRateConfigInvalid = errors.New("RATE_CONFIG_INVALID")

// Rates is the read-only rate configuration the Calculator is built from.
// Every field is required: monetary rules must never run on silent zero
// defaults, so validation fails fast at load time instead.
type Rates struct {
	TravelCashback   float64  `mapstructure:"travel_cashback" json:"travelCashback"`
	TravelCategories []string `mapstructure:"travel_categories" json:"travelCategories"`

	Premium    PremiumRates    `mapstructure:"premium" json:"premium"`
	CreditCard CreditCardRates `mapstructure:"credit_card" json:"creditCard"`

	FXSavingRate float64 `mapstructure:"fx_saving_rate" json:"fxSavingRate"`

	Deposits DepositRates `mapstructure:"deposits" json:"deposits"`
}

// PremiumRates configures the premium-card cashback rule.
type PremiumRates struct {
	BaseDefault       float64  `mapstructure:"base_default" json:"baseDefault"`
	BaseMid           float64  `mapstructure:"base_mid" json:"baseMid"`
	BaseHigh          float64  `mapstructure:"base_high" json:"baseHigh"`
	BoostedRate       float64  `mapstructure:"boosted_categories_rate" json:"boostedRate"`
	BoostedCategories []string `mapstructure:"boosted_categories" json:"boostedCategories"`
	CashbackCapMonth  float64  `mapstructure:"cashback_cap_month" json:"cashbackCapMonth"`
}

// CreditCardRates configures the credit-card favourite-categories rule.
type CreditCardRates struct {
	FavRate          float64  `mapstructure:"fav_rate" json:"favRate"`
	OnlineCategories []string `mapstructure:"online_categories" json:"onlineCategories"`
}

// DepositRates holds the annual rates of the three deposit products.
type DepositRates struct {
	Multi float64 `mapstructure:"multi" json:"multi"`
	Save  float64 `mapstructure:"save" json:"save"`
	Accum float64 `mapstructure:"accum" json:"accum"`
}

// Validate reports the first missing or non-positive required rate.
func (r Rates) Validate() error {
	checks := []struct {
		key string
		val float64
	}{
		{"rates.travel_cashback", r.TravelCashback},
		{"rates.premium.base_default", r.Premium.BaseDefault},
		{"rates.premium.base_mid", r.Premium.BaseMid},
		{"rates.premium.base_high", r.Premium.BaseHigh},
		{"rates.premium.boosted_categories_rate", r.Premium.BoostedRate},
		{"rates.premium.cashback_cap_month", r.Premium.CashbackCapMonth},
		{"rates.credit_card.fav_rate", r.CreditCard.FavRate},
		{"rates.fx_saving_rate", r.FXSavingRate},
		{"rates.deposits.multi", r.Deposits.Multi},
		{"rates.deposits.save", r.Deposits.Save},
		{"rates.deposits.accum", r.Deposits.Accum},
	}
	for _, c := range checks {
		if c.val <= 0 {
			return fmt.Errorf("%w: %s is required and must be positive", ErrRateConfigInvalid, c.key)
		}
	}
	if len(r.TravelCategories) == 0 {
		return fmt.Errorf("%w: rates.travel_categories must not be empty", ErrRateConfigInvalid)
	}
	if len(r.Premium.BoostedCategories) == 0 {
		return fmt.Errorf("%w: rates.premium.boosted_categories must not be empty", ErrRateConfigInvalid)
	}
	if len(r.CreditCard.OnlineCategories) == 0 {
		return fmt.Errorf("%w: rates.credit_card.online_categories must not be empty", ErrRateConfigInvalid)
	}
	return nil
}
