// internal/scoring/calculator.go
package scoring

import (
	"sort"

	"pushgen-workers/internal/models"
)

// presenceBenefit is the flat amount credited when a client has touched a
// product family before (invest/gold transfers). It separates "has used"
// from "has not" without pretending to model a monetary figure.
const presenceBenefit = 1000.0

// Average-balance tier thresholds for the premium-card base rate, in KZT.
const (
	premiumMidBalance  = 1_000_000
	premiumHighBalance = 6_000_000
)

// topCategoryCount is how many favourite categories the credit-card rule uses.
const topCategoryCount = 3

// BenefitMap maps every catalog product to its expected 3-month benefit in KZT.
type BenefitMap map[string]float64

// Facts is the supporting numeric evidence for one product. Explanatory
// only; it never feeds back into ranking.
type Facts map[string]interface{}

// FactMap maps products to their evidence.
type FactMap map[string]Facts

// Calculator computes expected benefits from client data and a validated,
// immutable rate configuration. It holds no mutable state and is safe for
// concurrent use across clients.
type Calculator struct {
	rates Rates
}

// NewCalculator validates the rate configuration up front so that the
// per-client computation can stay pure and error-free.
func NewCalculator(rates Rates) (*Calculator, error) {
	if err := rates.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{rates: rates}, nil
}

// Rates returns the configuration the Calculator was built with.
func (c *Calculator) Rates() Rates { return c.rates }

// ComputeBenefits returns the expected 3-month benefit and supporting facts
// for every catalog product. Empty transaction or transfer slices degrade to
// zero aggregates; a missing average balance is treated as zero.
func (c *Calculator) ComputeBenefits(client models.ClientProfile, tx []models.Transaction, tr []models.Transfer) (BenefitMap, FactMap) {
	benefits := make(BenefitMap, len(Catalog))
	facts := make(FactMap, len(Catalog))

	totalSpend, catSpend := aggregateSpend(tx)
	avgBal := client.AvgMonthlyBalance
	if avgBal < 0 {
		avgBal = 0
	}

	// Travel card
	travelSpend := sumCategories(catSpend, c.rates.TravelCategories)
	benefits[ProductTravelCard] = c.rates.TravelCashback * travelSpend
	facts[ProductTravelCard] = Facts{"travelSpend": travelSpend}

	// Premium card
	base := c.premiumBaseRate(avgBal)
	boostedSpend := sumCategories(catSpend, c.rates.Premium.BoostedCategories)
	otherSpend := totalSpend - boostedSpend
	if otherSpend < 0 {
		otherSpend = 0
	}
	premiumCB := c.rates.Premium.BoostedRate*boostedSpend + base*otherSpend
	if premiumCB > c.rates.Premium.CashbackCapMonth {
		premiumCB = c.rates.Premium.CashbackCapMonth
	}
	benefits[ProductPremiumCard] = premiumCB
	facts[ProductPremiumCard] = Facts{
		"avgBalance":   avgBal,
		"boostedSpend": boostedSpend,
		"totalSpend":   totalSpend,
		"baseRate":     base,
	}

	// Credit card
	top := topCategories(catSpend, topCategoryCount)
	topSpend := 0.0
	topSet := make(map[string]bool, len(top))
	topNames := make([]string, 0, len(top))
	for _, t := range top {
		topSpend += t.spend
		topSet[t.category] = true
		topNames = append(topNames, t.category)
	}
	onlineExtra := 0.0
	for _, cat := range c.rates.CreditCard.OnlineCategories {
		if !topSet[cat] {
			onlineExtra += catSpend[cat]
		}
	}
	benefits[ProductCreditCard] = c.rates.CreditCard.FavRate * (topSpend + onlineExtra)
	facts[ProductCreditCard] = Facts{
		"topCategories": topNames,
		"topSpend":      topSpend,
		"onlineExtra":   onlineExtra,
	}

	// Currency exchange
	fxVolume, fxOps := fxActivity(tr)
	benefits[ProductCurrencyExchange] = c.rates.FXSavingRate * fxVolume
	facts[ProductCurrencyExchange] = Facts{"fxVolume": fxVolume, "fxOps": fxOps}

	// Cash loan: no positive signal is modeled.
	benefits[ProductCashLoan] = 0
	facts[ProductCashLoan] = Facts{}

	// Deposits, prorated to the 3-month window.
	benefits[ProductDepositMulti] = c.rates.Deposits.Multi * avgBal / 12 * 3
	benefits[ProductDepositSavings] = c.rates.Deposits.Save * avgBal / 12 * 3
	benefits[ProductDepositAccum] = c.rates.Deposits.Accum * avgBal / 12 * 3
	facts[ProductDepositMulti] = Facts{"avgBalance": avgBal}
	facts[ProductDepositSavings] = Facts{"avgBalance": avgBal}
	facts[ProductDepositAccum] = Facts{"avgBalance": avgBal}

	// Investments / gold: presence-only signals.
	investSignal := presenceSignal(tr, models.TransferInvestIn, models.TransferInvestOut)
	goldSignal := presenceSignal(tr, models.TransferGoldBuyOut, models.TransferGoldSellIn)
	benefits[ProductInvestments] = presenceBenefit * float64(investSignal)
	benefits[ProductGoldBars] = presenceBenefit * float64(goldSignal)
	facts[ProductInvestments] = Facts{"signal": investSignal}
	facts[ProductGoldBars] = Facts{"signal": goldSignal}

	return benefits, facts
}

// aggregateSpend clamps negative amounts to zero and sums per category.
func aggregateSpend(tx []models.Transaction) (total float64, byCategory map[string]float64) {
	byCategory = make(map[string]float64)
	for _, t := range tx {
		amount := t.Amount
		if amount < 0 {
			amount = 0
		}
		total += amount
		byCategory[t.Category] += amount
	}
	return total, byCategory
}

func sumCategories(catSpend map[string]float64, categories []string) float64 {
	sum := 0.0
	for _, c := range categories {
		sum += catSpend[c]
	}
	return sum
}

func (c *Calculator) premiumBaseRate(avgBal float64) float64 {
	switch {
	case avgBal >= premiumHighBalance:
		return c.rates.Premium.BaseHigh
	case avgBal >= premiumMidBalance:
		return c.rates.Premium.BaseMid
	default:
		return c.rates.Premium.BaseDefault
	}
}

type categorySpend struct {
	category string
	spend    float64
}

// topCategories returns the n highest-spend categories. Ties break on spend
// descending, then category name ascending, so the selection is stable
// across runs regardless of map iteration order.
func topCategories(catSpend map[string]float64, n int) []categorySpend {
	items := make([]categorySpend, 0, len(catSpend))
	for cat, spend := range catSpend {
		items = append(items, categorySpend{category: cat, spend: spend})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].spend != items[j].spend {
			return items[i].spend > items[j].spend
		}
		return items[i].category < items[j].category
	})
	if len(items) > n {
		items = items[:n]
	}
	return items
}

// fxActivity returns the benefit-relevant volume (fx_buy/fx_sell only) and
// the broader operation count, which also includes the FX deposit top-up and
// withdraw variants. The count is a fact, not part of the benefit formula.
func fxActivity(tr []models.Transfer) (volume float64, ops int) {
	for _, t := range tr {
		switch t.Type {
		case models.TransferFXBuy, models.TransferFXSell:
			volume += t.Amount
			ops++
		case models.TransferDepositFXTopup, models.TransferDepositFXWithdraw:
			ops++
		}
	}
	return volume, ops
}

func presenceSignal(tr []models.Transfer, types ...models.TransferType) int {
	for _, t := range tr {
		for _, want := range types {
			if t.Type == want {
				return 1
			}
		}
	}
	return 0
}
