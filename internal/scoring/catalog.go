// internal/scoring/catalog.go
package scoring

// The ten product classes. Catalog order is also the tie-break priority
// everywhere a deterministic ordering is needed.
const (
	ProductTravelCard       = "Travel Card"
	ProductPremiumCard      = "Premium Card"
	ProductCreditCard       = "Credit Card"
	ProductCurrencyExchange = "Currency Exchange"
	ProductCashLoan         = "Cash Loan"
	ProductDepositMulti     = "Multi-Currency Deposit"
	ProductDepositSavings   = "Savings Deposit"
	ProductDepositAccum     = "Accumulative Deposit"
	ProductInvestments      = "Investments"
	ProductGoldBars         = "Gold Bars"
)

// Catalog lists every product class in declaration order. The Calculator
// emits an entry for each of these every time; nothing else ever appears
// in a BenefitMap.
var Catalog = []string{
	ProductTravelCard,
	ProductPremiumCard,
	ProductCreditCard,
	ProductCurrencyExchange,
	ProductCashLoan,
	ProductDepositMulti,
	ProductDepositSavings,
	ProductDepositAccum,
	ProductInvestments,
	ProductGoldBars,
}

// IsCatalogProduct reports whether name is one of the ten product classes.
func IsCatalogProduct(name string) bool {
	for _, p := range Catalog {
		if p == name {
			return true
		}
	}
	return false
}
