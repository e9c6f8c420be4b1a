// internal/push/template.go
package push

import (
	"fmt"
	"strings"
	"time"

	"pushgen-workers/internal/models"
	"pushgen-workers/internal/scoring"
)

// CTAByProduct maps each product to its call-to-action phrase. These are the
// only CTAs the channel rules accept.
var CTAByProduct = map[string]string{
	scoring.ProductTravelCard:       "Open the card",
	scoring.ProductPremiumCard:      "Apply now",
	scoring.ProductCreditCard:       "Apply for the card",
	scoring.ProductCurrencyExchange: "Set up the exchange",
	scoring.ProductCashLoan:         "View offers",
	scoring.ProductDepositMulti:     "Open a deposit",
	scoring.ProductDepositSavings:   "Open a deposit",
	scoring.ProductDepositAccum:     "Open a deposit",
	scoring.ProductInvestments:      "Open an account",
	scoring.ProductGoldBars:         "View options",
}

// CTAFor returns the call-to-action for a product, with a generic fallback
// for anything outside the catalog.
func CTAFor(product string) string {
	if cta, ok := CTAByProduct[product]; ok {
		return cta
	}
	return "View offers"
}

// GenerateTemplatePush builds the deterministic fallback text used whenever
// the external generator returns nothing. One personal observation, one
// product benefit, one CTA.
func GenerateTemplatePush(client models.ClientProfile, behavior BehaviorSummary, product string, benefit float64, refMonth time.Month) string {
	name := client.Name
	if name == "" {
		name = "Dear client"
	}
	month := refMonth.String()
	benefitTxt := ""
	if benefit > 0 {
		benefitTxt = FormatKZT(benefit)
	}

	switch product {
	case scoring.ProductTravelCard:
		return fmt.Sprintf("%s, in %s you took taxis and travelled a lot. With the travel card you would get up to %s back in cashback on those trips, at home and abroad. Open the card in the app.",
			name, month, benefitTxt)
	case scoring.ProductPremiumCard:
		return fmt.Sprintf("%s, you keep a solid balance and spend regularly on dining out. The premium card gives you boosted cashback and free cash withdrawals wherever you are. Apply now in the app.",
			name)
	case scoring.ProductCreditCard:
		cats := strings.Join(behavior.TopCategories, ", ")
		if cats == "" {
			cats = "groceries and dining"
		}
		return fmt.Sprintf("%s, your top spending categories are %s. The credit card gives you up to 10%% cashback on your favourite categories and online services. Apply for the card.",
			name, cats)
	case scoring.ProductCurrencyExchange:
		return fmt.Sprintf("%s, you often pay in foreign currency. In our app you get a favourable exchange rate, no extra fees and auto-purchase at your target rate. Set up the exchange in the app.",
			name)
	case scoring.ProductInvestments:
		return fmt.Sprintf("%s, you have free funds that could be working for you. Try investing with a low entry threshold and minimal starter fees to grow your savings over time. Open an account.",
			name)
	case scoring.ProductDepositMulti, scoring.ProductDepositSavings, scoring.ProductDepositAccum:
		return fmt.Sprintf("%s, you have spare money sitting on your account. Place it on a favourable deposit and receive a steady reward every single month while you keep saving. Open a deposit in the app.",
			name)
	case scoring.ProductGoldBars:
		return fmt.Sprintf("%s, to diversify your portfolio you could consider 999.9 fine gold bars. A defensive asset that helps you protect your savings through any market. View options in the app.",
			name)
	default:
		return fmt.Sprintf("%s, we picked an offer that matches your spending over the last months. Have a look at the details and take your time to decide at your own pace. View offers in the app.",
			name)
	}
}
