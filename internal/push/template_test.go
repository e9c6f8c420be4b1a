// internal/push/template_test.go
package push

import (
	"testing"
	"time"

	"pushgen-workers/internal/models"
	"pushgen-workers/internal/scoring"

	"github.com/stretchr/testify/assert"
)

func templateClient() models.ClientProfile {
	return models.ClientProfile{
		ClientCode: 42,
		Name:       "Aigerim",
		Status:     models.StatusSalaried,
		City:       "Almaty",
	}
}

func TestCTAFor(t *testing.T) {
	assert.Equal(t, "Open the card", CTAFor(scoring.ProductTravelCard))
	assert.Equal(t, "Open a deposit", CTAFor(scoring.ProductDepositSavings))
	assert.Equal(t, "View offers", CTAFor("Mortgage"))
}

func TestGenerateTemplatePush_EveryProductCarriesItsCTA(t *testing.T) {
	behavior := BehaviorSummary{TopCategories: []string{"Groceries", "Taxi", "Restaurants"}}

	for _, product := range scoring.Catalog {
		text := GenerateTemplatePush(templateClient(), behavior, product, 12000, time.June)

		assert.Contains(t, text, "Aigerim", "product %s", product)
		assert.Contains(t, text, CTAFor(product), "product %s", product)
		assert.True(t, ValidatePush(text).OK, "product %s: %q", product, text)
	}
}

func TestGenerateTemplatePush_TravelIncludesBenefitAndMonth(t *testing.T) {
	text := GenerateTemplatePush(templateClient(), BehaviorSummary{}, scoring.ProductTravelCard, 27400, time.June)

	assert.Contains(t, text, "June")
	assert.Contains(t, text, "27 400 ₸")
}

func TestGenerateTemplatePush_CreditCardListsTopCategories(t *testing.T) {
	behavior := BehaviorSummary{TopCategories: []string{"Groceries", "Taxi", "Restaurants"}}

	text := GenerateTemplatePush(templateClient(), behavior, scoring.ProductCreditCard, 18000, time.June)

	assert.Contains(t, text, "Groceries, Taxi, Restaurants")
}

func TestGenerateTemplatePush_CreditCardWithoutCategories(t *testing.T) {
	text := GenerateTemplatePush(templateClient(), BehaviorSummary{}, scoring.ProductCreditCard, 0, time.June)

	assert.Contains(t, text, "groceries and dining")
}

func TestGenerateTemplatePush_MissingNameFallsBack(t *testing.T) {
	client := templateClient()
	client.Name = ""

	text := GenerateTemplatePush(client, BehaviorSummary{}, scoring.ProductInvestments, 0, time.June)

	assert.Contains(t, text, "Dear client")
}

func TestGenerateTemplatePush_UnknownProductUsesGenericText(t *testing.T) {
	text := GenerateTemplatePush(templateClient(), BehaviorSummary{}, "Mortgage", 0, time.June)

	assert.Contains(t, text, "View offers")
}
