// internal/models/client.go
package models

// ClientStatus is the bank-assigned segment of a client.
type ClientStatus string

const (
	StatusStudent  ClientStatus = "Student"
	StatusSalaried ClientStatus = "Salaried"
	StatusPremium  ClientStatus = "Premium"
	StatusStandard ClientStatus = "Standard"
)

// ClientProfile is the per-client row loaded once per computation run.
type ClientProfile struct {
	ClientCode        int          `json:"clientCode"`
	Name              string       `json:"name"`
	Status            ClientStatus `json:"status"`
	Age               int          `json:"age"`
	City              string       `json:"city"`
	AvgMonthlyBalance float64      `json:"avgMonthlyBalanceKZT"`
}

// Transaction is one spend record inside the 3-month observation window.
// Amounts can be negative in the raw feed (refunds); the scoring engine
// clamps them to zero before aggregation.
type Transaction struct {
	Date     string  `json:"date"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// TransferType enumerates the fixed transfer taxonomy.
type TransferType string

const (
	TransferFXBuy             TransferType = "fx_buy"
	TransferFXSell            TransferType = "fx_sell"
	TransferInvestIn          TransferType = "invest_in"
	TransferInvestOut         TransferType = "invest_out"
	TransferGoldBuyOut        TransferType = "gold_buy_out"
	TransferGoldSellIn        TransferType = "gold_sell_in"
	TransferDepositFXTopup    TransferType = "deposit_fx_topup_out"
	TransferDepositFXWithdraw TransferType = "deposit_fx_withdraw_in"
)

// Transfer is one money movement inside the 3-month observation window.
type Transfer struct {
	Date      string       `json:"date"`
	Type      TransferType `json:"type"`
	Direction string       `json:"direction"`
	Amount    float64      `json:"amount"`
	Currency  string       `json:"currency"`
}

// ClientData bundles everything the engine consumes for one client.
type ClientData struct {
	Profile      ClientProfile `json:"profile"`
	Transactions []Transaction `json:"transactions"`
	Transfers    []Transfer    `json:"transfers"`
}
