package models

import "github.com/shopspring/decimal"

// Profile is the user record owning a wallet. The balance is mutated only by
// transaction settlement, never written directly.
type Profile struct {
	ID            string          `json:"id"`
	Username      string          `json:"username"`
	WalletBalance decimal.Decimal `json:"wallet_balance"`
}
