package dtos

import "encoding/json"

// CreateTransactionDTO is the payment flow's request to open a pending
// transaction. Amount arrives as a JSON number or numeric string; it is
// parsed to a decimal in the interactor.
type CreateTransactionDTO struct {
	Amount    json.Number `json:"amount"`
	Type      string      `json:"type"`
	PaymentID string      `json:"paymentId,omitempty"`
}

// SettleTransactionDTO is the confirmation callback's request to move a
// pending transaction to a terminal status.
type SettleTransactionDTO struct {
	Status    string `json:"status"`
	ReceiptID string `json:"receiptId,omitempty"`
}
