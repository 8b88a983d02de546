package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TypeDeposit    TransactionType = "deposit"
	TypeWithdrawal TransactionType = "withdrawal"
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

var ValidTypes = map[TransactionType]struct{}{
	TypeDeposit:    {},
	TypeWithdrawal: {},
}

// TerminalStatuses are the only targets a pending transaction may settle to.
var TerminalStatuses = map[TransactionStatus]struct{}{
	StatusCompleted: {},
	StatusFailed:    {},
}

type Transaction struct {
	ID        string            `db:"id" json:"id"`
	UserID    string            `db:"user_id" json:"userId"`
	Amount    decimal.Decimal   `db:"amount" json:"amount"`
	Type      TransactionType   `db:"type" json:"type"`
	Status    TransactionStatus `db:"status" json:"status"`
	PaymentID string            `db:"payment_id" json:"paymentId,omitempty"`
	ReceiptID string            `db:"receipt_id" json:"receiptId,omitempty"`
	CreatedAt time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time         `db:"updated_at" json:"updatedAt"`
}

// SignedAmount is the delta a completed transaction applies to the wallet:
// positive for deposits, negative for withdrawals.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TypeWithdrawal {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Settled reports whether the transaction reached a terminal status.
func (t *Transaction) Settled() bool {
	_, ok := TerminalStatuses[t.Status]
	return ok
}
