package http

const (
	UserIDParam        = "userID"
	TransactionIDParam = "transactionID"
)
