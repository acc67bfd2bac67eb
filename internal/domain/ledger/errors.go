package ledger

import "errors"

var (
	ErrPaymentAccountNotFound   = errors.New("payment account not found")
	ErrPaymentAccountInactive   = errors.New("payment account is inactive")
	ErrPaymentAccountNameExists = errors.New("payment account name already exists")
)
