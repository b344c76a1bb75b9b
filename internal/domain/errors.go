package domain

import "errors"

var (
	ErrAlertNotFound      = errors.New("alert not found")
	ErrTradeNotFound      = errors.New("trade not found")
	ErrTradePlanNotFound  = errors.New("trade plan entry not found")
	ErrVideoNotFound      = errors.New("video not found")
	ErrTradeAlreadyClosed = errors.New("trade is already closed")
)
