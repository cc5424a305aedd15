package domain

import "errors"

var (
	ErrInvalidCategory = errors.New("invalid category")
	ErrEmptyBasket     = errors.New("basket is empty")
	ErrNameRequired    = errors.New("customer name is required")
	ErrPhoneRequired   = errors.New("customer phone is required")
)
