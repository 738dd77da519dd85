package service

import "errors"

// Boundary errors for the fee/pricing operations. Handlers map these onto
// HTTP statuses; nothing below the service layer panics or leaks raw
// database errors to the API.
var (
	ErrFeeTableNotFound      = errors.New("fee table not found")
	ErrMerchantNotFound      = errors.New("merchant not found")
	ErrMerchantPriceNotFound = errors.New("merchant price not found")
	ErrPriceAlreadyAssigned  = errors.New("merchant already has an assigned price")
	ErrProductRowNotFound    = errors.New("product type row not found")
	ErrFieldNotEditable      = errors.New("field is not editable for this product kind")
	ErrUnknownField          = errors.New("unknown pricing field")
)
