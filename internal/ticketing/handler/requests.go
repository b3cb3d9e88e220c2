package handler

import (
	dErrors "stacksevents/pkg/domain-errors"
)

// PurchaseRequest is the body of POST /events/{id}/purchase. Quantity 0
// means one ticket.
type PurchaseRequest struct {
	Quantity int `json:"quantity,omitempty"`
}

func (r *PurchaseRequest) Validate() error {
	if r.Quantity < 0 {
		return dErrors.New(dErrors.CodeValidation, "quantity must not be negative")
	}
	return nil
}

// TransferRequest is the body of POST /tickets/{id}/transfer. The recipient
// is validated by the service.
type TransferRequest struct {
	To string `json:"to"`
}
