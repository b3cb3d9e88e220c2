package service

import (
	"context"

	"stacksevents/internal/ledger"
	dErrors "stacksevents/pkg/domain-errors"
)

// SignTransaction asks the connected wallet to sign tx. The sender must be
// the connected address.
func (s *Service) SignTransaction(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	addr, ok := s.CurrentAddress()
	if !ok {
		return tx, dErrors.New(dErrors.CodeNotConnected, "connect a wallet first")
	}
	if tx.Sender != addr {
		return tx, dErrors.New(dErrors.CodeNotAuthorized, "transaction sender is not the connected wallet")
	}
	raw, err := s.signer.Sign(ctx, tx)
	if err != nil {
		return tx, classifySignerError(ctx, err, "wallet declined to sign")
	}
	tx.Raw = raw
	return tx, nil
}
