package escrow

import (
	"context"

	"github.com/safient/safient-escrow/internal/domain"
)

// payment is the outcome of pay. Broadcast tells whether the transaction left the process.
type payment struct {
	TxID           string
	ConfirmedRound uint64
	Broadcast      bool
}

// pay builds, signs and broadcasts a payment with the service note and waits for confirmation.
// beforeBroadcast, when set, receives the signed transaction id and can stop the broadcast by returning an error.
// The returned payment is never nil.
func (e *engine) pay(ctx context.Context, secret string, from, to domain.Address, amount, fee uint64, beforeBroadcast func(txID string) error) (*payment, error) {
	p := &payment{}

	tx, err := e.ledger.BuildPayment(ctx, from, to, amount, fee, []byte(domain.PAYMENT_NOTE))
	if err != nil {
		return p, err
	}

	signed, err := e.ledger.Sign(tx, secret)
	if err != nil {
		return p, err
	}

	if beforeBroadcast != nil {
		if err := beforeBroadcast(signed.TxID); err != nil {
			return p, err
		}
	}

	txID, err := e.ledger.Broadcast(ctx, signed)
	if err != nil {
		return p, err
	}
	p.TxID = txID
	p.Broadcast = true

	confirmation, err := e.ledger.WaitForConfirmation(ctx, txID)
	if err != nil {
		return p, err
	}
	p.ConfirmedRound = confirmation.ConfirmedRound

	return p, nil
}
