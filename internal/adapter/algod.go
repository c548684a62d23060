package adapter

import (
	"context"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/algod"
	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/algorand/go-algorand-sdk/v2/types"
)

// Algod defines the algod node operations used by the ledger client
//
//go:generate mockgen -source=algod.go -destination=../mocks/algod.go -package=mocks -mock_names=Algod=MockAlgod
type Algod interface {
	// AccountAmount returns the account balance in microAlgos
	AccountAmount(ctx context.Context, address string) (uint64, error)
	SuggestedParams(ctx context.Context) (types.SuggestedParams, error)
	// SendRawTransaction submits a msgpack encoded signed transaction and returns its id
	SendRawTransaction(ctx context.Context, blob []byte) (string, error)
	// WaitForConfirmation blocks for up to rounds rounds and returns the confirmed round
	WaitForConfirmation(ctx context.Context, txID string, rounds uint64) (uint64, error)
}

// RealAlgod implements Algod with the v2 algod REST client
type RealAlgod struct {
	client *algod.Client
}

// NewAlgod creates an algod client for address authenticated with token
func NewAlgod(address, token string) (Algod, error) {
	c, err := algod.MakeClient(address, token)
	if err != nil {
		return nil, err
	}
	return &RealAlgod{client: c}, nil
}

func (a *RealAlgod) AccountAmount(ctx context.Context, address string) (uint64, error) {
	info, err := a.client.AccountInformation(address).Do(ctx)
	if err != nil {
		return 0, err
	}
	return info.Amount, nil
}

func (a *RealAlgod) SuggestedParams(ctx context.Context) (types.SuggestedParams, error) {
	return a.client.SuggestedParams().Do(ctx)
}

func (a *RealAlgod) SendRawTransaction(ctx context.Context, blob []byte) (string, error) {
	return a.client.SendRawTransaction(blob).Do(ctx)
}

func (a *RealAlgod) WaitForConfirmation(ctx context.Context, txID string, rounds uint64) (uint64, error) {
	resp, err := transaction.WaitForConfirmation(a.client, txID, rounds, ctx)
	if err != nil {
		return 0, err
	}
	return resp.ConfirmedRound, nil
}
