package algorand

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/mnemonic"
	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"go.uber.org/zap"

	"github.com/safient/safient-escrow/internal/adapter"
	"github.com/safient/safient-escrow/internal/domain"
	"github.com/safient/safient-escrow/internal/logger"
)

const DEFAULT_CONFIRMATION_ROUNDS = 4

var (
	// ErrNetwork means the node could not be reached or rejected the request
	ErrNetwork = errors.New("algorand network error")
	// ErrTimeout means a confirmation wait ran out of rounds or time
	ErrTimeout = errors.New("algorand confirmation timeout")
	// ErrAccountNotFound means the node has no record of the account
	ErrAccountNotFound = errors.New("algorand account not found")
	// ErrInvalidSecret means a mnemonic could not be turned into a signing key
	ErrInvalidSecret = errors.New("invalid account secret")
)

// UnsignedTx is a payment ready to be signed
type UnsignedTx struct {
	From   domain.Address
	To     domain.Address
	Amount uint64
	Fee    uint64
	Note   []byte
	Txn    types.Transaction
}

// SignedTx is a msgpack encoded signed transaction
type SignedTx struct {
	TxID string
	Blob []byte
}

// Confirmation is the result of a confirmed transaction
type Confirmation struct {
	TxID           string
	ConfirmedRound uint64
}

// Client is the ledger client used by the escrow engines
//
//go:generate mockgen -source=client.go -destination=../../mocks/algorand_client.go -package=mocks -mock_names=Client=MockAlgorandClient
type Client interface {
	// GetBalance returns the balance of address in microAlgos
	GetBalance(ctx context.Context, address domain.Address) (uint64, error)

	// GetSuggestedFee returns the current flat fee for a payment, never below the network minimum
	GetSuggestedFee(ctx context.Context) (uint64, error)

	// BuildPayment builds a flat-fee payment from -> to
	BuildPayment(ctx context.Context, from, to domain.Address, amount, fee uint64, note []byte) (*UnsignedTx, error)

	// Sign signs tx with the account behind secret. The secret must belong to tx.From.
	Sign(tx *UnsignedTx, secret string) (*SignedTx, error)

	// Broadcast submits a signed transaction and returns its id
	Broadcast(ctx context.Context, tx *SignedTx) (string, error)

	// WaitForConfirmation blocks until txID is confirmed or the configured number of rounds passes
	WaitForConfirmation(ctx context.Context, txID string) (*Confirmation, error)

	// GenerateKeypair creates a fresh account
	GenerateKeypair() (*domain.Keypair, error)

	// AccountFromSecret derives the address behind a mnemonic
	AccountFromSecret(secret string) (domain.Address, error)

	// IsValidAddress reports whether s is a well-formed address
	IsValidAddress(s string) bool
}

type client struct {
	algod  adapter.Algod
	rounds uint64
}

// NewClient creates a ledger client over algod. rounds bounds confirmation waits.
func NewClient(algod adapter.Algod, rounds uint64) Client {
	if rounds == 0 {
		rounds = DEFAULT_CONFIRMATION_ROUNDS
	}
	return &client{algod: algod, rounds: rounds}
}

func (c *client) GetBalance(ctx context.Context, address domain.Address) (uint64, error) {
	amount, err := c.algod.AccountAmount(ctx, address.String())
	if err != nil {
		return 0, classify(ctx, fmt.Errorf("failed to get balance of %s: %w", address, err))
	}
	return amount, nil
}

func (c *client) GetSuggestedFee(ctx context.Context) (uint64, error) {
	params, err := c.algod.SuggestedParams(ctx)
	if err != nil {
		return 0, classify(ctx, fmt.Errorf("failed to get suggested params: %w", err))
	}
	return max(uint64(params.Fee), params.MinFee), nil
}

func (c *client) BuildPayment(ctx context.Context, from, to domain.Address, amount, fee uint64, note []byte) (*UnsignedTx, error) {
	params, err := c.algod.SuggestedParams(ctx)
	if err != nil {
		return nil, classify(ctx, fmt.Errorf("failed to get suggested params: %w", err))
	}

	params.FlatFee = true
	params.Fee = types.MicroAlgos(max(fee, params.MinFee))

	txn, err := transaction.MakePaymentTxn(from.String(), to.String(), amount, note, "", params)
	if err != nil {
		return nil, fmt.Errorf("failed to build payment: %w", err)
	}

	return &UnsignedTx{
		From:   from,
		To:     to,
		Amount: amount,
		Fee:    uint64(params.Fee),
		Note:   note,
		Txn:    txn,
	}, nil
}

func (c *client) Sign(tx *UnsignedTx, secret string) (*SignedTx, error) {
	account, err := accountFromMnemonic(secret)
	if err != nil {
		return nil, err
	}
	if account.Address.String() != tx.From.String() {
		return nil, fmt.Errorf("%w: secret does not belong to %s", ErrInvalidSecret, tx.From)
	}

	txID, blob, err := crypto.SignTransaction(account.PrivateKey, tx.Txn)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	return &SignedTx{TxID: txID, Blob: blob}, nil
}

func (c *client) Broadcast(ctx context.Context, tx *SignedTx) (string, error) {
	txID, err := c.algod.SendRawTransaction(ctx, tx.Blob)
	if err != nil {
		return "", classify(ctx, fmt.Errorf("failed to broadcast transaction %s: %w", tx.TxID, err))
	}

	logger.DebugCtx(ctx, "Transaction broadcast", zap.String("tx_id", txID))
	return txID, nil
}

func (c *client) WaitForConfirmation(ctx context.Context, txID string) (*Confirmation, error) {
	round, err := c.algod.WaitForConfirmation(ctx, txID, c.rounds)
	if err != nil {
		if ctx.Err() != nil || strings.Contains(strings.ToLower(err.Error()), "timed out") {
			return nil, fmt.Errorf("%w: %s after %d rounds: %v", ErrTimeout, txID, c.rounds, err)
		}
		return nil, classify(ctx, fmt.Errorf("failed to confirm transaction %s: %w", txID, err))
	}

	return &Confirmation{TxID: txID, ConfirmedRound: round}, nil
}

func (c *client) GenerateKeypair() (*domain.Keypair, error) {
	account := crypto.GenerateAccount()
	secret, err := mnemonic.FromPrivateKey(account.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mnemonic: %w", err)
	}

	address, err := domain.AddressFromBytes(account.Address[:])
	if err != nil {
		return nil, err
	}

	return &domain.Keypair{Address: address, Secret: secret}, nil
}

func (c *client) AccountFromSecret(secret string) (domain.Address, error) {
	account, err := accountFromMnemonic(secret)
	if err != nil {
		return "", err
	}
	return domain.AddressFromBytes(account.Address[:])
}

func (c *client) IsValidAddress(s string) bool {
	_, err := types.DecodeAddress(s)
	return err == nil
}

func accountFromMnemonic(secret string) (crypto.Account, error) {
	sk, err := mnemonic.ToPrivateKey(strings.TrimSpace(secret))
	if err != nil {
		return crypto.Account{}, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}

	account, err := crypto.AccountFromPrivateKey(sk)
	if err != nil {
		return crypto.Account{}, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}
	return account, nil
}

// classify tags a node error with ErrTimeout, ErrAccountNotFound or ErrNetwork
func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "no accounts found") || strings.Contains(msg, "account not found") {
		return fmt.Errorf("%w: %w", ErrAccountNotFound, err)
	}
	return fmt.Errorf("%w: %w", ErrNetwork, err)
}
