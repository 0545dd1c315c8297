// Package tx builds, signs, and broadcasts spending transactions,
// retrying broadcast with backoff and deduplicating by idempotency key.
package tx

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/happynine-wallet/hdwallet/internal/ledger"
	"github.com/happynine-wallet/hdwallet/internal/signer"
	"github.com/happynine-wallet/hdwallet/internal/txwire"
)

// ChangeSource supplies the next unused change address a builder should
// pay leftover value to. *wallet.Wallet implements this.
type ChangeSource interface {
	NextChangeAddress() ([]byte, error)
}

// Broadcaster submits a signed transaction to the network. In
// production this wraps a node's sendrawtransaction RPC.
type Broadcaster interface {
	Broadcast(ctx context.Context, raw []byte) error
}

// BuilderConfig holds configurable parameters for the transaction
// builder.
type BuilderConfig struct {
	MaxRetries int
	Fee        uint64
}

// Builder constructs and broadcasts spending transactions against a
// ledger's unspent-output set, signing with a signer.KeyProvider and
// allocating change through a ChangeSource.
type Builder struct {
	keyProvider signer.KeyProvider
	change      ChangeSource
	ledger      *ledger.Ledger
	broadcaster Broadcaster
	logger      *slog.Logger
	cfg         BuilderConfig

	mu   sync.Mutex
	sent map[string]*txwire.Transaction // idempotency key -> broadcast tx
}

// NewBuilder returns a Builder spending from led, signing via
// keyProvider, sourcing change addresses from change, and submitting
// finished transactions through broadcaster.
func NewBuilder(cfg BuilderConfig, keyProvider signer.KeyProvider, change ChangeSource, led *ledger.Ledger, broadcaster Broadcaster) *Builder {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &Builder{
		keyProvider: keyProvider,
		change:      change,
		ledger:      led,
		broadcaster: broadcaster,
		logger:      slog.Default().With("component", "tx_builder"),
		cfg:         cfg,
		sent:        make(map[string]*txwire.Transaction),
	}
}

// SendRequest describes a spend to build, sign, and broadcast.
type SendRequest struct {
	IdempotencyKey string // prevents duplicate sends
	Recipients     []signer.Recipient
	WatchedHashes  map[string]bool // restricts which unspent outputs fund this spend
}

// Send builds, signs, and broadcasts a transaction, retrying broadcast
// on failure. Repeating the same IdempotencyKey returns the
// already-broadcast transaction rather than building a new one.
func (b *Builder) Send(ctx context.Context, req SendRequest) (*txwire.Transaction, error) {
	b.mu.Lock()
	if existing, ok := b.sent[req.IdempotencyKey]; ok {
		b.mu.Unlock()
		b.logger.Info("duplicate request, returning already-broadcast tx", "idempotency_key", req.IdempotencyKey)
		return existing, nil
	}
	b.mu.Unlock()

	unspent := b.ledger.GetUnspentOutputs(req.WatchedHashes)

	changeHash160, err := b.change.NextChangeAddress()
	if err != nil {
		return nil, fmt.Errorf("next change address: %w", err)
	}

	signed, err := signer.CreateSignedTransaction(b.keyProvider, unspent, req.Recipients, changeHash160, b.cfg.Fee)
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}

	b.logger.Info("built transaction",
		"inputs", len(signed.Inputs),
		"outputs", len(signed.Outputs),
	)

	if err := b.broadcastWithRetry(ctx, signed, b.cfg.MaxRetries); err != nil {
		return nil, fmt.Errorf("broadcast: %w", err)
	}

	b.mu.Lock()
	b.sent[req.IdempotencyKey] = signed
	b.mu.Unlock()

	return signed, nil
}

func (b *Builder) broadcastWithRetry(ctx context.Context, signed *txwire.Transaction, maxRetries int) error {
	raw := signed.Serialize()
	hash := signed.Hash()

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := b.broadcaster.Broadcast(ctx, raw)
		if err == nil {
			b.logger.Info("transaction broadcast successful",
				"tx_hash", fmt.Sprintf("%x", hash[:]),
				"attempt", attempt,
			)
			return nil
		}

		lastErr = err
		b.logger.Warn("broadcast attempt failed",
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		select {
		case <-time.After(time.Duration(attempt*attempt) * time.Second):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("all %d broadcast attempts failed: %w", maxRetries, lastErr)
}
