// Package listener observes the chain by polling a BlockFetcher for new
// blocks, feeding confirmed transactions into a ledger.Ledger and
// emitting events for transactions touching watched addresses.
package listener

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/happynine-wallet/hdwallet/internal/address"
	"github.com/happynine-wallet/hdwallet/internal/ledger"
	"github.com/happynine-wallet/hdwallet/internal/storage"
	"github.com/happynine-wallet/hdwallet/internal/txwire"
	"github.com/happynine-wallet/hdwallet/pkg/models"
)

// BlockData is the data returned by a block fetcher for a single block.
type BlockData struct {
	Height uint64
	Hash   string
	RawTxs [][]byte // wire-format transactions
}

// BlockFetcher abstracts the RPC calls needed to observe the chain. In
// production this wraps a node's getblockcount/getblock calls.
type BlockFetcher interface {
	// LatestBlockHeight returns the current chain tip height.
	LatestBlockHeight(ctx context.Context) (uint64, error)
	// GetBlock returns a block's hash and transactions by height.
	GetBlock(ctx context.Context, height uint64) (*BlockData, error)
}

// PollingConfig holds configuration for the polling listener.
type PollingConfig struct {
	// ConfirmationDepth is how many blocks must build on top of a block
	// before its transactions are reported as confirmed.
	ConfirmationDepth uint64
}

// PollingListener observes the chain by periodically polling a
// BlockFetcher, feeding a ledger.Ledger, and tracking block hashes to
// detect chain reorganizations.
type PollingListener struct {
	pollInterval time.Duration
	events       chan models.BlockEvent
	watchStore   storage.WatchStore
	ledger       *ledger.Ledger
	fetcher      BlockFetcher
	cfg          PollingConfig
	lastHeight   uint64

	// blockHashes tracks recent height -> hash for reorg detection. Kept
	// for the last ConfirmationDepth+1 blocks.
	blockHashes map[uint64]string
	// pendingEvents stores unconfirmed events keyed by height, for reorg
	// rollback and confirmation promotion.
	pendingEvents map[uint64][]models.BlockEvent

	logger *slog.Logger
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPollingListener returns a PollingListener polling fetcher every
// pollInterval, watching addresses via ws, and recording confirmed state
// into led.
func NewPollingListener(pollInterval time.Duration, ws storage.WatchStore, led *ledger.Ledger, fetcher BlockFetcher, cfg PollingConfig) *PollingListener {
	if cfg.ConfirmationDepth == 0 {
		cfg.ConfirmationDepth = 6
	}
	return &PollingListener{
		pollInterval:  pollInterval,
		events:        make(chan models.BlockEvent, 100),
		watchStore:    ws,
		ledger:        led,
		fetcher:       fetcher,
		cfg:           cfg,
		blockHashes:   make(map[uint64]string),
		pendingEvents: make(map[uint64][]models.BlockEvent),
		done:          make(chan struct{}),
		logger:        slog.Default().With("component", "listener"),
	}
}

// Start begins polling in the background.
func (l *PollingListener) Start(ctx context.Context) error {
	ctx, l.cancel = context.WithCancel(ctx)

	l.logger.Info("starting chain observer",
		"poll_interval", l.pollInterval,
		"confirmation_depth", l.cfg.ConfirmationDepth,
	)

	go l.pollLoop(ctx)
	return nil
}

// Stop gracefully shuts down the listener.
func (l *PollingListener) Stop() error {
	if l.cancel != nil {
		l.cancel()
	}
	<-l.done
	close(l.events)
	l.logger.Info("chain observer stopped")
	return nil
}

// WatchAddress adds an address to the watch list.
func (l *PollingListener) WatchAddress(addr string) error {
	if err := l.watchStore.Add(addr); err != nil {
		return err
	}
	l.logger.Info("watching address", "address", addr)
	return nil
}

// UnwatchAddress removes an address from the watch list.
func (l *PollingListener) UnwatchAddress(addr string) error {
	if err := l.watchStore.Remove(addr); err != nil {
		return err
	}
	l.logger.Info("unwatched address", "address", addr)
	return nil
}

// Events returns a channel of detected chain events.
func (l *PollingListener) Events() <-chan models.BlockEvent {
	return l.events
}

func (l *PollingListener) pollLoop(ctx context.Context) {
	defer close(l.done)
	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := l.poll(ctx); err != nil {
				l.logger.Error("poll failed", "error", err)
			}
		}
	}
}

func (l *PollingListener) poll(ctx context.Context) error {
	latest, err := l.fetcher.LatestBlockHeight(ctx)
	if err != nil {
		return fmt.Errorf("latest height: %w", err)
	}

	for h := l.lastHeight + 1; h <= latest; h++ {
		if err := l.processBlock(ctx, h); err != nil {
			return fmt.Errorf("process block %d: %w", h, err)
		}
	}

	l.checkConfirmations(ctx, latest)

	return nil
}

func (l *PollingListener) processBlock(ctx context.Context, height uint64) error {
	block, err := l.fetcher.GetBlock(ctx, height)
	if err != nil {
		return fmt.Errorf("get block: %w", err)
	}

	if prevHash, ok := l.blockHashes[height]; ok && prevHash != block.Hash {
		l.logger.Warn("chain reorganization detected",
			"height", height,
			"old_hash", prevHash,
			"new_hash", block.Hash,
		)
		var maxStored uint64
		for h := range l.blockHashes {
			if h > maxStored {
				maxStored = h
			}
		}
		l.handleReorg(ctx, height, maxStored)
	}

	l.blockHashes[height] = block.Hash
	l.lastHeight = height
	l.ledger.ConfirmBlock(height, uint64(0))

	if height > l.cfg.ConfirmationDepth+1 {
		delete(l.blockHashes, height-l.cfg.ConfirmationDepth-1)
	}

	watched, err := l.watchedHashSet()
	if err != nil {
		return fmt.Errorf("list watched: %w", err)
	}

	for _, raw := range block.RawTxs {
		tx, err := txwire.Parse(raw)
		if err != nil {
			l.logger.Warn("skipping malformed transaction", "height", height, "error", err)
			continue
		}

		addrs := matchingAddresses(tx, watched)
		if len(addrs) == 0 {
			continue
		}

		if err := l.ledger.AddTransaction(raw); err != nil {
			return fmt.Errorf("add transaction: %w", err)
		}
		hash := tx.Hash()
		l.ledger.ConfirmTransaction(hash[:], height)

		event := models.BlockEvent{
			TxHash:      fmt.Sprintf("%x", hash[:]),
			BlockHeight: height,
			Addresses:   addrs,
			Confirmed:   false,
		}
		l.pendingEvents[height] = append(l.pendingEvents[height], event)

		l.logger.Info("detected transaction",
			"height", height,
			"tx", event.TxHash,
			"addresses", len(addrs),
		)

		select {
		case l.events <- event:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

// watchedHashSet decodes every watched address into its hash160 form.
func (l *PollingListener) watchedHashSet() (map[string]bool, error) {
	addrs, err := l.watchStore.List()
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(addrs))
	for _, a := range addrs {
		_, hash160, err := address.Decode(a)
		if err != nil {
			continue
		}
		set[string(hash160)] = true
	}
	return set, nil
}

func matchingAddresses(tx *txwire.Transaction, watched map[string]bool) []string {
	var matches []string
	for _, out := range tx.Outputs {
		hash160, ok := address.RecognizeScript(out.Script)
		if !ok || !watched[string(hash160)] {
			continue
		}
		matches = append(matches, address.Encode(0x00, hash160))
	}
	return matches
}

// handleReorg discards every confirmation from reorgHeight through upTo,
// emits Reorged=true events for the events that were pending in that
// range, and forgets their block hashes so re-processing produces fresh
// events.
func (l *PollingListener) handleReorg(ctx context.Context, reorgHeight, upTo uint64) {
	l.ledger.UnconfirmFrom(reorgHeight)

	for h := reorgHeight; h <= upTo; h++ {
		events, ok := l.pendingEvents[h]
		if !ok {
			continue
		}
		for _, ev := range events {
			ev.Reorged = true
			ev.Confirmed = false
			l.logger.Warn("reorg: invalidating event", "height", ev.BlockHeight, "tx", ev.TxHash)
			select {
			case l.events <- ev:
			case <-ctx.Done():
				return
			}
		}
		delete(l.pendingEvents, h)
		delete(l.blockHashes, h)
	}
}

// checkConfirmations promotes pending events to confirmed once they have
// enough depth beneath the current chain tip.
func (l *PollingListener) checkConfirmations(ctx context.Context, currentHeight uint64) {
	for height, events := range l.pendingEvents {
		if currentHeight < height+l.cfg.ConfirmationDepth {
			continue
		}
		for _, ev := range events {
			ev.Confirmed = true
			l.logger.Info("transaction confirmed",
				"height", ev.BlockHeight,
				"tx", ev.TxHash,
				"depth", currentHeight-height,
			)
			select {
			case l.events <- ev:
			case <-ctx.Done():
				return
			}
		}
		delete(l.pendingEvents, height)
	}
}
