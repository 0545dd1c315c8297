// Package ledger implements an in-memory, small-scale view of the
// blockchain: confirmed block heights, transactions, unspent outputs,
// and per-address balance and transaction-count bookkeeping.
package ledger

import (
	"sync"

	"github.com/happynine-wallet/hdwallet/internal/address"
	"github.com/happynine-wallet/hdwallet/internal/signer"
	"github.com/happynine-wallet/hdwallet/internal/txwire"
)

// Ledger is safe for concurrent use. Per the design note in SPEC_FULL.md,
// a single chain-observation goroutine is expected to be the sole
// writer, but reads (balance/tx-count/unspent-output queries) may come
// from any goroutine.
type Ledger struct {
	mu sync.Mutex

	maxBlockHeight  uint64
	blockTimestamps map[uint64]uint64
	txHeights       map[string]uint64
	transactions    map[string]*txwire.Transaction
	spent           map[string]map[uint32]bool

	balances  map[string]uint64
	txCounts  map[string]uint64
	unspent   []signer.UnspentOutput
}

// New returns an empty Ledger.
func New() *Ledger {
	return &Ledger{
		blockTimestamps: make(map[uint64]uint64),
		txHeights:       make(map[string]uint64),
		transactions:    make(map[string]*txwire.Transaction),
		spent:           make(map[string]map[uint32]bool),
		balances:        make(map[string]uint64),
		txCounts:        make(map[string]uint64),
	}
}

// ConfirmBlock records the timestamp of a block at height, tracking the
// chain tip.
func (l *Ledger) ConfirmBlock(height, timestamp uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.blockTimestamps[height] = timestamp
	if height > l.maxBlockHeight {
		l.maxBlockHeight = height
	}
}

// AddTransaction records a transaction (by its wire-format bytes),
// marking any outputs it spends, then recalculating the unspent-output
// set, balances, and transaction counts.
func (l *Ledger) AddTransaction(raw []byte) error {
	tx, err := txwire.Parse(raw)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	hash := tx.Hash()
	l.transactions[string(hash[:])] = tx

	l.markSpentOutputs()
	l.rebuildUnspentOutputs()
	l.updateBalances()
	l.updateTransactionCounts(tx)

	return nil
}

// ConfirmTransaction records the height at which a transaction, by its
// txid, entered the chain.
func (l *Ledger) ConfirmTransaction(txHash []byte, height uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.txHeights[string(txHash)] = height
}

// UnconfirmFrom discards every transaction's confirmation at or above
// height, the ledger's reorg-handling supplement to the original
// design: a chain-observation bridge that detects a reorg below the
// stored chain tip calls this before replaying the new best chain's
// blocks.
func (l *Ledger) UnconfirmFrom(height uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for hash, h := range l.txHeights {
		if h >= height {
			delete(l.txHeights, hash)
		}
	}
	for h := range l.blockTimestamps {
		if h >= height {
			delete(l.blockTimestamps, h)
		}
	}
	l.maxBlockHeight = 0
	for h := range l.blockTimestamps {
		if h > l.maxBlockHeight {
			l.maxBlockHeight = h
		}
	}
}

// GetUnspentOutputs returns every unspent output paying to one of
// addresses (hash160 form), or every unspent output if addresses is
// empty.
func (l *Ledger) GetUnspentOutputs(addresses map[string]bool) []signer.UnspentOutput {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []signer.UnspentOutput
	for _, u := range l.unspent {
		hash160, ok := address.RecognizeScript(u.Script)
		if !ok {
			continue
		}
		if len(addresses) == 0 || addresses[string(hash160)] {
			out = append(out, u)
		}
	}
	return out
}

// GetAddressBalance returns the sum of unspent output values paying to
// hash160.
func (l *Ledger) GetAddressBalance(hash160 []byte) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[string(hash160)]
}

// GetAddressTxCount returns the number of transactions touching
// hash160, as an input or an output.
func (l *Ledger) GetAddressTxCount(hash160 []byte) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.txCounts[string(hash160)]
}

// GetTransactionHeight returns the confirmed height of txHash, or 0 if
// unconfirmed.
func (l *Ledger) GetTransactionHeight(txHash []byte) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.txHeights[string(txHash)]
}

func (l *Ledger) getTransaction(txHash []byte) *txwire.Transaction {
	return l.transactions[string(txHash)]
}

func (l *Ledger) markSpentOutputs() {
	for _, tx := range l.transactions {
		for _, in := range tx.Inputs {
			if spending := l.getTransaction(in.PrevTxHash); spending != nil {
				key := string(in.PrevTxHash)
				if l.spent[key] == nil {
					l.spent[key] = make(map[uint32]bool)
				}
				l.spent[key][in.PrevTxIndex] = true
			}
		}
	}
}

func (l *Ledger) rebuildUnspentOutputs() {
	l.unspent = l.unspent[:0]
	for hash, tx := range l.transactions {
		for i, out := range tx.Outputs {
			if l.spent[hash][uint32(i)] {
				continue
			}
			l.unspent = append(l.unspent, signer.UnspentOutput{
				TxHash:  []byte(hash),
				TxIndex: uint32(i),
				Script:  out.Script,
				Value:   out.Value,
			})
		}
	}
}

func (l *Ledger) updateBalances() {
	l.balances = make(map[string]uint64)
	for _, u := range l.unspent {
		hash160, ok := address.RecognizeScript(u.Script)
		if !ok {
			continue
		}
		l.balances[string(hash160)] += u.Value
	}
}

// updateTransactionCounts recomputes every per-address count from
// scratch across all stored transactions (the tx argument is unused):
// one count for each output paying an address, and one for each input
// spending a known output of that address. Because the whole
// input/output graph is rescanned on every add, a parent transaction
// that arrives after its spender is counted as soon as it is added.
func (l *Ledger) updateTransactionCounts(_ *txwire.Transaction) {
	l.txCounts = make(map[string]uint64)
	for _, tx := range l.transactions {
		for _, out := range tx.Outputs {
			hash160, ok := address.RecognizeScript(out.Script)
			if !ok {
				continue
			}
			l.txCounts[string(hash160)]++
		}
		for _, in := range tx.Inputs {
			parent := l.getTransaction(in.PrevTxHash)
			if parent == nil || int(in.PrevTxIndex) >= len(parent.Outputs) {
				continue
			}
			hash160, ok := address.RecognizeScript(parent.Outputs[in.PrevTxIndex].Script)
			if !ok {
				continue
			}
			l.txCounts[string(hash160)]++
		}
	}
}
