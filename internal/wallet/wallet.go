// Package wallet adapts a private extended key into a signer.KeyProvider
// by walking the external (m/0/i) and internal (m/1/i) chains beneath
// it, allocating addresses in gap-limit bunches and materializing
// signing keys on demand rather than holding every derived key
// permanently.
package wallet

import (
	"fmt"

	"github.com/happynine-wallet/hdwallet/internal/address"
	"github.com/happynine-wallet/hdwallet/internal/derive"
	"github.com/happynine-wallet/hdwallet/internal/node"
	"github.com/happynine-wallet/hdwallet/internal/storage"
)

const (
	externalPathPrefix = "m/0/"
	internalPathPrefix = "m/1/"
)

// Wallet walks a single account-level node's external and internal
// chains, keeping both chains' allocated address ranges ahead of their
// highest used index by at least the configured gap.
type Wallet struct {
	node *node.Node

	watchStore storage.WatchStore

	publicGap uint32
	changeGap uint32

	publicCount uint32
	changeCount uint32

	nextChangeIndex uint32
}

// New returns a Wallet rooted at accountNode (a private node — typically
// an account-level child such as m/0' of the master), watching
// addresses through watchStore.
func New(accountNode *node.Node, watchStore storage.WatchStore, publicGap, changeGap uint32) (*Wallet, error) {
	w := &Wallet{
		node:       accountNode,
		watchStore: watchStore,
		publicGap:  publicGap,
		changeGap:  changeGap,
	}
	if err := w.checkPublicGap(0); err != nil {
		return nil, err
	}
	if err := w.checkChangeGap(0); err != nil {
		return nil, err
	}
	return w, nil
}

// NotifyPublicAddressUsed tells the wallet that the external address at
// index has been seen in a transaction, possibly triggering allocation
// of a new bunch to keep the gap limit satisfied.
func (w *Wallet) NotifyPublicAddressUsed(index uint32) error {
	return w.checkPublicGap(index)
}

// NotifyChangeAddressUsed tells the wallet that the internal address at
// index has been seen in a transaction. It advances the next
// change-address index past the used one and checks the gap.
func (w *Wallet) NotifyChangeAddressUsed(index uint32) error {
	if index >= w.nextChangeIndex {
		w.nextChangeIndex = index + 1
	}
	return w.checkChangeGap(index)
}

// NextChangeAddress returns the hash160 of the next unused change
// address, and advances the internal index so a second call in the
// same signing session does not reuse it. This advances-on-use
// behavior corrects the original design's choice to only advance on a
// confirmed-spend notification.
func (w *Wallet) NextChangeAddress() ([]byte, error) {
	idx := w.nextChangeIndex
	w.nextChangeIndex++
	if err := w.checkChangeGap(idx); err != nil {
		return nil, err
	}
	child, err := derive.DerivePath(w.node, fmt.Sprintf("%s%d", internalPathPrefix, idx))
	if err != nil {
		return nil, err
	}
	hash := address.FromPublicKey(child.PublicKey())
	return hash[:], nil
}

// GetKeysForAddress implements signer.KeyProvider by deriving every
// currently-allocated external and internal address and returning the
// one matching hash160, if any.
func (w *Wallet) GetKeysForAddress(hash160 []byte) (publicKey, privateKey []byte, ok bool) {
	for i := uint32(0); i < w.publicCount; i++ {
		if pub, priv, match := w.deriveAndMatch(externalPathPrefix, i, hash160); match {
			return pub, priv, true
		}
	}
	for i := uint32(0); i < w.changeCount; i++ {
		if pub, priv, match := w.deriveAndMatch(internalPathPrefix, i, hash160); match {
			return pub, priv, true
		}
	}
	return nil, nil, false
}

func (w *Wallet) deriveAndMatch(prefix string, index uint32, hash160 []byte) (publicKey, privateKey []byte, ok bool) {
	child, err := derive.DerivePath(w.node, fmt.Sprintf("%s%d", prefix, index))
	if err != nil {
		return nil, nil, false
	}
	h := address.FromPublicKey(child.PublicKey())
	if string(h[:]) != string(hash160) {
		return nil, nil, false
	}
	return child.PublicKey(), child.SecretKey(), true
}

func (w *Wallet) generateAddressBunch(start, count uint32, public bool) error {
	prefix := internalPathPrefix
	if public {
		prefix = externalPathPrefix
	}
	for i := start; i < start+count; i++ {
		child, err := derive.DerivePath(w.node, fmt.Sprintf("%s%d", prefix, i))
		if err != nil {
			continue
		}
		hash := address.FromPublicKey(child.PublicKey())
		addr := address.Encode(0x00, hash[:])
		if err := w.watchStore.Add(addr); err != nil {
			return err
		}
	}
	return nil
}

// checkPublicGap ensures at least publicGap addresses remain allocated
// beyond index, generating another bunch of publicGap addresses if not.
func (w *Wallet) checkPublicGap(index uint32) error {
	for index+w.publicGap > w.publicCount {
		if err := w.generateAddressBunch(w.publicCount, w.publicGap, true); err != nil {
			return err
		}
		w.publicCount += w.publicGap
	}
	return nil
}

// checkChangeGap is checkPublicGap's counterpart for the internal chain.
func (w *Wallet) checkChangeGap(index uint32) error {
	for index+w.changeGap > w.changeCount {
		if err := w.generateAddressBunch(w.changeCount, w.changeGap, false); err != nil {
			return err
		}
		w.changeCount += w.changeGap
	}
	return nil
}

// PublicAddressCount and ChangeAddressCount report how many addresses
// have been allocated on each chain so far.
func (w *Wallet) PublicAddressCount() uint32 { return w.publicCount }
func (w *Wallet) ChangeAddressCount() uint32 { return w.changeCount }
