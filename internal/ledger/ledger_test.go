package ledger

import (
	"bytes"
	"testing"

	"github.com/happynine-wallet/hdwallet/internal/address"
	"github.com/happynine-wallet/hdwallet/internal/txwire"
)

func coinbaseTx(payTo []byte, value uint64) *txwire.Transaction {
	return &txwire.Transaction{
		Inputs: []txwire.TxIn{
			txwire.NewTxIn(make([]byte, 32), 0xffffffff, []byte("coinbase")),
		},
		Outputs: []txwire.TxOut{
			txwire.NewTxOut(value, address.P2PKHScript(payTo)),
		},
	}
}

// Scenario from spec.md §8 item 6.
func TestCoinbaseConfirmAndSpend(t *testing.T) {
	addrA := bytes.Repeat([]byte{0xAA}, 20)
	addrB := bytes.Repeat([]byte{0xBB}, 20)

	l := New()

	cb := coinbaseTx(addrA, 5_000_000_000)
	if err := l.AddTransaction(cb.Serialize()); err != nil {
		t.Fatal(err)
	}
	l.ConfirmBlock(1, 1234567890)
	cbHash := cb.Hash()
	l.ConfirmTransaction(cbHash[:], 1)

	if got := l.GetAddressBalance(addrA); got != 5_000_000_000 {
		t.Fatalf("balance A = %d, want 5000000000", got)
	}

	spend := &txwire.Transaction{
		Inputs: []txwire.TxIn{
			txwire.NewTxIn(cbHash[:], 0, address.P2PKHScript(addrA)),
		},
		Outputs: []txwire.TxOut{
			txwire.NewTxOut(4_999_000_000, address.P2PKHScript(addrB)),
		},
	}
	if err := l.AddTransaction(spend.Serialize()); err != nil {
		t.Fatal(err)
	}

	if got := l.GetAddressBalance(addrA); got != 0 {
		t.Errorf("balance A after spend = %d, want 0", got)
	}
	if got := l.GetAddressBalance(addrB); got != 4_999_000_000 {
		t.Errorf("balance B after spend = %d, want 4999000000", got)
	}
}

func TestGetUnspentOutputsFiltersByAddress(t *testing.T) {
	addrA := bytes.Repeat([]byte{0x01}, 20)
	addrB := bytes.Repeat([]byte{0x02}, 20)

	l := New()
	tx := &txwire.Transaction{
		Inputs: []txwire.TxIn{txwire.NewTxIn(make([]byte, 32), 0, nil)},
		Outputs: []txwire.TxOut{
			txwire.NewTxOut(1000, address.P2PKHScript(addrA)),
			txwire.NewTxOut(2000, address.P2PKHScript(addrB)),
		},
	}
	if err := l.AddTransaction(tx.Serialize()); err != nil {
		t.Fatal(err)
	}

	onlyA := l.GetUnspentOutputs(map[string]bool{string(addrA): true})
	if len(onlyA) != 1 || onlyA[0].Value != 1000 {
		t.Errorf("filtered unspent = %+v, want one output of 1000", onlyA)
	}

	all := l.GetUnspentOutputs(nil)
	if len(all) != 2 {
		t.Errorf("unfiltered unspent count = %d, want 2", len(all))
	}
}

func TestUnconfirmFromClearsReorgedHeights(t *testing.T) {
	l := New()
	cb := coinbaseTx(bytes.Repeat([]byte{0x01}, 20), 100)
	if err := l.AddTransaction(cb.Serialize()); err != nil {
		t.Fatal(err)
	}
	cbHash := cb.Hash()
	l.ConfirmBlock(1, 111)
	l.ConfirmBlock(2, 222)
	l.ConfirmTransaction(cbHash[:], 2)

	l.UnconfirmFrom(2)

	if got := l.GetTransactionHeight(cbHash[:]); got != 0 {
		t.Errorf("height after UnconfirmFrom = %d, want 0", got)
	}
	if l.maxBlockHeight != 1 {
		t.Errorf("maxBlockHeight after UnconfirmFrom(2) = %d, want 1", l.maxBlockHeight)
	}
}

func TestAddressTxCountCountsBothSides(t *testing.T) {
	addrA := bytes.Repeat([]byte{0x01}, 20)
	addrB := bytes.Repeat([]byte{0x02}, 20)

	l := New()
	cb := coinbaseTx(addrA, 100)
	if err := l.AddTransaction(cb.Serialize()); err != nil {
		t.Fatal(err)
	}
	cbHash := cb.Hash()

	spend := &txwire.Transaction{
		Inputs:  []txwire.TxIn{txwire.NewTxIn(cbHash[:], 0, address.P2PKHScript(addrA))},
		Outputs: []txwire.TxOut{txwire.NewTxOut(90, address.P2PKHScript(addrB))},
	}
	if err := l.AddTransaction(spend.Serialize()); err != nil {
		t.Fatal(err)
	}

	if got := l.GetAddressTxCount(addrA); got != 2 {
		t.Errorf("tx count A = %d, want 2 (received + spent)", got)
	}
	if got := l.GetAddressTxCount(addrB); got != 1 {
		t.Errorf("tx count B = %d, want 1 (received)", got)
	}
}
