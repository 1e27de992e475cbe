// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ledger_test

import (
	"bytes"
	"testing"

	"github.com/blinklabs-io/txcraft/ledger"
)

func TestUtxoBuilder(t *testing.T) {
	addrBytes, err := ledger.BuildAddressBytes(
		ledger.AddressTypeEnterpriseKey,
		1,
		bytes.Repeat([]byte{0x0a}, 28),
		nil,
	)
	if err != nil {
		t.Fatalf("BuildAddressBytes: %v", err)
	}
	utxo, err := ledger.NewUtxoBuilder().
		WithTxId(bytes.Repeat([]byte{0xab}, 32)).
		WithIndex(3).
		WithAddressBytes(addrBytes).
		WithLovelace(10_000_000).
		WithAsset(bytes.Repeat([]byte{0xcd}, 28), []byte("tkn"), 7).
		Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if utxo.Input.Index != 3 {
		t.Errorf("index = %d", utxo.Input.Index)
	}
	if utxo.Output.Amount.Coin != 10_000_000 {
		t.Errorf("coin = %d", utxo.Output.Amount.Coin)
	}
}

func TestUtxoBuilderDeferredErrors(t *testing.T) {
	_, err := ledger.NewUtxoBuilder().
		WithTxId([]byte{0x01}).
		WithLovelace(1).
		Build()
	if err == nil {
		t.Fatal("short transaction ID accepted")
	}
	_, err = ledger.NewUtxoBuilder().
		WithTxId(bytes.Repeat([]byte{0xab}, 32)).
		WithAddress("not-an-address").
		Build()
	if err == nil {
		t.Fatal("invalid address accepted")
	}
}

func TestFindUtxo(t *testing.T) {
	addrBytes, err := ledger.BuildAddressBytes(
		ledger.AddressTypeEnterpriseKey,
		1,
		bytes.Repeat([]byte{0x0a}, 28),
		nil,
	)
	if err != nil {
		t.Fatalf("BuildAddressBytes: %v", err)
	}
	utxo, err := ledger.NewUtxoBuilder().
		WithTxId(bytes.Repeat([]byte{0xab}, 32)).
		WithAddressBytes(addrBytes).
		WithLovelace(1).
		Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	found, err := ledger.FindUtxo([]ledger.Utxo{utxo}, utxo.Input)
	if err != nil {
		t.Fatalf("FindUtxo error: %v", err)
	}
	if !found.Input.Equals(utxo.Input) {
		t.Error("wrong UTxO returned")
	}
	missing := ledger.NewTransactionInput(bytes.Repeat([]byte{0xee}, 32), 0)
	if _, err := ledger.FindUtxo([]ledger.Utxo{utxo}, missing); err == nil {
		t.Fatal("missing input resolved")
	}
}
