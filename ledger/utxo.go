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

package ledger

import (
	"errors"
	"fmt"

	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
)

// UtxoBuilder builds a UTxO for wallet and test plumbing. Parsing errors
// are stored and reported from Build so calls can be chained.
type UtxoBuilder struct {
	txId     lcommon.Blake2b256
	index    uint16
	address  lcommon.Address
	lovelace uint64
	assets   MultiAsset
	txIdErr  error
	addrErr  error
}

// NewUtxoBuilder creates a UTxO builder
func NewUtxoBuilder() *UtxoBuilder {
	return &UtxoBuilder{}
}

// WithTxId sets the 32-byte transaction ID
func (b *UtxoBuilder) WithTxId(txId []byte) *UtxoBuilder {
	if len(txId) != 32 {
		b.txIdErr = fmt.Errorf("transaction ID must be 32 bytes, got %d", len(txId))
		return b
	}
	b.txId = lcommon.NewBlake2b256(txId)
	b.txIdErr = nil
	return b
}

// WithIndex sets the output index
func (b *UtxoBuilder) WithIndex(index uint16) *UtxoBuilder {
	b.index = index
	return b
}

// WithAddress sets the address from its bech32 form
func (b *UtxoBuilder) WithAddress(addr string) *UtxoBuilder {
	parsed, err := lcommon.NewAddress(addr)
	if err != nil {
		b.addrErr = fmt.Errorf("invalid address %q: %w", addr, err)
	} else {
		b.address = parsed
		b.addrErr = nil
	}
	return b
}

// WithAddressBytes sets the address from its raw byte form
func (b *UtxoBuilder) WithAddressBytes(raw []byte) *UtxoBuilder {
	parsed, err := NewAddressFromBytes(raw)
	if err != nil {
		b.addrErr = err
	} else {
		b.address = parsed
		b.addrErr = nil
	}
	return b
}

// WithLovelace sets the coin amount
func (b *UtxoBuilder) WithLovelace(amount uint64) *UtxoBuilder {
	b.lovelace = amount
	return b
}

// WithAsset adds a native asset quantity
func (b *UtxoBuilder) WithAsset(policyId []byte, name []byte, quantity int64) *UtxoBuilder {
	if b.assets == nil {
		b.assets = NewMultiAsset()
	}
	b.assets.Set(lcommon.NewBlake2b224(policyId), name, quantity)
	return b
}

// Build constructs the UTxO from the builder state
func (b *UtxoBuilder) Build() (Utxo, error) {
	if b.txIdErr != nil {
		return Utxo{}, b.txIdErr
	}
	if b.addrErr != nil {
		return Utxo{}, b.addrErr
	}
	if b.txId == (lcommon.Blake2b256{}) {
		return Utxo{}, errors.New("transaction ID is required")
	}
	if b.address.String() == "" {
		return Utxo{}, errors.New("address is required")
	}
	return Utxo{
		Input: TransactionInput{TxId: b.txId, Index: b.index},
		Output: TransactionOutput{
			Address:    b.address,
			Amount:     NewValue(int64(b.lovelace), b.assets),
			PostAlonzo: true,
		},
	}, nil
}
