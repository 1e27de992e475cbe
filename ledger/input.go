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
	"bytes"
	"fmt"
	"math/big"
	"sort"

	"github.com/blinklabs-io/gouroboros/cbor"
	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/blinklabs-io/plutigo/data"
	utxorpc "github.com/utxorpc/go-codegen/utxorpc/v1alpha/cardano"
)

// TransactionInput references an output of a previous transaction
type TransactionInput struct {
	cbor.StructAsArray
	TxId  lcommon.Blake2b256
	Index uint16
}

// NewTransactionInput creates an input from a 32-byte transaction ID and
// output index
func NewTransactionInput(txId []byte, index uint16) TransactionInput {
	return TransactionInput{
		TxId:  lcommon.NewBlake2b256(txId),
		Index: index,
	}
}

// Equals reports structural equality
func (i TransactionInput) Equals(other TransactionInput) bool {
	return i == other
}

// String renders the input as txid#index
func (i TransactionInput) String() string {
	return fmt.Sprintf("%s#%d", i.TxId.String(), i.Index)
}

// Utxorpc returns the UTxO RPC representation of the input
func (i TransactionInput) Utxorpc() (*utxorpc.TxInput, error) {
	return &utxorpc.TxInput{
		TxHash:      i.TxId.Bytes(),
		OutputIndex: uint32(i.Index),
	}, nil
}

// ToPlutusData converts the input to its script-context representation
func (i TransactionInput) ToPlutusData() data.PlutusData {
	return data.NewConstr(0,
		data.NewByteString(i.TxId.Bytes()),
		data.NewInteger(big.NewInt(int64(i.Index))),
	)
}

// compareInputs orders inputs by transaction ID bytes, then index, the
// order the ledger uses for script redeemer pointers
func compareInputs(a, b TransactionInput) int {
	if c := bytes.Compare(a.TxId.Bytes(), b.TxId.Bytes()); c != 0 {
		return c
	}
	switch {
	case a.Index < b.Index:
		return -1
	case a.Index > b.Index:
		return 1
	default:
		return 0
	}
}

// SortInputs sorts a copy of the given inputs into canonical order
func SortInputs(inputs []TransactionInput) []TransactionInput {
	sorted := make([]TransactionInput, len(inputs))
	copy(sorted, inputs)
	sort.Slice(sorted, func(i, j int) bool {
		return compareInputs(sorted[i], sorted[j]) < 0
	})
	return sorted
}

// Utxo pairs an input with the output it resolves to
type Utxo struct {
	Input  TransactionInput
	Output TransactionOutput
}

// FindUtxo locates the UTxO resolving the given input, returning
// ErrElementNotFound when the list does not cover it
func FindUtxo(utxos []Utxo, input TransactionInput) (Utxo, error) {
	for _, utxo := range utxos {
		if utxo.Input.Equals(input) {
			return utxo, nil
		}
	}
	return Utxo{}, fmt.Errorf("no UTxO resolves input %s: %w", input, ErrElementNotFound)
}
