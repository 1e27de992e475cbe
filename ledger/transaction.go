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
	"fmt"
	"math/big"

	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/blinklabs-io/plutigo/data"
	"github.com/blinklabs-io/txcraft/internal/canonical"
	utxorpc "github.com/utxorpc/go-codegen/utxorpc/v1alpha/cardano"
)

// Transaction is a full transaction envelope: body, witness set, validity
// flag, and optional auxiliary data. Pre-Alonzo three-element envelopes
// decode with the validity flag implied true and re-encode in their
// original form.
type Transaction struct {
	Body          TransactionBody
	WitnessSet    WitnessSet
	IsValid       bool
	AuxiliaryData *AuxiliaryData
	legacyForm    bool
	raw           []byte
}

// NewTransaction creates an empty valid transaction with Conway-style set
// framing
func NewTransaction() *Transaction {
	return &Transaction{
		Body:    NewTransactionBody(),
		IsValid: true,
	}
}

// Invalidate drops the cached envelope bytes. Body and witness caches are
// managed by their own setters.
func (t *Transaction) Invalidate() {
	t.raw = nil
}

// Id returns the transaction hash: the Blake2b-256 digest of the body's
// (possibly cached) CBOR encoding
func (t *Transaction) Id() (lcommon.Blake2b256, error) {
	bodyBytes, err := t.Body.MarshalCBOR()
	if err != nil {
		return lcommon.Blake2b256{}, err
	}
	return lcommon.Blake2b256Hash(bodyBytes), nil
}

// MarshalCBOR encodes the transaction envelope
func (t Transaction) MarshalCBOR() ([]byte, error) {
	if t.raw != nil {
		return t.raw, nil
	}
	bodyBytes, err := t.Body.MarshalCBOR()
	if err != nil {
		return nil, err
	}
	witnessBytes, err := t.WitnessSet.MarshalCBOR()
	if err != nil {
		return nil, err
	}
	auxBytes := canonical.Null()
	if t.AuxiliaryData != nil {
		auxBytes, err = t.AuxiliaryData.MarshalCBOR()
		if err != nil {
			return nil, err
		}
	}
	if t.legacyForm {
		return canonical.EncodeArray([][]byte{bodyBytes, witnessBytes, auxBytes}), nil
	}
	return canonical.EncodeArray([][]byte{
		bodyBytes,
		witnessBytes,
		canonical.EncodeBool(t.IsValid),
		auxBytes,
	}), nil
}

// UnmarshalCBOR reads a transaction envelope in either its three- or
// four-element form
func (t *Transaction) UnmarshalCBOR(raw []byte) error {
	*t = Transaction{}
	parts, err := canonical.SplitArray(raw)
	if err != nil {
		return fmt.Errorf("transaction: %w: %s", ErrMalformedCbor, err)
	}
	var auxRaw []byte
	switch len(parts) {
	case 3:
		t.legacyForm = true
		t.IsValid = true
		auxRaw = parts[2]
	case 4:
		switch {
		case len(parts[2]) == 1 && parts[2][0] == 0xf5:
			t.IsValid = true
		case len(parts[2]) == 1 && parts[2][0] == 0xf4:
			t.IsValid = false
		default:
			return fmt.Errorf("transaction validity must be a boolean: %w", ErrUnexpectedCborType)
		}
		auxRaw = parts[3]
	default:
		return fmt.Errorf(
			"transaction must have 3 or 4 elements, got %d: %w",
			len(parts),
			ErrInvalidCborArraySize,
		)
	}
	if err := t.Body.UnmarshalCBOR(parts[0]); err != nil {
		return err
	}
	if err := t.WitnessSet.UnmarshalCBOR(parts[1]); err != nil {
		return err
	}
	if !(len(auxRaw) == 1 && auxRaw[0] == 0xf6) {
		var aux AuxiliaryData
		if err := aux.UnmarshalCBOR(auxRaw); err != nil {
			return err
		}
		t.AuxiliaryData = &aux
	}
	rawCopy := make([]byte, len(raw))
	copy(rawCopy, raw)
	t.raw = rawCopy
	return nil
}

// Utxorpc returns the UTxO RPC representation of the transaction
func (t *Transaction) Utxorpc() (*utxorpc.Tx, error) {
	txId, err := t.Id()
	if err != nil {
		return nil, err
	}
	tx := &utxorpc.Tx{
		Hash: txId.Bytes(),
		Fee:  lcommon.ToUtxorpcBigInt(t.Body.Fee),
	}
	for _, input := range t.Body.Inputs {
		utxorpcInput, err := input.Utxorpc()
		if err != nil {
			return nil, err
		}
		tx.Inputs = append(tx.Inputs, utxorpcInput)
	}
	for i := range t.Body.Outputs {
		utxorpcOutput, err := t.Body.Outputs[i].Utxorpc()
		if err != nil {
			return nil, err
		}
		tx.Outputs = append(tx.Outputs, utxorpcOutput)
	}
	return tx, nil
}

// ToPlutusData converts the transaction to its script-context
// representation
func (t *Transaction) ToPlutusData() data.PlutusData {
	inputsList := make([]data.PlutusData, len(t.Body.Inputs))
	for i, input := range t.Body.Inputs {
		inputsList[i] = input.ToPlutusData()
	}
	outputsList := make([]data.PlutusData, len(t.Body.Outputs))
	for i := range t.Body.Outputs {
		outputsList[i] = t.Body.Outputs[i].ToPlutusData()
	}
	return data.NewConstr(0,
		data.NewList(inputsList...),
		data.NewList(outputsList...),
		data.NewInteger(new(big.Int).SetUint64(t.Body.Fee)),
	)
}

// String renders the transaction for diagnostics
func (t *Transaction) String() string {
	txId, err := t.Id()
	if err != nil {
		return fmt.Sprintf("Transaction{inputs=%d, outputs=%d, fee=%d}",
			len(t.Body.Inputs), len(t.Body.Outputs), t.Body.Fee)
	}
	return fmt.Sprintf("Transaction{id=%s, inputs=%d, outputs=%d, fee=%d}",
		txId.String(), len(t.Body.Inputs), len(t.Body.Outputs), t.Body.Fee)
}
