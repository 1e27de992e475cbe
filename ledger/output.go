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
	"math"

	"github.com/blinklabs-io/gouroboros/cbor"
	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/blinklabs-io/plutigo/data"
	"github.com/blinklabs-io/txcraft/internal/canonical"
	utxorpc "github.com/utxorpc/go-codegen/utxorpc/v1alpha/cardano"
)

// Post-Alonzo output map keys
const (
	outputKeyAddress   = 0
	outputKeyAmount    = 1
	outputKeyDatum     = 2
	outputKeyScriptRef = 3
)

// minAdaConstantOverhead is the ledger-defined byte overhead added to an
// output's serialized size when computing its minimum coin
const minAdaConstantOverhead = 160

// TransactionOutput is a transaction output in either of its two wire
// forms: the legacy tuple (Shelley through Alonzo) or the post-Alonzo map.
// A decoded output caches its original bytes and re-encodes them verbatim
// until mutated; fresh and mutated outputs encode canonically in the form
// recorded by PostAlonzo.
type TransactionOutput struct {
	cbor.DecodeStoreCbor
	Address     lcommon.Address
	Amount      Value
	DatumHash   *lcommon.Blake2b256
	InlineDatum []byte // raw Plutus data CBOR (tag-24 content)
	ScriptRef   []byte // raw script wrapper CBOR (tag-24 content)
	PostAlonzo  bool
}

// NewTransactionOutput creates a post-Alonzo form output
func NewTransactionOutput(addr lcommon.Address, amount Value) TransactionOutput {
	return TransactionOutput{
		Address:    addr,
		Amount:     amount,
		PostAlonzo: true,
	}
}

// Invalidate drops the cached original bytes after a mutation so the next
// encode is canonical
func (o *TransactionOutput) Invalidate() {
	o.SetCbor(nil)
}

// SetAmount replaces the output's value and invalidates the byte cache
func (o *TransactionOutput) SetAmount(amount Value) {
	o.Amount = amount
	o.Invalidate()
}

// MarshalCBOR encodes the output, preferring the cached original bytes
func (o TransactionOutput) MarshalCBOR() ([]byte, error) {
	if cached := o.Cbor(); len(cached) > 0 {
		return cached, nil
	}
	addrBytes, err := o.Address.Bytes()
	if err != nil {
		return nil, fmt.Errorf("output address: %w", err)
	}
	amount, err := o.Amount.MarshalCBOR()
	if err != nil {
		return nil, err
	}
	if !o.PostAlonzo {
		items := [][]byte{canonical.EncodeBytes(addrBytes), amount}
		if o.DatumHash != nil {
			items = append(items, canonical.EncodeBytes(o.DatumHash.Bytes()))
		}
		return canonical.EncodeArray(items), nil
	}
	pairs := []canonical.Pair{
		{
			Key:   canonical.EncodeUint(outputKeyAddress),
			Value: canonical.EncodeBytes(addrBytes),
		},
		{
			Key:   canonical.EncodeUint(outputKeyAmount),
			Value: amount,
		},
	}
	switch {
	case o.InlineDatum != nil:
		inner := append(canonical.EncodeTagHead(24), canonical.EncodeBytes(o.InlineDatum)...)
		pairs = append(pairs, canonical.Pair{
			Key:   canonical.EncodeUint(outputKeyDatum),
			Value: canonical.EncodeArray([][]byte{canonical.EncodeUint(1), inner}),
		})
	case o.DatumHash != nil:
		pairs = append(pairs, canonical.Pair{
			Key: canonical.EncodeUint(outputKeyDatum),
			Value: canonical.EncodeArray([][]byte{
				canonical.EncodeUint(0),
				canonical.EncodeBytes(o.DatumHash.Bytes()),
			}),
		})
	}
	if o.ScriptRef != nil {
		wrapped := append(canonical.EncodeTagHead(24), canonical.EncodeBytes(o.ScriptRef)...)
		pairs = append(pairs, canonical.Pair{
			Key:   canonical.EncodeUint(outputKeyScriptRef),
			Value: wrapped,
		})
	}
	return canonical.EncodeMap(pairs), nil
}

// UnmarshalCBOR accepts both output forms and records which one was seen
func (o *TransactionOutput) UnmarshalCBOR(raw []byte) error {
	*o = TransactionOutput{}
	switch canonical.MajorType(raw) {
	case canonical.MajorArray:
		if err := o.decodeLegacy(raw); err != nil {
			return err
		}
	case canonical.MajorMap:
		if err := o.decodePostAlonzo(raw); err != nil {
			return err
		}
	default:
		return fmt.Errorf("output must be array or map: %w", ErrUnexpectedCborType)
	}
	o.SetCbor(raw)
	return nil
}

func (o *TransactionOutput) decodeLegacy(raw []byte) error {
	var parts []cbor.RawMessage
	if _, err := cbor.Decode(raw, &parts); err != nil {
		return fmt.Errorf("legacy output: %w: %s", ErrMalformedCbor, err)
	}
	if len(parts) < 2 || len(parts) > 3 {
		return fmt.Errorf(
			"legacy output must have 2 or 3 elements, got %d: %w",
			len(parts),
			ErrInvalidCborArraySize,
		)
	}
	if err := o.decodeAddress(parts[0]); err != nil {
		return err
	}
	if err := o.Amount.UnmarshalCBOR(parts[1]); err != nil {
		return err
	}
	if len(parts) == 3 {
		var hashBytes []byte
		if _, err := cbor.Decode(parts[2], &hashBytes); err != nil {
			return fmt.Errorf("datum hash: %w: %s", ErrMalformedCbor, err)
		}
		if len(hashBytes) != 32 {
			return fmt.Errorf(
				"datum hash must be 32 bytes, got %d: %w",
				len(hashBytes),
				ErrInvalidCborValue,
			)
		}
		hash := lcommon.NewBlake2b256(hashBytes)
		o.DatumHash = &hash
	}
	o.PostAlonzo = false
	return nil
}

func (o *TransactionOutput) decodePostAlonzo(raw []byte) error {
	var fields map[uint64]cbor.RawMessage
	if _, err := cbor.Decode(raw, &fields); err != nil {
		return fmt.Errorf("post-Alonzo output: %w: %s", ErrMalformedCbor, err)
	}
	for key := range fields {
		if key > outputKeyScriptRef {
			return fmt.Errorf("unknown output map key %d: %w", key, ErrInvalidCborMapKey)
		}
	}
	addrRaw, ok := fields[outputKeyAddress]
	if !ok {
		return fmt.Errorf("output missing address: %w", ErrInvalidCborMapKey)
	}
	if err := o.decodeAddress(addrRaw); err != nil {
		return err
	}
	amountRaw, ok := fields[outputKeyAmount]
	if !ok {
		return fmt.Errorf("output missing amount: %w", ErrInvalidCborMapKey)
	}
	if err := o.Amount.UnmarshalCBOR(amountRaw); err != nil {
		return err
	}
	if datumRaw, ok := fields[outputKeyDatum]; ok {
		if err := o.decodeDatumOption(datumRaw); err != nil {
			return err
		}
	}
	if scriptRaw, ok := fields[outputKeyScriptRef]; ok {
		var tagged cbor.Tag
		if _, err := cbor.Decode(scriptRaw, &tagged); err != nil {
			return fmt.Errorf("script ref: %w: %s", ErrMalformedCbor, err)
		}
		content, ok := tagged.Content.([]byte)
		if !ok || tagged.Number != 24 {
			return fmt.Errorf("script ref must be tag-24 bytes: %w", ErrUnexpectedCborType)
		}
		o.ScriptRef = content
	}
	o.PostAlonzo = true
	return nil
}

func (o *TransactionOutput) decodeAddress(raw []byte) error {
	if err := o.Address.UnmarshalCBOR(raw); err != nil {
		return fmt.Errorf("output address: %w: %s", ErrMalformedCbor, err)
	}
	return nil
}

func (o *TransactionOutput) decodeDatumOption(raw []byte) error {
	var parts []cbor.RawMessage
	if _, err := cbor.Decode(raw, &parts); err != nil {
		return fmt.Errorf("datum option: %w: %s", ErrMalformedCbor, err)
	}
	if len(parts) != 2 {
		return fmt.Errorf(
			"datum option must have 2 elements, got %d: %w",
			len(parts),
			ErrInvalidCborArraySize,
		)
	}
	var kind uint64
	if _, err := cbor.Decode(parts[0], &kind); err != nil {
		return fmt.Errorf("datum option kind: %w: %s", ErrMalformedCbor, err)
	}
	switch kind {
	case 0:
		var hashBytes []byte
		if _, err := cbor.Decode(parts[1], &hashBytes); err != nil {
			return fmt.Errorf("datum hash: %w: %s", ErrMalformedCbor, err)
		}
		if len(hashBytes) != 32 {
			return fmt.Errorf(
				"datum hash must be 32 bytes, got %d: %w",
				len(hashBytes),
				ErrInvalidCborValue,
			)
		}
		hash := lcommon.NewBlake2b256(hashBytes)
		o.DatumHash = &hash
	case 1:
		var tagged cbor.Tag
		if _, err := cbor.Decode(parts[1], &tagged); err != nil {
			return fmt.Errorf("inline datum: %w: %s", ErrMalformedCbor, err)
		}
		content, ok := tagged.Content.([]byte)
		if !ok || tagged.Number != 24 {
			return fmt.Errorf("inline datum must be tag-24 bytes: %w", ErrUnexpectedCborType)
		}
		o.InlineDatum = content
	default:
		return fmt.Errorf("unknown datum option kind %d: %w", kind, ErrInvalidCborValue)
	}
	return nil
}

// MinAdaRequired computes the minimum coin the output must carry. It
// serializes with the transmission encoder so predicted and actual sizes
// agree.
func MinAdaRequired(output *TransactionOutput, adaPerUtxoByte uint64) (uint64, error) {
	if output == nil {
		return 0, fmt.Errorf("output: %w", ErrPointerNull)
	}
	encoded, err := output.MarshalCBOR()
	if err != nil {
		return 0, err
	}
	size := uint64(len(encoded)) + minAdaConstantOverhead
	if adaPerUtxoByte != 0 && size > math.MaxUint64/adaPerUtxoByte {
		return 0, fmt.Errorf("min-ada computation: %w", ErrArithmeticOverflow)
	}
	return size * adaPerUtxoByte, nil
}

// Utxorpc returns the UTxO RPC representation of the output
func (o *TransactionOutput) Utxorpc() (*utxorpc.TxOutput, error) {
	addrBytes, err := o.Address.Bytes()
	if err != nil {
		return nil, err
	}
	if o.Amount.Coin < 0 {
		return nil, fmt.Errorf("negative output coin: %w", ErrInvalidCborValue)
	}
	output := &utxorpc.TxOutput{
		Address: addrBytes,
		Coin:    lcommon.ToUtxorpcBigInt(uint64(o.Amount.Coin)),
	}
	var multiassets []*utxorpc.Multiasset
	for _, policyId := range o.Amount.Assets.Policies() {
		var assets []*utxorpc.Asset
		for _, name := range o.Amount.Assets.AssetNames(policyId) {
			qty := o.Amount.Assets.Quantity(policyId, name)
			if qty < 0 {
				continue
			}
			assets = append(assets, &utxorpc.Asset{
				Name: name,
				Quantity: &utxorpc.Asset_OutputCoin{
					OutputCoin: lcommon.ToUtxorpcBigInt(uint64(qty)),
				},
			})
		}
		multiassets = append(multiassets, &utxorpc.Multiasset{
			PolicyId: policyId.Bytes(),
			Assets:   assets,
		})
	}
	output.Assets = multiassets
	if o.DatumHash != nil {
		output.Datum = &utxorpc.Datum{
			Hash: o.DatumHash.Bytes(),
		}
	}
	return output, nil
}

// ToPlutusData converts the output to its script-context representation
func (o *TransactionOutput) ToPlutusData() data.PlutusData {
	var datumPd data.PlutusData
	switch {
	case o.InlineDatum != nil:
		datumPd = data.NewConstr(2, data.NewByteString(o.InlineDatum))
	case o.DatumHash != nil:
		datumPd = data.NewConstr(1, data.NewByteString(o.DatumHash.Bytes()))
	default:
		datumPd = data.NewConstr(0)
	}
	var scriptRefPd data.PlutusData
	if o.ScriptRef != nil {
		scriptRefPd = data.NewConstr(0, data.NewByteString(o.ScriptRef))
	} else {
		scriptRefPd = data.NewConstr(1)
	}
	return data.NewConstr(0,
		o.Address.ToPlutusData(),
		o.Amount.ToPlutusData(),
		datumPd,
		scriptRefPd,
	)
}

// String renders the output for diagnostics
func (o *TransactionOutput) String() string {
	return fmt.Sprintf("%s: %s", o.Address.String(), o.Amount.String())
}

// OutputBuilder builds a TransactionOutput, deferring validation errors to
// Build in the same way the value may arrive in several calls
type OutputBuilder struct {
	address     lcommon.Address
	amount      Value
	datumHash   *lcommon.Blake2b256
	inlineDatum []byte
	scriptRef   []byte
	legacy      bool
	addrErr     error
}

// NewOutputBuilder creates an output builder
func NewOutputBuilder() *OutputBuilder {
	return &OutputBuilder{}
}

// WithAddress sets the output address from its bech32 form
func (b *OutputBuilder) WithAddress(addr string) *OutputBuilder {
	parsed, err := lcommon.NewAddress(addr)
	if err != nil {
		b.addrErr = fmt.Errorf("invalid address %q: %w", addr, err)
	} else {
		b.address = parsed
		b.addrErr = nil
	}
	return b
}

// WithAddressBytes sets the output address from its raw byte form
func (b *OutputBuilder) WithAddressBytes(raw []byte) *OutputBuilder {
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
func (b *OutputBuilder) WithLovelace(amount uint64) *OutputBuilder {
	b.amount.Coin = int64(amount)
	return b
}

// WithAssets sets the native assets
func (b *OutputBuilder) WithAssets(assets MultiAsset) *OutputBuilder {
	b.amount.Assets = assets
	return b
}

// WithDatumHash sets the datum hash
func (b *OutputBuilder) WithDatumHash(hash []byte) *OutputBuilder {
	if hash != nil {
		h := lcommon.NewBlake2b256(hash)
		b.datumHash = &h
	}
	return b
}

// WithInlineDatum sets the inline datum from raw Plutus data CBOR
func (b *OutputBuilder) WithInlineDatum(datum []byte) *OutputBuilder {
	b.inlineDatum = datum
	return b
}

// WithScriptRef sets the reference script from raw script wrapper CBOR
func (b *OutputBuilder) WithScriptRef(script []byte) *OutputBuilder {
	b.scriptRef = script
	return b
}

// WithLegacyForm selects the legacy tuple encoding
func (b *OutputBuilder) WithLegacyForm() *OutputBuilder {
	b.legacy = true
	return b
}

// Build constructs the output from the builder state
func (b *OutputBuilder) Build() (TransactionOutput, error) {
	if b.addrErr != nil {
		return TransactionOutput{}, b.addrErr
	}
	if b.address.String() == "" {
		return TransactionOutput{}, fmt.Errorf("address is required: %w", ErrInvalidArgument)
	}
	if b.legacy && (b.inlineDatum != nil || b.scriptRef != nil) {
		return TransactionOutput{}, fmt.Errorf(
			"legacy outputs cannot carry inline datums or reference scripts: %w",
			ErrInvalidArgument,
		)
	}
	return TransactionOutput{
		Address:     b.address,
		Amount:      b.amount,
		DatumHash:   b.datumHash,
		InlineDatum: b.inlineDatum,
		ScriptRef:   b.scriptRef,
		PostAlonzo:  !b.legacy,
	}, nil
}
