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
	"math"
	"math/big"
	"sort"

	"github.com/blinklabs-io/gouroboros/cbor"
	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/blinklabs-io/plutigo/data"
	"github.com/blinklabs-io/txcraft/internal/canonical"
)

// MultiAsset maps policy IDs to asset-name/quantity bundles. Quantities are
// signed so the same representation serves outputs (positive) and mint
// fields (positive or negative). Zero quantities are elided on
// normalization.
type MultiAsset map[lcommon.Blake2b224]map[cbor.ByteString]int64

// NewMultiAsset creates an empty MultiAsset
func NewMultiAsset() MultiAsset {
	return make(MultiAsset)
}

// Set stores a quantity for the given policy and asset name
func (m MultiAsset) Set(policyId lcommon.Blake2b224, assetName []byte, quantity int64) {
	assets, ok := m[policyId]
	if !ok {
		assets = make(map[cbor.ByteString]int64)
		m[policyId] = assets
	}
	assets[cbor.NewByteString(assetName)] = quantity
}

// Quantity returns the stored quantity for the given policy and asset name,
// or zero when absent
func (m MultiAsset) Quantity(policyId lcommon.Blake2b224, assetName []byte) int64 {
	if assets, ok := m[policyId]; ok {
		return assets[cbor.NewByteString(assetName)]
	}
	return 0
}

// Clone returns a deep copy
func (m MultiAsset) Clone() MultiAsset {
	if m == nil {
		return nil
	}
	result := make(MultiAsset, len(m))
	for policyId, assets := range m {
		cloned := make(map[cbor.ByteString]int64, len(assets))
		for name, qty := range assets {
			cloned[name] = qty
		}
		result[policyId] = cloned
	}
	return result
}

// normalize removes zero quantities and empty policy buckets in place
func (m MultiAsset) normalize() {
	for policyId, assets := range m {
		for name, qty := range assets {
			if qty == 0 {
				delete(assets, name)
			}
		}
		if len(assets) == 0 {
			delete(m, policyId)
		}
	}
}

// IsEmpty reports whether the MultiAsset holds no nonzero quantity
func (m MultiAsset) IsEmpty() bool {
	for _, assets := range m {
		for _, qty := range assets {
			if qty != 0 {
				return false
			}
		}
	}
	return true
}

// Policies returns the policy IDs in deterministic (byte) order
func (m MultiAsset) Policies() []lcommon.Blake2b224 {
	policies := make([]lcommon.Blake2b224, 0, len(m))
	for policyId := range m {
		policies = append(policies, policyId)
	}
	sort.Slice(policies, func(i, j int) bool {
		return bytes.Compare(policies[i].Bytes(), policies[j].Bytes()) < 0
	})
	return policies
}

// AssetNames returns the asset names under a policy in canonical CBOR key
// order (length first, then lexicographic)
func (m MultiAsset) AssetNames(policyId lcommon.Blake2b224) [][]byte {
	assets, ok := m[policyId]
	if !ok {
		return nil
	}
	names := make([][]byte, 0, len(assets))
	for name := range assets {
		names = append(names, name.Bytes())
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) < len(names[j])
		}
		return bytes.Compare(names[i], names[j]) < 0
	})
	return names
}

// combine adds (sign=1) or subtracts (sign=-1) other into a clone of m,
// eliding zero results
func (m MultiAsset) combine(other MultiAsset, sign int64) (MultiAsset, error) {
	result := m.Clone()
	if result == nil {
		result = NewMultiAsset()
	}
	for policyId, assets := range other {
		for name, qty := range assets {
			current := result.Quantity(policyId, name.Bytes())
			next, ok := addInt64Checked(current, sign*qty)
			if !ok {
				return nil, fmt.Errorf(
					"asset quantity overflow for policy %s: %w",
					policyId.String(),
					ErrArithmeticOverflow,
				)
			}
			result.Set(policyId, name.Bytes(), next)
		}
	}
	result.normalize()
	return result, nil
}

// Value is an amount of lovelace plus optional native assets. Coin is
// signed: intermediate balancing arithmetic may carry a deficit, but a
// Value reaching an output must be non-negative.
type Value struct {
	Coin   int64
	Assets MultiAsset
}

// NewValue creates a Value from a coin amount and optional assets
func NewValue(coin int64, assets MultiAsset) Value {
	return Value{Coin: coin, Assets: assets}
}

// NewValueFromCoin creates an asset-free Value
func NewValueFromCoin(coin int64) Value {
	return Value{Coin: coin}
}

// ZeroValue returns the zero Value
func ZeroValue() Value {
	return Value{}
}

func addInt64Checked(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}

// Add returns v + other with checked coin arithmetic
func (v Value) Add(other Value) (Value, error) {
	coin, ok := addInt64Checked(v.Coin, other.Coin)
	if !ok {
		return Value{}, fmt.Errorf("coin addition overflow: %w", ErrArithmeticOverflow)
	}
	assets, err := v.Assets.combine(other.Assets, 1)
	if err != nil {
		return Value{}, err
	}
	if len(assets) == 0 {
		assets = nil
	}
	return Value{Coin: coin, Assets: assets}, nil
}

// Subtract returns v - other with checked coin arithmetic
func (v Value) Subtract(other Value) (Value, error) {
	negCoin := other.Coin
	if negCoin == math.MinInt64 {
		return Value{}, fmt.Errorf("coin negation overflow: %w", ErrArithmeticOverflow)
	}
	coin, ok := addInt64Checked(v.Coin, -negCoin)
	if !ok {
		return Value{}, fmt.Errorf("coin subtraction overflow: %w", ErrArithmeticOverflow)
	}
	assets, err := v.Assets.combine(other.Assets, -1)
	if err != nil {
		return Value{}, err
	}
	if len(assets) == 0 {
		assets = nil
	}
	return Value{Coin: coin, Assets: assets}, nil
}

// AddCoin adds a signed coin amount in place
func (v *Value) AddCoin(coin int64) error {
	sum, ok := addInt64Checked(v.Coin, coin)
	if !ok {
		return fmt.Errorf("coin addition overflow: %w", ErrArithmeticOverflow)
	}
	v.Coin = sum
	return nil
}

// IsZero reports whether coin is zero and every asset quantity is zero
func (v Value) IsZero() bool {
	return v.Coin == 0 && v.Assets.IsEmpty()
}

// Equal compares two Values canonically (element-wise after zero elision)
func (v Value) Equal(other Value) bool {
	diff, err := v.Subtract(other)
	if err != nil {
		return false
	}
	return diff.IsZero()
}

// Clone returns a deep copy
func (v Value) Clone() Value {
	return Value{Coin: v.Coin, Assets: v.Assets.Clone()}
}

// encodeMultiAsset produces the canonical nested-map encoding. Negative
// quantities are permitted when allowNegative is set (mint fields).
func encodeMultiAsset(m MultiAsset, allowNegative bool) ([]byte, error) {
	pairs := make([]canonical.Pair, 0, len(m))
	for _, policyId := range m.Policies() {
		inner := make([]canonical.Pair, 0, len(m[policyId]))
		for _, name := range m.AssetNames(policyId) {
			qty := m.Quantity(policyId, name)
			if qty == 0 {
				continue
			}
			if qty < 0 && !allowNegative {
				return nil, fmt.Errorf(
					"negative asset quantity %d in output value: %w",
					qty,
					ErrInvalidCborValue,
				)
			}
			inner = append(inner, canonical.Pair{
				Key:   canonical.EncodeBytes(name),
				Value: canonical.EncodeInt(qty),
			})
		}
		if len(inner) == 0 {
			continue
		}
		pairs = append(pairs, canonical.Pair{
			Key:   canonical.EncodeBytes(policyId.Bytes()),
			Value: canonical.EncodeMap(inner),
		})
	}
	return canonical.EncodeMap(pairs), nil
}

// decodeMultiAsset reads the nested policy/asset map form
func decodeMultiAsset(raw []byte) (MultiAsset, error) {
	var outer map[cbor.ByteString]map[cbor.ByteString]int64
	if _, err := cbor.Decode(raw, &outer); err != nil {
		return nil, fmt.Errorf("multi-asset map: %w: %s", ErrMalformedCbor, err)
	}
	result := NewMultiAsset()
	for policyKey, assets := range outer {
		policyBytes := policyKey.Bytes()
		if len(policyBytes) != 28 {
			return nil, fmt.Errorf(
				"policy id must be 28 bytes, got %d: %w",
				len(policyBytes),
				ErrInvalidCborValue,
			)
		}
		policyId := lcommon.NewBlake2b224(policyBytes)
		for name, qty := range assets {
			if len(name.Bytes()) > 32 {
				return nil, fmt.Errorf(
					"asset name exceeds 32 bytes: %w",
					ErrInvalidCborValue,
				)
			}
			result.Set(policyId, name.Bytes(), qty)
		}
	}
	result.normalize()
	return result, nil
}

// MarshalCBOR encodes the Value in its ledger wire form: a bare unsigned
// integer when asset-free, otherwise [coin, multiasset]
func (v Value) MarshalCBOR() ([]byte, error) {
	if v.Coin < 0 {
		return nil, fmt.Errorf(
			"negative coin %d cannot be serialized: %w",
			v.Coin,
			ErrInvalidCborValue,
		)
	}
	if v.Assets.IsEmpty() {
		return canonical.EncodeUint(uint64(v.Coin)), nil
	}
	assets, err := encodeMultiAsset(v.Assets, false)
	if err != nil {
		return nil, err
	}
	return canonical.EncodeArray([][]byte{
		canonical.EncodeUint(uint64(v.Coin)),
		assets,
	}), nil
}

// UnmarshalCBOR accepts both the bare-coin and [coin, multiasset] forms
func (v *Value) UnmarshalCBOR(raw []byte) error {
	switch canonical.MajorType(raw) {
	case canonical.MajorUnsignedInt:
		var coin uint64
		if _, err := cbor.Decode(raw, &coin); err != nil {
			return fmt.Errorf("value coin: %w: %s", ErrMalformedCbor, err)
		}
		if coin > math.MaxInt64 {
			return fmt.Errorf("coin %d exceeds signed range: %w", coin, ErrArithmeticOverflow)
		}
		*v = Value{Coin: int64(coin)}
		return nil
	case canonical.MajorArray:
		var parts []cbor.RawMessage
		if _, err := cbor.Decode(raw, &parts); err != nil {
			return fmt.Errorf("value array: %w: %s", ErrMalformedCbor, err)
		}
		if len(parts) != 2 {
			return fmt.Errorf(
				"value array must have 2 elements, got %d: %w",
				len(parts),
				ErrInvalidCborArraySize,
			)
		}
		var coin uint64
		if _, err := cbor.Decode(parts[0], &coin); err != nil {
			return fmt.Errorf("value coin: %w: %s", ErrMalformedCbor, err)
		}
		if coin > math.MaxInt64 {
			return fmt.Errorf("coin %d exceeds signed range: %w", coin, ErrArithmeticOverflow)
		}
		assets, err := decodeMultiAsset(parts[1])
		if err != nil {
			return err
		}
		if len(assets) == 0 {
			assets = nil
		}
		*v = Value{Coin: int64(coin), Assets: assets}
		return nil
	default:
		return fmt.Errorf("value must be uint or array: %w", ErrUnexpectedCborType)
	}
}

// ToPlutusData converts the Value to its script-context representation
func (v Value) ToPlutusData() data.PlutusData {
	if v.Assets.IsEmpty() {
		return data.NewInteger(big.NewInt(v.Coin))
	}
	assetsPd := make([]data.PlutusData, 0, len(v.Assets))
	for _, policyId := range v.Assets.Policies() {
		for _, name := range v.Assets.AssetNames(policyId) {
			assetsPd = append(assetsPd, data.NewConstr(0,
				data.NewByteString(policyId.Bytes()),
				data.NewByteString(name),
				data.NewInteger(big.NewInt(v.Assets.Quantity(policyId, name))),
			))
		}
	}
	return data.NewConstr(0,
		data.NewInteger(big.NewInt(v.Coin)),
		data.NewList(assetsPd...),
	)
}

// String renders the Value for diagnostics
func (v Value) String() string {
	if v.Assets.IsEmpty() {
		return fmt.Sprintf("%d lovelace", v.Coin)
	}
	assetCount := 0
	for _, assets := range v.Assets {
		assetCount += len(assets)
	}
	return fmt.Sprintf("%d lovelace + %d asset(s)", v.Coin, assetCount)
}
