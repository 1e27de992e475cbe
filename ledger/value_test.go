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
	"errors"
	"math"
	"testing"

	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/blinklabs-io/txcraft/ledger"
)

func samplePolicyId() lcommon.Blake2b224 {
	return lcommon.NewBlake2b224(bytes.Repeat([]byte{0xcd}, 28))
}

func assetValue(coin int64, policyId lcommon.Blake2b224, name string, qty int64) ledger.Value {
	assets := ledger.NewMultiAsset()
	assets.Set(policyId, []byte(name), qty)
	return ledger.NewValue(coin, assets)
}

func TestValueAdd(t *testing.T) {
	policyId := samplePolicyId()
	sum, err := assetValue(1000, policyId, "tkn", 5).Add(assetValue(500, policyId, "tkn", 7))
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if sum.Coin != 1500 {
		t.Errorf("coin = %d, expected 1500", sum.Coin)
	}
	if qty := sum.Assets.Quantity(policyId, []byte("tkn")); qty != 12 {
		t.Errorf("asset quantity = %d, expected 12", qty)
	}
}

func TestValueSubtractElidesZeroQuantities(t *testing.T) {
	policyId := samplePolicyId()
	diff, err := assetValue(1000, policyId, "tkn", 5).Subtract(assetValue(400, policyId, "tkn", 5))
	if err != nil {
		t.Fatalf("Subtract error: %v", err)
	}
	if diff.Coin != 600 {
		t.Errorf("coin = %d, expected 600", diff.Coin)
	}
	if !diff.Assets.IsEmpty() {
		t.Error("expected asset elision after subtraction to zero")
	}
}

func TestValueSubtractGoesNegative(t *testing.T) {
	diff, err := ledger.NewValueFromCoin(100).Subtract(ledger.NewValueFromCoin(250))
	if err != nil {
		t.Fatalf("Subtract error: %v", err)
	}
	if diff.Coin != -150 {
		t.Errorf("coin = %d, expected -150", diff.Coin)
	}
}

func TestValueIsZero(t *testing.T) {
	if !ledger.ZeroValue().IsZero() {
		t.Error("zero value is not zero")
	}
	policyId := samplePolicyId()
	v := assetValue(0, policyId, "tkn", 3)
	if v.IsZero() {
		t.Error("value with assets reported zero")
	}
	diff, err := v.Subtract(assetValue(0, policyId, "tkn", 3))
	if err != nil {
		t.Fatalf("Subtract error: %v", err)
	}
	if !diff.IsZero() {
		t.Error("expected zero after subtracting equal assets")
	}
}

func TestValueEqualCanonical(t *testing.T) {
	policyId := samplePolicyId()
	a := assetValue(1000, policyId, "tkn", 2)
	// same content built in a different order, plus an explicit zero
	b := ledger.NewMultiAsset()
	b.Set(policyId, []byte("zero"), 0)
	b.Set(policyId, []byte("tkn"), 2)
	if !a.Equal(ledger.NewValue(1000, b)) {
		t.Error("canonically equal values compared unequal")
	}
}

func TestValueCoinOverflow(t *testing.T) {
	big := ledger.NewValueFromCoin(math.MaxInt64)
	_, err := big.Add(ledger.NewValueFromCoin(1))
	if !errors.Is(err, ledger.ErrArithmeticOverflow) {
		t.Errorf("expected ArithmeticOverflow, got %v", err)
	}
	if ledger.ErrorCodeOf(err) != ledger.CodeArithmeticOverflow {
		t.Error("overflow error carries wrong code")
	}
}

func TestValueCborCoinOnly(t *testing.T) {
	encoded, err := ledger.NewValueFromCoin(1000000).MarshalCBOR()
	if err != nil {
		t.Fatalf("MarshalCBOR error: %v", err)
	}
	expected := []byte{0x1a, 0x00, 0x0f, 0x42, 0x40}
	if !bytes.Equal(encoded, expected) {
		t.Fatalf("encoded = %x, expected %x", encoded, expected)
	}
	var decoded ledger.Value
	if err := decoded.UnmarshalCBOR(encoded); err != nil {
		t.Fatalf("UnmarshalCBOR error: %v", err)
	}
	if !decoded.Equal(ledger.NewValueFromCoin(1000000)) {
		t.Error("round trip mismatch")
	}
}

func TestValueCborWithAssetsRoundTrip(t *testing.T) {
	policyId := samplePolicyId()
	original := assetValue(2500000, policyId, "tkn", 42)
	encoded, err := original.MarshalCBOR()
	if err != nil {
		t.Fatalf("MarshalCBOR error: %v", err)
	}
	var decoded ledger.Value
	if err := decoded.UnmarshalCBOR(encoded); err != nil {
		t.Fatalf("UnmarshalCBOR error: %v", err)
	}
	if !decoded.Equal(original) {
		t.Error("round trip mismatch")
	}
	// canonical form is stable
	reencoded, err := decoded.MarshalCBOR()
	if err != nil {
		t.Fatalf("re-encode error: %v", err)
	}
	if !bytes.Equal(encoded, reencoded) {
		t.Errorf("re-encode differs: %x vs %x", encoded, reencoded)
	}
}

func TestValueCborRejectsNegativeCoin(t *testing.T) {
	if _, err := ledger.NewValueFromCoin(-5).MarshalCBOR(); err == nil {
		t.Fatal("negative coin serialized")
	}
}

func TestMultiAssetCanonicalNameOrder(t *testing.T) {
	policyId := samplePolicyId()
	assets := ledger.NewMultiAsset()
	assets.Set(policyId, []byte("zz"), 1)
	assets.Set(policyId, []byte("a"), 1)
	assets.Set(policyId, []byte("ab"), 1)
	names := assets.AssetNames(policyId)
	if len(names) != 3 {
		t.Fatalf("expected 3 names, got %d", len(names))
	}
	// length-first ordering per canonical CBOR key rules
	if string(names[0]) != "a" || string(names[1]) != "ab" || string(names[2]) != "zz" {
		t.Errorf("unexpected order: %q %q %q", names[0], names[1], names[2])
	}
}
