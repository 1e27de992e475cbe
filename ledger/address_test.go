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

func sampleKeyHash(fill byte) []byte {
	return bytes.Repeat([]byte{fill}, 28)
}

func TestClassifyAddressBytes(t *testing.T) {
	testDefs := []struct {
		header   byte
		expected ledger.AddressType
	}{
		{0x01, ledger.AddressTypeBasePaymentKeyStakeKey},
		{0x11, ledger.AddressTypeBasePaymentScriptStakeKey},
		{0x21, ledger.AddressTypeBasePaymentKeyStakeScript},
		{0x31, ledger.AddressTypeBasePaymentScriptStakeScript},
		{0x41, ledger.AddressTypePointerKey},
		{0x61, ledger.AddressTypeEnterpriseKey},
		{0x71, ledger.AddressTypeEnterpriseScript},
		{0x81, ledger.AddressTypeByron},
		{0xe1, ledger.AddressTypeRewardKey},
		{0xf1, ledger.AddressTypeRewardScript},
	}
	for _, testDef := range testDefs {
		raw := append([]byte{testDef.header}, sampleKeyHash(0x01)...)
		addrType, err := ledger.ClassifyAddressBytes(raw)
		if err != nil {
			t.Errorf("header %#02x: %v", testDef.header, err)
			continue
		}
		if addrType != testDef.expected {
			t.Errorf(
				"header %#02x classified as %d, expected %d",
				testDef.header,
				addrType,
				testDef.expected,
			)
		}
	}
}

func TestClassifyAddressBytesRejectsUnknown(t *testing.T) {
	if _, err := ledger.ClassifyAddressBytes([]byte{0x91, 0x00}); err == nil {
		t.Fatal("unknown header accepted")
	}
	if _, err := ledger.ClassifyAddressBytes(nil); err == nil {
		t.Fatal("empty address accepted")
	}
}

func TestPaymentKeyHash(t *testing.T) {
	payment := sampleKeyHash(0xaa)
	stake := sampleKeyHash(0xbb)

	// key-paying forms contribute their payment hash
	for _, addrType := range []ledger.AddressType{
		ledger.AddressTypeBasePaymentKeyStakeKey,
		ledger.AddressTypeBasePaymentKeyStakeScript,
		ledger.AddressTypeEnterpriseKey,
	} {
		raw, err := ledger.BuildAddressBytes(addrType, 1, payment, stakeFor(addrType, stake))
		if err != nil {
			t.Fatalf("BuildAddressBytes(%d): %v", addrType, err)
		}
		addr, err := ledger.NewAddressFromBytes(raw)
		if err != nil {
			t.Fatalf("NewAddressFromBytes(%d): %v", addrType, err)
		}
		hash, ok := ledger.PaymentKeyHashFromAddress(addr)
		if !ok {
			t.Errorf("type %d: expected a payment key hash", addrType)
			continue
		}
		if !bytes.Equal(hash.Bytes(), payment) {
			t.Errorf("type %d: hash mismatch", addrType)
		}
	}

	// script-paying forms contribute nothing
	for _, addrType := range []ledger.AddressType{
		ledger.AddressTypeBasePaymentScriptStakeKey,
		ledger.AddressTypeEnterpriseScript,
	} {
		raw, err := ledger.BuildAddressBytes(addrType, 1, payment, stakeFor(addrType, stake))
		if err != nil {
			t.Fatalf("BuildAddressBytes(%d): %v", addrType, err)
		}
		addr, err := ledger.NewAddressFromBytes(raw)
		if err != nil {
			t.Fatalf("NewAddressFromBytes(%d): %v", addrType, err)
		}
		if _, ok := ledger.PaymentKeyHashFromAddress(addr); ok {
			t.Errorf("type %d: script payment contributed a key hash", addrType)
		}
	}
}

func stakeFor(addrType ledger.AddressType, stake []byte) []byte {
	switch addrType {
	case ledger.AddressTypeBasePaymentKeyStakeKey,
		ledger.AddressTypeBasePaymentScriptStakeKey,
		ledger.AddressTypeBasePaymentKeyStakeScript,
		ledger.AddressTypeBasePaymentScriptStakeScript:
		return stake
	default:
		return nil
	}
}

func TestRewardAccountKeyHash(t *testing.T) {
	keyed := ledger.RewardAccount(append([]byte{0xe1}, sampleKeyHash(0x22)...))
	hash, ok := keyed.KeyHash()
	if !ok {
		t.Fatal("keyed reward account reported no key hash")
	}
	if !bytes.Equal(hash.Bytes(), sampleKeyHash(0x22)) {
		t.Error("reward account hash mismatch")
	}
	scripted := ledger.RewardAccount(append([]byte{0xf1}, sampleKeyHash(0x22)...))
	if _, ok := scripted.KeyHash(); ok {
		t.Error("script reward account reported a key hash")
	}
}

func TestKeyHash(t *testing.T) {
	vkey := bytes.Repeat([]byte{0x42}, 32)
	hash, err := ledger.KeyHash(vkey)
	if err != nil {
		t.Fatalf("KeyHash error: %v", err)
	}
	if len(hash.Bytes()) != 28 {
		t.Fatalf("hash length = %d, expected 28", len(hash.Bytes()))
	}
	// deterministic
	again, err := ledger.KeyHash(vkey)
	if err != nil {
		t.Fatalf("KeyHash error: %v", err)
	}
	if hash != again {
		t.Error("KeyHash is not deterministic")
	}
}
