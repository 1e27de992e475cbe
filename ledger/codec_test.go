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
	"strings"
	"testing"

	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/blinklabs-io/txcraft/ledger"
)

var sampleEnterpriseAddrHex = "61" + strings.Repeat("aa", 28)

func exUnits(mem, steps uint64) lcommon.ExUnits {
	return lcommon.ExUnits{Memory: mem, Steps: steps}
}

func TestOutputLegacyFormRoundTrip(t *testing.T) {
	raw := hexBytes(t, "82", "581d", sampleEnterpriseAddrHex, "1a000f4240")
	var output ledger.TransactionOutput
	if err := output.UnmarshalCBOR(raw); err != nil {
		t.Fatalf("UnmarshalCBOR error: %v", err)
	}
	if output.PostAlonzo {
		t.Error("legacy output classified as post-Alonzo")
	}
	if output.Amount.Coin != 1000000 {
		t.Errorf("coin = %d", output.Amount.Coin)
	}
	encoded, err := output.MarshalCBOR()
	if err != nil {
		t.Fatalf("MarshalCBOR error: %v", err)
	}
	if !bytes.Equal(encoded, raw) {
		t.Fatalf("re-encode differs:\n got %x\nwant %x", encoded, raw)
	}
	// mutation keeps the legacy form, canonically
	output.SetAmount(ledger.NewValueFromCoin(2000000))
	encoded, err = output.MarshalCBOR()
	if err != nil {
		t.Fatalf("MarshalCBOR error: %v", err)
	}
	expected := hexBytes(t, "82", "581d", sampleEnterpriseAddrHex, "1a001e8480")
	if !bytes.Equal(encoded, expected) {
		t.Fatalf("mutated re-encode:\n got %x\nwant %x", encoded, expected)
	}
}

func TestOutputPostAlonzoFormRoundTrip(t *testing.T) {
	raw := hexBytes(t, "a2", "00", "581d", sampleEnterpriseAddrHex, "01", "1a000f4240")
	var output ledger.TransactionOutput
	if err := output.UnmarshalCBOR(raw); err != nil {
		t.Fatalf("UnmarshalCBOR error: %v", err)
	}
	if !output.PostAlonzo {
		t.Error("map output not classified as post-Alonzo")
	}
	encoded, err := output.MarshalCBOR()
	if err != nil {
		t.Fatalf("MarshalCBOR error: %v", err)
	}
	if !bytes.Equal(encoded, raw) {
		t.Fatalf("re-encode differs:\n got %x\nwant %x", encoded, raw)
	}
}

func TestOutputDatumHashForms(t *testing.T) {
	datumHashHex := strings.Repeat("0d", 32)
	legacy := hexBytes(t,
		"83", "581d", sampleEnterpriseAddrHex, "1a000f4240", "5820", datumHashHex,
	)
	var legacyOutput ledger.TransactionOutput
	if err := legacyOutput.UnmarshalCBOR(legacy); err != nil {
		t.Fatalf("legacy datum output: %v", err)
	}
	if legacyOutput.DatumHash == nil {
		t.Fatal("legacy datum hash lost")
	}
	postAlonzo := hexBytes(t,
		"a3",
		"00", "581d", sampleEnterpriseAddrHex,
		"01", "1a000f4240",
		"02", "82", "00", "5820", datumHashHex,
	)
	var mapOutput ledger.TransactionOutput
	if err := mapOutput.UnmarshalCBOR(postAlonzo); err != nil {
		t.Fatalf("post-Alonzo datum output: %v", err)
	}
	if mapOutput.DatumHash == nil {
		t.Fatal("post-Alonzo datum hash lost")
	}
	if !bytes.Equal(legacyOutput.DatumHash.Bytes(), mapOutput.DatumHash.Bytes()) {
		t.Error("datum hash mismatch between forms")
	}
}

func TestOutputRejectsUnknownMapKey(t *testing.T) {
	raw := hexBytes(t,
		"a3",
		"00", "581d", sampleEnterpriseAddrHex,
		"01", "1a000f4240",
		"04", "00",
	)
	var output ledger.TransactionOutput
	if err := output.UnmarshalCBOR(raw); err == nil {
		t.Fatal("unknown output key accepted")
	}
}

func TestMinAdaRequiredTracksSerializedSize(t *testing.T) {
	raw := hexBytes(t, "82", "581d", sampleEnterpriseAddrHex, "1a000f4240")
	var output ledger.TransactionOutput
	if err := output.UnmarshalCBOR(raw); err != nil {
		t.Fatalf("UnmarshalCBOR error: %v", err)
	}
	minCoin, err := ledger.MinAdaRequired(&output, 4310)
	if err != nil {
		t.Fatalf("MinAdaRequired error: %v", err)
	}
	expected := uint64(len(raw)+160) * 4310
	if minCoin != expected {
		t.Errorf("min ada = %d, expected %d", minCoin, expected)
	}
}

func TestCertificateStakeDelegationRoundTrip(t *testing.T) {
	raw := hexBytes(t,
		"83", "02",
		"82", "00", "581c", strings.Repeat("ef", 28),
		"581c", strings.Repeat("aa", 28),
	)
	cert, err := ledger.DecodeCertificate(raw)
	if err != nil {
		t.Fatalf("DecodeCertificate error: %v", err)
	}
	delegation, ok := cert.(*ledger.StakeDelegationCert)
	if !ok {
		t.Fatalf("unexpected certificate type %T", cert)
	}
	if delegation.Credential.Kind != ledger.CredentialKeyHash {
		t.Error("credential kind mismatch")
	}
	encoded, err := cert.MarshalCBOR()
	if err != nil {
		t.Fatalf("MarshalCBOR error: %v", err)
	}
	if !bytes.Equal(encoded, raw) {
		t.Fatalf("re-encode differs:\n got %x\nwant %x", encoded, raw)
	}
}

func TestCertificateRegistrationCarriesDeposit(t *testing.T) {
	raw := hexBytes(t,
		"83", "07",
		"82", "01", "581c", strings.Repeat("cc", 28),
		"1a001e8480",
	)
	cert, err := ledger.DecodeCertificate(raw)
	if err != nil {
		t.Fatalf("DecodeCertificate error: %v", err)
	}
	registration, ok := cert.(*ledger.RegistrationCert)
	if !ok {
		t.Fatalf("unexpected certificate type %T", cert)
	}
	if registration.Deposit != 2000000 {
		t.Errorf("deposit = %d", registration.Deposit)
	}
	if registration.Credential.Kind != ledger.CredentialScriptHash {
		t.Error("credential kind mismatch")
	}
}

func TestCertificateUnknownKindRejected(t *testing.T) {
	raw := hexBytes(t, "82", "1819", "00")
	if _, err := ledger.DecodeCertificate(raw); err == nil {
		t.Fatal("unknown certificate kind accepted")
	}
}

func TestRedeemersListFormRoundTrip(t *testing.T) {
	raw := hexBytes(t, "81", "84", "00", "00", "04", "82", "1903e8", "1a0007a120")
	var redeemers ledger.Redeemers
	if err := redeemers.UnmarshalCBOR(raw); err != nil {
		t.Fatalf("UnmarshalCBOR error: %v", err)
	}
	if redeemers.MapForm {
		t.Error("list form classified as map")
	}
	if len(redeemers.Items) != 1 {
		t.Fatalf("expected 1 redeemer, got %d", len(redeemers.Items))
	}
	item := redeemers.Items[0]
	if item.Tag != ledger.RedeemerTagSpend || item.Index != 0 {
		t.Error("redeemer key mismatch")
	}
	if item.ExUnits.Memory != 1000 || item.ExUnits.Steps != 500000 {
		t.Error("ex units mismatch")
	}
	encoded, err := redeemers.MarshalCBOR()
	if err != nil {
		t.Fatalf("MarshalCBOR error: %v", err)
	}
	if !bytes.Equal(encoded, raw) {
		t.Fatalf("re-encode differs:\n got %x\nwant %x", encoded, raw)
	}
}

func TestRedeemersMapFormRoundTrip(t *testing.T) {
	raw := hexBytes(t, "a1", "820000", "82", "04", "82", "1903e8", "1a0007a120")
	var redeemers ledger.Redeemers
	if err := redeemers.UnmarshalCBOR(raw); err != nil {
		t.Fatalf("UnmarshalCBOR error: %v", err)
	}
	if !redeemers.MapForm {
		t.Error("map form not recorded")
	}
	encoded, err := redeemers.MarshalCBOR()
	if err != nil {
		t.Fatalf("MarshalCBOR error: %v", err)
	}
	if !bytes.Equal(encoded, raw) {
		t.Fatalf("re-encode differs:\n got %x\nwant %x", encoded, raw)
	}
	// mutating a budget re-encodes canonically in the same form
	if !redeemers.SetExUnits(ledger.RedeemerTagSpend, 0, exUnits(2000, 900000)) {
		t.Fatal("SetExUnits missed the redeemer")
	}
	encoded, err = redeemers.MarshalCBOR()
	if err != nil {
		t.Fatalf("MarshalCBOR error: %v", err)
	}
	expected := hexBytes(t, "a1", "820000", "82", "04", "82", "1907d0", "1a000dbba0")
	if !bytes.Equal(encoded, expected) {
		t.Fatalf("mutated re-encode:\n got %x\nwant %x", encoded, expected)
	}
}

func TestWitnessSetVkeyAndSetTag(t *testing.T) {
	vkeyHex := strings.Repeat("0b", 32)
	sigHex := strings.Repeat("0c", 64)
	raw := hexBytes(t,
		"a1", "00", "d9010281", "82", "5820", vkeyHex, "5840", sigHex,
	)
	var witnessSet ledger.WitnessSet
	if err := witnessSet.UnmarshalCBOR(raw); err != nil {
		t.Fatalf("UnmarshalCBOR error: %v", err)
	}
	if len(witnessSet.Vkey) != 1 || !witnessSet.VkeySetTag {
		t.Fatal("vkey witnesses or set tag lost")
	}
	encoded, err := witnessSet.MarshalCBOR()
	if err != nil {
		t.Fatalf("MarshalCBOR error: %v", err)
	}
	if !bytes.Equal(encoded, raw) {
		t.Fatalf("re-encode differs:\n got %x\nwant %x", encoded, raw)
	}
	// canonical re-encode after invalidation preserves the set framing
	witnessSet.Invalidate()
	encoded, err = witnessSet.MarshalCBOR()
	if err != nil {
		t.Fatalf("MarshalCBOR error: %v", err)
	}
	if !bytes.Equal(encoded, raw) {
		t.Fatalf("canonical re-encode differs:\n got %x\nwant %x", encoded, raw)
	}
}

func TestAuxiliaryDataThreeShapes(t *testing.T) {
	testDefs := []struct {
		name  string
		data  string
		shape ledger.AuxiliaryDataShape
	}{
		{"metadata-only", "a101182a", ledger.AuxShapeMetadataOnly},
		{"shelley-ma", "82a101182a80", ledger.AuxShapeShelleyMA},
		{"alonzo", "d90103a100a101182a", ledger.AuxShapeAlonzo},
	}
	for _, testDef := range testDefs {
		raw := hexBytes(t, testDef.data)
		var aux ledger.AuxiliaryData
		if err := aux.UnmarshalCBOR(raw); err != nil {
			t.Errorf("%s: UnmarshalCBOR error: %v", testDef.name, err)
			continue
		}
		if aux.Shape != testDef.shape {
			t.Errorf("%s: shape = %d, expected %d", testDef.name, aux.Shape, testDef.shape)
			continue
		}
		encoded, err := aux.MarshalCBOR()
		if err != nil {
			t.Errorf("%s: MarshalCBOR error: %v", testDef.name, err)
			continue
		}
		if !bytes.Equal(encoded, raw) {
			t.Errorf("%s: re-encode differs:\n got %x\nwant %x", testDef.name, encoded, raw)
		}
	}
}

func TestAuxiliaryDataHashDeterministic(t *testing.T) {
	raw := hexBytes(t, "d90103a100a101182a")
	var aux ledger.AuxiliaryData
	if err := aux.UnmarshalCBOR(raw); err != nil {
		t.Fatalf("UnmarshalCBOR error: %v", err)
	}
	first, err := aux.Hash()
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	second, err := aux.Hash()
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if first != second {
		t.Error("auxiliary data hash is not deterministic")
	}
}
