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

	"github.com/blinklabs-io/gouroboros/cbor"
	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/blinklabs-io/txcraft/internal/canonical"
)

// Transaction body map keys (Shelley through Conway)
const (
	bodyKeyInputs             = 0
	bodyKeyOutputs            = 1
	bodyKeyFee                = 2
	bodyKeyTTL                = 3
	bodyKeyCertificates       = 4
	bodyKeyWithdrawals        = 5
	bodyKeyUpdate             = 6
	bodyKeyAuxDataHash        = 7
	bodyKeyValidityStart      = 8
	bodyKeyMint               = 9
	bodyKeyScriptDataHash     = 11
	bodyKeyCollateral         = 13
	bodyKeyRequiredSigners    = 14
	bodyKeyNetworkId          = 15
	bodyKeyCollateralReturn   = 16
	bodyKeyTotalCollateral    = 17
	bodyKeyReferenceInputs    = 18
	bodyKeyVotingProcedures   = 19
	bodyKeyProposalProcedures = 20
	bodyKeyTreasuryValue      = 21
	bodyKeyDonation           = 22
)

// Withdrawal is one reward-account withdrawal entry
type Withdrawal struct {
	Account RewardAccount
	Amount  uint64
}

// TransactionBody is a transaction body for any era from Shelley through
// Conway. Decoded bodies cache their original bytes so the transaction
// hash is stable across re-encoding; any mutation through the setters
// drops the cache and the next encode is canonical.
type TransactionBody struct {
	cbor.DecodeStoreCbor
	Inputs                []TransactionInput
	InputsSetTag          bool
	Outputs               []TransactionOutput
	Fee                   uint64
	TTL                   *uint64
	Certificates          []Certificate
	CertsSetTag           bool
	Withdrawals           []Withdrawal
	Update                cbor.RawMessage
	AuxDataHash           *lcommon.Blake2b256
	ValidityIntervalStart *uint64
	Mint                  MultiAsset
	ScriptDataHash        *lcommon.Blake2b256
	Collateral            []TransactionInput
	CollateralSetTag      bool
	RequiredSigners       []lcommon.Blake2b224
	RequiredSignersSetTag bool
	NetworkId             *uint8
	CollateralReturn      *TransactionOutput
	TotalCollateral       *uint64
	ReferenceInputs       []TransactionInput
	ReferenceInputsSetTag bool
	VotingProcedures      *VotingProcedures
	ProposalProcedures    []ProposalProcedure
	ProposalsSetTag       bool
	CurrentTreasuryValue  *uint64
	Donation              *uint64
}

// NewTransactionBody creates an empty body that encodes its set-typed
// fields with the Conway 258 set tag
func NewTransactionBody() TransactionBody {
	return TransactionBody{
		InputsSetTag:          true,
		CertsSetTag:           true,
		CollateralSetTag:      true,
		RequiredSignersSetTag: true,
		ReferenceInputsSetTag: true,
		ProposalsSetTag:       true,
	}
}

// Invalidate drops the cached original bytes after a mutation
func (b *TransactionBody) Invalidate() {
	b.SetCbor(nil)
}

// SetInputs replaces the spending inputs
func (b *TransactionBody) SetInputs(inputs []TransactionInput) {
	b.Inputs = inputs
	b.Invalidate()
}

// SetOutputs replaces the outputs
func (b *TransactionBody) SetOutputs(outputs []TransactionOutput) {
	b.Outputs = outputs
	b.Invalidate()
}

// AppendOutput adds an output
func (b *TransactionBody) AppendOutput(output TransactionOutput) {
	b.Outputs = append(b.Outputs, output)
	b.Invalidate()
}

// SetFee sets the declared fee
func (b *TransactionBody) SetFee(fee uint64) {
	b.Fee = fee
	b.Invalidate()
}

// SetCollateral replaces the collateral inputs; nil clears them
func (b *TransactionBody) SetCollateral(inputs []TransactionInput) {
	b.Collateral = inputs
	b.Invalidate()
}

// SetCollateralReturn sets or clears the collateral return output
func (b *TransactionBody) SetCollateralReturn(output *TransactionOutput) {
	b.CollateralReturn = output
	b.Invalidate()
}

// SetTotalCollateral sets or clears the declared total collateral
func (b *TransactionBody) SetTotalCollateral(amount *uint64) {
	b.TotalCollateral = amount
	b.Invalidate()
}

func encodeInput(input TransactionInput) []byte {
	return canonical.EncodeArray([][]byte{
		canonical.EncodeBytes(input.TxId.Bytes()),
		canonical.EncodeUint(uint64(input.Index)),
	})
}

func encodeInputSet(inputs []TransactionInput, useTag bool) []byte {
	items := make([][]byte, 0, len(inputs))
	for _, input := range inputs {
		items = append(items, encodeInput(input))
	}
	return canonical.EncodeSet(items, useTag)
}

func decodeInput(raw []byte) (TransactionInput, error) {
	parts, err := canonical.SplitArray(raw)
	if err != nil {
		return TransactionInput{}, fmt.Errorf("input: %w: %s", ErrMalformedCbor, err)
	}
	if len(parts) != 2 {
		return TransactionInput{}, fmt.Errorf(
			"input must have 2 elements, got %d: %w",
			len(parts),
			ErrInvalidCborArraySize,
		)
	}
	var txIdBytes []byte
	if _, err := cbor.Decode(parts[0], &txIdBytes); err != nil {
		return TransactionInput{}, fmt.Errorf("input tx id: %w: %s", ErrMalformedCbor, err)
	}
	if len(txIdBytes) != 32 {
		return TransactionInput{}, fmt.Errorf(
			"input tx id must be 32 bytes, got %d: %w",
			len(txIdBytes),
			&CodedError{Code: CodeInvalidBlake2bHashSize},
		)
	}
	var index uint16
	if _, err := cbor.Decode(parts[1], &index); err != nil {
		return TransactionInput{}, fmt.Errorf("input index: %w: %s", ErrMalformedCbor, err)
	}
	return TransactionInput{TxId: lcommon.NewBlake2b256(txIdBytes), Index: index}, nil
}

func decodeInputSet(raw []byte) ([]TransactionInput, bool, error) {
	inner, tagged := canonical.StripSetTag(raw)
	items, err := canonical.SplitArray(inner)
	if err != nil {
		return nil, false, fmt.Errorf("input set: %w: %s", ErrMalformedCbor, err)
	}
	inputs := make([]TransactionInput, 0, len(items))
	for _, item := range items {
		input, err := decodeInput(item)
		if err != nil {
			return nil, false, err
		}
		inputs = append(inputs, input)
	}
	return inputs, tagged, nil
}

// MarshalCBOR encodes the body, preferring the cached original bytes so a
// decoded body re-encodes byte-identically until mutated
func (b TransactionBody) MarshalCBOR() ([]byte, error) {
	if cached := b.Cbor(); len(cached) > 0 {
		return cached, nil
	}
	var pairs []canonical.Pair
	addPair := func(key uint64, value []byte) {
		pairs = append(pairs, canonical.Pair{
			Key:   canonical.EncodeUint(key),
			Value: value,
		})
	}
	addPair(bodyKeyInputs, encodeInputSet(b.Inputs, b.InputsSetTag))
	outputs := make([][]byte, 0, len(b.Outputs))
	for i := range b.Outputs {
		encoded, err := b.Outputs[i].MarshalCBOR()
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, encoded)
	}
	addPair(bodyKeyOutputs, canonical.EncodeArray(outputs))
	addPair(bodyKeyFee, canonical.EncodeUint(b.Fee))
	if b.TTL != nil {
		addPair(bodyKeyTTL, canonical.EncodeUint(*b.TTL))
	}
	if len(b.Certificates) > 0 {
		certs := make([][]byte, 0, len(b.Certificates))
		for _, cert := range b.Certificates {
			encoded, err := cert.MarshalCBOR()
			if err != nil {
				return nil, err
			}
			certs = append(certs, encoded)
		}
		addPair(bodyKeyCertificates, canonical.EncodeSet(certs, b.CertsSetTag))
	}
	if len(b.Withdrawals) > 0 {
		wdrls := make([]canonical.Pair, 0, len(b.Withdrawals))
		for _, wdrl := range b.Withdrawals {
			wdrls = append(wdrls, canonical.Pair{
				Key:   canonical.EncodeBytes(wdrl.Account),
				Value: canonical.EncodeUint(wdrl.Amount),
			})
		}
		addPair(bodyKeyWithdrawals, canonical.EncodeMap(wdrls))
	}
	if b.Update != nil {
		addPair(bodyKeyUpdate, b.Update)
	}
	if b.AuxDataHash != nil {
		addPair(bodyKeyAuxDataHash, canonical.EncodeBytes(b.AuxDataHash.Bytes()))
	}
	if b.ValidityIntervalStart != nil {
		addPair(bodyKeyValidityStart, canonical.EncodeUint(*b.ValidityIntervalStart))
	}
	if !b.Mint.IsEmpty() {
		mint, err := encodeMultiAsset(b.Mint, true)
		if err != nil {
			return nil, err
		}
		addPair(bodyKeyMint, mint)
	}
	if b.ScriptDataHash != nil {
		addPair(bodyKeyScriptDataHash, canonical.EncodeBytes(b.ScriptDataHash.Bytes()))
	}
	if len(b.Collateral) > 0 {
		addPair(bodyKeyCollateral, encodeInputSet(b.Collateral, b.CollateralSetTag))
	}
	if len(b.RequiredSigners) > 0 {
		signers := make([][]byte, 0, len(b.RequiredSigners))
		for _, signer := range b.RequiredSigners {
			signers = append(signers, canonical.EncodeBytes(signer.Bytes()))
		}
		addPair(bodyKeyRequiredSigners, canonical.EncodeSet(signers, b.RequiredSignersSetTag))
	}
	if b.NetworkId != nil {
		addPair(bodyKeyNetworkId, canonical.EncodeUint(uint64(*b.NetworkId)))
	}
	if b.CollateralReturn != nil {
		encoded, err := b.CollateralReturn.MarshalCBOR()
		if err != nil {
			return nil, err
		}
		addPair(bodyKeyCollateralReturn, encoded)
	}
	if b.TotalCollateral != nil {
		addPair(bodyKeyTotalCollateral, canonical.EncodeUint(*b.TotalCollateral))
	}
	if len(b.ReferenceInputs) > 0 {
		addPair(bodyKeyReferenceInputs, encodeInputSet(b.ReferenceInputs, b.ReferenceInputsSetTag))
	}
	if b.VotingProcedures != nil {
		encoded, err := b.VotingProcedures.MarshalCBOR()
		if err != nil {
			return nil, err
		}
		addPair(bodyKeyVotingProcedures, encoded)
	}
	if len(b.ProposalProcedures) > 0 {
		proposals := make([][]byte, 0, len(b.ProposalProcedures))
		for i := range b.ProposalProcedures {
			encoded, err := b.ProposalProcedures[i].MarshalCBOR()
			if err != nil {
				return nil, err
			}
			proposals = append(proposals, encoded)
		}
		addPair(bodyKeyProposalProcedures, canonical.EncodeSet(proposals, b.ProposalsSetTag))
	}
	if b.CurrentTreasuryValue != nil {
		addPair(bodyKeyTreasuryValue, canonical.EncodeUint(*b.CurrentTreasuryValue))
	}
	if b.Donation != nil {
		addPair(bodyKeyDonation, canonical.EncodeUint(*b.Donation))
	}
	return canonical.EncodeMap(pairs), nil
}

// UnmarshalCBOR reads a transaction body of any era from Shelley through
// Conway and caches the original bytes
func (b *TransactionBody) UnmarshalCBOR(raw []byte) error {
	*b = TransactionBody{}
	pairs, err := canonical.SplitMap(raw)
	if err != nil {
		return fmt.Errorf("transaction body: %w: %s", ErrMalformedCbor, err)
	}
	for _, pair := range pairs {
		var key uint64
		if _, err := cbor.Decode(pair.Key, &key); err != nil {
			return fmt.Errorf("body map key: %w: %s", ErrMalformedCbor, err)
		}
		if err := b.decodeField(key, pair.Value); err != nil {
			return err
		}
	}
	b.SetCbor(raw)
	return nil
}

func (b *TransactionBody) decodeField(key uint64, value []byte) error {
	switch key {
	case bodyKeyInputs:
		inputs, tagged, err := decodeInputSet(value)
		if err != nil {
			return err
		}
		b.Inputs = inputs
		b.InputsSetTag = tagged
	case bodyKeyOutputs:
		items, err := canonical.SplitArray(value)
		if err != nil {
			return fmt.Errorf("outputs: %w: %s", ErrMalformedCbor, err)
		}
		for _, item := range items {
			var output TransactionOutput
			if err := output.UnmarshalCBOR(item); err != nil {
				return err
			}
			b.Outputs = append(b.Outputs, output)
		}
	case bodyKeyFee:
		if _, err := cbor.Decode(value, &b.Fee); err != nil {
			return fmt.Errorf("fee: %w: %s", ErrMalformedCbor, err)
		}
	case bodyKeyTTL:
		var ttl uint64
		if _, err := cbor.Decode(value, &ttl); err != nil {
			return fmt.Errorf("ttl: %w: %s", ErrMalformedCbor, err)
		}
		b.TTL = &ttl
	case bodyKeyCertificates:
		inner, tagged := canonical.StripSetTag(value)
		items, err := canonical.SplitArray(inner)
		if err != nil {
			return fmt.Errorf("certificates: %w: %s", ErrMalformedCbor, err)
		}
		b.CertsSetTag = tagged
		for _, item := range items {
			cert, err := DecodeCertificate(item)
			if err != nil {
				return err
			}
			b.Certificates = append(b.Certificates, cert)
		}
	case bodyKeyWithdrawals:
		entries, err := canonical.SplitMap(value)
		if err != nil {
			return fmt.Errorf("withdrawals: %w: %s", ErrMalformedCbor, err)
		}
		for _, entry := range entries {
			var account []byte
			if _, err := cbor.Decode(entry.Key, &account); err != nil {
				return fmt.Errorf("withdrawal account: %w: %s", ErrMalformedCbor, err)
			}
			var amount uint64
			if _, err := cbor.Decode(entry.Value, &amount); err != nil {
				return fmt.Errorf("withdrawal amount: %w: %s", ErrMalformedCbor, err)
			}
			b.Withdrawals = append(b.Withdrawals, Withdrawal{
				Account: account,
				Amount:  amount,
			})
		}
	case bodyKeyUpdate:
		update := make([]byte, len(value))
		copy(update, value)
		b.Update = update
	case bodyKeyAuxDataHash:
		hash, err := decodeHash256(value)
		if err != nil {
			return err
		}
		b.AuxDataHash = hash
	case bodyKeyValidityStart:
		var start uint64
		if _, err := cbor.Decode(value, &start); err != nil {
			return fmt.Errorf("validity start: %w: %s", ErrMalformedCbor, err)
		}
		b.ValidityIntervalStart = &start
	case bodyKeyMint:
		mint, err := decodeMultiAsset(value)
		if err != nil {
			return err
		}
		b.Mint = mint
	case bodyKeyScriptDataHash:
		hash, err := decodeHash256(value)
		if err != nil {
			return err
		}
		b.ScriptDataHash = hash
	case bodyKeyCollateral:
		inputs, tagged, err := decodeInputSet(value)
		if err != nil {
			return err
		}
		b.Collateral = inputs
		b.CollateralSetTag = tagged
	case bodyKeyRequiredSigners:
		inner, tagged := canonical.StripSetTag(value)
		items, err := canonical.SplitArray(inner)
		if err != nil {
			return fmt.Errorf("required signers: %w: %s", ErrMalformedCbor, err)
		}
		b.RequiredSignersSetTag = tagged
		for _, item := range items {
			var hashBytes []byte
			if _, err := cbor.Decode(item, &hashBytes); err != nil {
				return fmt.Errorf("required signer: %w: %s", ErrMalformedCbor, err)
			}
			if len(hashBytes) != credentialHashSize {
				return fmt.Errorf(
					"required signer must be %d bytes, got %d: %w",
					credentialHashSize,
					len(hashBytes),
					&CodedError{Code: CodeInvalidBlake2bHashSize},
				)
			}
			b.RequiredSigners = append(b.RequiredSigners, lcommon.NewBlake2b224(hashBytes))
		}
	case bodyKeyNetworkId:
		var networkId uint8
		if _, err := cbor.Decode(value, &networkId); err != nil {
			return fmt.Errorf("network id: %w: %s", ErrMalformedCbor, err)
		}
		b.NetworkId = &networkId
	case bodyKeyCollateralReturn:
		var output TransactionOutput
		if err := output.UnmarshalCBOR(value); err != nil {
			return err
		}
		b.CollateralReturn = &output
	case bodyKeyTotalCollateral:
		var total uint64
		if _, err := cbor.Decode(value, &total); err != nil {
			return fmt.Errorf("total collateral: %w: %s", ErrMalformedCbor, err)
		}
		b.TotalCollateral = &total
	case bodyKeyReferenceInputs:
		inputs, tagged, err := decodeInputSet(value)
		if err != nil {
			return err
		}
		b.ReferenceInputs = inputs
		b.ReferenceInputsSetTag = tagged
	case bodyKeyVotingProcedures:
		var procs VotingProcedures
		if err := procs.UnmarshalCBOR(value); err != nil {
			return err
		}
		b.VotingProcedures = &procs
	case bodyKeyProposalProcedures:
		inner, tagged := canonical.StripSetTag(value)
		items, err := canonical.SplitArray(inner)
		if err != nil {
			return fmt.Errorf("proposal procedures: %w: %s", ErrMalformedCbor, err)
		}
		b.ProposalsSetTag = tagged
		for _, item := range items {
			var proposal ProposalProcedure
			if err := proposal.UnmarshalCBOR(item); err != nil {
				return err
			}
			b.ProposalProcedures = append(b.ProposalProcedures, proposal)
		}
	case bodyKeyTreasuryValue:
		var treasury uint64
		if _, err := cbor.Decode(value, &treasury); err != nil {
			return fmt.Errorf("treasury value: %w: %s", ErrMalformedCbor, err)
		}
		b.CurrentTreasuryValue = &treasury
	case bodyKeyDonation:
		var donation uint64
		if _, err := cbor.Decode(value, &donation); err != nil {
			return fmt.Errorf("donation: %w: %s", ErrMalformedCbor, err)
		}
		b.Donation = &donation
	default:
		return fmt.Errorf("unknown body map key %d: %w", key, ErrInvalidCborMapKey)
	}
	return nil
}

func decodeHash256(raw []byte) (*lcommon.Blake2b256, error) {
	var hashBytes []byte
	if _, err := cbor.Decode(raw, &hashBytes); err != nil {
		return nil, fmt.Errorf("hash: %w: %s", ErrMalformedCbor, err)
	}
	if len(hashBytes) != 32 {
		return nil, fmt.Errorf(
			"hash must be 32 bytes, got %d: %w",
			len(hashBytes),
			&CodedError{Code: CodeInvalidBlake2bHashSize},
		)
	}
	hash := lcommon.NewBlake2b256(hashBytes)
	return &hash, nil
}
