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

// Witness set map keys
const (
	witnessKeyVkey          = 0
	witnessKeyNativeScripts = 1
	witnessKeyBootstrap     = 2
	witnessKeyPlutusV1      = 3
	witnessKeyPlutusData    = 4
	witnessKeyRedeemers     = 5
	witnessKeyPlutusV2      = 6
	witnessKeyPlutusV3      = 7
)

// VkeyWitness is an Ed25519 verification key plus signature
type VkeyWitness struct {
	cbor.StructAsArray
	Vkey      []byte
	Signature []byte
}

// RedeemerTag identifies which part of the transaction a redeemer belongs to
type RedeemerTag uint8

const (
	RedeemerTagSpend     RedeemerTag = 0
	RedeemerTagMint      RedeemerTag = 1
	RedeemerTagCert      RedeemerTag = 2
	RedeemerTagReward    RedeemerTag = 3
	RedeemerTagVoting    RedeemerTag = 4
	RedeemerTagProposing RedeemerTag = 5
)

// Redeemer is a script argument plus execution budget
type Redeemer struct {
	Tag     RedeemerTag
	Index   uint32
	Data    cbor.RawMessage
	ExUnits lcommon.ExUnits
}

func encodeExUnits(units lcommon.ExUnits) []byte {
	return canonical.EncodeArray([][]byte{
		canonical.EncodeUint(units.Memory),
		canonical.EncodeUint(units.Steps),
	})
}

func decodeExUnits(raw []byte) (lcommon.ExUnits, error) {
	var parts []cbor.RawMessage
	if _, err := cbor.Decode(raw, &parts); err != nil {
		return lcommon.ExUnits{}, fmt.Errorf("ex units: %w: %s", ErrMalformedCbor, err)
	}
	if len(parts) != 2 {
		return lcommon.ExUnits{}, fmt.Errorf(
			"ex units must have 2 elements, got %d: %w",
			len(parts),
			ErrInvalidCborArraySize,
		)
	}
	var units lcommon.ExUnits
	if _, err := cbor.Decode(parts[0], &units.Memory); err != nil {
		return lcommon.ExUnits{}, fmt.Errorf("ex units memory: %w: %s", ErrMalformedCbor, err)
	}
	if _, err := cbor.Decode(parts[1], &units.Steps); err != nil {
		return lcommon.ExUnits{}, fmt.Errorf("ex units steps: %w: %s", ErrMalformedCbor, err)
	}
	return units, nil
}

// Redeemers holds a witness set's redeemer collection in either of its
// wire forms: the legacy flat list or the Conway keyed map
type Redeemers struct {
	Items   []Redeemer
	MapForm bool
	raw     []byte
}

// Invalidate drops the cached original bytes after a mutation
func (r *Redeemers) Invalidate() {
	r.raw = nil
}

// SetExUnits overwrites the budget of the redeemer with the given tag and
// index, reporting whether one matched
func (r *Redeemers) SetExUnits(tag RedeemerTag, index uint32, units lcommon.ExUnits) bool {
	for i := range r.Items {
		if r.Items[i].Tag == tag && r.Items[i].Index == index {
			r.Items[i].ExUnits = units
			r.Invalidate()
			return true
		}
	}
	return false
}

// MarshalCBOR encodes the redeemers in the form they were decoded from,
// preferring the cached original bytes
func (r Redeemers) MarshalCBOR() ([]byte, error) {
	if r.raw != nil {
		return r.raw, nil
	}
	if r.MapForm {
		pairs := make([]canonical.Pair, 0, len(r.Items))
		for _, item := range r.Items {
			if item.Data == nil {
				return nil, fmt.Errorf("redeemer has no data: %w", ErrInvalidArgument)
			}
			pairs = append(pairs, canonical.Pair{
				Key: canonical.EncodeArray([][]byte{
					canonical.EncodeUint(uint64(item.Tag)),
					canonical.EncodeUint(uint64(item.Index)),
				}),
				Value: canonical.EncodeArray([][]byte{
					item.Data,
					encodeExUnits(item.ExUnits),
				}),
			})
		}
		return canonical.EncodeMap(pairs), nil
	}
	items := make([][]byte, 0, len(r.Items))
	for _, item := range r.Items {
		if item.Data == nil {
			return nil, fmt.Errorf("redeemer has no data: %w", ErrInvalidArgument)
		}
		items = append(items, canonical.EncodeArray([][]byte{
			canonical.EncodeUint(uint64(item.Tag)),
			canonical.EncodeUint(uint64(item.Index)),
			item.Data,
			encodeExUnits(item.ExUnits),
		}))
	}
	return canonical.EncodeArray(items), nil
}

// UnmarshalCBOR accepts both redeemer forms and records which one was seen
func (r *Redeemers) UnmarshalCBOR(raw []byte) error {
	*r = Redeemers{}
	switch canonical.MajorType(raw) {
	case canonical.MajorArray:
		items, err := canonical.SplitArray(raw)
		if err != nil {
			return fmt.Errorf("redeemer list: %w: %s", ErrMalformedCbor, err)
		}
		for _, itemRaw := range items {
			item, err := decodeListRedeemer(itemRaw)
			if err != nil {
				return err
			}
			r.Items = append(r.Items, item)
		}
	case canonical.MajorMap:
		pairs, err := canonical.SplitMap(raw)
		if err != nil {
			return fmt.Errorf("redeemer map: %w: %s", ErrMalformedCbor, err)
		}
		for _, pair := range pairs {
			item, err := decodeMapRedeemer(pair)
			if err != nil {
				return err
			}
			r.Items = append(r.Items, item)
		}
		r.MapForm = true
	default:
		return fmt.Errorf("redeemers must be array or map: %w", ErrUnexpectedCborType)
	}
	rawCopy := make([]byte, len(raw))
	copy(rawCopy, raw)
	r.raw = rawCopy
	return nil
}

func decodeRedeemerTag(raw []byte) (RedeemerTag, error) {
	var tag uint64
	if _, err := cbor.Decode(raw, &tag); err != nil {
		return 0, fmt.Errorf("redeemer tag: %w: %s", ErrMalformedCbor, err)
	}
	if tag > uint64(RedeemerTagProposing) {
		return 0, fmt.Errorf("unknown redeemer tag %d: %w", tag, ErrInvalidCborValue)
	}
	return RedeemerTag(tag), nil
}

func decodeListRedeemer(raw []byte) (Redeemer, error) {
	parts, err := canonical.SplitArray(raw)
	if err != nil {
		return Redeemer{}, fmt.Errorf("redeemer: %w: %s", ErrMalformedCbor, err)
	}
	if len(parts) != 4 {
		return Redeemer{}, fmt.Errorf(
			"redeemer must have 4 elements, got %d: %w",
			len(parts),
			ErrInvalidCborArraySize,
		)
	}
	tag, err := decodeRedeemerTag(parts[0])
	if err != nil {
		return Redeemer{}, err
	}
	var index uint32
	if _, err := cbor.Decode(parts[1], &index); err != nil {
		return Redeemer{}, fmt.Errorf("redeemer index: %w: %s", ErrMalformedCbor, err)
	}
	units, err := decodeExUnits(parts[3])
	if err != nil {
		return Redeemer{}, err
	}
	return Redeemer{Tag: tag, Index: index, Data: parts[2], ExUnits: units}, nil
}

func decodeMapRedeemer(pair canonical.RawPair) (Redeemer, error) {
	keyParts, err := canonical.SplitArray(pair.Key)
	if err != nil {
		return Redeemer{}, fmt.Errorf("redeemer key: %w: %s", ErrMalformedCbor, err)
	}
	if len(keyParts) != 2 {
		return Redeemer{}, fmt.Errorf(
			"redeemer key must have 2 elements, got %d: %w",
			len(keyParts),
			ErrInvalidCborArraySize,
		)
	}
	tag, err := decodeRedeemerTag(keyParts[0])
	if err != nil {
		return Redeemer{}, err
	}
	var index uint32
	if _, err := cbor.Decode(keyParts[1], &index); err != nil {
		return Redeemer{}, fmt.Errorf("redeemer index: %w: %s", ErrMalformedCbor, err)
	}
	valueParts, err := canonical.SplitArray(pair.Value)
	if err != nil {
		return Redeemer{}, fmt.Errorf("redeemer value: %w: %s", ErrMalformedCbor, err)
	}
	if len(valueParts) != 2 {
		return Redeemer{}, fmt.Errorf(
			"redeemer value must have 2 elements, got %d: %w",
			len(valueParts),
			ErrInvalidCborArraySize,
		)
	}
	units, err := decodeExUnits(valueParts[1])
	if err != nil {
		return Redeemer{}, err
	}
	return Redeemer{Tag: tag, Index: index, Data: valueParts[0], ExUnits: units}, nil
}

// RawList is a list-typed witness field plus its decoded set framing
type RawList struct {
	Items  []cbor.RawMessage
	SetTag bool
}

func (s RawList) encode() []byte {
	items := make([][]byte, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, item)
	}
	return canonical.EncodeSet(items, s.SetTag)
}

func decodeSetList(raw []byte) (RawList, error) {
	inner, tagged := canonical.StripSetTag(raw)
	items, err := canonical.SplitArray(inner)
	if err != nil {
		return RawList{}, fmt.Errorf("witness list: %w: %s", ErrMalformedCbor, err)
	}
	list := RawList{SetTag: tagged}
	for _, item := range items {
		list.Items = append(list.Items, cbor.RawMessage(item))
	}
	return list, nil
}

// WitnessSet is a transaction witness set. Script and datum collections
// are carried in their original encoded form; the engine only sizes them.
type WitnessSet struct {
	cbor.DecodeStoreCbor
	Vkey            []VkeyWitness
	VkeySetTag      bool
	NativeScripts   RawList
	Bootstrap       RawList
	PlutusV1Scripts RawList
	PlutusData      RawList
	Redeemers       Redeemers
	PlutusV2Scripts RawList
	PlutusV3Scripts RawList
	hasRedeemers    bool
}

// HasRedeemers reports whether the witness set carries any redeemer
func (w *WitnessSet) HasRedeemers() bool {
	return len(w.Redeemers.Items) > 0
}

// Invalidate drops the cached original bytes after a mutation
func (w *WitnessSet) Invalidate() {
	w.SetCbor(nil)
}

// SetRedeemers replaces the redeemer collection and invalidates caches
func (w *WitnessSet) SetRedeemers(redeemers Redeemers) {
	w.Redeemers = redeemers
	w.hasRedeemers = len(redeemers.Items) > 0
	w.Invalidate()
}

// MarshalCBOR encodes the witness set, preferring the cached original bytes
func (w WitnessSet) MarshalCBOR() ([]byte, error) {
	if cached := w.Cbor(); len(cached) > 0 {
		return cached, nil
	}
	var pairs []canonical.Pair
	if len(w.Vkey) > 0 {
		items := make([][]byte, 0, len(w.Vkey))
		for _, witness := range w.Vkey {
			items = append(items, canonical.EncodeArray([][]byte{
				canonical.EncodeBytes(witness.Vkey),
				canonical.EncodeBytes(witness.Signature),
			}))
		}
		pairs = append(pairs, canonical.Pair{
			Key:   canonical.EncodeUint(witnessKeyVkey),
			Value: canonical.EncodeSet(items, w.VkeySetTag),
		})
	}
	if len(w.NativeScripts.Items) > 0 {
		pairs = append(pairs, canonical.Pair{
			Key:   canonical.EncodeUint(witnessKeyNativeScripts),
			Value: w.NativeScripts.encode(),
		})
	}
	if len(w.Bootstrap.Items) > 0 {
		pairs = append(pairs, canonical.Pair{
			Key:   canonical.EncodeUint(witnessKeyBootstrap),
			Value: w.Bootstrap.encode(),
		})
	}
	if len(w.PlutusV1Scripts.Items) > 0 {
		pairs = append(pairs, canonical.Pair{
			Key:   canonical.EncodeUint(witnessKeyPlutusV1),
			Value: w.PlutusV1Scripts.encode(),
		})
	}
	if len(w.PlutusData.Items) > 0 {
		pairs = append(pairs, canonical.Pair{
			Key:   canonical.EncodeUint(witnessKeyPlutusData),
			Value: w.PlutusData.encode(),
		})
	}
	if w.hasRedeemers || len(w.Redeemers.Items) > 0 {
		encoded, err := w.Redeemers.MarshalCBOR()
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, canonical.Pair{
			Key:   canonical.EncodeUint(witnessKeyRedeemers),
			Value: encoded,
		})
	}
	if len(w.PlutusV2Scripts.Items) > 0 {
		pairs = append(pairs, canonical.Pair{
			Key:   canonical.EncodeUint(witnessKeyPlutusV2),
			Value: w.PlutusV2Scripts.encode(),
		})
	}
	if len(w.PlutusV3Scripts.Items) > 0 {
		pairs = append(pairs, canonical.Pair{
			Key:   canonical.EncodeUint(witnessKeyPlutusV3),
			Value: w.PlutusV3Scripts.encode(),
		})
	}
	return canonical.EncodeMap(pairs), nil
}

// UnmarshalCBOR reads a witness set map
func (w *WitnessSet) UnmarshalCBOR(raw []byte) error {
	*w = WitnessSet{}
	var fields map[uint64]cbor.RawMessage
	if _, err := cbor.Decode(raw, &fields); err != nil {
		return fmt.Errorf("witness set: %w: %s", ErrMalformedCbor, err)
	}
	for key, value := range fields {
		switch key {
		case witnessKeyVkey:
			inner, tagged := canonical.StripSetTag(value)
			items, err := canonical.SplitArray(inner)
			if err != nil {
				return fmt.Errorf("vkey witnesses: %w: %s", ErrMalformedCbor, err)
			}
			w.VkeySetTag = tagged
			for _, itemRaw := range items {
				var witness VkeyWitness
				if _, err := cbor.Decode(itemRaw, &witness); err != nil {
					return fmt.Errorf("vkey witness: %w: %s", ErrMalformedCbor, err)
				}
				w.Vkey = append(w.Vkey, witness)
			}
		case witnessKeyNativeScripts:
			list, err := decodeSetList(value)
			if err != nil {
				return err
			}
			w.NativeScripts = list
		case witnessKeyBootstrap:
			list, err := decodeSetList(value)
			if err != nil {
				return err
			}
			w.Bootstrap = list
		case witnessKeyPlutusV1:
			list, err := decodeSetList(value)
			if err != nil {
				return err
			}
			w.PlutusV1Scripts = list
		case witnessKeyPlutusData:
			list, err := decodeSetList(value)
			if err != nil {
				return err
			}
			w.PlutusData = list
		case witnessKeyRedeemers:
			if err := w.Redeemers.UnmarshalCBOR(value); err != nil {
				return err
			}
			w.hasRedeemers = true
		case witnessKeyPlutusV2:
			list, err := decodeSetList(value)
			if err != nil {
				return err
			}
			w.PlutusV2Scripts = list
		case witnessKeyPlutusV3:
			list, err := decodeSetList(value)
			if err != nil {
				return err
			}
			w.PlutusV3Scripts = list
		default:
			return fmt.Errorf("unknown witness set key %d: %w", key, ErrInvalidCborMapKey)
		}
	}
	w.SetCbor(raw)
	return nil
}
