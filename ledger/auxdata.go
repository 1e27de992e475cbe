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

	"github.com/blinklabs-io/gouroboros/cbor"
	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/blinklabs-io/txcraft/internal/canonical"
)

// AuxiliaryDataShape identifies which of the three historical encodings an
// auxiliary data block uses
type AuxiliaryDataShape int

const (
	// AuxShapeMetadataOnly is the Shelley bare metadata map
	AuxShapeMetadataOnly AuxiliaryDataShape = iota
	// AuxShapeShelleyMA is the two-element [metadata, native-scripts] array
	AuxShapeShelleyMA
	// AuxShapeAlonzo is the post-Alonzo tag-259 map with keys 0-4
	AuxShapeAlonzo
)

// Post-Alonzo auxiliary data map keys
const (
	auxKeyMetadata      = 0
	auxKeyNativeScripts = 1
	auxKeyPlutusV1      = 2
	auxKeyPlutusV2      = 3
	auxKeyPlutusV3      = 4
)

// alonzoAuxTagPrefix is the encoded head of tag 259
var alonzoAuxTagPrefix = []byte{0xd9, 0x01, 0x03}

// AuxiliaryData is transaction metadata plus optional script lists, in any
// of its three historical shapes. Contents are carried in their original
// encoded form.
type AuxiliaryData struct {
	cbor.DecodeStoreCbor
	Shape           AuxiliaryDataShape
	Metadata        cbor.RawMessage
	NativeScripts   []cbor.RawMessage
	PlutusV1Scripts []cbor.RawMessage
	PlutusV2Scripts []cbor.RawMessage
	PlutusV3Scripts []cbor.RawMessage
}

// Invalidate drops the cached original bytes after a mutation
func (a *AuxiliaryData) Invalidate() {
	a.SetCbor(nil)
}

func encodeRawList(items []cbor.RawMessage) []byte {
	encoded := make([][]byte, 0, len(items))
	for _, item := range items {
		encoded = append(encoded, item)
	}
	return canonical.EncodeArray(encoded)
}

// MarshalCBOR encodes the auxiliary data in its recorded shape, preferring
// the cached original bytes
func (a AuxiliaryData) MarshalCBOR() ([]byte, error) {
	if cached := a.Cbor(); len(cached) > 0 {
		return cached, nil
	}
	switch a.Shape {
	case AuxShapeMetadataOnly:
		if a.Metadata == nil {
			return canonical.EncodeMap(nil), nil
		}
		return a.Metadata, nil
	case AuxShapeShelleyMA:
		metadata := []byte(a.Metadata)
		if metadata == nil {
			metadata = canonical.EncodeMap(nil)
		}
		return canonical.EncodeArray([][]byte{
			metadata,
			encodeRawList(a.NativeScripts),
		}), nil
	case AuxShapeAlonzo:
		var pairs []canonical.Pair
		if a.Metadata != nil {
			pairs = append(pairs, canonical.Pair{
				Key:   canonical.EncodeUint(auxKeyMetadata),
				Value: a.Metadata,
			})
		}
		if len(a.NativeScripts) > 0 {
			pairs = append(pairs, canonical.Pair{
				Key:   canonical.EncodeUint(auxKeyNativeScripts),
				Value: encodeRawList(a.NativeScripts),
			})
		}
		if len(a.PlutusV1Scripts) > 0 {
			pairs = append(pairs, canonical.Pair{
				Key:   canonical.EncodeUint(auxKeyPlutusV1),
				Value: encodeRawList(a.PlutusV1Scripts),
			})
		}
		if len(a.PlutusV2Scripts) > 0 {
			pairs = append(pairs, canonical.Pair{
				Key:   canonical.EncodeUint(auxKeyPlutusV2),
				Value: encodeRawList(a.PlutusV2Scripts),
			})
		}
		if len(a.PlutusV3Scripts) > 0 {
			pairs = append(pairs, canonical.Pair{
				Key:   canonical.EncodeUint(auxKeyPlutusV3),
				Value: encodeRawList(a.PlutusV3Scripts),
			})
		}
		result := append([]byte{}, alonzoAuxTagPrefix...)
		return append(result, canonical.EncodeMap(pairs)...), nil
	default:
		return nil, fmt.Errorf("unknown auxiliary data shape %d: %w", a.Shape, ErrInvalidArgument)
	}
}

// UnmarshalCBOR accepts all three historical auxiliary data shapes
func (a *AuxiliaryData) UnmarshalCBOR(raw []byte) error {
	*a = AuxiliaryData{}
	switch {
	case bytes.HasPrefix(raw, alonzoAuxTagPrefix):
		if err := a.decodeAlonzo(raw[len(alonzoAuxTagPrefix):]); err != nil {
			return err
		}
		a.Shape = AuxShapeAlonzo
	case canonical.MajorType(raw) == canonical.MajorArray:
		items, err := canonical.SplitArray(raw)
		if err != nil {
			return fmt.Errorf("auxiliary data: %w: %s", ErrMalformedCbor, err)
		}
		if len(items) != 2 {
			return fmt.Errorf(
				"auxiliary data array must have 2 elements, got %d: %w",
				len(items),
				ErrInvalidCborArraySize,
			)
		}
		a.Metadata = items[0]
		scripts, err := canonical.SplitArray(items[1])
		if err != nil {
			return fmt.Errorf("auxiliary data scripts: %w: %s", ErrMalformedCbor, err)
		}
		for _, script := range scripts {
			a.NativeScripts = append(a.NativeScripts, cbor.RawMessage(script))
		}
		a.Shape = AuxShapeShelleyMA
	case canonical.MajorType(raw) == canonical.MajorMap:
		// validate it parses as a map before storing
		if _, err := canonical.SplitMap(raw); err != nil {
			return fmt.Errorf("auxiliary data metadata: %w: %s", ErrMalformedCbor, err)
		}
		metadata := make([]byte, len(raw))
		copy(metadata, raw)
		a.Metadata = metadata
		a.Shape = AuxShapeMetadataOnly
	default:
		return fmt.Errorf("auxiliary data must be map, array, or tag-259: %w", ErrUnexpectedCborType)
	}
	a.SetCbor(raw)
	return nil
}

func (a *AuxiliaryData) decodeAlonzo(raw []byte) error {
	pairs, err := canonical.SplitMap(raw)
	if err != nil {
		return fmt.Errorf("auxiliary data map: %w: %s", ErrMalformedCbor, err)
	}
	for _, pair := range pairs {
		var key uint64
		if _, err := cbor.Decode(pair.Key, &key); err != nil {
			return fmt.Errorf("auxiliary data key: %w: %s", ErrMalformedCbor, err)
		}
		switch key {
		case auxKeyMetadata:
			a.Metadata = pair.Value
		case auxKeyNativeScripts, auxKeyPlutusV1, auxKeyPlutusV2, auxKeyPlutusV3:
			items, err := canonical.SplitArray(pair.Value)
			if err != nil {
				return fmt.Errorf("auxiliary data scripts: %w: %s", ErrMalformedCbor, err)
			}
			list := make([]cbor.RawMessage, 0, len(items))
			for _, item := range items {
				list = append(list, cbor.RawMessage(item))
			}
			switch key {
			case auxKeyNativeScripts:
				a.NativeScripts = list
			case auxKeyPlutusV1:
				a.PlutusV1Scripts = list
			case auxKeyPlutusV2:
				a.PlutusV2Scripts = list
			case auxKeyPlutusV3:
				a.PlutusV3Scripts = list
			}
		default:
			return fmt.Errorf("unknown auxiliary data key %d: %w", key, ErrInvalidCborMapKey)
		}
	}
	return nil
}

// Hash computes the auxiliary data hash committed to by the transaction
// body
func (a *AuxiliaryData) Hash() (lcommon.Blake2b256, error) {
	encoded, err := a.MarshalCBOR()
	if err != nil {
		return lcommon.Blake2b256{}, err
	}
	return lcommon.Blake2b256Hash(encoded), nil
}
