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

	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"golang.org/x/crypto/blake2b"
)

// AddressType classifies the eight Shelley address header types plus Byron
// and the two reward forms. Values match the header high nibble.
type AddressType uint8

const (
	AddressTypeBasePaymentKeyStakeKey       AddressType = 0b0000
	AddressTypeBasePaymentScriptStakeKey    AddressType = 0b0001
	AddressTypeBasePaymentKeyStakeScript    AddressType = 0b0010
	AddressTypeBasePaymentScriptStakeScript AddressType = 0b0011
	AddressTypePointerKey                   AddressType = 0b0100
	AddressTypePointerScript                AddressType = 0b0101
	AddressTypeEnterpriseKey                AddressType = 0b0110
	AddressTypeEnterpriseScript             AddressType = 0b0111
	AddressTypeByron                        AddressType = 0b1000
	AddressTypeRewardKey                    AddressType = 0b1110
	AddressTypeRewardScript                 AddressType = 0b1111
)

const credentialHashSize = 28

// ClassifyAddressBytes returns the address type for a raw address
func ClassifyAddressBytes(raw []byte) (AddressType, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("empty address: %w", ErrInvalidAddressType)
	}
	addrType := AddressType(raw[0] >> 4)
	switch addrType {
	case AddressTypeBasePaymentKeyStakeKey,
		AddressTypeBasePaymentScriptStakeKey,
		AddressTypeBasePaymentKeyStakeScript,
		AddressTypeBasePaymentScriptStakeScript,
		AddressTypePointerKey,
		AddressTypePointerScript,
		AddressTypeEnterpriseKey,
		AddressTypeEnterpriseScript,
		AddressTypeByron,
		AddressTypeRewardKey,
		AddressTypeRewardScript:
		return addrType, nil
	default:
		return 0, fmt.Errorf("unknown address header %#02x: %w", raw[0], ErrInvalidAddressType)
	}
}

// PaymentKeyHashFromAddress extracts the payment key hash from an address
// whose payment credential is a verification key. It returns false for
// Byron, reward, and script-paying addresses: those contribute no key
// witness via their payment part.
func PaymentKeyHashFromAddress(addr lcommon.Address) (lcommon.Blake2b224, bool) {
	raw, err := addr.Bytes()
	if err != nil {
		return lcommon.Blake2b224{}, false
	}
	return paymentKeyHashFromBytes(raw)
}

func paymentKeyHashFromBytes(raw []byte) (lcommon.Blake2b224, bool) {
	addrType, err := ClassifyAddressBytes(raw)
	if err != nil {
		return lcommon.Blake2b224{}, false
	}
	switch addrType {
	case AddressTypeBasePaymentKeyStakeKey,
		AddressTypeBasePaymentKeyStakeScript,
		AddressTypePointerKey,
		AddressTypeEnterpriseKey:
		if len(raw) < 1+credentialHashSize {
			return lcommon.Blake2b224{}, false
		}
		return lcommon.NewBlake2b224(raw[1 : 1+credentialHashSize]), true
	default:
		return lcommon.Blake2b224{}, false
	}
}

// RewardAccount is the raw byte form of a reward (stake) address
type RewardAccount []byte

// KeyHash returns the credential hash when the reward account is backed by
// a verification key; script-backed reward accounts return false
func (r RewardAccount) KeyHash() (lcommon.Blake2b224, bool) {
	addrType, err := ClassifyAddressBytes(r)
	if err != nil || addrType != AddressTypeRewardKey {
		return lcommon.Blake2b224{}, false
	}
	if len(r) < 1+credentialHashSize {
		return lcommon.Blake2b224{}, false
	}
	return lcommon.NewBlake2b224(r[1 : 1+credentialHashSize]), true
}

// NewAddressFromBytes wraps a raw address in the common Address type
func NewAddressFromBytes(raw []byte) (lcommon.Address, error) {
	addr, err := lcommon.NewAddressFromBytes(raw)
	if err != nil {
		return lcommon.Address{}, fmt.Errorf("address decode: %w: %s", ErrInvalidAddressType, err)
	}
	return addr, nil
}

// BuildAddressBytes assembles a raw Shelley address from its header type,
// network ID, and credential hashes. The stake credential may be nil for
// enterprise and reward forms.
func BuildAddressBytes(
	addrType AddressType,
	networkId uint8,
	paymentCred []byte,
	stakeCred []byte,
) ([]byte, error) {
	if len(paymentCred) != credentialHashSize {
		return nil, fmt.Errorf(
			"payment credential must be %d bytes, got %d: %w",
			credentialHashSize,
			len(paymentCred),
			ErrInvalidArgument,
		)
	}
	raw := make([]byte, 0, 1+2*credentialHashSize)
	raw = append(raw, byte(addrType)<<4|(networkId&0x0f))
	raw = append(raw, paymentCred...)
	if stakeCred != nil {
		if len(stakeCred) != credentialHashSize {
			return nil, fmt.Errorf(
				"stake credential must be %d bytes, got %d: %w",
				credentialHashSize,
				len(stakeCred),
				ErrInvalidArgument,
			)
		}
		raw = append(raw, stakeCred...)
	}
	return raw, nil
}

// KeyHash computes the 28-byte Blake2b digest of a verification key, the
// hash form the ledger uses for payment and stake credentials
func KeyHash(vkey []byte) (lcommon.Blake2b224, error) {
	hasher, err := blake2b.New(credentialHashSize, nil)
	if err != nil {
		return lcommon.Blake2b224{}, err
	}
	if _, err := hasher.Write(vkey); err != nil {
		return lcommon.Blake2b224{}, err
	}
	return lcommon.NewBlake2b224(hasher.Sum(nil)), nil
}
