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

// CredentialKind distinguishes key-hash and script-hash credentials
type CredentialKind uint8

const (
	CredentialKeyHash    CredentialKind = 0
	CredentialScriptHash CredentialKind = 1
)

// Credential identifies a key or script authorizing an action
type Credential struct {
	Kind CredentialKind
	Hash lcommon.Blake2b224
}

// NewKeyCredential creates a key-hash credential
func NewKeyCredential(hash []byte) Credential {
	return Credential{Kind: CredentialKeyHash, Hash: lcommon.NewBlake2b224(hash)}
}

// NewScriptCredential creates a script-hash credential
func NewScriptCredential(hash []byte) Credential {
	return Credential{Kind: CredentialScriptHash, Hash: lcommon.NewBlake2b224(hash)}
}

func (c Credential) encode() []byte {
	return canonical.EncodeArray([][]byte{
		canonical.EncodeUint(uint64(c.Kind)),
		canonical.EncodeBytes(c.Hash.Bytes()),
	})
}

func decodeCredential(raw []byte) (Credential, error) {
	var parts []cbor.RawMessage
	if _, err := cbor.Decode(raw, &parts); err != nil {
		return Credential{}, fmt.Errorf("credential: %w: %s", ErrMalformedCbor, err)
	}
	if len(parts) != 2 {
		return Credential{}, fmt.Errorf(
			"credential must have 2 elements, got %d: %w",
			len(parts),
			ErrInvalidCborArraySize,
		)
	}
	var kind uint64
	if _, err := cbor.Decode(parts[0], &kind); err != nil {
		return Credential{}, fmt.Errorf("credential kind: %w: %s", ErrMalformedCbor, err)
	}
	if kind > 1 {
		return Credential{}, fmt.Errorf(
			"unknown credential kind %d: %w",
			kind,
			&CodedError{Code: CodeInvalidCredentialType},
		)
	}
	var hashBytes []byte
	if _, err := cbor.Decode(parts[1], &hashBytes); err != nil {
		return Credential{}, fmt.Errorf("credential hash: %w: %s", ErrMalformedCbor, err)
	}
	if len(hashBytes) != credentialHashSize {
		return Credential{}, fmt.Errorf(
			"credential hash must be %d bytes, got %d: %w",
			credentialHashSize,
			len(hashBytes),
			&CodedError{Code: CodeInvalidBlake2bHashSize},
		)
	}
	return Credential{
		Kind: CredentialKind(kind),
		Hash: lcommon.NewBlake2b224(hashBytes),
	}, nil
}

// DRepKind distinguishes the four DRep delegation targets
type DRepKind uint8

const (
	DRepKeyHash            DRepKind = 0
	DRepScriptHash         DRepKind = 1
	DRepAlwaysAbstain      DRepKind = 2
	DRepAlwaysNoConfidence DRepKind = 3
)

// DRep is a delegated-representative target. Hash is meaningful only for
// the key-hash and script-hash kinds.
type DRep struct {
	Kind DRepKind
	Hash lcommon.Blake2b224
}

func (d DRep) encode() []byte {
	items := [][]byte{canonical.EncodeUint(uint64(d.Kind))}
	if d.Kind == DRepKeyHash || d.Kind == DRepScriptHash {
		items = append(items, canonical.EncodeBytes(d.Hash.Bytes()))
	}
	return canonical.EncodeArray(items)
}

func decodeDRep(raw []byte) (DRep, error) {
	var parts []cbor.RawMessage
	if _, err := cbor.Decode(raw, &parts); err != nil {
		return DRep{}, fmt.Errorf("drep: %w: %s", ErrMalformedCbor, err)
	}
	if len(parts) == 0 {
		return DRep{}, fmt.Errorf("empty drep: %w", ErrInvalidCborArraySize)
	}
	var kind uint64
	if _, err := cbor.Decode(parts[0], &kind); err != nil {
		return DRep{}, fmt.Errorf("drep kind: %w: %s", ErrMalformedCbor, err)
	}
	drep := DRep{Kind: DRepKind(kind)}
	switch DRepKind(kind) {
	case DRepKeyHash, DRepScriptHash:
		if len(parts) != 2 {
			return DRep{}, fmt.Errorf(
				"hash drep must have 2 elements, got %d: %w",
				len(parts),
				ErrInvalidCborArraySize,
			)
		}
		var hashBytes []byte
		if _, err := cbor.Decode(parts[1], &hashBytes); err != nil {
			return DRep{}, fmt.Errorf("drep hash: %w: %s", ErrMalformedCbor, err)
		}
		drep.Hash = lcommon.NewBlake2b224(hashBytes)
	case DRepAlwaysAbstain, DRepAlwaysNoConfidence:
		if len(parts) != 1 {
			return DRep{}, fmt.Errorf(
				"constant drep must have 1 element, got %d: %w",
				len(parts),
				ErrInvalidCborArraySize,
			)
		}
	default:
		return DRep{}, fmt.Errorf("unknown drep kind %d: %w", kind, ErrInvalidCborValue)
	}
	return drep, nil
}

// maxAnchorUrlLen bounds anchor URLs per the ledger rules
const maxAnchorUrlLen = 128

// Anchor points to off-chain metadata for governance actions
type Anchor struct {
	Url      string
	DataHash lcommon.Blake2b256
}

func (a Anchor) encode() []byte {
	return canonical.EncodeArray([][]byte{
		canonical.EncodeText(a.Url),
		canonical.EncodeBytes(a.DataHash.Bytes()),
	})
}

func decodeAnchor(raw []byte) (*Anchor, error) {
	if len(raw) > 0 && raw[0] == 0xf6 {
		return nil, nil
	}
	var parts []cbor.RawMessage
	if _, err := cbor.Decode(raw, &parts); err != nil {
		return nil, fmt.Errorf("anchor: %w: %s", ErrMalformedCbor, err)
	}
	if len(parts) != 2 {
		return nil, fmt.Errorf(
			"anchor must have 2 elements, got %d: %w",
			len(parts),
			ErrInvalidCborArraySize,
		)
	}
	var url string
	if _, err := cbor.Decode(parts[0], &url); err != nil {
		return nil, fmt.Errorf("anchor url: %w: %s", ErrMalformedCbor, err)
	}
	if len(url) > maxAnchorUrlLen {
		return nil, fmt.Errorf(
			"anchor url exceeds %d bytes: %w",
			maxAnchorUrlLen,
			ErrInvalidCborValue,
		)
	}
	var hashBytes []byte
	if _, err := cbor.Decode(parts[1], &hashBytes); err != nil {
		return nil, fmt.Errorf("anchor hash: %w: %s", ErrMalformedCbor, err)
	}
	if len(hashBytes) != 32 {
		return nil, fmt.Errorf(
			"anchor hash must be 32 bytes, got %d: %w",
			len(hashBytes),
			&CodedError{Code: CodeInvalidBlake2bHashSize},
		)
	}
	return &Anchor{Url: url, DataHash: lcommon.NewBlake2b256(hashBytes)}, nil
}

func encodeOptionalAnchor(a *Anchor) []byte {
	if a == nil {
		return canonical.Null()
	}
	return a.encode()
}

// CertificateKind enumerates the certificate registry keys
type CertificateKind uint

const (
	CertStakeRegistration               CertificateKind = 0
	CertStakeDeregistration             CertificateKind = 1
	CertStakeDelegation                 CertificateKind = 2
	CertPoolRegistration                CertificateKind = 3
	CertPoolRetirement                  CertificateKind = 4
	CertGenesisKeyDelegation            CertificateKind = 5
	CertMoveInstantaneousRewards        CertificateKind = 6
	CertRegistration                    CertificateKind = 7
	CertUnregistration                  CertificateKind = 8
	CertVoteDelegation                  CertificateKind = 9
	CertStakeVoteDelegation             CertificateKind = 10
	CertStakeRegistrationDelegation     CertificateKind = 11
	CertVoteRegistrationDelegation      CertificateKind = 12
	CertStakeVoteRegistrationDelegation CertificateKind = 13
	CertAuthCommitteeHot                CertificateKind = 14
	CertResignCommitteeCold             CertificateKind = 15
	CertRegisterDRep                    CertificateKind = 16
	CertUnregisterDRep                  CertificateKind = 17
	CertUpdateDRep                      CertificateKind = 18
)

// Certificate is one of the nineteen certificate constructors
type Certificate interface {
	Kind() CertificateKind
	MarshalCBOR() ([]byte, error)
}

// StakeRegistrationCert registers a stake credential (legacy form, deposit
// implied by protocol parameters)
type StakeRegistrationCert struct {
	Credential Credential
	raw        []byte
}

// StakeDeregistrationCert deregisters a stake credential (legacy form)
type StakeDeregistrationCert struct {
	Credential Credential
	raw        []byte
}

// StakeDelegationCert delegates a stake credential to a pool
type StakeDelegationCert struct {
	Credential Credential
	PoolKey    lcommon.Blake2b224
	raw        []byte
}

// PoolRegistrationCert registers a stake pool. Relays and margin are kept
// in their original encoded form.
type PoolRegistrationCert struct {
	Operator      lcommon.Blake2b224
	VrfKeyHash    lcommon.Blake2b256
	Pledge        uint64
	Cost          uint64
	Margin        cbor.RawMessage
	RewardAccount RewardAccount
	Owners        []lcommon.Blake2b224
	OwnersSetTag  bool
	Relays        []cbor.RawMessage
	Metadata      cbor.RawMessage // null or [url, hash]
	raw           []byte
}

// PoolRetirementCert schedules a pool retirement
type PoolRetirementCert struct {
	PoolKey lcommon.Blake2b224
	Epoch   uint64
	raw     []byte
}

// GenesisKeyDelegationCert is the legacy genesis delegation form; it is
// carried opaquely and contributes no required signer
type GenesisKeyDelegationCert struct {
	Payload []cbor.RawMessage
	raw     []byte
}

// MoveInstantaneousRewardsCert is the legacy MIR form, carried opaquely
type MoveInstantaneousRewardsCert struct {
	Payload []cbor.RawMessage
	raw     []byte
}

// RegistrationCert registers a stake credential with an explicit deposit
type RegistrationCert struct {
	Credential Credential
	Deposit    uint64
	raw        []byte
}

// UnregistrationCert deregisters a stake credential with an explicit refund
type UnregistrationCert struct {
	Credential Credential
	Deposit    uint64
	raw        []byte
}

// VoteDelegationCert delegates voting power to a DRep
type VoteDelegationCert struct {
	Credential Credential
	DRep       DRep
	raw        []byte
}

// StakeVoteDelegationCert delegates both stake and voting power
type StakeVoteDelegationCert struct {
	Credential Credential
	PoolKey    lcommon.Blake2b224
	DRep       DRep
	raw        []byte
}

// StakeRegistrationDelegationCert registers and delegates stake
type StakeRegistrationDelegationCert struct {
	Credential Credential
	PoolKey    lcommon.Blake2b224
	Deposit    uint64
	raw        []byte
}

// VoteRegistrationDelegationCert registers stake and delegates voting power
type VoteRegistrationDelegationCert struct {
	Credential Credential
	DRep       DRep
	Deposit    uint64
	raw        []byte
}

// StakeVoteRegistrationDelegationCert registers stake and delegates both
// stake and voting power
type StakeVoteRegistrationDelegationCert struct {
	Credential Credential
	PoolKey    lcommon.Blake2b224
	DRep       DRep
	Deposit    uint64
	raw        []byte
}

// AuthCommitteeHotCert authorizes a committee hot credential
type AuthCommitteeHotCert struct {
	ColdCredential Credential
	HotCredential  Credential
	raw            []byte
}

// ResignCommitteeColdCert resigns a committee cold credential
type ResignCommitteeColdCert struct {
	ColdCredential Credential
	Anchor         *Anchor
	raw            []byte
}

// RegisterDRepCert registers a delegated representative
type RegisterDRepCert struct {
	Credential Credential
	Deposit    uint64
	Anchor     *Anchor
	raw        []byte
}

// UnregisterDRepCert unregisters a delegated representative
type UnregisterDRepCert struct {
	Credential Credential
	Deposit    uint64
	raw        []byte
}

// UpdateDRepCert updates a delegated representative's anchor
type UpdateDRepCert struct {
	Credential Credential
	Anchor     *Anchor
	raw        []byte
}

func (c *StakeRegistrationCert) Kind() CertificateKind   { return CertStakeRegistration }
func (c *StakeDeregistrationCert) Kind() CertificateKind { return CertStakeDeregistration }
func (c *StakeDelegationCert) Kind() CertificateKind     { return CertStakeDelegation }
func (c *PoolRegistrationCert) Kind() CertificateKind    { return CertPoolRegistration }
func (c *PoolRetirementCert) Kind() CertificateKind      { return CertPoolRetirement }
func (c *GenesisKeyDelegationCert) Kind() CertificateKind {
	return CertGenesisKeyDelegation
}
func (c *MoveInstantaneousRewardsCert) Kind() CertificateKind {
	return CertMoveInstantaneousRewards
}
func (c *RegistrationCert) Kind() CertificateKind       { return CertRegistration }
func (c *UnregistrationCert) Kind() CertificateKind     { return CertUnregistration }
func (c *VoteDelegationCert) Kind() CertificateKind     { return CertVoteDelegation }
func (c *StakeVoteDelegationCert) Kind() CertificateKind {
	return CertStakeVoteDelegation
}
func (c *StakeRegistrationDelegationCert) Kind() CertificateKind {
	return CertStakeRegistrationDelegation
}
func (c *VoteRegistrationDelegationCert) Kind() CertificateKind {
	return CertVoteRegistrationDelegation
}
func (c *StakeVoteRegistrationDelegationCert) Kind() CertificateKind {
	return CertStakeVoteRegistrationDelegation
}
func (c *AuthCommitteeHotCert) Kind() CertificateKind    { return CertAuthCommitteeHot }
func (c *ResignCommitteeColdCert) Kind() CertificateKind { return CertResignCommitteeCold }
func (c *RegisterDRepCert) Kind() CertificateKind        { return CertRegisterDRep }
func (c *UnregisterDRepCert) Kind() CertificateKind      { return CertUnregisterDRep }
func (c *UpdateDRepCert) Kind() CertificateKind          { return CertUpdateDRep }

func encodeCert(kind CertificateKind, raw []byte, fields ...[]byte) ([]byte, error) {
	if raw != nil {
		return raw, nil
	}
	items := make([][]byte, 0, len(fields)+1)
	items = append(items, canonical.EncodeUint(uint64(kind)))
	items = append(items, fields...)
	return canonical.EncodeArray(items), nil
}

func (c *StakeRegistrationCert) MarshalCBOR() ([]byte, error) {
	return encodeCert(c.Kind(), c.raw, c.Credential.encode())
}

func (c *StakeDeregistrationCert) MarshalCBOR() ([]byte, error) {
	return encodeCert(c.Kind(), c.raw, c.Credential.encode())
}

func (c *StakeDelegationCert) MarshalCBOR() ([]byte, error) {
	return encodeCert(c.Kind(), c.raw,
		c.Credential.encode(),
		canonical.EncodeBytes(c.PoolKey.Bytes()),
	)
}

func (c *PoolRegistrationCert) MarshalCBOR() ([]byte, error) {
	owners := make([][]byte, 0, len(c.Owners))
	for _, owner := range c.Owners {
		owners = append(owners, canonical.EncodeBytes(owner.Bytes()))
	}
	relays := make([][]byte, 0, len(c.Relays))
	for _, relay := range c.Relays {
		relays = append(relays, relay)
	}
	metadata := []byte(c.Metadata)
	if metadata == nil {
		metadata = canonical.Null()
	}
	margin := []byte(c.Margin)
	if margin == nil {
		return nil, fmt.Errorf("pool margin is required: %w", ErrInvalidArgument)
	}
	return encodeCert(c.Kind(), c.raw,
		canonical.EncodeBytes(c.Operator.Bytes()),
		canonical.EncodeBytes(c.VrfKeyHash.Bytes()),
		canonical.EncodeUint(c.Pledge),
		canonical.EncodeUint(c.Cost),
		margin,
		canonical.EncodeBytes(c.RewardAccount),
		canonical.EncodeSet(owners, c.OwnersSetTag),
		canonical.EncodeArray(relays),
		metadata,
	)
}

func (c *PoolRetirementCert) MarshalCBOR() ([]byte, error) {
	return encodeCert(c.Kind(), c.raw,
		canonical.EncodeBytes(c.PoolKey.Bytes()),
		canonical.EncodeUint(c.Epoch),
	)
}

func (c *GenesisKeyDelegationCert) MarshalCBOR() ([]byte, error) {
	fields := make([][]byte, 0, len(c.Payload))
	for _, item := range c.Payload {
		fields = append(fields, item)
	}
	return encodeCert(c.Kind(), c.raw, fields...)
}

func (c *MoveInstantaneousRewardsCert) MarshalCBOR() ([]byte, error) {
	fields := make([][]byte, 0, len(c.Payload))
	for _, item := range c.Payload {
		fields = append(fields, item)
	}
	return encodeCert(c.Kind(), c.raw, fields...)
}

func (c *RegistrationCert) MarshalCBOR() ([]byte, error) {
	return encodeCert(c.Kind(), c.raw,
		c.Credential.encode(),
		canonical.EncodeUint(c.Deposit),
	)
}

func (c *UnregistrationCert) MarshalCBOR() ([]byte, error) {
	return encodeCert(c.Kind(), c.raw,
		c.Credential.encode(),
		canonical.EncodeUint(c.Deposit),
	)
}

func (c *VoteDelegationCert) MarshalCBOR() ([]byte, error) {
	return encodeCert(c.Kind(), c.raw, c.Credential.encode(), c.DRep.encode())
}

func (c *StakeVoteDelegationCert) MarshalCBOR() ([]byte, error) {
	return encodeCert(c.Kind(), c.raw,
		c.Credential.encode(),
		canonical.EncodeBytes(c.PoolKey.Bytes()),
		c.DRep.encode(),
	)
}

func (c *StakeRegistrationDelegationCert) MarshalCBOR() ([]byte, error) {
	return encodeCert(c.Kind(), c.raw,
		c.Credential.encode(),
		canonical.EncodeBytes(c.PoolKey.Bytes()),
		canonical.EncodeUint(c.Deposit),
	)
}

func (c *VoteRegistrationDelegationCert) MarshalCBOR() ([]byte, error) {
	return encodeCert(c.Kind(), c.raw,
		c.Credential.encode(),
		c.DRep.encode(),
		canonical.EncodeUint(c.Deposit),
	)
}

func (c *StakeVoteRegistrationDelegationCert) MarshalCBOR() ([]byte, error) {
	return encodeCert(c.Kind(), c.raw,
		c.Credential.encode(),
		canonical.EncodeBytes(c.PoolKey.Bytes()),
		c.DRep.encode(),
		canonical.EncodeUint(c.Deposit),
	)
}

func (c *AuthCommitteeHotCert) MarshalCBOR() ([]byte, error) {
	return encodeCert(c.Kind(), c.raw,
		c.ColdCredential.encode(),
		c.HotCredential.encode(),
	)
}

func (c *ResignCommitteeColdCert) MarshalCBOR() ([]byte, error) {
	return encodeCert(c.Kind(), c.raw,
		c.ColdCredential.encode(),
		encodeOptionalAnchor(c.Anchor),
	)
}

func (c *RegisterDRepCert) MarshalCBOR() ([]byte, error) {
	return encodeCert(c.Kind(), c.raw,
		c.Credential.encode(),
		canonical.EncodeUint(c.Deposit),
		encodeOptionalAnchor(c.Anchor),
	)
}

func (c *UnregisterDRepCert) MarshalCBOR() ([]byte, error) {
	return encodeCert(c.Kind(), c.raw,
		c.Credential.encode(),
		canonical.EncodeUint(c.Deposit),
	)
}

func (c *UpdateDRepCert) MarshalCBOR() ([]byte, error) {
	return encodeCert(c.Kind(), c.raw,
		c.Credential.encode(),
		encodeOptionalAnchor(c.Anchor),
	)
}

// certDecodeContext bundles the decoded parts of a certificate array
type certDecodeContext struct {
	parts []cbor.RawMessage
}

func (ctx *certDecodeContext) requireLen(n int) error {
	// parts includes the leading kind element
	if len(ctx.parts) != n+1 {
		return fmt.Errorf(
			"certificate must have %d elements, got %d: %w",
			n+1,
			len(ctx.parts),
			ErrInvalidCborArraySize,
		)
	}
	return nil
}

func (ctx *certDecodeContext) credential(idx int) (Credential, error) {
	return decodeCredential(ctx.parts[idx+1])
}

func (ctx *certDecodeContext) hash224(idx int) (lcommon.Blake2b224, error) {
	var hashBytes []byte
	if _, err := cbor.Decode(ctx.parts[idx+1], &hashBytes); err != nil {
		return lcommon.Blake2b224{}, fmt.Errorf("hash: %w: %s", ErrMalformedCbor, err)
	}
	if len(hashBytes) != credentialHashSize {
		return lcommon.Blake2b224{}, fmt.Errorf(
			"hash must be %d bytes, got %d: %w",
			credentialHashSize,
			len(hashBytes),
			&CodedError{Code: CodeInvalidBlake2bHashSize},
		)
	}
	return lcommon.NewBlake2b224(hashBytes), nil
}

func (ctx *certDecodeContext) uint(idx int) (uint64, error) {
	var n uint64
	if _, err := cbor.Decode(ctx.parts[idx+1], &n); err != nil {
		return 0, fmt.Errorf("certificate field: %w: %s", ErrMalformedCbor, err)
	}
	return n, nil
}

func (ctx *certDecodeContext) drep(idx int) (DRep, error) {
	return decodeDRep(ctx.parts[idx+1])
}

func (ctx *certDecodeContext) anchor(idx int) (*Anchor, error) {
	return decodeAnchor(ctx.parts[idx+1])
}

// DecodeCertificate reads any of the nineteen certificate forms
func DecodeCertificate(raw []byte) (Certificate, error) {
	var parts []cbor.RawMessage
	if _, err := cbor.Decode(raw, &parts); err != nil {
		return nil, fmt.Errorf("certificate: %w: %s", ErrMalformedCbor, err)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty certificate: %w", ErrInvalidCborArraySize)
	}
	var kind uint64
	if _, err := cbor.Decode(parts[0], &kind); err != nil {
		return nil, fmt.Errorf("certificate kind: %w: %s", ErrMalformedCbor, err)
	}
	ctx := &certDecodeContext{parts: parts}
	rawCopy := make([]byte, len(raw))
	copy(rawCopy, raw)
	switch CertificateKind(kind) {
	case CertStakeRegistration:
		if err := ctx.requireLen(1); err != nil {
			return nil, err
		}
		cred, err := ctx.credential(0)
		if err != nil {
			return nil, err
		}
		return &StakeRegistrationCert{Credential: cred, raw: rawCopy}, nil
	case CertStakeDeregistration:
		if err := ctx.requireLen(1); err != nil {
			return nil, err
		}
		cred, err := ctx.credential(0)
		if err != nil {
			return nil, err
		}
		return &StakeDeregistrationCert{Credential: cred, raw: rawCopy}, nil
	case CertStakeDelegation:
		if err := ctx.requireLen(2); err != nil {
			return nil, err
		}
		cred, err := ctx.credential(0)
		if err != nil {
			return nil, err
		}
		pool, err := ctx.hash224(1)
		if err != nil {
			return nil, err
		}
		return &StakeDelegationCert{Credential: cred, PoolKey: pool, raw: rawCopy}, nil
	case CertPoolRegistration:
		return decodePoolRegistration(ctx, rawCopy)
	case CertPoolRetirement:
		if err := ctx.requireLen(2); err != nil {
			return nil, err
		}
		pool, err := ctx.hash224(0)
		if err != nil {
			return nil, err
		}
		epoch, err := ctx.uint(1)
		if err != nil {
			return nil, err
		}
		return &PoolRetirementCert{PoolKey: pool, Epoch: epoch, raw: rawCopy}, nil
	case CertGenesisKeyDelegation:
		return &GenesisKeyDelegationCert{Payload: parts[1:], raw: rawCopy}, nil
	case CertMoveInstantaneousRewards:
		return &MoveInstantaneousRewardsCert{Payload: parts[1:], raw: rawCopy}, nil
	case CertRegistration:
		if err := ctx.requireLen(2); err != nil {
			return nil, err
		}
		cred, err := ctx.credential(0)
		if err != nil {
			return nil, err
		}
		deposit, err := ctx.uint(1)
		if err != nil {
			return nil, err
		}
		return &RegistrationCert{Credential: cred, Deposit: deposit, raw: rawCopy}, nil
	case CertUnregistration:
		if err := ctx.requireLen(2); err != nil {
			return nil, err
		}
		cred, err := ctx.credential(0)
		if err != nil {
			return nil, err
		}
		deposit, err := ctx.uint(1)
		if err != nil {
			return nil, err
		}
		return &UnregistrationCert{Credential: cred, Deposit: deposit, raw: rawCopy}, nil
	case CertVoteDelegation:
		if err := ctx.requireLen(2); err != nil {
			return nil, err
		}
		cred, err := ctx.credential(0)
		if err != nil {
			return nil, err
		}
		drep, err := ctx.drep(1)
		if err != nil {
			return nil, err
		}
		return &VoteDelegationCert{Credential: cred, DRep: drep, raw: rawCopy}, nil
	case CertStakeVoteDelegation:
		if err := ctx.requireLen(3); err != nil {
			return nil, err
		}
		cred, err := ctx.credential(0)
		if err != nil {
			return nil, err
		}
		pool, err := ctx.hash224(1)
		if err != nil {
			return nil, err
		}
		drep, err := ctx.drep(2)
		if err != nil {
			return nil, err
		}
		return &StakeVoteDelegationCert{
			Credential: cred,
			PoolKey:    pool,
			DRep:       drep,
			raw:        rawCopy,
		}, nil
	case CertStakeRegistrationDelegation:
		if err := ctx.requireLen(3); err != nil {
			return nil, err
		}
		cred, err := ctx.credential(0)
		if err != nil {
			return nil, err
		}
		pool, err := ctx.hash224(1)
		if err != nil {
			return nil, err
		}
		deposit, err := ctx.uint(2)
		if err != nil {
			return nil, err
		}
		return &StakeRegistrationDelegationCert{
			Credential: cred,
			PoolKey:    pool,
			Deposit:    deposit,
			raw:        rawCopy,
		}, nil
	case CertVoteRegistrationDelegation:
		if err := ctx.requireLen(3); err != nil {
			return nil, err
		}
		cred, err := ctx.credential(0)
		if err != nil {
			return nil, err
		}
		drep, err := ctx.drep(1)
		if err != nil {
			return nil, err
		}
		deposit, err := ctx.uint(2)
		if err != nil {
			return nil, err
		}
		return &VoteRegistrationDelegationCert{
			Credential: cred,
			DRep:       drep,
			Deposit:    deposit,
			raw:        rawCopy,
		}, nil
	case CertStakeVoteRegistrationDelegation:
		if err := ctx.requireLen(4); err != nil {
			return nil, err
		}
		cred, err := ctx.credential(0)
		if err != nil {
			return nil, err
		}
		pool, err := ctx.hash224(1)
		if err != nil {
			return nil, err
		}
		drep, err := ctx.drep(2)
		if err != nil {
			return nil, err
		}
		deposit, err := ctx.uint(3)
		if err != nil {
			return nil, err
		}
		return &StakeVoteRegistrationDelegationCert{
			Credential: cred,
			PoolKey:    pool,
			DRep:       drep,
			Deposit:    deposit,
			raw:        rawCopy,
		}, nil
	case CertAuthCommitteeHot:
		if err := ctx.requireLen(2); err != nil {
			return nil, err
		}
		cold, err := ctx.credential(0)
		if err != nil {
			return nil, err
		}
		hot, err := ctx.credential(1)
		if err != nil {
			return nil, err
		}
		return &AuthCommitteeHotCert{
			ColdCredential: cold,
			HotCredential:  hot,
			raw:            rawCopy,
		}, nil
	case CertResignCommitteeCold:
		if err := ctx.requireLen(2); err != nil {
			return nil, err
		}
		cold, err := ctx.credential(0)
		if err != nil {
			return nil, err
		}
		anchor, err := ctx.anchor(1)
		if err != nil {
			return nil, err
		}
		return &ResignCommitteeColdCert{
			ColdCredential: cold,
			Anchor:         anchor,
			raw:            rawCopy,
		}, nil
	case CertRegisterDRep:
		if err := ctx.requireLen(3); err != nil {
			return nil, err
		}
		cred, err := ctx.credential(0)
		if err != nil {
			return nil, err
		}
		deposit, err := ctx.uint(1)
		if err != nil {
			return nil, err
		}
		anchor, err := ctx.anchor(2)
		if err != nil {
			return nil, err
		}
		return &RegisterDRepCert{
			Credential: cred,
			Deposit:    deposit,
			Anchor:     anchor,
			raw:        rawCopy,
		}, nil
	case CertUnregisterDRep:
		if err := ctx.requireLen(2); err != nil {
			return nil, err
		}
		cred, err := ctx.credential(0)
		if err != nil {
			return nil, err
		}
		deposit, err := ctx.uint(1)
		if err != nil {
			return nil, err
		}
		return &UnregisterDRepCert{Credential: cred, Deposit: deposit, raw: rawCopy}, nil
	case CertUpdateDRep:
		if err := ctx.requireLen(2); err != nil {
			return nil, err
		}
		cred, err := ctx.credential(0)
		if err != nil {
			return nil, err
		}
		anchor, err := ctx.anchor(1)
		if err != nil {
			return nil, err
		}
		return &UpdateDRepCert{Credential: cred, Anchor: anchor, raw: rawCopy}, nil
	default:
		return nil, fmt.Errorf("unknown certificate kind %d: %w", kind, ErrInvalidCborValue)
	}
}

func decodePoolRegistration(ctx *certDecodeContext, rawCopy []byte) (Certificate, error) {
	if err := ctx.requireLen(9); err != nil {
		return nil, err
	}
	operator, err := ctx.hash224(0)
	if err != nil {
		return nil, err
	}
	var vrfBytes []byte
	if _, err := cbor.Decode(ctx.parts[2], &vrfBytes); err != nil {
		return nil, fmt.Errorf("vrf hash: %w: %s", ErrMalformedCbor, err)
	}
	if len(vrfBytes) != 32 {
		return nil, fmt.Errorf(
			"vrf hash must be 32 bytes, got %d: %w",
			len(vrfBytes),
			&CodedError{Code: CodeInvalidBlake2bHashSize},
		)
	}
	pledge, err := ctx.uint(2)
	if err != nil {
		return nil, err
	}
	cost, err := ctx.uint(3)
	if err != nil {
		return nil, err
	}
	var rewardAccount []byte
	if _, err := cbor.Decode(ctx.parts[6], &rewardAccount); err != nil {
		return nil, fmt.Errorf("pool reward account: %w: %s", ErrMalformedCbor, err)
	}
	ownersRaw, ownersTagged := canonical.StripSetTag(ctx.parts[7])
	var ownerItems []cbor.RawMessage
	if _, err := cbor.Decode(ownersRaw, &ownerItems); err != nil {
		return nil, fmt.Errorf("pool owners: %w: %s", ErrMalformedCbor, err)
	}
	owners := make([]lcommon.Blake2b224, 0, len(ownerItems))
	for _, item := range ownerItems {
		var ownerBytes []byte
		if _, err := cbor.Decode(item, &ownerBytes); err != nil {
			return nil, fmt.Errorf("pool owner: %w: %s", ErrMalformedCbor, err)
		}
		if len(ownerBytes) != credentialHashSize {
			return nil, fmt.Errorf(
				"pool owner hash must be %d bytes, got %d: %w",
				credentialHashSize,
				len(ownerBytes),
				&CodedError{Code: CodeInvalidBlake2bHashSize},
			)
		}
		owners = append(owners, lcommon.NewBlake2b224(ownerBytes))
	}
	var relays []cbor.RawMessage
	if _, err := cbor.Decode(ctx.parts[8], &relays); err != nil {
		return nil, fmt.Errorf("pool relays: %w: %s", ErrMalformedCbor, err)
	}
	return &PoolRegistrationCert{
		Operator:      operator,
		VrfKeyHash:    lcommon.NewBlake2b256(vrfBytes),
		Pledge:        pledge,
		Cost:          cost,
		Margin:        ctx.parts[5],
		RewardAccount: rewardAccount,
		Owners:        owners,
		OwnersSetTag:  ownersTagged,
		Relays:        relays,
		Metadata:      ctx.parts[9],
		raw:           rawCopy,
	}, nil
}
