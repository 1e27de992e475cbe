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

// GovActionId identifies a governance action by the transaction that
// proposed it
type GovActionId struct {
	TxId  lcommon.Blake2b256
	Index uint16
}

func (g GovActionId) encode() []byte {
	return canonical.EncodeArray([][]byte{
		canonical.EncodeBytes(g.TxId.Bytes()),
		canonical.EncodeUint(uint64(g.Index)),
	})
}

func decodeGovActionId(raw []byte) (GovActionId, error) {
	var parts []cbor.RawMessage
	if _, err := cbor.Decode(raw, &parts); err != nil {
		return GovActionId{}, fmt.Errorf("gov action id: %w: %s", ErrMalformedCbor, err)
	}
	if len(parts) != 2 {
		return GovActionId{}, fmt.Errorf(
			"gov action id must have 2 elements, got %d: %w",
			len(parts),
			ErrInvalidCborArraySize,
		)
	}
	var txIdBytes []byte
	if _, err := cbor.Decode(parts[0], &txIdBytes); err != nil {
		return GovActionId{}, fmt.Errorf("gov action tx id: %w: %s", ErrMalformedCbor, err)
	}
	if len(txIdBytes) != 32 {
		return GovActionId{}, fmt.Errorf(
			"gov action tx id must be 32 bytes, got %d: %w",
			len(txIdBytes),
			&CodedError{Code: CodeInvalidBlake2bHashSize},
		)
	}
	var index uint16
	if _, err := cbor.Decode(parts[1], &index); err != nil {
		return GovActionId{}, fmt.Errorf("gov action index: %w: %s", ErrMalformedCbor, err)
	}
	return GovActionId{TxId: lcommon.NewBlake2b256(txIdBytes), Index: index}, nil
}

// GovActionKind enumerates the governance action variants
type GovActionKind uint

const (
	GovActionParameterChange    GovActionKind = 0
	GovActionHardForkInitiation GovActionKind = 1
	GovActionTreasuryWithdrawal GovActionKind = 2
	GovActionNoConfidence       GovActionKind = 3
	GovActionUpdateCommittee    GovActionKind = 4
	GovActionNewConstitution    GovActionKind = 5
	GovActionInfo               GovActionKind = 6
)

// GovAction is a governance action carried in its original encoded form.
// The engine inspects only the variant tag; the payload is preserved
// byte-for-byte.
type GovAction struct {
	Kind GovActionKind
	Raw  cbor.RawMessage
}

// NewInfoAction creates the payload-free Info action
func NewInfoAction() GovAction {
	return GovAction{
		Kind: GovActionInfo,
		Raw:  canonical.EncodeArray([][]byte{canonical.EncodeUint(uint64(GovActionInfo))}),
	}
}

func decodeGovAction(raw []byte) (GovAction, error) {
	var parts []cbor.RawMessage
	if _, err := cbor.Decode(raw, &parts); err != nil {
		return GovAction{}, fmt.Errorf("gov action: %w: %s", ErrMalformedCbor, err)
	}
	if len(parts) == 0 {
		return GovAction{}, fmt.Errorf("empty gov action: %w", ErrInvalidCborArraySize)
	}
	var kind uint64
	if _, err := cbor.Decode(parts[0], &kind); err != nil {
		return GovAction{}, fmt.Errorf("gov action kind: %w: %s", ErrMalformedCbor, err)
	}
	if kind > uint64(GovActionInfo) {
		return GovAction{}, fmt.Errorf(
			"unknown gov action kind %d: %w",
			kind,
			&CodedError{Code: CodeInvalidProcedureProposalType},
		)
	}
	rawCopy := make([]byte, len(raw))
	copy(rawCopy, raw)
	return GovAction{Kind: GovActionKind(kind), Raw: rawCopy}, nil
}

// ProposalProcedure proposes a governance action
type ProposalProcedure struct {
	Deposit       uint64
	RewardAccount RewardAccount
	Action        GovAction
	Anchor        Anchor
	raw           []byte
}

// MarshalCBOR encodes the proposal, preferring the cached original bytes
func (p ProposalProcedure) MarshalCBOR() ([]byte, error) {
	if p.raw != nil {
		return p.raw, nil
	}
	if p.Action.Raw == nil {
		return nil, fmt.Errorf("proposal has no governance action: %w", ErrInvalidArgument)
	}
	return canonical.EncodeArray([][]byte{
		canonical.EncodeUint(p.Deposit),
		canonical.EncodeBytes(p.RewardAccount),
		p.Action.Raw,
		p.Anchor.encode(),
	}), nil
}

// UnmarshalCBOR reads a proposal procedure
func (p *ProposalProcedure) UnmarshalCBOR(raw []byte) error {
	var parts []cbor.RawMessage
	if _, err := cbor.Decode(raw, &parts); err != nil {
		return fmt.Errorf("proposal procedure: %w: %s", ErrMalformedCbor, err)
	}
	if len(parts) != 4 {
		return fmt.Errorf(
			"proposal procedure must have 4 elements, got %d: %w",
			len(parts),
			ErrInvalidCborArraySize,
		)
	}
	var deposit uint64
	if _, err := cbor.Decode(parts[0], &deposit); err != nil {
		return fmt.Errorf("proposal deposit: %w: %s", ErrMalformedCbor, err)
	}
	var rewardAccount []byte
	if _, err := cbor.Decode(parts[1], &rewardAccount); err != nil {
		return fmt.Errorf("proposal reward account: %w: %s", ErrMalformedCbor, err)
	}
	action, err := decodeGovAction(parts[2])
	if err != nil {
		return err
	}
	anchor, err := decodeAnchor(parts[3])
	if err != nil {
		return err
	}
	if anchor == nil {
		return fmt.Errorf("proposal anchor is required: %w", ErrInvalidCborValue)
	}
	rawCopy := make([]byte, len(raw))
	copy(rawCopy, raw)
	*p = ProposalProcedure{
		Deposit:       deposit,
		RewardAccount: rewardAccount,
		Action:        action,
		Anchor:        *anchor,
		raw:           rawCopy,
	}
	return nil
}

// VoterKind enumerates the five voter credential forms
type VoterKind uint8

const (
	VoterCommitteeHotKey    VoterKind = 0
	VoterCommitteeHotScript VoterKind = 1
	VoterDRepKey            VoterKind = 2
	VoterDRepScript         VoterKind = 3
	VoterStakePool          VoterKind = 4
)

// Voter identifies who is casting a vote
type Voter struct {
	Kind VoterKind
	Hash lcommon.Blake2b224
}

// KeyHash returns the voter's hash when it is backed by a verification
// key (committee hot key, DRep key, or pool operator key)
func (v Voter) KeyHash() (lcommon.Blake2b224, bool) {
	switch v.Kind {
	case VoterCommitteeHotKey, VoterDRepKey, VoterStakePool:
		return v.Hash, true
	default:
		return lcommon.Blake2b224{}, false
	}
}

func (v Voter) encode() []byte {
	return canonical.EncodeArray([][]byte{
		canonical.EncodeUint(uint64(v.Kind)),
		canonical.EncodeBytes(v.Hash.Bytes()),
	})
}

func decodeVoter(raw []byte) (Voter, error) {
	var parts []cbor.RawMessage
	if _, err := cbor.Decode(raw, &parts); err != nil {
		return Voter{}, fmt.Errorf("voter: %w: %s", ErrMalformedCbor, err)
	}
	if len(parts) != 2 {
		return Voter{}, fmt.Errorf(
			"voter must have 2 elements, got %d: %w",
			len(parts),
			ErrInvalidCborArraySize,
		)
	}
	var kind uint64
	if _, err := cbor.Decode(parts[0], &kind); err != nil {
		return Voter{}, fmt.Errorf("voter kind: %w: %s", ErrMalformedCbor, err)
	}
	if kind > uint64(VoterStakePool) {
		return Voter{}, fmt.Errorf("unknown voter kind %d: %w", kind, ErrInvalidCborValue)
	}
	var hashBytes []byte
	if _, err := cbor.Decode(parts[1], &hashBytes); err != nil {
		return Voter{}, fmt.Errorf("voter hash: %w: %s", ErrMalformedCbor, err)
	}
	if len(hashBytes) != credentialHashSize {
		return Voter{}, fmt.Errorf(
			"voter hash must be %d bytes, got %d: %w",
			credentialHashSize,
			len(hashBytes),
			&CodedError{Code: CodeInvalidBlake2bHashSize},
		)
	}
	return Voter{Kind: VoterKind(kind), Hash: lcommon.NewBlake2b224(hashBytes)}, nil
}

// Vote is a single voting choice
type Vote uint8

const (
	VoteNo      Vote = 0
	VoteYes     Vote = 1
	VoteAbstain Vote = 2
)

// VotingProcedure is a vote with an optional anchor
type VotingProcedure struct {
	Vote   Vote
	Anchor *Anchor
}

func (v VotingProcedure) encode() []byte {
	return canonical.EncodeArray([][]byte{
		canonical.EncodeUint(uint64(v.Vote)),
		encodeOptionalAnchor(v.Anchor),
	})
}

func decodeVotingProcedure(raw []byte) (VotingProcedure, error) {
	var parts []cbor.RawMessage
	if _, err := cbor.Decode(raw, &parts); err != nil {
		return VotingProcedure{}, fmt.Errorf(
			"voting procedure: %w: %s",
			ErrMalformedCbor,
			err,
		)
	}
	if len(parts) != 2 {
		return VotingProcedure{}, fmt.Errorf(
			"voting procedure must have 2 elements, got %d: %w",
			len(parts),
			ErrInvalidCborArraySize,
		)
	}
	var vote uint64
	if _, err := cbor.Decode(parts[0], &vote); err != nil {
		return VotingProcedure{}, fmt.Errorf("vote: %w: %s", ErrMalformedCbor, err)
	}
	if vote > uint64(VoteAbstain) {
		return VotingProcedure{}, fmt.Errorf(
			"unknown vote %d: %w",
			vote,
			ErrInvalidCborValue,
		)
	}
	anchor, err := decodeAnchor(parts[1])
	if err != nil {
		return VotingProcedure{}, err
	}
	return VotingProcedure{Vote: Vote(vote), Anchor: anchor}, nil
}

// VoteEntry pairs a governance action with the vote cast on it
type VoteEntry struct {
	ActionId  GovActionId
	Procedure VotingProcedure
}

// VoterVotes groups the votes cast by a single voter
type VoterVotes struct {
	Voter Voter
	Votes []VoteEntry
}

// VotingProcedures is the body's voter/action vote map, kept in decode
// order for deterministic re-encoding
type VotingProcedures struct {
	Entries []VoterVotes
	raw     []byte
}

// MarshalCBOR encodes the voting procedures as a canonical nested map,
// preferring the cached original bytes
func (v VotingProcedures) MarshalCBOR() ([]byte, error) {
	if v.raw != nil {
		return v.raw, nil
	}
	pairs := make([]canonical.Pair, 0, len(v.Entries))
	for _, entry := range v.Entries {
		inner := make([]canonical.Pair, 0, len(entry.Votes))
		for _, vote := range entry.Votes {
			inner = append(inner, canonical.Pair{
				Key:   vote.ActionId.encode(),
				Value: vote.Procedure.encode(),
			})
		}
		pairs = append(pairs, canonical.Pair{
			Key:   entry.Voter.encode(),
			Value: canonical.EncodeMap(inner),
		})
	}
	return canonical.EncodeMap(pairs), nil
}

// UnmarshalCBOR reads the voter/action vote map. Map keys are structured
// values, so the map is walked raw instead of through a Go map.
func (v *VotingProcedures) UnmarshalCBOR(raw []byte) error {
	pairs, err := canonical.SplitMap(raw)
	if err != nil {
		return fmt.Errorf("voting procedures: %w: %s", ErrMalformedCbor, err)
	}
	entries := make([]VoterVotes, 0, len(pairs))
	for _, pair := range pairs {
		voter, err := decodeVoter(pair.Key)
		if err != nil {
			return err
		}
		inner, err := canonical.SplitMap(pair.Value)
		if err != nil {
			return fmt.Errorf("voting procedures votes: %w: %s", ErrMalformedCbor, err)
		}
		votes := make([]VoteEntry, 0, len(inner))
		for _, votePair := range inner {
			actionId, err := decodeGovActionId(votePair.Key)
			if err != nil {
				return err
			}
			procedure, err := decodeVotingProcedure(votePair.Value)
			if err != nil {
				return err
			}
			votes = append(votes, VoteEntry{ActionId: actionId, Procedure: procedure})
		}
		entries = append(entries, VoterVotes{Voter: voter, Votes: votes})
	}
	rawCopy := make([]byte, len(raw))
	copy(rawCopy, raw)
	*v = VotingProcedures{Entries: entries, raw: rawCopy}
	return nil
}
