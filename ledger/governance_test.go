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

	"github.com/blinklabs-io/txcraft/ledger"
)

func TestProposalProcedureRoundTrip(t *testing.T) {
	// [deposit, reward_account, info_action, anchor]
	raw := hexBytes(t,
		"84",
		"1b000000174876e800", // 100,000 ADA
		"581d", "e1", strings.Repeat("22", 28),
		"8106", // Info action
		"82", "65", "68656c6c6f", "5820", strings.Repeat("33", 32),
	)
	var proposal ledger.ProposalProcedure
	if err := proposal.UnmarshalCBOR(raw); err != nil {
		t.Fatalf("UnmarshalCBOR error: %v", err)
	}
	if proposal.Deposit != 100_000_000_000 {
		t.Errorf("deposit = %d", proposal.Deposit)
	}
	if proposal.Action.Kind != ledger.GovActionInfo {
		t.Errorf("action kind = %d", proposal.Action.Kind)
	}
	if proposal.Anchor.Url != "hello" {
		t.Errorf("anchor url = %q", proposal.Anchor.Url)
	}
	encoded, err := proposal.MarshalCBOR()
	if err != nil {
		t.Fatalf("MarshalCBOR error: %v", err)
	}
	if !bytes.Equal(encoded, raw) {
		t.Fatalf("re-encode differs:\n got %x\nwant %x", encoded, raw)
	}
}

func TestProposalProcedureRejectsUnknownAction(t *testing.T) {
	raw := hexBytes(t,
		"84",
		"00",
		"581d", "e1", strings.Repeat("22", 28),
		"8107", // action kind 7 does not exist
		"82", "61", "78", "5820", strings.Repeat("33", 32),
	)
	var proposal ledger.ProposalProcedure
	if err := proposal.UnmarshalCBOR(raw); err == nil {
		t.Fatal("unknown action kind accepted")
	}
}

func TestVotingProceduresRoundTrip(t *testing.T) {
	// {drep-key-voter: {action-id: [yes, null]}}
	raw := hexBytes(t,
		"a1",
		"82", "02", "581c", strings.Repeat("03", 28),
		"a1",
		"82", "5820", strings.Repeat("ab", 32), "00",
		"82", "01", "f6",
	)
	var procs ledger.VotingProcedures
	if err := procs.UnmarshalCBOR(raw); err != nil {
		t.Fatalf("UnmarshalCBOR error: %v", err)
	}
	if len(procs.Entries) != 1 {
		t.Fatalf("expected 1 voter, got %d", len(procs.Entries))
	}
	entry := procs.Entries[0]
	if entry.Voter.Kind != ledger.VoterDRepKey {
		t.Error("voter kind mismatch")
	}
	if len(entry.Votes) != 1 || entry.Votes[0].Procedure.Vote != ledger.VoteYes {
		t.Error("vote lost")
	}
	encoded, err := procs.MarshalCBOR()
	if err != nil {
		t.Fatalf("MarshalCBOR error: %v", err)
	}
	if !bytes.Equal(encoded, raw) {
		t.Fatalf("re-encode differs:\n got %x\nwant %x", encoded, raw)
	}
}

func TestAnchorUrlBound(t *testing.T) {
	longUrl := strings.Repeat("a", 200)
	raw := append([]byte{0x82}, append(
		append([]byte{0x78, 0xc8}, []byte(longUrl)...),
		append([]byte{0x58, 0x20}, bytes.Repeat([]byte{0x33}, 32)...)...,
	)...)
	var proposal ledger.ProposalProcedure
	full := append([]byte{0x84, 0x00, 0x41, 0xe1, 0x81, 0x06}, raw...)
	if err := proposal.UnmarshalCBOR(full); err == nil {
		t.Fatal("oversized anchor url accepted")
	}
}
