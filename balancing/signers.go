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

package balancing

import (
	"fmt"

	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/blinklabs-io/txcraft/ledger"
)

// signerSet is a duplicate-free accumulator of 28-byte key hashes that
// remembers insertion order for deterministic output
type signerSet struct {
	seen  map[lcommon.Blake2b224]struct{}
	order []lcommon.Blake2b224
}

func newSignerSet() *signerSet {
	return &signerSet{seen: make(map[lcommon.Blake2b224]struct{})}
}

func (s *signerSet) add(hash lcommon.Blake2b224) {
	if _, ok := s.seen[hash]; ok {
		return
	}
	s.seen[hash] = struct{}{}
	s.order = append(s.order, hash)
}

// UniqueRequiredSigners derives the set of payment-key hashes whose
// signatures the ledger will require for the transaction. The resolved
// input list must cover every spending and collateral input.
func UniqueRequiredSigners(
	tx *ledger.Transaction,
	resolvedInputs []ledger.Utxo,
) ([]lcommon.Blake2b224, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction: %w", ledger.ErrPointerNull)
	}
	signers := newSignerSet()
	// explicit required signers
	for _, hash := range tx.Body.RequiredSigners {
		signers.add(hash)
	}
	// spending and collateral inputs paying from a key
	if err := addInputSigners(signers, tx.Body.Inputs, resolvedInputs); err != nil {
		return nil, err
	}
	if err := addInputSigners(signers, tx.Body.Collateral, resolvedInputs); err != nil {
		return nil, err
	}
	// key-backed withdrawal accounts
	for _, wdrl := range tx.Body.Withdrawals {
		if hash, ok := wdrl.Account.KeyHash(); ok {
			signers.add(hash)
		}
	}
	// certificate credentials
	for _, cert := range tx.Body.Certificates {
		addCertificateSigners(signers, cert)
	}
	// key-backed voters
	if tx.Body.VotingProcedures != nil {
		for _, entry := range tx.Body.VotingProcedures.Entries {
			if hash, ok := entry.Voter.KeyHash(); ok {
				signers.add(hash)
			}
		}
	}
	return signers.order, nil
}

func addInputSigners(
	signers *signerSet,
	inputs []ledger.TransactionInput,
	resolvedInputs []ledger.Utxo,
) error {
	for _, input := range inputs {
		utxo, err := ledger.FindUtxo(resolvedInputs, input)
		if err != nil {
			return err
		}
		if hash, ok := ledger.PaymentKeyHashFromAddress(utxo.Output.Address); ok {
			signers.add(hash)
		}
	}
	return nil
}

func addCredential(signers *signerSet, cred ledger.Credential) {
	// script credentials are authorized via redeemers, not key witnesses
	if cred.Kind == ledger.CredentialKeyHash {
		signers.add(cred.Hash)
	}
}

// addCertificateSigners contributes the key hash of each certificate's
// signing credential. Legacy stake registration, genesis delegation, and
// MIR certificates require no signer; pool registrations contribute
// every owner hash.
func addCertificateSigners(signers *signerSet, cert ledger.Certificate) {
	switch c := cert.(type) {
	case *ledger.StakeDeregistrationCert:
		addCredential(signers, c.Credential)
	case *ledger.StakeDelegationCert:
		addCredential(signers, c.Credential)
	case *ledger.RegistrationCert:
		addCredential(signers, c.Credential)
	case *ledger.UnregistrationCert:
		addCredential(signers, c.Credential)
	case *ledger.VoteDelegationCert:
		addCredential(signers, c.Credential)
	case *ledger.StakeVoteDelegationCert:
		addCredential(signers, c.Credential)
	case *ledger.StakeRegistrationDelegationCert:
		addCredential(signers, c.Credential)
	case *ledger.VoteRegistrationDelegationCert:
		addCredential(signers, c.Credential)
	case *ledger.StakeVoteRegistrationDelegationCert:
		addCredential(signers, c.Credential)
	case *ledger.AuthCommitteeHotCert:
		addCredential(signers, c.ColdCredential)
	case *ledger.ResignCommitteeColdCert:
		addCredential(signers, c.ColdCredential)
	case *ledger.RegisterDRepCert:
		addCredential(signers, c.Credential)
	case *ledger.UnregisterDRepCert:
		addCredential(signers, c.Credential)
	case *ledger.UpdateDRepCert:
		addCredential(signers, c.Credential)
	case *ledger.PoolRetirementCert:
		signers.add(c.PoolKey)
	case *ledger.PoolRegistrationCert:
		for _, owner := range c.Owners {
			signers.add(owner)
		}
	}
}
