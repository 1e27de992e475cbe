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

// Package selection defines the coin-selection interface used by the
// balancer and provides the Large-First reference implementation.
package selection

import (
	"github.com/blinklabs-io/txcraft/ledger"
)

// CoinSelector chooses UTxOs covering a target value. Pre-selected UTxOs
// are always part of the returned selection; the remaining list holds the
// available UTxOs that were not chosen.
type CoinSelector interface {
	Select(
		preSelected []ledger.Utxo,
		available []ledger.Utxo,
		target ledger.Value,
	) (selection []ledger.Utxo, remaining []ledger.Utxo, err error)
}
