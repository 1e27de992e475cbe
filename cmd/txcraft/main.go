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

package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/blinklabs-io/txcraft/balancing"
	"github.com/blinklabs-io/txcraft/internal/version"
	"github.com/blinklabs-io/txcraft/ledger"
	"github.com/blinklabs-io/txcraft/selection"

	"github.com/spf13/cobra"
)

const (
	programName = "txcraft"
)

var cmdlineFlags = struct {
	debug          bool
	txFile         string
	utxoFile       string
	collateralFile string
	changeAddr     string
	collateralAddr string
	signatures     uint64
}{}

// utxoFileEntry is one UTxO in the JSON wallet file
type utxoFileEntry struct {
	TxId     string            `json:"tx_id"`
	Index    uint16            `json:"index"`
	Address  string            `json:"address"`
	Lovelace uint64            `json:"lovelace"`
	Assets   map[string]map[string]int64 `json:"assets,omitempty"`
}

func main() {
	cmd := &cobra.Command{
		Use: fmt.Sprintf("%s [flags]", programName),
		Run: cmdRun,
	}

	cmd.Flags().BoolVarP(&cmdlineFlags.debug, "debug", "D", false, "enable debug logging")
	cmd.Flags().StringVarP(&cmdlineFlags.txFile, "tx", "t", "", "path to the unbalanced transaction CBOR (hex)")
	cmd.Flags().StringVarP(&cmdlineFlags.utxoFile, "utxos", "u", "", "path to the wallet UTxO JSON file")
	cmd.Flags().StringVarP(&cmdlineFlags.collateralFile, "collateral", "c", "", "path to the collateral UTxO JSON file")
	cmd.Flags().StringVarP(&cmdlineFlags.changeAddr, "change-address", "a", "", "bech32 change address")
	cmd.Flags().StringVarP(&cmdlineFlags.collateralAddr, "collateral-address", "A", "", "bech32 collateral change address")
	cmd.Flags().Uint64VarP(&cmdlineFlags.signatures, "signatures", "s", 0, "foreign signature count")

	if err := cmd.Execute(); err != nil {
		// NOTE: we purposely don't display the error, since cobra will have already displayed it
		os.Exit(1)
	}
}

func cmdRun(cmd *cobra.Command, args []string) {
	configureLogger()
	slog.Info(fmt.Sprintf("starting %s %s", programName, version.GetVersionString()))
	if cmdlineFlags.txFile == "" || cmdlineFlags.utxoFile == "" ||
		cmdlineFlags.changeAddr == "" {
		fmt.Println("ERROR: --tx, --utxos, and --change-address are required")
		os.Exit(1)
	}
	tx, err := loadTransaction(cmdlineFlags.txFile)
	if err != nil {
		fmt.Printf("ERROR: failed to load transaction: %s\n", err)
		os.Exit(1)
	}
	available, err := loadUtxos(cmdlineFlags.utxoFile)
	if err != nil {
		fmt.Printf("ERROR: failed to load UTxOs: %s\n", err)
		os.Exit(1)
	}
	changeAddr, err := lcommon.NewAddress(cmdlineFlags.changeAddr)
	if err != nil {
		fmt.Printf("ERROR: invalid change address: %s\n", err)
		os.Exit(1)
	}
	opts := balancing.BalanceOptions{
		ForeignSignatureCount: cmdlineFlags.signatures,
		Params:                ledger.NewMainnetProtocolParameters(),
		Available:             available,
		Selector:              selection.NewLargeFirst(),
		ChangeAddress:         &changeAddr,
	}
	if cmdlineFlags.collateralFile != "" {
		collateral, err := loadUtxos(cmdlineFlags.collateralFile)
		if err != nil {
			fmt.Printf("ERROR: failed to load collateral UTxOs: %s\n", err)
			os.Exit(1)
		}
		opts.AvailableCollateral = collateral
	}
	if cmdlineFlags.collateralAddr != "" {
		collateralAddr, err := lcommon.NewAddress(cmdlineFlags.collateralAddr)
		if err != nil {
			fmt.Printf("ERROR: invalid collateral change address: %s\n", err)
			os.Exit(1)
		}
		opts.CollateralChangeAddress = &collateralAddr
	}
	if err := balancing.BalanceTransaction(tx, opts); err != nil {
		slog.Error("balancing failed",
			"error", err,
			"code", ledger.ErrorCodeOf(err).String(),
		)
		os.Exit(1)
	}
	encoded, err := tx.MarshalCBOR()
	if err != nil {
		fmt.Printf("ERROR: failed to encode balanced transaction: %s\n", err)
		os.Exit(1)
	}
	txId, err := tx.Id()
	if err != nil {
		fmt.Printf("ERROR: failed to hash balanced transaction: %s\n", err)
		os.Exit(1)
	}
	slog.Info("balanced transaction",
		"id", txId.String(),
		"fee", tx.Body.Fee,
		"inputs", len(tx.Body.Inputs),
		"outputs", len(tx.Body.Outputs),
	)
	fmt.Println(hex.EncodeToString(encoded))
}

func loadTransaction(path string) (*ledger.Transaction, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	decoded, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("transaction file is not hex: %w", err)
	}
	var tx ledger.Transaction
	if err := tx.UnmarshalCBOR(decoded); err != nil {
		return nil, err
	}
	return &tx, nil
}

func loadUtxos(path string) ([]ledger.Utxo, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []utxoFileEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	utxos := make([]ledger.Utxo, 0, len(entries))
	for _, entry := range entries {
		txId, err := hex.DecodeString(entry.TxId)
		if err != nil || len(txId) != 32 {
			return nil, fmt.Errorf("invalid tx id %q", entry.TxId)
		}
		addr, err := lcommon.NewAddress(entry.Address)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q: %w", entry.Address, err)
		}
		assets, err := parseAssets(entry.Assets)
		if err != nil {
			return nil, err
		}
		utxos = append(utxos, ledger.Utxo{
			Input: ledger.NewTransactionInput(txId, entry.Index),
			Output: ledger.NewTransactionOutput(
				addr,
				ledger.NewValue(int64(entry.Lovelace), assets),
			),
		})
	}
	return utxos, nil
}

func parseAssets(raw map[string]map[string]int64) (ledger.MultiAsset, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	assets := ledger.NewMultiAsset()
	for policyHex, names := range raw {
		policyBytes, err := hex.DecodeString(policyHex)
		if err != nil || len(policyBytes) != 28 {
			return nil, errors.New("asset policy IDs must be 28 hex-encoded bytes")
		}
		policyId := lcommon.NewBlake2b224(policyBytes)
		for nameHex, quantity := range names {
			nameBytes, err := hex.DecodeString(nameHex)
			if err != nil {
				return nil, fmt.Errorf("asset name %q is not hex", nameHex)
			}
			assets.Set(policyId, nameBytes, quantity)
		}
	}
	return assets, nil
}

func configureLogger() {
	// Configure default logger
	var logger *slog.Logger
	if cmdlineFlags.debug {
		logger = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	} else {
		logger = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	}
	slog.SetDefault(logger)
}
