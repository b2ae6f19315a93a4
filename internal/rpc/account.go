// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/account"
	"github.com/NethermindEth/starknet.go/contracts"
	snrpc "github.com/NethermindEth/starknet.go/rpc"
)

// ErrTransactionReverted indicates the transaction was included but its
// execution reverted.
var ErrTransactionReverted = errors.New("transaction reverted")

// Receipt is the subset of a transaction receipt the deployer reports.
type Receipt struct {
	TxHash          *felt.Felt `json:"transaction_hash"`
	ExecutionStatus string     `json:"execution_status"`
	FinalityStatus  string     `json:"finality_status"`
	RevertReason    string     `json:"revert_reason,omitempty"`
}

// Account is a single-owner account signing with an in-memory key.
type Account struct {
	*Client
	acct         *account.Account
	address      *felt.Felt
	pollInterval time.Duration
}

// NewAccount builds a signing account. keyID names the key inside the
// keystore; callers pass the account's public key, or the address when the
// public key is not known. cairo selects the calldata encoding the account
// contract expects for multicalls.
func NewAccount(c *Client, address *felt.Felt, privateKey *big.Int, keyID string, cairo account.CairoVersion, pollInterval time.Duration) (*Account, error) {
	if address == nil {
		return nil, errors.New("account address is required")
	}
	if privateKey == nil || privateKey.Sign() <= 0 {
		return nil, errors.New("private key is required")
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}

	ks := account.NewMemKeystore()
	ks.Put(keyID, privateKey)

	acct, err := account.NewAccount(c.Provider, address, keyID, ks, cairo)
	if err != nil {
		return nil, fmt.Errorf("failed to create account %s: %w", address, err)
	}

	return &Account{
		Client:       c,
		acct:         acct,
		address:      address,
		pollInterval: pollInterval,
	}, nil
}

// Address returns the account contract address.
func (a *Account) Address() *felt.Felt {
	return a.address
}

// Declare submits a declare transaction for the class and returns its
// transaction hash and the class hash reported by the node.
func (a *Account) Declare(ctx context.Context, casm *contracts.CasmClass, class *contracts.ContractClass) (*felt.Felt, *felt.Felt, error) {
	resp, err := a.acct.BuildAndSendDeclareTxn(ctx, casm, class, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("declare failed: %w", err)
	}
	return resp.Hash, resp.ClassHash, nil
}

// Invoke signs and submits a multicall from the account.
func (a *Account) Invoke(ctx context.Context, calls []snrpc.InvokeFunctionCall) (*felt.Felt, error) {
	resp, err := a.acct.BuildAndSendInvokeTxn(ctx, calls, nil)
	if err != nil {
		return nil, fmt.Errorf("invoke failed: %w", err)
	}
	return resp.Hash, nil
}

// WaitForReceipt polls until the transaction has a receipt. A reverted
// execution is returned together with ErrTransactionReverted.
func (a *Account) WaitForReceipt(ctx context.Context, txHash *felt.Felt) (*Receipt, error) {
	r, err := a.acct.WaitForTransactionReceipt(ctx, txHash, a.pollInterval)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for %s: %w", txHash, err)
	}

	receipt := &Receipt{
		TxHash:          txHash,
		ExecutionStatus: string(r.ExecutionStatus),
		FinalityStatus:  string(r.FinalityStatus),
		RevertReason:    r.RevertReason,
	}
	if r.ExecutionStatus == snrpc.TxnExecutionStatusREVERTED {
		return receipt, fmt.Errorf("%w: %s", ErrTransactionReverted, r.RevertReason)
	}
	return receipt, nil
}
