// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/account"
	"github.com/NethermindEth/starknet.go/contracts"
	snrpc "github.com/NethermindEth/starknet.go/rpc"
	"github.com/NethermindEth/starknet.go/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSierra = "../artifact/testdata/contracts_v2_HelloStarknet.contract_class.json"
	testCasm   = "../artifact/testdata/contracts_v2_HelloStarknet.compiled_contract_class.json"
)

var (
	testAddress = new(felt.Felt).SetUint64(0xacc)
	testKey, _  = new(big.Int).SetString("71d7bb07b9a64f6f78ac4c816aff4da9", 16)
)

func feeEstimate() []map[string]any {
	return []map[string]any{{
		"l1_gas_consumed":      "0x10",
		"l1_gas_price":         "0x1",
		"l2_gas_consumed":      "0x100",
		"l2_gas_price":         "0x1",
		"l1_data_gas_consumed": "0x10",
		"l1_data_gas_price":    "0x1",
		"overall_fee":          "0x120",
		"unit":                 "FRI",
	}}
}

func receipt(hash, execution, reason string) map[string]any {
	r := map[string]any{
		"transaction_hash": hash,
		"type":             "INVOKE",
		"actual_fee":       map[string]any{"amount": "0x120", "unit": "FRI"},
		"finality_status":  "ACCEPTED_ON_L2",
		"execution_status": execution,
		"messages_sent":    []any{},
		"events":           []any{},
		"execution_resources": map[string]any{
			"l1_gas":      0,
			"l1_data_gas": 0,
			"l2_gas":      0,
		},
		"block_hash":   "0xb10c",
		"block_number": 7,
	}
	if reason != "" {
		r["revert_reason"] = reason
	}
	return r
}

// accountNode returns a node that accepts transactions from testAddress.
func accountNode(t *testing.T, extra map[string]any) *Client {
	t.Helper()
	results := map[string]any{
		"starknet_chainId":     "0x534e5f5345504f4c4941",
		"starknet_specVersion": "0.8.1",
		"starknet_getNonce":    "0x1",
		"starknet_estimateFee": feeEstimate(),
	}
	for k, v := range extra {
		results[k] = v
	}
	client, err := NewClient("", fakeNode(t, results).URL)
	require.NoError(t, err)
	return client
}

func TestNewAccountRejectsMissingInputs(t *testing.T) {
	client := accountNode(t, nil)

	tests := []struct {
		name    string
		address *felt.Felt
		key     *big.Int
		wantErr string
	}{
		{name: "nil address", key: testKey, wantErr: "account address is required"},
		{name: "nil key", address: testAddress, wantErr: "private key is required"},
		{name: "zero key", address: testAddress, key: big.NewInt(0), wantErr: "private key is required"},
		{name: "negative key", address: testAddress, key: big.NewInt(-5), wantErr: "private key is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAccount(client, tt.address, tt.key, "0xacc", account.CairoV0, time.Millisecond)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewAccount(t *testing.T) {
	acct, err := NewAccount(accountNode(t, nil), testAddress, testKey, "0xacc", account.CairoV0, 0)
	require.NoError(t, err)
	assert.Equal(t, testAddress, acct.Address())
	assert.Equal(t, time.Second, acct.pollInterval)
}

func TestInvokeCalldataFollowsCairoVersion(t *testing.T) {
	call := snrpc.InvokeFunctionCall{
		ContractAddress: new(felt.Felt).SetUint64(0xc0de),
		FunctionName:    "deploy_contract",
		CallData:        []*felt.Felt{new(felt.Felt).SetUint64(1), new(felt.Felt).SetUint64(2)},
	}

	tests := []struct {
		name    string
		cairo   account.CairoVersion
		wantLen int
	}{
		// [calls, to, selector, offset, len, total, data...]
		{name: "cairo0", cairo: account.CairoV0, wantLen: 8},
		// [calls, to, selector, len, data...]
		{name: "cairo2", cairo: account.CairoV2, wantLen: 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sent := make(chan []string, 1)
			client := accountNode(t, map[string]any{
				"starknet_addInvokeTransaction": nodeFunc(func(params []json.RawMessage) any {
					var txn struct {
						Calldata []string `json:"calldata"`
					}
					if len(params) > 0 {
						_ = json.Unmarshal(params[0], &txn)
					}
					sent <- txn.Calldata
					return map[string]any{"transaction_hash": "0xabc"}
				}),
			})
			acct, err := NewAccount(client, testAddress, testKey, "0xacc", tt.cairo, time.Millisecond)
			require.NoError(t, err)

			txHash, err := acct.Invoke(context.Background(), []snrpc.InvokeFunctionCall{call})
			require.NoError(t, err)
			assert.Equal(t, "0xabc", txHash.String())
			assert.Len(t, <-sent, tt.wantLen)
		})
	}
}

func TestInvokeNodeRejection(t *testing.T) {
	client := accountNode(t, map[string]any{
		"starknet_addInvokeTransaction": nodeError{Code: 55, Message: "Account validation failed"},
	})
	acct, err := NewAccount(client, testAddress, testKey, "0xacc", account.CairoV0, time.Millisecond)
	require.NoError(t, err)

	_, err = acct.Invoke(context.Background(), []snrpc.InvokeFunctionCall{{
		ContractAddress: new(felt.Felt).SetUint64(0xc0de),
		FunctionName:    "deployContract",
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invoke failed")
}

func TestDeclareReturnsNodeHashes(t *testing.T) {
	class, err := utils.UnmarshalJSONFileToType[contracts.ContractClass](testSierra, "")
	require.NoError(t, err)
	casm, err := contracts.UnmarshalCasmClass(testCasm)
	require.NoError(t, err)

	client := accountNode(t, map[string]any{
		"starknet_addDeclareTransaction": map[string]any{
			"transaction_hash": "0xdec1",
			"class_hash":       "0xc1a55",
		},
	})
	acct, err := NewAccount(client, testAddress, testKey, "0xacc", account.CairoV2, time.Millisecond)
	require.NoError(t, err)

	txHash, classHash, err := acct.Declare(context.Background(), casm, class)
	require.NoError(t, err)
	assert.Equal(t, "0xdec1", txHash.String())
	assert.Equal(t, "0xc1a55", classHash.String())
}

func TestWaitForReceipt(t *testing.T) {
	txHash := new(felt.Felt).SetUint64(0xabc)

	t.Run("succeeded", func(t *testing.T) {
		client := accountNode(t, map[string]any{
			"starknet_getTransactionReceipt": receipt("0xabc", "SUCCEEDED", ""),
		})
		acct, err := NewAccount(client, testAddress, testKey, "0xacc", account.CairoV0, time.Millisecond)
		require.NoError(t, err)

		r, err := acct.WaitForReceipt(context.Background(), txHash)
		require.NoError(t, err)
		assert.Equal(t, txHash, r.TxHash)
		assert.Equal(t, "SUCCEEDED", r.ExecutionStatus)
		assert.Equal(t, "ACCEPTED_ON_L2", r.FinalityStatus)
		assert.Empty(t, r.RevertReason)
	})

	t.Run("reverted", func(t *testing.T) {
		client := accountNode(t, map[string]any{
			"starknet_getTransactionReceipt": receipt("0xabc", "REVERTED", "Error in the called contract"),
		})
		acct, err := NewAccount(client, testAddress, testKey, "0xacc", account.CairoV0, time.Millisecond)
		require.NoError(t, err)

		r, err := acct.WaitForReceipt(context.Background(), txHash)
		require.ErrorIs(t, err, ErrTransactionReverted)
		require.NotNil(t, r)
		assert.Equal(t, "REVERTED", r.ExecutionStatus)
		assert.Equal(t, "Error in the called contract", r.RevertReason)
	})

	t.Run("node error", func(t *testing.T) {
		client := accountNode(t, map[string]any{
			"starknet_getTransactionReceipt": nodeError{Code: 63, Message: "An unexpected error occurred"},
		})
		acct, err := NewAccount(client, testAddress, testKey, "0xacc", account.CairoV0, time.Millisecond)
		require.NoError(t, err)

		r, err := acct.WaitForReceipt(context.Background(), txHash)
		require.Error(t, err)
		assert.Nil(t, r)
		assert.NotErrorIs(t, err, ErrTransactionReverted)
	})
}
