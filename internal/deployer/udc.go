// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package deployer

import (
	"errors"
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	snrpc "github.com/NethermindEth/starknet.go/rpc"
	"github.com/NethermindEth/starknet.go/utils"
)

// ErrUDCMismatch indicates the configured UDC address is not the one the
// selected UDC version lives at.
var ErrUDCMismatch = errors.New("udc address does not match udc version")

// UDCCall builds the Universal Deployer invocation for p. A unique
// deployment mixes the deployer address into the salt; otherwise the
// deployment is origin independent.
func UDCCall(p DeployParams) (snrpc.InvokeFunctionCall, error) {
	call, _, err := utils.BuildUDCCalldata(p.ClassHash, p.ConstructorCalldata, &utils.UDCOptions{
		Salt:              p.Salt,
		OriginIndependent: !p.Unique,
		UDCVersion:        p.UDCVersion,
	})
	if err != nil {
		return call, fmt.Errorf("failed to build UDC call: %w", err)
	}
	if p.UDC != nil && !p.UDC.Equal(call.ContractAddress) {
		return call, fmt.Errorf("%w: configured %s, expected %s", ErrUDCMismatch, p.UDC, call.ContractAddress)
	}
	return call, nil
}

// ComputeAddress predicts the address the UDC assigns when caller sends
// the deployment.
func ComputeAddress(caller *felt.Felt, p DeployParams) *felt.Felt {
	var origin *felt.Felt
	if p.Unique {
		origin = caller
	}
	return utils.PrecomputeAddressForUDC(p.ClassHash, p.Salt, p.ConstructorCalldata, p.UDCVersion, origin)
}
