// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/account"
	"github.com/NethermindEth/starknet.go/utils"

	"github.com/dotandev/stark-deploy/internal/rpc"
)

// Params is the validated, typed form of a Config.
type Params struct {
	Network    string
	RPCURL     string
	ChainID    string
	Account    *felt.Felt
	PrivateKey *big.Int
	// AccountCairo selects the account's calldata encoding.
	AccountCairo account.CairoVersion
	// PublicKey identifies the signing key in the in-memory keystore.
	PublicKey string
	// ClassHash is nil when no class hash was configured.
	ClassHash  *felt.Felt
	Salt       *felt.Felt
	UDCVersion utils.UDCVersion
	// UDC is nil unless an address to check the UDC version against was
	// configured.
	UDC             *felt.Felt
	Unique          bool
	ClientPublicKey *felt.Felt
	ServerPublicKey *felt.Felt
}

// ConstructorCalldata returns the constructor arguments in declaration
// order: client public key, then server public key.
func (p *Params) ConstructorCalldata() []*felt.Felt {
	return []*felt.Felt{p.ClientPublicKey, p.ServerPublicKey}
}

// Params validates every field and returns the typed parameters. All
// failures are reported together.
func (c Config) Params() (*Params, error) {
	var errs []error
	p := &Params{
		Network:   c.Network,
		ChainID:   strings.TrimSpace(c.ChainID),
		PublicKey: strings.TrimSpace(c.PublicKey),
		Unique:    c.Unique,
	}

	url, err := rpc.ResolveURL(c.Network, c.RPCURL)
	if err != nil {
		errs = append(errs, err)
	}
	p.RPCURL = url

	p.Account = parseFelt("account_address", c.AccountAddress, true, &errs)
	p.Salt = parseFelt("salt", c.Salt, true, &errs)
	p.UDC = parseFelt("udc_address", c.UDCAddress, false, &errs)
	p.ClassHash = parseFelt("class_hash", c.ClassHash, false, &errs)
	p.ClientPublicKey = parseFelt("client_public_key", c.ClientPublicKey, true, &errs)
	p.ServerPublicKey = parseFelt("server_public_key", c.ServerPublicKey, true, &errs)

	if v, err := ParseUDCVersion(c.UDCVersion); err != nil {
		errs = append(errs, err)
	} else {
		p.UDCVersion = v
	}
	if v, err := ParseAccountCairo(c.AccountCairo); err != nil {
		errs = append(errs, err)
	} else {
		p.AccountCairo = v
	}

	key, ok := new(big.Int).SetString(strings.TrimSpace(c.PrivateKey), 0)
	switch {
	case strings.TrimSpace(c.PrivateKey) == "":
		errs = append(errs, errors.New("private_key is required"))
	case !ok || key.Sign() <= 0:
		errs = append(errs, errors.New("private_key must be a positive hex or decimal integer"))
	default:
		p.PrivateKey = key
	}

	// An explicit endpoint may serve any chain; only presets imply one.
	if p.ChainID == "" && strings.TrimSpace(c.RPCURL) == "" {
		p.ChainID = rpc.PresetChainID(c.Network)
	}

	if p.PublicKey == "" && p.Account != nil {
		p.PublicKey = p.Account.String()
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return p, nil
}

// ParseUDCVersion maps a udc_version name to the SDK's UDC version. The
// empty name selects the Cairo 0 UDC.
func ParseUDCVersion(name string) (utils.UDCVersion, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "cairo0", "v0", "0":
		return utils.UDCCairoV0, nil
	case "cairo2", "v2", "2":
		return utils.UDCCairoV2, nil
	default:
		return 0, fmt.Errorf("udc_version: unknown version %q (use cairo0 or cairo2)", name)
	}
}

// ParseAccountCairo validates account_cairo_version.
func ParseAccountCairo(v int) (account.CairoVersion, error) {
	switch account.CairoVersion(v) {
	case account.CairoV0, account.CairoV2:
		return account.CairoVersion(v), nil
	default:
		return 0, fmt.Errorf("account_cairo_version: must be 0 or 2, got %d", v)
	}
}

func parseFelt(field, value string, required bool, errs *[]error) *felt.Felt {
	value = strings.TrimSpace(value)
	if value == "" {
		if required {
			*errs = append(*errs, fmt.Errorf("%s is required", field))
		}
		return nil
	}
	f, err := utils.HexToFelt(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", field, err))
		return nil
	}
	return f
}
