// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/NethermindEth/juno/core/felt"
	snrpc "github.com/NethermindEth/starknet.go/rpc"
	"github.com/NethermindEth/starknet.go/utils"
	"github.com/hashicorp/go-version"

	"github.com/dotandev/stark-deploy/internal/logger"
)

// Network presets.
const (
	DevnetURL  = "http://localhost:5050/rpc"
	SepoliaURL = "https://starknet-sepolia.public.blastapi.io/rpc/v0_8"
	MainnetURL = "https://starknet-mainnet.public.blastapi.io/rpc/v0_8"
)

// SupportedSpecVersions is the range of Starknet JSON-RPC spec versions the
// deployer has been run against.
const SupportedSpecVersions = ">= 0.7.0, < 0.10.0"

// classHashNotFoundCode is the JSON-RPC error code for CLASS_HASH_NOT_FOUND.
const classHashNotFoundCode = 28

var (
	// ErrInvalidURL indicates the RPC endpoint is not an absolute http(s) URL
	ErrInvalidURL = errors.New("invalid rpc url")
	// ErrChainIDMismatch indicates the node serves a different chain than expected
	ErrChainIDMismatch = errors.New("chain id mismatch")
)

// Client handles read-only interactions with a Starknet node.
type Client struct {
	Provider *snrpc.Provider
	URL      string
}

// ResolveURL returns the endpoint for rawURL, or for the named network
// preset when rawURL is empty. An unknown network name is an error either
// way.
func ResolveURL(network, rawURL string) (string, error) {
	preset, err := presetURL(network)
	if err != nil {
		return "", err
	}
	target := strings.TrimSpace(rawURL)
	if target == "" {
		target = preset
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("%w: failed to parse url: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q in %s", ErrInvalidURL, u.Scheme, target)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host in %s", ErrInvalidURL, target)
	}
	return u.String(), nil
}

func presetURL(network string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(network)) {
	case "devnet", "local", "":
		return DevnetURL, nil
	case "sepolia", "testnet":
		return SepoliaURL, nil
	case "mainnet":
		return MainnetURL, nil
	default:
		return "", fmt.Errorf("unsupported network: %s (use 'devnet', 'sepolia' or 'mainnet')", network)
	}
}

// PresetChainID returns the chain id served by a network preset, or "" for
// unknown names. Devnet forks Sepolia and reports its chain id.
func PresetChainID(network string) string {
	switch strings.ToLower(strings.TrimSpace(network)) {
	case "devnet", "local", "", "sepolia", "testnet":
		return "SN_SEPOLIA"
	case "mainnet":
		return "SN_MAIN"
	default:
		return ""
	}
}

// NewClient creates a client for the given network preset or explicit URL.
func NewClient(network, rawURL string) (*Client, error) {
	endpoint, err := ResolveURL(network, rawURL)
	if err != nil {
		return nil, err
	}

	provider, err := snrpc.NewProvider(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", endpoint, err)
	}

	return &Client{
		Provider: provider,
		URL:      endpoint,
	}, nil
}

// ChainID returns the node's chain id as a short string, e.g. SN_SEPOLIA.
func (c *Client) ChainID(ctx context.Context) (string, error) {
	id, err := c.Provider.ChainID(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch chain id: %w", err)
	}
	return NormalizeChainID(id), nil
}

// CheckChainID fails with ErrChainIDMismatch unless the node serves the
// expected chain. An empty expectation always passes.
func (c *Client) CheckChainID(ctx context.Context, expected string) error {
	if strings.TrimSpace(expected) == "" {
		return nil
	}
	got, err := c.ChainID(ctx)
	if err != nil {
		return err
	}
	if want := NormalizeChainID(expected); got != want {
		return fmt.Errorf("%w: node reports %s, expected %s", ErrChainIDMismatch, got, want)
	}
	return nil
}

// SpecVersion returns the JSON-RPC spec version the node implements.
func (c *Client) SpecVersion(ctx context.Context) (string, error) {
	v, err := c.Provider.SpecVersion(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch spec version: %w", err)
	}
	return v, nil
}

// CheckSpecVersion logs a warning when the node's spec version falls outside
// SupportedSpecVersions. It only fails when the node cannot be queried.
func (c *Client) CheckSpecVersion(ctx context.Context) (string, error) {
	v, err := c.SpecVersion(ctx)
	if err != nil {
		return "", err
	}
	ok, err := SpecVersionSupported(v)
	if err != nil {
		logger.Logger.Warn("Unparseable RPC spec version", "version", v, "error", err)
		return v, nil
	}
	if !ok {
		logger.Logger.Warn("RPC spec version outside tested range",
			"version", v,
			"supported", SupportedSpecVersions,
		)
	}
	return v, nil
}

// ClassDeclared reports whether the class is known to the node, including
// declarations still in the pending block.
func (c *Client) ClassDeclared(ctx context.Context, classHash *felt.Felt) (bool, error) {
	_, err := c.Provider.Class(ctx, snrpc.WithBlockTag(snrpc.BlockTagPending), classHash)
	if err == nil {
		return true, nil
	}
	var rpcErr *snrpc.RPCError
	if errors.As(err, &rpcErr) && rpcErr.Code == classHashNotFoundCode {
		return false, nil
	}
	return false, fmt.Errorf("failed to look up class %s: %w", classHash, err)
}

// SpecVersionSupported reports whether v satisfies SupportedSpecVersions.
// Pre-release suffixes are ignored.
func SpecVersionSupported(v string) (bool, error) {
	parsed, err := version.NewVersion(strings.TrimSpace(v))
	if err != nil {
		return false, err
	}
	constraints, err := version.NewConstraint(SupportedSpecVersions)
	if err != nil {
		return false, err
	}
	return constraints.Check(parsed.Core()), nil
}

// NormalizeChainID converts a hex-encoded chain id (0x534e5f5345504f4c4941)
// to its short-string form (SN_SEPOLIA). Other values are returned trimmed.
func NormalizeChainID(id string) string {
	id = strings.TrimSpace(id)
	if !strings.HasPrefix(id, "0x") && !strings.HasPrefix(id, "0X") {
		return id
	}
	f, err := utils.HexToFelt(id)
	if err != nil {
		return id
	}
	b := f.Bytes()
	return string(bytes.TrimLeft(b[:], "\x00"))
}
