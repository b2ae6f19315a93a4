// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package config resolves deployment parameters from built-in defaults, a
// JSON input file, the environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// STARK_DEPLOY_RPC_URL.
const EnvPrefix = "STARK_DEPLOY"

// Config is the flat set of deployment parameters. Felt-valued fields are
// kept as hex strings until Params is called.
type Config struct {
	Network         string        `mapstructure:"network" json:"network"`
	RPCURL          string        `mapstructure:"rpc_url" json:"rpc_url,omitempty"`
	ChainID         string        `mapstructure:"chain_id" json:"chain_id,omitempty"`
	AccountAddress  string        `mapstructure:"account_address" json:"account_address"`
	PrivateKey      string        `mapstructure:"private_key" json:"private_key"`
	PublicKey       string        `mapstructure:"public_key" json:"public_key,omitempty"`
	ClassHash       string        `mapstructure:"class_hash" json:"class_hash,omitempty"`
	Salt            string        `mapstructure:"salt" json:"salt"`
	UDCAddress      string        `mapstructure:"udc_address" json:"udc_address,omitempty"`
	UDCVersion      string        `mapstructure:"udc_version" json:"udc_version"`
	AccountCairo    int           `mapstructure:"account_cairo_version" json:"account_cairo_version"`
	Unique          bool          `mapstructure:"unique" json:"unique"`
	ClientPublicKey string        `mapstructure:"client_public_key" json:"client_public_key"`
	ServerPublicKey string        `mapstructure:"server_public_key" json:"server_public_key"`
	SierraPath      string        `mapstructure:"sierra_path" json:"sierra_path,omitempty"`
	CasmPath        string        `mapstructure:"casm_path" json:"casm_path,omitempty"`
	ArtifactDir     string        `mapstructure:"artifact_dir" json:"artifact_dir,omitempty"`
	ContractName    string        `mapstructure:"contract_name" json:"contract_name,omitempty"`
	Wait            bool          `mapstructure:"wait" json:"wait"`
	PollInterval    time.Duration `mapstructure:"poll_interval" json:"poll_interval"`
	HistoryDB       string        `mapstructure:"history_db" json:"history_db,omitempty"`
	OTLPEndpoint    string        `mapstructure:"otlp_endpoint" json:"otlp_endpoint,omitempty"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"network":               "network",
	"rpc-url":               "rpc_url",
	"chain-id":              "chain_id",
	"account":               "account_address",
	"private-key":           "private_key",
	"public-key":            "public_key",
	"class-hash":            "class_hash",
	"salt":                  "salt",
	"udc":                   "udc_address",
	"udc-version":           "udc_version",
	"account-cairo-version": "account_cairo_version",
	"unique":                "unique",
	"client-public-key":     "client_public_key",
	"server-public-key":     "server_public_key",
	"sierra":                "sierra_path",
	"casm":                  "casm_path",
	"artifact-dir":          "artifact_dir",
	"contract":              "contract_name",
	"wait":                  "wait",
	"poll-interval":         "poll_interval",
	"history-db":            "history_db",
	"otlp-endpoint":         "otlp_endpoint",
}

// Load layers defaults, the JSON input file at path (skipped when path is
// empty), STARK_DEPLOY_* environment variables and any changed flags, in
// increasing order of priority.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	for key, val := range Defaults().values() {
		v.SetDefault(key, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read input file %s: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	return &cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none
// are given) into the process environment. Missing files are ignored;
// variables already set are kept.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// Redacted returns a copy safe to print: the private key is masked.
func (c Config) Redacted() Config {
	c.PrivateKey = mask(c.PrivateKey)
	return c
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 12 {
		return "****"
	}
	return secret[:6] + "..." + secret[len(secret)-4:]
}

func (c Config) values() map[string]any {
	return map[string]any{
		"network":               c.Network,
		"rpc_url":               c.RPCURL,
		"chain_id":              c.ChainID,
		"account_address":       c.AccountAddress,
		"private_key":           c.PrivateKey,
		"public_key":            c.PublicKey,
		"class_hash":            c.ClassHash,
		"salt":                  c.Salt,
		"udc_address":           c.UDCAddress,
		"udc_version":           c.UDCVersion,
		"account_cairo_version": c.AccountCairo,
		"unique":                c.Unique,
		"client_public_key":     c.ClientPublicKey,
		"server_public_key":     c.ServerPublicKey,
		"sierra_path":           c.SierraPath,
		"casm_path":             c.CasmPath,
		"artifact_dir":          c.ArtifactDir,
		"contract_name":         c.ContractName,
		"wait":                  c.Wait,
		"poll_interval":         c.PollInterval,
		"history_db":            c.HistoryDB,
		"otlp_endpoint":         c.OTLPEndpoint,
	}
}

// ErrInvalidConfig wraps every field-level validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")
