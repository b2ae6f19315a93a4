// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package artifact locates and loads compiled Cairo contract classes: the
// Sierra contract class that is declared and the CASM class whose compiled
// hash the declare transaction commits to.
package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/contracts"
	"github.com/NethermindEth/starknet.go/hash"
	"github.com/NethermindEth/starknet.go/utils"
)

// Artifact is a loaded Sierra/CASM pair.
type Artifact struct {
	Paths
	Class *contracts.ContractClass
	Casm  *contracts.CasmClass
	// ClassHash is computed locally from the Sierra class.
	ClassHash *felt.Felt
	// Fingerprint is the hex sha256 of the Sierra file.
	Fingerprint string
}

// Load parses both artifact files and computes the class hash.
func Load(p Paths) (*Artifact, error) {
	class, err := utils.UnmarshalJSONFileToType[contracts.ContractClass](p.Sierra, "")
	if err != nil {
		return nil, fmt.Errorf("failed to parse sierra class %s: %w", p.Sierra, err)
	}

	casm, err := contracts.UnmarshalCasmClass(p.Casm)
	if err != nil {
		return nil, fmt.Errorf("failed to parse casm class %s: %w", p.Casm, err)
	}

	fp, err := Fingerprint(p.Sierra)
	if err != nil {
		return nil, err
	}

	return &Artifact{
		Paths:       p,
		Class:       class,
		Casm:        casm,
		ClassHash:   hash.ClassHash(class),
		Fingerprint: fp,
	}, nil
}

// Fingerprint returns the hex-encoded sha256 of the file at path.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
