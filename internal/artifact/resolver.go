// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dotandev/stark-deploy/internal/logger"
)

// Scarb output naming: <package>_<Contract>.contract_class.json for Sierra and
// <package>_<Contract>.compiled_contract_class.json for CASM.
const (
	SierraSuffix = ".contract_class.json"
	CasmSuffix   = ".compiled_contract_class.json"
)

var (
	// ErrArtifactNotFound indicates no Sierra/CASM pair could be located
	ErrArtifactNotFound = errors.New("contract artifact not found")
	// ErrAmbiguousArtifact indicates several contracts matched and none was selected
	ErrAmbiguousArtifact = errors.New("ambiguous contract artifact")
)

// Paths locates the two compiled files of one contract.
type Paths struct {
	Sierra string `json:"sierra"`
	Casm   string `json:"casm"`
}

// Resolver finds compiled contract artifacts, either from explicit paths or
// by scanning a build directory.
type Resolver struct {
	targetDir    string
	contractName string
	sierraPath   string
	casmPath     string
}

// ResolverOption is a functional option for configuring the Resolver.
type ResolverOption func(*Resolver)

// WithTargetDir sets the directory scanned for artifacts.
func WithTargetDir(dir string) ResolverOption {
	return func(r *Resolver) {
		r.targetDir = dir
	}
}

// WithContractName selects one contract when the build directory holds
// several. It matches either the full artifact stem or the part after the
// package prefix.
func WithContractName(name string) ResolverOption {
	return func(r *Resolver) {
		r.contractName = name
	}
}

// WithPaths bypasses discovery. An empty casm path is derived from the
// Sierra path.
func WithPaths(sierra, casm string) ResolverOption {
	return func(r *Resolver) {
		r.sierraPath = sierra
		r.casmPath = casm
	}
}

// NewResolver creates a Resolver with the given options.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		targetDir: "target/dev",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the Sierra and CASM paths of the selected contract.
func (r *Resolver) Resolve() (Paths, error) {
	if r.sierraPath != "" {
		casm := r.casmPath
		if casm == "" {
			casm = CasmPathFor(r.sierraPath)
		}
		p := Paths{Sierra: r.sierraPath, Casm: casm}
		return p, p.check()
	}

	if _, err := os.Stat(r.targetDir); os.IsNotExist(err) {
		logger.Logger.Debug("Artifact directory not found", "path", r.targetDir)
		return Paths{}, fmt.Errorf("%w: directory %s does not exist", ErrArtifactNotFound, r.targetDir)
	}

	entries, err := os.ReadDir(r.targetDir)
	if err != nil {
		return Paths{}, fmt.Errorf("failed to read artifact directory: %w", err)
	}

	var matches []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !IsSierraFile(name) {
			continue
		}
		if r.contractName != "" && !matchesContract(name, r.contractName) {
			continue
		}
		matches = append(matches, name)
	}
	sort.Strings(matches)

	switch len(matches) {
	case 0:
		if r.contractName != "" {
			return Paths{}, fmt.Errorf("%w: no contract named %q in %s", ErrArtifactNotFound, r.contractName, r.targetDir)
		}
		return Paths{}, fmt.Errorf("%w: no *%s in %s", ErrArtifactNotFound, SierraSuffix, r.targetDir)
	case 1:
	default:
		return Paths{}, fmt.Errorf("%w: %s (select one with --contract)", ErrAmbiguousArtifact, strings.Join(matches, ", "))
	}

	sierra := filepath.Join(r.targetDir, matches[0])
	p := Paths{Sierra: sierra, Casm: CasmPathFor(sierra)}
	if err := p.check(); err != nil {
		return Paths{}, err
	}

	logger.Logger.Info("Discovered contract artifact", "sierra", p.Sierra, "casm", p.Casm)
	return p, nil
}

// IsSierraFile reports whether name is a Sierra artifact (and not the CASM
// file, which shares the suffix).
func IsSierraFile(name string) bool {
	return strings.HasSuffix(name, SierraSuffix) && !strings.HasSuffix(name, CasmSuffix)
}

// CasmPathFor derives the CASM artifact path from a Sierra artifact path.
func CasmPathFor(sierraPath string) string {
	if strings.HasSuffix(sierraPath, SierraSuffix) {
		return strings.TrimSuffix(sierraPath, SierraSuffix) + CasmSuffix
	}
	return sierraPath
}

func matchesContract(fileName, contract string) bool {
	stem := strings.TrimSuffix(fileName, SierraSuffix)
	return stem == contract || strings.HasSuffix(stem, "_"+contract)
}

func (p Paths) check() error {
	for _, path := range []string{p.Sierra, p.Casm} {
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
		}
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%w: %s is a directory", ErrArtifactNotFound, path)
		}
	}
	if p.Sierra == p.Casm {
		return fmt.Errorf("sierra and casm paths must differ (%s)", p.Sierra)
	}
	return nil
}
