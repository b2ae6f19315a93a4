// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writePair(t *testing.T, dir, stem string) string {
	t.Helper()
	writeFile(t, dir, stem+CasmSuffix, "{}")
	return writeFile(t, dir, stem+SierraSuffix, "{}")
}

func TestIsSierraFile(t *testing.T) {
	assert.True(t, IsSierraFile("pkg_Agreement.contract_class.json"))
	assert.False(t, IsSierraFile("pkg_Agreement.compiled_contract_class.json"))
	assert.False(t, IsSierraFile("pkg_Agreement.json"))
}

func TestCasmPathFor(t *testing.T) {
	assert.Equal(t, "target/dev/a_B.compiled_contract_class.json", CasmPathFor("target/dev/a_B.contract_class.json"))
	assert.Equal(t, "other.json", CasmPathFor("other.json"))
}

func TestResolveSingleContract(t *testing.T) {
	dir := t.TempDir()
	sierra := writePair(t, dir, "agreement_version_2_AgreementVersion2")

	p, err := NewResolver(WithTargetDir(dir)).Resolve()
	require.NoError(t, err)
	assert.Equal(t, sierra, p.Sierra)
	assert.Equal(t, filepath.Join(dir, "agreement_version_2_AgreementVersion2"+CasmSuffix), p.Casm)
}

func TestResolveByContractName(t *testing.T) {
	dir := t.TempDir()
	writePair(t, dir, "pkg_Token")
	sierra := writePair(t, dir, "pkg_Agreement")

	_, err := NewResolver(WithTargetDir(dir)).Resolve()
	require.ErrorIs(t, err, ErrAmbiguousArtifact)

	p, err := NewResolver(WithTargetDir(dir), WithContractName("Agreement")).Resolve()
	require.NoError(t, err)
	assert.Equal(t, sierra, p.Sierra)

	p, err = NewResolver(WithTargetDir(dir), WithContractName("pkg_Agreement")).Resolve()
	require.NoError(t, err)
	assert.Equal(t, sierra, p.Sierra)

	_, err = NewResolver(WithTargetDir(dir), WithContractName("Missing")).Resolve()
	require.ErrorIs(t, err, ErrArtifactNotFound)
}

func TestResolveMissingCasm(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pkg_Agreement"+SierraSuffix, "{}")

	_, err := NewResolver(WithTargetDir(dir)).Resolve()
	require.ErrorIs(t, err, ErrArtifactNotFound)
}

func TestResolveMissingDirectory(t *testing.T) {
	_, err := NewResolver(WithTargetDir(filepath.Join(t.TempDir(), "nope"))).Resolve()
	require.ErrorIs(t, err, ErrArtifactNotFound)
}

func TestResolveExplicitPaths(t *testing.T) {
	dir := t.TempDir()
	sierra := writeFile(t, dir, "custom.json", "{}")
	casm := writeFile(t, dir, "custom.casm.json", "{}")

	p, err := NewResolver(WithPaths(sierra, casm)).Resolve()
	require.NoError(t, err)
	assert.Equal(t, Paths{Sierra: sierra, Casm: casm}, p)

	// Without a CASM path one is derived; custom.json has no Scarb suffix so
	// the derived path equals the Sierra path and is rejected.
	_, err = NewResolver(WithPaths(sierra, "")).Resolve()
	require.Error(t, err)

	derived := writePair(t, dir, "pkg_Agreement")
	p, err = NewResolver(WithPaths(derived, "")).Resolve()
	require.NoError(t, err)
	assert.Equal(t, CasmPathFor(derived), p.Casm)
}

func TestFingerprint(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.json", `{"sierra_program":[]}`)

	got, err := Fingerprint(path)
	require.NoError(t, err)

	sum := sha256.Sum256([]byte(`{"sierra_program":[]}`))
	assert.Equal(t, hex.EncodeToString(sum[:]), got)

	_, err = Fingerprint(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}

func TestLoadRejectsInvalidArtifacts(t *testing.T) {
	dir := t.TempDir()
	sierra := writeFile(t, dir, "pkg_A"+SierraSuffix, "not json")
	casm := writeFile(t, dir, "pkg_A"+CasmSuffix, "not json")

	_, err := Load(Paths{Sierra: sierra, Casm: casm})
	require.Error(t, err)

	_, err = Load(Paths{Sierra: filepath.Join(dir, "missing"), Casm: casm})
	require.Error(t, err)
}

func TestLoadScarbArtifacts(t *testing.T) {
	p, err := NewResolver(WithTargetDir("testdata"), WithContractName("HelloStarknet")).Resolve()
	require.NoError(t, err)

	a, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "0x224518978adb773cfd4862a894e9d333192fbd24bc83841dc7d4167c09b89c5", a.ClassHash.String())
	require.NotNil(t, a.Class)
	require.NotNil(t, a.Casm)
	assert.NotEmpty(t, a.Class.SierraProgram)

	want, err := Fingerprint(p.Sierra)
	require.NoError(t, err)
	assert.Equal(t, want, a.Fingerprint)
	assert.Len(t, a.Fingerprint, 64)
}
