// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package agreement decodes signed price agreements into contract calldata.
package agreement

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/NethermindEth/juno/core/felt"
)

// ErrInvalidField indicates an agreement field is not a valid field element.
var ErrInvalidField = errors.New("invalid agreement field")

// Agreement is a price agreement signed by both the server and the client.
// Values are decimal or 0x-prefixed hex strings.
type Agreement struct {
	Quantity         string `json:"quantity"`
	Nonce            string `json:"nonce"`
	Price            string `json:"price"`
	ServerSignatureR string `json:"serverSignatureR"`
	ServerSignatureS string `json:"serverSignatureS"`
	ClientSignatureR string `json:"clientSignatureR"`
	ClientSignatureS string `json:"clientSignatureS"`
}

// Felts is an Agreement with every field parsed.
type Felts struct {
	Quantity         *felt.Felt `json:"quantity"`
	Nonce            *felt.Felt `json:"nonce"`
	Price            *felt.Felt `json:"price"`
	ServerSignatureR *felt.Felt `json:"serverSignatureR"`
	ServerSignatureS *felt.Felt `json:"serverSignatureS"`
	ClientSignatureR *felt.Felt `json:"clientSignatureR"`
	ClientSignatureS *felt.Felt `json:"clientSignatureS"`
}

// Load reads an agreement from a JSON file.
func Load(path string) (*Agreement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read agreement: %w", err)
	}
	return Parse(data)
}

// Parse decodes an agreement document. Unknown fields are rejected.
func Parse(data []byte) (*Agreement, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var a Agreement
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("failed to decode agreement: %w", err)
	}
	return &a, nil
}

// Felts converts every field, reporting all invalid fields at once.
func (a *Agreement) Felts() (*Felts, error) {
	var errs []error
	conv := func(name, v string) *felt.Felt {
		f, err := parseFelt(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w %s: %v", ErrInvalidField, name, err))
		}
		return f
	}

	out := &Felts{
		Quantity:         conv("quantity", a.Quantity),
		Nonce:            conv("nonce", a.Nonce),
		Price:            conv("price", a.Price),
		ServerSignatureR: conv("serverSignatureR", a.ServerSignatureR),
		ServerSignatureS: conv("serverSignatureS", a.ServerSignatureS),
		ClientSignatureR: conv("clientSignatureR", a.ClientSignatureR),
		ClientSignatureS: conv("clientSignatureS", a.ClientSignatureS),
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// Calldata returns the fields in declaration order.
func (f *Felts) Calldata() []*felt.Felt {
	return []*felt.Felt{
		f.Quantity,
		f.Nonce,
		f.Price,
		f.ServerSignatureR,
		f.ServerSignatureS,
		f.ClientSignatureR,
		f.ClientSignatureS,
	}
}

func parseFelt(s string) (*felt.Felt, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty value")
	}
	n, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, fmt.Errorf("%q is not a number", s)
	}
	if n.Sign() < 0 {
		return nil, fmt.Errorf("%q is negative", s)
	}
	f := new(felt.Felt).SetBigInt(n)
	if f.BigInt(new(big.Int)).Cmp(n) != 0 {
		return nil, fmt.Errorf("%q exceeds the field modulus", s)
	}
	return f, nil
}
