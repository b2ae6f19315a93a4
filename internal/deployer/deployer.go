// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package deployer declares a contract class when the network does not know
// it yet and deploys an instance through the Universal Deployer Contract.
package deployer

import (
	"context"
	"errors"
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/contracts"
	snrpc "github.com/NethermindEth/starknet.go/rpc"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dotandev/stark-deploy/internal/artifact"
	"github.com/dotandev/stark-deploy/internal/history"
	"github.com/dotandev/stark-deploy/internal/logger"
	"github.com/dotandev/stark-deploy/internal/rpc"
	"github.com/dotandev/stark-deploy/internal/telemetry"
)

var (
	// ErrClassNotDeclared indicates a deploy-only run for a class the node does not know
	ErrClassNotDeclared = errors.New("class is not declared")
	// ErrNoClassHash indicates neither an artifact nor a class hash was supplied
	ErrNoClassHash = errors.New("no class hash: provide a contract artifact or class_hash")
	// ErrMissingParam indicates a required deployment parameter is nil
	ErrMissingParam = errors.New("missing deployment parameter")
)

// Chain is the signing account plus node access the deployer needs.
// *rpc.Account implements it.
type Chain interface {
	Address() *felt.Felt
	CheckChainID(ctx context.Context, expected string) error
	ClassDeclared(ctx context.Context, classHash *felt.Felt) (bool, error)
	Declare(ctx context.Context, casm *contracts.CasmClass, class *contracts.ContractClass) (txHash, classHash *felt.Felt, err error)
	Invoke(ctx context.Context, calls []snrpc.InvokeFunctionCall) (*felt.Felt, error)
	WaitForReceipt(ctx context.Context, txHash *felt.Felt) (*rpc.Receipt, error)
}

// Recorder persists run outcomes. *history.Store implements it.
type Recorder interface {
	Create(ctx context.Context, e *history.Entry) error
	Update(ctx context.Context, e *history.Entry) error
}

var _ Chain = (*rpc.Account)(nil)
var _ Recorder = (*history.Store)(nil)

// Deployer runs declare and deploy transactions from one account.
type Deployer struct {
	chain    Chain
	recorder Recorder
	tracer   trace.Tracer
	wait     bool
}

// Option is a functional option for configuring the Deployer.
type Option func(*Deployer)

// WithRecorder records every Run in r.
func WithRecorder(r Recorder) Option {
	return func(d *Deployer) {
		d.recorder = r
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(d *Deployer) {
		d.tracer = t
	}
}

// WithWait controls whether transactions are followed until they have a
// receipt. It defaults to true.
func WithWait(wait bool) Option {
	return func(d *Deployer) {
		d.wait = wait
	}
}

// New creates a Deployer for chain.
func New(chain Chain, opts ...Option) *Deployer {
	d := &Deployer{
		chain:  chain,
		tracer: telemetry.Tracer(),
		wait:   true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Declare declares the artifact's class unless the node already knows it.
func (d *Deployer) Declare(ctx context.Context, a *artifact.Artifact) (res *DeclareResult, err error) {
	if a == nil || a.ClassHash == nil {
		return nil, fmt.Errorf("%w: artifact", ErrMissingParam)
	}

	ctx, span := d.tracer.Start(ctx, "deploy.declare",
		trace.WithAttributes(attribute.String("class_hash", a.ClassHash.String())))
	defer func() { endSpan(span, err) }()

	declared, err := d.chain.ClassDeclared(ctx, a.ClassHash)
	if err != nil {
		return nil, err
	}
	if declared {
		logger.Logger.Info("Class already declared", "class_hash", a.ClassHash)
		span.SetAttributes(attribute.Bool("already_declared", true))
		return &DeclareResult{ClassHash: a.ClassHash, AlreadyDeclared: true}, nil
	}

	txHash, classHash, err := d.chain.Declare(ctx, a.Casm, a.Class)
	if err != nil {
		return nil, err
	}
	if classHash == nil {
		classHash = a.ClassHash
	} else if !classHash.Equal(a.ClassHash) {
		logger.Logger.Warn("Node reported a different class hash",
			"local", a.ClassHash,
			"node", classHash,
		)
	}
	logger.Logger.Info("Declare transaction sent", "class_hash", classHash, "tx", txHash)

	res = &DeclareResult{ClassHash: classHash, TxHash: txHash}
	if d.wait {
		res.Receipt, err = d.chain.WaitForReceipt(ctx, txHash)
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

// Deploy sends the UDC deployment and returns the predicted contract address
// with the transaction hash.
func (d *Deployer) Deploy(ctx context.Context, p DeployParams) (res *DeployResult, err error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	call, err := UDCCall(p)
	if err != nil {
		return nil, err
	}

	address := ComputeAddress(d.chain.Address(), p)

	ctx, span := d.tracer.Start(ctx, "deploy.deploy", trace.WithAttributes(
		attribute.String("class_hash", p.ClassHash.String()),
		attribute.String("contract_address", address.String()),
		attribute.Bool("unique", p.Unique),
	))
	defer func() { endSpan(span, err) }()

	txHash, err := d.chain.Invoke(ctx, []snrpc.InvokeFunctionCall{call})
	if err != nil {
		return nil, err
	}
	logger.Logger.Info("Deploy transaction sent", "address", address, "tx", txHash)

	res = &DeployResult{ContractAddress: address, TxHash: txHash}
	if d.wait {
		res.Receipt, err = d.chain.WaitForReceipt(ctx, txHash)
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

// Run checks the chain id, declares the class if needed and deploys it. The
// returned Result is populated as far as the run got, even on error.
func (d *Deployer) Run(ctx context.Context, plan Plan) (res *Result, err error) {
	ctx, span := d.tracer.Start(ctx, "deploy.run", trace.WithAttributes(
		attribute.String("network", plan.Network),
	))
	defer func() { endSpan(span, err) }()

	classHash, err := ResolveClassHash(plan)
	if err != nil {
		return nil, err
	}

	res = &Result{
		Network:   plan.Network,
		Account:   d.chain.Address(),
		ClassHash: classHash,
		Salt:      plan.Deploy.Salt,
	}
	if plan.Artifact != nil {
		res.Fingerprint = plan.Artifact.Fingerprint
	}

	if err := d.chain.CheckChainID(ctx, plan.ExpectedChainID); err != nil {
		return res, err
	}

	entry := d.record(ctx, plan, res)
	defer func() { d.finish(ctx, entry, res, err) }()

	if plan.Artifact != nil {
		res.Declare, err = d.Declare(ctx, plan.Artifact)
		if err != nil {
			return res, err
		}
		classHash = res.Declare.ClassHash
		res.ClassHash = classHash
	} else {
		declared, err := d.chain.ClassDeclared(ctx, classHash)
		if err != nil {
			return res, err
		}
		if !declared {
			return res, fmt.Errorf("%w: %s", ErrClassNotDeclared, classHash)
		}
		res.Declare = &DeclareResult{ClassHash: classHash, AlreadyDeclared: true}
	}

	params := plan.Deploy
	params.ClassHash = classHash
	res.Deploy, err = d.Deploy(ctx, params)
	return res, err
}

// ResolveClassHash picks the class hash to deploy: the artifact's locally
// computed hash when an artifact is present, otherwise the configured one.
func ResolveClassHash(plan Plan) (*felt.Felt, error) {
	if plan.Artifact != nil && plan.Artifact.ClassHash != nil {
		if plan.ClassHash != nil && !plan.ClassHash.Equal(plan.Artifact.ClassHash) {
			logger.Logger.Warn("Configured class hash differs from artifact, using artifact",
				"configured", plan.ClassHash,
				"artifact", plan.Artifact.ClassHash,
			)
		}
		return plan.Artifact.ClassHash, nil
	}
	if plan.ClassHash != nil {
		return plan.ClassHash, nil
	}
	return nil, ErrNoClassHash
}

func (p DeployParams) validate() error {
	switch {
	case p.ClassHash == nil:
		return fmt.Errorf("%w: class hash", ErrMissingParam)
	case p.Salt == nil:
		return fmt.Errorf("%w: salt", ErrMissingParam)
	}
	for i, arg := range p.ConstructorCalldata {
		if arg == nil {
			return fmt.Errorf("%w: constructor argument %d", ErrMissingParam, i)
		}
	}
	return nil
}

// record opens a history entry. Ledger failures are logged and never abort
// the deployment.
func (d *Deployer) record(ctx context.Context, plan Plan, res *Result) *history.Entry {
	if d.recorder == nil {
		return nil
	}
	e := &history.Entry{
		Network:   plan.Network,
		RPCURL:    plan.RPCURL,
		Account:   feltString(res.Account),
		ClassHash: feltString(res.ClassHash),
		Salt:      feltString(res.Salt),
		Status:    history.StatusPending,
	}
	if err := d.recorder.Create(ctx, e); err != nil {
		logger.Logger.Warn("Failed to record deployment", "error", err)
		return nil
	}
	res.ID = e.ID
	return e
}

func (d *Deployer) finish(ctx context.Context, e *history.Entry, res *Result, runErr error) {
	if e == nil {
		return
	}
	e.ClassHash = feltString(res.ClassHash)
	if res.Declare != nil {
		e.DeclareTxHash = feltString(res.Declare.TxHash)
	}
	if res.Deploy != nil {
		e.ContractAddress = feltString(res.Deploy.ContractAddress)
		e.DeployTxHash = feltString(res.Deploy.TxHash)
	}
	e.Status = history.StatusSucceeded
	e.Error = ""
	if runErr != nil {
		e.Status = history.StatusFailed
		e.Error = runErr.Error()
	}
	// The run context may already be cancelled; the outcome is still worth
	// keeping.
	if err := d.recorder.Update(context.WithoutCancel(ctx), e); err != nil {
		logger.Logger.Warn("Failed to update deployment record", "id", e.ID, "error", err)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func feltString(f *felt.Felt) string {
	if f == nil {
		return ""
	}
	return f.String()
}
