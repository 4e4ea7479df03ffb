// Package memconfig runs the generation pipeline (layout, forward matrix,
// GF(2) inverse, identifier) and reads, writes and compares the resulting
// MemConfiguration records.
package memconfig

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/colorfulnotion/memconfig/gf2"
	"github.com/colorfulnotion/memconfig/layout"
	"github.com/colorfulnotion/memconfig/log"
	"github.com/colorfulnotion/memconfig/mapping"
	"github.com/colorfulnotion/memconfig/memerrors"
	"github.com/colorfulnotion/memconfig/telemetry"
)

// Input is everything one generation run depends on.
type Input struct {
	BankFunctions []mapping.BankFunction
	Cardinalities layout.Cardinalities
	Identifier    IdentifierFields
}

// DefaultInput pairs funcs with the default cardinalities and identifier fields.
func DefaultInput(funcs []mapping.BankFunction) Input {
	return Input{
		BankFunctions: funcs,
		Cardinalities: layout.DefaultCardinalities(),
		Identifier:    DefaultIdentifierFields(),
	}
}

type Options struct {
	// Strict fails the run instead of emitting a fallback identity ADDR_MTX.
	Strict bool
}

// Result is the output of a run plus the intermediate values behind it.
type Result struct {
	Config         MemConfiguration
	Layout         layout.AddressLayout
	Plan           layout.FieldPlan
	Forward        gf2.Matrix
	Inverse        mapping.Inverse
	BankFunctions  []mapping.BankFunction
	DroppedIndices []mapping.DroppedIndex
	Duplicates     [][2]int
}

// Generate derives a MemConfiguration from in. A LayoutError aborts before
// any matrix is built. A singular or inconsistent inverse yields an identity
// ADDR_MTX with Result.Inverse.Degraded() set, or an error under
// Options.Strict.
func Generate(ctx context.Context, in Input, opts Options) (res *Result, err error) {
	ctx, span := telemetry.Start(ctx, telemetry.SpanGenerate,
		attribute.Int("bank_functions", len(in.BankFunctions)),
		attribute.Bool("strict", opts.Strict),
	)
	defer func() { telemetry.End(span, err) }()

	if err := mapping.Validate(in.BankFunctions); err != nil {
		return nil, err
	}
	funcs := mapping.CloneFunctions(in.BankFunctions)

	l, plan, err := planLayout(ctx, len(funcs), in.Cardinalities)
	if err != nil {
		return nil, err
	}

	forward, dropped, dups := buildForward(ctx, funcs, l)
	inv := resolveInverse(ctx, forward)
	if inv.Degraded() {
		if opts.Strict {
			return nil, fmt.Errorf("%w: %v", memerrors.ErrMDegradedInverse, inv.Err)
		}
		log.Warn(log.GeneratorModule, "Falling back to identity ADDR_MTX", "outcome", inv.Outcome.String(), "err", inv.Err)
	}

	_, idSpan := telemetry.Start(ctx, telemetry.SpanIdentifier)
	id := PackIdentifier(in.Identifier)
	if over := in.Identifier.Overflowing(); len(over) > 0 {
		log.Warn(log.GeneratorModule, "Identifier fields overflow their 4-bit slot", "fields", over)
	}
	for _, line := range in.Identifier.Breakdown() {
		log.Debug(log.GeneratorModule, "identifier", "field", line)
	}
	idSpan.SetAttributes(attribute.Int64("identifier", int64(id)))
	telemetry.End(idSpan, nil)

	res = &Result{
		Config:         NewMemConfiguration(id, plan, forward, inv.Matrix),
		Layout:         l,
		Plan:           plan,
		Forward:        forward,
		Inverse:        inv,
		BankFunctions:  funcs,
		DroppedIndices: dropped,
		Duplicates:     dups,
	}
	log.Info(log.GeneratorModule, "Configuration generated",
		"identifier", fmt.Sprintf("0x%08X", id),
		"inverse", inv.Outcome.String(),
		"bank_functions", l.BankFunctions,
		"row_bits", l.RowBits,
		"col_bits", l.ColumnBits)
	return res, nil
}

func planLayout(ctx context.Context, numFuncs int, c layout.Cardinalities) (l layout.AddressLayout, plan layout.FieldPlan, err error) {
	_, span := telemetry.Start(ctx, telemetry.SpanLayout, attribute.Int("bank_functions", numFuncs))
	defer func() { telemetry.End(span, err) }()

	l, err = layout.NewAddressLayout(numFuncs)
	if err != nil {
		return l, plan, err
	}
	plan = layout.Plan(l, c)
	for _, f := range plan.Fields() {
		log.Debug(log.LayoutModule, "field", "name", f.Name, "width", f.Width, "shift", f.Shift, "mask", f.Mask)
	}
	if plan.TotalWidth() != l.Width {
		log.Warn(log.LayoutModule, "Field plan width differs from matrix width",
			"plan", plan.TotalWidth(), "matrix", l.Width,
			"bank_functions", l.BankFunctions, "rank", c.Rank, "bankgroup", c.BankGroup, "bank", c.Bank)
	}
	return l, plan, nil
}

func buildForward(ctx context.Context, funcs []mapping.BankFunction, l layout.AddressLayout) (gf2.Matrix, []mapping.DroppedIndex, [][2]int) {
	_, span := telemetry.Start(ctx, telemetry.SpanForwardMatrix, attribute.Int("width", l.Width))
	defer telemetry.End(span, nil)

	dropped := mapping.DroppedIndices(funcs, l)
	for _, d := range dropped {
		log.Debug(log.MatrixModule, "bit index outside matrix dropped", "function", d.Function, "bit", d.Bit)
	}
	dups := mapping.DuplicateFunctions(funcs, l)
	if len(dups) > 0 {
		log.Warn(log.MatrixModule, "Identical bank functions make DRAM_MTX singular", "pairs", dups)
	}
	span.SetAttributes(attribute.Int("dropped_indices", len(dropped)))
	return mapping.BuildForwardMatrix(funcs, l), dropped, dups
}

func resolveInverse(ctx context.Context, forward gf2.Matrix) mapping.Inverse {
	_, span := telemetry.Start(ctx, telemetry.SpanInverse, attribute.Int("size", forward.Size()))
	inv := mapping.ResolveInverse(forward)
	span.SetAttributes(attribute.String("outcome", inv.Outcome.String()))
	telemetry.End(span, inv.Err)
	return inv
}
