// Package qompiler rewrites quantum circuits so they can run on a concrete
// device: gates are translated to the device's native set, virtual qubits
// are placed on physical ones, swaps are inserted to satisfy the coupling
// graph, and the result is cleaned up by local resynthesis.
package qompiler

import (
	"fmt"

	"github.com/qompiler/qompiler/basis"
	"github.com/qompiler/qompiler/circuit"
	"github.com/qompiler/qompiler/dag"
	"github.com/qompiler/qompiler/device"
	"github.com/qompiler/qompiler/equiv"
	"github.com/qompiler/qompiler/layout"
	"github.com/qompiler/qompiler/logger"
	"github.com/qompiler/qompiler/peephole"
	"github.com/qompiler/qompiler/props"
	"github.com/qompiler/qompiler/router"
)

// Options control the transpilation pipeline. The zero value of every field
// picks a sensible default.
type Options struct {
	// Library holds the gate equivalences used for basis translation.
	// Nil means the standard library.
	Library *equiv.Library
	// Seed drives every randomized stage.
	Seed int64
	// LayoutTrials is the number of random initial layouts tried.
	LayoutTrials int
	// SwapTrials is the number of parallel routing attempts.
	SwapTrials int
	// Heuristic selects the swap scoring strategy.
	Heuristic router.Heuristic
	// MaxIterations bounds the forward/backward layout refinement rounds.
	MaxIterations int
	// VF2CallLimit bounds the search for a swap-free layout.
	VF2CallLimit int
	// SkipPeephole disables the final resynthesis stage.
	SkipPeephole bool
}

// Result is a transpiled circuit together with the properties the pipeline
// stages recorded: the chosen layout, the final wire permutation, swap and
// resynthesis counts.
type Result struct {
	Circuit *circuit.Circuit
	Props   props.Set
}

// Transpile rewrites c to run on the target device.
func Transpile(c *circuit.Circuit, target *device.Target, opts Options) (*Result, error) {
	if target == nil {
		return nil, fmt.Errorf("qompiler: nil target")
	}
	lib := opts.Library
	if lib == nil {
		lib = equiv.Standard()
	}
	log := logger.Logger()
	ps := props.New()

	d, err := dag.FromCircuit(c)
	if err != nil {
		return nil, err
	}

	tr := basis.NewTranslator(lib, target)
	d, err = tr.Run(d)
	if err != nil {
		return nil, err
	}

	coupling := target.BuildCoupling()
	vf2 := &layout.VF2{Coupling: coupling, Target: target, CallLimit: opts.VF2CallLimit}
	l, reason, err := vf2.Run(d)
	if err != nil {
		return nil, err
	}
	ps.Put(props.KeyVF2StopReason, reason)

	if l != nil {
		log.Debug().Msg("swap-free layout found, skipping routing")
		d, err = layout.Apply(d, l, ps)
		if err != nil {
			return nil, err
		}
		ps.Put(props.KeySabreSwapCount, 0)
	} else {
		sl := &router.SabreLayout{
			Coupling:      coupling,
			Seed:          opts.Seed,
			Trials:        opts.LayoutTrials,
			MaxIterations: opts.MaxIterations,
		}
		l, err = sl.Run(d)
		if err != nil {
			return nil, err
		}
		d, err = layout.Apply(d, l, ps)
		if err != nil {
			return nil, err
		}
		sab := &router.Sabre{Coupling: coupling, Seed: opts.Seed, Heuristic: opts.Heuristic, Trials: opts.SwapTrials}
		var perm *layout.Layout
		d, perm, err = sab.Run(d, ps)
		if err != nil {
			return nil, err
		}
		// where each virtual qubit ends up after the inserted swaps
		ps.Put(props.KeyPostLayout, l.Expand().Compose(perm))
		// inserted swaps may not be native
		d, err = tr.Run(d)
		if err != nil {
			return nil, err
		}
	}

	if !opts.SkipPeephole {
		d, err = (&peephole.TwoQubit{Target: target}).Run(d, ps)
		if err != nil {
			return nil, err
		}
		d = peephole.RemoveIdentityEquiv(d)
		d, err = tr.Run(d)
		if err != nil {
			return nil, err
		}
	}

	out := d.ToCircuit()
	log.Info().
		Int("qubits", out.NumQubits).
		Int("ops", len(out.Ops)).
		Msg("transpiled circuit")
	return &Result{Circuit: out, Props: ps}, nil
}
