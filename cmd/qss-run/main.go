// Command qss-run is a thin CLI front end over the solver: it wires flag
// values into solver.Option and variable.Params and drives the built-in
// linear-decay reference scenario (dx/dt = -x) to a configurable stop
// time. There is no FMU loader in scope here
// -- the model.Adapter contract is the integration point for a real one.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joeycumines/go-qss/model"
	"github.com/joeycumines/go-qss/qsslog"
	"github.com/joeycumines/go-qss/solver"
	"github.com/joeycumines/go-qss/variable"
)

const (
	xRef     model.Ref = 1
	derivRef model.Ref = 2
)

func main() {
	var (
		order   = flag.Int("order", 2, "QSS method order (1, 2, or 3)")
		tStop   = flag.Float64("tstop", 10, "simulation stop time")
		rtol    = flag.Float64("rtol", 1e-4, "relative tolerance")
		atol    = flag.Float64("atol", 1e-6, "absolute tolerance")
		dtPrint = flag.Float64("dtprint", 1, "progress print interval")
	)
	flag.Parse()

	if err := run(*order, *tStop, *rtol, *atol, *dtPrint); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(order int, tStop, rtol, atol, dtPrint float64) error {
	m := model.NewFuncModel()
	m.Declare(model.VariableInfo{
		Name: "x", Ref: xRef, Kind: model.Real,
		Variability: model.Continuous, Causality: model.Output, Start: 1,
	})
	m.Declare(model.VariableInfo{
		Name: "der(x)", Ref: derivRef, Kind: model.Real,
		Variability: model.Continuous, DerivativeOf: xRef, HasDerivativeOf: true,
	})
	m.Bind(derivRef, func(_ float64, get model.Getter) float64 { return -get(xRef) })

	params := variable.DefaultParams()
	tol := variable.Tolerances{RTol: rtol, ATol: atol}
	x := variable.NewQSS("x", order, xRef, derivRef, true, tol, params, m)

	s := solver.New(m, []variable.Variable{x}, nil,
		solver.WithParams(params),
		solver.WithLogger(qsslog.Default()),
	)
	if err := s.Init(0); err != nil {
		return err
	}

	for t := dtPrint; t <= tStop+1e-9; t += dtPrint {
		if err := s.Run(t); err != nil {
			return err
		}
		m.SetTime(t)
		fmt.Printf("t=%.4f x=%.8f\n", t, x.X(t))
	}
	return nil
}
