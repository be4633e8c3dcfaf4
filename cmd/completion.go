package cmd

import (
	"github.com/etnz/tradetax"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion returns the shell completion of the ttx command line.
//
// A main package calls Completion().Complete(name) before parsing flags.
// It completes and exits when invoked by the shell, and returns immediately
// otherwise. Run the binary with COMP_INSTALL=1 to install it.
func Completion() *complete.Command {
	report := map[string]complete.Predictor{
		"symbol": predict.Something,
		"year":   predict.Something,
		"from":   predict.Something,
		"plain":  predict.Nothing,
	}
	with := func(extra map[string]complete.Predictor) map[string]complete.Predictor {
		flags := make(map[string]complete.Predictor, len(report)+len(extra))
		for k, v := range report {
			flags[k] = v
		}
		for k, v := range extra {
			flags[k] = v
		}
		return flags
	}
	scope := predict.Set{tradetax.NetReported.String(), tradetax.NetHistory.String()}

	return &complete.Command{
		Sub: map[string]*complete.Command{
			"gains":   {Flags: with(map[string]complete.Predictor{"json": predict.Nothing})},
			"options": {Flags: with(map[string]complete.Predictor{"json": predict.Nothing, "scope": scope})},
			"summary": {Flags: with(map[string]complete.Predictor{"scope": scope})},
			"serve": {Flags: map[string]complete.Predictor{
				"port":      predict.Something,
				"log-level": predict.Set{"debug", "info", "warn", "error"},
			}},
			"help": {},
		},
		Flags: map[string]complete.Predictor{
			"trades":        predict.Or(predict.Files("*.csv"), predict.Files("*.json")),
			"option-trades": predict.Files("*.csv"),
			"currency":      predict.Set{"USD", "EUR", "GBP"},
		},
	}
}
