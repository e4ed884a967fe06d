package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-sculpt/engine"
	"github.com/cwbudde/algo-sculpt/internal/midiin"
)

func runParams(args []string, _ *slog.Logger) error {
	fs := flag.NewFlagSet("params", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "id\tname\tunit\tmin\tmax\tdefault\tcurve\tcc\t")
	for id := engine.ParamID(0); id < engine.NumParams; id++ {
		s := id.Spec()
		fmt.Fprintf(w, "%d\t%s\t%s\t%g\t%g\t%g\t%s\t%s\t\n",
			id, s.Name, s.Unit, s.Min, s.Max, s.Default, s.Curve, ccFor(id))
	}
	return w.Flush()
}

func ccFor(id engine.ParamID) string {
	for page := range 2 {
		for cc := range 128 {
			if got, ok := midiin.CCParam(page, uint8(cc)); ok && got == id {
				return fmt.Sprintf("p%d/%d", page, cc)
			}
		}
	}
	return "-"
}
