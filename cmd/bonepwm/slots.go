package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"bonepwm/internal/pwm"
)

func printSlots(w io.Writer, mgr *pwm.Manager) error {
	slots, err := mgr.Overlays()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLOT\tINFO")
	for _, s := range slots {
		fmt.Fprintf(tw, "%d\t%s\n", s.Index, s.Info)
	}
	return tw.Flush()
}
