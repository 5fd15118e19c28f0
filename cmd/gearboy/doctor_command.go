package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"gearboy/internal/preflight"
)

const statusLabelWidth = 20

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check folders, catalog, title database, and box art service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			out := cmd.OutOrStdout()
			if ctx.jsonFlag {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				writeDoctorReport(out, results, shouldColorize(out))
			}
			if !preflight.Passed(results) {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
}

func writeDoctorReport(w io.Writer, results []preflight.Result, colorize bool) {
	for _, r := range results {
		fmt.Fprintln(w, renderStatusLine(r, colorize))
	}
}

func renderStatusLine(r preflight.Result, colorize bool) string {
	label, color := "OK", ansiGreen
	if !r.Passed {
		label, color = "ERROR", ansiRed
	}
	line := fmt.Sprintf("  %-*s [%s] %s", statusLabelWidth, r.Name+":", label, r.Detail)
	return paint(line, color, colorize)
}
