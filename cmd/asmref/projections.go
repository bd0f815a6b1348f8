package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/hupe1980/asmref/winrt"
	"github.com/spf13/cobra"
)

type projectionRow struct {
	WinRT    string `json:"winrt" yaml:"winrt"`
	DotNet   string `json:"dotnet" yaml:"dotnet"`
	Assembly string `json:"assembly" yaml:"assembly"`
}

func newProjectionsCmd(_ *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "projections",
		Short: "Print the Windows Runtime type projection table",
		Long: `Print every Windows Runtime type that the projection replaces with a
.NET type, and the contract assembly the .NET type is bound to.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			return writeProjections(cmd.OutOrStdout(), format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, json or yaml")
	return cmd
}

func writeProjections(w io.Writer, format string) error {
	var rows []projectionRow
	for _, p := range winrt.Projections() {
		rows = append(rows, projectionRow{
			WinRT:    p.WinRTNamespace + "." + p.WinRTName,
			DotNet:   p.Namespace + "." + p.Name,
			Assembly: p.Assembly.String(),
		})
	}
	if format != formatText {
		return writeStructured(w, format, rows)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WINRT\t.NET\tASSEMBLY")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.WinRT, r.DotNet, r.Assembly)
	}
	return tw.Flush()
}
