package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Rorical/RoriAtlas/internal/diagram"
)

var graphFormatFlag string

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Draw the control loop's nodes and edges",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		g := diagram.Default()
		switch graphFormatFlag {
		case "mermaid":
			fmt.Fprint(cmd.OutOrStdout(), diagram.Mermaid(g))
		case "ascii":
			fmt.Fprintln(cmd.OutOrStdout(), diagram.Boxes(g))
		default:
			return fmt.Errorf("unknown graph format %q (want ascii or mermaid)", graphFormatFlag)
		}
		return nil
	},
}

func init() {
	graphCmd.Flags().StringVarP(&graphFormatFlag, "format", "f", "ascii", "Diagram format: ascii or mermaid")
}
