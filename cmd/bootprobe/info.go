package main

import (
	"fmt"

	"github.com/sigreer/bootprobe/internal/report"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info DEVICE",
	Short: "Show every probe property of a device",
	Long: `Resolve driver, partition map, filesystem type, UUID and label of DEVICE
in one pass. Properties that cannot be resolved show the reason instead.

Examples:
  bootprobe info hd0,gpt2
  bootprobe info -o json /dev/nvme0n1p1`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	infoCmd.Flags().StringP("output", "o", "table", "Output format: table, json")
}

func runInfo(cmd *cobra.Command, args []string) error {
	outputFmt, _ := cmd.Flags().GetString("output")
	if outputFmt != "table" && outputFmt != "json" {
		return fmt.Errorf("unknown output format %q", outputFmt)
	}

	a, err := setup(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	r, err := report.Collect(a.probe, args[0])
	if err != nil {
		return err
	}

	if outputFmt == "json" {
		return report.PrintJSON(cmd.OutOrStdout(), r)
	}
	report.PrintTable(cmd.OutOrStdout(), r)
	return nil
}
