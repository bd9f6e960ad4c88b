package main

import (
	"github.com/sigreer/bootprobe/internal/probe"
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe [flags] DEVICE",
	Short: "Retrieve device info.",
	Long: `Report one property of DEVICE. When several property flags are given
the first of driver, partmap, fs, fs-uuid, label wins.

Examples:
  bootprobe probe -f hd0,msdos1
  bootprobe probe -u (hd0,gpt2)
  bootprobe probe -s root_uuid -u /dev/sda2
  bootprobe probe -p /images/disk.img,msdos1
  bootprobe probe -d tftp,10.0.0.1`,
	Args: cobra.ArbitraryArgs,
	RunE: runProbe,
}

func init() {
	probeCmd.Flags().StringP("set", "s", "", "Set a variable to return value.")
	probeCmd.Flags().BoolP("driver", "d", false, "Determine driver.")
	probeCmd.Flags().BoolP("partmap", "p", false, "Determine partition map type.")
	probeCmd.Flags().BoolP("fs", "f", false, "Determine filesystem type.")
	probeCmd.Flags().BoolP("fs-uuid", "u", false, "Determine filesystem UUID.")
	probeCmd.Flags().BoolP("label", "l", false, "Determine filesystem label.")
}

func probeOptions(cmd *cobra.Command) probe.Options {
	flags := cmd.Flags()
	var opts probe.Options
	opts.Set, _ = flags.GetString("set")
	opts.SetGiven = flags.Changed("set")
	opts.Driver, _ = flags.GetBool("driver")
	opts.Partmap, _ = flags.GetBool("partmap")
	opts.FS, _ = flags.GetBool("fs")
	opts.FSUUID, _ = flags.GetBool("fs-uuid")
	opts.Label, _ = flags.GetBool("label")
	return opts
}

func runProbe(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.vars.Close()

	return a.probe.Run(probeOptions(cmd), args)
}
