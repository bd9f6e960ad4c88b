package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sigreer/bootprobe/internal/command"
	"github.com/sigreer/bootprobe/internal/config"
	"github.com/sigreer/bootprobe/internal/device"
	"github.com/sigreer/bootprobe/internal/envstore"
	"github.com/sigreer/bootprobe/internal/fs"
	"github.com/sigreer/bootprobe/internal/logger"
	"github.com/sigreer/bootprobe/internal/probe"
	"github.com/sigreer/bootprobe/internal/version"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "bootprobe",
	Short: "Boot device probe",
	Long: `bootprobe inspects one boot device and reports its driver, partition
map type, filesystem type, filesystem UUID or filesystem label.

Devices are named the way boot firmware names them (hd0, hd0,msdos1,
cd0, tftp,10.0.0.1) or by host path (/dev/sda1, /images/disk.img).`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var commands = command.NewRoot(rootCmd)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is /etc/bootprobe/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	for _, c := range []*cobra.Command{probeCmd, infoCmd, envCmd} {
		if err := commands.Register(c); err != nil {
			panic(err)
		}
	}
}

// app holds what every subcommand needs once flags are parsed.
type app struct {
	cfg   *config.Config
	probe *probe.Command
	vars  *envstore.Lazy
}

func setup(stdout io.Writer) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := logger.Init(cfg.Logging); err != nil {
		return nil, err
	}
	if debug {
		logger.SetDebug(true)
	}

	vars := envstore.NewLazy(cfg.Env.Path)
	return &app{
		cfg:   cfg,
		probe: probe.New(device.NewResolver(cfg), fs.DefaultProber(), vars, stdout),
		vars:  vars,
	}, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
