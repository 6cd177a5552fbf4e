package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/raykavin/chartdraw"
	"github.com/raykavin/chartdraw/pkg/logger"
	"github.com/spf13/cobra"
)

// app carries what every command shares once flags are parsed
type app struct {
	cfg    Config
	log    logger.Logger
	out    io.Writer
	errOut io.Writer
}

func main() {
	_ = godotenv.Load()

	root, err := newRootCmd(&app{out: os.Stdout, errOut: os.Stderr})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) (*cobra.Command, error) {
	rootCmd := &cobra.Command{
		Use:          "chartdraw",
		Short:        "Render and manage chart drawings",
		Version:      "1.0.0",
		SilenceUsage: true,
	}
	rootCmd.SetOut(a.out)
	rootCmd.SetErr(a.errOut)

	addConfigFlags(rootCmd.PersistentFlags())
	v, err := newViper(rootCmd.PersistentFlags())
	if err != nil {
		return nil, err
	}

	rootCmd.PersistentPreRunE = func(*cobra.Command, []string) error {
		if err := readConfigFile(v); err != nil {
			return err
		}

		cfg, err := loadConfig(v)
		if err != nil {
			return err
		}
		a.cfg = cfg

		if a.log == nil {
			cfg.Log.Output = a.errOut
			log, err := chartdraw.NewLogger(cfg.Log)
			if err != nil {
				return err
			}
			a.log = log
		}
		return nil
	}

	rootCmd.AddCommand(
		buildRenderCmd(a),
		buildHitCmd(a),
		buildServeCmd(a),
		buildListCmd(a),
		buildImportCmd(a),
	)
	return rootCmd, nil
}
