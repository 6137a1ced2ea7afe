// Command mdictcli is a headless CLI/HTTP front end over the mdict reader:
// lookup/locate/prefix/info subcommands for one-shot queries, and serve for
// the HTTP surface a GUI or tray frontend would sit on top of.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mdictgo/mdict/internal/config"
)

// appState is threaded through every subcommand via its RunE closure
// instead of package-level globals.
type appState struct {
	mdxPath string
	mddPath string
	cssPath string
	verbose bool
	log     *zap.SugaredLogger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	state := &appState{}

	root := &cobra.Command{
		Use:           "mdictcli",
		Short:         "Look up words and resources in MDict .mdx/.mdd dictionaries",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(state.verbose)
			if err != nil {
				return err
			}
			state.log = logger.Sugar()

			if state.mdxPath == "" && state.mddPath == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				if state.mdxPath == "" {
					state.mdxPath = cfg.MdxFile
				}
				if state.mddPath == "" {
					state.mddPath = cfg.MddFile
				}
				if state.cssPath == "" {
					state.cssPath = cfg.CSSFile
				}
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&state.mdxPath, "mdx", "", "path to a .mdx dictionary (defaults to the configured one)")
	root.PersistentFlags().StringVar(&state.mddPath, "mdd", "", "path to a companion .mdd resource archive")
	root.PersistentFlags().StringVar(&state.cssPath, "css", "", "path to a stylesheet applied to rendered definitions")
	root.PersistentFlags().BoolVarP(&state.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newLookupCmd(state),
		newLocateCmd(state),
		newPrefixCmd(state),
		newInfoCmd(state),
		newServeCmd(state),
	)
	return root
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}
