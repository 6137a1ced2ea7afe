package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mdictgo/mdict"
)

func newLocateCmd(state *appState) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "locate <name>",
		Short: "Extract a resource from the companion .mdd archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			if state.mddPath == "" {
				return errNoResourceArchive
			}
			archive, err := mdict.OpenResource(state.mddPath)
			if err != nil {
				return err
			}
			defer archive.Close()

			data, found, err := archive.Locate(name)
			if err != nil {
				return err
			}
			if !found {
				fmt.Printf("%q not found\n", name)
				return nil
			}

			if outPath == "" {
				fmt.Printf("%q: %d bytes\n", name, len(data))
				return nil
			}
			return os.WriteFile(outPath, data, 0o644)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the resource bytes to this file instead of printing a summary")
	return cmd
}
