package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mdictgo/mdict"
)

func newInfoCmd(state *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the configured dictionary's header metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if state.mdxPath == "" {
				return errNoDictionary
			}
			dict, err := mdict.OpenText(state.mdxPath)
			if err != nil {
				return err
			}
			defer dict.Close()

			info := dict.HeaderInfo()
			fmt.Printf("Title:       %s\n", info.Title)
			fmt.Printf("Description: %s\n", info.Description)
			fmt.Printf("Encoding:    %s\n", info.Encoding)
			fmt.Printf("Entries:     %d\n", info.EntryCount)

			if state.mddPath != "" {
				archive, err := mdict.OpenResource(state.mddPath)
				if err != nil {
					return err
				}
				defer archive.Close()
				resInfo := archive.HeaderInfo()
				fmt.Printf("Resources:   %d (%s)\n", resInfo.EntryCount, resInfo.Title)
			}
			return nil
		},
	}
}
