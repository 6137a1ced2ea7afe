package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mdictgo/mdict"
)

func newPrefixCmd(state *appState) *cobra.Command {
	var cap int

	cmd := &cobra.Command{
		Use:   "prefix <prefix>",
		Short: "List words beginning with a prefix, for type-ahead",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := args[0]

			if state.mdxPath == "" {
				return errNoDictionary
			}
			dict, err := mdict.OpenText(state.mdxPath)
			if err != nil {
				return err
			}
			defer dict.Close()

			words, err := dict.PrefixSearch(prefix, cap)
			if err != nil {
				return err
			}
			for _, w := range words {
				fmt.Println(w)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&cap, "cap", 20, "maximum number of matches to return")
	return cmd
}
