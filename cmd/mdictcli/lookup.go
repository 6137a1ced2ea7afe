package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mdictgo/mdict"
	"github.com/mdictgo/mdict/internal/online"
)

func newLookupCmd(state *appState) *cobra.Command {
	var useOnline bool

	cmd := &cobra.Command{
		Use:   "lookup <word>",
		Short: "Look up a word's definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			word := args[0]

			if state.mdxPath == "" {
				return errNoDictionary
			}
			dict, err := mdict.OpenText(state.mdxPath)
			if err != nil {
				return err
			}
			defer dict.Close()

			canonical, definition, found, err := dict.Lookup(word)
			if err != nil {
				return err
			}
			if found {
				fmt.Printf("%s\n\n%s\n", canonical, definition)
				return nil
			}

			if !useOnline {
				fmt.Printf("%q not found\n", word)
				return nil
			}

			state.log.Infow("falling back to online lookup", "word", word)
			client := online.NewClient(online.WithLogger(state.log))
			entries, err := client.Lookup(context.Background(), word)
			if err != nil {
				fmt.Println(online.FormatError())
				return nil
			}
			if len(entries) == 0 {
				fmt.Printf("%q not found locally or online\n", word)
				return nil
			}
			fmt.Printf("%s (online)\n", entries[0].Word)
			for _, m := range entries[0].Meanings {
				fmt.Printf("  [%s]\n", m.PartOfSpeech)
				for _, d := range m.Definitions {
					fmt.Printf("    - %s\n", d.Definition)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&useOnline, "online", false, "fall back to the online dictionary API on a local miss")
	return cmd
}
