// cmd/deckforge/cmd_deck.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jason-s-yu/deckforge/internal/exportsink"
	"github.com/jason-s-yu/deckforge/internal/lister"
	"github.com/jason-s-yu/deckforge/internal/presenter"
	"github.com/jason-s-yu/deckforge/internal/ui"
)

var (
	deckShowCombos bool
	deckCopy       bool
	deckSave       bool
	deckText       bool
)

var deckCmd = &cobra.Command{
	Use:   "deck <job id>",
	Short: "Show a generated deck grouped by card type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		pres := presenter.New(deckforge.client, exportsink.NewSystem(deckforge.cfg.DownloadDir), nil, deckforge.logger)
		if _, err := pres.Load(cmd.Context(), id); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		styles := ui.DefaultStyles()

		if deckText {
			text, err := pres.Text()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, text)
		} else {
			fmt.Fprintln(out, ui.Deck(styles, pres.View()))
		}
		if deckShowCombos {
			pres.OpenCombos()
			fmt.Fprintln(out, ui.Combos(styles, pres.View()))
		}
		if deckCopy {
			if err := pres.Copy(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "Deck list copied to clipboard.")
		}
		if deckSave {
			name, err := pres.Download()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "Saved", name)
		}
		return nil
	},
}

var decksCmd = &cobra.Command{
	Use:   "decks",
	Short: "List submitted jobs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		jobs, err := lister.New(deckforge.client).ListJobs(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Jobs(ui.DefaultStyles(), jobs))
		return nil
	},
}

func init() {
	deckCmd.Flags().BoolVar(&deckShowCombos, "combos", false, "also show the combos found for the deck")
	deckCmd.Flags().BoolVar(&deckCopy, "copy", false, "copy the deck list to the clipboard")
	deckCmd.Flags().BoolVar(&deckSave, "save", false, "save the deck list to the download directory")
	deckCmd.Flags().BoolVar(&deckText, "text", false, "print the plain deck list instead of the grouped view")
}
