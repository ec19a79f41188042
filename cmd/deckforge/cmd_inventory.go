// cmd/deckforge/cmd_inventory.go
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jason-s-yu/deckforge/internal/inventory"
	"github.com/jason-s-yu/deckforge/internal/ui"
)

var inventoryCmd = &cobra.Command{
	Use:     "inventory",
	Aliases: []string{"inv"},
	Short:   "Manage the cards you own",
}

var inventoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List owned cards",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := inventory.New(deckforge.client, deckforge.logger).List(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Inventory(ui.DefaultStyles(), items))
		return nil
	},
}

var inventoryAddCmd = &cobra.Command{
	Use:   "add <card name>",
	Short: "Add one copy of a card",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		item, err := inventory.New(deckforge.client, deckforge.logger).Add(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (now %d)\n", item.Name, item.Quantity)
		return nil
	},
}

var inventoryRemoveCmd = &cobra.Command{
	Use:     "rm <item id>",
	Aliases: []string{"remove"},
	Short:   "Remove an inventory entry",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return inventory.New(deckforge.client, deckforge.logger).Remove(cmd.Context(), id)
	},
}

var inventoryImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: `Import a card list ("N Card Name" or "Card Name" per line) from a file or stdin`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("read card list: %w", err)
		}
		res, err := inventory.New(deckforge.client, deckforge.logger).Import(cmd.Context(), string(data))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.ImportResult(ui.DefaultStyles(), res.Failed))
		return nil
	},
}

func init() {
	inventoryCmd.AddCommand(inventoryListCmd, inventoryAddCmd, inventoryRemoveCmd, inventoryImportCmd)
}
