// cmd/deckforge/cmd_generate.go
package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jason-s-yu/deckforge/internal/exportsink"
	"github.com/jason-s-yu/deckforge/internal/models"
	"github.com/jason-s-yu/deckforge/internal/monitor"
	"github.com/jason-s-yu/deckforge/internal/presenter"
	"github.com/jason-s-yu/deckforge/internal/submit"
	"github.com/jason-s-yu/deckforge/internal/tui"
	"github.com/jason-s-yu/deckforge/internal/ui"
)

var (
	genMode      string
	genAgents    int
	genDecks     int
	genOwnedOnly bool
	noWatch      bool
)

func addGenerationFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&genMode, "mode", string(models.ModeThinking), "generation mode: Thinking or Fast")
	cmd.Flags().IntVar(&genAgents, "agents", 1, "number of agents (1-3)")
	cmd.Flags().IntVar(&genDecks, "decks", 1, "number of decks to request (1-4)")
	cmd.Flags().BoolVar(&genOwnedOnly, "owned", false, "prefer cards from your inventory")
}

func generationSettings() submit.Settings {
	mode := models.Mode(genMode)
	switch strings.ToLower(genMode) {
	case "fast":
		mode = models.ModeFast
	case "thinking":
		mode = models.ModeThinking
	}
	return submit.Settings{Mode: mode, AgentCount: genAgents, DeckCount: genDecks, UseOwnedCardsOnly: genOwnedOnly}
}

var commanderCmd = &cobra.Command{
	Use:   "commander <prompt>",
	Short: "Ask the service to pick a commander for a deck idea",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := submit.New(deckforge.client, deckforge.logger)
		cmdr, err := s.GenerateCommander(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		printCommander(cmd, cmdr)
		return nil
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate <commander name>",
	Short: "Request decks for a named commander and follow the job",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := submit.New(deckforge.client, deckforge.logger)
		if err := s.SetCommander(strings.Join(args, " ")); err != nil {
			return err
		}
		return submitAndWatch(cmd, s, "")
	},
}

var newCmd = &cobra.Command{
	Use:   "new <prompt>",
	Short: "Pick a commander from a prompt, request decks, and follow the job",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := submit.New(deckforge.client, deckforge.logger)
		cmdr, err := s.GenerateCommander(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		// The TUI takes over the screen, so the pick is also carried into its header.
		printCommander(cmd, cmdr)
		header := ""
		if !plain {
			header = commanderHeader(cmdr)
		}
		return submitAndWatch(cmd, s, header)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch <job id>",
	Short: "Follow a job's live log and show the deck when it completes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return watch(cmd, id, "")
	},
}

func init() {
	addGenerationFlags(generateCmd)
	addGenerationFlags(newCmd)
	generateCmd.Flags().BoolVar(&noWatch, "no-watch", false, "print the job id and exit")
}

func submitAndWatch(cmd *cobra.Command, s *submit.Submitter, header string) error {
	sub, err := s.SubmitDeckRequest(cmd.Context(), generationSettings())
	if err != nil {
		return err
	}
	if noWatch && cmd.Name() == "generate" {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, sub.JobID)
		if sub.Notice != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), sub.Notice)
		}
		return nil
	}
	return watch(cmd, sub.JobID, joinNotice(header, sub.Notice))
}

func commanderHeader(cmdr *models.Commander) string {
	return "Commander: " + cmdr.Name
}

// joinNotice stacks the non-empty lines of a watch header.
func joinNotice(lines ...string) string {
	var kept []string
	for _, l := range lines {
		if l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}

func monitorOptions() monitor.Options {
	stall := deckforge.cfg.StallTimeout
	if stall == 0 {
		stall = -1
	}
	return monitor.Options{
		GraceDelay:   deckforge.cfg.HandoffDelay,
		StallTimeout: stall,
		Logger:       deckforge.logger,
	}
}

func watch(cmd *cobra.Command, jobID int, notice string) error {
	sink := exportsink.NewSystem(deckforge.cfg.DownloadDir)
	if !plain {
		return tui.Run(cmd.Context(), tui.Config{
			JobID:          jobID,
			Backend:        deckforge.client,
			Loader:         deckforge.client,
			Sink:           sink,
			Notice:         notice,
			MonitorOptions: monitorOptions(),
			Logger:         deckforge.logger,
		})
	}
	return watchPlain(cmd.Context(), cmd, jobID, notice)
}

// watchPlain prints log lines as they arrive, then the deck. Plain mode has no
// recheck key, so an error or disconnect ends the watch.
func watchPlain(ctx context.Context, cmd *cobra.Command, jobID int, notice string) error {
	out := cmd.OutOrStdout()
	styles := ui.DefaultStyles()
	if notice != "" {
		fmt.Fprintln(out, styles.Notice.Render(notice))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	printed := 0
	opts := monitorOptions()
	opts.OnChange = func(v monitor.View) {
		for _, l := range v.Lines[printed:] {
			fmt.Fprintln(out, ui.LogLine(styles, l))
		}
		printed = len(v.Lines)
		if v.CanRecheck {
			cancel()
		}
	}

	mon := monitor.New(deckforge.client, jobID, opts)
	if err := mon.Run(ctx); err != nil {
		if v := mon.Snapshot(); v.Notice != "" {
			return fmt.Errorf("job #%d %s: %s", jobID, v.State, v.Notice)
		}
		return err
	}

	pres := presenter.New(deckforge.client, exportsink.NewSystem(deckforge.cfg.DownloadDir), nil, deckforge.logger)
	if _, err := pres.Load(ctx, jobID); err != nil {
		return err
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, ui.Deck(styles, pres.View()))
	return nil
}

func printCommander(cmd *cobra.Command, cmdr *models.Commander) {
	md, err := ui.NewMarkdownRenderer(80)
	if err != nil {
		deckforge.logger.WithError(err).Debug("markdown renderer unavailable")
		md = nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.Commander(ui.DefaultStyles(), md, cmdr))
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(s, "#"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid job id %q", s)
	}
	return id, nil
}
