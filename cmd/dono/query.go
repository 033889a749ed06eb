package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/amaumene/dono/internal/controllers"
	"github.com/amaumene/dono/internal/models"
)

var (
	currentKind  string
	previousKind string
	historyKind  string
)

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the most recent play of a kind",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSingle(cmd.Context(), currentKind, (*controllers.IngestController).Current)
	},
}

var previousCmd = &cobra.Command{
	Use:   "previous",
	Short: "Show the play before the most recent one",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSingle(cmd.Context(), previousKind, (*controllers.IngestController).Previous)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List plays, newest first",
	Long:  `Lists every play of one kind, or of all kinds merged when --kind is empty.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHistory(cmd.Context())
	},
}

func init() {
	currentCmd.Flags().StringVarP(&currentKind, "kind", "k", string(models.KindYoutube), "media kind (youtube or local)")
	previousCmd.Flags().StringVarP(&previousKind, "kind", "k", string(models.KindYoutube), "media kind (youtube or local)")
	historyCmd.Flags().StringVarP(&historyKind, "kind", "k", "", "media kind (youtube or local); empty merges all kinds")
	rootCmd.AddCommand(currentCmd, previousCmd, historyCmd)
}

type singleQuery func(*controllers.IngestController, context.Context, models.MediaKind) (models.Entry, error)

func runSingle(ctx context.Context, rawKind string, query singleQuery) error {
	kind, err := models.ParseKind(rawKind)
	if err != nil {
		return err
	}

	ctrl, cleanup, err := initializeReader(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer cleanup()

	entry, err := query(ctrl, ctx, kind)
	if err != nil {
		return err
	}
	return printEntries([]models.Entry{entry})
}

func runHistory(ctx context.Context) error {
	ctrl, cleanup, err := initializeReader(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer cleanup()

	var entries []models.Entry
	if historyKind == "" {
		entries, err = ctrl.History(ctx)
	} else {
		kind, perr := models.ParseKind(historyKind)
		if perr != nil {
			return perr
		}
		entries, err = ctrl.All(ctx, kind)
	}
	if err != nil {
		return err
	}
	return printEntries(entries)
}

func printEntries(entries []models.Entry) error {
	if jsonOut {
		if entries == nil {
			entries = []models.Entry{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PLAYED\tKIND\tDURATION\tTITLE\tSOURCE")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			time.Unix(e.Timestamp, 0).Format(time.RFC3339),
			e.Kind,
			time.Duration(e.Duration)*time.Second,
			e.Title,
			e.ExternalID,
		)
	}
	return w.Flush()
}
