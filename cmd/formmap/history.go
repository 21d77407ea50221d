package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/v0xg/formmap/internal/report"
	"github.com/v0xg/formmap/internal/store"
)

func (a *app) newHistoryCmd() *cobra.Command {
	var (
		limit   int
		element string
	)
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded crawl runs, or print the catalog of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.load()
			if err != nil {
				return err
			}
			s, err := store.Open(cfg.StoreDir())
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				cat, err := s.Catalog(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return report.Write(out, report.Format(cfg.Output.Format), cat)
			}

			if element != "" {
				ids, err := s.Seen(cmd.Context(), element)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s was recorded in %d runs\n", element, len(ids))
				for _, id := range ids {
					fmt.Fprintf(out, "  %s\n", id)
				}
				return nil
			}

			runs, err := s.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintf(out, "No runs recorded in %s\n", s.Path())
				return nil
			}
			for i, r := range runs {
				fmt.Fprintf(out, "  [%d] %s  %s  %d pages  %d elements  %s\n",
					i+1, r.ID, r.Timestamp.Local().Format("2006-01-02 15:04"), r.Pages, r.Elements, r.SourceURL)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list (0 for all)")
	cmd.Flags().StringVar(&element, "element", "", "List the runs that recorded this element id")
	return cmd
}
