package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pesio-ai/be-tbc-triage/internal/client"
	"github.com/pesio-ai/be-tbc-triage/internal/dashboard"
	"github.com/pesio-ai/be-tbc-triage/internal/service"
	"github.com/pesio-ai/be-tbc-triage/internal/tui"
)

func newDashboardCmd(a *app) *cobra.Command {
	var (
		f    dashboard.Filters
		once bool
	)
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show consultation statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}
			if err := service.ValidateDateRange(f.From, f.To); err != nil {
				return err
			}

			hook := dashboard.NewHook(client.NewStatsClient(a.rest), client.NewAdminClient(a.rest))
			for key, value := range map[string]string{
				dashboard.FilterProvince: f.Province,
				dashboard.FilterFrom:     f.From,
				dashboard.FilterTo:       f.To,
			} {
				if err := hook.SetFilter(key, value); err != nil {
					return err
				}
			}

			if once {
				st, err := hook.Stats(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), tui.RenderDashboard(hook.Filters(), st))
				return nil
			}
			return tui.NewDashboardRunner(hook, a.prompt, cmd.OutOrStdout()).Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&f.Province, "province", "", "province name (default all)")
	cmd.Flags().StringVar(&f.From, "from", "", "start date, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.To, "to", "", "end date, YYYY-MM-DD")
	cmd.Flags().BoolVar(&once, "once", false, "print once and exit")
	return cmd
}
