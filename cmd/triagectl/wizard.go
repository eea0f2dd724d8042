package main

import (
	"github.com/spf13/cobra"

	"github.com/pesio-ai/be-tbc-triage/internal/client"
	"github.com/pesio-ai/be-tbc-triage/internal/repository"
	"github.com/pesio-ai/be-tbc-triage/internal/service"
	"github.com/pesio-ai/be-tbc-triage/internal/stats"
	"github.com/pesio-ai/be-tbc-triage/internal/tui"
	"github.com/pesio-ai/be-tbc-triage/internal/wizard"
)

func newWizardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "wizard",
		Short: "Run a triage consultation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			locations := a.locations()
			// submit synchronously so the outcome is sent before the process exits
			recorder := stats.NewRecorder(locations, client.NewStatsClient(a.rest), a.log, false)
			svc := service.NewWizardService(
				client.NewStepsClient(a.rest),
				locations,
				recorder,
				repository.NewMemorySessionStore(),
				repository.NewMemoryAuditStore(),
				service.WizardConfig{
					Transitions: wizard.Transitions{
						InitialStepID:      a.cfg.Wizard.InitialStepID,
						ProvinceNextStepID: a.cfg.Wizard.ProvinceNextStepID,
						CityNextStepID:     a.cfg.Wizard.CityNextStepID,
					},
					SessionTTL: a.cfg.Wizard.SessionTTL,
				},
				a.log,
			)
			return tui.NewWizardRunner(svc, a.prompt, cmd.OutOrStdout()).Run(cmd.Context())
		},
	}
}
