package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/pesio-ai/be-tbc-triage/internal/admin"
	"github.com/pesio-ai/be-tbc-triage/internal/client"
	"github.com/pesio-ai/be-tbc-triage/internal/platform/errors"
)

func newAdminCmd(a *app) *cobra.Command {
	var svc *admin.Service
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage provinces, cities and laboratories",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.init(cmd.ErrOrStderr()); err != nil {
				return err
			}
			if _, err := a.requireSession(); err != nil {
				return err
			}
			svc = admin.NewService(client.NewAdminClient(a.rest), a.log)
			return nil
		},
	}
	service := func() *admin.Service { return svc }

	cmd.AddCommand(
		newProvincesCmd(service),
		newCitiesCmd(service),
		newLabsCmd(service),
	)
	return cmd
}

func renderTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
}

func idArg(args []string) (int, error) {
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return 0, errors.InvalidInput("id", "a positive integer is required")
	}
	return id, nil
}

func newProvincesCmd(svc func() *admin.Service) *cobra.Command {
	cmd := &cobra.Command{Use: "provinces", Short: "Manage provinces"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List provinces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			provinces, err := svc().Provinces(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(provinces))
			for _, p := range provinces {
				rows = append(rows, []string{strconv.Itoa(p.ID), p.Name})
			}
			renderTable(cmd.OutOrStdout(), []string{"ID", "Nombre"}, rows)
			return nil
		},
	}

	var name string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a province",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := svc().CreateProvince(cmd.Context(), &client.Province{Name: name})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Provincia %d creada\n", p.ID)
			return nil
		},
	}
	create.Flags().StringVar(&name, "name", "", "province name")

	update := &cobra.Command{
		Use:   "update ID",
		Short: "Rename a province",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idArg(args)
			if err != nil {
				return err
			}
			if _, err := svc().UpdateProvince(cmd.Context(), id, &client.Province{ID: id, Name: name}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Provincia %d actualizada\n", id)
			return nil
		},
	}
	update.Flags().StringVar(&name, "name", "", "province name")

	cmd.AddCommand(list, create, update, deleteCmd("province", svc, (*admin.Service).DeleteProvince))
	return cmd
}

// deleteCmd builds a "delete ID" command. svc is resolved at run time
// because the service only exists after the admin pre-run.
func deleteCmd(label string, svc func() *admin.Service, del func(*admin.Service, context.Context, int) error) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a " + label,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idArg(args)
			if err != nil {
				return err
			}
			if err := del(svc(), cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d eliminado\n", label, id)
			return nil
		},
	}
}

func newCitiesCmd(svc func() *admin.Service) *cobra.Command {
	cmd := &cobra.Command{Use: "cities", Short: "Manage cities"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List cities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cities, err := svc().Cities(ctx)
			if err != nil {
				return err
			}
			provinces, err := svc().Provinces(ctx)
			if err != nil {
				return err
			}
			labs, err := svc().Laboratories(ctx)
			if err != nil {
				return err
			}
			provName := map[int]string{}
			for _, p := range provinces {
				provName[p.ID] = p.Name
			}
			labName := map[int]string{}
			for _, l := range labs {
				labName[l.ID] = l.Name
			}

			rows := make([][]string, 0, len(cities))
			for _, c := range cities {
				lab := "-"
				if c.LaboratorioID != nil {
					lab = labName[*c.LaboratorioID]
				}
				rows = append(rows, []string{strconv.Itoa(c.ID), c.Name, c.ZipCode, provName[c.ProvinceID], lab})
			}
			renderTable(cmd.OutOrStdout(), []string{"ID", "Nombre", "CP", "Provincia", "Laboratorio"}, rows)
			return nil
		},
	}

	var form admin.CityForm
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a city",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := svc().CreateCity(cmd.Context(), form)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ciudad %d creada\n", c.ID)
			return nil
		},
	}
	cityFlags(create, &form)

	var changes admin.CityForm
	update := &cobra.Command{
		Use:   "update ID",
		Short: "Update a city; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idArg(args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			cities, err := svc().Cities(ctx)
			if err != nil {
				return err
			}
			var f *admin.CityForm
			for _, c := range cities {
				if c.ID == id {
					existing := admin.CityFormFrom(c)
					f = &existing
				}
			}
			if f == nil {
				return errors.NotFound(fmt.Sprintf("city %d", id))
			}

			flags := cmd.Flags()
			if flags.Changed("name") {
				f.Name = changes.Name
			}
			if flags.Changed("zip") {
				f.ZipCode = changes.ZipCode
			}
			if flags.Changed("province") {
				state, err := svc().PrepareCityForm(ctx, *f, changes.ProvinceID)
				if err != nil {
					return err
				}
				if f.LaboratorioID != 0 && state.Form.LaboratorioID == 0 {
					fmt.Fprintln(cmd.ErrOrStderr(), "El laboratorio asignado no pertenece a la nueva provincia y fue quitado")
				}
				*f = state.Form
			}
			if flags.Changed("lab") {
				f.LaboratorioID = changes.LaboratorioID
			}

			if _, err := svc().UpdateCity(ctx, id, *f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ciudad %d actualizada\n", id)
			return nil
		},
	}
	cityFlags(update, &changes)

	cmd.AddCommand(list, create, update, deleteCmd("city", svc, (*admin.Service).DeleteCity))
	return cmd
}

func cityFlags(cmd *cobra.Command, f *admin.CityForm) {
	cmd.Flags().StringVar(&f.Name, "name", "", "city name")
	cmd.Flags().StringVar(&f.ZipCode, "zip", "", "zip code")
	cmd.Flags().IntVar(&f.ProvinceID, "province", 0, "province id")
	cmd.Flags().IntVar(&f.LaboratorioID, "lab", 0, "laboratory id (0 for none)")
}

type labFlags struct {
	in       client.LaboratoryInput
	lat, lng float64
}

func (lf *labFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&lf.in.Name, "name", "", "laboratory name")
	cmd.Flags().StringVar(&lf.in.Address, "address", "", "street address")
	cmd.Flags().StringVar(&lf.in.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&lf.in.Horario, "horario", "", "opening hours")
	cmd.Flags().IntVar(&lf.in.ProvinceID, "province", 0, "province id")
	cmd.Flags().Float64Var(&lf.lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lf.lng, "lng", 0, "longitude")
}

// input returns the payload; coordinates are sent only when both are set
func (lf *labFlags) input(cmd *cobra.Command) *client.LaboratoryInput {
	in := lf.in
	if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng") {
		lat, lng := lf.lat, lf.lng
		in.Latitude, in.Longitude = &lat, &lng
	}
	return &in
}

func newLabsCmd(svc func() *admin.Service) *cobra.Command {
	cmd := &cobra.Command{Use: "labs", Aliases: []string{"laboratorios"}, Short: "Manage laboratories"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List laboratories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			labs, err := svc().Laboratories(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(labs))
			for _, l := range labs {
				rows = append(rows, []string{strconv.Itoa(l.ID), l.Name, l.Address, l.Phone, l.Horario, strconv.Itoa(l.ProvinceID)})
			}
			renderTable(cmd.OutOrStdout(), []string{"ID", "Nombre", "Dirección", "Teléfono", "Horario", "Provincia"}, rows)
			return nil
		},
	}

	var createFlags labFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a laboratory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := svc().CreateLaboratory(cmd.Context(), createFlags.input(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Laboratorio %d creado\n", l.ID)
			return nil
		},
	}
	createFlags.register(create)

	var updateFlags labFlags
	update := &cobra.Command{
		Use:   "update ID",
		Short: "Replace a laboratory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idArg(args)
			if err != nil {
				return err
			}
			if _, err := svc().UpdateLaboratory(cmd.Context(), id, updateFlags.input(cmd)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Laboratorio %d actualizado\n", id)
			return nil
		},
	}
	updateFlags.register(update)

	cmd.AddCommand(list, create, update, deleteCmd("laboratory", svc, (*admin.Service).DeleteLaboratory))
	return cmd
}
