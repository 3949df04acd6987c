package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"health-companion-api/internal/api"
	"health-companion-api/internal/client/healthstore"
)

func newMedsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "meds", Short: "Medication reminders"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List medication reminders, newest first",
		RunE: func(c *cobra.Command, _ []string) error {
			return a.run(func(ctx context.Context, st *healthstore.Store) *healthstore.Result {
				res := st.FetchMedications(ctx)
				if res != nil && res.Success {
					printMeds(c.OutOrStdout(), st.Medications(), a.loc)
				}
				return res
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "today",
		Short: "Medications whose next dose is today",
		RunE: func(c *cobra.Command, _ []string) error {
			return a.run(func(ctx context.Context, st *healthstore.Store) *healthstore.Result {
				res := st.FetchMedications(ctx)
				if res != nil && res.Success {
					printMeds(c.OutOrStdout(), st.TodayMedications(), a.loc)
				}
				return res
			})
		},
	})

	var add api.CreateMedicationReminderRequest
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a medication reminder",
		RunE: func(c *cobra.Command, _ []string) error {
			return a.run(func(ctx context.Context, st *healthstore.Store) *healthstore.Result {
				res := st.AddMedication(ctx, &add)
				if res != nil && res.Success {
					fmt.Fprintln(c.OutOrStdout(), res.ID)
				}
				return res
			})
		},
	}
	addCmd.Flags().StringVar(&add.MedicationName, "name", "", "medication name")
	addCmd.Flags().StringVar(&add.Dosage, "dosage", "", "dosage, e.g. 100mg")
	addCmd.Flags().StringVar(&add.Frequency, "frequency", "", "frequency, e.g. daily")
	addCmd.Flags().StringVar(&add.Time, "time", "", "dose time HH:MM")
	addCmd.Flags().StringVar(&add.Notes, "notes", "", "notes")
	_ = addCmd.MarkFlagRequired("name")
	cmd.AddCommand(addCmd)

	var name, dosage, frequency, at, notes string
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a medication reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			f := c.Flags()
			var p api.MedicationPatch
			if f.Changed("name") {
				p.MedicationName = &name
			}
			if f.Changed("dosage") {
				p.Dosage = &dosage
			}
			if f.Changed("frequency") {
				p.Frequency = &frequency
			}
			if f.Changed("time") {
				p.Time = &at
			}
			if f.Changed("notes") {
				p.Notes = &notes
			}
			return a.run(func(ctx context.Context, st *healthstore.Store) *healthstore.Result {
				return st.UpdateMedication(ctx, args[0], p)
			})
		},
	}
	updateCmd.Flags().StringVar(&name, "name", "", "medication name")
	updateCmd.Flags().StringVar(&dosage, "dosage", "", "dosage")
	updateCmd.Flags().StringVar(&frequency, "frequency", "", "frequency")
	updateCmd.Flags().StringVar(&at, "time", "", "dose time HH:MM")
	updateCmd.Flags().StringVar(&notes, "notes", "", "notes")
	cmd.AddCommand(updateCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a medication reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.run(func(ctx context.Context, st *healthstore.Store) *healthstore.Result {
				return st.DeleteMedication(ctx, args[0])
			})
		},
	})
	return cmd
}

func printMeds(w io.Writer, meds []api.Medication, loc *time.Location) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMEDICATION\tDOSAGE\tFREQUENCY\tTIME\tNEXT DOSE")
	for _, m := range meds {
		next := "-"
		if m.NextDose != nil {
			next = m.NextDose.In(loc).Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", m.ID, m.MedicationName, m.Dosage, m.Frequency, m.Time, next)
	}
	_ = tw.Flush()
}
