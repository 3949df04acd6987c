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

func newApptsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "appts", Short: "Appointments"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List appointments by date",
		RunE: func(c *cobra.Command, _ []string) error {
			return a.run(func(ctx context.Context, st *healthstore.Store) *healthstore.Result {
				res := st.FetchAppointments(ctx)
				if res != nil && res.Success {
					printAppts(c.OutOrStdout(), st.Appointments(), a.loc)
				}
				return res
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "upcoming",
		Short: "Appointments, nearest first",
		RunE: func(c *cobra.Command, _ []string) error {
			return a.run(func(ctx context.Context, st *healthstore.Store) *healthstore.Result {
				res := st.FetchAppointments(ctx)
				if res != nil && res.Success {
					printAppts(c.OutOrStdout(), st.UpcomingAppointments(), a.loc)
				}
				return res
			})
		},
	})

	var add api.ScheduleAppointmentRequest
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Schedule an appointment",
		RunE: func(c *cobra.Command, _ []string) error {
			return a.run(func(ctx context.Context, st *healthstore.Store) *healthstore.Result {
				res := st.AddAppointment(ctx, &add)
				if res != nil && res.Success {
					fmt.Fprintln(c.OutOrStdout(), res.ID)
				}
				return res
			})
		},
	}
	addCmd.Flags().StringVar(&add.DoctorName, "doctor", "", "doctor name")
	addCmd.Flags().StringVar(&add.Speciality, "speciality", "", "speciality")
	addCmd.Flags().StringVar(&add.Location, "location", "", "location")
	addCmd.Flags().StringVar(&add.Date, "date", "", "YYYY-MM-DD, YYYY-MM-DDTHH:MM or RFC 3339")
	addCmd.Flags().StringVar(&add.Time, "time", "", "time HH:MM")
	addCmd.Flags().StringVar(&add.Notes, "notes", "", "notes")
	_ = addCmd.MarkFlagRequired("doctor")
	_ = addCmd.MarkFlagRequired("date")
	cmd.AddCommand(addCmd)

	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields or status of an appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			f := c.Flags()
			var p api.AppointmentPatch
			for flag, dst := range map[string]**string{
				"doctor": &p.DoctorName, "speciality": &p.Speciality, "location": &p.Location,
				"date": &p.Date, "time": &p.Time, "notes": &p.Notes, "status": &p.Status,
			} {
				if f.Changed(flag) {
					v, _ := f.GetString(flag)
					*dst = &v
				}
			}
			return a.run(func(ctx context.Context, st *healthstore.Store) *healthstore.Result {
				return st.UpdateAppointment(ctx, args[0], p)
			})
		},
	}
	updateCmd.Flags().String("doctor", "", "doctor name")
	updateCmd.Flags().String("speciality", "", "speciality")
	updateCmd.Flags().String("location", "", "location")
	updateCmd.Flags().String("date", "", "new date")
	updateCmd.Flags().String("time", "", "time HH:MM")
	updateCmd.Flags().String("notes", "", "notes")
	updateCmd.Flags().String("status", "", "scheduled, completed or cancelled")
	cmd.AddCommand(updateCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.run(func(ctx context.Context, st *healthstore.Store) *healthstore.Result {
				return st.DeleteAppointment(ctx, args[0])
			})
		},
	})
	return cmd
}

func printAppts(w io.Writer, appts []api.Appointment, loc *time.Location) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTIME\tDOCTOR\tSPECIALITY\tLOCATION\tSTATUS\tNOTIFIED")
	for _, ap := range appts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%v\n", ap.ID, ap.Date.In(loc).Format("2006-01-02 15:04"),
			ap.Time, ap.DoctorName, ap.Speciality, ap.Location, ap.Status, ap.Notified)
	}
	_ = tw.Flush()
}
