package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"health-companion-api/internal/client/healthstore"
)

func newSurveyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "survey", Short: "Health survey"}

	cmd.AddCommand(&cobra.Command{
		Use:   "save <json | @file>",
		Short: "Store a new survey",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			raw := []byte(args[0])
			if name, ok := strings.CutPrefix(args[0], "@"); ok {
				b, err := os.ReadFile(name)
				if err != nil {
					return err
				}
				raw = b
			}
			if !json.Valid(raw) {
				return fmt.Errorf("survey must be JSON")
			}
			return a.run(func(ctx context.Context, st *healthstore.Store) *healthstore.Result {
				res := st.SaveHealthSurvey(ctx, raw)
				if res != nil && res.Success {
					fmt.Fprintln(c.OutOrStdout(), res.ID)
				}
				return res
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the latest survey",
		RunE: func(c *cobra.Command, _ []string) error {
			return a.run(func(ctx context.Context, st *healthstore.Store) *healthstore.Result {
				res := st.FetchHealthSurvey(ctx)
				if res == nil || !res.Success {
					return res
				}
				sv := st.HealthSurvey()
				if sv == nil {
					fmt.Fprintln(c.OutOrStdout(), "No survey yet")
					return res
				}
				fmt.Fprintf(c.OutOrStdout(), "%s (%s)\n%s\n", sv.ID, sv.CreatedAt.In(a.loc).Format("2006-01-02 15:04"), sv.Payload)
				return res
			})
		},
	})
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export <medications|appointments>",
		Short: "Export records as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			var data string
			err := a.run(func(ctx context.Context, st *healthstore.Store) *healthstore.Result {
				res := st.ExportData(ctx, args[0])
				if res != nil && res.Success {
					data = res.Data
					if data == "" {
						fmt.Fprintln(c.ErrOrStderr(), res.Message)
					}
				}
				return res
			})
			if err != nil || data == "" {
				return err
			}
			if out == "" {
				fmt.Fprintln(c.OutOrStdout(), data)
				return nil
			}
			return os.WriteFile(out, []byte(data+"\n"), 0600)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to file instead of stdout")
	return cmd
}
