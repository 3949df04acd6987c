// Package cli is the healthctl command tree. Each invocation is one session
// backed by one healthstore.Store.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"health-companion-api/internal/api"
	"health-companion-api/internal/client/healthstore"
)

var (
	_ healthstore.Callables = (*api.Client)(nil)
	_ healthstore.Records   = (*api.Client)(nil)
)

var errNotLoggedIn = errors.New("not logged in; run healthctl login")

type dialFunc func(addr string) (*api.Client, error)

type app struct {
	server *string
	dial   dialFunc
	loc    *time.Location
}

func NewRootCmd(version string) *cobra.Command {
	return newRoot(version, func(addr string) (*api.Client, error) { return api.Dial(addr) })
}

func newRoot(version string, dial dialFunc) *cobra.Command {
	var server, zone string
	a := &app{server: &server, dial: dial, loc: time.UTC}
	root := &cobra.Command{
		Use:           "healthctl",
		Short:         "Health companion CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			loc, err := time.LoadLocation(zone)
			if err != nil {
				return fmt.Errorf("--tz: %w", err)
			}
			a.loc = loc
			return nil
		},
	}
	root.PersistentFlags().StringVar(&server, "server", "localhost:50051", "gRPC server address")
	root.PersistentFlags().StringVar(&zone, "tz", "UTC", "time zone for dates and \"today\"")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "healthctl", version)
		},
	})
	root.AddCommand(newRegisterCmd(a), newLoginCmd(a))
	root.AddCommand(newMedsCmd(a), newApptsCmd(a))
	root.AddCommand(newSurveyCmd(a), newExportCmd(a))
	return root
}

// session opens a client with the saved token and a store over it.
func (a *app) session() (*healthstore.Store, func(), error) {
	tok, _ := loadToken()
	if tok == "" {
		return nil, nil, errNotLoggedIn
	}
	c, err := a.dial(*a.server)
	if err != nil {
		return nil, nil, err
	}
	c.SetToken(tok)
	st := healthstore.New(healthstore.TokenSession{Token: tok}, c, c, healthstore.WithLocation(a.loc))
	return st, func() { _ = c.Close() }, nil
}

// run opens a session, calls fn and turns its Result into an error.
func (a *app) run(fn func(ctx context.Context, st *healthstore.Store) *healthstore.Result) error {
	st, closeFn, err := a.session()
	if err != nil {
		return err
	}
	defer closeFn()
	res := fn(context.Background(), st)
	if res == nil {
		return errNotLoggedIn
	}
	if !res.Success {
		return errors.New(res.Error)
	}
	return nil
}
