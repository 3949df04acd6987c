package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"google.golang.org/grpc/status"

	"health-companion-api/internal/api"
)

func newRegisterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Create an account and store its token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			email := prompt(cmd, in, "Email: ")
			name := prompt(cmd, in, "Name: ")
			password, err := promptPassword(cmd, in, "Password: ")
			if err != nil {
				return err
			}
			c, err := a.dial(*a.server)
			if err != nil {
				return err
			}
			defer c.Close()
			resp, err := c.Register(context.Background(), &api.RegisterRequest{Email: email, Password: password, Name: name})
			if err != nil {
				return fmt.Errorf("register failed: %s", status.Convert(err).Message())
			}
			if err := saveToken(resp.Token); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Registered")
			return nil
		},
	}
}

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in and store the token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			email := prompt(cmd, in, "Email: ")
			password, err := promptPassword(cmd, in, "Password: ")
			if err != nil {
				return err
			}
			c, err := a.dial(*a.server)
			if err != nil {
				return err
			}
			defer c.Close()
			resp, err := c.Login(context.Background(), &api.LoginRequest{Email: email, Password: password})
			if err != nil {
				return fmt.Errorf("login failed: %s", status.Convert(err).Message())
			}
			if err := saveToken(resp.Token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", resp.Name)
			return nil
		},
	}
}

func prompt(cmd *cobra.Command, in *bufio.Reader, label string) string {
	fmt.Fprint(cmd.OutOrStdout(), label)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

// promptPassword hides input on a terminal and reads a plain line otherwise.
func promptPassword(cmd *cobra.Command, in *bufio.Reader, label string) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.OutOrStdout(), label)
		pass, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		return string(pass), err
	}
	fmt.Fprint(cmd.OutOrStdout(), label)
	line, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func tokenPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".healthctl_token")
}

func saveToken(token string) error {
	return os.WriteFile(tokenPath(), []byte(token), 0600)
}

func loadToken() (string, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
