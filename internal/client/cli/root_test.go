package cli

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	"health-companion-api/internal/api"
	"health-companion-api/internal/auth"
	"health-companion-api/internal/handler"
	"health-companion-api/internal/middleware"
	"health-companion-api/internal/store/sqlite"
)

func withTempHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("USERPROFILE", dir)
	return dir
}

func startServer(t *testing.T) dialFunc {
	t.Helper()
	db, err := sqlite.New("file:cli_" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(db.Close)

	iss := auth.NewIssuer("test-secret")
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(middleware.Auth(iss)))
	api.RegisterHealthServiceServer(srv, handler.New(db, iss))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	return func(string) (*api.Client, error) {
		return api.Dial("passthrough:///bufnet",
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }))
	}
}

// run executes one healthctl invocation on a fresh command tree.
func run(t *testing.T, dial dialFunc, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRoot("test", dial)
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, nil, "", "version")
	if err != nil || !strings.Contains(out, "healthctl test") {
		t.Fatalf("version: %q %v", out, err)
	}
}

func TestNotLoggedIn(t *testing.T) {
	withTempHome(t)
	dial := startServer(t)
	if _, err := run(t, dial, "", "meds", "list"); err != errNotLoggedIn {
		t.Fatalf("expected not logged in, got %v", err)
	}
}

func TestSession(t *testing.T) {
	home := withTempHome(t)
	dial := startServer(t)

	if _, err := run(t, dial, "cli@test.com\nCli User\ntestpass123\n", "register"); err != nil {
		t.Fatalf("register: %v", err)
	}
	info, err := os.Stat(filepath.Join(home, ".healthctl_token"))
	if err != nil {
		t.Fatalf("token file: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("token file mode %v", info.Mode().Perm())
	}

	out, err := run(t, dial, "cli@test.com\ntestpass123\n", "login")
	if err != nil || !strings.Contains(out, "Logged in as Cli User") {
		t.Fatalf("login: %q %v", out, err)
	}
	if _, err := run(t, dial, "cli@test.com\nwrongpass\n", "login"); err == nil {
		t.Error("wrong password logged in")
	}

	// export before anything exists
	out, err = run(t, dial, "", "export", "medications")
	if err != nil || !strings.Contains(out, "No data found to export") {
		t.Fatalf("empty export: %q %v", out, err)
	}

	out, err = run(t, dial, "", "meds", "add", "--name", "Aspirin", "--dosage", "100mg", "--time", "08:00")
	if err != nil {
		t.Fatalf("meds add: %v", err)
	}
	medID := strings.TrimSpace(out)

	if _, err := run(t, dial, "", "meds", "update", medID, "--dosage", "200mg"); err != nil {
		t.Fatalf("meds update: %v", err)
	}
	out, err = run(t, dial, "", "meds", "list")
	if err != nil || !strings.Contains(out, "Aspirin") || !strings.Contains(out, "200mg") {
		t.Fatalf("meds list: %q %v", out, err)
	}

	csvPath := filepath.Join(home, "meds.csv")
	if _, err := run(t, dial, "", "export", "medications", "--out", csvPath); err != nil {
		t.Fatalf("export: %v", err)
	}
	b, _ := os.ReadFile(csvPath)
	if !strings.HasPrefix(string(b), "medicationName,") || !strings.Contains(string(b), `"Aspirin","200mg"`) {
		t.Errorf("csv: %q", b)
	}
	if _, err := run(t, dial, "", "export", "vitals"); err == nil || !strings.Contains(err.Error(), "Invalid data type specified") {
		t.Errorf("bad export type: %v", err)
	}

	for _, date := range []string{"2030-05-03", "2030-05-01"} {
		if _, err := run(t, dial, "", "appts", "add", "--doctor", "Dr. "+date, "--date", date); err != nil {
			t.Fatalf("appts add: %v", err)
		}
	}
	if _, err := run(t, dial, "", "appts", "add", "--doctor", "Dr. X", "--date", "someday"); err == nil {
		t.Error("bad date accepted")
	}
	out, err = run(t, dial, "", "appts", "upcoming")
	if err != nil {
		t.Fatalf("upcoming: %v", err)
	}
	if strings.Index(out, "2030-05-01") > strings.Index(out, "2030-05-03") {
		t.Errorf("upcoming order:\n%s", out)
	}

	if _, err := run(t, dial, "", "survey", "save", `{"sleep":7}`); err != nil {
		t.Fatalf("survey save: %v", err)
	}
	out, err = run(t, dial, "", "survey", "show")
	if err != nil || !strings.Contains(out, `{"sleep":7}`) {
		t.Fatalf("survey show: %q %v", out, err)
	}

	if _, err := run(t, dial, "", "meds", "delete", medID); err != nil {
		t.Fatalf("meds delete: %v", err)
	}
	out, _ = run(t, dial, "", "meds", "list")
	if strings.Contains(out, "Aspirin") {
		t.Errorf("deleted medication listed:\n%s", out)
	}
}
