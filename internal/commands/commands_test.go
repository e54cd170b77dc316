package commands_test

import (
	"bytes"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doispes-dev/doispes/internal/commands"
)

const fixture = "../../testdata/dividas.xml"

// runDoispes executes the CLI in-process and returns stdout and stderr.
func runDoispes(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	cmd := commands.NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// initRepo creates a repository in a temp dir with extra init flags.
func initRepo(t *testing.T, flags ...string) string {
	t.Helper()
	dir := t.TempDir()
	args := append([]string{"init", dir, "--family", "familia-silva", "--user", "user-ana", "--user-name", "Ana"}, flags...)
	_, _, err := runDoispes(t, args...)
	require.NoError(t, err)
	return dir
}

// stage copies the fixture into the repository's import directory.
func stage(t *testing.T, dir, name string) {
	t.Helper()
	data, err := os.ReadFile(fixture)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", name), data, 0o644))
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func gitLog(t *testing.T, dir string) string {
	t.Helper()
	cmd := exec.Command("git", "log", "--format=%s")
	cmd.Dir = dir
	out, err := cmd.Output()
	require.NoError(t, err)
	return string(out)
}

func TestVersion(t *testing.T) {
	out, _, err := runDoispes(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "dev (commit: none, built: unknown)")
}
