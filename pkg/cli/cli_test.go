package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/biolinks/biolinks/pkg/auth"
	"github.com/biolinks/biolinks/pkg/cli/cmd"
	"github.com/biolinks/biolinks/pkg/orchestrator"
	"github.com/biolinks/biolinks/pkg/session"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "cli-test-secret"

const testConfig = `
session:
  secret: cli-test-secret
fetchers:
  file:
    watch: "false"
`

func TestCLI(t *testing.T) {
	appDir := t.TempDir()
	configDir := filepath.Join(appDir, ".biolinks")
	require.NoError(t, os.MkdirAll(configDir, 0766))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(testConfig), 0644))

	// These share the root command and its flags so they run in sequence
	t.Run("layersCmd() - biolinks layers --page heritage lists the page", testLayersCmd(cmd.RootCmd, appDir))
	t.Run("layersCmd() - biolinks layers --page nowhere lists the pages", testLayersUnknownPageCmd(cmd.RootCmd, appDir))
	t.Run("tokenCmd() - biolinks token mints a session token", testTokenCmd(cmd.RootCmd, appDir))
	t.Run("fetchCmd() - biolinks fetch runs the orchestrator", testFetchCmd(cmd.RootCmd, appDir))
	t.Run("versionCmd() - biolinks version", testVersionCmd(cmd.RootCmd))
}

func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	err = root.Execute()

	return buf.String(), err
}

func testLayersCmd(root *cobra.Command, appDir string) func(*testing.T) {
	return func(t *testing.T) {
		output, err := executeCommand(root, "layers", "--app-dir", appDir, "--page", "heritage")
		require.NoError(t, err)

		assert.Contains(t, output, "vegetation")
		assert.Contains(t, output, "historicalSites")
		assert.NotContains(t, output, "birdData")
	}
}

func testLayersUnknownPageCmd(root *cobra.Command, appDir string) func(*testing.T) {
	return func(t *testing.T) {
		output, err := executeCommand(root, "layers", "--app-dir", appDir, "--page", "nowhere")
		require.NoError(t, err)

		assert.Contains(t, output, "page 'nowhere' not found")
		assert.Contains(t, output, "weeds")
	}
}

func testTokenCmd(root *cobra.Command, appDir string) func(*testing.T) {
	return func(t *testing.T) {
		output, err := executeCommand(root, "token", "--app-dir", appDir, "--name", "Sam", "--group", auth.AdminGroup, "--landcare-group", "jallukar")
		require.NoError(t, err)

		caller, err := session.NewProvider(testSecret).Parse(strings.TrimSpace(output))
		require.NoError(t, err)
		assert.Equal(t, "Sam", caller.User.Name)
		assert.Equal(t, auth.AdminGroup, caller.Group)
		assert.Equal(t, "jallukar", caller.LandcareGroup)
	}
}

func testFetchCmd(root *cobra.Command, appDir string) func(*testing.T) {
	return func(t *testing.T) {
		output, err := executeCommand(root, "fetch", "--app-dir", appDir, "--layer", "vegetation", "--layer", "squirrelGliders", "--anonymous")
		require.NoError(t, err)

		response := &orchestrator.Response{}
		require.NoError(t, json.Unmarshal([]byte(output), response))

		assert.Contains(t, response.Data, "vegetation")
		assert.Equal(t, map[string]string{"squirrelGliders": "Unauthorized"}, response.Errors)
	}
}

func testVersionCmd(root *cobra.Command) func(*testing.T) {
	return func(t *testing.T) {
		output, err := executeCommand(root, "version")
		require.NoError(t, err)
		assert.Contains(t, output, "edge")
	}
}
