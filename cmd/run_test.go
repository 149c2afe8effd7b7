// File: cmd/run_test.go
package cmd

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakanhl/declare-cli/internal/config"
)

func TestValidWorkbookExt(t *testing.T) {
	assert.True(t, validWorkbookExt("batch.xlsx"))
	assert.True(t, validWorkbookExt("batch.XLSM"))
	assert.True(t, validWorkbookExt("legacy.xls"))
	assert.False(t, validWorkbookExt("batch.csv"))
	assert.False(t, validWorkbookExt("batch"))
	assert.False(t, validWorkbookExt(""))
}

func TestPromptRunModeAcceptsOnlyOneOrTwo(t *testing.T) {
	var out bytes.Buffer
	in := bufio.NewReader(strings.NewReader("maybe\n3\n2\n"))

	headless, err := promptRunMode(in, &out)
	require.NoError(t, err)
	assert.False(t, headless)
	assert.Contains(t, out.String(), "Please enter 1 or 2.")
}

func TestPromptRunModeHeadless(t *testing.T) {
	var out bytes.Buffer
	in := bufio.NewReader(strings.NewReader("1\n"))

	headless, err := promptRunMode(in, &out)
	require.NoError(t, err)
	assert.True(t, headless)
}

func TestPromptRunModeFailsOnClosedInput(t *testing.T) {
	var out bytes.Buffer
	in := bufio.NewReader(strings.NewReader(""))

	_, err := promptRunMode(in, &out)
	require.Error(t, err)
}

func TestPromptWorkbookPathRetriesUntilUsable(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "batch.xlsx")
	require.NoError(t, os.WriteFile(good, []byte("stub"), 0o644))

	var out bytes.Buffer
	input := strings.Join([]string{"notes.txt", filepath.Join(dir, "absent.xlsx"), good}, "\n") + "\n"
	in := bufio.NewReader(strings.NewReader(input))

	path, err := promptWorkbookPath(in, &out)
	require.NoError(t, err)
	assert.Equal(t, good, path)
	assert.Contains(t, out.String(), ".xlsx, .xlsm or .xls")
	assert.Contains(t, out.String(), "No file found")
}

func TestPoliciesCarryConfiguredBudgets(t *testing.T) {
	rc := config.RetryConfig{
		FieldAttempts: 5, FieldDelay: 100 * time.Millisecond,
		OpAttempts: 2, OpDelay: time.Second,
		LoginAttempts: 4, LoginDelay: 3 * time.Second,
	}

	fp := fieldPolicy(rc)
	assert.Equal(t, 5, fp.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, fp.Delay)

	op := opPolicy(rc)
	assert.Equal(t, 2, op.MaxAttempts)
	assert.Equal(t, time.Second, op.Delay)
	require.NotNil(t, op.Classify, "operation retries must keep their timeout classifier")

	lp := loginPolicy(rc)
	assert.Equal(t, 4, lp.MaxAttempts)
	assert.True(t, lp.Grow)
}

func TestExplicitHeadlessFlagSkipsModePrompt(t *testing.T) {
	config.SetDefaults(viper.GetViper())

	dir := t.TempDir()
	stub := filepath.Join(dir, "batch.xlsx")
	require.NoError(t, os.WriteFile(stub, []byte("not a workbook"), 0o644))

	cmd := newRunCmd()
	cmd.SetArgs([]string{"--headless=false"})
	// Input answers only the path prompt; a mode prompt would leave the
	// command waiting on a second line.
	cmd.SetIn(strings.NewReader(stub + "\n"))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(new(bytes.Buffer))

	err := cmd.Execute()
	require.Error(t, err, "the stub file is not a readable workbook")
	assert.NotContains(t, out.String(), "Run mode")
	assert.Contains(t, out.String(), "Path to the batch workbook")
}

func TestRunCommandRejectsBadExtension(t *testing.T) {
	cmd := newRunCmd()
	cmd.SetArgs([]string{"--file", "batch.csv"})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported workbook extension")
}
