// File: cmd/run.go
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/rakanhl/declare-cli/internal/browser"
	"github.com/rakanhl/declare-cli/internal/config"
	"github.com/rakanhl/declare-cli/internal/declaration"
	"github.com/rakanhl/declare-cli/internal/observability"
	"github.com/rakanhl/declare-cli/internal/ui"
	"github.com/rakanhl/declare-cli/internal/xlsx"
)

// newRunCmd creates and configures the `run` command.
func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Processes a declaration batch from a spreadsheet",
		Long: `Reads credentials, shared context and declaration records from the
workbook, logs into the portal and executes the requested action for
every record. Without --file the command prompts interactively.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			file, _ := cmd.Flags().GetString("file")
			if file != "" && !validWorkbookExt(file) {
				return fmt.Errorf("unsupported workbook extension %q, expected .xlsx, .xlsm or .xls", filepath.Ext(file))
			}

			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("headless") {
				cfg.Browser.Headless, _ = cmd.Flags().GetBool("headless")
			}
			if file == "" {
				in := bufio.NewReader(cmd.InOrStdin())
				out := cmd.OutOrStdout()
				// An explicit --headless already answers the mode question.
				if !cmd.Flags().Changed("headless") {
					headless, err := promptRunMode(in, out)
					if err != nil {
						return err
					}
					cfg.Browser.Headless = headless
				}
				if file, err = promptWorkbookPath(in, out); err != nil {
					return err
				}
			}

			src, err := xlsx.Open(file, logger)
			if err != nil {
				return err
			}
			defer src.Close()

			creds, err := src.Credentials()
			if err != nil {
				return err
			}
			if creds.URL == "" {
				return fmt.Errorf("workbook %s carries no portal URL", file)
			}
			shared, err := src.Context()
			if err != nil {
				return err
			}

			summary, err := executeBatch(ctx, cfg, src, creds, shared, logger)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"\nBatch complete: %d processed, %d skipped, %d timed out, %d failed\n",
				summary.Processed, summary.Skipped, summary.TimedOut, summary.Failed)
			return nil
		},
	}

	runCmd.Flags().StringP("file", "f", "", "Path to the batch workbook (.xlsx). If unset, prompts interactively.")
	runCmd.Flags().Bool("headless", true, "Run the browser without a visible window. (Overrides config/env)")

	return runCmd
}

// executeBatch owns the session lifecycle: launch, navigate, authenticate,
// keep alive, process, close.
func executeBatch(ctx context.Context, cfg *config.Config, src declaration.DataSource,
	creds declaration.Credentials, shared declaration.Context, logger *zap.Logger) (*declaration.Summary, error) {

	session, err := browser.NewSession(ctx, cfg.Browser, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to start browser session: %w", err)
	}
	defer session.Close()
	page := session.Page()

	if err := page.Navigate(ctx, creds.URL); err != nil {
		return nil, fmt.Errorf("failed to open portal: %w", err)
	}

	auth := declaration.NewAuthenticator(page, cfg.Browser.PageLoadTimeout, logger)
	if err := ui.Do(ctx, loginPolicy(cfg.Retry), func(ctx context.Context) error {
		return auth.Login(ctx, creds)
	}); err != nil {
		return nil, fmt.Errorf("initial login failed: %w", err)
	}

	keepAlive := browser.NewKeepAlive(page, cfg.KeepAlive.Interval, logger)
	keepAlive.Start(ctx)
	defer keepAlive.Stop()

	popups := ui.NewPopupResolver(page, logger)
	popups.ProbeTimeout = cfg.Popup.ProbeTimeout
	popups.Settle = cfg.Popup.Settle

	form := declaration.NewForm(page, popups, shared, fieldPolicy(cfg.Retry), cfg.Browser.ElementTimeout, logger)
	recovery := declaration.NewRecovery(page, auth, loginPolicy(cfg.Retry), logger)
	processor := declaration.NewProcessor(form, recovery, opPolicy(cfg.Retry), logger)

	return processor.Run(ctx, src)
}

// promptRunMode asks for the browser mode until the answer is 1 or 2.
func promptRunMode(in *bufio.Reader, out io.Writer) (headless bool, err error) {
	for {
		fmt.Fprint(out, "Run mode (1 = headless, 2 = visible browser): ")
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return false, fmt.Errorf("failed to read run mode: %w", err)
		}
		switch strings.TrimSpace(line) {
		case "1":
			return true, nil
		case "2":
			return false, nil
		}
		fmt.Fprintln(out, "Please enter 1 or 2.")
		if err != nil {
			return false, fmt.Errorf("failed to read run mode: %w", err)
		}
	}
}

// promptWorkbookPath asks for the spreadsheet path until it names an existing
// file with a supported extension.
func promptWorkbookPath(in *bufio.Reader, out io.Writer) (string, error) {
	for {
		fmt.Fprint(out, "Path to the batch workbook: ")
		line, err := in.ReadString('\n')
		path := strings.TrimSpace(line)
		if err != nil && path == "" {
			return "", fmt.Errorf("failed to read workbook path: %w", err)
		}
		switch {
		case !validWorkbookExt(path):
			fmt.Fprintln(out, "The file must be a .xlsx, .xlsm or .xls workbook.")
		case !fileExists(path):
			fmt.Fprintf(out, "No file found at %s.\n", path)
		default:
			return path, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to read workbook path: %w", err)
		}
	}
}

func validWorkbookExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
		return true
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// fieldPolicy builds the per-field retry policy from the configured budgets.
func fieldPolicy(rc config.RetryConfig) ui.Policy {
	p := ui.FieldRetry()
	p.MaxAttempts = rc.FieldAttempts
	p.Delay = rc.FieldDelay
	return p
}

func opPolicy(rc config.RetryConfig) ui.Policy {
	p := ui.OpRetry()
	p.MaxAttempts = rc.OpAttempts
	p.Delay = rc.OpDelay
	return p
}

func loginPolicy(rc config.RetryConfig) ui.Policy {
	p := ui.LoginRetry()
	p.MaxAttempts = rc.LoginAttempts
	p.Delay = rc.LoginDelay
	return p
}
