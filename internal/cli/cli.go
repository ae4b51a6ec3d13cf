package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/specialistvlad/addongraph/internal/app"
)

// Exit codes returned through ExitError.
const (
	ExitCodeFailure = 1
	ExitCodeUsage   = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func usageError(err error) error {
	return &ExitError{Code: ExitCodeUsage, Message: err.Error(), Err: err}
}

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	logLevel    string
	logFormat   string
	metricsPort int
}

// NewRootCommand builds the command tree. Command output goes to outW and
// logs go to errW.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "addongraph",
		Short: "Resolve and load addons in dependency order",
		Long: `addongraph reads addon manifests (manifest.hcl or manifest.yaml), builds
the dependency graph between them, reports cycles, missing dependencies and
version mismatches, and loads the addons in parallel with every dependency
before its dependents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&opts.logLevel, "log-level", "info", "Logging level: debug, info, warn or error.")
	pf.StringVar(&opts.logFormat, "log-format", "text", "Log output format: text or json.")
	pf.IntVar(&opts.metricsPort, "metrics-port", 0, "Port for the /health and /metrics server. 0 is disabled.")

	root.AddCommand(
		newResolveCmd(opts),
		newLoadCmd(opts),
		newCheckCmd(),
		newWatchCmd(opts),
	)
	return root
}

// Execute runs the command line in args and returns nil or an *ExitError.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCommand(outW, errW)
	root.SetArgs(args)
	return toExitError(root.ExecuteContext(ctx))
}

func toExitError(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	// cobra reports unknown commands as plain errors.
	if strings.HasPrefix(err.Error(), "unknown command") {
		return usageError(err)
	}
	return &ExitError{Code: ExitCodeFailure, Message: err.Error(), Err: err}
}

// args wraps a cobra argument validator so its failures are usage errors.
func args(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, a []string) error {
		if err := validate(cmd, a); err != nil {
			return usageError(err)
		}
		return nil
	}
}

// pathsOrDefault returns the paths given on the command line, or the
// current directory.
func pathsOrDefault(a []string) []string {
	if len(a) == 0 {
		return []string{"."}
	}
	return a
}

// withApp validates cfg, builds an App logging to the command's error
// stream and runs fn with the metrics server up for its duration.
func withApp(cmd *cobra.Command, opts *globalOptions, cfg app.Config, fn func(context.Context, *app.App) error) error {
	cfg.LogLevel = opts.logLevel
	cfg.LogFormat = opts.logFormat
	cfg.MetricsPort = opts.metricsPort

	validated, err := app.NewConfig(cfg)
	if err != nil {
		return usageError(err)
	}
	a := app.NewApp(cmd.ErrOrStderr(), validated, nil)
	ctx := a.Context(cmd.Context())

	if _, err := a.StartServer(ctx); err != nil {
		return err
	}
	defer func() {
		_ = a.Close(context.WithoutCancel(ctx))
	}()
	return fn(ctx, a)
}

// validateOutput checks the --output flag.
func validateOutput(format string) error {
	switch format {
	case outputText, outputJSON:
		return nil
	}
	return usageError(fmt.Errorf("invalid output %q: must be 'text' or 'json'", format))
}
