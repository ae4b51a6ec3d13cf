package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/specialistvlad/addongraph/internal/app"
	"github.com/specialistvlad/addongraph/internal/resolver"
)

// resolveOptions are the flags shared by commands that resolve manifests.
type resolveOptions struct {
	output              string
	strict              bool
	failOnManifestError bool
	readConcurrency     int
}

func (o *resolveOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", outputText, "Output format: text or json.")
	f.BoolVar(&o.failOnManifestError, "fail-on-manifest-error", false, "Abort when any manifest cannot be read.")
	f.IntVar(&o.readConcurrency, "read-concurrency", 0, "Manifests read in parallel. 0 means GOMAXPROCS.")
}

func (o *resolveOptions) config(paths []string) app.Config {
	return app.Config{
		Paths:               pathsOrDefault(paths),
		ReadConcurrency:     o.readConcurrency,
		FailOnManifestError: o.failOnManifestError,
		Strict:              o.strict,
	}
}

// errorsReported is returned under --strict when resolution found errors.
func errorsReported(res *resolver.Result) error {
	return &ExitError{
		Code:    ExitCodeFailure,
		Message: fmt.Sprintf("resolution reported %d error(s)", len(res.Errors())),
	}
}

func newResolveCmd(global *globalOptions) *cobra.Command {
	opts := &resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve [PATH...]",
		Short: "Print the load order and diagnostics for the addons under PATH",
		Long: `Discover every manifest under the given paths (the current directory by
default), resolve their dependencies and print the load order followed by any
diagnostics. With --strict the command fails when an error is reported.`,
		PreRunE: func(*cobra.Command, []string) error {
			return validateOutput(opts.output)
		},
		RunE: func(cmd *cobra.Command, a []string) error {
			return withApp(cmd, global, opts.config(a), func(ctx context.Context, ag *app.App) error {
				out := cmd.OutOrStdout()
				res, err := ag.Resolve(ctx)
				if errors.Is(err, resolver.ErrEmptyGraph) {
					fmt.Fprintln(out, "No addon manifests found.")
					return nil
				}
				if err != nil {
					return err
				}
				if err := printResult(out, res, opts.output); err != nil {
					return err
				}
				if opts.strict && res.HasErrors() {
					return errorsReported(res)
				}
				return nil
			})
		},
	}
	opts.register(cmd)
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Exit with an error when resolution reports errors.")
	return cmd
}
