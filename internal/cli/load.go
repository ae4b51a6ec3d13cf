package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/specialistvlad/addongraph/internal/app"
	"github.com/specialistvlad/addongraph/internal/resolver"
)

func newLoadCmd(global *globalOptions) *cobra.Command {
	opts := &resolveOptions{}
	var workers int
	cmd := &cobra.Command{
		Use:   "load [PATH...]",
		Short: "Resolve the addons under PATH and activate them in parallel",
		Long: `Resolve the addons under the given paths, then activate every addon in the
load order on a pool of workers. An addon starts only after all of its
dependencies are active. The first failed activation stops the run; addons
that never started are reported as skipped.`,
		PreRunE: func(*cobra.Command, []string) error {
			return validateOutput(opts.output)
		},
		RunE: func(cmd *cobra.Command, a []string) error {
			cfg := opts.config(a)
			cfg.WorkerCount = workers
			return withApp(cmd, global, cfg, func(ctx context.Context, ag *app.App) error {
				out := cmd.OutOrStdout()
				res, report, err := ag.Load(ctx, nil)
				if errors.Is(err, resolver.ErrEmptyGraph) {
					fmt.Fprintln(out, "No addon manifests found.")
					return nil
				}
				switch {
				case report != nil:
					if perr := printReport(out, res, report, opts.output); perr != nil {
						return perr
					}
				case res != nil:
					if perr := printResult(out, res, opts.output); perr != nil {
						return perr
					}
				}
				return err
			})
		},
	}
	opts.register(cmd)
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Refuse to load when resolution reports errors.")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent loader workers. 0 means GOMAXPROCS.")
	return cmd
}
