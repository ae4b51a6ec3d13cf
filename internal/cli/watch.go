package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/specialistvlad/addongraph/internal/app"
	"github.com/specialistvlad/addongraph/internal/resolver"
)

func newWatchCmd(global *globalOptions) *cobra.Command {
	opts := &resolveOptions{}
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch [PATH...]",
		Short: "Resolve again whenever a manifest under PATH changes",
		Long: `Resolve the addons under the given paths, print the result, and resolve
again every time a manifest is created, changed or removed. Runs until
interrupted.`,
		PreRunE: func(*cobra.Command, []string) error {
			return validateOutput(opts.output)
		},
		RunE: func(cmd *cobra.Command, a []string) error {
			return withApp(cmd, global, opts.config(a), func(ctx context.Context, ag *app.App) error {
				out := cmd.OutOrStdout()
				return ag.Watch(ctx, debounce, func(res *resolver.Result, err error) {
					switch {
					case errors.Is(err, resolver.ErrEmptyGraph):
						fmt.Fprintln(out, "No addon manifests found.")
					case err != nil:
						fmt.Fprintf(out, "Resolution failed: %v\n", err)
					default:
						_ = printResult(out, res, opts.output)
					}
				})
			})
		},
	}
	opts.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", app.DefaultDebounce, "Quiet period before resolving after a change.")
	return cmd
}
