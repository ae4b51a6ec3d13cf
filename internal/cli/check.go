package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/specialistvlad/addongraph/internal/version"
)

func newCheckCmd() *cobra.Command {
	var (
		date       bool
		candidates []string
	)
	cmd := &cobra.Command{
		Use:   "check VERSION CONSTRAINT",
		Short: "Check a version against a constraint",
		Long: `Check whether VERSION satisfies CONSTRAINT and exit non-zero when it does
not. Versions are semantic versions, or dates (YYYY-MM-DD) with --date.

With --candidates the command takes only CONSTRAINT and prints the highest
candidate that satisfies it.

Examples:
  addongraph check 1.4.2 "^1.2.0"
  addongraph check --date 2024-03-01 ">=2024-01-01"
  addongraph check "~1.2.0" --candidates 1.2.0,1.2.9,1.3.0`,
		Args: args(func(cmd *cobra.Command, a []string) error {
			if len(candidates) > 0 {
				return cobra.ExactArgs(1)(cmd, a)
			}
			return cobra.ExactArgs(2)(cmd, a)
		}),
		RunE: func(cmd *cobra.Command, a []string) error {
			out := cmd.OutOrStdout()
			if len(candidates) > 0 {
				best, err := maxSatisfying(a[0], candidates, date)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, best)
				return nil
			}

			actual, constraint := a[0], a[1]
			ok, err := satisfies(actual, constraint, date)
			if err != nil {
				return usageError(err)
			}
			if !ok {
				return &ExitError{
					Code:    ExitCodeFailure,
					Message: fmt.Sprintf("%s does not satisfy %s", actual, constraint),
				}
			}
			fmt.Fprintf(out, "%s satisfies %s\n", actual, constraint)
			return nil
		},
	}
	cmd.Flags().BoolVar(&date, "date", false, "Compare dates (YYYY-MM-DD) instead of semantic versions.")
	cmd.Flags().StringSliceVar(&candidates, "candidates", nil, "Versions to choose the highest match from.")
	return cmd
}

func satisfies(actual, constraint string, date bool) (bool, error) {
	if !date {
		return version.Satisfies(actual, constraint)
	}
	d, err := version.ParseDate(actual)
	if err != nil {
		return false, err
	}
	return version.CheckDateVersion(d, constraint)
}

// maxSatisfying returns the highest candidate matching constraint.
func maxSatisfying(constraint string, candidates []string, date bool) (string, error) {
	if date {
		var best version.DateVersion
		found := false
		for _, raw := range candidates {
			d, err := version.ParseDate(raw)
			if err != nil {
				return "", usageError(err)
			}
			ok, err := version.CheckDateVersion(d, constraint)
			if err != nil {
				return "", usageError(err)
			}
			if ok && (!found || best.Before(d)) {
				best, found = d, true
			}
		}
		if !found {
			return "", noMatch(constraint)
		}
		return best.String(), nil
	}

	vs := make([]version.Version, 0, len(candidates))
	for _, raw := range candidates {
		v, err := version.Parse(raw)
		if err != nil {
			return "", usageError(err)
		}
		vs = append(vs, v)
	}
	best, ok, err := version.MaxSatisfying(constraint, vs)
	if err != nil {
		return "", usageError(err)
	}
	if !ok {
		return "", noMatch(constraint)
	}
	return best.String(), nil
}

func noMatch(constraint string) error {
	return &ExitError{Code: ExitCodeFailure, Message: fmt.Sprintf("no candidate satisfies %s", constraint)}
}
