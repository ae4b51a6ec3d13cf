package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertAddonActivated checks the log output for the activation line of id.
func AssertAddonActivated(t *testing.T, result *HarnessResult, id string) {
	t.Helper()

	for _, line := range strings.Split(result.LogOutput, "\n") {
		if strings.Contains(line, `msg="Addon activated."`) && strings.Contains(line, " addon="+id+" ") {
			return
		}
	}
	require.Fail(t, "addon was not activated", "no activation log line for %q", id)
}

// AssertRanBefore checks that dep finished loading before dependent started.
func AssertRanBefore(t *testing.T, s *Sleeper, dep, dependent string) {
	t.Helper()

	depRec, ok := s.Record(dep)
	require.True(t, ok, "%q never loaded", dep)
	rec, ok := s.Record(dependent)
	require.True(t, ok, "%q never loaded", dependent)
	require.False(t, rec.Start.Before(depRec.End),
		"%q started at %v before its dependency %q finished at %v", dependent, rec.Start, dep, depRec.End)
}
