package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/specialistvlad/addongraph/internal/executor"
	"github.com/specialistvlad/addongraph/internal/resolver"
)

const (
	outputText = "text"
	outputJSON = "json"
)

// resultView is the JSON shape of a resolution.
type resultView struct {
	Order       []string              `json:"order"`
	Excluded    []string              `json:"excluded,omitempty"`
	Diagnostics []resolver.Diagnostic `json:"diagnostics"`
}

// reportView is the JSON shape of a load.
type reportView struct {
	resultView
	Loaded  []string          `json:"loaded"`
	Failed  []string          `json:"failed,omitempty"`
	Skipped []string          `json:"skipped,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func newResultView(res *resolver.Result) resultView {
	v := resultView{
		Order:       res.Order,
		Excluded:    res.Excluded(),
		Diagnostics: res.Diagnostics,
	}
	if v.Order == nil {
		v.Order = []string{}
	}
	if v.Diagnostics == nil {
		v.Diagnostics = []resolver.Diagnostic{}
	}
	return v
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newTable creates a table with standard styling.
func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

// printResult writes the load order and the diagnostics of res.
func printResult(w io.Writer, res *resolver.Result, format string) error {
	if format == outputJSON {
		return writeJSON(w, newResultView(res))
	}

	if len(res.Order) == 0 {
		fmt.Fprintln(w, "No addons can be loaded.")
	} else {
		t := newTable(w)
		t.SetTitle("Load order")
		t.AppendHeader(table.Row{"#", "ADDON", "VERSION", "LOCATION"})
		for i, id := range res.Order {
			version, location := "-", ""
			if m := res.Manifests[id]; m != nil {
				if m.Version != "" {
					version = m.Version
				}
				location = m.Location
			}
			t.AppendRow(table.Row{strconv.Itoa(i + 1), id, version, location})
		}
		t.Render()
	}

	printDiagnostics(w, res.Diagnostics)
	fmt.Fprintf(w, "%d addon(s) ordered, %d error(s), %d warning(s).\n",
		len(res.Order), len(res.Errors()), len(res.Warnings()))
	return nil
}

func printDiagnostics(w io.Writer, diags []resolver.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	t := newTable(w)
	t.SetTitle("Diagnostics")
	t.AppendHeader(table.Row{"SEVERITY", "KIND", "ADDON", "DEPENDENCY", "MESSAGE"})
	for _, d := range diags {
		t.AppendRow(table.Row{d.Severity.String(), string(d.Kind), d.Node, d.Dependency, d.Message})
	}
	t.Render()
}

// printReport writes what happened to each addon during a load.
func printReport(w io.Writer, res *resolver.Result, report *executor.Report, format string) error {
	if format == outputJSON {
		v := reportView{
			resultView: newResultView(res),
			Loaded:     report.Loaded,
			Failed:     report.Failed,
			Skipped:    report.Skipped,
		}
		if v.Loaded == nil {
			v.Loaded = []string{}
		}
		if len(report.Errors) > 0 {
			v.Errors = make(map[string]string, len(report.Errors))
			for id, err := range report.Errors {
				v.Errors[id] = errText(err)
			}
		}
		return writeJSON(w, v)
	}

	printDiagnostics(w, res.Diagnostics)
	t := newTable(w)
	t.SetTitle("Load report")
	t.AppendHeader(table.Row{"ADDON", "STATUS", "ERROR"})
	for _, id := range report.Loaded {
		t.AppendRow(table.Row{id, "loaded", ""})
	}
	for _, id := range report.Failed {
		t.AppendRow(table.Row{id, "failed", errText(report.Errors[id])})
	}
	for _, id := range report.Skipped {
		t.AppendRow(table.Row{id, "skipped", ""})
	}
	t.Render()
	fmt.Fprintf(w, "%d loaded, %d failed, %d skipped.\n",
		len(report.Loaded), len(report.Failed), len(report.Skipped))
	return nil
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
