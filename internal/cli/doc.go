// Package cli holds the addongraph command tree. It turns flags and
// arguments into an app.Config, runs the requested command and maps every
// failure onto an ExitError carrying the process exit code.
package cli
