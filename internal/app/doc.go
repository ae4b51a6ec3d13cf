// Package app wires manifest discovery, resolution and parallel loading
// together behind one configured App. It owns the logger, the metrics
// registry and the optional health and metrics HTTP server, and stays
// independent of any entrypoint such as the CLI.
package app
