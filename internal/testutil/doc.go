// Package testutil holds the shared harness for end-to-end tests: writing a
// manifest tree to disk, running the app over it and asserting on the load.
package testutil
