// Package integrationtests runs the app end to end over manifest trees
// written to disk.
package integrationtests
