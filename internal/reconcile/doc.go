// Package reconcile compares record directories produced by different
// harvesters: it finds files present in both, removes the redundant copies
// from the newer directory, measures how much a new harvest adds, and
// surveys a workspace for invalid or repeated files.
package reconcile
