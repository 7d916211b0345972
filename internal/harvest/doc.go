// Package harvest turns server responses into files on disk: one record file
// per node type, a node index export, and community-package install reports.
// Writers hold an advisory lock on their output directory so concurrent runs
// cannot interleave files.
package harvest
