// Package progress maps heterogeneous sub-task progress (byte counts, item
// counts or bare start/end markers) onto a single bounded 0-100 scale that
// is partitioned into fixed sub-ranges per installation stage.
package progress
