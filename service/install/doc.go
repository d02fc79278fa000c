// Package install holds the stage executors of the orchestrated run: the
// base engine installer and the two loader installers. Each executor owns an
// allocated progress sub-range, retries transient failures with a fixed
// delay and verifies its outcome against the on-disk version inventory, so
// re-running a stage over an already-correct installation is a no-op.
package install
