// Package launcher orchestrates installation, updating and launching of a
// modded game client. A run fetches the remote manifest describing the
// target engine version, loader and content bundle, drives the stage
// executors in fixed order - base engine, loader, content bundle - over a
// partitioned 0-100 progress scale, persists settings at defined
// checkpoints and finally starts the game process for the locally derived
// player identity.
package launcher
