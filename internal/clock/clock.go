package clock

import "time"

// NowFunc returns current time. Override in tests for determinism.
var NowFunc = time.Now

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }

// SleepFunc blocks for the supplied duration. Override in tests so retry
// delays and download throttling do not slow the suite down.
var SleepFunc = time.Sleep

// Sleep is a thin wrapper around SleepFunc.
func Sleep(d time.Duration) { SleepFunc(d) }
