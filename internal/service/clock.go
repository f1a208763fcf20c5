package service

import "time"

// Clock supplies the current time. Services read it once per operation and
// pass the value down.
type Clock func() time.Time

// SystemClock is the wall clock.
func SystemClock() time.Time { return time.Now() }
