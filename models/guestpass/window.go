package guestpass

// The pass window is the half-open interval
// [visitTime, visitTime+durationMinutes*60) in epoch seconds: a pass is
// valid strictly before the end boundary and expired at or after it.
// Every read path and the sweeper share these functions; nothing else
// recomputes the formula.

// WindowEnd returns the exclusive end of the window in epoch seconds.
func WindowEnd(visitTime, durationMinutes int64) int64 {
	return visitTime + durationMinutes*60
}

// WindowExpired reports whether the window has elapsed at now.
func WindowExpired(visitTime, durationMinutes, now int64) bool {
	return now >= WindowEnd(visitTime, durationMinutes)
}

// WindowContains reports whether now falls inside the window.
func WindowContains(visitTime, durationMinutes, now int64) bool {
	return now >= visitTime && now < WindowEnd(visitTime, durationMinutes)
}
