package mqttws

import "time"

// keepAliveBound returns the time remaining until a PINGREQ becomes due:
// three quarters of the negotiated keep-alive interval past lastActivity,
// so at least one PING lands within every keep-alive window even under
// poll-timing jitter. The result is anchored to lastActivity, not to the
// moment keepAliveBound is called — recomputing a fixed duration from
// "now" on every call would silently push the deadline back each time the
// service routine ran, letting a due ping slip past keep_alive seconds.
// A zero or negative result means a ping is already due.
func keepAliveBound(lastActivity time.Time, keepAlive time.Duration) time.Duration {
	if keepAlive <= 0 {
		return 0
	}
	return time.Until(lastActivity.Add(keepAlive * 3 / 4))
}

// duePing reports whether the keep-alive bound has elapsed since
// lastActivity and a PINGREQ must be sent now.
func duePing(lastActivity time.Time, keepAlive time.Duration) bool {
	if keepAlive <= 0 {
		return false
	}
	return keepAliveBound(lastActivity, keepAlive) <= 0
}
