// Package metrics implements [nav.Metric] accumulators for path-following
// runs. Each metric is created per run; the simulator resets it and feeds
// it every integrated pose.
package metrics
