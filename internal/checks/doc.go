// Package checks turns configured probes of upstream dependencies into
// monitor endpoints. A check never fails its endpoint: an unreachable
// upstream is a successful report with healthy=false.
package checks
