// Package monitor provides background sampling of host CPU, memory and disk
// utilization. A single goroutine samples at a fixed period, publishes the
// newest reading to a latest-value cell and periodically persists samples to
// the evolution memory. Only the most recent sample is ever consumed, so the
// publication point is a mutex-guarded cell rather than a queue.
//
// Sampling is pluggable through the Sampler interface; SystemSampler reads
// real host utilization via gopsutil, while tests inject deterministic
// samplers to exercise the loop without touching the host.
package monitor
