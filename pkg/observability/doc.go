/*
Package observability turns dispatch lifecycle hooks into Prometheus metrics and
structured log records.

Both Metrics.Hooks and LogHooks return domain.LifecycleHooks, which can be merged and
passed to conduit.WithLifecycleHooks.
*/
package observability
