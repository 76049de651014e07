/*
Package observability turns adapter lifecycle events into metrics and logs.

Metrics registers Prometheus collectors and returns domain.LifecycleHooks that
feed them; LogHooks does the same for a structured logger. Hooks from both can
be combined with LifecycleHooks.Merge.
*/
package observability
