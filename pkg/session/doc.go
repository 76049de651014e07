/*
Package session serialises access to recorded runs.

A Manager wraps a ports.StateStore and guards every run ID with its own
reference-counted mutex, so concurrent writers to the same run never
interleave while writers to different runs proceed in parallel. With a
ports.DistributedLocker the guard extends across replicas sharing a backend.
*/
package session
