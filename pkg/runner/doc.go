/*
Package runner drives a process through a sequence of intervals.

It plays the part of a minimal composition engine: it owns the state, calls
Update for each interval, merges the returned changes, and emits every state to
a ports.StateStore so a run can be gathered afterwards.

# Merge semantics

Numbers in an update are added to the current value; everything else (lists,
strings) replaces it. Nested maps are merged key by key.

# Usage

	r := runner.New(
		runner.WithStore(memory.NewStore()),
		runner.WithRunID("redgreen-1"),
	)

	res, err := r.Run(ctx, proc, 100, 10)
	if err != nil {
		log.Fatal(err)
	}
	snaps, _ := r.Results(ctx)
*/
package runner
