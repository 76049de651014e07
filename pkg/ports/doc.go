/*
Package ports defines the driven ports (interfaces) of the brownian adapter.

These interfaces decouple the adapter core from the native simulator, from the
composition engine that drives it, and from the stores that record driven runs.

# Key Interfaces

  - Simulator: the handle to a loaded particle simulation (species, boundaries,
    output buffers, population edits, stepping).
  - SimulatorFactory: turns a validated model into a Simulator.
  - Process: the composition contract (Schema, InitialState, Update) every
    adapter exposes to the engine.
  - StateStore: records the snapshots emitted by a driven run.
  - DistributedLocker: serialises Update calls for one process across replicas.
*/
package ports
