/*
Package domain contains the core domain models for the Brownian process adapter.

It defines the entities shared by every adapter and simulator backend: species sets,
boundary boxes, molecule states, output datasets and the error taxonomy. This package
is kept pure and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - SpeciesSet: Ordered, read-only list of species resolved once from a simulation.
  - Boundaries: Axis-aligned box (low, high) that molecules are confined to.
  - MoleculeState: Per-species count and coordinates exchanged with the composition engine.
  - Dataset: A named output buffer inside the simulator, bound to a recording command.
*/
package domain
