/*
Package dsl builds composite simulation documents programmatically.

A document is a nested tree addressed by key paths. Processes, tasks and
simulations are stored as typed subtrees (marked by a "_type" key) so the tree
can be exported as JSON or YAML and handed to a composition engine, or
instantiated directly through a registry.

Example usage:

	b := dsl.NewSED("KISAO", "smoldyn")
	b.AddModel("minE", "models/minE.txt")
	b.AddSimulator("smoldyn", "KISAO:0000057")

	b.At("cell").AddProcess("smoldyn", dsl.ProcessSpec{
		Address: "local:smoldyn",
		Config:  map[string]any{"model_path": "models/minE.txt"},
		Inputs:  map[string][]string{"molecules": {"molecules_store"}},
		Outputs: map[string][]string{"molecules": {"molecules_store"}},
	})

	b.AddTask("run").AddSimulation("sim1", dsl.Simulation{
		SimulatorID: "smoldyn",
		ModelID:     "minE",
		EndTime:     100,
		Points:      1000,
	})

	data, _ := b.YAML()
*/
package dsl
