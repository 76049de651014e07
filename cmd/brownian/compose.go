package main

import (
	"fmt"
	"math"

	"github.com/aretw0/brownian"
	"github.com/aretw0/brownian/internal/presentation/graph"
	"github.com/aretw0/brownian/pkg/domain"
	"github.com/aretw0/brownian/pkg/dsl"
	"github.com/spf13/cobra"
)

var composeCmd = &cobra.Command{
	Use:   "compose [model]",
	Short: "Write a composite document wiring the process to a molecules store",
	Long: `Builds a simulation experiment document holding the model, the simulator, the
configured process wired to a shared store, and a timed simulation task. The
document can be handed to a composition engine or run with 'brownian run --document'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		duration, _ := cmd.Flags().GetFloat64("duration")
		interval, _ := cmd.Flags().GetFloat64("interval")
		outPath, _ := cmd.Flags().GetString("out")
		format, _ := cmd.Flags().GetString("format")

		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		if interval <= 0 || duration <= 0 {
			return fmt.Errorf("duration and interval must be greater than zero")
		}

		b := buildDocument(cfg.Map(), cfg.ModelPath, duration, interval)
		if mermaid, _ := cmd.Flags().GetBool("mermaid"); mermaid {
			procs, err := b.Processes()
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(procs, nil))
			return err
		}
		if outPath != "" {
			return b.WriteFile(outPath)
		}

		var data []byte
		switch format {
		case "yaml":
			data, err = b.YAML()
		case "json":
			data, err = b.JSON()
		default:
			return fmt.Errorf("unknown format %q: use json or yaml", format)
		}
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(composeCmd)
	composeCmd.Flags().Float64P("duration", "d", 1, "Simulated time of the simulation task")
	composeCmd.Flags().Float64P("interval", "i", 0.1, "Simulated time between output points")
	composeCmd.Flags().StringP("out", "o", "", "Write to this file (.yaml or .json) instead of stdout")
	composeCmd.Flags().StringP("format", "f", "yaml", "Stdout format: yaml or json")
	composeCmd.Flags().Bool("mermaid", false, "Print the process wiring as a Mermaid flowchart instead")
}

func buildDocument(processConfig map[string]any, modelPath string, duration, interval float64) *dsl.Builder {
	store := []string{"store", domain.PortMolecules}

	b := dsl.NewSED("KISAO")
	b.AddModel("model", modelPath)
	b.AddSimulator(brownian.ProcessName, "particle")
	b.At("processes").AddProcess(brownian.ProcessName, dsl.ProcessSpec{
		Address: "local:" + brownian.ProcessName,
		Config:  processConfig,
		Inputs:  map[string][]string{domain.PortMolecules: store},
		Outputs: map[string][]string{domain.PortMolecules: store},
	})
	b.AddTask("run").AddSimulation("simulation", dsl.Simulation{
		SimulatorID: brownian.ProcessName,
		ModelID:     "model",
		EndTime:     duration,
		Points:      int(math.Round(duration / interval)),
		Observables: []string{domain.PortMolecules},
	})
	return b
}
