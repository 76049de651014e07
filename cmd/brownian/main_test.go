package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "brownian version")
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", "../../models/redgreen.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")

	out, err = execute(t, "validate", "../../pkg/model/testdata/invalid.txt")
	assert.Error(t, err)
	assert.Contains(t, out, "error:")
}

func TestSchemaCommand(t *testing.T) {
	out, err := execute(t, "schema", "--format", "yaml", "--initial-state", "../../models/redgreen.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "process: smoldyn")
	assert.Contains(t, out, "initial_state:")
	assert.Contains(t, out, "red:")
}

func TestComposeAndRunDocument(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "doc.yaml")

	_, err := execute(t, "compose", "--out", doc, "--duration", "0.2", "--interval", "0.1", "--seed", "4", "../../models/redgreen.txt")
	require.NoError(t, err)
	data, err := os.ReadFile(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "address: local:smoldyn")

	out, err := execute(t, "run", "--document", doc, "--store", "file", "--store-dir", dir, "--run-id", "demo", "--no-banner", "--plain")
	require.NoError(t, err)
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "red")

	_, err = os.Stat(filepath.Join(dir, "demo-processes.smoldyn.jsonl"))
	assert.NoError(t, err, "snapshots are written to the file store")

	out, err = execute(t, "runs", "list", "--store", "file", "--store-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "demo-processes.smoldyn")

	out, err = execute(t, "runs", "show", "--store", "file", "--store-dir", dir, "demo-processes.smoldyn")
	require.NoError(t, err)
	assert.Contains(t, out, "red=")

	_, err = execute(t, "runs", "rm", "--store", "file", "--store-dir", dir, "demo-processes.smoldyn")
	require.NoError(t, err)
	_, err = execute(t, "runs", "show", "--store", "file", "--store-dir", dir, "demo-processes.smoldyn")
	assert.Error(t, err)
}

func TestComposeMermaid(t *testing.T) {
	out, err := execute(t, "compose", "--mermaid", "../../models/redgreen.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "graph LR")
	assert.Contains(t, out, "processes_smoldyn")
}

func TestRunIntoSQLiteStore(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")

	out, err := execute(t, "run", "--document", "", "--model", "../../models/decay.txt", "--duration", "1", "--interval", "0.5",
		"--store", "sqlite", "--store-db", db, "--run-id", "decay-sql", "--no-banner", "--plain")
	require.NoError(t, err)
	assert.Contains(t, out, "A")

	out, err = execute(t, "runs", "show", "--store", "sqlite", "--store-db", db, "--last", "decay-sql")
	require.NoError(t, err)
	assert.Contains(t, out, `"run_id": "decay-sql"`)
	assert.Contains(t, out, `"step": 2`)
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, isTerminal(&bytes.Buffer{}))

	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, isTerminal(f), "regular files are not terminals")
}
