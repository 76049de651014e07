// Package model loads and inspects simulation description files.
//
// A description is a line-oriented text file: each non-blank line starts with a
// statement keyword followed by whitespace-separated arguments. Load reads the
// file, validates every statement, and fails with a *domain.ModelValidationError
// when the validator reports any error or warning:
//
//	m, err := model.Load("models/redgreen.txt")
//	if err != nil {
//	    return err
//	}
//	defs, _ := m.Definitions()   // define NAME VALUE
//	rxns, _ := m.Reactions()     // reaction name subs -> prds rate
//
// The loaded Model is immutable and is handed to a ports.SimulatorFactory to
// obtain a simulator handle.
package model
