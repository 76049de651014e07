package model

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/brownian/pkg/domain"
)

// ErrStatementNotFound is returned by Query when no line starts with the keyword.
var ErrStatementNotFound = errors.New("statement not found in model")

// Model is a validated simulation description.
type Model struct {
	Path  string
	Lines []string

	statements []Statement
	report     Report
}

// Option configures Load and Parse.
type Option func(*loadOptions)

type loadOptions struct {
	allowWarnings bool
}

// WithWarningsAllowed accepts models whose validation report has warnings but no errors.
func WithWarningsAllowed() Option {
	return func(o *loadOptions) {
		o.allowWarnings = true
	}
}

// Load opens the description at path and validates it.
func Load(path string, opts ...Option) (*Model, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &domain.ConfigurationError{Field: "model_path", Reason: "a model file path is required"}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.ConfigurationError{Field: "model_path", Reason: err.Error()}
	}
	defer f.Close()
	return Parse(path, f, opts...)
}

// Parse reads a description from r. path is only used for error reporting.
func Parse(path string, r io.Reader, opts ...Option) (*Model, error) {
	o := loadOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r\n"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read model %s: %w", path, err)
	}

	m := &Model{Path: path, Lines: lines}
	m.statements = tokenize(lines)
	m.report = validate(m.statements)

	if len(m.report.Errors) > 0 || (len(m.report.Warnings) > 0 && !o.allowWarnings) {
		return nil, &domain.ModelValidationError{
			Path:     path,
			Errors:   m.report.Errors,
			Warnings: m.report.Warnings,
		}
	}
	return m, nil
}

// Check validates the description at path without failing on findings.
// Only I/O problems are returned as errors.
func Check(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("failed to read model %s: %w", path, err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], "\r")
	}
	return validate(tokenize(lines)), nil
}

// Report returns the validation findings recorded at load time.
func (m *Model) Report() Report { return m.report }

// Statements returns the parsed statements in file order, with definitions substituted.
func (m *Model) Statements() []Statement {
	return append([]Statement(nil), m.statements...)
}
