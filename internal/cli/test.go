package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/animevent/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool
	Filter string
}

// ScenarioResult is the outcome of one scenario file.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult is the outcome of a test run.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run watcher scenarios",
		Long: `Run every scenario file in a directory against a watcher backed by an
in-memory database, checking each step's expectations.

When golden/<name>.golden exists beside the scenarios directory, the
scenario's trace must also match it byte for byte. --update rewrites the
golden files instead.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  animevent test ./testdata/scenarios
  animevent test ./testdata/scenarios --filter "replace*"
  animevent test ./testdata/scenarios --update`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, cmd, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run scenario files whose base name matches this glob")
	return cmd
}

func runTests(opts *TestOptions, cmd *cobra.Command, dir string) error {
	f := opts.formatter(cmd)
	if _, err := filepath.Match(opts.Filter, ""); err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("invalid filter %q", opts.Filter), err)
	}

	files, err := scenarioFiles(dir, opts.Filter)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("cannot read scenarios in %s", dir), err)
	}

	goldenDir := filepath.Join(filepath.Dir(filepath.Clean(dir)), "golden")
	result := TestResult{Scenarios: []ScenarioResult{}, Total: len(files)}
	for _, path := range files {
		r := runScenario(path, goldenDir, opts.Update)
		if r.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		result.Scenarios = append(result.Scenarios, r)
		f.VerboseLog("%s: pass=%t", r.Name, r.Pass)
	}

	if result.Failed == 0 {
		return f.Emit(result, func(w io.Writer) { writeTestResult(w, result) })
	}

	msg := fmt.Sprintf("%d scenario(s) failed", result.Failed)
	if f.Format == "json" {
		resp := CLIResponse{Status: "error", Data: result, Error: &CLIError{Code: ErrCodeTestFailed, Message: msg}}
		if err := f.respond(resp); err != nil {
			return err
		}
	} else {
		writeTestResult(f.Writer, result)
	}
	return NewExitError(ExitFailure, msg)
}

// scenarioFiles returns the YAML files directly inside dir, sorted, whose
// base name without extension matches filter.
func scenarioFiles(dir, filter string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := []string{}
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		if filter != "" {
			if ok, _ := filepath.Match(filter, strings.TrimSuffix(e.Name(), ext)); !ok {
				continue
			}
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	slices.Sort(files)
	return files, nil
}

// runScenario runs one scenario file and checks its trace against the
// golden file, or rewrites the golden file when update is set.
func runScenario(path, goldenDir string, update bool) ScenarioResult {
	fail := func(name, format string, args ...any) ScenarioResult {
		return ScenarioResult{Name: name, Errors: []string{fmt.Sprintf(format, args...)}}
	}

	s, err := harness.LoadScenario(path)
	if err != nil {
		return fail(filepath.Base(path), "load: %v", err)
	}
	result, err := harness.Run(s)
	if err != nil {
		return fail(s.Name, "run: %v", err)
	}
	trace, err := harness.MarshalTrace(s.Name, result)
	if err != nil {
		return fail(s.Name, "marshal trace: %v", err)
	}

	errs := slices.Clone(result.Errors)
	golden := filepath.Join(goldenDir, s.Name+".golden")
	if update {
		if err := writeGolden(golden, trace); err != nil {
			errs = append(errs, err.Error())
		}
	} else if err := compareGolden(golden, trace); err != nil {
		errs = append(errs, err.Error())
	}

	return ScenarioResult{Name: s.Name, Pass: len(errs) == 0, Errors: errs}
}

func writeGolden(path string, trace []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create golden directory: %w", err)
	}
	if err := os.WriteFile(path, trace, 0o644); err != nil {
		return fmt.Errorf("update golden file: %w", err)
	}
	return nil
}

// compareGolden succeeds when path is absent or holds exactly trace.
func compareGolden(path string, trace []byte) error {
	want, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("read golden file: %w", err)
	case !bytes.Equal(want, trace):
		return errors.New("trace does not match golden file (run with --update to regenerate)")
	}
	return nil
}

func writeTestResult(w io.Writer, result TestResult) {
	if result.Total == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return
	}
	for _, r := range result.Scenarios {
		if r.Pass {
			fmt.Fprintf(w, "✓ %s\n", r.Name)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", r.Name)
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	fmt.Fprintf(w, "\n%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
}
