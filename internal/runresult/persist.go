package runresult

import (
	"encoding/json"
	"fmt"
	"os"
)

// Save writes results as the versioned envelope to path, indented for
// human readability the way the teacher's output.WriteJSON does.
func Save(path string, results RunResults) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("runresult: create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	env := Envelope{FormatVersion: CurrentFormatVersion, Data: results}
	if err := enc.Encode(env); err != nil {
		return fmt.Errorf("runresult: encode %s: %w", path, err)
	}
	return nil
}

// Load reads a persisted envelope from path and returns its RunResults,
// after checking format_version.
func Load(path string) (RunResults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunResults{}, fmt.Errorf("runresult: read %s: %w", path, err)
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return RunResults{}, fmt.Errorf("runresult: decode %s: %w", path, err)
	}
	if env.FormatVersion != CurrentFormatVersion {
		return RunResults{}, fmt.Errorf("%w: got %d, want %d", ErrFormatVersionMismatch, env.FormatVersion, CurrentFormatVersion)
	}
	return env.Data, nil
}
