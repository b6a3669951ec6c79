// Package workload generates synthetic multi-replica command families for
// exercising the merge algorithms at scale.
package workload

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaCUE string

// Config holds the validated workload parameters.
type Config struct {
	Size    int
	Spread  int
	Users   int
	Mergers int
}

// ConfigError is a workload configuration error with CUE position info.
type ConfigError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *ConfigError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadConfig reads and validates a CUE workload configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read workload config: %w", err)
	}
	return ParseConfig(data, path)
}

// ParseConfig validates CUE configuration text against the embedded schema
// and extracts the parameters. The filename only labels error positions.
//
// Uses CUE SDK's Go API directly (not CLI subprocess).
func ParseConfig(data []byte, filename string) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, formatCUEError(err)
	}
	schema = schema.LookupPath(cue.ParsePath("#Workload"))

	val := ctx.CompileString(string(data), cue.Filename(filename))
	if err := val.Err(); err != nil {
		return Config{}, formatCUEError(err)
	}

	merged := schema.Unify(val)
	if err := merged.Validate(cue.Concrete(true)); err != nil {
		return Config{}, formatCUEError(err)
	}

	var cfg Config
	fields := []struct {
		name string
		dst  *int
	}{
		{"size", &cfg.Size},
		{"spread", &cfg.Spread},
		{"users", &cfg.Users},
		{"mergers", &cfg.Mergers},
	}
	for _, f := range fields {
		fv := merged.LookupPath(cue.ParsePath(f.name))
		if !fv.Exists() {
			return Config{}, &ConfigError{
				Field:   f.name,
				Message: f.name + " is required",
				Pos:     merged.Pos(),
			}
		}
		n, err := fv.Int64()
		if err != nil {
			return Config{}, formatCUEError(err)
		}
		*f.dst = int(n)
	}

	return cfg, nil
}

// validate re-checks the schema bounds for configs built in code rather
// than parsed from CUE.
func (c Config) validate() error {
	switch {
	case c.Spread < 1:
		return fmt.Errorf("workload: spread must be at least 1, got %d", c.Spread)
	case c.Size < 5:
		return fmt.Errorf("workload: size must be at least 5, got %d", c.Size)
	case c.Size < 2*c.Spread+1:
		return fmt.Errorf("workload: size %d cannot hold a spread-%d neighborhood (need at least %d)",
			c.Size, c.Spread, 2*c.Spread+1)
	case c.Users < 2:
		return fmt.Errorf("workload: need at least 2 users, got %d", c.Users)
	case c.Users >= c.Size:
		return fmt.Errorf("workload: users must be less than size, got %d users on a size-%d grid",
			c.Users, c.Size)
	case c.Mergers < 1:
		return fmt.Errorf("workload: mergers must be at least 1, got %d", c.Mergers)
	}
	return nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &ConfigError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
