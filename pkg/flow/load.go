package flow

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var defaultQuestions []byte

var (
	defaultOnce sync.Once
	defaultSeq  *Sequence
)

// Parse decodes a YAML question table and validates it.
func Parse(data []byte) (*Sequence, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse question table: %w", err)
	}
	return New(def)
}

// Load reads and parses a YAML question table from path.
func Load(path string) (*Sequence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question table: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in arithmetic quiz.
func Default() *Sequence {
	defaultOnce.Do(func() {
		seq, err := Parse(defaultQuestions)
		if err != nil {
			panic(fmt.Sprintf("flow: embedded question table is invalid: %v", err))
		}
		defaultSeq = seq
	})
	return defaultSeq
}
