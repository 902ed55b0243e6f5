package device

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type operationTOML struct {
	Name     string  `toml:"name"`
	Global   bool    `toml:"global"`
	Qubits   int     `toml:"qubits"`
	Qargs    [][]int `toml:"qargs"`
	Error    float64 `toml:"error"`
	Duration float64 `toml:"duration"`
}

type targetTOML struct {
	Name       string          `toml:"name"`
	NumQubits  int             `toml:"num_qubits"`
	Operations []operationTOML `toml:"operation"`
}

// LoadTarget reads a target description from a TOML file.
func LoadTarget(path string) (*Target, error) {
	var raw targetTOML
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("device: decode %s: %w", path, err)
	}
	return buildTarget(&raw)
}

// ParseTarget reads a target description from TOML text.
func ParseTarget(data string) (*Target, error) {
	var raw targetTOML
	if _, err := toml.Decode(data, &raw); err != nil {
		return nil, fmt.Errorf("device: decode target: %w", err)
	}
	return buildTarget(&raw)
}

func buildTarget(raw *targetTOML) (*Target, error) {
	if raw.NumQubits <= 0 {
		return nil, fmt.Errorf("device: target needs a positive num_qubits, got %d", raw.NumQubits)
	}
	t := NewTarget(raw.NumQubits)
	for _, op := range raw.Operations {
		if op.Name == "" {
			return nil, fmt.Errorf("device: operation without a name")
		}
		props := Props{Error: op.Error, Duration: op.Duration}
		if op.Global {
			if op.Qubits <= 0 {
				return nil, fmt.Errorf("device: global operation %s needs qubits", op.Name)
			}
			t.AddGlobalOperation(op.Name, op.Qubits, props)
			continue
		}
		if len(op.Qargs) == 0 {
			return nil, fmt.Errorf("device: operation %s has neither qargs nor global", op.Name)
		}
		for _, qargs := range op.Qargs {
			for _, q := range qargs {
				if q < 0 || q >= raw.NumQubits {
					return nil, fmt.Errorf("device: operation %s qubit %d out of range [0, %d)", op.Name, q, raw.NumQubits)
				}
			}
			t.AddOperation(op.Name, qargs, props)
		}
	}
	return t, nil
}

// EncodeTarget renders a target as TOML text that ParseTarget accepts.
// Non-global operations get one block per qarg tuple so per-qarg
// calibration data survives the round trip.
func EncodeTarget(t *Target) (string, error) {
	raw := targetTOML{NumQubits: t.numQubits}
	for _, name := range t.OperationNames() {
		o := t.ops[name]
		if o.global {
			raw.Operations = append(raw.Operations, operationTOML{
				Name:     name,
				Global:   true,
				Qubits:   o.numQubits,
				Error:    o.globalProps.Error,
				Duration: o.globalProps.Duration,
			})
			continue
		}
		for _, e := range o.entries {
			raw.Operations = append(raw.Operations, operationTOML{
				Name:     name,
				Qargs:    [][]int{e.qargs},
				Error:    e.props.Error,
				Duration: e.props.Duration,
			})
		}
	}
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(raw); err != nil {
		return "", fmt.Errorf("device: encode target: %w", err)
	}
	return b.String(), nil
}

// LineTarget returns a target with the given one-qubit basis on every qubit
// and a bidirectional cx along a line of n qubits. Useful as a default and
// in tests.
func LineTarget(n int, oneQubit []string, twoQubitErr float64) *Target {
	t := NewTarget(n)
	for _, name := range oneQubit {
		for q := 0; q < n; q++ {
			t.AddOperation(name, []int{q}, Props{})
		}
	}
	for q := 0; q+1 < n; q++ {
		t.AddOperation("cx", []int{q, q + 1}, Props{Error: twoQubitErr})
		t.AddOperation("cx", []int{q + 1, q}, Props{Error: twoQubitErr})
	}
	return t
}
