// Package checks evaluates pass/fail gates over a finished evaluation
// report, so a scoring run can double as a regression check.
package checks

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// Gate is one pass/fail condition on the evaluation report.
// The When field contains a CEL expression that must hold for the gate to
// pass. The CEL program is compiled when Init is called.
type Gate struct {
	// Name — gate identifier used in failure reports.
	Name string `yaml:"name"`
	// When — CEL expression over the flattened report; must return a
	// boolean value.
	When string `yaml:"when"`
	// program — compiled CEL program used to execute the condition.
	program cel.Program
}

// Init compiles the string expression in the When field into an executable
// CEL program using the provided env environment.
// In case of syntax or semantic errors, returns the corresponding error.
// After successful initialization, the gate is ready for use in Eval.
func (g *Gate) Init(env *cel.Env) error {
	ast, iss := env.Parse(g.When)
	if iss.Err() != nil {
		return iss.Err()
	}

	checked, iss := env.Check(ast)
	if iss.Err() != nil {
		return iss.Err()
	}

	var err error
	g.program, err = env.Program(checked)
	if err != nil {
		return err
	}

	return nil
}

// Eval executes the compiled gate against the flattened report.
// Unlike data anomalies inside scoring, a gate that cannot be evaluated is
// a configuration mistake, so evaluation errors are returned, not absorbed.
func (g *Gate) Eval(metrics map[string]float64) (bool, error) {
	result, _, err := g.program.Eval(map[string]any{"metrics": metrics})
	if err != nil {
		return false, fmt.Errorf("gate %q: %w", g.Name, err)
	}

	pass, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("gate %q: expression is not boolean", g.Name)
	}

	return pass, nil
}

// Run evaluates every gate and returns the names of the failed ones.
func Run(gates []Gate, metrics map[string]float64) ([]string, error) {
	var failed []string
	for i := range gates {
		pass, err := gates[i].Eval(metrics)
		if err != nil {
			return nil, err
		}
		if !pass {
			failed = append(failed, gates[i].Name)
		}
	}
	return failed, nil
}
