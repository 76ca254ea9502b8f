package checks

import (
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFromFile reads a YAML gate list and compiles every gate against the
// report environment. A gate that fails to compile fails the whole load —
// scoring with a silently dropped gate would defeat its purpose.
//
// Expected format:
//
//   - name: quality-floor
//     when: metrics["BLEU"] >= 25.0
//   - name: latency-ceiling
//     when: metrics["AL"] <= 3.0
func LoadFromFile(file string) ([]Gate, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	gates := []Gate{}
	if err := yaml.Unmarshal(content, &gates); err != nil {
		return nil, err
	}

	env, err := NewReportEnv()
	if err != nil {
		return nil, err
	}

	for i := range gates {
		if err := gates[i].Init(env); err != nil {
			return nil, err
		}
	}

	return gates, nil
}
