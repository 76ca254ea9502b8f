package checks

import "github.com/google/cel-go/cel"

// NewReportEnv builds the CEL environment gates are compiled against.
// The whole evaluation report is exposed as one flattened mapping so that
// metric names containing spaces or suffixes stay addressable:
//
//	metrics["BLEU"] >= 25.0 && metrics["AL"] <= 3.0
//	metrics["AL (Time in ms)"] < 1500.0
func NewReportEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("metrics", cel.MapType(cel.StringType, cel.DoubleType)),
	)
	if err != nil {
		return nil, err
	}
	return env, nil
}
