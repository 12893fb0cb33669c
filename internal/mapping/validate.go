package mapping

import "fmt"

// Problem describes one questionable mapping row.
type Problem struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// Validate reports rows that Apply would skip and targets written more than once.
// The configuration is still usable when problems are reported.
func Validate(cfg Config) []Problem {
	var problems []Problem

	if _, err := ParseContentType(string(cfg.ContentType)); err != nil {
		problems = append(problems, Problem{Index: -1, Message: err.Error()})
	}
	if cfg.DetailScreenType != "" {
		if _, err := ParseDetailScreenType(string(cfg.DetailScreenType)); err != nil {
			problems = append(problems, Problem{Index: -1, Message: err.Error()})
		}
	}

	targets := make(map[string]int)
	for i, m := range cfg.FieldMappings {
		if !m.IsActive() {
			problems = append(problems, Problem{Index: i, Message: "inactive: source and target field must both be set"})
			continue
		}
		if _, err := splitPath(m.SourceField); err != nil {
			problems = append(problems, Problem{Index: i, Message: err.Error()})
		}
		if first, dup := targets[m.TargetField]; dup {
			problems = append(problems, Problem{
				Index:   i,
				Message: fmt.Sprintf("target %q already written by row %d", m.TargetField, first),
			})
			continue
		}
		targets[m.TargetField] = i
	}

	return problems
}
