// Package conditions loads the user rules that select which strikes are notified.
package conditions

import (
	"fmt"
	"strings"

	"scioperibot/internal/config"
	"scioperibot/internal/strike"
)

// Load reads an ordered list of conditions from a JSON or YAML file:
//
//	[{"name": "Transport Strikes", "sectors": ["Trasporto"], "regions": ["Lazio"]}]
func Load(path string) ([]strike.Condition, error) {
	var conds []strike.Condition
	if err := config.DecodeFile(path, &conds, true); err != nil {
		return nil, fmt.Errorf("load conditions %s: %w", path, err)
	}
	for i, c := range conds {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("load conditions %s: condition #%d has no name", path, i+1)
		}
	}
	return conds, nil
}
