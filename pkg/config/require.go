package config

import (
	"fmt"
	"slices"
	"strings"
)

// Required reports every empty value among name/value pairs in one error.
func Required(pairs map[string]string) error {
	var missing []string
	for name, value := range pairs {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return fmt.Errorf("missing required env %s", strings.Join(missing, ", "))
}
