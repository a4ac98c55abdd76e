package api

import (
	"fmt"
	"strconv"
	"strings"
)

// parseNode resolves a node identifier from any of the accepted forms:
// a bare switch id ("7"), the switch name ("s7"), or the host address
// ("10.0.0.7", where the prefix must match the configured network prefix).
func parseNode(raw, hostPrefix string) (int, error) {
	raw = strings.TrimSpace(raw)

	if id, err := strconv.Atoi(raw); err == nil {
		if id <= 0 {
			return 0, fmt.Errorf("switch id must be positive, got %d", id)
		}
		return id, nil
	}

	if strings.HasPrefix(raw, "s") {
		if id, err := strconv.Atoi(raw[1:]); err == nil && id > 0 {
			return id, nil
		}
	}

	if strings.Count(raw, ".") == 3 {
		idx := strings.LastIndex(raw, ".")
		if raw[:idx] != hostPrefix {
			return 0, fmt.Errorf("only %s.X host addresses are valid", hostPrefix)
		}
		id, err := strconv.Atoi(raw[idx+1:])
		if err != nil || id <= 0 {
			return 0, fmt.Errorf("invalid host address %q", raw)
		}
		return id, nil
	}

	return 0, fmt.Errorf("invalid node identifier %q", raw)
}
