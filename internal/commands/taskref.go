package commands

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"tasker/internal/store"
)

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses a task reference from args.
//
// A reference is a full task id or an id prefix of at least
// store.MinPrefixLen characters. Exactly one argument is accepted.
func ParseTaskRef(args []string) (string, error) {
	if len(args) == 0 {
		return "", ErrTaskRefRequired
	}
	if len(args) > 1 {
		return "", fmt.Errorf("unexpected argument: %s", args[1])
	}

	ref := strings.TrimSpace(args[0])
	if ref == "" {
		return "", ErrTaskRefRequired
	}
	if strings.IndexFunc(ref, unicode.IsSpace) >= 0 {
		return "", fmt.Errorf("invalid task reference: %s", ref)
	}
	if len(ref) < store.MinPrefixLen {
		return "", fmt.Errorf("task reference too short: %s (need at least %d characters)", ref, store.MinPrefixLen)
	}
	return ref, nil
}
