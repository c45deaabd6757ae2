package common

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Uint64ToBytes converts a uint64 to a byte slice in big-endian order
func Uint64ToBytes(num uint64) []byte {
	const uint64ByteSize = 8

	bytes := make([]byte, uint64ByteSize)
	binary.BigEndian.PutUint64(bytes, num)

	return bytes
}

// ParseComponents validates a list of component names, case insensitive.
// Duplicates are dropped and at least one component is required.
func ParseComponents(components []string) ([]string, error) {
	parsed := make([]string, 0, len(components))
	for _, c := range components {
		name := strings.ToLower(strings.TrimSpace(c))
		switch name {
		case HEADER_MMR_SYNC, RPC:
			if !IsComponentEnabled(parsed, name) {
				parsed = append(parsed, name)
			}
		default:
			return nil, fmt.Errorf("unknown component %q", c)
		}
	}
	if len(parsed) == 0 {
		return nil, fmt.Errorf("no component to run, options: %s, %s", HEADER_MMR_SYNC, RPC)
	}
	return parsed, nil
}

// IsComponentEnabled reports whether name is in components
func IsComponentEnabled(components []string, name string) bool {
	for _, c := range components {
		if c == name {
			return true
		}
	}
	return false
}
