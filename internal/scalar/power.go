package scalar

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
)

var (
	// Matches an embedded power tag such as "26dBm" in a file name.
	powerNameRe = regexp.MustCompile(`(?i)(\d+)dBm`)

	// Matches result directories named after the swept power, e.g.
	// ".../Pot26/..." or ".../Power46/...".
	powerPathRe = regexp.MustCompile(`(?i)(?:Pot|Potencia|Power)(\d{1,2})`)
)

// PowerFromName extracts the transmit power in dBm from a file name
// containing a "<digits>dBm" tag. Returns ErrParameterNotFound when the tag
// is absent; the value is never silently defaulted.
func PowerFromName(name string) (int, error) {
	m := powerNameRe.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return 0, fmt.Errorf("%w: %s", ErrParameterNotFound, name)
	}
	p, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrParameterNotFound, name)
	}
	return p, nil
}

// PowerFromPath extracts the transmit power from a directory component such
// as "Pot26". Used as a fallback when the file name carries no dBm tag.
func PowerFromPath(path string) (int, error) {
	m := powerPathRe.FindStringSubmatch(path)
	if m == nil {
		return 0, fmt.Errorf("%w: %s", ErrParameterNotFound, path)
	}
	p, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrParameterNotFound, path)
	}
	return p, nil
}
