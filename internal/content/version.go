package content

import (
	"fmt"

	"golang.org/x/mod/semver"
)

// SupportedVersion is the newest content schema this build understands.
// Files with the same major version and a minor version up to this one load.
const SupportedVersion = "v1.1.0"

// ErrUnsupportedVersion reports a content file written for another schema.
type ErrUnsupportedVersion struct {
	Version string
}

func (e *ErrUnsupportedVersion) Error() string {
	return fmt.Sprintf("unsupported content schema_version %q (supported: %s and older %s releases)",
		e.Version, SupportedVersion, semver.Major(SupportedVersion))
}

// checkVersion accepts an empty version as v1.0.0.
func checkVersion(v string) error {
	if v == "" {
		return nil
	}
	if v[0] != 'v' {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return &ErrUnsupportedVersion{Version: v}
	}
	if semver.Major(v) != semver.Major(SupportedVersion) || semver.Compare(v, SupportedVersion) > 0 {
		return &ErrUnsupportedVersion{Version: v}
	}
	return nil
}
