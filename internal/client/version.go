package client

import "github.com/blang/semver/v4"

// validateSelfVersion confirms the client's advertised build version is a
// well-formed semantic version, the same way the teacher's mvs_test.go
// constructs blang/semver values to exercise its version comparisons
// rather than trusting a bare string literal.
func validateSelfVersion(v string) error {
	_, err := semver.Parse(v)
	return err
}
