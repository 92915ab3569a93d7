// Package version defines the current WorkHub chat core version number.
package version

// Number is the current version number.
// We use semantic versioning (http://semver.org/).
const Number = "0.3.0"
