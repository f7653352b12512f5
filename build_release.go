//go:build release

package alog

// releaseBuild is set by the "release" build tag; out-of-range levels render as UNKNOWN.
const releaseBuild = true
