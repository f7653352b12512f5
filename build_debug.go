//go:build !release

package alog

// releaseBuild selects how an out-of-range Level is rendered. Default builds
// panic so the bad value surfaces at the call site.
const releaseBuild = false
