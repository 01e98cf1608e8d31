//go:build !debugasserts

package heightfield

// assert compiles away outside debugasserts builds; violating a checked
// precondition is undefined behavior there.
func assert(bool, string) {}
