package interp

// stackHeadroomOK reports whether there is enough native stack space to
// start another nested evaluation. Goroutine stacks grow on demand, so the
// explicit depth counter is the authoritative recursion guard and this check
// always passes; it exists as a seam for platforms with fixed stacks.
func stackHeadroomOK() bool { return true }
