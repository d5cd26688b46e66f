package cliutil

// SetExit replaces the function used to exit on usage errors, and returns a func that puts the
// original back.
func SetExit(fn func(int)) (restore func()) {
	orig := exit
	exit = fn
	return func() { exit = orig }
}
