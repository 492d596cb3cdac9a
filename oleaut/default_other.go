//go:build !windows

package oleaut

func newDefaultPlatform() Platform {
	return NewEmulator()
}
