//go:build !windows && !linux

package window

// Open always fails on platforms without a native backend.
func Open(cfg Config, h Handler) (Native, error) {
	return nil, ErrUnsupportedPlatform
}
