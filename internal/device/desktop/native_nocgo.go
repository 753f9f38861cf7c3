//go:build !cgo

package desktop

func nativeBackend() (Backend, error) {
	return nil, ErrUnavailable
}
