//go:build !linux

package stats

import "errors"

func pinToCPU(int) (func(), error) {
	return nil, errors.New("cpu pinning is only supported on linux")
}
