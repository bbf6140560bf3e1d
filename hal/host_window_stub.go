//go:build !cgo

package hal

import "github.com/rotisserie/eris"

func RunWindow(_ func(HAL) func() error, _ WindowConfig) error {
	return eris.New("window mode requires cgo (build/run with CGO_ENABLED=1)")
}
