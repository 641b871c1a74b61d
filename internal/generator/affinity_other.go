//go:build !linux

package generator

import "runtime"

func setAffinity(int) error {
	return ErrAffinityUnsupported
}

func allowedCores() ([]int, error) {
	cores := make([]int, runtime.NumCPU())
	for i := range cores {
		cores[i] = i
	}
	return cores, nil
}
