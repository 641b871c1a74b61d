//go:build linux

package generator

import "golang.org/x/sys/unix"

// setAffinity restricts the calling thread (pid 0) to core.
func setAffinity(core int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(core)
	return unix.SchedSetaffinity(0, &set)
}

// allowedCores lists the cores in the calling thread's affinity mask in
// ascending order.
func allowedCores() ([]int, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return nil, err
	}
	n := set.Count()
	cores := make([]int, 0, n)
	for i := 0; len(cores) < n; i++ {
		if set.IsSet(i) {
			cores = append(cores, i)
		}
	}
	return cores, nil
}
