package jobs

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// ResourceProfile is the per-job resource request shared by every member of
// a JobSet. Memory and disk are held in bytes.
type ResourceProfile struct {
	CPUs   int
	Memory uint64
	Disk   uint64
}

// DefaultResources mirrors the scheduler's minimal useful request.
var DefaultResources = ResourceProfile{
	CPUs:   1,
	Memory: 100 * 1000 * 1000,
	Disk:   100 * 1000 * 1000,
}

// ParseResourceProfile builds a profile from human-readable size strings
// such as "100MB" or "2GiB". A cpus value below 1 is clamped to 1.
func ParseResourceProfile(cpus int, memory, disk string) (ResourceProfile, error) {
	if cpus < 1 {
		cpus = 1
	}
	mem, err := humanize.ParseBytes(memory)
	if err != nil {
		return ResourceProfile{}, fmt.Errorf("bad memory request %q: %w", memory, err)
	}
	dsk, err := humanize.ParseBytes(disk)
	if err != nil {
		return ResourceProfile{}, fmt.Errorf("bad disk request %q: %w", disk, err)
	}
	return ResourceProfile{CPUs: cpus, Memory: mem, Disk: dsk}, nil
}

// MemoryString renders the memory request the way the scheduler expects it,
// e.g. "100MB".
func (p ResourceProfile) MemoryString() string {
	return compactBytes(p.Memory)
}

// DiskString renders the disk request, e.g. "100MB".
func (p ResourceProfile) DiskString() string {
	return compactBytes(p.Disk)
}

func compactBytes(n uint64) string {
	return strings.ReplaceAll(humanize.Bytes(n), " ", "")
}
