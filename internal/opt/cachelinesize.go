package opt

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// CacheLineSize is used to pad lock stripes and metric counters so that
// independent ones never share a cache line.
const CacheLineSize = unsafe.Sizeof(cpu.CacheLinePad{})
