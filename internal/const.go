// Constants
package internal

// Direct I/O wants buffers, lengths and offsets aligned to the logical block size.
// This is basically always 4KiB (check using `getconf PAGESIZE`)
const ALIGN 			= 0x1000

// Smallest logical block size direct I/O lengths and offsets have to respect
const SECTOR			= 0x200

const _CHUNK_PWR		= 4 // can be from 0-8 (inclusive)
const CHUNK_SIZE		= ALIGN << _CHUNK_PWR

// Round n up to the next multiple of ALIGN
func AlignUp(n int) int {
	return (n + ALIGN - 1) &^ (ALIGN - 1)
}

func IsAligned(n uint64) bool {
	return n&(ALIGN-1) == 0
}
