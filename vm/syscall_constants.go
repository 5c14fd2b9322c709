package vm

// Syscall numbers, carried in R0 on entry.
const (
	SyscallAlloc   = 1
	SyscallFree    = 2
	SyscallRealloc = 3

	SyscallExit    = 20
	SyscallPrint   = 30
	SyscallPutchar = 32

	// Additive console/time extension, numbered well away from the
	// reserved block above so it never collides with a future core
	// syscall (see SPEC_FULL.md's syscall-layer supplement).
	SyscallGetTime   = 40
	SyscallGetRandom = 41
)

// Syscall result/error codes, returned in R0.
const (
	SysOK       = 0
	SysNOMEM    = 1
	SysBADFD    = 2
	SysNOTFOUND = 3
	SysPERM     = 4
	SysIO       = 5
	SysNOSYS    = 6
	SysINVALID  = 7
)
