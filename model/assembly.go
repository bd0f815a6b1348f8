package model

import (
	"fmt"
	"strings"
)

// Version is a four-part assembly version.
type Version struct {
	Major    uint16
	Minor    uint16
	Build    uint16
	Revision uint16
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Build, v.Revision)
}

// AssemblyFlags mirrors the ECMA-335 AssemblyFlags bit set.
type AssemblyFlags uint32

const (
	// AssemblyFlagsPublicKey is set when the reference carries a full public
	// key instead of a token.
	AssemblyFlagsPublicKey AssemblyFlags = 0x0001
	// AssemblyFlagsRetargetable marks a retargetable reference.
	AssemblyFlagsRetargetable AssemblyFlags = 0x0100
	// AssemblyFlagsWindowsRuntime marks a Windows Runtime content type.
	AssemblyFlagsWindowsRuntime AssemblyFlags = 0x0200
	// AssemblyFlagsDisableJitCompileOptimizer disables JIT optimizations.
	AssemblyFlagsDisableJitCompileOptimizer AssemblyFlags = 0x4000
	// AssemblyFlagsEnableJitCompileTracking enables JIT tracking.
	AssemblyFlagsEnableJitCompileTracking AssemblyFlags = 0x8000
)

// HasPublicKey reports whether f carries AssemblyFlagsPublicKey.
func (f AssemblyFlags) HasPublicKey() bool { return f&AssemblyFlagsPublicKey != 0 }

func (f AssemblyFlags) String() string {
	if f == 0 {
		return "None"
	}
	var parts []string
	names := []struct {
		bit  AssemblyFlags
		name string
	}{
		{AssemblyFlagsPublicKey, "PublicKey"},
		{AssemblyFlagsRetargetable, "Retargetable"},
		{AssemblyFlagsWindowsRuntime, "WindowsRuntime"},
		{AssemblyFlagsDisableJitCompileOptimizer, "DisableJitCompileOptimizer"},
		{AssemblyFlagsEnableJitCompileTracking, "EnableJitCompileTracking"},
	}
	rest := f
	for _, n := range names {
		if f&n.bit != 0 {
			parts = append(parts, n.name)
			rest &^= n.bit
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("%#x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}
