package d

import _ "unsafe"

//go:linkname memclr runtime.memclrNoHeapPointers
func memclr(ptr *int, n int)

func storagePointerTouchedByAsmLeaf() {
	var p *int
	memclr(p, 8) // want `\[solflow-3464\] This variable is of storage pointer type and can be accessed without prior assignment`
}

func storagePointerAssignedBeforeAsmLeaf() {
	var p *int
	p = new(int)
	memclr(p, 8)
}
