package a

func storagePointerAccessedBeforeAssignment() {
	var p *int
	_ = *p // want `\[solflow-3464\] This variable is of storage pointer type and can be accessed without prior assignment`
}

func storagePointerAssignedFirst() {
	var p *int
	p = new(int)
	_ = *p
}

func blankNamedResultUnassigned() (_ int) { // want `\[solflow-6321\] Unnamed return variable can remain unassigned`
	return
}

func namedResultNeverWarned() (x int) {
	return
}

func storagePointerNamedResultBareReturn() (p *int) {
	return // want `\[solflow-3464\] This variable is of storage pointer type and can be returned without prior assignment`
}

func deadCodeAfterPanic() {
	panic("boom")
	println("unreachable") // want `\[solflow-5740\] Unreachable code\.`
}
