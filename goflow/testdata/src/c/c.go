package c

type Base struct{}

func (Base) F() (_ int) { // want `\[solflow-6321\] Unnamed return variable can remain unassigned`
	return
}

type Derived struct {
	Base
}
