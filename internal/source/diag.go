package source

// Diag is the minimal diagnostic sink a source reports through. Sources
// never depend on the concrete logging package directly — only on this
// narrow capability — so the engine can wire in whatever logger it uses.
type Diag interface {
	Warnf(id ID, format string, args ...interface{})
	Errf(id ID, format string, args ...interface{})
}

// NopDiag discards everything. Used as the default when no logger is wired.
type NopDiag struct{}

func (NopDiag) Warnf(ID, string, ...interface{}) {}
func (NopDiag) Errf(ID, string, ...interface{})  {}
