package tuner

// Tool is the callback surface an instrumented host drives. A host declares
// its variables once, then brackets every unit of work with BeginContext,
// RequestValues and EndContext. Init and Finalize bracket the process.
//
// Typical call sequence:
//
//	tool.Init()
//	_ = tool.DeclareOutputVariable("Degree", 1, degreeDomain)
//
//	tool.BeginContext(10)
//	slots := []VariableValue{{ID: 1}}
//	_ = tool.RequestValues(10, nil, slots) // slots[0].Value is now set
//	// ... run the work with slots[0].Value ...
//	_ = tool.EndContext(10)
//
//	_ = tool.Finalize() // Best random value for variable Degree: ...
type Tool interface {
	// Init opens the process-wide bracket.
	Init()

	// DeclareOutputVariable registers a tunable variable.
	DeclareOutputVariable(name string, id uint64, domain Domain) error

	// DeclareInputVariable registers a descriptive variable.
	DeclareInputVariable(name string, id uint64, domain Domain) error

	// BeginContext opens a context.
	BeginContext(contextID uint64)

	// RequestValues binds the variables to the context, overwrites the
	// Value of every output slot with a sample, and starts the timer.
	RequestValues(contextID uint64, inputs, outputs []VariableValue) error

	// EndContext stops the timer, scores the bound outputs and retires the
	// context.
	EndContext(contextID uint64) error

	// Finalize reports the best value of every output variable.
	Finalize() error
}

var _ Tool = (*Registry)(nil)
