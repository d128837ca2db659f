package sample

// Greeter is implemented by anything that can produce a greeting.
type Greeter interface {
	Greet() string
}

// Base carries shared state for greeter implementations.
type Base struct {
	prefix string
}

// ConsoleGreeter greets on stdout.
//
//typescan:markers registered
type ConsoleGreeter struct {
	Base
}

// NewConsoleGreeter returns a ready-to-use greeter.
func NewConsoleGreeter() *ConsoleGreeter {
	return &ConsoleGreeter{}
}

// Greet implements Greeter.
func (c ConsoleGreeter) Greet() string {
	return c.prefix + "hello"
}

// SilentGreeter never greets; it exists to not implement Greeter.
type SilentGreeter struct{}

// Count is a plain value type.
type Count int
