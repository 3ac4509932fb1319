package fibonacci

import (
	"context"
	"sort"

	"github.com/agbru/fibdrv/internal/bignum"
)

// MockCalculator is a stub Calculator for tests in other packages. Fn takes
// precedence over the fixed Result and Err.
type MockCalculator struct {
	Label  string
	Result string
	Err    error
	Fn     func(ctx context.Context, n uint64) (bignum.Decimal, error)
}

// Name returns Label, or "mock" when it is empty.
func (m *MockCalculator) Name() string {
	if m.Label == "" {
		return "mock"
	}
	return m.Label
}

// Calculate returns the pre-configured outcome, or calls Fn if provided.
func (m *MockCalculator) Calculate(ctx context.Context, n uint64, opts Options) (bignum.Decimal, error) {
	if m.Fn != nil {
		return m.Fn(ctx, n)
	}
	if m.Err != nil {
		return bignum.Decimal{}, m.Err
	}
	result := m.Result
	if result == "" {
		result = "0"
	}
	return opts.arithmetic().Parse(result)
}

// TestFactory is a CalculatorFactory backed by a fixed set of calculators.
type TestFactory struct {
	calculators map[string]Calculator
}

// NewTestFactory creates a factory pre-populated with the given calculators.
func NewTestFactory(calculators map[string]Calculator) *TestFactory {
	if calculators == nil {
		calculators = make(map[string]Calculator)
	}
	return &TestFactory{calculators: calculators}
}

// Create returns the calculator by name.
func (f *TestFactory) Create(name string) (Calculator, error) {
	return f.Get(name)
}

// Get returns the calculator by name.
func (f *TestFactory) Get(name string) (Calculator, error) {
	calc, ok := f.calculators[name]
	if !ok {
		return nil, &UnknownCalculatorError{Name: name}
	}
	return calc, nil
}

// List returns all registered calculator names, sorted.
func (f *TestFactory) List() []string {
	names := make([]string, 0, len(f.calculators))
	for name := range f.calculators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register is a no-op for TestFactory as calculators are provided at construction.
func (f *TestFactory) Register(name string, creator func() coreCalculator) error {
	return nil
}

// GetAll returns all calculators.
func (f *TestFactory) GetAll() map[string]Calculator {
	result := make(map[string]Calculator, len(f.calculators))
	for k, v := range f.calculators {
		result[k] = v
	}
	return result
}

// UnknownCalculatorError is returned when a calculator name is not found.
type UnknownCalculatorError struct {
	Name string
}

func (e *UnknownCalculatorError) Error() string {
	return "unknown calculator: " + e.Name
}
