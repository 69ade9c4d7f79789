// Package strategy holds the identity shared by pluggable domain strategies.
package strategy

// StrategyType groups strategies by the role they play in a plan. Allocation
// strategies spend a receipt across open items; source strategies spend
// receipt balances against a single document.
type StrategyType string

const (
	StrategyTypeAllocation StrategyType = "allocation"
	StrategyTypeSource     StrategyType = "source"
)

func (t StrategyType) String() string { return string(t) }

func (t StrategyType) IsValid() bool {
	return t == StrategyTypeAllocation || t == StrategyTypeSource
}

// Strategy identifies an implementation in logs and span attributes.
type Strategy interface {
	Name() string
	Type() StrategyType
	Description() string
}

// BaseStrategy is embedded by concrete strategies to satisfy Strategy.
type BaseStrategy struct {
	name, description string
	kind              StrategyType
}

func NewBaseStrategy(name string, kind StrategyType, description string) BaseStrategy {
	return BaseStrategy{name: name, kind: kind, description: description}
}

func (s BaseStrategy) Name() string        { return s.name }
func (s BaseStrategy) Type() StrategyType  { return s.kind }
func (s BaseStrategy) Description() string { return s.description }
