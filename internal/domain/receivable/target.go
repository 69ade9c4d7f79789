package receivable

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TargetRef points at a single invoice or advance
type TargetRef struct {
	Type DocumentType
	ID   uuid.UUID
}

// TargetSelection is a caller-chosen allocation target.
// A zero Amount means "as much as the target and the receipt allow".
type TargetSelection struct {
	TargetType DocumentType    `json:"target_type"`
	TargetID   uuid.UUID       `json:"target_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// Ref returns the target reference of the selection
func (s TargetSelection) Ref() TargetRef {
	return TargetRef{Type: s.TargetType, ID: s.TargetID}
}

// TargetSelections is the serialized target list kept on a receipt.
// It survives void so that unvoid can restore the SELECTED state.
type TargetSelections []TargetSelection

// Value implements driver.Valuer interface for GORM to store as JSONB
func (t TargetSelections) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	return json.Marshal(t)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (t *TargetSelections) Scan(value interface{}) error {
	if value == nil {
		*t = TargetSelections{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan TargetSelections: unsupported type")
	}

	if len(bytes) == 0 {
		*t = TargetSelections{}
		return nil
	}

	return json.Unmarshal(bytes, t)
}

// SelectionsFromPlan records the lines of a plan as a target list
func SelectionsFromPlan(plan AllocationPlan) TargetSelections {
	selections := make(TargetSelections, 0, len(plan.Lines))
	for _, line := range plan.Lines {
		selections = append(selections, TargetSelection{
			TargetType: line.TargetType,
			TargetID:   line.TargetID,
			Amount:     line.Amount,
		})
	}
	return selections
}
