package form

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"dd-go/internal/model"
)

// DataTypes is the picklist offered for attribute data types. The server
// accepts any string.
var DataTypes = []string{
	"String",
	"Integer",
	"Float",
	"Boolean",
	"Date",
	"DateTime",
	"UUID",
	"JSON",
	"Text",
	"Decimal",
}

const DefaultDataType = "String"

// IsKnownDataType reports whether t is in DataTypes.
func IsKnownDataType(t string) bool {
	return slices.Contains(DataTypes, t)
}

// Attribute is the attribute create/edit form. Constraints is free-form JSON
// text.
type Attribute struct {
	Name         string
	DataType     string
	IsNullable   bool
	IsPrimaryKey bool
	DefaultValue string
	Constraints  string
}

// NewAttribute returns the form defaults: a nullable String column.
func NewAttribute() Attribute {
	return Attribute{DataType: DefaultDataType, IsNullable: true}
}

// ParseConstraints decodes the constraints field. Blank text means no
// constraints; anything else must be a JSON object.
func ParseConstraints(text string) (map[string]any, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(text), &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConstraints, err)
	}
	return m, nil
}

func (a Attribute) validate() (map[string]any, error) {
	if strings.TrimSpace(a.Name) == "" {
		return nil, &ValidationError{Field: "name", Message: "Name is required"}
	}
	return ParseConstraints(a.Constraints)
}

func (a Attribute) dataType() string {
	if a.DataType == "" {
		return DefaultDataType
	}
	return a.DataType
}

func (a Attribute) defaultValue() *string {
	if a.DefaultValue == "" {
		return nil
	}
	return &a.DefaultValue
}

// CreateRequest builds the create payload for an attribute of entityID.
func (a Attribute) CreateRequest(entityID int64) (model.AttributeCreate, error) {
	if entityID <= 0 {
		return model.AttributeCreate{}, &ValidationError{Field: "entity_id", Message: "Entity ID is required"}
	}
	constraints, err := a.validate()
	if err != nil {
		return model.AttributeCreate{}, err
	}
	return model.AttributeCreate{
		EntityID:     entityID,
		Name:         a.Name,
		DataType:     a.dataType(),
		IsNullable:   &a.IsNullable,
		IsPrimaryKey: &a.IsPrimaryKey,
		DefaultValue: a.defaultValue(),
		Constraints:  constraints,
	}, nil
}

// UpdateRequest builds a full-form update payload.
func (a Attribute) UpdateRequest() (model.AttributeUpdate, error) {
	constraints, err := a.validate()
	if err != nil {
		return model.AttributeUpdate{}, err
	}
	return model.AttributeUpdate{
		Name:         &a.Name,
		DataType:     model.Ptr(a.dataType()),
		IsNullable:   &a.IsNullable,
		IsPrimaryKey: &a.IsPrimaryKey,
		DefaultValue: a.defaultValue(),
		Constraints:  constraints,
	}, nil
}

// FromAttribute fills the form from an existing attribute for editing.
func FromAttribute(attr model.Attribute) (Attribute, error) {
	f := Attribute{
		Name:         attr.Name,
		DataType:     attr.DataType,
		IsNullable:   attr.IsNullable,
		IsPrimaryKey: attr.IsPrimaryKey,
	}
	if attr.DefaultValue != nil {
		f.DefaultValue = *attr.DefaultValue
	}
	if attr.Constraints != nil {
		b, err := json.MarshalIndent(attr.Constraints, "", "  ")
		if err != nil {
			return Attribute{}, fmt.Errorf("encoding constraints: %w", err)
		}
		f.Constraints = string(b)
	}
	return f, nil
}
