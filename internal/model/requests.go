package model

// Request payloads. Optional fields are pointers so an update only sends
// what the caller set.

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string  `json:"email"`
	Username string  `json:"username"`
	Password string  `json:"password"`
	FullName *string `json:"full_name,omitempty"`
}

// AuthResponse is returned by both login and register.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type SuperdomainCreate struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type DomainCreate struct {
	SuperdomainID int64  `json:"superdomain_id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
}

type EntityCreate struct {
	DomainID    int64  `json:"domain_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// NamedUpdate patches the name/description of a superdomain, domain or entity.
type NamedUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type AttributeCreate struct {
	EntityID     int64          `json:"entity_id"`
	Name         string         `json:"name"`
	DataType     string         `json:"data_type"`
	IsNullable   *bool          `json:"is_nullable,omitempty"`
	IsPrimaryKey *bool          `json:"is_primary_key,omitempty"`
	DefaultValue *string        `json:"default_value,omitempty"`
	Constraints  map[string]any `json:"constraints,omitempty"`
}

type AttributeUpdate struct {
	Name         *string        `json:"name,omitempty"`
	DataType     *string        `json:"data_type,omitempty"`
	IsNullable   *bool          `json:"is_nullable,omitempty"`
	IsPrimaryKey *bool          `json:"is_primary_key,omitempty"`
	DefaultValue *string        `json:"default_value,omitempty"`
	Constraints  map[string]any `json:"constraints,omitempty"`
}

type RelationshipCreate struct {
	SourceEntityID    int64       `json:"source_entity_id"`
	TargetEntityID    int64       `json:"target_entity_id"`
	SourceRole        string      `json:"source_role"`
	TargetRole        string      `json:"target_role"`
	SourceCardinality Cardinality `json:"source_cardinality"`
	TargetCardinality Cardinality `json:"target_cardinality"`
	Description       string      `json:"description,omitempty"`
}

type DiagramCreate struct {
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Tags           []string        `json:"tags,omitempty"`
	CanvasSettings *CanvasSettings `json:"canvas_settings,omitempty"`
}

type DiagramUpdate struct {
	Name           *string         `json:"name,omitempty"`
	Description    *string         `json:"description,omitempty"`
	Tags           []string        `json:"tags,omitempty"`
	CanvasSettings *CanvasSettings `json:"canvas_settings,omitempty"`
}

type DiagramObjectCreate struct {
	ObjectType  ObjectType     `json:"object_type"`
	ObjectID    int64          `json:"object_id"`
	PositionX   float64        `json:"position_x"`
	PositionY   float64        `json:"position_y"`
	VisualStyle map[string]any `json:"visual_style,omitempty"`
}

type DiagramObjectUpdate struct {
	PositionX   *float64       `json:"position_x,omitempty"`
	PositionY   *float64       `json:"position_y,omitempty"`
	VisualStyle map[string]any `json:"visual_style,omitempty"`
}

// Page is the skip/limit pagination accepted by list endpoints.
// Zero values are omitted from the query.
type Page struct {
	Skip  int
	Limit int
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T { return &v }
