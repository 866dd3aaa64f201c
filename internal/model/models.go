package model

// Cardinality describes one end of a relationship.
type Cardinality string

const (
	CardinalityOne      Cardinality = "ONE"       // 1..1
	CardinalityZeroOne  Cardinality = "ZERO_ONE"  // 0..1
	CardinalityOneMany  Cardinality = "ONE_MANY"  // 1..N
	CardinalityZeroMany Cardinality = "ZERO_MANY" // 0..N
)

// ObjectType is the kind of repository object a diagram places.
type ObjectType string

const (
	ObjectSuperdomain ObjectType = "SUPERDOMAIN"
	ObjectDomain      ObjectType = "DOMAIN"
	ObjectEntity      ObjectType = "ENTITY"
)

// AuthProvider identifies how a user authenticates.
type AuthProvider string

const (
	AuthProviderLocal   AuthProvider = "LOCAL"
	AuthProviderAzureAD AuthProvider = "AZURE_AD"
)

// Timestamps are carried by every server-owned record.
type Timestamps struct {
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// User is the authenticated account.
type User struct {
	ID           int64        `json:"id"`
	Email        string       `json:"email"`
	Username     string       `json:"username"`
	FullName     *string      `json:"full_name,omitempty"`
	AuthProvider AuthProvider `json:"auth_provider"`
	IsActive     bool         `json:"is_active"`
	Timestamps
}

// Superdomain is the top level of the object repository.
type Superdomain struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Timestamps
}

// Domain belongs to a Superdomain.
type Domain struct {
	ID            int64  `json:"id"`
	SuperdomainID int64  `json:"superdomain_id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Timestamps
}

// Entity belongs to a Domain.
type Entity struct {
	ID          int64  `json:"id"`
	DomainID    int64  `json:"domain_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Timestamps
}

// Attribute belongs to an Entity. Constraints are opaque to the client.
type Attribute struct {
	ID           int64          `json:"id"`
	EntityID     int64          `json:"entity_id"`
	Name         string         `json:"name"`
	DataType     string         `json:"data_type"`
	IsNullable   bool           `json:"is_nullable"`
	IsPrimaryKey bool           `json:"is_primary_key"`
	DefaultValue *string        `json:"default_value,omitempty"`
	Constraints  map[string]any `json:"constraints,omitempty"`
	Timestamps
}

// Relationship associates two entities with a cardinality at each end.
type Relationship struct {
	ID                int64       `json:"id"`
	SourceEntityID    int64       `json:"source_entity_id"`
	TargetEntityID    int64       `json:"target_entity_id"`
	SourceRole        string      `json:"source_role"`
	TargetRole        string      `json:"target_role"`
	SourceCardinality Cardinality `json:"source_cardinality"`
	TargetCardinality Cardinality `json:"target_cardinality"`
	Description       string      `json:"description,omitempty"`
	Timestamps
}

// Point is a canvas coordinate pair.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CanvasSettings is the persisted view state of a diagram.
type CanvasSettings struct {
	Zoom        float64 `json:"zoom"`
	Pan         Point   `json:"pan"`
	GridEnabled bool    `json:"gridEnabled"`
	SnapToGrid  bool    `json:"snapToGrid"`
}

// DefaultCanvasSettings is used when a diagram carries no settings of its own.
func DefaultCanvasSettings() CanvasSettings {
	return CanvasSettings{
		Zoom:        1,
		Pan:         Point{X: 0, Y: 0},
		GridEnabled: true,
		SnapToGrid:  true,
	}
}

// Diagram is a named, taggable arrangement of repository objects.
// Objects and Relationships are only populated on the detail endpoint.
type Diagram struct {
	ID             int64                 `json:"id"`
	UserID         int64                 `json:"user_id"`
	Name           string                `json:"name"`
	Description    string                `json:"description,omitempty"`
	Tags           []string              `json:"tags,omitempty"`
	CanvasSettings *CanvasSettings       `json:"canvas_settings,omitempty"`
	Objects        []DiagramObject       `json:"objects,omitempty"`
	Relationships  []DiagramRelationship `json:"relationships,omitempty"`
	Timestamps
}

// HasTag reports whether the diagram carries tag.
func (d Diagram) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// DiagramObject places one repository object on one diagram.
type DiagramObject struct {
	ID          int64          `json:"id"`
	DiagramID   int64          `json:"diagram_id"`
	ObjectType  ObjectType     `json:"object_type"`
	ObjectID    int64          `json:"object_id"`
	PositionX   float64        `json:"position_x"`
	PositionY   float64        `json:"position_y"`
	VisualStyle map[string]any `json:"visual_style,omitempty"`
	Timestamps
}

// DiagramRelationship controls how a relationship is drawn on a diagram.
type DiagramRelationship struct {
	ID             int64          `json:"id"`
	DiagramID      int64          `json:"diagram_id"`
	RelationshipID int64          `json:"relationship_id"`
	IsVisible      bool           `json:"is_visible"`
	PathPoints     map[string]any `json:"path_points,omitempty"`
	VisualStyle    map[string]any `json:"visual_style,omitempty"`
	Timestamps
}

// DeleteImpact summarizes what a cascading delete removed server-side.
type DeleteImpact struct {
	AffectedDomains  []string `json:"affected_domains,omitempty"`
	AffectedEntities []string `json:"affected_entities,omitempty"`
	Cascade          bool     `json:"cascade"`
}

// DeleteResponse is returned by every DELETE endpoint.
type DeleteResponse struct {
	Message string        `json:"message"`
	Impact  *DeleteImpact `json:"impact,omitempty"`
}
