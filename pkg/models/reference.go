package models

// Pokemon is a base species.
type Pokemon struct {
	ID   int64  `db:"pokemon_id" json:"pokemon_id"`
	Name string `db:"name" json:"name"`
}

// TableName returns the database table name
func (Pokemon) TableName() string {
	return "pokemon"
}

type Type struct {
	ID   int64  `db:"types_id" json:"types_id"`
	Name string `db:"name" json:"name"`
}

// TableName returns the database table name
func (Type) TableName() string {
	return "types"
}

type Ability struct {
	ID          int64   `db:"abilities_id" json:"abilities_id"`
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description,omitempty"`
}

// TableName returns the database table name
func (Ability) TableName() string {
	return "abilities"
}

type Nature struct {
	ID   int64  `db:"natures_id" json:"natures_id"`
	Name string `db:"name" json:"name"`
}

// TableName returns the database table name
func (Nature) TableName() string {
	return "natures"
}

type Item struct {
	ID          int64   `db:"items_id" json:"items_id"`
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description,omitempty"`
}

// TableName returns the database table name
func (Item) TableName() string {
	return "items"
}

// Move is a move with the name of its type resolved. Power is nil for
// status moves and TypeName is nil when the type was removed.
type Move struct {
	ID          int64   `db:"moves_id" json:"moves_id"`
	Name        string  `db:"name" json:"name"`
	Power       *int64  `db:"power" json:"power,omitempty"`
	Description *string `db:"description" json:"description,omitempty"`
	TypeName    *string `db:"type_name" json:"type_name,omitempty"`
}

// TableName returns the database table name
func (Move) TableName() string {
	return "moves"
}

// MoveOption is the id and name pair used to fill move pickers.
type MoveOption struct {
	ID   int64  `db:"moves_id" json:"moves_id"`
	Name string `db:"name" json:"name"`
}
