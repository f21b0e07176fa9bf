package models

// Party holds up to six customized pokemon.
type Party struct {
	ID int64 `db:"parties_id" json:"parties_id"`
}

// TableName returns the database table name
func (Party) TableName() string {
	return "parties"
}

// CustomizedPokemon is a customized pokemon with the names of its base
// species and of each selected option. Unselected options are nil.
type CustomizedPokemon struct {
	ID          int64   `db:"customized_pokemon_id" json:"customized_pokemon_id"`
	PokemonName *string `db:"pokemon_name" json:"pokemon_name"`
	AbilityName *string `db:"ability_name" json:"ability_name"`
	NatureName  *string `db:"nature_name" json:"nature_name"`
	ItemName    *string `db:"item_name" json:"item_name"`
}

// TableName returns the database table name
func (CustomizedPokemon) TableName() string {
	return "customized_pokemon"
}

// CustomizedPokemonSummary names a customized pokemon by its species.
type CustomizedPokemonSummary struct {
	ID          int64   `db:"customized_pokemon_id" json:"customized_pokemon_id"`
	PokemonName *string `db:"pokemon_name" json:"pokemon_name"`
}

// UpdatePokemon is the change applied by updatePokemon. Nature and item are
// cleared when nil.
type UpdatePokemon struct {
	CustomizedPokemonID int64
	AbilityID           int64
	NatureID            *int64
	ItemID              *int64
}
