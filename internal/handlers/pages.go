package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/poppy/pkg/repositories"
)

// PageHandler renders the read only pages
type PageHandler struct {
	referenceRepo    repositories.ReferenceRepo
	relationshipRepo repositories.RelationshipRepo
	partyRepo        repositories.PartyRepo
	customizedRepo   repositories.CustomizedPokemonRepo
}

// NewPageHandler creates a new page handler
func NewPageHandler(
	referenceRepo repositories.ReferenceRepo,
	relationshipRepo repositories.RelationshipRepo,
	partyRepo repositories.PartyRepo,
	customizedRepo repositories.CustomizedPokemonRepo,
) *PageHandler {
	return &PageHandler{
		referenceRepo:    referenceRepo,
		relationshipRepo: relationshipRepo,
		partyRepo:        partyRepo,
		customizedRepo:   customizedRepo,
	}
}

// RegisterRoutes registers page routes
func (h *PageHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/", h.Home)
	g.GET("/parties", h.Parties)
	g.GET("/customized-parties", h.CustomizedParties)
	g.GET("/customized-pokemon", h.CustomizedPokemon)
	g.GET("/customized-pokemon-moves", h.CustomizedPokemonMoves)

	g.GET("/pokemon", h.Pokemon)
	g.GET("/types", h.Types)
	g.GET("/abilities", h.Abilities)
	g.GET("/moves", h.Moves)
	g.GET("/items", h.Items)
	g.GET("/natures", h.Natures)

	g.GET("/pokemon-typing", h.PokemonTyping)
	g.GET("/pokemon-abilities", h.PokemonAbilities)
	g.GET("/pokemon-moves", h.PokemonMoves)
}

func (h *PageHandler) Home(c echo.Context) error {
	return Render(c, "home", echo.Map{})
}

func (h *PageHandler) Parties(c echo.Context) error {
	parties, err := h.partyRepo.List(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, "parties", echo.Map{"parties": parties})
}

// CustomizedParties lists every party with its members
func (h *PageHandler) CustomizedParties(c echo.Context) error {
	ctx := c.Request().Context()

	memberships, err := h.partyRepo.ListWithMembers(ctx)
	if err != nil {
		return err
	}

	summaries, err := h.customizedRepo.ListSummaries(ctx)
	if err != nil {
		return err
	}

	parties, err := h.partyRepo.List(ctx)
	if err != nil {
		return err
	}

	return Render(c, "customized-parties", echo.Map{
		"customized_parties": memberships,
		"customized_pokemon": summaries,
		"all_parties":        parties,
	})
}

// CustomizedPokemon lists customized pokemon along with the options the
// create and update forms offer
func (h *PageHandler) CustomizedPokemon(c echo.Context) error {
	ctx := c.Request().Context()

	customized, err := h.customizedRepo.List(ctx)
	if err != nil {
		return err
	}

	pokemon, err := h.referenceRepo.ListPokemon(ctx)
	if err != nil {
		return err
	}

	abilities, err := h.referenceRepo.ListAbilities(ctx)
	if err != nil {
		return err
	}

	natures, err := h.referenceRepo.ListNatures(ctx)
	if err != nil {
		return err
	}

	items, err := h.referenceRepo.ListItems(ctx)
	if err != nil {
		return err
	}

	inParties, err := h.customizedRepo.ListInParties(ctx)
	if err != nil {
		return err
	}

	parties, err := h.partyRepo.List(ctx)
	if err != nil {
		return err
	}

	return Render(c, "customized-pokemon", echo.Map{
		"customized_pokemon": customized,
		"pokemon":            pokemon,
		"ability":            abilities,
		"nature":             natures,
		"item":               items,
		"update_pokemon":     inParties,
		"parties":            parties,
	})
}

func (h *PageHandler) CustomizedPokemonMoves(c echo.Context) error {
	ctx := c.Request().Context()

	withMoves, err := h.customizedRepo.ListWithMoves(ctx)
	if err != nil {
		return err
	}

	moves, err := h.referenceRepo.ListMoveOptions(ctx)
	if err != nil {
		return err
	}

	return Render(c, "customized-pokemon-moves", echo.Map{
		"customized_pokemon_moves": withMoves,
		"all_moves":                moves,
	})
}

func (h *PageHandler) Pokemon(c echo.Context) error {
	pokemon, err := h.referenceRepo.ListPokemon(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, "pokemon", echo.Map{"pokemon": pokemon})
}

func (h *PageHandler) Types(c echo.Context) error {
	types, err := h.referenceRepo.ListTypes(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, "types", echo.Map{"types": types})
}

func (h *PageHandler) Abilities(c echo.Context) error {
	abilities, err := h.referenceRepo.ListAbilities(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, "abilities", echo.Map{"abilities": abilities})
}

func (h *PageHandler) Moves(c echo.Context) error {
	moves, err := h.referenceRepo.ListMoves(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, "moves", echo.Map{"moves": moves})
}

func (h *PageHandler) Items(c echo.Context) error {
	items, err := h.referenceRepo.ListItems(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, "items", echo.Map{"items": items})
}

func (h *PageHandler) Natures(c echo.Context) error {
	natures, err := h.referenceRepo.ListNatures(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, "natures", echo.Map{"natures": natures})
}

// PokemonTyping lists every species with its types
func (h *PageHandler) PokemonTyping(c echo.Context) error {
	typing, err := h.relationshipRepo.PokemonTypes(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, "pokemon-typing", echo.Map{"pokemon_typing": typing})
}

func (h *PageHandler) PokemonAbilities(c echo.Context) error {
	abilities, err := h.relationshipRepo.PokemonAbilities(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, "pokemon-abilities", echo.Map{"pokemon_abilities": abilities})
}

func (h *PageHandler) PokemonMoves(c echo.Context) error {
	moves, err := h.relationshipRepo.PokemonMoves(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, "pokemon-moves", echo.Map{"pokemon_moves": moves})
}
