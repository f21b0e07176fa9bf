package handlers

import (
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/poppy/pkg/events"
	"github.com/Ramsey-B/poppy/pkg/models"
	"github.com/Ramsey-B/poppy/pkg/repositories"
)

const invalidAbility = "You must select a valid ability."

type createPokemonForm struct {
	PartyID   int64 `form:"party_id" validate:"required,gt=0"`
	PokemonID int64 `form:"create_pokemon" validate:"required,gt=0"`
}

// updatePokemonForm keeps the optional selects as text since the page posts
// "NULL" for an empty choice
type updatePokemonForm struct {
	CustomizedPokemonID int64  `form:"update_pokemon" validate:"required,gt=0"`
	Ability             string `form:"update_pokemon_ability"`
	Nature              string `form:"update_pokemon_nature"`
	Item                string `form:"update_pokemon_item"`
}

type deletePokemonForm struct {
	CustomizedPokemonID int64 `form:"customized_pokemon_id" validate:"required,gt=0"`
}

type moveForm struct {
	CustomizedPokemonID int64 `form:"customized_pokemon_id" validate:"required,gt=0"`
	MoveID              int64 `form:"move_id" validate:"required,gt=0"`
}

// CustomizedPokemonHandler handles customized pokemon mutations
type CustomizedPokemonHandler struct {
	customizedRepo repositories.CustomizedPokemonRepo
	partyRepo      repositories.PartyRepo
	emitter        events.Emitter
	logger         ectologger.Logger
}

// NewCustomizedPokemonHandler creates a new customized pokemon handler
func NewCustomizedPokemonHandler(
	customizedRepo repositories.CustomizedPokemonRepo,
	partyRepo repositories.PartyRepo,
	emitter events.Emitter,
	logger ectologger.Logger,
) *CustomizedPokemonHandler {
	return &CustomizedPokemonHandler{
		customizedRepo: customizedRepo,
		partyRepo:      partyRepo,
		emitter:        emitter,
		logger:         logger,
	}
}

// RegisterRoutes registers customized pokemon routes
func (h *CustomizedPokemonHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/customized-pokemon/create", h.Create)
	g.POST("/customized-pokemon/update", h.Update)
	g.POST("/customized-pokemon/delete", h.Delete)

	g.POST("/customized-pokemon-moves/add-move", h.AddMove)
	g.POST("/customized-pokemon-moves/remove-move", h.RemoveMove)
}

// Create adds a new customized pokemon of the chosen species to a party
func (h *CustomizedPokemonHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	form, err := BindForm[createPokemonForm](c)
	if err != nil {
		return err
	}

	customizedPokemonID, err := h.customizedRepo.Add(ctx, form.PartyID, form.PokemonID)
	if err != nil {
		return err
	}

	h.logger.WithContext(ctx).WithFields(map[string]any{
		"parties_id":            form.PartyID,
		"pokemon_id":            form.PokemonID,
		"customized_pokemon_id": customizedPokemonID,
	}).Info("Added pokemon to party")

	h.emitter.Emit(ctx, events.CustomizedPokemonCreated, events.PartyKey(form.PartyID), map[string]any{
		"parties_id":            form.PartyID,
		"pokemon_id":            form.PokemonID,
		"customized_pokemon_id": customizedPokemonID,
	})

	return SeeOther(c, "/customized-pokemon")
}

// Update changes the ability, nature and held item of a customized pokemon
func (h *CustomizedPokemonHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	form, err := BindForm[updatePokemonForm](c)
	if err != nil {
		return err
	}

	update, err := form.toUpdate()
	if err != nil {
		return err
	}

	partyID, err := h.partyRepo.PartyOf(ctx, update.CustomizedPokemonID)
	if err != nil {
		return err
	}

	if err := h.customizedRepo.Update(ctx, partyID, update); err != nil {
		return err
	}

	h.emitter.Emit(ctx, events.CustomizedPokemonUpdated, events.CustomizedPokemonKey(update.CustomizedPokemonID), map[string]any{
		"parties_id":            partyID,
		"customized_pokemon_id": update.CustomizedPokemonID,
		"abilities_id":          update.AbilityID,
		"natures_id":            update.NatureID,
		"items_id":              update.ItemID,
	})

	return SeeOther(c, "/customized-pokemon")
}

func (f updatePokemonForm) toUpdate() (models.UpdatePokemon, error) {
	ability := strings.TrimSpace(f.Ability)
	if ability == "" || ability == "NULL" || ability == "undefined" {
		return models.UpdatePokemon{}, BadRequest(invalidAbility)
	}

	abilityID, err := optionalID(ability, "update_pokemon_ability")
	if err != nil || abilityID == nil {
		return models.UpdatePokemon{}, BadRequest(invalidAbility)
	}

	natureID, err := optionalID(f.Nature, "update_pokemon_nature")
	if err != nil {
		return models.UpdatePokemon{}, err
	}

	itemID, err := optionalID(f.Item, "update_pokemon_item")
	if err != nil {
		return models.UpdatePokemon{}, err
	}

	return models.UpdatePokemon{
		CustomizedPokemonID: f.CustomizedPokemonID,
		AbilityID:           *abilityID,
		NatureID:            natureID,
		ItemID:              itemID,
	}, nil
}

// Delete removes a customized pokemon from every party and drops it
func (h *CustomizedPokemonHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	form, err := BindForm[deletePokemonForm](c)
	if err != nil {
		return err
	}

	if err := h.customizedRepo.Delete(ctx, form.CustomizedPokemonID); err != nil {
		return err
	}

	h.emitter.Emit(ctx, events.CustomizedPokemonDeleted, events.CustomizedPokemonKey(form.CustomizedPokemonID), map[string]any{
		"customized_pokemon_id": form.CustomizedPokemonID,
	})

	return SeeOther(c, "/customized-pokemon")
}

// AddMove teaches a move to a customized pokemon
func (h *CustomizedPokemonHandler) AddMove(c echo.Context) error {
	ctx := c.Request().Context()

	form, err := BindForm[moveForm](c)
	if err != nil {
		return err
	}

	partyID, err := h.partyRepo.PartyOf(ctx, form.CustomizedPokemonID)
	if err != nil {
		return err
	}

	if err := h.customizedRepo.AddMove(ctx, partyID, form.CustomizedPokemonID, form.MoveID); err != nil {
		return err
	}

	h.emitter.Emit(ctx, events.MoveAdded, events.CustomizedPokemonKey(form.CustomizedPokemonID), form.eventData(partyID))

	return SeeOther(c, "/customized-pokemon-moves")
}

// RemoveMove makes a customized pokemon forget a move
func (h *CustomizedPokemonHandler) RemoveMove(c echo.Context) error {
	ctx := c.Request().Context()

	form, err := BindForm[moveForm](c)
	if err != nil {
		return err
	}

	partyID, err := h.partyRepo.PartyOf(ctx, form.CustomizedPokemonID)
	if err != nil {
		return err
	}

	if err := h.customizedRepo.RemoveMove(ctx, partyID, form.CustomizedPokemonID, form.MoveID); err != nil {
		return err
	}

	h.emitter.Emit(ctx, events.MoveRemoved, events.CustomizedPokemonKey(form.CustomizedPokemonID), form.eventData(partyID))

	return SeeOther(c, "/customized-pokemon-moves")
}

func (f moveForm) eventData(partyID int64) map[string]any {
	return map[string]any{
		"parties_id":            partyID,
		"customized_pokemon_id": f.CustomizedPokemonID,
		"moves_id":              f.MoveID,
	}
}
