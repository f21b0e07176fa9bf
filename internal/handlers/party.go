package handlers

import (
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/poppy/pkg/events"
	"github.com/Ramsey-B/poppy/pkg/repositories"
)

type deletePartyForm struct {
	PartyID int64 `form:"parties_id" validate:"required,gt=0"`
}

type removeMemberForm struct {
	PartyID             int64 `form:"parties_id" validate:"required,gt=0"`
	CustomizedPokemonID int64 `form:"customized_pokemon_id" validate:"required,gt=0"`
}

// PartyHandler handles party mutations
type PartyHandler struct {
	partyRepo repositories.PartyRepo
	emitter   events.Emitter
	logger    ectologger.Logger
}

// NewPartyHandler creates a new party handler
func NewPartyHandler(partyRepo repositories.PartyRepo, emitter events.Emitter, logger ectologger.Logger) *PartyHandler {
	return &PartyHandler{
		partyRepo: partyRepo,
		emitter:   emitter,
		logger:    logger,
	}
}

// RegisterRoutes registers party routes
func (h *PartyHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/parties/create", h.CreateParty)
	g.POST("/parties/delete", h.DeleteParty)
	g.POST("/customized-parties/delete", h.RemoveMember)
}

// CreateParty creates an empty party
func (h *PartyHandler) CreateParty(c echo.Context) error {
	ctx := c.Request().Context()

	partyID, err := h.partyRepo.Create(ctx)
	if err != nil {
		return err
	}

	h.logger.WithContext(ctx).WithFields(map[string]any{"parties_id": partyID}).Info("Created party")
	h.emitter.Emit(ctx, events.PartyCreated, events.PartyKey(partyID), map[string]any{"parties_id": partyID})

	return SeeOther(c, "/parties")
}

// DeleteParty deletes a party and releases its members
func (h *PartyHandler) DeleteParty(c echo.Context) error {
	ctx := c.Request().Context()

	form, err := BindForm[deletePartyForm](c)
	if err != nil {
		return err
	}

	if err := h.partyRepo.Delete(ctx, form.PartyID); err != nil {
		return err
	}

	h.emitter.Emit(ctx, events.PartyDeleted, events.PartyKey(form.PartyID), map[string]any{"parties_id": form.PartyID})

	return SeeOther(c, "/parties")
}

// RemoveMember takes a customized pokemon out of a party
func (h *PartyHandler) RemoveMember(c echo.Context) error {
	ctx := c.Request().Context()

	form, err := BindForm[removeMemberForm](c)
	if err != nil {
		return err
	}

	if err := h.partyRepo.RemoveMember(ctx, form.PartyID, form.CustomizedPokemonID); err != nil {
		return err
	}

	h.emitter.Emit(ctx, events.PartyMemberRemoved, events.PartyKey(form.PartyID), map[string]any{
		"parties_id":            form.PartyID,
		"customized_pokemon_id": form.CustomizedPokemonID,
	})

	return SeeOther(c, "/customized-parties")
}
