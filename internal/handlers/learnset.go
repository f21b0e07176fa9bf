package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/poppy/pkg/repositories"
)

// LearnsetHandler serves the ability and move options the forms load on demand
type LearnsetHandler struct {
	learnsetRepo repositories.LearnsetRepo
}

// NewLearnsetHandler creates a new learnset handler
func NewLearnsetHandler(learnsetRepo repositories.LearnsetRepo) *LearnsetHandler {
	return &LearnsetHandler{learnsetRepo: learnsetRepo}
}

// RegisterRoutes registers learnset routes on the api group
func (h *LearnsetHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/customized-pokemon/:id/abilities", h.Abilities)
	g.GET("/customized-pokemon/:id/moves", h.Moves)
}

// Abilities lists the abilities a customized pokemon may take, optionally
// narrowed by ?q=
func (h *LearnsetHandler) Abilities(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	abilities, err := h.learnsetRepo.Abilities(ctx, id, c.QueryParam("q"))
	if err != nil {
		return err
	}

	return SuccessResponse(c, abilities)
}

// Moves lists the moves the species of a customized pokemon can learn
func (h *LearnsetHandler) Moves(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	moves, err := h.learnsetRepo.Moves(ctx, id, c.QueryParam("q"))
	if err != nil {
		return err
	}

	return SuccessResponse(c, moves)
}
