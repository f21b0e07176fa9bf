package handlers

import (
	"net/http"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalID(t *testing.T) {
	t.Run("should treat empty and NULL as no choice", func(t *testing.T) {
		for _, value := range []string{"", " ", "NULL"} {
			id, err := optionalID(value, "update_pokemon_item")
			require.NoError(t, err)
			assert.Nil(t, id)
		}
	})

	t.Run("should parse a positive id", func(t *testing.T) {
		id, err := optionalID("12", "update_pokemon_item")
		require.NoError(t, err)
		require.NotNil(t, id)
		assert.Equal(t, int64(12), *id)
	})

	t.Run("should reject anything else", func(t *testing.T) {
		for _, value := range []string{"0", "-4", "undefined", "1.5"} {
			_, err := optionalID(value, "update_pokemon_item")
			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
		}
	})
}

func TestUpdatePokemonForm_toUpdate(t *testing.T) {
	t.Run("should build the update", func(t *testing.T) {
		update, err := updatePokemonForm{
			CustomizedPokemonID: 4,
			Ability:             "7",
			Nature:              "2",
			Item:                "NULL",
		}.toUpdate()

		require.NoError(t, err)
		assert.Equal(t, int64(4), update.CustomizedPokemonID)
		assert.Equal(t, int64(7), update.AbilityID)
		require.NotNil(t, update.NatureID)
		assert.Equal(t, int64(2), *update.NatureID)
		assert.Nil(t, update.ItemID)
	})

	t.Run("should require an ability", func(t *testing.T) {
		_, err := updatePokemonForm{CustomizedPokemonID: 4, Ability: "undefined"}.toUpdate()
		require.Error(t, err)
		assert.Equal(t, invalidAbility, httperror.ToHTTPError(err).Error())
	})
}
