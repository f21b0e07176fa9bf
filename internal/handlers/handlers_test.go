package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ramsey-B/poppy/pkg/database"
	"github.com/Ramsey-B/poppy/pkg/events"
	"github.com/Ramsey-B/poppy/pkg/middleware"
	"github.com/Ramsey-B/poppy/pkg/models"
	"github.com/Ramsey-B/poppy/pkg/rowgroup"
	"github.com/Ramsey-B/poppy/pkg/views"
)

func getTestLogger() ectologger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

type mockReferenceRepo struct{ mock.Mock }

func (m *mockReferenceRepo) ListPokemon(ctx context.Context) ([]models.Pokemon, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Pokemon), args.Error(1)
}

func (m *mockReferenceRepo) ListTypes(ctx context.Context) ([]models.Type, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Type), args.Error(1)
}

func (m *mockReferenceRepo) ListAbilities(ctx context.Context) ([]models.Ability, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Ability), args.Error(1)
}

func (m *mockReferenceRepo) ListNatures(ctx context.Context) ([]models.Nature, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Nature), args.Error(1)
}

func (m *mockReferenceRepo) ListItems(ctx context.Context) ([]models.Item, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Item), args.Error(1)
}

func (m *mockReferenceRepo) ListMoves(ctx context.Context) ([]models.Move, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Move), args.Error(1)
}

func (m *mockReferenceRepo) ListMoveOptions(ctx context.Context) ([]models.MoveOption, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.MoveOption), args.Error(1)
}

type mockRelationshipRepo struct{ mock.Mock }

func (m *mockRelationshipRepo) PokemonTypes(ctx context.Context) ([]rowgroup.Record, error) {
	args := m.Called(ctx)
	return args.Get(0).([]rowgroup.Record), args.Error(1)
}

func (m *mockRelationshipRepo) PokemonAbilities(ctx context.Context) ([]rowgroup.Record, error) {
	args := m.Called(ctx)
	return args.Get(0).([]rowgroup.Record), args.Error(1)
}

func (m *mockRelationshipRepo) PokemonMoves(ctx context.Context) ([]rowgroup.Record, error) {
	args := m.Called(ctx)
	return args.Get(0).([]rowgroup.Record), args.Error(1)
}

type mockPartyRepo struct{ mock.Mock }

func (m *mockPartyRepo) List(ctx context.Context) ([]models.Party, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Party), args.Error(1)
}

func (m *mockPartyRepo) ListWithMembers(ctx context.Context) ([]rowgroup.Record, error) {
	args := m.Called(ctx)
	return args.Get(0).([]rowgroup.Record), args.Error(1)
}

func (m *mockPartyRepo) Create(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPartyRepo) Delete(ctx context.Context, partyID int64) error {
	return m.Called(ctx, partyID).Error(0)
}

func (m *mockPartyRepo) RemoveMember(ctx context.Context, partyID, customizedPokemonID int64) error {
	return m.Called(ctx, partyID, customizedPokemonID).Error(0)
}

func (m *mockPartyRepo) PartyOf(ctx context.Context, customizedPokemonID int64) (int64, error) {
	args := m.Called(ctx, customizedPokemonID)
	return args.Get(0).(int64), args.Error(1)
}

type mockCustomizedRepo struct{ mock.Mock }

func (m *mockCustomizedRepo) List(ctx context.Context) ([]models.CustomizedPokemon, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.CustomizedPokemon), args.Error(1)
}

func (m *mockCustomizedRepo) ListSummaries(ctx context.Context) ([]models.CustomizedPokemonSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.CustomizedPokemonSummary), args.Error(1)
}

func (m *mockCustomizedRepo) ListInParties(ctx context.Context) ([]models.CustomizedPokemonSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.CustomizedPokemonSummary), args.Error(1)
}

func (m *mockCustomizedRepo) ListWithMoves(ctx context.Context) ([]rowgroup.Record, error) {
	args := m.Called(ctx)
	return args.Get(0).([]rowgroup.Record), args.Error(1)
}

func (m *mockCustomizedRepo) Add(ctx context.Context, partyID, pokemonID int64) (int64, error) {
	args := m.Called(ctx, partyID, pokemonID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCustomizedRepo) Update(ctx context.Context, partyID int64, update models.UpdatePokemon) error {
	return m.Called(ctx, partyID, update).Error(0)
}

func (m *mockCustomizedRepo) Delete(ctx context.Context, customizedPokemonID int64) error {
	return m.Called(ctx, customizedPokemonID).Error(0)
}

func (m *mockCustomizedRepo) AddMove(ctx context.Context, partyID, customizedPokemonID, moveID int64) error {
	return m.Called(ctx, partyID, customizedPokemonID, moveID).Error(0)
}

func (m *mockCustomizedRepo) RemoveMove(ctx context.Context, partyID, customizedPokemonID, moveID int64) error {
	return m.Called(ctx, partyID, customizedPokemonID, moveID).Error(0)
}

type mockLearnsetRepo struct{ mock.Mock }

func (m *mockLearnsetRepo) Abilities(ctx context.Context, customizedPokemonID int64, filter string) ([]database.Row, error) {
	args := m.Called(ctx, customizedPokemonID, filter)
	return args.Get(0).([]database.Row), args.Error(1)
}

func (m *mockLearnsetRepo) Moves(ctx context.Context, customizedPokemonID int64, filter string) ([]database.Row, error) {
	args := m.Called(ctx, customizedPokemonID, filter)
	return args.Get(0).([]database.Row), args.Error(1)
}

type mockMaintenanceRepo struct{ mock.Mock }

func (m *mockMaintenanceRepo) Reset(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type emitted struct {
	eventType string
	key       string
	data      map[string]any
}

type recordingEmitter struct {
	events []emitted
}

func (r *recordingEmitter) Emit(_ context.Context, eventType, key string, data map[string]any) {
	r.events = append(r.events, emitted{eventType: eventType, key: key, data: data})
}

// newServer wires routes the way the service does so failures reach the
// shared error handler
func newServer(t *testing.T, register func(root, api *echo.Group)) *echo.Echo {
	t.Helper()
	e := echo.New()

	renderer, err := views.NewRenderer()
	require.NoError(t, err)
	e.Renderer = renderer

	e.HTTPErrorHandler = middleware.Error(getTestLogger())
	e.Use(middleware.Context())

	register(e.Group(""), e.Group(middleware.APIPrefix))
	return e
}

func get(e *echo.Echo, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func postForm(e *echo.Echo, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func int64Ptr(v int64) *int64 {
	return &v
}

func strPtr(v string) *string {
	return &v
}

var _ events.Emitter = (*recordingEmitter)(nil)
