package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/dice"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/handlers/api"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/narrator"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/orchestrators/game"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/pkg/clock"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/pkg/idgen"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/campaign"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/character"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/combat"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/enemy"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/gameevent"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/inventory"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/testutils"
)

// The handler is tested end to end against a real engine on in-memory
// backends, with the narrator in static mode so responses are deterministic.
type HandlerTestSuite struct {
	suite.Suite
	router   *gin.Engine
	cleanups []func()
}

func (s *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.cleanups = nil

	db, dbCleanup := testutils.CreateTestDB(s.T())
	s.cleanups = append(s.cleanups, dbCleanup)
	redisClient, redisCleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanups = append(s.cleanups, redisCleanup)

	fixed := clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	campaignRepo, err := campaign.NewSQLite(&campaign.Config{DB: db, Clock: fixed})
	s.Require().NoError(err)
	characterRepo, err := character.NewSQLite(&character.Config{DB: db})
	s.Require().NoError(err)
	enemyRepo, err := enemy.NewSQLite(&enemy.Config{DB: db})
	s.Require().NoError(err)
	inventoryRepo, err := inventory.NewSQLite(&inventory.Config{DB: db, Clock: fixed})
	s.Require().NoError(err)
	eventRepo, err := gameevent.NewSQLite(&gameevent.Config{DB: db, Clock: fixed, IDGen: idgen.NewSequential("evt")})
	s.Require().NoError(err)
	combatStore, err := combat.NewRedisRepository(&combat.Config{Client: redisClient, Clock: fixed})
	s.Require().NoError(err)

	svc, err := game.NewOrchestrator(&game.Config{
		CampaignRepo:  campaignRepo,
		CharacterRepo: characterRepo,
		EnemyRepo:     enemyRepo,
		InventoryRepo: inventoryRepo,
		EventRepo:     eventRepo,
		CombatStore:   combatStore,
		Narrator:      narrator.NewFallback(&narrator.FallbackConfig{}),
		Roller:        dice.NewRoller(),
		EventBus:      events.NewBus(),
		IDGenerator:   idgen.NewSequential("test"),
	})
	s.Require().NoError(err)

	handler, err := api.NewHandler(&api.Config{GameService: svc})
	s.Require().NoError(err)

	s.router = gin.New()
	handler.RegisterRoutes(s.router)
}

func (s *HandlerTestSuite) TearDownTest() {
	for i := len(s.cleanups) - 1; i >= 0; i-- {
		s.cleanups[i]()
	}
}

func (s *HandlerTestSuite) request(method, path, accountID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequestWithContext(context.Background(), method, path, &buf)
	if accountID != "" {
		req.Header.Set("X-Account-ID", accountID)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerTestSuite) decode(rec *httptest.ResponseRecorder) map[string]any {
	var payload map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func (s *HandlerTestSuite) createCampaign() string {
	rec := s.request(http.MethodPost, "/v1/campaigns", "acct_1", map[string]string{
		"name":          "Test Delve",
		"characterName": "Brynn",
	})
	s.Require().Equal(http.StatusCreated, rec.Code)

	payload := s.decode(rec)
	s.Require().Equal(true, payload["success"])
	state := payload["gameState"].(map[string]any)
	camp := state["campaign"].(map[string]any)
	return camp["id"].(string)
}

func (s *HandlerTestSuite) TestCreateCampaign() {
	rec := s.request(http.MethodPost, "/v1/campaigns", "acct_1", map[string]string{
		"name":          "Test Delve",
		"characterName": "Brynn",
	})
	s.Require().Equal(http.StatusCreated, rec.Code)

	payload := s.decode(rec)
	s.Equal(true, payload["success"])
	s.NotEmpty(payload["message"])
	state := payload["gameState"].(map[string]any)
	s.Equal("exploration", state["phase"])
	s.Equal([]any{"continue"}, payload["choices"])
}

func (s *HandlerTestSuite) TestMissingAccountHeader() {
	rec := s.request(http.MethodGet, "/v1/campaigns", "", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)

	payload := s.decode(rec)
	s.Equal(false, payload["success"])
	errBody := payload["error"].(map[string]any)
	s.Equal("UNAUTHENTICATED", errBody["code"])
}

func (s *HandlerTestSuite) TestListCampaigns() {
	s.createCampaign()

	rec := s.request(http.MethodGet, "/v1/campaigns", "acct_1", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	payload := s.decode(rec)
	s.Len(payload["campaigns"], 1)

	// Another account sees nothing.
	rec = s.request(http.MethodGet, "/v1/campaigns", "acct_2", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	payload = s.decode(rec)
	s.Empty(payload["campaigns"])
}

func (s *HandlerTestSuite) TestGetState() {
	campaignID := s.createCampaign()

	rec := s.request(http.MethodGet, "/v1/campaigns/"+campaignID+"/state", "acct_1", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	payload := s.decode(rec)
	state := payload["gameState"].(map[string]any)
	s.Equal("exploration", state["phase"])
}

func (s *HandlerTestSuite) TestForeignCampaignIsNotFound() {
	campaignID := s.createCampaign()

	rec := s.request(http.MethodGet, "/v1/campaigns/"+campaignID+"/state", "acct_2", nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerTestSuite) TestProcessActionContinue() {
	campaignID := s.createCampaign()

	rec := s.request(http.MethodPost, "/v1/campaigns/"+campaignID+"/actions", "acct_1", map[string]string{
		"actionType": "continue",
	})
	s.Require().Equal(http.StatusOK, rec.Code)
	payload := s.decode(rec)
	s.Equal(true, payload["success"])
	s.NotEmpty(payload["message"])
	s.NotEmpty(payload["choices"])
}

func (s *HandlerTestSuite) TestProcessActionValidation() {
	campaignID := s.createCampaign()

	// Missing actionType.
	rec := s.request(http.MethodPost, "/v1/campaigns/"+campaignID+"/actions", "acct_1", map[string]string{})
	s.Equal(http.StatusBadRequest, rec.Code)

	// Unknown actionType.
	rec = s.request(http.MethodPost, "/v1/campaigns/"+campaignID+"/actions", "acct_1", map[string]string{
		"actionType": "dance",
	})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerTestSuite) TestActionOutsidePhaseIsPreconditionFailure() {
	campaignID := s.createCampaign()

	rec := s.request(http.MethodPost, "/v1/campaigns/"+campaignID+"/actions", "acct_1", map[string]string{
		"actionType": "attack",
	})
	s.Equal(http.StatusPreconditionFailed, rec.Code)
	payload := s.decode(rec)
	s.Equal(false, payload["success"])
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
