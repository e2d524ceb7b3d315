// Package api exposes the game engine over HTTP for the browser client.
//
// Authentication is out of scope: the caller identifies itself with the
// X-Account-ID header and ownership checks happen in the engine. Client
// errors map to HTTP statuses via the error code; unrecoverable server
// errors are rendered in-narrative with a safe continue choice so the
// player is never left without an action.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/entities"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/errors"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/orchestrators/game"
)

const accountHeader = "X-Account-ID"

// errNarrative is shown instead of internal error details. The choices that
// accompany it always include continue.
const errNarrative = "The torchlight gutters and the dungeon refuses to answer. Gather yourself and press on."

// Config holds the handler's dependencies
type Config struct {
	GameService game.Service
	Logger      *slog.Logger
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.GameService == nil {
		vb.RequiredField("GameService")
	}
	return vb.Build()
}

// Handler serves the v1 game API
type Handler struct {
	service game.Service
	logger  *slog.Logger
}

// NewHandler creates a new API handler with validated dependencies
func NewHandler(cfg *Config) (*Handler, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: cfg.GameService, logger: logger}, nil
}

// RegisterRoutes mounts the v1 API on the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/v1")
	{
		v1.POST("/campaigns", h.createCampaign)
		v1.GET("/campaigns", h.listCampaigns)
		v1.GET("/campaigns/:id/state", h.getState)
		v1.POST("/campaigns/:id/actions", h.processAction)
	}
}

type gameResponse struct {
	Success   bool                  `json:"success"`
	GameState *game.GameState       `json:"gameState,omitempty"`
	Message   string                `json:"message,omitempty"`
	Choices   []entities.ActionType `json:"choices,omitempty"`
	Combat    *game.CombatResult    `json:"combatResult,omitempty"`
	ItemFound *entities.Item        `json:"itemFound,omitempty"`
	Error     *apiError             `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type createCampaignRequest struct {
	Name          string `json:"name"`
	CharacterName string `json:"characterName"`
}

type actionRequest struct {
	ActionType string `json:"actionType" binding:"required"`
	ItemID     string `json:"itemId"`
}

func (h *Handler) createCampaign(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}

	var req createCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.renderError(c, errors.InvalidArgument("invalid request body"))
		return
	}

	out, err := h.service.StartCampaign(c.Request.Context(), &game.StartCampaignInput{
		AccountID:     accountID,
		Name:          req.Name,
		CharacterName: req.CharacterName,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, stateResponse(out.State))
}

func (h *Handler) listCampaigns(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}

	out, err := h.service.ListCampaigns(c.Request.Context(), &game.ListCampaignsInput{AccountID: accountID})
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"campaigns": out.Campaigns})
}

func (h *Handler) getState(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}

	out, err := h.service.GetGameState(c.Request.Context(), &game.GetGameStateInput{
		AccountID:  accountID,
		CampaignID: c.Param("id"),
	})
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, stateResponse(out.State))
}

func (h *Handler) processAction(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}

	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.renderError(c, errors.InvalidArgument("actionType is required"))
		return
	}

	out, err := h.service.ProcessAction(c.Request.Context(), &game.ProcessActionInput{
		AccountID: accountID,
		Action: entities.PlayerAction{
			CampaignID: c.Param("id"),
			Type:       entities.ActionType(req.ActionType),
			ItemID:     req.ItemID,
		},
	})
	if err != nil {
		h.renderError(c, err)
		return
	}

	resp := stateResponse(out.State)
	resp.Message = out.Message
	resp.Combat = out.Combat
	resp.ItemFound = out.ItemFound
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) accountID(c *gin.Context) (string, bool) {
	accountID := c.GetHeader(accountHeader)
	if accountID == "" {
		c.JSON(http.StatusUnauthorized, gameResponse{
			Success: false,
			Error:   &apiError{Code: errors.CodeUnauthenticated.String(), Message: accountHeader + " header is required"},
		})
		return "", false
	}
	return accountID, true
}

func stateResponse(state *game.GameState) gameResponse {
	resp := gameResponse{Success: true, GameState: state}
	if state != nil {
		resp.Message = state.Message
		resp.Choices = state.Choices
	}
	return resp
}

// renderError maps engine errors onto the wire. Client mistakes keep their
// code and message; anything server-side is hidden behind the narrative
// stand-in with a continue choice, per the never-stuck rule.
func (h *Handler) renderError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := code.HTTPStatus()

	if status < http.StatusInternalServerError {
		c.JSON(status, gameResponse{
			Success: false,
			Error:   &apiError{Code: code.String(), Message: err.Error()},
		})
		return
	}

	h.logger.Error("request failed",
		"path", c.FullPath(),
		"code", code.String(),
		"error", err)

	c.JSON(status, gameResponse{
		Success: false,
		Message: errNarrative,
		Choices: []entities.ActionType{entities.ActionContinue},
		Error:   &apiError{Code: code.String(), Message: "action processing failed"},
	})
}
