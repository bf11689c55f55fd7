package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/baldiga/linkedin-ai-proxy-v2/internal/config"
	"github.com/baldiga/linkedin-ai-proxy-v2/internal/llm"
	"github.com/baldiga/linkedin-ai-proxy-v2/internal/queue"
	"github.com/baldiga/linkedin-ai-proxy-v2/internal/quota"
	"github.com/baldiga/linkedin-ai-proxy-v2/internal/repository"
	"github.com/baldiga/linkedin-ai-proxy-v2/internal/service"
)

// Publisher emits a domain event after a successful generation. It is a
// function value so tests can capture events and main can wire the
// RabbitMQ publisher; failures are logged by the publisher and ignored
// here because eventing is best-effort.
type Publisher func(ctx context.Context, ev queue.CommentGeneratedEvent) error

// CommentHandler serves POST /generate-comment: validate, consult the
// quota ledger, call the text-generation backend under a timeout, and
// only then commit one unit of consumption. A failed or timed-out
// generation is never charged.
type CommentHandler struct {
	Cfg     config.Config
	Users   UserStore
	Quota   *quota.Ledger
	LLM     *llm.Client
	Publish Publisher
}

func NewCommentHandler(cfg config.Config, users UserStore, ledger *quota.Ledger, client *llm.Client) *CommentHandler {
	return &CommentHandler{
		Cfg:     cfg,
		Users:   users,
		Quota:   ledger,
		LLM:     client,
		Publish: service.PublishCommentGenerated,
	}
}

type generateReq struct {
	UserID           string `json:"userId"` // account email
	PostContent      string `json:"postContent"`
	Persona          string `json:"persona"`
	ResponseLanguage string `json:"responseLanguage"`
	IncludeEmojis    bool   `json:"includeEmojis"`
}

type generateResp struct {
	Success bool   `json:"success"`
	Comment string `json:"comment"`
}

// Generate handles one comment-generation request.
func (h *CommentHandler) Generate(c echo.Context) error {
	if h.Users == nil || h.LLM == nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "a backend service is not configured"})
	}
	var req generateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.UserID = strings.ToLower(strings.TrimSpace(req.UserID))
	if req.UserID == "" || strings.TrimSpace(req.PostContent) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing userId or postContent"})
	}

	now := time.Now()

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	dec, err := h.Quota.CheckAndReserve(ctx, req.UserID, now)
	cancel()
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found, please log in again"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !dec.Allowed {
		return c.JSON(http.StatusTooManyRequests, echo.Map{
			"error": fmt.Sprintf("daily limit of %d comments reached, please upgrade your plan", dec.Limit),
			"limit": dec.Limit,
		})
	}

	// The generation call is bounded so a stuck backend cannot pin the
	// request forever; no lock or transaction is held across it.
	genCtx, genCancel := context.WithTimeout(c.Request().Context(), h.Cfg.GenTimeout)
	comment, err := h.LLM.Complete(genCtx, llm.SystemInstruction,
		llm.BuildPrompt(req.PostContent, req.Persona, req.ResponseLanguage, req.IncludeEmojis))
	genCancel()
	if err != nil {
		c.Logger().Errorf("comment generation failed for %s: %v", req.UserID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to generate comment due to a server error"})
	}

	// Charge only after the generation succeeded. The commit is detached
	// from the request context: once the user has their comment the
	// consumption must land even if the client hangs up.
	commitCtx, commitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := h.Quota.CommitConsumption(commitCtx, req.UserID, now); err != nil {
		c.Logger().Errorf("usage commit failed for %s: %v", req.UserID, err)
	}
	commitCancel()

	if h.Publish != nil {
		persona := req.Persona
		if persona == "" {
			persona = llm.DefaultPersona
		}
		language := req.ResponseLanguage
		if language == "" {
			language = llm.DefaultLanguage
		}
		_ = h.Publish(context.Background(), queue.CommentGeneratedEvent{
			UserID:      req.UserID,
			Tier:        string(dec.Tier),
			UsedToday:   dec.Used + 1,
			Limit:       dec.Limit,
			Model:       h.LLM.Model(),
			Persona:     persona,
			Language:    language,
			CommentSize: len(comment),
			GeneratedAt: now.UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, generateResp{Success: true, Comment: comment})
}
