package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldiga/linkedin-ai-proxy-v2/internal/llm"
	"github.com/baldiga/linkedin-ai-proxy-v2/internal/model"
	"github.com/baldiga/linkedin-ai-proxy-v2/internal/queue"
	"github.com/baldiga/linkedin-ai-proxy-v2/internal/quota"
)

// newLLMBackend serves a canned chat completion and counts calls.
func newLLMBackend(t *testing.T, comment string, status int, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if status != http.StatusOK {
			http.Error(w, `{"error":"boom"}`, status)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message":       map[string]string{"role": "assistant", "content": comment},
				"finish_reason": "stop",
			}},
		})
	}))
}

func newCommentHandler(store *memUsers, client *llm.Client, publish Publisher) *CommentHandler {
	h := &CommentHandler{Cfg: testConfig(), LLM: client, Publish: publish}
	// A typed nil must not sneak into the interface field: main leaves
	// Users nil when the database is down, and the handler keys off that.
	if store != nil {
		h.Users = store
		h.Quota = newLedger(store)
	}
	return h
}

func TestGenerateSuccess(t *testing.T) {
	var calls int32
	srv := newLLMBackend(t, "Great post, thanks for sharing!", http.StatusOK, &calls)
	defer srv.Close()

	store := newMemUsers(model.User{
		Email: "a@b.c", Tier: model.TierFree,
		UsedCount: 2, LastResetDate: quota.Day(time.Now()),
	})
	var published []queue.CommentGeneratedEvent
	h := newCommentHandler(store, llm.New("k", llm.WithBaseURL(srv.URL), llm.WithModel("gpt-3.5-turbo")),
		func(_ context.Context, ev queue.CommentGeneratedEvent) error {
			published = append(published, ev)
			return nil
		})

	c, rec := newTestContext(t, http.MethodPost, "/generate-comment",
		`{"userId":"a@b.c","postContent":"We are hiring!","persona":"warm","responseLanguage":"Spanish","includeEmojis":true}`)
	require.NoError(t, h.Generate(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp generateResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Great post, thanks for sharing!", resp.Comment)

	u, _ := store.Get(c.Request().Context(), "a@b.c")
	assert.Equal(t, 3, u.UsedCount, "one unit committed after success")

	require.Len(t, published, 1)
	assert.Equal(t, "a@b.c", published[0].UserID)
	assert.Equal(t, string(model.TierFree), published[0].Tier)
	assert.Equal(t, 3, published[0].UsedToday)
	assert.Equal(t, 5, published[0].Limit)
	assert.Equal(t, "warm", published[0].Persona)
	assert.Equal(t, "Spanish", published[0].Language)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGenerateMissingFields(t *testing.T) {
	var calls int32
	srv := newLLMBackend(t, "x", http.StatusOK, &calls)
	defer srv.Close()
	store := newMemUsers()
	h := newCommentHandler(store, llm.New("k", llm.WithBaseURL(srv.URL)), nil)

	for _, body := range []string{
		`{"postContent":"hello"}`,
		`{"userId":"a@b.c"}`,
		`{"userId":"a@b.c","postContent":"   "}`,
	} {
		c, rec := newTestContext(t, http.MethodPost, "/generate-comment", body)
		require.NoError(t, h.Generate(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
	}
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestGenerateUnknownUser(t *testing.T) {
	var calls int32
	srv := newLLMBackend(t, "x", http.StatusOK, &calls)
	defer srv.Close()
	h := newCommentHandler(newMemUsers(), llm.New("k", llm.WithBaseURL(srv.URL)), nil)

	c, rec := newTestContext(t, http.MethodPost, "/generate-comment",
		`{"userId":"ghost@b.c","postContent":"hello"}`)
	require.NoError(t, h.Generate(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestGenerateQuotaExceeded(t *testing.T) {
	var calls int32
	srv := newLLMBackend(t, "x", http.StatusOK, &calls)
	defer srv.Close()

	store := newMemUsers(model.User{
		Email: "a@b.c", Tier: model.TierFree,
		UsedCount: 5, LastResetDate: quota.Day(time.Now()),
	})
	h := newCommentHandler(store, llm.New("k", llm.WithBaseURL(srv.URL)), nil)

	c, rec := newTestContext(t, http.MethodPost, "/generate-comment",
		`{"userId":"a@b.c","postContent":"hello"}`)
	require.NoError(t, h.Generate(c))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(5), body["limit"], "429 body carries the tier limit")

	assert.Zero(t, atomic.LoadInt32(&calls), "no generation attempted over quota")
	u, _ := store.Get(c.Request().Context(), "a@b.c")
	assert.Equal(t, 5, u.UsedCount, "denial mutates nothing")
}

func TestGenerateBackendFailureNotCharged(t *testing.T) {
	var calls int32
	srv := newLLMBackend(t, "", http.StatusInternalServerError, &calls)
	defer srv.Close()

	store := newMemUsers(model.User{
		Email: "a@b.c", Tier: model.TierFree,
		UsedCount: 1, LastResetDate: quota.Day(time.Now()),
	})
	published := 0
	h := newCommentHandler(store, llm.New("k", llm.WithBaseURL(srv.URL)),
		func(context.Context, queue.CommentGeneratedEvent) error { published++; return nil })

	c, rec := newTestContext(t, http.MethodPost, "/generate-comment",
		`{"userId":"a@b.c","postContent":"hello"}`)
	require.NoError(t, h.Generate(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	u, _ := store.Get(c.Request().Context(), "a@b.c")
	assert.Equal(t, 1, u.UsedCount, "a failed generation is never charged")
	assert.Zero(t, published)
}

func TestGenerateLazyRollover(t *testing.T) {
	var calls int32
	srv := newLLMBackend(t, "Fresh day, fresh comment.", http.StatusOK, &calls)
	defer srv.Close()

	store := newMemUsers(model.User{
		Email: "a@b.c", Tier: model.TierFree,
		UsedCount: 5, LastResetDate: "2020-01-01", // maxed out long ago
	})
	h := newCommentHandler(store, llm.New("k", llm.WithBaseURL(srv.URL)), nil)

	c, rec := newTestContext(t, http.MethodPost, "/generate-comment",
		`{"userId":"a@b.c","postContent":"hello"}`)
	require.NoError(t, h.Generate(c))
	require.Equal(t, http.StatusOK, rec.Code)

	u, _ := store.Get(c.Request().Context(), "a@b.c")
	assert.Equal(t, 1, u.UsedCount)
	assert.Equal(t, quota.Day(time.Now()), u.LastResetDate)
}

func TestGenerateNotConfigured(t *testing.T) {
	h := newCommentHandler(nil, nil, nil)
	c, rec := newTestContext(t, http.MethodPost, "/generate-comment",
		`{"userId":"a@b.c","postContent":"hello"}`)
	require.NoError(t, h.Generate(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
