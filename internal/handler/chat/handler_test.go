package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/go-chi/chi/v5"

	"github.com/jefree-app/backend/internal/conversation"
	"github.com/jefree-app/backend/internal/middleware"
	"github.com/jefree-app/backend/internal/model/profile"
	"github.com/jefree-app/backend/internal/quota"
	chatService "github.com/jefree-app/backend/internal/service/chat"
)

type stubModel struct {
	reply  string
	tokens int
}

func (m stubModel) message() *schema.Message {
	msg := schema.AssistantMessage(m.reply, nil)
	if m.tokens > 0 {
		msg.ResponseMeta = &schema.ResponseMeta{Usage: &schema.TokenUsage{TotalTokens: m.tokens}}
	}
	return msg
}

func (m stubModel) Generate(context.Context, profile.Preferences, []conversation.Turn, string) (*schema.Message, error) {
	return m.message(), nil
}

func (m stubModel) Stream(context.Context, profile.Preferences, []conversation.Turn, string) (*schema.StreamReader[*schema.Message], error) {
	return schema.StreamReaderFromArray([]*schema.Message{m.message()}), nil
}

func newTestRouter(model chatService.Model, limits quota.Limits, id middleware.Identity) chi.Router {
	store := quota.NewMemoryStore(limits)
	svc := chatService.NewService(model, store, conversation.NewLog(conversation.DefaultCapacity), profile.NewMemoryStore())

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithIdentity(req.Context(), id)))
		})
	})
	New(svc, store).RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleChat(t *testing.T) {
	router := newTestRouter(stubModel{reply: "Here you go", tokens: 30}, quota.DefaultLimits(), middleware.Identity{CallerID: "u1"})

	rec := doJSON(t, router, http.MethodPost, "/chat", `{"message":"plan my week"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var reply chatService.Reply
	if err := json.Unmarshal(rec.Body.Bytes(), &reply); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if reply.Content != "Here you go" || reply.Tokens != 30 {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}

func TestHandleChatEmptyMessage(t *testing.T) {
	router := newTestRouter(stubModel{reply: "ok"}, quota.DefaultLimits(), middleware.Identity{CallerID: "u1"})

	rec := doJSON(t, router, http.MethodPost, "/chat", `{"message":"  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleChatRateLimited(t *testing.T) {
	limits := quota.Limits{RequestsPerWindow: 1, Window: time.Hour, FreeExportsPerDay: 3}
	router := newTestRouter(stubModel{reply: "ok"}, limits, middleware.Identity{CallerID: "u1"})

	if rec := doJSON(t, router, http.MethodPost, "/chat", `{"message":"one"}`); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}
	rec := doJSON(t, router, http.MethodPost, "/chat", `{"message":"two"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
}

func TestHandleMenuPlanPremiumGate(t *testing.T) {
	router := newTestRouter(stubModel{reply: "menu"}, quota.DefaultLimits(), middleware.Identity{CallerID: "u1", Premium: false})

	rec := doJSON(t, router, http.MethodPost, "/menu-plan", `{"preferences":{"menuDays":7}}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403, body = %s", rec.Code, rec.Body.String())
	}

	premium := newTestRouter(stubModel{reply: "menu"}, quota.DefaultLimits(), middleware.Identity{CallerID: "u2", Premium: true})
	rec = doJSON(t, premium, http.MethodPost, "/menu-plan", `{"preferences":{"menuDays":7}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("premium status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestHandleShoppingListRequiresMenu(t *testing.T) {
	router := newTestRouter(stubModel{reply: "list"}, quota.DefaultLimits(), middleware.Identity{CallerID: "u1"})

	rec := doJSON(t, router, http.MethodPost, "/shopping-list", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/shopping-list", `{"menuPlan":"Monday: lentils"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestHandleUsage(t *testing.T) {
	router := newTestRouter(stubModel{reply: "ok", tokens: 25}, quota.DefaultLimits(), middleware.Identity{CallerID: "u1"})

	if rec := doJSON(t, router, http.MethodPost, "/chat", `{"message":"hello"}`); rec.Code != http.StatusOK {
		t.Fatalf("chat status = %d", rec.Code)
	}

	rec := doJSON(t, router, http.MethodGet, "/usage", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("usage status = %d", rec.Code)
	}
	var usage quota.Usage
	if err := json.Unmarshal(rec.Body.Bytes(), &usage); err != nil {
		t.Fatalf("decode usage: %v", err)
	}
	if usage.Total != 25 || usage.Daily != 25 {
		t.Fatalf("usage = %+v, want total=25 daily=25", usage)
	}
}

func TestHandleChatWithoutService(t *testing.T) {
	store := quota.NewMemoryStore(quota.DefaultLimits())
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithIdentity(req.Context(), middleware.Identity{CallerID: "u1"})))
		})
	})
	New(nil, store).RegisterRoutes(r)

	rec := doJSON(t, r, http.MethodPost, "/chat", `{"message":"hello"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}

	// Usage stays readable even when the assistant is down.
	rec = doJSON(t, r, http.MethodGet, "/usage", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("usage status = %d, want 200", rec.Code)
	}
}
