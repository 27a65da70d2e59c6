package httpadapter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"contractbot/internal/adapters/sqlite"
	"contractbot/internal/domain"
	"contractbot/internal/services/buyback"
	"contractbot/internal/services/review"
)

const (
	secret  = "test-secret"
	adminID = 9001
	userExt = 4242
)

type env struct {
	srv    *httptest.Server
	ledger *sqlite.DB
	auth   *Authenticator
	pct    *buyback.Percent
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ledger, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "ledger.sqlite"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ledger.Close() })

	auth := NewAuthenticator(secret, time.Hour, []int64{adminID})
	pct := buyback.New(80)
	s := New(ledger, review.NewService(ledger, zap.NewNop()), pct, auth, zap.NewNop())
	srv := httptest.NewServer(s.Routes())
	t.Cleanup(srv.Close)
	return &env{srv: srv, ledger: ledger, auth: auth, pct: pct}
}

func (e *env) token(t *testing.T, ext int64, admin bool) string {
	t.Helper()
	tok, _, err := e.auth.IssueToken(ext, admin)
	require.NoError(t, err)
	return tok
}

func (e *env) do(t *testing.T, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out := map[string]any{}
	if resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func TestHealthzIsPublic(t *testing.T) {
	e := newEnv(t)
	code, body := e.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	req, err := http.NewRequest(http.MethodGet, e.srv.URL+"/metrics", nil)
	require.NoError(t, err)
	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	e := newEnv(t)

	code, _ := e.do(t, http.MethodGet, "/api/balance", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	forged, _, err := NewAuthenticator("other", time.Hour, nil).IssueToken(userExt, true)
	require.NoError(t, err)
	code, _ = e.do(t, http.MethodGet, "/api/balance", forged, "")
	assert.Equal(t, http.StatusUnauthorized, code)

	expired := NewAuthenticator(secret, time.Hour, nil)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.IssueToken(userExt, false)
	require.NoError(t, err)
	code, _ = e.do(t, http.MethodGet, "/api/balance", old, "")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRegisterBackfillsAndBalance(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.ledger.RecordContract(ctx, domain.ContractDraft{
		System: "Sol", PlayerName: "Vex", BuybackPercent: 50,
		Items: []domain.ContractItem{{Name: "Ore", Quantity: 1, EstimatedValue: 200}},
	})
	require.NoError(t, err)

	tok := e.token(t, userExt, false)
	code, body := e.do(t, http.MethodPost, "/api/register", tok, `{"nickname":"Vex","displayName":"vex#1"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Vex", body["nickname"])

	code, body = e.do(t, http.MethodGet, "/api/balance", tok, "")
	require.Equal(t, http.StatusOK, code)
	assert.InDelta(t, 100, body["balance"], 1e-9)

	code, _ = e.do(t, http.MethodPost, "/api/register", tok, `{"nickname":"  "}`)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = e.do(t, http.MethodPost, "/api/register", tok, `{"nick":"Vex"}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestBuybackAdminGate(t *testing.T) {
	e := newEnv(t)
	user := e.token(t, userExt, false)

	code, body := e.do(t, http.MethodGet, "/api/buyback", user, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 80.0, body["percent"])

	code, _ = e.do(t, http.MethodPut, "/api/admin/buyback", user, `{"percent":90}`)
	assert.Equal(t, http.StatusForbidden, code)

	// admin by configured id, without the claim
	admin := e.token(t, adminID, false)
	code, _ = e.do(t, http.MethodPut, "/api/admin/buyback", admin, `{"percent":75}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 75.0, e.pct.Get())

	code, _ = e.do(t, http.MethodPut, "/api/admin/buyback", admin, `{"percent":-5}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, 75.0, e.pct.Get())

	// admin by claim
	code, _ = e.do(t, http.MethodPut, "/api/admin/buyback", e.token(t, 1, true), `{"percent":60}`)
	assert.Equal(t, http.StatusOK, code)
}

func TestPayoutReducesBalance(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	uid, err := e.ledger.GetOrCreateUser(ctx, userExt, "vex")
	require.NoError(t, err)
	_, err = e.ledger.RecordContract(ctx, domain.ContractDraft{
		System: "Sol", PlayerName: "Vex", BuybackPercent: 100, UserID: &uid,
		Items: []domain.ContractItem{{Name: "Ore", Quantity: 1, EstimatedValue: 150}},
	})
	require.NoError(t, err)

	admin := e.token(t, adminID, false)
	code, body := e.do(t, http.MethodPost, "/api/admin/payouts", admin, `{"externalUserId":4242,"amount":30,"reason":"weekly"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.InDelta(t, 120, body["balance"], 1e-9)

	code, _ = e.do(t, http.MethodPost, "/api/admin/payouts", admin, `{"externalUserId":4242,"amount":0}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestContractReviewFlow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	rec, err := e.ledger.RecordContract(ctx, domain.ContractDraft{
		System: "Sol", PlayerName: "Vex", BuybackPercent: 100,
		Items: []domain.ContractItem{{Name: "Ore", Quantity: 2, EstimatedValue: 20}},
	})
	require.NoError(t, err)
	for region, text := range map[string]string{"system": "Sol", "player_name": "Vcx"} {
		require.NoError(t, e.ledger.StoreOcrSample(ctx, domain.OcrSample{
			ContractID: rec.ID, Region: region, Box: domain.Box{0, 0, 10, 10}, RecognizedText: text,
		}))
	}
	admin := e.token(t, adminID, false)

	code, _ := e.do(t, http.MethodPut, "/api/admin/contracts/1/samples/player_name", admin, `{"text":"Vex"}`)
	require.Equal(t, http.StatusOK, code)

	code, body := e.do(t, http.MethodPost, "/api/admin/contracts/1/confirm", admin, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"system": "Sol", "player_name": "Vex"}, body["texts"])

	code, body = e.do(t, http.MethodGet, "/api/admin/contracts/1", admin, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Vex", body["playerName"])
	assert.Len(t, body["items"], 1)
	samples := body["samples"].([]any)
	require.Len(t, samples, 2)
	assert.Equal(t, "corrected", samples[0].(map[string]any)["status"])
	assert.Equal(t, "confirmed", samples[1].(map[string]any)["status"])
	assert.Equal(t, "9001", samples[1].(map[string]any)["reviewedBy"])

	words, err := e.ledger.ConsumeTrainingWords(ctx)
	require.NoError(t, err)
	assert.Contains(t, words, "Vex")
}

func TestContractErrors(t *testing.T) {
	e := newEnv(t)
	admin := e.token(t, adminID, false)

	code, body := e.do(t, http.MethodGet, "/api/admin/contracts/77", admin, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, body["error"], "not found")
	code, _ = e.do(t, http.MethodGet, "/api/admin/contracts/abc", admin, "")
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = e.do(t, http.MethodGet, "/api/admin/contracts/0", admin, "")
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = e.do(t, http.MethodPost, "/api/admin/contracts/77/confirm", admin, "")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = e.do(t, http.MethodPut, "/api/admin/contracts/77/samples/system", admin, `{"text":"Sol"}`)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	e := newEnv(t)
	_, err := e.ledger.RecordContract(context.Background(), domain.ContractDraft{
		System: "Sol", PlayerName: "Vex", BuybackPercent: 100,
		Items: []domain.ContractItem{{Name: "Ore", Quantity: 1, EstimatedValue: 1}},
	})
	require.NoError(t, err)
	user := e.token(t, userExt, false)

	tests := []struct {
		method, path, body string
	}{
		{http.MethodGet, "/api/admin/contracts/1", ""},
		{http.MethodPost, "/api/admin/contracts/1/confirm", ""},
		{http.MethodPut, "/api/admin/contracts/1/samples/system", `{"text":"Sol"}`},
		{http.MethodPost, "/api/admin/payouts", `{"externalUserId":4242,"amount":1}`},
		{http.MethodPut, "/api/admin/buyback", `{"percent":10}`},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			code, _ := e.do(t, tt.method, tt.path, "", tt.body)
			assert.Equal(t, http.StatusUnauthorized, code)
			code, body := e.do(t, tt.method, tt.path, user, tt.body)
			assert.Equal(t, http.StatusForbidden, code)
			assert.Contains(t, body["error"], "admin only")
		})
	}

	code, _ := e.do(t, http.MethodGet, "/api/contracts/1", e.token(t, adminID, false), "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, 80.0, e.pct.Get())
}

func TestInventory(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := e.ledger.RecordContract(ctx, domain.ContractDraft{
			System: "Alpha Centauri", PlayerName: "Vex", BuybackPercent: 100,
			Items: []domain.ContractItem{{Name: "Ore", Quantity: 2.5, EstimatedValue: 20}},
		})
		require.NoError(t, err)
	}
	code, body := e.do(t, http.MethodGet, "/api/inventory/Alpha%20Centauri", e.token(t, userExt, false), "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Alpha Centauri", body["system"])
	assert.Equal(t, []any{map[string]any{"itemName": "Ore", "quantity": 5.0}}, body["items"])
}
