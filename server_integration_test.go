package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func setupTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "server_test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	log := zap.NewNop().Sugar()
	autoMigrate(db, log)
	seedDB(db, log)
	r := gin.New()
	s := newServer(db, log, []byte("test-secret"))
	setupRoutes(r, s)
	return r
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewBuffer(b)
}

func TestBillingFlow(t *testing.T) {
	r := setupTestServer(t)

	// 1. Register and login
	resp := performRequest(r, http.MethodPost, "/sign-up",
		jsonBody(t, map[string]string{"username": "user1", "password": "pass123"}), "")
	if resp.Code != http.StatusOK {
		t.Fatalf("sign-up failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodPost, "/sign-in",
		jsonBody(t, map[string]string{"username": "user1", "password": "pass123"}), "")
	if resp.Code != http.StatusOK {
		t.Fatalf("sign-in failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	token, _ := decodeBody(t, resp)["token"].(string)
	if token == "" {
		t.Fatalf("empty token in sign-in response")
	}

	// 2. Create a billing
	create := map[string]any{
		"title": "Mr", "customer_name": "Laxman", "location": "Pune",
		"billing_date": "2024-03-15", "tax": 10, "packing": 5,
		"items": []map[string]any{
			{"description": "Cement", "qty": 10, "rate": 5, "unit": "bag"},
		},
	}
	resp = performRequest(r, http.MethodPost, "/create-billing", jsonBody(t, create), token)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create-billing failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	idF, _ := decodeBody(t, resp)["id"].(float64)
	if idF == 0 {
		t.Fatalf("create-billing returned no id")
	}
	id := int(idF)

	// 3. List bills
	resp = performRequest(r, http.MethodGet, "/get-bills", nil, token)
	if resp.Code != http.StatusOK {
		t.Fatalf("get-bills failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	bills, _ := decodeBody(t, resp)["bills"].([]any)
	if len(bills) != 1 {
		t.Fatalf("expected 1 bill, got %d", len(bills))
	}

	// 4. Fetch single bill and check computed totals
	resp = performRequest(r, http.MethodGet, "/get-bill/"+strconv.Itoa(id), nil, token)
	if resp.Code != http.StatusOK {
		t.Fatalf("get-bill failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	bill := decodeBody(t, resp)
	detail := bill["billing_detail"].(map[string]any)
	if detail["grand_total"].(float64) != 65 {
		t.Fatalf("expected grand_total 65, got %v", detail["grand_total"])
	}
	items := bill["billings"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(items))
	}
	itemID := int(items[0].(map[string]any)["id"].(float64))

	// 5. PDF rendering
	resp = performRequest(r, http.MethodGet, "/get-bill/"+strconv.Itoa(id)+"/pdf", nil, token)
	if resp.Code != http.StatusOK {
		t.Fatalf("get-bill pdf failed status=%d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected application/pdf, got %q", ct)
	}

	// 6. Search by customer name
	resp = performRequest(r, http.MethodPost, "/search-bill",
		jsonBody(t, map[string]string{"customer_name": "Laxman"}), token)
	if resp.Code != http.StatusOK {
		t.Fatalf("search-bill failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	search := decodeBody(t, resp)
	if search["totalGrandTotal"].(float64) != 65 {
		t.Fatalf("expected totalGrandTotal 65, got %v", search["totalGrandTotal"])
	}

	// 7. Amend: drop the old item, add a new one
	amend := map[string]any{
		"title": "Mr", "customer_name": "Laxman", "location": "Pune",
		"billing_date": "2024-04-01", "tax": 0, "packing": 0,
		"items": []map[string]any{
			{"description": "Steel", "qty": 2, "rate": 50, "unit": "rod"},
		},
		"items_to_delete": []int{itemID},
	}
	resp = performRequest(r, http.MethodPut, "/update-bill/"+strconv.Itoa(id), jsonBody(t, amend), token)
	if resp.Code != http.StatusOK {
		t.Fatalf("update-bill failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodGet, "/get-bill/"+strconv.Itoa(id), nil, token)
	bill = decodeBody(t, resp)
	items = bill["billings"].([]any)
	if len(items) != 1 || items[0].(map[string]any)["description"] != "Steel" {
		t.Fatalf("expected only the new Steel item, got %v", items)
	}
	detail = bill["billing_detail"].(map[string]any)
	if detail["grand_total"].(float64) != 100 {
		t.Fatalf("expected recomputed grand_total 100, got %v", detail["grand_total"])
	}
}

func TestBillingErrorResponses(t *testing.T) {
	r := setupTestServer(t)

	resp := performRequest(r, http.MethodPost, "/sign-up",
		jsonBody(t, map[string]string{"username": "user2", "password": "pass123"}), "")
	if resp.Code != http.StatusOK {
		t.Fatalf("sign-up failed status=%d", resp.Code)
	}
	resp = performRequest(r, http.MethodPost, "/sign-in",
		jsonBody(t, map[string]string{"username": "user2", "password": "pass123"}), "")
	token, _ := decodeBody(t, resp)["token"].(string)

	// unauthorized access
	resp = performRequest(r, http.MethodGet, "/get-bills", nil, "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}

	// unknown billing detail
	resp = performRequest(r, http.MethodGet, "/get-bill/9999", nil, token)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown bill, got %d", resp.Code)
	}

	// validation failure before any write
	resp = performRequest(r, http.MethodPost, "/create-billing",
		jsonBody(t, map[string]any{"title": "Mr"}), token)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid payload, got %d", resp.Code)
	}

	// search with no match
	resp = performRequest(r, http.MethodPost, "/search-bill",
		jsonBody(t, map[string]string{"customer_name": "Nobody"}), token)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for empty search, got %d", resp.Code)
	}
}
