package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"itemfinder/internal/auth"
	"itemfinder/internal/config"
	"itemfinder/internal/session"
	"itemfinder/internal/storage"
)

const sampleCSV = "Item No,Description,MRP\n" +
	"A-1,Hydraulic Hose,1000\n" +
	"A-2,Bucket Pin,500\n"

func testServer(t *testing.T) (*httptest.Server, config.Config) {
	t.Helper()

	sheetSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleCSV))
	}))
	t.Cleanup(sheetSrv.Close)

	cfg, _ := config.Load()
	cfg.DBPath = filepath.Join(t.TempDir(), "app.db")
	cfg.OutputDir = t.TempDir()
	cfg.AdminID = "admin"
	cfg.AdminPass = "secret"

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	sess := session.New(db, cfg, sheetSrv.URL+"/data.csv", zerolog.Nop())
	authSvc := auth.NewService(db, cfg)

	api := httptest.NewServer(New(sess, authSvc, zerolog.Nop()).Handler())
	t.Cleanup(api.Close)
	return api, cfg
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestInventoryAndCartEndpoints(t *testing.T) {
	api, _ := testServer(t)

	resp, body := doJSON(t, http.MethodPost, api.URL+"/api/inventory/reload", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reload status=%d body=%v", resp.StatusCode, body)
	}
	if body["items"].(float64) != 2 {
		t.Fatalf("items=%v", body["items"])
	}

	resp, body = doJSON(t, http.MethodGet, api.URL+"/api/inventory?q=bucket", "")
	if resp.StatusCode != http.StatusOK || body["count"].(float64) != 1 {
		t.Fatalf("search status=%d body=%v", resp.StatusCode, body)
	}

	resp, _ = doJSON(t, http.MethodPost, api.URL+"/api/cart/items", `{"itemNo":"ghost"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown item status=%d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPost, api.URL+"/api/cart/items", `{"itemNo":"A-1"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add status=%d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodPatch, api.URL+"/api/cart/items/A-1", `{"qty":3}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("qty status=%d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodPost, api.URL+"/api/cart/discount", `{"value":"10"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("discount status=%d", resp.StatusCode)
	}

	_, body = doJSON(t, http.MethodGet, api.URL+"/api/quote", "")
	totals := body["totals"].(map[string]any)
	if totals["subtotal"].(string) != "3000" || totals["finalTotal"].(string) != "2700" {
		t.Fatalf("totals=%v", totals)
	}
}

func TestAuthAndConfigEndpoints(t *testing.T) {
	api, _ := testServer(t)

	// Config changes require an authenticated session.
	resp, _ := doJSON(t, http.MethodPut, api.URL+"/api/config", `{"sourceUrl":"https://docs.google.com/spreadsheets/d/X/edit"}`)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("unauthenticated put status=%d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPost, api.URL+"/api/login", `{"id":"admin","pass":"nope"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login status=%d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPost, api.URL+"/api/login", `{"id":"admin","pass":"secret"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status=%d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPut, api.URL+"/api/config", `{"sourceUrl":"https://example.com/whatever"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid url status=%d", resp.StatusCode)
	}

	resp, body := doJSON(t, http.MethodPut, api.URL+"/api/config", `{"sourceUrl":"https://docs.google.com/spreadsheets/d/X/edit"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put status=%d body=%v", resp.StatusCode, body)
	}

	_, body = doJSON(t, http.MethodGet, api.URL+"/api/config", "")
	cfg := body["config"].(map[string]any)
	if cfg["sourceUrl"].(string) != "https://docs.google.com/spreadsheets/d/X/edit" {
		t.Fatalf("config=%v", cfg)
	}
}
