package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"itemfinder/internal"
	"itemfinder/internal/auth"
	"itemfinder/internal/session"
)

// Server exposes the session over a small JSON API. Presentation proper
// (views, dialogs, styling) lives elsewhere; this is the dispatch surface.
type Server struct {
	sess *session.Session
	auth *auth.Service
	log  zerolog.Logger
}

func New(sess *session.Session, authSvc *auth.Service, log zerolog.Logger) *Server {
	return &Server{sess: sess, auth: authSvc, log: log}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/inventory", s.handleInventory)
	mux.HandleFunc("POST /api/inventory/reload", s.handleReload)

	mux.HandleFunc("POST /api/cart/items", s.handleCartAdd)
	mux.HandleFunc("PATCH /api/cart/items/{itemNo}", s.handleCartQty)
	mux.HandleFunc("DELETE /api/cart/items/{itemNo}", s.handleCartRemove)
	mux.HandleFunc("POST /api/cart/discount", s.handleDiscount)

	mux.HandleFunc("GET /api/quote", s.handleQuote)
	mux.HandleFunc("POST /api/quote/export", s.handleExport)

	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)
	mux.HandleFunc("GET /api/config", s.handleConfigGet)
	mux.HandleFunc("PUT /api/config", s.handleConfigPut)

	return s.withLog(mux)
}

func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info().Str("addr", addr).Msg("http server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) withLog(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h.ServeHTTP(w, r)
		s.log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Dur("took", time.Since(start)).Msg("request")
	})
}

func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	items := s.sess.Search(q)
	writeJSON(w, http.StatusOK, map[string]any{
		"items":   items,
		"count":   len(items),
		"loading": s.sess.Loading(),
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	count, err := s.sess.Reload(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": count})
}

func (s *Server) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ItemNo string `json:"itemNo"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if !s.sess.AddItem(body.ItemNo) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "item not in inventory"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lines": s.sess.CartLines()})
}

func (s *Server) handleCartQty(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Qty int `json:"qty"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	s.sess.UpdateQuantity(r.PathValue("itemNo"), body.Qty)
	writeJSON(w, http.StatusOK, map[string]any{"lines": s.sess.CartLines()})
}

func (s *Server) handleCartRemove(w http.ResponseWriter, r *http.Request) {
	s.sess.RemoveItem(r.PathValue("itemNo"))
	writeJSON(w, http.StatusOK, map[string]any{"lines": s.sess.CartLines()})
}

func (s *Server) handleDiscount(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Value string `json:"value"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	s.sess.SetDiscountPercent(body.Value)
	writeJSON(w, http.StatusOK, map[string]any{"totals": s.sess.Totals(), "discountRaw": s.sess.DiscountRaw()})
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"lines":       s.sess.CartLines(),
		"totals":      s.sess.Totals(),
		"discountRaw": s.sess.DiscountRaw(),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	path, err := s.sess.ExportQuotation()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"path": path})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID   string `json:"id"`
		Pass string `json:"pass"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if err := s.auth.Login(body.ID, body.Pass); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"authenticated": true})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
}

func (s *Server) handleConfigGet(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.sess.Config()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"config": cfg, "authenticated": s.auth.Valid()})
}

func (s *Server) handleConfigPut(w http.ResponseWriter, r *http.Request) {
	if !s.auth.Valid() {
		writeJSON(w, http.StatusForbidden, map[string]any{"error": "administrator login required"})
		return
	}
	var body struct {
		SourceURL string `json:"sourceUrl"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if err := s.sess.SetSourceURL(body.SourceURL); err != nil {
		s.writeError(w, err)
		return
	}
	cfg, _ := s.sess.Config()
	writeJSON(w, http.StatusOK, map[string]any{"config": cfg})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var fetchErr *internal.FetchError

	switch {
	case errors.Is(err, internal.ErrInvalidSourceURL), errors.Is(err, internal.ErrConfigValidation):
		status = http.StatusBadRequest
	case errors.Is(err, internal.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, internal.ErrReloadInProgress):
		status = http.StatusConflict
	case errors.As(err, &fetchErr):
		status = http.StatusBadGateway
	}

	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return false
	}
	return true
}
