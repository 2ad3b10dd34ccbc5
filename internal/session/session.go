package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"itemfinder/internal"
	"itemfinder/internal/config"
	"itemfinder/internal/quote"
	"itemfinder/internal/sheet"
	"itemfinder/internal/storage"
)

// Session owns the mutable state of one running instance: the current
// inventory set, the cart, and the resolved data-source URL. All state is
// mutated through its methods, guarded by a single mutex.
type Session struct {
	mu sync.Mutex

	cfg     config.Config
	db      *storage.DB
	fetcher *sheet.Fetcher
	log     zerolog.Logger

	// overrideURL comes from the startup parameter; it wins over stored
	// config for this session and is never persisted.
	overrideURL string

	inventory  []internal.InventoryItem
	cart       *quote.Cart
	generation int
	loading    bool
}

func New(db *storage.DB, cfg config.Config, overrideURL string, log zerolog.Logger) *Session {
	return &Session{
		cfg:         cfg,
		db:          db,
		fetcher:     sheet.NewFetcher(cfg),
		log:         log,
		overrideURL: strings.TrimSpace(overrideURL),
		cart:        quote.NewCart(),
	}
}

// SourceURL resolves the effective data-source link: the startup override if
// present, otherwise the stored configuration.
func (s *Session) SourceURL() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sourceURLLocked()
}

func (s *Session) sourceURLLocked() (string, bool) {
	if s.overrideURL != "" {
		return s.overrideURL, true
	}
	cfg, err := s.db.GetConfig()
	if err != nil || cfg.SourceURL == nil || strings.TrimSpace(*cfg.SourceURL) == "" {
		return "", false
	}
	return *cfg.SourceURL, true
}

func (s *Session) Config() (internal.AppConfig, error) {
	return s.db.GetConfig()
}

// Loading reports whether a reload is outstanding.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Reload fetches the configured source and replaces the inventory set
// wholesale. Only one reload may be in flight at a time; a result arriving
// after the data source changed underneath it is discarded. On fetch failure
// the previously loaded inventory is left untouched.
func (s *Session) Reload(ctx context.Context) (int, error) {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return 0, internal.ErrReloadInProgress
	}
	url, ok := s.sourceURLLocked()
	if !ok {
		s.mu.Unlock()
		return 0, internal.ErrInvalidSourceURL
	}
	s.generation++
	gen := s.generation
	s.loading = true
	s.mu.Unlock()

	start := time.Now()
	traceID := uuid.NewString()
	items, err := s.fetcher.FetchItems(ctx, url)
	tookMs := float64(time.Since(start).Milliseconds())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if gen != s.generation {
		s.log.Debug().Str("traceId", traceID).Msg("discarding stale reload result")
		return 0, nil
	}

	if err != nil {
		_ = s.db.InsertFetchLog(traceID, url, 0, "error", tookMs)
		s.log.Warn().Str("traceId", traceID).Err(err).Msg("inventory reload failed")
		return 0, err
	}

	s.inventory = items
	_ = s.db.InsertFetchLog(traceID, url, len(items), "ok", tookMs)
	s.log.Info().Str("traceId", traceID).Int("items", len(items)).Float64("tookMs", tookMs).Msg("inventory reloaded")
	return len(items), nil
}

func (s *Session) Inventory() []internal.InventoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]internal.InventoryItem, len(s.inventory))
	copy(out, s.inventory)
	return out
}

// Search filters the inventory: an exact item number match or a description
// containing the term, case-insensitively. An empty term matches nothing.
func (s *Session) Search(term string) []internal.InventoryItem {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return []internal.InventoryItem{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []internal.InventoryItem{}
	for _, item := range s.inventory {
		if strings.ToLower(item.ItemNo) == term || strings.Contains(strings.ToLower(item.Description), term) {
			out = append(out, item)
		}
	}
	return out
}

// AddItem puts the inventory item with the given number into the cart.
// Returns false when the item is not in the current inventory.
func (s *Session) AddItem(itemNo string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.inventory {
		if item.ItemNo == itemNo {
			s.cart.AddItem(item)
			return true
		}
	}
	return false
}

func (s *Session) UpdateQuantity(itemNo string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.UpdateQuantity(itemNo, qty)
}

func (s *Session) RemoveItem(itemNo string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.RemoveItem(itemNo)
}

func (s *Session) SetDiscountPercent(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.SetDiscountPercent(raw)
}

func (s *Session) DiscountRaw() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.DiscountRaw()
}

func (s *Session) CartLines() []internal.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Lines()
}

func (s *Session) Totals() internal.QuoteTotals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Totals()
}

// SetSourceURL validates and persists a new data-source link, then clears
// the cart and invalidates any in-flight reload, since item identifiers from
// the old source may no longer be valid.
func (s *Session) SetSourceURL(url string) error {
	url = strings.TrimSpace(url)
	if !strings.Contains(url, s.cfg.SheetHostMarker) {
		return internal.ErrConfigValidation
	}
	if err := s.db.SaveConfig(url); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Clear()
	s.generation++
	return nil
}

// ExportQuotation writes the current cart and totals to a timestamped XLSX
// file under the configured output directory and returns its path.
func (s *Session) ExportQuotation() (string, error) {
	s.mu.Lock()
	lines := s.cart.Lines()
	totals := s.cart.Totals()
	s.mu.Unlock()

	path := quote.QuotationFilename(s.cfg.OutputDir, time.Now())
	if err := quote.WriteQuotationXLSX(lines, totals, s.cfg.WatermarkText, path); err != nil {
		return "", err
	}
	s.log.Info().Str("path", path).Int("lines", len(lines)).Msg("quotation exported")
	return path, nil
}
