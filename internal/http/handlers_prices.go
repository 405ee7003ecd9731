package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/OzanA78/doviz-hesaplama/internal/engine"
	"github.com/OzanA78/doviz-hesaplama/internal/provider"
)

// Wire formats mirror the provider contract: prices travel as JSON
// numbers, dates as "YYYY-MM" strings.
type pricePointResponse struct {
	Date  string      `json:"date"`
	Price json.Number `json:"price"`
}

type currentPriceResponse struct {
	Price     json.Number `json:"price"`
	Timestamp string      `json:"timestamp"`
	Error     *string     `json:"error"`
}

func (s *Server) handleHistoricalData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	points, err := s.getHistorical(r.Context())
	if errors.Is(err, provider.ErrNoRows) {
		writeJSONError(w, http.StatusNotFound, "no price rows in the spreadsheet")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Historical data fetch failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "price data unavailable")
		return
	}

	out := make([]pricePointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, pricePointResponse{
			Date:  p.Date.String(),
			Price: json.Number(p.Price.String()),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCurrentPrice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	current, err := s.getCurrent(r.Context())
	if errors.Is(err, provider.ErrNoRows) {
		writeJSONError(w, http.StatusNotFound, "no current price available")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Current price fetch failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "price data unavailable")
		return
	}

	writeJSON(w, http.StatusOK, currentPriceResponse{
		Price:     json.Number(current.Price.String()),
		Timestamp: current.Timestamp.UTC().Format(time.RFC3339),
		Error:     nil,
	})
}

func (s *Server) getHistorical(ctx context.Context) ([]engine.PricePoint, error) {
	if points, found := s.histCache.Get(histCacheKey); found {
		slog.DebugContext(ctx, "Historical data cache hit", "points", len(points))
		return points, nil
	}
	// Small timeout so a stuck upstream does not hang the handler.
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	points, err := s.source.HistoricalPrices(cctx)
	if err != nil {
		return nil, err
	}
	s.histCache.Set(histCacheKey, points)
	return points, nil
}

func (s *Server) getCurrent(ctx context.Context) (engine.CurrentPrice, error) {
	if current, found := s.currentCache.Get(currentCacheKey); found {
		return current, nil
	}
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	current, err := s.source.CurrentPrice(cctx)
	if err != nil {
		return engine.CurrentPrice{}, err
	}
	s.currentCache.Set(currentCacheKey, current)
	return current, nil
}
