package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rickgao/pricesync/internal/model"
	"github.com/rickgao/pricesync/internal/store"
)

// priceJSON is one day of /price output. The date is the enclosing key.
type priceJSON struct {
	Code   string `json:"code"`
	Open   int64  `json:"open"`
	High   int64  `json:"high"`
	Low    int64  `json:"low"`
	Close  int64  `json:"close"`
	Diff   int64  `json:"diff"`
	Volume int64  `json:"volume"`
}

// getPrices handles GET /price?company=&start_date=&end_date=
func (s *Server) getPrices(c *gin.Context) {
	company := c.Query("company")
	if company == "" {
		sendError(c, http.StatusBadRequest, "company is required")
		return
	}

	r, err := parseRange(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()

	in, err := s.store.ResolveInstrument(ctx, company)
	if errors.Is(err, store.ErrUnknownInstrument) {
		sendError(c, http.StatusNotFound, fmt.Sprintf("unknown company %q", company))
		return
	}
	if err != nil {
		s.logger.Error("failed to resolve instrument", "company", company, "err", err)
		sendError(c, http.StatusInternalServerError, "failed to read prices")
		return
	}

	prices, err := s.store.DailyPrices(ctx, in.Code, r)
	if err != nil {
		s.logger.Error("failed to read prices", "code", in.Code, "err", err)
		sendError(c, http.StatusInternalServerError, "failed to read prices")
		return
	}

	out := make(map[string]priceJSON, len(prices))
	for _, p := range prices {
		out[model.FormatDate(p.Date)] = priceJSON{
			Code:   p.Code,
			Open:   p.Open,
			High:   p.High,
			Low:    p.Low,
			Close:  p.Close,
			Diff:   p.Diff,
			Volume: p.Volume,
		}
	}
	c.JSON(http.StatusOK, out)
}

// parseRange builds an inclusive range. Empty bounds are unbounded.
func parseRange(start, end string) (model.DateRange, error) {
	var r model.DateRange

	if start != "" {
		d, err := model.ParseDate(start)
		if err != nil {
			return r, fmt.Errorf("invalid start_date %q", start)
		}
		r.Start = &d
	}
	if end != "" {
		d, err := model.ParseDate(end)
		if err != nil {
			return r, fmt.Errorf("invalid end_date %q", end)
		}
		r.End = &d
	}
	if r.Start != nil && r.End != nil && r.Start.After(*r.End) {
		return r, fmt.Errorf("start_date %s is after end_date %s", start, end)
	}
	return r, nil
}

type instrumentJSON struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	LastUpdate string `json:"last_update"`
}

// getInstruments handles GET /instruments.
func (s *Server) getInstruments(c *gin.Context) {
	if s.catalog == nil {
		sendError(c, http.StatusServiceUnavailable, "catalog not loaded")
		return
	}

	instruments := s.catalog.Instruments()
	out := make([]instrumentJSON, len(instruments))
	for i, in := range instruments {
		out[i] = instrumentJSON{
			Code:       in.Code,
			Name:       in.Name,
			LastUpdate: model.FormatDate(in.LastCatalogUpdate),
		}
	}

	resp := gin.H{
		"count":       len(out),
		"instruments": out,
	}
	if last := s.catalog.LastRefresh(); !last.IsZero() {
		resp["last_refresh"] = last
	}
	c.JSON(http.StatusOK, resp)
}

// getHealth handles GET /health.
func (s *Server) getHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := "healthy"
	code := http.StatusOK
	components := gin.H{}

	if err := s.store.Ping(ctx); err != nil {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
		components["store"] = gin.H{
			"status": "disconnected",
			"error":  err.Error(),
		}
	} else {
		components["store"] = "connected"
	}

	if s.catalog != nil {
		n := len(s.catalog.Instruments())
		components["catalog"] = gin.H{"instruments": n}
		if n == 0 && status == "healthy" {
			status = "degraded"
		}
	}

	if s.status != nil {
		components["scheduler"] = s.status.Status()
	}

	c.JSON(code, gin.H{
		"status":     status,
		"components": components,
	})
}
