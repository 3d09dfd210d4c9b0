package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Amount is a numeric field that upstream sends either as a string
// ("78,500") or as a bare JSON number. null and absent fields are "".
type Amount string

// UnmarshalJSON accepts strings, numbers and null.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		*a = Amount(n.String())
	}
	return nil
}

// PriceDirection is the up/down marker attached to the daily change.
type PriceDirection struct {
	Code string `json:"code"` // "1" upper limit, "2" rising, "3" flat, "4" lower limit, "5" falling
	Text string `json:"text"`
	Name string `json:"name"` // UPPER_LIMIT, RISING, EVEN, LOWER_LIMIT, FALLING
}

// Falling reports whether the marker denotes a drop from the previous close.
func (d *PriceDirection) Falling() bool {
	if d == nil {
		return false
	}
	switch d.Code {
	case "4", "5":
		return true
	}
	switch d.Name {
	case "LOWER_LIMIT", "FALLING":
		return true
	}
	return false
}

// APIDailyPrice is one row of GET /{code}/price.
type APIDailyPrice struct {
	LocalTradedAt               string          `json:"localTradedAt"`
	ClosePrice                  Amount          `json:"closePrice"`
	CompareToPreviousClosePrice Amount          `json:"compareToPreviousClosePrice"`
	CompareToPreviousPrice      *PriceDirection `json:"compareToPreviousPrice"`
	FluctuationsRatio           Amount          `json:"fluctuationsRatio"`
	OpenPrice                   Amount          `json:"openPrice"`
	HighPrice                   Amount          `json:"highPrice"`
	LowPrice                    Amount          `json:"lowPrice"`
	AccumulatedTradingVolume    Amount          `json:"accumulatedTradingVolume"`
}

// CatalogEntry is one listed company from the catalog download.
type CatalogEntry struct {
	Code string
	Name string
}
