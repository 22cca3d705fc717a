package coingecko

import (
	"encoding/json"
	"fmt"
)

// PriceEntry is one coin's row from the simple-price endpoint.
type PriceEntry struct {
	Price     float64
	Change24h float64
}

// parseSimplePrice decodes the keyed document the endpoint returns:
//
//	{"bitcoin": {"usd": 45000.5, "usd_24h_change": -2.13}, ...}
//
// The change key is optional per coin and may be null; both decode to 0.
func parseSimplePrice(body []byte, vsCurrency string) (map[string]PriceEntry, error) {
	var raw map[string]map[string]float64
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse simple price response: %w", err)
	}

	priceKey := vsCurrency
	changeKey := vsCurrency + "_24h_change"

	out := make(map[string]PriceEntry, len(raw))
	for id, fields := range raw {
		price, ok := fields[priceKey]
		if !ok {
			continue
		}
		out[id] = PriceEntry{
			Price:     price,
			Change24h: fields[changeKey],
		}
	}
	return out, nil
}
