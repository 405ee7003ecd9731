package google

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/OzanA78/doviz-hesaplama/internal/engine"
)

// parsePricePoints converts raw sheet values into price points.
// Column A must parse as "YYYY-MM" and column B as a positive price;
// rows that do not (including the header row) are counted as dropped.
// Prices use a decimal comma in the sheet and are normalized here.
func parsePricePoints(values [][]interface{}) (points []engine.PricePoint, dropped int) {
	for _, row := range values {
		if len(row) < 2 {
			dropped++
			continue
		}
		rawDate := strings.TrimSpace(fmt.Sprint(row[0]))
		rawPrice := strings.TrimSpace(fmt.Sprint(row[1]))
		if rawDate == "" || rawPrice == "" {
			dropped++
			continue
		}
		key, err := engine.ParseMonthKey(rawDate)
		if err != nil {
			dropped++
			continue
		}
		price, err := decimal.NewFromString(normalizeDecimal(rawPrice))
		if err != nil || !price.IsPositive() {
			dropped++
			continue
		}
		points = append(points, engine.PricePoint{Date: key, Price: price})
	}
	return points, dropped
}

// normalizeDecimal turns "1.250,75" or "1250,75" into "1250.75".
func normalizeDecimal(s string) string {
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return s
}
