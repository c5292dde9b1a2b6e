package sales

import (
	"strings"

	"cucina-backend/internal/models"

	"github.com/agnivade/levenshtein"
)

// maxNameDistance is how far a normalized POS item name may drift from a dish
// name and still be considered the same dish.
const maxNameDistance = 2

func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// MatchDish maps a POS line item to an internal dish: first by external
// product id, then by fuzzy name match. Returns nil when nothing matches.
func MatchDish(dishes []models.Dish, externalProductID, name string) *models.Dish {
	if externalProductID != "" {
		for i := range dishes {
			if dishes[i].ExternalID != nil && *dishes[i].ExternalID == externalProductID {
				return &dishes[i]
			}
		}
	}

	normalized := normalizeName(name)
	if normalized == "" {
		return nil
	}
	var best *models.Dish
	bestDistance := maxNameDistance + 1
	for i := range dishes {
		d := levenshtein.ComputeDistance(normalized, normalizeName(dishes[i].Name))
		if d < bestDistance {
			bestDistance = d
			best = &dishes[i]
		}
	}
	return best
}
