package validation

import (
	"strings"
	"time"

	"github.com/ndewijer/portfolio-tracker/internal/api/request"
)

func ValidateCreatePortfolio(req request.CreatePortfolioRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.OwnerID) == "" {
		errors["ownerId"] = "ownerId is required"
	} else if len(req.OwnerID) > 100 {
		errors["ownerId"] = "ownerId must be 100 characters or less"
	}

	// Required field
	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	} else if len(req.Name) > 100 {
		errors["name"] = "name must be 100 characters or less"
	}

	// Optional but has constraints
	if len(req.Description) > 500 {
		errors["description"] = "description must be 500 characters or less"
	}

	return fieldErrors(errors)
}

// ValidateAddPosition checks an add-position body. The symbol is validated
// separately by NormalizeSymbol so it can be upper-cased in place.
func ValidateAddPosition(req request.AddPositionRequest) error {
	errors := make(map[string]string)

	if _, err := NormalizeSymbol(req.Symbol); err != nil {
		errors["symbol"] = "symbol must be a valid ticker"
	}

	if req.Shares == nil {
		errors["shares"] = "shares is required"
	} else if !req.Shares.IsPositive() {
		errors["shares"] = "shares must be greater than zero"
	}

	if req.Price == nil {
		errors["price"] = "price is required"
	} else if req.Price.IsNegative() {
		errors["price"] = "price cannot be negative"
	}

	if req.AcquiredAt != "" {
		if acquired, err := time.Parse(DateLayout, req.AcquiredAt); err != nil {
			errors["acquiredAt"] = "acquiredAt must be a date in YYYY-MM-DD format"
		} else if acquired.After(time.Now().UTC()) {
			errors["acquiredAt"] = "acquiredAt cannot be in the future"
		}
	}

	return fieldErrors(errors)
}

// ValidateText requires non-blank analysis input below maxLen bytes.
func ValidateText(req request.TextRequest, maxLen int) error {
	errors := make(map[string]string)
	if strings.TrimSpace(req.Text) == "" {
		errors["text"] = "text is required"
	} else if len(req.Text) > maxLen {
		errors["text"] = "text is too long"
	}
	return fieldErrors(errors)
}
