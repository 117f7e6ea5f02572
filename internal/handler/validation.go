package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// fieldLabels maps struct field names to the JSON names callers actually sent.
var fieldLabels = map[string]string{
	"AccountID":        "account_id",
	"AccountKind":      "account_kind",
	"Amount":           "amount",
	"Description":      "description",
	"ReferenceID":      "reference_id",
	"WalletID":         "wallet_id",
	"Direction":        "direction",
	"Category":         "category",
	"Status":           "status",
	"MovieID":          "movie_id",
	"TheaterID":        "theater_id",
	"TheaterIDs":       "theater_ids",
	"Code":             "code",
	"Name":             "name",
	"DiscountPercent":  "discount_percent",
	"MinAmount":        "min_amount",
	"ExpiresAt":        "expires_at",
	"MaxUsageCount":    "max_usage_count",
	"CreatedBy":        "created_by",
	"TotalAmount":      "total_amount",
	"OriginalAmount":   "original_amount",
	"RefundPercentage": "refund_percentage",
	"FromAccountID":    "from_account_id",
	"FromAccountKind":  "from_account_kind",
	"ToAccountID":      "to_account_id",
	"ToAccountKind":    "to_account_kind",
}

// formatValidationError converts the first validator failure into a specific,
// caller-facing message.
func formatValidationError(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return "invalid request"
	}

	for _, fe := range ve {
		field := fieldLabels[fe.Field()]
		if field == "" {
			field = strings.ToLower(fe.Field())
		}

		switch fe.Tag() {
		case "required":
			return "invalid request: " + field + " is required"
		case "notblank":
			return "invalid request: " + field + " cannot be whitespace only"
		case "max":
			return "invalid request: " + field + " exceeds maximum length of " + fe.Param()
		case "min":
			return "invalid request: " + field + " must have at least " + fe.Param() + " item(s)"
		case "oneof":
			return "invalid request: " + field + " must be one of " + strings.Join(strings.Fields(fe.Param()), ", ")
		case "gt":
			return "invalid request: " + field + " must be greater than " + fe.Param()
		case "gte":
			return "invalid request: " + field + " must be at least " + fe.Param()
		case "lte":
			return "invalid request: " + field + " must be at most " + fe.Param()
		case "uuid4":
			return "invalid request: " + field + " must be a valid UUID"
		default:
			return "invalid request: " + field + " is invalid"
		}
	}
	return "invalid request"
}
