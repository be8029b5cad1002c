package utils

import (
	"fmt"
	"math"
	"strings"

	"nexusretail/models"
)

// CreatePagination builds the pagination envelope used by list endpoints.
// Out-of-range inputs fall back to page 1 / page size 10.
func CreatePagination(totalItems, page, pageSize int) models.Pagination {
	if pageSize <= 0 {
		pageSize = 10
	}
	if page <= 0 {
		page = 1
	}

	totalPages := int(math.Ceil(float64(totalItems) / float64(pageSize)))

	return models.Pagination{
		TotalItems:  totalItems,
		CurrentPage: page,
		PageSize:    pageSize,
		TotalPages:  totalPages,
	}
}

// FormatMoney renders an amount as "R 12,345.67" for assistant replies.
func FormatMoney(amount float64) string {
	neg := amount < 0
	cents := int64(math.Round(math.Abs(amount) * 100))
	whole := cents / 100
	frac := cents % 100

	digits := fmt.Sprintf("%d", whole)
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("R %s%s.%02d", sign, strings.Join(groups, ","), frac)
}
