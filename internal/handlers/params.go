package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"baby-bliss/internal/apperr"
	"baby-bliss/internal/database"
	"baby-bliss/internal/validate"

	"github.com/gin-gonic/gin"
)

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, apperr.InvalidInput("invalid id")
	}
	return uint(id), nil
}

// pageFromQuery reads ?page=&limit=, clamping them to the allowed range.
func pageFromQuery(c *gin.Context) (database.Page, error) {
	var p database.Page
	if s := c.Query("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return p, apperr.InvalidInput("page must be a number")
		}
		p.Page = n
	}
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return p, apperr.InvalidInput("limit must be a number")
		}
		p.Limit = n
	}
	return p.Normalize(), nil
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(validate.DateLayout, strings.TrimSpace(s), time.UTC)
}

// parseTimestamp accepts RFC 3339 or a bare date.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return parseDate(s)
}

func today() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dateRange parses optional ?<from>=&<to>= query dates. The upper bound
// is returned exclusive (the day after "to").
func dateRange(c *gin.Context, fromKey, toKey string) (from, to *time.Time, err error) {
	if s := c.Query(fromKey); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return nil, nil, apperr.InvalidInput(fmt.Sprintf("%s must be YYYY-MM-DD", fromKey))
		}
		from = &t
	}
	if s := c.Query(toKey); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return nil, nil, apperr.InvalidInput(fmt.Sprintf("%s must be YYYY-MM-DD", toKey))
		}
		next := t.AddDate(0, 0, 1)
		to = &next
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, nil, apperr.InvalidInput(fmt.Sprintf("%s must not be after %s", fromKey, toKey))
	}
	return from, to, nil
}

// sortClause whitelists ?sort= and ?order= against allowed columns.
func sortClause(c *gin.Context, allowed []string, fallback string) string {
	col := c.Query("sort")
	ok := false
	for _, a := range allowed {
		if a == col {
			ok = true
			break
		}
	}
	if !ok {
		col = fallback
	}
	dir := "DESC"
	if strings.EqualFold(c.Query("order"), "asc") {
		dir = "ASC"
	}
	return col + " " + dir
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
