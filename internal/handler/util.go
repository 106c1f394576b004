package handler

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// parseDate parses the YYYY-MM-DD date strings used throughout the API.
func parseDate(value string) (time.Time, error) {
	d, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return d, nil
}
