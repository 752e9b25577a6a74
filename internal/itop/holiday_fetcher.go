package itop

import (
	"context"

	"github.com/goccy/go-json"
)

type holidayResp struct {
	Objects map[string]struct {
		Fields struct {
			Date string `json:"date"`
		} `json:"fields"`
	} `json:"objects"`
}

// FetchHolidays returns the dates of every iTop Holiday object. It is
// called once before processing starts.
func (c *Client) FetchHolidays(ctx context.Context) ([]string, error) {
	params := map[string]interface{}{
		"class":         "Holiday",
		"key":           "SELECT Holiday",
		"output_fields": "date",
	}
	body, err := c.Post(ctx, "core/get", params)
	if err != nil {
		return nil, err
	}
	var result holidayResp
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	dates := make([]string, 0, len(result.Objects))
	for _, obj := range result.Objects {
		dates = append(dates, obj.Fields.Date)
	}
	return dates, nil
}
