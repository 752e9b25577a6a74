package itop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var ticketClasses = []string{"Incident", "UserRequest"}

const ticketFields = "id,ref,title,status,priority,urgency,impact,service_name,servicesubcategory_name," +
	"agent_id_friendlyname,team_id_friendlyname,start_date,assignment_date,resolution_date"

// FetchTickets fetches assigned, resolved and closed tickets of every class.
// A class that fails is logged and skipped; the call fails only when all do.
func (c *Client) FetchTickets(ctx context.Context, loc *time.Location) ([]Ticket, error) {
	var (
		allTickets []Ticket
		errs       []error
	)
	for _, class := range ticketClasses {
		params := map[string]interface{}{
			"class":         class,
			"key":           "SELECT " + class + " WHERE status IN ('assigned','resolved','closed')",
			"output_fields": ticketFields,
		}
		resp, err := c.Post(ctx, "core/get", params)
		if err != nil {
			c.log.Warn("error from iTop API", zap.String("class", class), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", class, err))
			continue
		}
		c.log.Debug("raw iTop API response", zap.String("class", class), zap.ByteString("body", resp))
		tickets, err := ParseTickets(resp, class, loc)
		if err != nil {
			c.log.Warn("unable to parse iTop tickets", zap.String("class", class), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", class, err))
			continue
		}
		c.log.Info("parsed tickets from iTop", zap.String("class", class), zap.Int("count", len(tickets)))
		allTickets = append(allTickets, tickets...)
	}
	if len(errs) == len(ticketClasses) {
		return nil, errors.Join(errs...)
	}
	return allTickets, nil
}
