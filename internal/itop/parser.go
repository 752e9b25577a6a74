package itop

import (
	"time"

	"github.com/goccy/go-json"

	"bizhours-exporter/internal/utils"
)

type TicketResponse struct {
	Objects map[string]struct {
		Fields struct {
			ID                     string `json:"id"`
			Ref                    string `json:"ref"`
			Title                  string `json:"title"`
			Status                 string `json:"status"`
			Priority               string `json:"priority"`
			Urgency                string `json:"urgency"`
			Impact                 string `json:"impact"`
			ServiceName            string `json:"service_name"`
			ServiceSubcategoryName string `json:"servicesubcategory_name"`
			Agent                  string `json:"agent_id_friendlyname"`
			Team                   string `json:"team_id_friendlyname"`
			StartDate              string `json:"start_date"`
			AssignmentDate         string `json:"assignment_date"`
			ResolutionDate         string `json:"resolution_date"`
		} `json:"fields"`
	} `json:"objects"`
}

// ParseTickets decodes a core/get response. Timestamps without a zone are
// read in loc; unparseable ones are left zero.
func ParseTickets(data []byte, class string, loc *time.Location) ([]Ticket, error) {
	var resp TicketResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	tickets := make([]Ticket, 0, len(resp.Objects))
	for _, obj := range resp.Objects {
		fields := obj.Fields
		startDate, _ := utils.ParseDateFlexibleIn(fields.StartDate, loc)
		assignmentDate, _ := utils.ParseDateFlexibleIn(fields.AssignmentDate, loc)
		resolutionDate, _ := utils.ParseDateFlexibleIn(fields.ResolutionDate, loc)

		tickets = append(tickets, Ticket{
			ID:                 fields.ID,
			Ref:                fields.Ref,
			Title:              fields.Title,
			Status:             fields.Status,
			Class:              class,
			Service:            fields.ServiceName,
			ServiceSubcategory: fields.ServiceSubcategoryName,
			StartDate:          startDate,
			AssignmentDate:     assignmentDate,
			ResolutionDate:     resolutionDate,
			Agent:              fields.Agent,
			Team:               fields.Team,
			Priority:           fields.Priority,
			Urgency:            fields.Urgency,
			Impact:             fields.Impact,
		})
	}
	return tickets, nil
}
