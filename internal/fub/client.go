package fub

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/slzapp/slz-dashboard/backend/internal/types"
)

// pageSize is the maximum page size the FollowUpBoss API serves.
const pageSize = "100"

// Config holds the credentials and endpoint for the FollowUpBoss API.
type Config struct {
	BaseURL   string
	APIKey    string
	SystemKey string
	System    string
}

// Client talks to the FollowUpBoss REST API. Collections are cursor
// paginated: each page carries a _metadata block with a pointer to the
// next page (a full URL or a token depending on the endpoint), and the
// client follows it until exhausted. No caching, no retries: a call
// either yields the complete collection or fails wholesale.
type Client struct {
	http   *resty.Client
	logger zerolog.Logger
}

// NewClient creates a FollowUpBoss API client.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("X-System", cfg.System).
		SetHeader("X-System-Key", cfg.SystemKey).
		SetBasicAuth(cfg.APIKey, "")

	return &Client{
		http:   c,
		logger: logger.With().Str("component", "fub_client").Logger(),
	}
}

// metadata is the pagination block present on every collection response.
type metadata struct {
	Next     string `json:"next"`
	NextLink string `json:"nextLink"`
	Total    int    `json:"total"`
}

// nextPointer returns whichever next-page pointer the endpoint uses.
func (m metadata) nextPointer() string {
	if m.NextLink != "" {
		return m.NextLink
	}
	return m.Next
}

type userPage struct {
	Users    []userRecord `json:"users"`
	Metadata metadata     `json:"_metadata"`
}

type userRecord struct {
	ID       json.Number `json:"id"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Timezone string      `json:"timezone"`
}

type smartListPage struct {
	SmartLists []smartListRecord `json:"smartlists"`
	Metadata   metadata          `json:"_metadata"`
}

type smartListRecord struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
}

type peoplePage struct {
	People   []personRecord `json:"people"`
	Metadata metadata       `json:"_metadata"`
}

type personRecord struct {
	ID             json.Number `json:"id"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	LeadSource     string      `json:"leadSource"`
	AssignedUserID json.Number `json:"assignedUserId"`
}

type appointmentPage struct {
	Appointments []appointmentRecord `json:"appointments"`
	Metadata     metadata            `json:"_metadata"`
}

type appointmentRecord struct {
	ID          json.Number `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Start       string      `json:"start"`
	End         string      `json:"end"`
	TypeID      json.Number `json:"typeId"`
	OutcomeID   json.Number `json:"outcomeId"`
	CreatedBy   json.Number `json:"createdBy"`
}

// getPage issues one GET request and decodes the response into out. The
// target is either an endpoint path resolved against the base URL, a full
// next-page URL, or a next token (resolved as endpoint?next=token).
func (c *Client) getPage(ctx context.Context, endpoint, target string, params map[string]string, out interface{}) error {
	req := c.http.R().SetContext(ctx).SetResult(out)

	url := target
	switch {
	case strings.HasPrefix(target, "http"):
		// Full next-page URL already carries its query string.
	case target != endpoint:
		// Token form of the cursor.
		req.SetQueryParam("next", target)
		url = endpoint
	default:
		req.SetQueryParams(params)
	}

	resp, err := req.Get(url)
	if err != nil {
		return &APIError{Endpoint: endpoint, Message: err.Error()}
	}
	if resp.IsError() {
		return &APIError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode(),
			Message:    strings.TrimSpace(string(resp.Body())),
		}
	}
	return nil
}

// FetchAgents retrieves every CRM user, sorted case-insensitively by name.
func (c *Client) FetchAgents(ctx context.Context) ([]types.Agent, error) {
	params := map[string]string{"limit": pageSize}

	var agents []types.Agent
	target := "/users"
	for {
		var page userPage
		if err := c.getPage(ctx, "/users", target, params, &page); err != nil {
			return nil, err
		}
		for _, u := range page.Users {
			agents = append(agents, types.Agent{
				ID:       u.ID.String(),
				Name:     u.Name,
				Email:    u.Email,
				Timezone: u.Timezone,
			})
		}
		next := page.Metadata.nextPointer()
		if next == "" {
			break
		}
		target = next
	}

	sort.Slice(agents, func(i, j int) bool {
		return strings.ToLower(agents[i].Name) < strings.ToLower(agents[j].Name)
	})

	c.logger.Debug().Int("count", len(agents)).Msg("fetched agents")
	return agents, nil
}

// FetchSmartLists retrieves every smart list, sorted by name.
func (c *Client) FetchSmartLists(ctx context.Context) ([]types.SmartList, error) {
	params := map[string]string{"limit": pageSize, "fub2": "true", "all": "true"}

	var lists []types.SmartList
	target := "/smartLists"
	for {
		var page smartListPage
		if err := c.getPage(ctx, "/smartLists", target, params, &page); err != nil {
			return nil, err
		}
		for _, l := range page.SmartLists {
			lists = append(lists, types.SmartList{ID: l.ID.String(), Name: l.Name})
		}
		next := page.Metadata.nextPointer()
		if next == "" {
			break
		}
		target = next
	}

	sort.Slice(lists, func(i, j int) bool {
		return strings.ToLower(lists[i].Name) < strings.ToLower(lists[j].Name)
	})

	c.logger.Debug().Int("count", len(lists)).Msg("fetched smart lists")
	return lists, nil
}

// FetchPeopleInSmartList retrieves every person in one smart list,
// filtered server-side by list membership. Unsorted.
func (c *Client) FetchPeopleInSmartList(ctx context.Context, smartListID string) ([]types.Person, error) {
	return c.fetchPeople(ctx, map[string]string{"limit": pageSize, "smartListId": smartListID})
}

// FetchPeople retrieves every person in the CRM.
func (c *Client) FetchPeople(ctx context.Context) ([]types.Person, error) {
	return c.fetchPeople(ctx, map[string]string{"limit": pageSize})
}

func (c *Client) fetchPeople(ctx context.Context, params map[string]string) ([]types.Person, error) {
	var people []types.Person
	target := "/people"
	for {
		var page peoplePage
		if err := c.getPage(ctx, "/people", target, params, &page); err != nil {
			return nil, err
		}
		for _, p := range page.People {
			people = append(people, types.Person{
				ID:             p.ID.String(),
				Name:           p.Name,
				Email:          p.Email,
				LeadSource:     p.LeadSource,
				AssignedUserID: p.AssignedUserID.String(),
			})
		}
		next := page.Metadata.nextPointer()
		if next == "" {
			break
		}
		target = next
	}
	return people, nil
}

// FetchAppointments retrieves appointments, optionally bounded by
// startDate/endDate (YYYY-MM-DD). Returns the records plus the total the
// API reports for the query.
func (c *Client) FetchAppointments(ctx context.Context, startDate, endDate string) ([]types.Appointment, int, error) {
	params := map[string]string{"limit": pageSize}
	if startDate != "" {
		params["startDate"] = startDate
	}
	if endDate != "" {
		params["endDate"] = endDate
	}

	var appointments []types.Appointment
	total := 0
	target := "/appointments"
	for {
		var page appointmentPage
		if err := c.getPage(ctx, "/appointments", target, params, &page); err != nil {
			return nil, 0, err
		}
		for _, a := range page.Appointments {
			appointments = append(appointments, types.Appointment{
				ID:          a.ID.String(),
				Title:       a.Title,
				Description: a.Description,
				Start:       a.Start,
				End:         a.End,
				TypeID:      a.TypeID.String(),
				OutcomeID:   a.OutcomeID.String(),
				CreatedBy:   a.CreatedBy.String(),
			})
		}
		if total == 0 {
			total = page.Metadata.Total
		}
		next := page.Metadata.nextPointer()
		if next == "" {
			break
		}
		target = next
	}
	return appointments, total, nil
}

// FetchAppointmentTypes retrieves the appointment type catalog as-is.
func (c *Client) FetchAppointmentTypes(ctx context.Context) (json.RawMessage, error) {
	return c.fetchRaw(ctx, "/appointment-types")
}

// FetchAppointmentOutcomes retrieves the appointment outcome catalog as-is.
func (c *Client) FetchAppointmentOutcomes(ctx context.Context) (json.RawMessage, error) {
	return c.fetchRaw(ctx, "/appointment-outcomes")
}

func (c *Client) fetchRaw(ctx context.Context, endpoint string) (json.RawMessage, error) {
	resp, err := c.http.R().SetContext(ctx).Get(endpoint)
	if err != nil {
		return nil, &APIError{Endpoint: endpoint, Message: err.Error()}
	}
	if resp.IsError() {
		return nil, &APIError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode(),
			Message:    strings.TrimSpace(string(resp.Body())),
		}
	}
	return json.RawMessage(resp.Body()), nil
}

// NameMap reduces agents to an id -> name map.
func NameMap(agents []types.Agent) map[string]string {
	m := make(map[string]string, len(agents))
	for _, a := range agents {
		m[a.ID] = a.Name
	}
	return m
}

// SmartListMap reduces smart lists to an id -> name map.
func SmartListMap(lists []types.SmartList) map[string]string {
	m := make(map[string]string, len(lists))
	for _, l := range lists {
		m[l.ID] = l.Name
	}
	return m
}
