package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/furclan/eventbot/internal/domain"
	"github.com/furclan/eventbot/internal/domain/contract"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendarapi "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const maxResultsPerPage = 250

// Client implements contract.CalendarProvider on top of the Google
// Calendar API.
type Client struct {
	service    *calendarapi.Service
	calendarID string
}

// NewClient builds an authenticated calendar client from a stored OAuth
// token file. The refresh token must have been obtained beforehand by the
// login flow.
func NewClient(ctx context.Context, clientID, clientSecret, tokenFile, calendarID string) (*Client, error) {
	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       []string{calendarapi.CalendarReadonlyScope},
		Endpoint:     google.Endpoint,
	}

	token, err := tokenFromFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("could not load calendar token: %w", err)
	}

	service, err := calendarapi.NewService(ctx, option.WithHTTPClient(config.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &Client{service: service, calendarID: calendarID}, nil
}

// tokenFromFile retrieves a token from a local file
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

// Changes fetches one page of event changes. An incremental request
// carries the stored sync token; an initial request carries a time window.
// A 410 response from the API maps to contract.ErrSyncTokenExpired.
func (c *Client) Changes(ctx context.Context, req contract.ChangeRequest) (*contract.ChangePage, error) {
	call := c.service.Events.List(c.calendarID).
		Context(ctx).
		SingleEvents(true).
		ShowDeleted(true).
		MaxResults(maxResultsPerPage)

	if req.SyncToken != "" {
		call = call.SyncToken(req.SyncToken)
	} else {
		if req.TimeMin != "" {
			call = call.TimeMin(req.TimeMin)
		}
		if req.TimeMax != "" {
			call = call.TimeMax(req.TimeMax)
		}
	}
	if req.PageToken != "" {
		call = call.PageToken(req.PageToken)
	}

	result, err := call.Do()
	if err != nil {
		if apiErr, ok := err.(*googleapi.Error); ok && apiErr.Code == 410 {
			return nil, contract.ErrSyncTokenExpired
		}
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}

	page := &contract.ChangePage{
		NextPageToken: result.NextPageToken,
		NextSyncToken: result.NextSyncToken,
	}
	for _, item := range result.Items {
		page.Items = append(page.Items, toChangeItem(item))
	}

	return page, nil
}

func toChangeItem(item *calendarapi.Event) contract.ChangeItem {
	change := contract.ChangeItem{
		ProviderID:  item.Id,
		Title:       item.Summary,
		Description: item.Description,
		Location:    item.Location,
		Status:      item.Status,
		Updated:     item.Updated,
		Deleted:     item.Status == domain.StatusCancelled,
	}
	if item.Start != nil {
		change.Start = coalesce(item.Start.DateTime, item.Start.Date)
	}
	if item.End != nil {
		change.End = coalesce(item.End.DateTime, item.End.Date)
	}
	return change
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
