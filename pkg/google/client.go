package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/harrisonrobin/dayplan/pkg/auth"
	"github.com/harrisonrobin/dayplan/pkg/index"
	"github.com/harrisonrobin/dayplan/pkg/logger"
	"github.com/harrisonrobin/dayplan/pkg/model"
	"github.com/harrisonrobin/dayplan/pkg/util"
)

const revokeTimeout = 5 * time.Second

var (
	errNotAuthenticated = errors.New("not authenticated with Google Calendar")
	errNoEvent          = errors.New("no calendar event for task")
)

// Client talks to the Google Calendar API with the tokens held by an auth.Session.
type Client struct {
	oauth    *oauth2.Config
	provider auth.Provider
	session  *auth.Session
	codes    auth.CodeSource

	httpClient *http.Client
	endpoint   string
	loc        *time.Location
	index      *index.EventIndex
	l          logger.Logger
}

var _ Calendar = (*Client)(nil)

type ClientOption func(*Client)

// WithHTTPClient sets the client used for token and API requests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithEndpoint overrides the Calendar API base URL.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithLocation sets the timezone task dates are interpreted in.
func WithLocation(loc *time.Location) ClientOption {
	return func(c *Client) { c.loc = loc }
}

// WithIndex records created events so they can be patched or deleted later.
func WithIndex(idx *index.EventIndex) ClientOption {
	return func(c *Client) { c.index = idx }
}

func NewClient(cfg *oauth2.Config, provider auth.Provider, session *auth.Session, codes auth.CodeSource, l logger.Logger, opts ...ClientOption) *Client {
	c := &Client{
		oauth:      cfg,
		provider:   provider,
		session:    session,
		codes:      codes,
		httpClient: http.DefaultClient,
		loc:        time.Local,
		l:          l,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) IsAuthenticated(ctx context.Context) bool {
	token, err := c.session.AccessToken(ctx)
	if err != nil {
		c.l.Error("error loading stored tokens", "error", err)
		return false
	}
	return token != ""
}

func (c *Client) Authenticate(ctx context.Context) bool {
	state := uuid.NewString()
	authURL := c.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))

	code, err := c.codes.AuthCode(ctx, authURL, state)
	if err != nil {
		if errors.Is(err, auth.ErrCanceled) {
			c.l.Info("google authorization canceled", "reason", err)
		} else {
			c.l.Error("google authorization failed", "error", err)
		}
		return false
	}

	tok, err := c.oauth.Exchange(c.tokenContext(ctx), code)
	if err != nil {
		c.l.Error("unable to exchange authorization code", "error", err)
		return false
	}
	if err := c.session.Set(ctx, tok.AccessToken, tok.RefreshToken); err != nil {
		c.l.Warn("tokens held in memory only, could not persist them", "error", err)
	}
	c.l.Info("authenticated with Google Calendar")
	return true
}

func (c *Client) RefreshAccessToken(ctx context.Context) bool {
	refresh, err := c.session.RefreshToken(ctx)
	if err != nil {
		c.l.Error("error loading refresh token", "error", err)
		return false
	}
	if refresh == "" {
		c.l.Debug("no refresh token held")
		return false
	}

	tok, err := c.oauth.TokenSource(c.tokenContext(ctx), &oauth2.Token{RefreshToken: refresh}).Token()
	if err != nil {
		c.l.Error("error refreshing token", "error", err)
		return false
	}
	if tok.AccessToken == "" {
		c.l.Error("token endpoint returned no access token")
		return false
	}
	if err := c.session.Set(ctx, tok.AccessToken, tok.RefreshToken); err != nil {
		c.l.Warn("could not persist refreshed token", "error", err)
	}
	return true
}

func (c *Client) SignOut(ctx context.Context) {
	token, err := c.session.AccessToken(ctx)
	if err != nil {
		c.l.Warn("could not load token to revoke", "error", err)
	}
	if token != "" && c.provider.RevokeURL != "" {
		c.revoke(ctx, token)
	}
	if err := c.session.Clear(ctx); err != nil {
		c.l.Error("error clearing stored tokens", "error", err)
	}
}

// revoke is best effort; its outcome never changes sign-out.
func (c *Client) revoke(ctx context.Context, token string) {
	ctx, cancel := context.WithTimeout(ctx, revokeTimeout)
	defer cancel()

	u := c.provider.RevokeURL + "?token=" + url.QueryEscape(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		c.l.Debug("could not build revoke request", "error", err)
		return
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.l.Debug("token revocation failed", "error", err)
		return
	}
	resp.Body.Close()
}

func (c *Client) CreateCalendarEvent(ctx context.Context, task model.Task) bool {
	event, err := util.ConvertTaskToCalendarEvent(task, c.loc)
	if err != nil {
		c.l.Error("could not build calendar event", "task", task.ID, "error", err)
		return false
	}
	created, err := withAuth(ctx, c, func(srv *calendar.Service) (*calendar.Event, error) {
		return srv.Events.Insert(primaryCalendar, event).Context(ctx).Do()
	})
	if err != nil {
		c.logFailure("error creating calendar event", task.ID, err)
		return false
	}
	c.remember(ctx, task.ID, created.Id)
	c.l.Debug("created calendar event", "task", task.ID, "event", created.Id)
	return true
}

func (c *Client) SyncCalendarEvent(ctx context.Context, task model.Task) bool {
	existing, err := withAuth(ctx, c, func(srv *calendar.Service) (*calendar.Event, error) {
		return c.lookup(ctx, srv, task.ID)
	})
	if err != nil {
		c.logFailure("error searching for calendar event", task.ID, err)
		return false
	}
	if existing == nil {
		return c.CreateCalendarEvent(ctx, task)
	}

	target, err := util.ConvertTaskToCalendarEvent(task, c.loc)
	if err != nil {
		c.l.Error("could not build calendar event", "task", task.ID, "error", err)
		return false
	}
	patch, err := util.EventNeedsUpdate(existing, target)
	if err != nil {
		c.l.Warn("could not compare task with its calendar event", "task", task.ID, "error", err)
		patch = target
	}
	if patch == nil {
		return true
	}

	updated, err := withAuth(ctx, c, func(srv *calendar.Service) (*calendar.Event, error) {
		return srv.Events.Patch(primaryCalendar, existing.Id, patch).Context(ctx).Do()
	})
	if err != nil {
		c.logFailure("error patching calendar event", task.ID, err)
		return false
	}
	c.remember(ctx, task.ID, updated.Id)
	return true
}

func (c *Client) DeleteCalendarEvent(ctx context.Context, taskID string) bool {
	_, err := withAuth(ctx, c, func(srv *calendar.Service) (struct{}, error) {
		event, err := c.lookup(ctx, srv, taskID)
		if err != nil {
			return struct{}{}, err
		}
		if event == nil {
			return struct{}{}, errNoEvent
		}
		return struct{}{}, srv.Events.Delete(primaryCalendar, event.Id).Context(ctx).Do()
	})
	if err == nil || errors.Is(err, errNoEvent) {
		c.forget(ctx, taskID)
	}
	if err != nil {
		c.logFailure("error deleting calendar event", taskID, err)
		return false
	}
	return true
}

func (c *Client) GetCalendarList(ctx context.Context) []CalendarEntry {
	list, err := withAuth(ctx, c, func(srv *calendar.Service) (*calendar.CalendarList, error) {
		return srv.CalendarList.List().Context(ctx).Do()
	})
	if err != nil {
		c.logFailure("error fetching calendar list", "", err)
		return []CalendarEntry{}
	}

	entries := make([]CalendarEntry, 0, len(list.Items))
	for _, item := range list.Items {
		entries = append(entries, CalendarEntry{ID: item.Id, Summary: item.Summary, Primary: item.Primary})
	}
	return entries
}

// lookup finds the event for taskID, first through the index and then by
// searching the private extended property. It returns nil when there is none.
func (c *Client) lookup(ctx context.Context, srv *calendar.Service, taskID string) (*calendar.Event, error) {
	if c.index != nil {
		if eventID := c.index.Get(taskID); eventID != "" {
			event, err := srv.Events.Get(primaryCalendar, eventID).Context(ctx).Do()
			if err == nil && event.Status != "cancelled" {
				return event, nil
			}
			if isUnauthorized(err) {
				return nil, err
			}
		}
	}

	events, err := srv.Events.List(primaryCalendar).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", util.TaskIDProperty, taskID)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	for _, event := range events.Items {
		if id, ok := util.TaskIDFromEvent(event); ok && id == taskID {
			return event, nil
		}
	}
	return nil, nil
}

func (c *Client) remember(ctx context.Context, taskID, eventID string) {
	if c.index == nil {
		return
	}
	c.index.Set(taskID, eventID)
	if err := c.index.Save(ctx); err != nil {
		c.l.Warn("could not save event index", "error", err)
	}
}

func (c *Client) forget(ctx context.Context, taskID string) {
	if c.index == nil {
		return
	}
	c.index.Remove(taskID)
	if err := c.index.Save(ctx); err != nil {
		c.l.Warn("could not save event index", "error", err)
	}
}

func (c *Client) logFailure(msg, taskID string, err error) {
	switch {
	case errors.Is(err, errNotAuthenticated):
		c.l.Info("user not authenticated with Google Calendar")
		return
	case errors.Is(err, errNoEvent):
		c.l.Debug("no calendar event for task", "task", taskID)
		return
	}
	if taskID != "" {
		c.l.Error(msg, "task", taskID, "error", err)
		return
	}
	c.l.Error(msg, "error", err)
}

// service builds a Calendar API client that sends token as a bearer credential.
func (c *Client) service(ctx context.Context, token string) (*calendar.Service, error) {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	hc := oauth2.NewClient(c.tokenContext(ctx), src)

	opts := []option.ClientOption{option.WithHTTPClient(hc)}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}
	srv, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Calendar client: %w", err)
	}
	return srv, nil
}

func (c *Client) tokenContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// withAuth runs call with the current access token. A 401 triggers exactly one
// token refresh followed by exactly one retry.
func withAuth[T any](ctx context.Context, c *Client, call func(*calendar.Service) (T, error)) (T, error) {
	var zero T
	if !c.IsAuthenticated(ctx) {
		return zero, errNotAuthenticated
	}

	res, err := attempt(ctx, c, call)
	if !isUnauthorized(err) {
		return res, err
	}

	c.l.Info("calendar token expired, refreshing")
	if !c.RefreshAccessToken(ctx) {
		return zero, fmt.Errorf("token refresh failed: %w", err)
	}
	return attempt(ctx, c, call)
}

func attempt[T any](ctx context.Context, c *Client, call func(*calendar.Service) (T, error)) (T, error) {
	var zero T
	token, err := c.session.AccessToken(ctx)
	if err != nil {
		return zero, err
	}
	srv, err := c.service(ctx, token)
	if err != nil {
		return zero, err
	}
	return call(srv)
}

func isUnauthorized(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusUnauthorized
}
