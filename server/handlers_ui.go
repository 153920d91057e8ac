package server

import (
	"context"
	"net/http"
	"time"

	"github.com/MariHpf/oauth-app-marius-test/crm"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

const (
	contactsPageSize = 10
	recentWindow     = 24 * time.Hour
)

type contactView struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
}

// HomePageData contains data for rendering the home page
type HomePageData struct {
	AppName      string
	Authorized   bool
	AuthorizeURL string
	Contacts     []contactView
	Recent       []contactView
	RecentTotal  int
	RecentFailed bool
}

// HomeHandler shows the install link to new sessions and a contact summary to authorized ones
func (s *Server) HomeHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("home.html")
	if err != nil {
		panic("Failed to parse home template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.Ctx(r.Context())

		sessionID, err := s.services.Sessions.Ensure(w, r)
		if err != nil {
			logger.Err(err).Msg("Failed to establish session")
			http.Error(w, "session unavailable", http.StatusInternalServerError)
			return
		}

		data := HomePageData{AppName: s.config.GetAppName()}

		var accessToken string
		if s.services.Broker.IsAuthorized(r.Context(), sessionID) {
			accessToken, err = s.services.Broker.GetToken(r.Context(), sessionID)
			if err != nil {
				logger.Err(err).Msg("Could not obtain access token, offering re-authorization")
			}
		}

		if accessToken == "" {
			state, err := s.services.States.Issue(sessionID)
			if err != nil {
				logger.Err(err).Msg("Failed to issue oauth state")
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			data.AuthorizeURL = s.services.Provider.AuthCodeURL(state)
		} else {
			if err := s.loadContacts(r.Context(), accessToken, &data); err != nil {
				logger.Err(err).Msg("Failed to list contacts")
				http.Error(w, "failed to load contacts", http.StatusInternalServerError)
				return
			}
			data.Authorized = true
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			logger.Err(err).Msg("Failed to render home page")
		}
	}
}

// loadContacts runs the listing and the recent-changes search concurrently.
// Only a listing failure is returned; the search is best effort.
func (s *Server) loadContacts(ctx context.Context, accessToken string, data *HomePageData) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		page, err := s.services.CRM.ListContacts(gctx, accessToken, crm.ListOptions{Limit: contactsPageSize})
		if err != nil {
			return err
		}
		data.Contacts = toContactViews(page.Results)
		return nil
	})

	g.Go(func() error {
		search := crm.RecentlyModifiedSearch(NowTimeFunc(), recentWindow, contactsPageSize)
		result, err := s.services.CRM.SearchContacts(gctx, accessToken, search)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("Recently modified contacts search failed")
			data.RecentFailed = true
			return nil
		}
		data.Recent = toContactViews(result.Results)
		data.RecentTotal = result.Total
		return nil
	})

	return g.Wait()
}

func toContactViews(contacts []crm.Contact) []contactView {
	views := make([]contactView, 0, len(contacts))
	for _, c := range contacts {
		views = append(views, contactView{
			ID:        c.ID,
			FirstName: c.Property("firstname"),
			LastName:  c.Property("lastname"),
			Email:     c.Property("email"),
		})
	}
	return views
}
