package commands

import (
	"context"
	"fmt"

	"tableflip.dev/hubz/pkg/backend"
	"tableflip.dev/hubz/pkg/backend/caldav"
	"tableflip.dev/hubz/pkg/backend/local"
	"tableflip.dev/hubz/pkg/backend/rest"
)

// openBackend connects to the configured item source. The returned func
// releases it.
func (e *env) openBackend(ctx context.Context) (backend.Backend, func() error, error) {
	noop := func() error { return nil }
	s := e.settings

	switch s.Backend {
	case "", "rest", "api":
		if s.API.URL == "" {
			return nil, nil, fmt.Errorf("rest backend: api.url is not set")
		}
		return rest.New(s.API.URL, s.API.Token), noop, nil
	case "sqlite", "local":
		storage, err := local.Open(s.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return storage, storage.Close, nil
	case "caldav":
		loc, err := e.location()
		if err != nil {
			return nil, nil, err
		}
		b, err := caldav.New(ctx, caldav.Options{
			URL:      s.CalDAV.URL,
			Username: s.CalDAV.Username,
			Password: s.CalDAV.Password,
			Calendar: s.CalDAV.Calendar,
			Location: loc,
		})
		if err != nil {
			return nil, nil, err
		}
		return b, noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q, want rest, sqlite or caldav", s.Backend)
	}
}
