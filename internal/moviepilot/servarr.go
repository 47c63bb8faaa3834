package moviepilot

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/moviepilot/mp-cli/internal/api"
)

// ServarrService talks to the Radarr and Sonarr emulation, which lets
// *arr clients such as Overseerr manage MoviePilot subscriptions.
type ServarrService struct{ service }

func (s *ServarrService) SystemStatus(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "SystemStatus", "/system/status", nil)
}

func (s *ServarrService) QualityProfiles(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "QualityProfiles", "/qualityProfile", nil)
}

func (s *ServarrService) RootFolders(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "RootFolders", "/rootfolder", nil)
}

func (s *ServarrService) Tags(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "Tags", "/tag", nil)
}

func (s *ServarrService) LanguageProfiles(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "LanguageProfiles", "/languageprofile", nil)
}

// Movies lists movie subscriptions.
func (s *ServarrService) Movies(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "Movies", "/movie", nil)
}

// Movies2 lists movie subscriptions using the API token.
func (s *ServarrService) Movies2(ctx context.Context) (*api.Response, error) {
	return s.getToken(ctx, "Movies2", "/movie", nil)
}

// LookupMovie searches movies; term is "tmdb:<id>".
func (s *ServarrService) LookupMovie(ctx context.Context, term string) (*api.Response, error) {
	return s.get(ctx, "LookupMovie", "/movie/lookup", query().always("term", term))
}

func (s *ServarrService) Movie(ctx context.Context, id int) (*api.Response, error) {
	return s.get(ctx, "Movie", "/movie/"+segInt(id), nil)
}

func (s *ServarrService) AddMovie(ctx context.Context, body json.RawMessage) (*api.Response, error) {
	return s.call(ctx, "AddMovie", api.Request{Method: "POST", Path: "/movie", Body: body})
}

func (s *ServarrService) DeleteMovie(ctx context.Context, id int) (*api.Response, error) {
	return s.call(ctx, "DeleteMovie", api.Request{Method: "DELETE", Path: "/movie/" + segInt(id)})
}

// Series lists TV subscriptions.
func (s *ServarrService) Series(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "Series", "/series", nil)
}

// LookupSeries searches series; term is "tvdb:<id>" or a title.
func (s *ServarrService) LookupSeries(ctx context.Context, term string) (*api.Response, error) {
	return s.get(ctx, "LookupSeries", "/series/lookup", query().always("term", term))
}

func (s *ServarrService) SeriesDetail(ctx context.Context, id int) (*api.Response, error) {
	return s.get(ctx, "SeriesDetail", "/series/"+segInt(id), nil)
}

func (s *ServarrService) AddSeries(ctx context.Context, body json.RawMessage) (*api.Response, error) {
	return s.call(ctx, "AddSeries", api.Request{Method: "POST", Path: "/series", Body: body})
}

func (s *ServarrService) UpdateSeries(ctx context.Context, body json.RawMessage) (*api.Response, error) {
	return s.call(ctx, "UpdateSeries", api.Request{Method: "PUT", Path: "/series", Body: body})
}

func (s *ServarrService) DeleteSeries(ctx context.Context, id int) (*api.Response, error) {
	return s.call(ctx, "DeleteSeries", api.Request{Method: "DELETE", Path: "/series/" + segInt(id)})
}
