package models

// Catalog types carry only what the client joins against watchlist rows:
// identity, display metadata, and the season structure that bounds
// episode/season progress. Field names follow the catalog service's wire
// format.

// MovieDetail describes a single movie from the catalog service.
type MovieDetail struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview,omitempty"`
	PosterPath  string  `json:"poster_path,omitempty"`
	ReleaseDate string  `json:"release_date,omitempty"`
	VoteAverage float64 `json:"vote_average,omitempty"`
	Runtime     int     `json:"runtime,omitempty"`
}

// Season describes one season of a show, including how many episodes it has.
type Season struct {
	ID           int64  `json:"id"`
	SeasonNumber int    `json:"season_number"`
	EpisodeCount int    `json:"episode_count"`
	Name         string `json:"name,omitempty"`
	AirDate      string `json:"air_date,omitempty"`
}

// TvShowDetail describes a single show from the catalog service.
type TvShowDetail struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	Overview         string   `json:"overview,omitempty"`
	PosterPath       string   `json:"poster_path,omitempty"`
	FirstAirDate     string   `json:"first_air_date,omitempty"`
	VoteAverage      float64  `json:"vote_average,omitempty"`
	NumberOfSeasons  int      `json:"number_of_seasons"`
	NumberOfEpisodes int      `json:"number_of_episodes,omitempty"`
	Seasons          []Season `json:"seasons,omitempty"`
}

// EpisodeCount returns the number of episodes in the given season, or
// false when the catalog has no entry for it.
func (d TvShowDetail) EpisodeCount(season int) (int, bool) {
	for _, s := range d.Seasons {
		if s.SeasonNumber == season {
			return s.EpisodeCount, true
		}
	}
	return 0, false
}
