package artwork

// Type is a catalog artwork type code.
type Type int

const (
	SeriesBanner     Type = 1
	SeriesPoster     Type = 2
	SeriesBackground Type = 3
	SeriesIcon       Type = 5
	SeasonBanner     Type = 6
	SeasonPoster     Type = 7
	SeasonBackground Type = 8
	SeasonIcon       Type = 10
	ClearArt         Type = 22
	ClearLogo        Type = 23
)

func (t Type) String() string {
	switch t {
	case SeriesBanner:
		return "series_banner"
	case SeriesPoster:
		return "series_poster"
	case SeriesBackground:
		return "series_background"
	case SeriesIcon:
		return "series_icon"
	case SeasonBanner:
		return "season_banner"
	case SeasonPoster:
		return "season_poster"
	case SeasonBackground:
		return "season_background"
	case SeasonIcon:
		return "season_icon"
	case ClearArt:
		return "clear_art"
	case ClearLogo:
		return "clear_logo"
	default:
		return "unknown"
	}
}

// Context says whether artwork is wanted for a whole series or one season.
type Context string

const (
	ContextSeries Context = "series"
	ContextSeason Context = "season"
)

// Accepts reports whether the type code is usable in the context.
func (c Context) Accepts(t Type) bool {
	switch c {
	case ContextSeason:
		return t == SeasonPoster || t == SeasonBackground
	case ContextSeries:
		return t == SeriesPoster || t == SeriesBackground
	default:
		return false
	}
}
