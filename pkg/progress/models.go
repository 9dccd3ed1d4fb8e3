package progress

import (
	"encoding/json"
	"time"
)

const (
	// DefaultUsername is shown until the learner picks a name.
	DefaultUsername = "Guest"
	// DefaultTheme is the theme a fresh installation starts with.
	DefaultTheme = "light"
	// DateLayout is the day-resolution format of LastLoginDate.
	DateLayout = "2006-01-02"
)

// State is the single persisted progress record of an installation.
type State struct {
	Username         string
	Coins            int
	CompletedLessons []string
	CurrentLessonID  string
	Achievements     []string
	Streak           int
	LastLoginDate    string
	Preferences      Preferences
	CompletionDates  map[string]time.Time
	LastActive       time.Time

	// Extra holds stored fields this version does not know about.
	// They are written back unchanged on every save.
	Extra map[string]json.RawMessage
}

// Preferences are the learner's UI settings.
type Preferences struct {
	Theme            string `json:"theme"`
	SoundEffects     bool   `json:"soundEffects"`
	AnalyticsConsent bool   `json:"analyticsConsent"`
}

// Default returns a fresh first-run state.
func Default() *State {
	return &State{
		Username:         DefaultUsername,
		CompletedLessons: []string{},
		Achievements:     []string{},
		Preferences: Preferences{
			Theme:        DefaultTheme,
			SoundEffects: true,
		},
		CompletionDates: make(map[string]time.Time),
		Extra:           make(map[string]json.RawMessage),
	}
}

// MarshalJSON implements json.Marshaler.
func (s *State) MarshalJSON() ([]byte, error) {
	return Encode(s)
}

// UnmarshalJSON implements json.Unmarshaler with default-merge semantics.
// Corrupt input leaves s at defaults and returns the parse error.
func (s *State) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	*s = *decoded
	return err
}
