package storage

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// Keys of the documents the reader app keeps per device.
const (
	KeyStockWatchlist  = "stockWatchlist"
	KeyCryptoWatchlist = "cryptoWatchlist"
	KeyNewsPreferences = "newsPreferences"
	KeyUserProfile     = "userProfile"
)

type WatchlistEntry struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Icon          string  `json:"icon,omitempty"`
	IsFavorite    bool    `json:"isFavorite"`
}

type CategoryPreference struct {
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

type NewsPreferences struct {
	Notifications bool                 `json:"notifications"`
	Categories    []CategoryPreference `json:"categories"`
}

type UserProfile struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Bio      string `json:"bio"`
	Avatar   string `json:"avatar"`
}

func DefaultNewsPreferences() NewsPreferences {
	return NewsPreferences{
		Notifications: true,
		Categories: []CategoryPreference{
			{Name: "World", Selected: true},
			{Name: "Politics", Selected: false},
			{Name: "Business", Selected: true},
			{Name: "Technology", Selected: true},
			{Name: "Science", Selected: false},
			{Name: "Health", Selected: true},
			{Name: "Sports", Selected: false},
			{Name: "Entertainment", Selected: true},
		},
	}
}

func DefaultUserProfile() UserProfile {
	return UserProfile{
		Name:     "Rahul",
		Username: "abhiyendru",
		Bio:      "News enthusiast and global citizen. Always looking for the latest updates on world events.",
		Avatar:   "/credible_icon.png?height=96&width=96",
	}
}

// DefaultDocument returns the value a device sees for a known key that was
// never written.
func DefaultDocument(key string) (any, bool) {
	switch key {
	case KeyStockWatchlist, KeyCryptoWatchlist:
		return []WatchlistEntry{}, true
	case KeyNewsPreferences:
		return DefaultNewsPreferences(), true
	case KeyUserProfile:
		return DefaultUserProfile(), true
	default:
		return nil, false
	}
}

// LoadNewsPreferences decodes the stored preferences over the defaults, so
// fields missing from the document keep their default values. A malformed
// document is ignored.
func LoadNewsPreferences(ctx context.Context, s Store, device string) (NewsPreferences, error) {
	prefs := DefaultNewsPreferences()
	ok, err := loadOver(ctx, s, device, KeyNewsPreferences, &prefs)
	if !ok {
		return DefaultNewsPreferences(), err
	}
	return prefs, nil
}

func LoadUserProfile(ctx context.Context, s Store, device string) (UserProfile, error) {
	profile := DefaultUserProfile()
	ok, err := loadOver(ctx, s, device, KeyUserProfile, &profile)
	if !ok {
		return DefaultUserProfile(), err
	}
	return profile, nil
}

func loadOver(ctx context.Context, s Store, device, key string, dst any) (bool, error) {
	ok, err := GetJSON(ctx, s, device, key, dst)
	if errors.Is(err, ErrMalformed) {
		slog.Warn("Ignoring malformed document", "device", device, "key", key, "error", err)
		return false, nil
	}
	return ok, err
}

// SelectedCategories lists the names of the categories a device follows.
func (p NewsPreferences) SelectedCategories() []string {
	names := []string{}
	for _, c := range p.Categories {
		if c.Selected {
			names = append(names, c.Name)
		}
	}
	return names
}

// SetSelected follows or unfollows a category, matching its name without
// regard to case. It reports false when the category is unknown.
func (p *NewsPreferences) SetSelected(name string, selected bool) bool {
	for i := range p.Categories {
		if strings.EqualFold(p.Categories[i].Name, name) {
			p.Categories[i].Selected = selected
			return true
		}
	}
	return false
}

// LoadDocument returns the typed document stored under key, merged over its
// defaults. It reports false for keys without a typed document.
func LoadDocument(ctx context.Context, s Store, device, key string) (any, bool, error) {
	switch key {
	case KeyNewsPreferences:
		prefs, err := LoadNewsPreferences(ctx, s, device)
		return prefs, true, err
	case KeyUserProfile:
		profile, err := LoadUserProfile(ctx, s, device)
		return profile, true, err
	default:
		return nil, false, nil
	}
}
