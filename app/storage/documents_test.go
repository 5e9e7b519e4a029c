package storage

import (
	"context"
	"errors"
	"testing"
)

func TestGetSetJSON(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	watchlist := []WatchlistEntry{
		{Symbol: "TCS", Name: "Tata Consultancy Services", Price: 3845.21, IsFavorite: true},
	}
	if err := SetJSON(ctx, store, "device", KeyStockWatchlist, watchlist); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}

	var got []WatchlistEntry
	ok, err := GetJSON(ctx, store, "device", KeyStockWatchlist, &got)
	if err != nil || !ok {
		t.Fatalf("Expected stored watchlist, got ok=%v err=%v", ok, err)
	}
	if len(got) != 1 || got[0].Symbol != "TCS" || !got[0].IsFavorite {
		t.Errorf("Unexpected watchlist %+v", got)
	}

	store.Set(ctx, "device", KeyCryptoWatchlist, []byte("not json"))
	ok, err = GetJSON(ctx, store, "device", KeyCryptoWatchlist, &got)
	if ok || !errors.Is(err, ErrMalformed) {
		t.Errorf("Expected ErrMalformed, got ok=%v err=%v", ok, err)
	}
}

func TestLoadNewsPreferences(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	prefs, err := LoadNewsPreferences(ctx, store, "device")
	if err != nil {
		t.Fatalf("LoadNewsPreferences failed: %v", err)
	}
	if !prefs.Notifications || len(prefs.Categories) != 8 {
		t.Errorf("Expected defaults, got %+v", prefs)
	}

	selected := prefs.SelectedCategories()
	expected := []string{"World", "Business", "Technology", "Health", "Entertainment"}
	if len(selected) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, selected)
	}
	for i := range expected {
		if selected[i] != expected[i] {
			t.Errorf("Expected %s at %d, got %s", expected[i], i, selected[i])
		}
	}

	store.Set(ctx, "device", KeyNewsPreferences, []byte(`{"notifications":false}`))
	prefs, _ = LoadNewsPreferences(ctx, store, "device")
	if prefs.Notifications {
		t.Error("Expected stored notifications flag")
	}
	if len(prefs.Categories) != 8 {
		t.Errorf("Expected default categories to be kept, got %d", len(prefs.Categories))
	}

	store.Set(ctx, "device", KeyNewsPreferences, []byte(`{"notifications":false,"categories":[{"name":"Science","selected":true}]}`))
	prefs, _ = LoadNewsPreferences(ctx, store, "device")
	if len(prefs.Categories) != 1 || prefs.Categories[0].Name != "Science" {
		t.Errorf("Expected stored categories, got %+v", prefs.Categories)
	}

	store.Set(ctx, "device", KeyNewsPreferences, []byte(`{broken`))
	prefs, err = LoadNewsPreferences(ctx, store, "device")
	if err != nil {
		t.Errorf("Expected malformed document to be ignored, got %v", err)
	}
	if !prefs.Notifications || len(prefs.Categories) != 8 {
		t.Errorf("Expected defaults for malformed document, got %+v", prefs)
	}
}

func TestLoadUserProfile(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	profile, err := LoadUserProfile(ctx, store, "device")
	if err != nil {
		t.Fatalf("LoadUserProfile failed: %v", err)
	}
	if profile != DefaultUserProfile() {
		t.Errorf("Expected default profile, got %+v", profile)
	}

	SetJSON(ctx, store, "device", KeyUserProfile, UserProfile{Name: "Asha", Username: "asha"})
	profile, _ = LoadUserProfile(ctx, store, "device")
	if profile.Name != "Asha" || profile.Username != "asha" {
		t.Errorf("Expected stored profile, got %+v", profile)
	}
}

func TestDefaultDocument(t *testing.T) {
	for _, key := range []string{KeyStockWatchlist, KeyCryptoWatchlist, KeyNewsPreferences, KeyUserProfile} {
		if _, ok := DefaultDocument(key); !ok {
			t.Errorf("Expected default for %s", key)
		}
	}
	if _, ok := DefaultDocument("theme"); ok {
		t.Error("Expected no default for unknown key")
	}
}

func TestNewsPreferencesSetSelected(t *testing.T) {
	prefs := DefaultNewsPreferences()

	if !prefs.SetSelected("sports", true) {
		t.Fatal("Expected Sports to be found regardless of case")
	}
	if prefs.SetSelected("Weather", true) {
		t.Error("Expected unknown category to be reported")
	}

	expected := []string{"World", "Business", "Technology", "Health", "Sports", "Entertainment"}
	selected := prefs.SelectedCategories()
	if len(selected) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, selected)
	}
	for i := range expected {
		if selected[i] != expected[i] {
			t.Errorf("Expected %s at %d, got %s", expected[i], i, selected[i])
		}
	}

	if DefaultNewsPreferences().Categories[6].Selected {
		t.Error("Expected defaults to be unaffected")
	}
}

func TestLoadDocument(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	store.Set(ctx, "device", KeyUserProfile, []byte(`{"name":"Asha"}`))
	doc, typed, err := LoadDocument(ctx, store, "device", KeyUserProfile)
	if err != nil || !typed {
		t.Fatalf("Expected typed profile, got typed=%v err=%v", typed, err)
	}
	profile := doc.(UserProfile)
	if profile.Name != "Asha" || profile.Username != DefaultUserProfile().Username {
		t.Errorf("Expected partial profile merged over defaults, got %+v", profile)
	}

	store.Set(ctx, "device", KeyNewsPreferences, []byte(`[1,2`))
	doc, typed, err = LoadDocument(ctx, store, "device", KeyNewsPreferences)
	if err != nil || !typed {
		t.Fatalf("Expected typed preferences, got typed=%v err=%v", typed, err)
	}
	if len(doc.(NewsPreferences).Categories) != 8 {
		t.Errorf("Expected defaults for malformed preferences, got %+v", doc)
	}

	if _, typed, _ := LoadDocument(ctx, store, "device", KeyStockWatchlist); typed {
		t.Error("Expected watchlists to be served raw")
	}
}
