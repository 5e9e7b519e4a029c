package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lysyi3m/news-desk/app/feed"
	"github.com/lysyi3m/news-desk/app/gnews"
	"github.com/lysyi3m/news-desk/app/storage"
)

const (
	errFetchNews = "Failed to fetch news"
	maxBodySize  = 1 << 20
)

type Handler struct {
	provider       NewsProvider
	generator      GeneratorInterface
	sectionCache   *feed.SectionCache
	extractor      ExtractorInterface
	store          storage.Store
	storageBackend string
	market         MarketInterface
	defaultMax     int
	version        string
}

type HandlerOptions struct {
	Provider       NewsProvider
	SectionCache   *feed.SectionCache
	Extractor      ExtractorInterface
	Store          storage.Store
	StorageBackend string
	Market         MarketInterface
	DefaultMax     int
	Version        string
}

func NewHandler(opts HandlerOptions) *Handler {
	defaultMax := opts.DefaultMax
	if defaultMax <= 0 || defaultMax > gnews.MaxLimit {
		defaultMax = gnews.DefaultMax
	}

	return &Handler{
		provider:       opts.Provider,
		generator:      feed.NewGenerator(),
		sectionCache:   opts.SectionCache,
		extractor:      opts.Extractor,
		store:          opts.Store,
		storageBackend: opts.StorageBackend,
		market:         opts.Market,
		defaultMax:     defaultMax,
		version:        opts.Version,
	}
}

// parseMax forwards 1..100 unchanged, clamps larger values to the provider
// limit and falls back to the default for anything else.
func (h *Handler) parseMax(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return h.defaultMax
	}
	return min(n, gnews.MaxLimit)
}

func (h *Handler) newsQuery(c *gin.Context) gnews.Query {
	return gnews.Query{
		Category:   c.Query("category"),
		Country:    c.Query("country"),
		SearchTerm: c.Query("q"),
		Max:        h.parseMax(c.Query("max")),
	}
}

func (h *Handler) fetchNews(c *gin.Context, q gnews.Query) ([]gnews.Article, bool) {
	articles, err := h.provider.Fetch(c.Request.Context(), q)
	if err != nil {
		slog.Error("Error fetching news", "category", q.Category, "country", q.Country, "q", q.SearchTerm, "max", q.Max, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: errFetchNews})
		return nil, false
	}
	if articles == nil {
		articles = []gnews.Article{}
	}
	return articles, true
}

func (h *Handler) GetNews(c *gin.Context) {
	articles, ok := h.fetchNews(c, h.newsQuery(c))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newsResponse{Articles: articles})
}

func (h *Handler) GetNewsRSS(c *gin.Context) {
	q := h.newsQuery(c)

	articles, ok := h.fetchNews(c, q)
	if !ok {
		return
	}

	title := "Top headlines"
	switch {
	case q.SearchTerm != "":
		title = "Search: " + q.SearchTerm
	case q.Category != "":
		title = cases.Title(language.Und).String(q.Category) + " headlines"
	}

	channel := feed.Channel{
		Title:    title,
		SelfPath: c.Request.URL.RequestURI(),
		Category: q.Category,
	}

	h.writeRSS(c, channel, articles)
}

func (h *Handler) writeRSS(c *gin.Context, channel feed.Channel, articles []gnews.Article) {
	rss, err := h.generator.Run(channel, articles)
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(articles)))
	c.String(http.StatusOK, rss)
}

func (h *Handler) ListSections(c *gin.Context) {
	sections := h.sectionCache.GetSections()
	c.JSON(http.StatusOK, gin.H{
		"sections": sections,
		"total":    len(sections),
	})
}

func (h *Handler) GetSectionNews(c *gin.Context) {
	name := c.Param("name")

	section, err := h.sectionCache.GetSection(name)
	if err != nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: "Section not found"})
		return
	}

	articles, ok := h.fetchNews(c, section.GNewsQuery())
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"section":  section,
		"articles": articles,
	})
}

func (h *Handler) GetArticle(c *gin.Context) {
	rawURL := c.Query("url")

	article, err := h.extractor.Extract(c.Request.Context(), rawURL)
	if errors.Is(err, feed.ErrInvalidURL) {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid article url"})
		return
	}
	if err != nil {
		slog.Error("Error extracting article", "url", rawURL, "error", err)
		c.JSON(http.StatusBadGateway, errorResponse{Error: "Failed to extract article"})
		return
	}

	c.JSON(http.StatusOK, article)
}

func (h *Handler) ListStorageKeys(c *gin.Context) {
	device := c.Param("device")

	keys, err := h.store.Keys(c.Request.Context(), device)
	if errors.Is(err, storage.ErrInvalidKey) {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		slog.Error("Storage error", "operation", "keys", "device", device, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "Storage error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"device": device,
		"keys":   keys,
	})
}

// GetStorageValue returns the stored document, or the built-in default for
// the reader's known keys.
func (h *Handler) GetStorageValue(c *gin.Context) {
	device, key := c.Param("device"), c.Param("key")

	value, ok, err := h.store.Get(c.Request.Context(), device, key)
	if errors.Is(err, storage.ErrInvalidKey) {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		slog.Error("Storage error", "operation", "get", "device", device, "key", key, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "Storage error"})
		return
	}

	doc, typed, err := storage.LoadDocument(c.Request.Context(), h.store, device, key)
	if err != nil {
		slog.Error("Storage error", "operation", "load", "device", device, "key", key, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "Storage error"})
		return
	}

	if !ok {
		if !typed {
			doc, typed = storage.DefaultDocument(key)
		}
		if typed {
			c.Header("X-Storage-Default", "true")
			c.JSON(http.StatusOK, doc)
			return
		}
		c.JSON(http.StatusNotFound, errorResponse{Error: "Key not found"})
		return
	}

	if typed {
		c.JSON(http.StatusOK, doc)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", value)
}

type preferencesResponse struct {
	storage.NewsPreferences
	Selected []string `json:"selected"`
}

func (h *Handler) GetPreferences(c *gin.Context) {
	device := c.Param("device")

	prefs, err := storage.LoadNewsPreferences(c.Request.Context(), h.store, device)
	if h.storageFailed(c, "load", device, storage.KeyNewsPreferences, err) {
		return
	}

	c.JSON(http.StatusOK, preferencesResponse{NewsPreferences: prefs, Selected: prefs.SelectedCategories()})
}

// SetCategory follows or unfollows one category for a device.
func (h *Handler) SetCategory(c *gin.Context) {
	device, name := c.Param("device"), c.Param("name")

	var body struct {
		Selected *bool `json:"selected"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Selected == nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: `Body must be {"selected": true|false}`})
		return
	}

	ctx := c.Request.Context()
	prefs, err := storage.LoadNewsPreferences(ctx, h.store, device)
	if h.storageFailed(c, "load", device, storage.KeyNewsPreferences, err) {
		return
	}

	if !prefs.SetSelected(name, *body.Selected) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "Unknown category"})
		return
	}

	err = storage.SetJSON(ctx, h.store, device, storage.KeyNewsPreferences, prefs)
	if h.storageFailed(c, "set", device, storage.KeyNewsPreferences, err) {
		return
	}

	c.JSON(http.StatusOK, preferencesResponse{NewsPreferences: prefs, Selected: prefs.SelectedCategories()})
}

func (h *Handler) storageFailed(c *gin.Context, operation, device, key string, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, storage.ErrInvalidKey):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		slog.Error("Storage error", "operation", operation, "device", device, "key", key, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "Storage error"})
	}
	return true
}

func (h *Handler) PutStorageValue(c *gin.Context) {
	device, key := c.Param("device"), c.Param("key")

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodySize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Failed to read body"})
		return
	}
	if len(body) > maxBodySize {
		c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Error: "Body too large"})
		return
	}
	if !json.Valid(body) {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Body must be valid JSON"})
		return
	}

	err = h.store.Set(c.Request.Context(), device, key, body)
	if errors.Is(err, storage.ErrInvalidKey) {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		slog.Error("Storage error", "operation", "set", "device", device, "key", key, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "Storage error"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteStorageValue(c *gin.Context) {
	device, key := c.Param("device"), c.Param("key")

	err := h.store.Delete(c.Request.Context(), device, key)
	if errors.Is(err, storage.ErrInvalidKey) {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		slog.Error("Storage error", "operation", "delete", "device", device, "key", key, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "Storage error"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) GetStocks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"stocks": h.market.Stocks()})
}

func (h *Handler) GetIndices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"indices": h.market.Indices()})
}

func (h *Handler) GetCryptos(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cryptos": h.market.Cryptos()})
}

func (h *Handler) GetChart(c *gin.Context) {
	c.JSON(http.StatusOK, h.market.Chart(c.Param("symbol"), c.DefaultQuery("timeframe", "1D")))
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
	}

	storageHealth := map[string]interface{}{
		"backend": h.storageBackend,
		"status":  "ok",
	}
	if err := h.store.Ping(c.Request.Context()); err != nil {
		slog.Error("Storage health check failed", "backend", h.storageBackend, "error", err)
		storageHealth["status"] = "unavailable"
	}
	health["storage"] = storageHealth

	health["loaded_sections"] = h.sectionCache.GetSectionCount()

	c.JSON(http.StatusOK, health)
}
