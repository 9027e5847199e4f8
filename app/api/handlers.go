package api

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/lysyi3m/rss-lens/app/cfg"
	"github.com/lysyi3m/rss-lens/app/connectivity"
	"github.com/lysyi3m/rss-lens/app/feed"
	"github.com/lysyi3m/rss-lens/app/session"
)

func NewHandler(sess SessionInterface, favorites FavoritesInterface, tester ConnectionTester,
	monitor connectivity.Monitor, configCache *feed.ConfigCache) *Handler {
	return &Handler{
		session:     sess,
		favorites:   favorites,
		tester:      tester,
		monitor:     monitor,
		configCache: configCache,
	}
}

func (h *Handler) ListArticles(c *gin.Context) {
	state := h.session.Snapshot()
	articles := state.Articles

	if category := strings.TrimSpace(c.Query("category")); category != "" {
		articles = lo.Filter(articles, func(article feed.Article, _ int) bool {
			return strings.EqualFold(article.Category, category)
		})
	}

	if onlyFavorites, _ := strconv.ParseBool(c.Query("favorites")); onlyFavorites {
		ids, err := h.favorites.List(c.Request.Context())
		if err != nil {
			slog.Error("Storage error", "operation", "list_favorites", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage error"})
			return
		}
		articles = lo.Filter(articles, func(article feed.Article, _ int) bool {
			return slices.Contains(ids, article.ID)
		})
	}

	state.Articles = articles
	c.JSON(http.StatusOK, ArticlesResponse{State: state, Total: len(articles)})
}

func (h *Handler) GetArticle(c *gin.Context) {
	id := c.Param("id")

	article, ok := lo.Find(h.session.Snapshot().Articles, func(article feed.Article) bool {
		return article.ID == id
	})
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}

	c.JSON(http.StatusOK, article)
}

func (h *Handler) Refresh(c *gin.Context) {
	err := h.session.Refresh(c.Request.Context())

	switch {
	case errors.Is(err, session.ErrClosed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Session closed"})
	case err != nil:
		slog.Warn("Manual refresh failed", "error", err)
		state := h.session.Snapshot()
		c.JSON(http.StatusBadGateway, ArticlesResponse{State: state, Total: len(state.Articles)})
	default:
		state := h.session.Snapshot()
		c.JSON(http.StatusOK, ArticlesResponse{State: state, Total: len(state.Articles)})
	}
}

func (h *Handler) ListFavorites(c *gin.Context) {
	ids, err := h.favorites.List(c.Request.Context())
	if err != nil {
		slog.Error("Storage error", "operation", "list_favorites", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage error"})
		return
	}

	articles := lo.Filter(h.session.Snapshot().Articles, func(article feed.Article, _ int) bool {
		return slices.Contains(ids, article.ID)
	})

	c.JSON(http.StatusOK, gin.H{
		"ids":      ids,
		"articles": articles,
	})
}

func (h *Handler) ToggleFavorite(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing article id parameter"})
		return
	}

	favorite, err := h.favorites.Toggle(c.Request.Context(), id)
	if err != nil {
		slog.Error("Storage error", "operation", "toggle_favorite", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       id,
		"favorite": favorite,
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	state := h.session.Snapshot()

	health := gin.H{
		"status":    "ok",
		"online":    h.monitor.Online(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   cfg.GetVersion(),
		"articles":  len(state.Articles),
		"source":    state.Source,
	}
	if h.configCache != nil {
		health["loaded_sources"] = h.configCache.GetConfigCount()
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStatus(c *gin.Context) {
	started := time.Now()
	connected := h.tester.TestConnection(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"connected": connected,
		"online":    h.monitor.Online(),
		"duration":  time.Since(started).String(),
	})
}

func (h *Handler) ListSources(c *gin.Context) {
	if h.configCache == nil {
		c.JSON(http.StatusOK, gin.H{"sources": []gin.H{}, "total": 0})
		return
	}

	configs := h.configCache.GetEnabledConfigs()
	names := lo.Keys(configs)
	slices.Sort(names)

	sources := make([]gin.H, 0, len(names))
	for _, name := range names {
		feedConfig := configs[name]
		sources = append(sources, gin.H{
			"name":     feedConfig.Name,
			"url":      feedConfig.URL,
			"category": feedConfig.Category,
			"filters":  len(feedConfig.Filters),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"sources": sources,
		"total":   len(sources),
	})
}
