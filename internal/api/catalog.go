package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/voicebridge/domain/entities"
	"github.com/satriahrh/voicebridge/internal/auth"
)

const (
	defaultPageSize = 6
	maxPageSize     = 100
	filterAll       = "all"
)

// TopicLessons lists the lesson catalog one page at a time
func (h *Handler) TopicLessons(c echo.Context) error {
	page, err := positiveParam(c.QueryParam("page"), 1)
	if err != nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "invalid_page", Message: "Invalid page."})
	}
	pageSize, err := positiveParam(c.QueryParam("page_size"), defaultPageSize)
	if err != nil {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	filter := entities.LessonFilter{
		Language: catalogFilter(c.QueryParam("language")),
		Category: catalogFilter(c.QueryParam("category")),
		Search:   strings.TrimSpace(c.QueryParam("search")),
		Offset:   (page - 1) * pageSize,
		Limit:    pageSize,
	}

	lessons, total, err := h.Lessons.List(c.Request().Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list lessons", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list lessons",
		})
	}

	// the first page always exists, even when nothing matches
	if page > 1 && filter.Offset >= total {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "invalid_page", Message: "Invalid page."})
	}
	if lessons == nil {
		lessons = []*entities.Lesson{}
	}

	resp := LessonPage{Count: total, Results: lessons}
	if filter.Offset+len(lessons) < total {
		resp.Next = pageLink(c, page+1)
	}
	if page > 1 {
		resp.Previous = pageLink(c, page-1)
	}
	return c.JSON(http.StatusOK, resp)
}

// QueryHistory returns the caller's interactions, newest first
func (h *Handler) QueryHistory(c echo.Context) error {
	userID := auth.UserID(c)
	entries, err := h.Interactions.ListByUser(c.Request().Context(), userID, h.config.HistoryLimit)
	if err != nil {
		h.logger.Error("Failed to list query history", zap.String("user", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load history",
		})
	}
	if entries == nil {
		entries = []*entities.InteractionLogEntry{}
	}
	return c.JSON(http.StatusOK, entries)
}

// GetProfile returns the caller's preferences, defaulting the language to English
func (h *Handler) GetProfile(c echo.Context) error {
	userID := auth.UserID(c)
	profile, err := h.Profiles.GetByUserID(c.Request().Context(), userID)
	if err != nil {
		h.logger.Error("Failed to read profile", zap.String("user", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to read profile",
		})
	}
	if profile == nil {
		profile = &entities.UserProfile{UserID: userID, Language: entities.DefaultLanguage}
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateProfile applies a partial update to the caller's preferences
func (h *Handler) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	userID := auth.UserID(c)

	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_profile",
			Message: err.Error(),
		})
	}

	profile, err := h.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		h.logger.Error("Failed to read profile", zap.String("user", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "Failed to read profile"})
	}
	if profile == nil {
		profile = &entities.UserProfile{UserID: userID, Language: entities.DefaultLanguage}
	}
	if req.Phone != "" {
		profile.Phone = req.Phone
	}
	if req.Language != "" {
		profile.Language = entities.ParseLanguageCode(req.Language)
	}
	if req.DeviceType != "" {
		profile.DeviceType = req.DeviceType
	}

	if err := h.Profiles.Upsert(ctx, profile); err != nil {
		h.logger.Error("Failed to update profile", zap.String("user", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "Failed to update profile"})
	}

	h.logger.Info("Profile updated", zap.String("user", userID), zap.String("language", profile.Language.String()))
	return c.JSON(http.StatusOK, profile)
}

func catalogFilter(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, filterAll) {
		return ""
	}
	return v
}

// positiveParam parses an optional positive integer query parameter
func positiveParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, strconv.ErrRange
	}
	return n, nil
}

// pageLink rebuilds the request URL with a different page number
func pageLink(c echo.Context, page int) *string {
	req := c.Request()
	query := req.URL.Query()
	query.Set("page", strconv.Itoa(page))

	link := url.URL{
		Scheme:   c.Scheme(),
		Host:     req.Host,
		Path:     req.URL.Path,
		RawQuery: query.Encode(),
	}
	s := link.String()
	return &s
}
