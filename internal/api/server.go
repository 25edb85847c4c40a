package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/david/sochx/internal/auth"
	"github.com/david/sochx/internal/blog"
	"github.com/david/sochx/internal/catalog"
	"github.com/david/sochx/internal/comets"
	"github.com/david/sochx/internal/logging"
	"github.com/david/sochx/internal/models"
	"github.com/david/sochx/internal/query"
)

// Options carries the server settings that come from configuration.
type Options struct {
	CORSOrigins  []string
	UrgentWindow time.Duration
}

type Server struct {
	Store  *catalog.Store
	Blog   *blog.Service
	Auth   *auth.Service
	Engine query.Engine
	Echo   *echo.Echo

	log *zap.Logger
	now func() time.Time
}

func NewServer(store *catalog.Store, posts *blog.Service, gate *auth.Service, opts Options, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(log))
	e.Use(middleware.Recover())

	allowedOrigins := opts.CORSOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173"}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	window := opts.UrgentWindow
	if window <= 0 {
		window = query.DefaultUrgentWindow
	}

	s := &Server{
		Store:  store,
		Blog:   posts,
		Auth:   gate,
		Engine: query.Engine{UrgentWindow: window},
		Echo:   e,
		log:    log,
		now:    time.Now,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	s.Echo.GET("/ambient.svg", s.handleAmbient)

	api := s.Echo.Group("/api/v1")
	api.GET("/opportunities", s.handleListOpportunities)
	api.GET("/opportunities/:id", s.handleGetOpportunity)
	api.GET("/facets", s.handleFacets)
	api.GET("/stats", s.handleGetStats)

	api.GET("/blog/posts", s.handleListPosts)
	api.GET("/blog/posts/:slug", s.handleGetPost)

	api.POST("/admin/login", s.handleLogin)
	admin := api.Group("/admin")
	admin.Use(s.Auth.Middleware)
	admin.POST("/posts", s.handleExportPost)
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// facetParams maps query parameter names to facets.
var facetParams = []struct {
	name  string
	facet query.Facet
}{
	{"grade", query.FacetGrade},
	{"category", query.FacetCategory},
	{"format", query.FacetFormat},
	{"season", query.FacetSeason},
	{"paid", query.FacetPaidStatus},
	{"type", query.FacetType},
}

// parseRequest reads q and the facet parameters. Each facet parameter may be
// repeated, comma-separated, or both.
func parseRequest(c echo.Context) query.Request {
	req := query.Request{Query: c.QueryParam("q")}
	params := c.QueryParams()
	for _, p := range facetParams {
		var values []string
		for _, raw := range params[p.name] {
			values = append(values, splitCSV(raw)...)
		}
		req.Filters = req.Filters.With(p.facet, values)
	}
	return req
}

// splitCSV splits a comma-separated query parameter into trimmed non-empty strings.
func splitCSV(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

type opportunityView struct {
	*models.Opportunity
	Preview      string     `json:"preview"`
	NextDeadline *time.Time `json:"next_deadline,omitempty"`
	Urgent       bool       `json:"urgent"`
}

func newOpportunityView(it query.Item) opportunityView {
	return opportunityView{
		Opportunity:  it.Opportunity,
		Preview:      query.PreviewDetails(it.Opportunity, query.DefaultPreviewLength),
		NextDeadline: it.Deadline,
		Urgent:       it.Urgent,
	}
}

type listResponse struct {
	Opportunities []opportunityView `json:"opportunities"`
	Total         int               `json:"total"`
	Matched       int               `json:"matched"`
}

func (s *Server) run(req query.Request) query.Result {
	return s.Engine.RunAt(s.Store.Current().All(), req, s.now())
}

func (s *Server) handleListOpportunities(c echo.Context) error {
	result := s.run(parseRequest(c))

	resp := listResponse{
		Opportunities: make([]opportunityView, 0, len(result.Items)),
		Total:         result.Total,
		Matched:       result.Matched(),
	}
	for _, it := range result.Items {
		resp.Opportunities = append(resp.Opportunities, newOpportunityView(it))
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetOpportunity(c echo.Context) error {
	opp, err := s.Store.Current().Get(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}
	item := query.Item{Opportunity: opp}
	if at, ok := query.EffectiveDeadline(opp); ok {
		item.Deadline = &at
		item.Urgent = query.IsUrgent(at, s.now(), s.Engine.UrgentWindow)
	}
	return c.JSON(http.StatusOK, newOpportunityView(item))
}

type facetsResponse struct {
	Facets  []query.FacetCounts `json:"facets"`
	Active  int                 `json:"active"`
	Matched int                 `json:"matched"`
}

func (s *Server) handleFacets(c echo.Context) error {
	req := parseRequest(c)
	result := s.run(req)
	return c.JSON(http.StatusOK, facetsResponse{
		Facets:  query.CountOptions(result.Items, req.Filters),
		Active:  req.Filters.ActiveCount(),
		Matched: result.Matched(),
	})
}

type statsResponse struct {
	Total    int       `json:"total"`
	Urgent   int       `json:"urgent"`
	Dated    int       `json:"dated"`
	Issues   int       `json:"issues"`
	LoadedAt time.Time `json:"loaded_at"`
}

func (s *Server) handleGetStats(c echo.Context) error {
	snap := s.Store.Current()
	result := s.Engine.RunAt(snap.All(), query.Request{}, s.now())
	stats := statsResponse{
		Total:    result.Total,
		Issues:   len(snap.Issues()),
		LoadedAt: snap.LoadedAt(),
	}
	for _, it := range result.Items {
		if it.Deadline != nil {
			stats.Dated++
		}
		if it.Urgent {
			stats.Urgent++
		}
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) handleListPosts(c echo.Context) error {
	posts, err := s.Blog.List(c.Request().Context())
	if err != nil {
		s.log.Error("failed to load blog posts", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load posts"})
	}
	if posts == nil {
		posts = []models.BlogPost{}
	}
	return c.JSON(http.StatusOK, posts)
}

func (s *Server) handleGetPost(c echo.Context) error {
	post, err := s.Blog.Get(c.Param("slug"))
	if errors.Is(err, blog.ErrPostNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Post not found"})
	}
	if err != nil {
		s.log.Error("failed to load blog post", zap.String("slug", c.Param("slug")), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load post"})
	}
	return c.JSON(http.StatusOK, post)
}

type loginRequest struct {
	Passcode string `json:"passcode"`
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	token, err := s.Auth.Login(req.Passcode)
	switch {
	case errors.Is(err, auth.ErrNotConfigured):
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Admin access is not configured"})
	case errors.Is(err, auth.ErrInvalidPasscode):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Incorrect passcode"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleExportPost(c echo.Context) error {
	if !auth.IsAdmin(c) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized admin access"})
	}

	var draft blog.Draft
	if err := c.Bind(&draft); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	out, err := blog.Export(draft, s.now())
	if errors.Is(err, blog.ErrInvalidPost) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	s.log.Info("blog post exported", zap.String("file", out.FileName))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", out.FileName))
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, out.Body)
}

const (
	maxAmbientSide = 4096
	maxAmbientDPR  = 4
)

func (s *Server) handleAmbient(c echo.Context) error {
	width, err1 := floatParam(c, "width", 1280, 1, maxAmbientSide)
	height, err2 := floatParam(c, "height", 720, 1, maxAmbientSide)
	dpr, err3 := floatParam(c, "dpr", 1, 0.5, maxAmbientDPR)
	frames, err4 := floatParam(c, "frames", 60, 1, comets.MaxRenderFrames)
	if err := errors.Join(err1, err2, err3, err4); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	canvas, _ := comets.Render(width, height, dpr, int(frames), comets.WithLogger(s.log))
	var buf bytes.Buffer
	if err := canvas.WriteSVG(&buf); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.Blob(http.StatusOK, "image/svg+xml", buf.Bytes())
}

func floatParam(c echo.Context, name string, def, lo, hi float64) (float64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < lo || v > hi {
		return 0, fmt.Errorf("%s must be a number between %g and %g", name, lo, hi)
	}
	return v, nil
}
