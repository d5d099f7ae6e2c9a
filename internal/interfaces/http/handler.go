package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	appcurves "github.com/Jeff-Lewis/Strata/internal/application/service/curves"
	"github.com/Jeff-Lewis/Strata/internal/domain/bean"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/basics"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/curve"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/dsf"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/fra"
	"github.com/Jeff-Lewis/Strata/internal/domain/entity/marketdata"
	interfaces "github.com/Jeff-Lewis/Strata/internal/domain/interfaces"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const basePath = "/api/v1"

var (
	errMissingID    = errors.New("missing id")
	errMissingRange = errors.New("from/to query params required")
)

type TradeService interface {
	AddTrade(ctx context.Context, t *dsf.ResolvedDsfTrade) (*dsf.ResolvedDsfTrade, error)
	GetTrade(ctx context.Context, id string) (*dsf.ResolvedDsfTrade, error)
	DeriveTrade(ctx context.Context, id string, changes map[string]any) (*dsf.ResolvedDsfTrade, error)
}

type CurveService interface {
	GetCurveGroup(ctx context.Context, id *curve.CurveGroupID) (*curve.CurveGroup, error)
	SaveCurveGroup(ctx context.Context, id *curve.CurveGroupID, group curve.CurveGroup) error
	BuildNodeTrade(ctx context.Context, node *curve.FraCurveNode, source basics.ObservableSource, valuationDate time.Time) (*fra.FraTrade, error)
}

type QuoteService interface {
	AddQuotes(ctx context.Context, quotes []marketdata.Quote) error
	GetQuotesBetween(ctx context.Context, key basics.ObservableKey, source basics.ObservableSource, from, to time.Time) ([]marketdata.Quote, error)
}

type Handler struct {
	router   *gin.Engine
	trades   TradeService
	curves   CurveService
	quotes   QuoteService
	cache    *redis.Client
	cacheTTL time.Duration
}

// NewHandler wires the REST API. A nil cache disables response caching.
func NewHandler(trades TradeService, curves CurveService, quotes QuoteService, cache *redis.Client, cacheTTL time.Duration) *Handler {
	router := gin.New()
	router.Use(gin.Recovery())

	h := &Handler{
		router:   router,
		trades:   trades,
		curves:   curves,
		quotes:   quotes,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
	h.registerRoutes()
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	api := h.router.Group(basePath)
	api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Bean metadata and stored trades are immutable.
	cached := api.Group("")
	if h.cache != nil {
		cached.Use(h.cacheMiddleware())
	}
	{
		cached.GET("/beans", h.listBeans)
		cached.GET("/beans/:name", h.describeBean)
		cached.GET("/trades/dsf/:id", h.getTrade)
		cached.GET("/trades/dsf/:id/properties/:property", h.getTradeProperty)
	}

	api.POST("/trades/dsf", h.addTrade)
	api.POST("/trades/dsf/:id/derive", h.deriveTrade)

	api.GET("/curve-groups/:name", h.getCurveGroup)
	api.PUT("/curve-groups/:name", h.putCurveGroup)
	api.POST("/curve-nodes/fra/trade", h.buildFraNodeTrade)

	api.POST("/quotes/batch", h.addQuotes)
	api.GET("/quotes", h.getQuotes)
}

func (h *Handler) listBeans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"beans": bean.Names()})
}

func (h *Handler) describeBean(c *gin.Context) {
	meta, err := bean.Lookup(c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": meta.BeanName(), "properties": meta.PropertyNames()})
}

func (h *Handler) addTrade(c *gin.Context) {
	var payload tradePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeStatus(c, http.StatusBadRequest, err)
		return
	}
	t, err := payload.toDomain()
	if err != nil {
		writeError(c, err)
		return
	}
	stored, err := h.trades.AddTrade(c.Request.Context(), t)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTradeResponse(stored))
}

func (h *Handler) getTrade(c *gin.Context) {
	t, err := h.loadTrade(c)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTradeResponse(t))
}

func (h *Handler) getTradeProperty(c *gin.Context) {
	t, err := h.loadTrade(c)
	if err != nil {
		writeError(c, err)
		return
	}
	name := c.Param("property")
	value, err := t.Property(name)
	if errors.Is(err, bean.ErrUnknownProperty) {
		writeStatus(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "value": value})
}

func (h *Handler) deriveTrade(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeStatus(c, http.StatusBadRequest, errMissingID)
		return
	}
	var raw map[string]rawJSON
	if err := c.ShouldBindJSON(&raw); err != nil {
		writeStatus(c, http.StatusBadRequest, err)
		return
	}
	changes, err := decodeDsfTradeChanges(raw)
	if err != nil {
		writeError(c, err)
		return
	}
	derived, err := h.trades.DeriveTrade(c.Request.Context(), id, changes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTradeResponse(derived))
}

func (h *Handler) loadTrade(c *gin.Context) (*dsf.ResolvedDsfTrade, error) {
	id := c.Param("id")
	if id == "" {
		return nil, errMissingID
	}
	return h.trades.GetTrade(c.Request.Context(), id)
}

func (h *Handler) getCurveGroup(c *gin.Context) {
	id, err := curveGroupIDFrom(c)
	if err != nil {
		writeError(c, err)
		return
	}
	group, err := h.curves.GetCurveGroup(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id.String(), "group": group})
}

func (h *Handler) putCurveGroup(c *gin.Context) {
	id, err := curveGroupIDFrom(c)
	if err != nil {
		writeError(c, err)
		return
	}
	var group curve.CurveGroup
	if err := c.ShouldBindJSON(&group); err != nil {
		writeStatus(c, http.StatusBadRequest, err)
		return
	}
	if err := h.curves.SaveCurveGroup(c.Request.Context(), id, group); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) buildFraNodeTrade(c *gin.Context) {
	var payload fraNodeTradePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeStatus(c, http.StatusBadRequest, err)
		return
	}
	node, err := payload.node()
	if err != nil {
		writeError(c, err)
		return
	}
	valuationDate := payload.ValuationDate
	if valuationDate.IsZero() {
		valuationDate = time.Now().UTC()
	}
	t, err := h.curves.BuildNodeTrade(c.Request.Context(), node, basics.ObservableSourceOrNone(payload.Source), valuationDate)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"node":         node.String(),
		"requirements": keyStrings(node.Requirements()),
		"trade":        t,
	})
}

func (h *Handler) addQuotes(c *gin.Context) {
	var payload []quotePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeStatus(c, http.StatusBadRequest, err)
		return
	}
	quotes := make([]marketdata.Quote, 0, len(payload))
	for i, p := range payload {
		q, err := p.toDomain()
		if err != nil {
			writeStatus(c, http.StatusBadRequest, fmt.Errorf("quote %d: %w", i, err))
			return
		}
		quotes = append(quotes, q)
	}
	if err := h.quotes.AddQuotes(c.Request.Context(), quotes); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"inserted": len(quotes)})
}

func (h *Handler) getQuotes(c *gin.Context) {
	key, err := basics.ParseObservableKey(c.Query("key"))
	if err != nil {
		writeStatus(c, http.StatusBadRequest, err)
		return
	}
	from, to, err := parseTimeRange(c)
	if err != nil {
		writeStatus(c, http.StatusBadRequest, err)
		return
	}
	quotes, err := h.quotes.GetQuotesBetween(c.Request.Context(), key, basics.ObservableSourceOrNone(c.Query("source")), from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, quotes)
}

func curveGroupIDFrom(c *gin.Context) (*curve.CurveGroupID, error) {
	name, err := curve.NewCurveGroupName(c.Param("name"))
	if err != nil {
		return nil, err
	}
	return curve.NewCurveGroupID(name, basics.ObservableSourceOrNone(c.Query("source")))
}

func keyStrings(keys []basics.ObservableKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	var validation *bean.ValidationError
	var property *bean.PropertyError
	switch {
	case errors.Is(err, interfaces.ErrNotFound), errors.Is(err, bean.ErrUnknownBean):
		return http.StatusNotFound
	case errors.Is(err, basics.ErrMarketDataNotFound):
		return http.StatusUnprocessableEntity
	case errors.As(err, &validation), errors.As(err, &property),
		errors.Is(err, curve.ErrUnknownRateProvider), errors.Is(err, appcurves.ErrNameMismatch),
		errors.Is(err, errMissingID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	writeStatus(c, statusFor(err), err)
}

func writeStatus(c *gin.Context, status int, err error) {
	if err == nil {
		status = http.StatusInternalServerError
		err = errors.New("unknown error")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// cacheMiddleware caches GET responses in Redis.
func (h *Handler) cacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.cache == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := cacheKey(c)
		ctx := c.Request.Context()

		if cached, err := h.cache.Get(ctx, key).Result(); err == nil {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json", []byte(cached))
			c.Abort()
			return
		}

		recorder := &responseRecorder{
			ResponseWriter: c.Writer,
			status:         http.StatusOK,
			body:           &bytes.Buffer{},
		}
		c.Writer = recorder

		c.Next()

		if recorder.status >= 200 && recorder.status < 300 && recorder.body.Len() > 0 {
			_ = h.cache.Set(ctx, key, recorder.body.Bytes(), h.cacheTTL).Err()
		}
	}
}

type responseRecorder struct {
	gin.ResponseWriter
	body   *bytes.Buffer
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(data []byte) (int, error) {
	r.body.Write(data)
	return r.ResponseWriter.Write(data)
}

func cacheKey(c *gin.Context) string {
	return fmt.Sprintf("cache:%s:%s?%s", c.Request.Method, c.Request.URL.Path, c.Request.URL.RawQuery)
}

func parseTimeRange(c *gin.Context) (time.Time, time.Time, error) {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return time.Time{}, time.Time{}, errMissingRange
	}
	from, err := time.Parse(time.RFC3339, fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := time.Parse(time.RFC3339, toStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}
