package server

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"roilens/extract"
	"roilens/finder"
	"roilens/geo"
	"roilens/invest"
	"roilens/models"
	"roilens/query"
	"roilens/store"
)

// ListingSource is the read side of the data store; satisfied by
// store.Store.
type ListingSource interface {
	Listings(ctx context.Context) ([]models.Listing, error)
}

// PageExtractor pulls listing fields out of a single page URL.
type PageExtractor interface {
	FromURL(ctx context.Context, pageURL string) extract.Result
}

// LinkFinder drives a browser search; nil when disabled.
type LinkFinder interface {
	Run(ctx context.Context, startURL, searchText string) finder.RunResult
}

type Server struct {
	source    ListingSource
	engine    *query.Engine
	market    *geo.Market
	extractor PageExtractor
	finder    LinkFinder
}

func New(source ListingSource, engine *query.Engine, market *geo.Market, extractor PageExtractor, linkFinder LinkFinder) *Server {
	return &Server{
		source:    source,
		engine:    engine,
		market:    market,
		extractor: extractor,
		finder:    linkFinder,
	}
}

func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	api.GET("/listings", s.listListings)
	api.GET("/market-summary", s.marketSummary)
	api.POST("/property", s.extractProperty)
	api.POST("/find-links", s.findLinks)
	r.GET("/healthz", s.health)

	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// listingView is one result row decorated with its parsed location and
// the investment metrics implied by the request's assumptions.
type listingView struct {
	models.Listing
	Location geo.Location   `json:"location"`
	Metrics  invest.Metrics `json:"metrics"`
}

type listingsResponse struct {
	Items           []listingView      `json:"items"`
	Total           int                `json:"total"`
	TotalPages      int                `json:"totalPages"`
	Page            int                `json:"page"`
	PageSize        int                `json:"pageSize"`
	ProvinceOptions []string           `json:"provinceOptions"`
	CityOptions     []string           `json:"cityOptions"`
	Assumptions     invest.Assumptions `json:"assumptions"`
}

func (s *Server) listListings(c *gin.Context) {
	all, err := s.source.Listings(c.Request.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrDataFileMissing) {
			status = http.StatusServiceUnavailable
		}
		log.Printf("Warning: listings load failed: %v", err)
		fail(c, status, "listing data unavailable", err.Error())
		return
	}

	params := query.Params{
		Q:           c.Query("q"),
		Country:     c.Query("country"),
		Province:    c.Query("province"),
		City:        c.Query("city"),
		PriceBucket: c.Query("priceBucket"),
		MinCap:      floatQuery(c, "minCap", 0),
		MinBeds:     floatQuery(c, "minBeds", 0),
		MinBaths:    floatQuery(c, "minBaths", 0),
		SortBy:      c.DefaultQuery("sortBy", "cap"),
		Page:        intQuery(c, "page", 1),
		PageSize:    intQuery(c, "pageSize", query.DefaultPageSize),
	}

	assumptions := assumptionsFromQuery(c)
	result := s.engine.Run(all, params)

	items := make([]listingView, 0, len(result.Items))
	for _, l := range result.Items {
		items = append(items, listingView{
			Listing:  l,
			Location: s.market.Parse(l.Address),
			Metrics:  invest.ComputeMetrics(l.Price, l.EstRent, l.NOI, assumptions),
		})
	}

	c.JSON(http.StatusOK, listingsResponse{
		Items:           items,
		Total:           result.Total,
		TotalPages:      result.TotalPages,
		Page:            result.Page,
		PageSize:        result.PageSize,
		ProvinceOptions: result.ProvinceOptions,
		CityOptions:     result.CityOptions,
		Assumptions:     assumptions,
	})
}

func assumptionsFromQuery(c *gin.Context) invest.Assumptions {
	a := invest.DefaultAssumptions()
	a.DownPaymentPct = floatQuery(c, "downPayment", a.DownPaymentPct)
	a.InterestRatePct = floatQuery(c, "interestRate", a.InterestRatePct)
	a.AmortYears = intQuery(c, "amortYears", a.AmortYears)
	a.VacancyPct = floatQuery(c, "vacancy", a.VacancyPct)
	a.ExpensePct = floatQuery(c, "expenses", a.ExpensePct)
	return a
}

func (s *Server) marketSummary(c *gin.Context) {
	all, err := s.source.Listings(c.Request.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrDataFileMissing) {
			status = http.StatusServiceUnavailable
		}
		log.Printf("Warning: listings load failed: %v", err)
		fail(c, status, "listing data unavailable", err.Error())
		return
	}

	summary := s.engine.Summarize(all, c.Query("country"), c.Query("province"), c.Query("city"))
	c.JSON(http.StatusOK, summary)
}

type propertyRequest struct {
	URL string `json:"url" binding:"required"`
}

func (s *Server) extractProperty(c *gin.Context) {
	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "url is required", err.Error())
		return
	}

	res := s.extractor.FromURL(c.Request.Context(), req.URL)
	c.JSON(http.StatusOK, res)
}

type findLinksRequest struct {
	URL    string `json:"url" binding:"required"`
	Search string `json:"search"`
}

func (s *Server) findLinks(c *gin.Context) {
	if s.finder == nil {
		fail(c, http.StatusServiceUnavailable, "link finder is disabled", "set FINDER_ENABLED=true to enable browser search")
		return
	}

	var req findLinksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "url is required", err.Error())
		return
	}

	res := s.finder.Run(c.Request.Context(), req.URL, req.Search)
	c.JSON(http.StatusOK, res)
}
