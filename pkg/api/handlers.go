package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"route_finder/pkg/graph"
	"route_finder/pkg/places"
	"route_finder/pkg/routing"
)

// maxBodyBytes caps POST bodies.
const maxBodyBytes = 4096

// Places is the marker lookup backend.
type Places interface {
	Details(ctx context.Context, placeID string) (json.RawMessage, error)
	Nearest(ctx context.Context, at graph.Coordinate) (json.RawMessage, error)
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	router routing.Router
	places Places
}

// NewHandlers creates handlers with the given router and places backend.
func NewHandlers(router routing.Router, places Places) *Handlers {
	return &Handlers{
		router: router,
		places: places,
	}
}

// HandleRoute handles POST /api/v1/route.
func (h *Handlers) HandleRoute(c *gin.Context) {
	// Enforce Content-Type.
	if c.ContentType() != "application/json" {
		writeError(c, http.StatusBadRequest, "invalid_request", "")
		return
	}

	// Parse request.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", "")
		return
	}
	if req.Start == nil {
		writeError(c, http.StatusBadRequest, "invalid_request", "start")
		return
	}
	if req.End == nil {
		writeError(c, http.StatusBadRequest, "invalid_request", "end")
		return
	}

	// Validate coordinates.
	if err := validateCoord(req.Start.LatLng); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_coordinates", "start")
		return
	}
	if err := validateCoord(req.End.LatLng); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_coordinates", "end")
		return
	}
	rreq := routing.RouteRequest{
		Start:      toMarker(*req.Start),
		End:        toMarker(*req.End),
		Algorithms: req.Algorithms,
	}
	if req.Via != nil {
		if err := validateCoord(req.Via.LatLng); err != nil {
			writeError(c, http.StatusBadRequest, "invalid_coordinates", "via")
			return
		}
		via := toMarker(*req.Via)
		rreq.Via = &via
	}

	// Route.
	result, err := h.router.Route(c.Request.Context(), rreq)
	if err != nil {
		writeRouteError(c, err)
		return
	}

	if c.Query("format") == "geojson" {
		writeGeoJSON(c, result)
		return
	}
	c.JSON(http.StatusOK, toRouteResponse(result))
}

// HandleLegacyRoute handles GET /api/route, taking markers as bracketed query
// parameters: start[latLng][lat], start[latLng][lng], end[...] and mid[...].
func (h *Handlers) HandleLegacyRoute(c *gin.Context) {
	start, err := queryCoord(c, "start[latLng]")
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid_coordinates", "start")
		return
	}
	end, err := queryCoord(c, "end[latLng]")
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid_coordinates", "end")
		return
	}
	req := routing.RouteRequest{
		Start:      routing.Marker{LatLng: start, PlaceID: c.Query("start[placeId]"), Address: c.Query("start[address]")},
		End:        routing.Marker{LatLng: end, PlaceID: c.Query("end[placeId]"), Address: c.Query("end[address]")},
		Algorithms: routing.DefaultAlgorithms,
	}
	if _, ok := c.GetQuery("mid[latLng][lat]"); ok {
		mid, err := queryCoord(c, "mid[latLng]")
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid_coordinates", "mid")
			return
		}
		req.Via = &routing.Marker{LatLng: mid, PlaceID: c.Query("mid[placeId]"), Address: c.Query("mid[address]")}
	}

	result, err := h.router.Route(c.Request.Context(), req)
	if err != nil {
		writeRouteError(c, err)
		return
	}

	var resp LegacyRouteResponse
	for _, r := range result.Routes {
		path := toLatLngs(r.Path)
		ms := r.Elapsed.Milliseconds()
		switch r.Algorithm {
		case routing.AlgorithmDijkstra:
			resp.Dijkstra, resp.DijkstraTime = path, ms
		case routing.AlgorithmAStar:
			resp.AStar, resp.AStarTime = path, ms
		case routing.AlgorithmBFS:
			resp.BFS, resp.BFSTime = path, ms
		}
	}
	c.JSON(http.StatusOK, resp)
}

// HandleMarker handles GET /api/marker?placeId=...
func (h *Handlers) HandleMarker(c *gin.Context) {
	placeID := c.Query("placeId")
	if placeID == "" {
		writeError(c, http.StatusBadRequest, "invalid_request", "placeId")
		return
	}
	body, err := h.places.Details(c.Request.Context(), placeID)
	if err != nil {
		writePlacesError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}

// HandleNearest handles GET /api/nearest?latLng[lat]=...&latLng[lng]=...
func (h *Handlers) HandleNearest(c *gin.Context) {
	at, err := queryCoord(c, "latLng")
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid_coordinates", "latLng")
		return
	}
	body, err := h.places.Nearest(c.Request.Context(), at)
	if err != nil {
		writePlacesError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(c *gin.Context) {
	s := h.router.Stats()
	c.JSON(http.StatusOK, StatsResponse{NumNodes: s.Nodes, NumEdges: s.Edges})
}

func validateCoord(ll LatLngJSON) error {
	if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lng) || math.IsInf(ll.Lat, 0) || math.IsInf(ll.Lng, 0) {
		return errors.New("coordinates must be finite numbers")
	}
	if ll.Lat < -90 || ll.Lat > 90 || ll.Lng < -180 || ll.Lng > 180 {
		return errors.New("coordinates out of range")
	}
	return nil
}

// queryCoord reads prefix[lat] and prefix[lng] from the query string.
func queryCoord(c *gin.Context, prefix string) (graph.Coordinate, error) {
	lat, err := strconv.ParseFloat(c.Query(prefix+"[lat]"), 64)
	if err != nil {
		return graph.Coordinate{}, err
	}
	lng, err := strconv.ParseFloat(c.Query(prefix+"[lng]"), 64)
	if err != nil {
		return graph.Coordinate{}, err
	}
	if err := validateCoord(LatLngJSON{Lat: lat, Lng: lng}); err != nil {
		return graph.Coordinate{}, err
	}
	return graph.Coordinate{Lat: lat, Lng: lng}, nil
}

func toMarker(m MarkerJSON) routing.Marker {
	return routing.Marker{
		LatLng:  graph.Coordinate{Lat: m.LatLng.Lat, Lng: m.LatLng.Lng},
		PlaceID: m.PlaceID,
		Address: m.Address,
	}
}

func toLatLngs(path []graph.Coordinate) []LatLngJSON {
	out := make([]LatLngJSON, len(path))
	for i, p := range path {
		out[i] = LatLngJSON{Lat: p.Lat, Lng: p.Lng}
	}
	return out
}

func toSnapJSON(s routing.SnapResult) SnapJSON {
	return SnapJSON{
		Key:            s.Node.Key,
		LatLng:         LatLngJSON{Lat: s.Node.Coord.Lat, Lng: s.Node.Coord.Lng},
		DistanceMeters: s.Dist,
	}
}

func toRouteResponse(result *routing.RouteResult) RouteResponse {
	resp := RouteResponse{
		Start:  toSnapJSON(result.Start),
		End:    toSnapJSON(result.End),
		Routes: make([]AlgorithmRouteJSON, 0, len(result.Routes)),
	}
	if result.Via != nil {
		via := toSnapJSON(*result.Via)
		resp.Via = &via
	}
	for _, r := range result.Routes {
		resp.Routes = append(resp.Routes, AlgorithmRouteJSON{
			Algorithm: r.Algorithm,
			Strategy:  r.Strategy,
			Path:      toLatLngs(r.Path),
			Cost:      r.Cost,
			Expanded:  r.Expanded,
			ElapsedMs: float64(r.Elapsed) / float64(time.Millisecond),
		})
	}
	return resp
}

// writeGeoJSON renders the snapped markers as points and every route as a
// LineString. GeoJSON positions are [lng, lat].
func writeGeoJSON(c *gin.Context, result *routing.RouteResult) {
	fc := geojson.NewFeatureCollection()

	addSnap := func(role string, s routing.SnapResult) {
		f := geojson.NewFeature(orb.Point{s.Node.Coord.Lng, s.Node.Coord.Lat})
		f.Properties["role"] = role
		f.Properties["key"] = s.Node.Key
		f.Properties["distance_meters"] = s.Dist
		fc.Append(f)
	}
	addSnap("start", result.Start)
	if result.Via != nil {
		addSnap("via", *result.Via)
	}
	addSnap("end", result.End)

	for _, r := range result.Routes {
		// An empty route is an empty LineString; a single node is a Point.
		var geom orb.Geometry
		if len(r.Path) == 1 {
			geom = orb.Point{r.Path[0].Lng, r.Path[0].Lat}
		} else {
			ls := make(orb.LineString, len(r.Path))
			for i, p := range r.Path {
				ls[i] = orb.Point{p.Lng, p.Lat}
			}
			geom = ls
		}
		f := geojson.NewFeature(geom)
		f.Properties["algorithm"] = r.Algorithm
		f.Properties["strategy"] = r.Strategy
		f.Properties["cost"] = r.Cost
		f.Properties["expanded"] = r.Expanded
		f.Properties["elapsed_ms"] = float64(r.Elapsed) / float64(time.Millisecond)
		fc.Append(f)
	}

	body, err := fc.MarshalJSON()
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal_error", "")
		return
	}
	c.Data(http.StatusOK, "application/geo+json", body)
}

func writeRouteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, routing.ErrInvalidCoordinate):
		writeError(c, http.StatusBadRequest, "invalid_coordinates", "")
	case errors.Is(err, routing.ErrUnknownAlgorithm):
		writeError(c, http.StatusBadRequest, "unknown_algorithm", "algorithms")
	case errors.Is(err, routing.ErrPointTooFar):
		writeError(c, http.StatusUnprocessableEntity, "point_too_far_from_road", "")
	case errors.Is(err, routing.ErrEmptyGraph):
		writeError(c, http.StatusServiceUnavailable, "empty_graph", "")
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		writeError(c, http.StatusServiceUnavailable, "request_timeout", "")
	default:
		writeError(c, http.StatusInternalServerError, "internal_error", "")
	}
}

func writePlacesError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, places.ErrNotConfigured):
		writeError(c, http.StatusServiceUnavailable, "service_unavailable", "places")
	case errors.Is(err, places.ErrNoResults):
		writeError(c, http.StatusNotFound, "no_results", "")
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		writeError(c, http.StatusServiceUnavailable, "request_timeout", "")
	default:
		writeError(c, http.StatusBadGateway, "upstream_error", "")
	}
}

func writeError(c *gin.Context, status int, code, field string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: code, Field: field})
}
