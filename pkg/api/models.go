package api

// LatLngJSON represents a lat/lng pair in JSON.
type LatLngJSON struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// MarkerJSON is a point picked on the map. placeId and address are passed
// through untouched.
type MarkerJSON struct {
	LatLng  LatLngJSON `json:"latLng"`
	PlaceID string     `json:"placeId,omitempty"`
	Address string     `json:"address,omitempty"`
}

// RouteRequest is the JSON body for POST /api/v1/route.
type RouteRequest struct {
	Start      *MarkerJSON `json:"start"`
	End        *MarkerJSON `json:"end"`
	Via        *MarkerJSON `json:"via,omitempty"`
	Algorithms []string    `json:"algorithms,omitempty"`
}

// SnapJSON is the graph node a marker was snapped to.
type SnapJSON struct {
	Key            string     `json:"key"`
	LatLng         LatLngJSON `json:"latLng"`
	DistanceMeters float64    `json:"distance_meters"`
}

// AlgorithmRouteJSON is one algorithm's route.
type AlgorithmRouteJSON struct {
	Algorithm string       `json:"algorithm"`
	Strategy  string       `json:"strategy"`
	Path      []LatLngJSON `json:"path"`
	Cost      float64      `json:"cost"`
	Expanded  int          `json:"expanded"`
	ElapsedMs float64      `json:"elapsed_ms"`
}

// RouteResponse is the JSON response for a successful route query.
type RouteResponse struct {
	Start  SnapJSON             `json:"start"`
	End    SnapJSON             `json:"end"`
	Via    *SnapJSON            `json:"via,omitempty"`
	Routes []AlgorithmRouteJSON `json:"routes"`
}

// LegacyRouteResponse is the JSON response for GET /api/route, the shape the
// map client renders directly. Times are whole milliseconds.
type LegacyRouteResponse struct {
	Dijkstra     []LatLngJSON `json:"dijkstra"`
	AStar        []LatLngJSON `json:"aStar"`
	BFS          []LatLngJSON `json:"bfs"`
	DijkstraTime int64        `json:"dijkstraTime"`
	AStarTime    int64        `json:"aStarTime"`
	BFSTime      int64        `json:"bfsTime"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	NumNodes int `json:"num_nodes"`
	NumEdges int `json:"num_edges"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}
