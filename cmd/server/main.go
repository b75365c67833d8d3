package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"route_finder/pkg/api"
	"route_finder/pkg/graph"
	"route_finder/pkg/places"
	"route_finder/pkg/routing"
)

func main() {
	graphPath := flag.String("graph", "graph.json", "Path to graph dataset (.json, or .bin snapshot)")
	port := flag.Int("port", 8080, "HTTP port")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin, * = any)")
	maxSnap := flag.Float64("max-snap", 0, "Reject markers farther than this many meters from a node (0 = unlimited)")
	viaJoin := flag.String("via-join", "dedupe", "How via legs are joined: dedupe or concat")
	heuristic := flag.String("heuristic", "great_circle", "A* heuristic: great_circle, euclidean or bearing_deviation")
	weight := flag.Float64("astar-weight", 1, "A* heuristic weight (1 = admissible)")
	linearSnap := flag.Bool("linear-snap", false, "Snap by linear scan instead of the R-tree index")
	timeout := flag.Duration("timeout", 5*time.Second, "Per-request timeout")
	flag.Parse()

	// Environment.
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Fatalf("Failed to read .env: %v", err)
		}
		log.Println("No .env file, using process environment")
	}
	placesCfg := places.Config{
		APIKey:   os.Getenv("GOOGLE_API_KEY"),
		CacheTTL: 10 * time.Minute,
	}
	if v := os.Getenv("PLACES_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			log.Fatalf("Invalid PLACES_RPS %q: %v", v, err)
		}
		placesCfg.RequestsPerSec = rps
	}
	placesClient := places.New(placesCfg)
	if !placesClient.Configured() {
		log.Println("WARNING: GOOGLE_API_KEY not set; marker lookups will be unavailable")
	}

	// Routing options.
	join, err := routing.ParseViaJoin(*viaJoin)
	if err != nil {
		log.Fatalf("Invalid -via-join: %v", err)
	}
	kind, err := routing.ParseHeuristic(*heuristic)
	if err != nil {
		log.Fatalf("Invalid -heuristic: %v", err)
	}
	astar, err := routing.NewAStar(kind, *weight)
	if err != nil {
		log.Fatalf("Invalid A* configuration: %v", err)
	}

	start := time.Now()

	// Load graph.
	log.Printf("Loading graph from %s...", *graphPath)
	g, err := graph.Load(*graphPath)
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}
	log.Printf("Loaded: %d nodes, %d edges", g.NumNodes(), g.NumEdges())

	engine := routing.NewEngine(g, routing.Options{
		MaxSnapDistMeters: *maxSnap,
		ViaJoin:           join,
		AStar:             astar,
		LinearSnap:        *linearSnap,
	})

	log.Printf("Ready in %s", time.Since(start).Round(time.Millisecond))

	// Setup HTTP server.
	cfg := api.DefaultConfig(fmt.Sprintf(":%d", *port))
	cfg.CORSOrigin = *corsOrigin
	cfg.RequestTimeout = *timeout

	handlers := api.NewHandlers(engine, placesClient)
	srv := api.NewServer(cfg, handlers)

	if err := api.ListenAndServe(srv); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}
