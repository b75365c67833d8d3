package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"route_finder/pkg/graph"
	"route_finder/pkg/routing"
)

// run is one strategy's outcome over the requested trip.
type run struct {
	strategy routing.Strategy
	result   routing.Result
	mean     time.Duration
	err      error
}

func main() {
	graphPath := flag.String("graph", "graph.json", "Path to graph dataset (.json or .bin)")
	startFlag := flag.String("start", "", "Start point as lat,lng")
	endFlag := flag.String("end", "", "End point as lat,lng")
	viaFlag := flag.String("via", "", "Optional via point as lat,lng")
	weight := flag.Float64("astar-weight", 1, "Weight applied to every A* heuristic")
	runs := flag.Int("runs", 5, "Timed repetitions per strategy")
	geojsonOut := flag.String("geojson", "", "Write every route to this GeoJSON file")
	flag.Parse()

	if *startFlag == "" || *endFlag == "" {
		fmt.Fprintln(os.Stderr, "Usage: compare --graph graph.json --start lat,lng --end lat,lng [--via lat,lng] [--runs 5] [--geojson out.geojson]")
		os.Exit(1)
	}
	if *runs < 1 {
		*runs = 1
	}

	start := mustPoint("start", *startFlag)
	end := mustPoint("end", *endFlag)

	log.Printf("Loading graph from %s...", *graphPath)
	g, err := graph.Load(*graphPath)
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}
	log.Printf("Loaded: %d nodes, %d edges", g.NumNodes(), g.NumEdges())

	snapper := routing.NewIndexedSnapper(g, 0)
	startSnap := mustSnap(snapper, "start", start)
	endSnap := mustSnap(snapper, "end", end)
	var viaSnap *routing.SnapResult
	if *viaFlag != "" {
		v := mustSnap(snapper, "via", mustPoint("via", *viaFlag))
		viaSnap = &v
	}

	strategies := []routing.Strategy{routing.Dijkstra{}, routing.BreadthFirst{}}
	for _, kind := range []routing.HeuristicKind{routing.GreatCircle, routing.Euclidean, routing.BearingDeviation} {
		a, err := routing.NewAStar(kind, *weight)
		if err != nil {
			log.Fatalf("A* %s: %v", kind, err)
		}
		strategies = append(strategies, a)
	}

	// Strategies share the graph read-only, so they can run side by side.
	results := make([]run, len(strategies))
	var wg sync.WaitGroup
	for i, s := range strategies {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = timeStrategy(s, g, startSnap, endSnap, viaSnap, *runs)
		}()
	}
	wg.Wait()

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STRATEGY\tCOST\tNODES\tEXPANDED\tMEAN")
	for _, r := range results {
		if r.err != nil {
			fmt.Fprintf(tw, "%s\terror: %v\t\t\t\n", r.strategy.Name(), r.err)
			continue
		}
		cost := "-"
		if r.result.Found() {
			cost = fmt.Sprintf("%.3f", r.result.Cost)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", r.strategy.Name(), cost, len(r.result.Path), r.result.Expanded, r.mean.Round(time.Microsecond))
	}
	tw.Flush()

	if *geojsonOut != "" {
		if err := writeGeoJSON(*geojsonOut, results); err != nil {
			log.Fatalf("Failed to write GeoJSON: %v", err)
		}
		log.Printf("Wrote %s", *geojsonOut)
	}
}

func timeStrategy(s routing.Strategy, g *graph.Graph, start, end routing.SnapResult, via *routing.SnapResult, runs int) run {
	ctx := context.Background()
	out := run{strategy: s}
	t0 := time.Now()
	for range runs {
		var res routing.Result
		var err error
		if via == nil {
			res, err = s.Search(ctx, g, start.Node.Coord, end.Node.Coord)
		} else {
			var first, second routing.Result
			if first, err = s.Search(ctx, g, start.Node.Coord, via.Node.Coord); err == nil {
				second, err = s.Search(ctx, g, via.Node.Coord, end.Node.Coord)
			}
			res = routing.JoinLegs(first, second, routing.ViaJoinDedupe)
		}
		if err != nil {
			out.err = err
			return out
		}
		out.result = res
	}
	out.mean = time.Since(t0) / time.Duration(runs)
	return out
}

func writeGeoJSON(path string, results []run) error {
	fc := geojson.NewFeatureCollection()
	for _, r := range results {
		if r.err != nil || len(r.result.Path) < 2 {
			continue
		}
		ls := make(orb.LineString, len(r.result.Path))
		for i, p := range r.result.Path {
			ls[i] = orb.Point{p.Lng, p.Lat}
		}
		f := geojson.NewFeature(ls)
		f.Properties["strategy"] = r.strategy.Name()
		f.Properties["cost"] = r.result.Cost
		f.Properties["expanded"] = r.result.Expanded
		fc.Append(f)
	}
	body, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(path, body, 0o644)
}

func mustPoint(name, s string) graph.Coordinate {
	var c graph.Coordinate
	if _, err := fmt.Sscanf(s, "%f,%f", &c.Lat, &c.Lng); err != nil {
		log.Fatalf("Invalid %s %q (expected lat,lng): %v", name, s, err)
	}
	if err := c.Validate(); err != nil {
		log.Fatalf("Invalid %s: %v", name, err)
	}
	return c
}

func mustSnap(s routing.Snapper, name string, c graph.Coordinate) routing.SnapResult {
	res, err := s.Snap(c)
	if err != nil {
		log.Fatalf("Failed to snap %s: %v", name, err)
	}
	log.Printf("%s snapped to %s (%.1f m away)", name, res.Node.Key, res.Dist)
	return res
}
