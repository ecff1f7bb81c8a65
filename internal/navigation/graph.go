// Package navigation plans paths across the resort: it builds the
// difficulty-filtered graph, searches it with A*, picks varied smart routes
// and answers nearest-waypoint queries.
package navigation

import (
	"github.com/Thalia-the-nerd/smartgoggles/internal/runlift"
	"github.com/Thalia-the-nerd/smartgoggles/internal/shared/geo"
	"github.com/Thalia-the-nerd/smartgoggles/internal/waypoint"
)

// Graph is a per-request snapshot of the resort. Edges[a][b] is the
// haversine length of the hop a→b.
type Graph struct {
	Nodes map[string]waypoint.Waypoint
	Edges map[string]map[string]float64
}

// BuildGraph connects consecutive waypoints of every run within ceiling and
// of every lift. Lifts also get the reverse hop. References to unknown
// waypoints are dropped; the count of dropped references is returned so the
// caller can report it.
func BuildGraph(wps []waypoint.Waypoint, runs []runlift.RunOrLift, ceiling runlift.Difficulty) (*Graph, int) {
	g := &Graph{
		Nodes: make(map[string]waypoint.Waypoint, len(wps)),
		Edges: make(map[string]map[string]float64, len(wps)),
	}
	for _, wp := range wps {
		g.Nodes[wp.ID] = wp
	}

	skipped := 0
	for _, r := range runs {
		if !r.Within(ceiling) {
			continue
		}
		for _, id := range r.WaypointIDs {
			if _, ok := g.Nodes[id]; !ok {
				skipped++
			}
		}
		for i := 0; i+1 < len(r.WaypointIDs); i++ {
			a, okA := g.Nodes[r.WaypointIDs[i]]
			b, okB := g.Nodes[r.WaypointIDs[i+1]]
			if !okA || !okB {
				continue
			}
			w := geo.Distance(a.Point(), b.Point())
			g.addEdge(a.ID, b.ID, w)
			if r.Kind == runlift.KindLift {
				g.addEdge(b.ID, a.ID, w)
			}
		}
	}
	return g, skipped
}

func (g *Graph) addEdge(from, to string, w float64) {
	adj, ok := g.Edges[from]
	if !ok {
		adj = make(map[string]float64)
		g.Edges[from] = adj
	}
	adj[to] = w
}

func (g *Graph) HasEdge(from, to string) bool {
	_, ok := g.Edges[from][to]
	return ok
}

// PathLength sums the edge weights along path. It returns false when two
// consecutive waypoints are not connected.
func (g *Graph) PathLength(path []waypoint.Waypoint) (float64, bool) {
	total := 0.0
	for i := 0; i+1 < len(path); i++ {
		w, ok := g.Edges[path[i].ID][path[i+1].ID]
		if !ok {
			return 0, false
		}
		total += w
	}
	return total, true
}
