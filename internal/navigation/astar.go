package navigation

import (
	"container/heap"
	"math"

	"github.com/Thalia-the-nerd/smartgoggles/internal/shared/geo"
	"github.com/Thalia-the-nerd/smartgoggles/internal/waypoint"
)

// FindPath runs A* from start to goal with the straight-line distance to goal
// as heuristic. The returned path includes both ends.
func FindPath(g *Graph, start, goal string) ([]waypoint.Waypoint, bool) {
	src, ok := g.Nodes[start]
	if !ok {
		return nil, false
	}
	dst, ok := g.Nodes[goal]
	if !ok {
		return nil, false
	}
	if start == goal {
		return []waypoint.Waypoint{src}, true
	}

	target := dst.Point()
	h := func(id string) float64 {
		d := geo.Distance(g.Nodes[id].Point(), target)
		if math.IsInf(d, 0) {
			return 0
		}
		return d
	}

	gScore := map[string]float64{start: 0}
	cameFrom := make(map[string]string)
	closed := make(map[string]bool)

	pq := openSet{{id: start, f: h(start)}}
	heap.Init(&pq)

	for pq.Len() > 0 {
		cur := heap.Pop(&pq).(*openItem)
		if closed[cur.id] {
			continue
		}
		if cur.id == goal {
			return reconstruct(g, cameFrom, goal), true
		}
		closed[cur.id] = true

		for next, w := range g.Edges[cur.id] {
			if closed[next] {
				continue
			}
			tentative := gScore[cur.id] + w
			if old, seen := gScore[next]; seen && tentative >= old {
				continue
			}
			if math.IsInf(tentative, 1) {
				continue
			}
			gScore[next] = tentative
			cameFrom[next] = cur.id
			heap.Push(&pq, &openItem{id: next, f: tentative + h(next)})
		}
	}
	return nil, false
}

// PathExists reports whether goal is reachable from start.
func PathExists(g *Graph, start, goal string) bool {
	_, ok := FindPath(g, start, goal)
	return ok
}

func reconstruct(g *Graph, cameFrom map[string]string, goal string) []waypoint.Waypoint {
	var rev []string
	for id, ok := goal, true; ok; id, ok = cameFrom[id] {
		rev = append(rev, id)
	}
	path := make([]waypoint.Waypoint, len(rev))
	for i, id := range rev {
		path[len(rev)-1-i] = g.Nodes[id]
	}
	return path
}

type openItem struct {
	id string
	f  float64
}

// openSet is a lazy min-heap on f. Stale entries are skipped on pop. Equal f
// values are ordered by node id so searches are reproducible.
type openSet []*openItem

func (pq openSet) Len() int { return len(pq) }

func (pq openSet) Less(i, j int) bool {
	if pq[i].f != pq[j].f {
		return pq[i].f < pq[j].f
	}
	return pq[i].id < pq[j].id
}

func (pq openSet) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *openSet) Push(x any) { *pq = append(*pq, x.(*openItem)) }

func (pq *openSet) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}
