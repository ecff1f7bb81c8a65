package navigation

import (
	"sync"

	"github.com/MichaelTJones/pcg"

	"github.com/Thalia-the-nerd/smartgoggles/internal/runlift"
	"github.com/Thalia-the-nerd/smartgoggles/internal/waypoint"
)

// DefaultPool is how many shuffled candidates the final pick is drawn from.
const DefaultPool = 5

type Rand interface {
	Intn(n int) int
}

// PCGRand is a goroutine-safe PCG32 source.
type PCGRand struct {
	mu sync.Mutex
	r  *pcg.PCG32
}

func NewRand(seed int64) *PCGRand {
	r := pcg.NewPCG32()
	r.Seed(uint64(seed), 0xda3e39cb94b95bdb)
	return &PCGRand{r: r}
}

func (p *PCGRand) Intn(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return int(p.r.Bounded(uint32(n)))
}

// Candidate is one playable route from start to destination.
type Candidate struct {
	Waypoints []waypoint.Waypoint `json:"waypoints"`
	FirstStep runlift.RunOrLift   `json:"first_step"`
	Smart     bool                `json:"smart"`
}

// SmartRoute enumerates every run or lift leaving start within ceiling,
// completes each with A* to dest, shuffles the results and returns one drawn
// from the first pool of them.
func SmartRoute(g *Graph, runs []runlift.RunOrLift, start, dest string, ceiling runlift.Difficulty, pool int, rnd Rand) (Candidate, bool) {
	if _, ok := g.Nodes[start]; !ok {
		return Candidate{}, false
	}
	if pool <= 0 {
		pool = DefaultPool
	}

	var candidates []Candidate
	for _, first := range runs {
		if len(first.WaypointIDs) < 2 || first.First() != start || !first.Within(ceiling) {
			continue
		}
		head, ok := resolve(g, first.WaypointIDs)
		if !ok {
			continue
		}
		mid := first.Last()
		if mid == dest {
			candidates = append(candidates, Candidate{Waypoints: head, FirstStep: first, Smart: true})
			continue
		}
		rest, ok := FindPath(g, mid, dest)
		if !ok {
			continue
		}
		full := make([]waypoint.Waypoint, 0, len(head)+len(rest)-1)
		full = append(full, head...)
		full = append(full, rest[1:]...)
		candidates = append(candidates, Candidate{Waypoints: full, FirstStep: first, Smart: true})
	}
	if len(candidates) == 0 {
		return Candidate{}, false
	}

	shuffle(candidates, rnd)
	if len(candidates) > pool {
		candidates = candidates[:pool]
	}
	return candidates[rnd.Intn(len(candidates))], true
}

func resolve(g *Graph, ids []string) ([]waypoint.Waypoint, bool) {
	out := make([]waypoint.Waypoint, 0, len(ids))
	for _, id := range ids {
		wp, ok := g.Nodes[id]
		if !ok {
			return nil, false
		}
		out = append(out, wp)
	}
	return out, true
}

func shuffle(c []Candidate, rnd Rand) {
	for i := len(c) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		c[i], c[j] = c[j], c[i]
	}
}
