package topology

import (
	"container/heap"
	"errors"
	"sort"
)

var (
	// ErrUnknownNode is returned when an endpoint is not in the snapshot.
	ErrUnknownNode = errors.New("node not in current topology")
	// ErrNoPath is returned when the endpoints are in disconnected components.
	ErrNoPath = errors.New("no path between nodes")
)

// PathHop is one link of a resolved path, with the egress port out of U.
type PathHop struct {
	U         int     `json:"u"`
	V         int     `json:"v"`
	Bandwidth float64 `json:"bw"`
	Weight    float64 `json:"weight"`
	OutPort   int     `json:"out_port"`
}

// Path is a resolved weighted shortest path.
type Path struct {
	Nodes  []int
	Weight float64
	Hops   []PathHop
}

// FirstHop returns the switch after the source, or the source itself for a
// single-node path.
func (p *Path) FirstHop() int {
	if len(p.Nodes) < 2 {
		return p.Nodes[0]
	}
	return p.Nodes[1]
}

// spItem is a priority-queue entry for the Dijkstra run.
type spItem struct {
	id   int
	dist float64
}

type spQueue []spItem

func (q spQueue) Len() int { return len(q) }
func (q spQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].id < q[j].id
}
func (q spQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *spQueue) Push(x interface{}) { *q = append(*q, x.(spItem)) }

func (q *spQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// ShortestPath computes the weighted shortest path from src to dst over the
// snapshot's graph. Tie-breaking among equal-cost paths is deterministic:
// nodes are settled in (distance, id) order and on an exact distance tie
// the lower-id predecessor wins, so repeated runs over the same snapshot
// always return the same path.
//
// The graph store is gonum's; the traversal is done here because the
// predecessor choice on ties must be pinned down for the installer to be
// reproducible.
func (s *Snapshot) ShortestPath(src, dst int) (*Path, error) {
	if !s.HasNode(src) || !s.HasNode(dst) {
		return nil, ErrUnknownNode
	}
	if src == dst {
		return &Path{Nodes: []int{src}}, nil
	}

	dist := map[int]float64{src: 0}
	prev := make(map[int]int)
	done := make(map[int]bool)

	q := &spQueue{{id: src, dist: 0}}
	heap.Init(q)

	for q.Len() > 0 {
		cur := heap.Pop(q).(spItem)
		if done[cur.id] {
			continue
		}
		done[cur.id] = true
		if cur.id == dst {
			break
		}

		for _, nbr := range s.neighbors(cur.id) {
			if done[nbr] {
				continue
			}
			we := s.graph.WeightedEdge(int64(cur.id), int64(nbr))
			if we == nil {
				continue
			}
			nd := dist[cur.id] + we.Weight()
			old, seen := dist[nbr]
			switch {
			case !seen || nd < old:
				dist[nbr] = nd
				prev[nbr] = cur.id
				heap.Push(q, spItem{id: nbr, dist: nd})
			case nd == old && cur.id < prev[nbr]:
				prev[nbr] = cur.id
			}
		}
	}

	if !done[dst] {
		return nil, ErrNoPath
	}

	nodes := []int{dst}
	for at := dst; at != src; {
		at = prev[at]
		nodes = append(nodes, at)
	}
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}

	path := &Path{Nodes: nodes, Weight: dist[dst]}
	for i := 0; i+1 < len(nodes); i++ {
		u, v := nodes[i], nodes[i+1]
		we := s.graph.WeightedEdge(int64(u), int64(v))
		outPort, _ := s.EgressPort(u, v)
		path.Hops = append(path.Hops, PathHop{
			U:         u,
			V:         v,
			Bandwidth: s.Bandwidth(u, v),
			Weight:    we.Weight(),
			OutPort:   outPort,
		})
	}
	return path, nil
}

// neighbors returns the adjacent switch ids in ascending order, so the
// relaxation order (and with it the tie-break) is stable.
func (s *Snapshot) neighbors(id int) []int {
	var out []int
	it := s.graph.From(int64(id))
	for it.Next() {
		out = append(out, int(it.Node().ID()))
	}
	sort.Ints(out)
	return out
}
