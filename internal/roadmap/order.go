package roadmap

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/jonathan/career-recommender/internal/types"
)

// prerequisiteGraph is the prerequisite graph induced on a set of missing skills.
// Node ids are indexes into ids; an edge u->v means u is a prerequisite of v.
type prerequisiteGraph struct {
	ids   []types.SkillID
	index map[types.SkillID]int64
	g     *simple.DirectedGraph
}

func buildGraph(missing []types.SkillID, prereqs func(types.SkillID) []types.SkillID) (*prerequisiteGraph, error) {
	ids := append([]types.SkillID{}, missing...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	pg := &prerequisiteGraph{
		ids:   ids,
		index: make(map[types.SkillID]int64, len(ids)),
		g:     simple.NewDirectedGraph(),
	}
	for i, id := range ids {
		pg.index[id] = int64(i)
		pg.g.AddNode(simple.Node(i))
	}

	var selfLoops []types.SkillID
	for _, id := range ids {
		for _, p := range prereqs(id) {
			if p == id {
				selfLoops = append(selfLoops, id)
				continue
			}
			from, ok := pg.index[p]
			if !ok {
				continue
			}
			pg.g.SetEdge(pg.g.NewEdge(simple.Node(from), simple.Node(pg.index[id])))
		}
	}

	if err := pg.checkAcyclic(selfLoops); err != nil {
		return nil, err
	}
	return pg, nil
}

// checkAcyclic fails with every skill that sits on a cycle
func (pg *prerequisiteGraph) checkAcyclic(selfLoops []types.SkillID) error {
	members := make(map[types.SkillID]bool)
	for _, id := range selfLoops {
		members[id] = true
	}

	if _, err := topo.Sort(pg.g); err != nil {
		var cycles topo.Unorderable
		if !errors.As(err, &cycles) {
			return err
		}
		for _, component := range cycles {
			for _, n := range component {
				members[pg.ids[n.ID()]] = true
			}
		}
	}

	if len(members) == 0 {
		return nil
	}
	skills := make([]types.SkillID, 0, len(members))
	for id := range members {
		skills = append(skills, id)
	}
	sort.Slice(skills, func(i, j int) bool { return skills[i] < skills[j] })
	return &DependencyCycleError{Skills: skills}
}

func (pg *prerequisiteGraph) node(id types.SkillID) graph.Node {
	return simple.Node(pg.index[id])
}

// precedes reports whether a must be learned before b
func (pg *prerequisiteGraph) precedes(a, b types.SkillID) bool {
	return a != b && topo.PathExistsIn(pg.g, pg.node(a), pg.node(b))
}

// orderMissing sorts missing skills by weight descending. Within equal weights a
// prerequisite precedes its dependents, and remaining ties go by SkillID.
func orderMissing(missing []types.MissingSkill, pg *prerequisiteGraph) []types.MissingSkill {
	sorted := append([]types.MissingSkill{}, missing...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Weight != sorted[j].Weight {
			return sorted[i].Weight > sorted[j].Weight
		}
		return sorted[i].SkillID < sorted[j].SkillID
	})

	out := make([]types.MissingSkill, 0, len(sorted))
	for start := 0; start < len(sorted); {
		end := start + 1
		for end < len(sorted) && sorted[end].Weight == sorted[start].Weight {
			end++
		}
		out = append(out, orderGroup(sorted[start:end], pg)...)
		start = end
	}
	return out
}

// orderGroup repeatedly emits the smallest SkillID that no remaining skill of the
// group must precede.
func orderGroup(group []types.MissingSkill, pg *prerequisiteGraph) []types.MissingSkill {
	if len(group) < 2 {
		return group
	}

	remaining := append([]types.MissingSkill{}, group...)
	out := make([]types.MissingSkill, 0, len(group))
	for len(remaining) > 0 {
		pick := -1
		for i, candidate := range remaining {
			blocked := false
			for j, other := range remaining {
				if i != j && pg.precedes(other.SkillID, candidate.SkillID) {
					blocked = true
					break
				}
			}
			if !blocked {
				pick = i
				break
			}
		}
		if pick < 0 {
			// unreachable for an acyclic graph
			pick = 0
		}
		out = append(out, remaining[pick])
		remaining = append(remaining[:pick], remaining[pick+1:]...)
	}
	return out
}
