// A* pathfinding over a caller-supplied move-cost function.
package grid

import "container/heap"

// CostFunc reports the cost of stepping onto a coordinate and whether the
// step is allowed at all. Cost is in movement points (>= 1 for passable tiles).
type CostFunc func(c Coord) (cost int, passable bool)

// FindPath returns the cheapest path from start to goal, excluding start and
// including goal, or nil if no path exists. The goal tile itself must be
// passable according to costs.
func FindPath(start, goal Coord, width, height int, costs CostFunc) []Coord {
	if !InBounds(start, width, height) || !InBounds(goal, width, height) {
		return nil
	}
	if start == goal {
		return []Coord{}
	}

	open := &nodeQueue{}
	heap.Init(open)
	heap.Push(open, &pathNode{coord: start, priority: Distance(start, goal)})

	cameFrom := make(map[Coord]Coord)
	costSoFar := map[Coord]int{start: 0}

	for open.Len() > 0 {
		current := heap.Pop(open).(*pathNode)
		if current.coord == goal {
			return reconstruct(cameFrom, start, goal)
		}

		for _, next := range current.coord.Neighbors() {
			if !InBounds(next, width, height) {
				continue
			}
			stepCost, ok := costs(next)
			if !ok {
				continue
			}
			if stepCost < 1 {
				stepCost = 1
			}
			newCost := costSoFar[current.coord] + stepCost
			if prev, seen := costSoFar[next]; !seen || newCost < prev {
				costSoFar[next] = newCost
				cameFrom[next] = current.coord
				heap.Push(open, &pathNode{
					coord:    next,
					priority: newCost + Distance(next, goal),
				})
			}
		}
	}
	return nil
}

// PathExists reports whether any path connects start to goal.
func PathExists(start, goal Coord, width, height int, costs CostFunc) bool {
	if start == goal {
		return true
	}
	return FindPath(start, goal, width, height, costs) != nil
}

func reconstruct(cameFrom map[Coord]Coord, start, goal Coord) []Coord {
	var path []Coord
	for c := goal; c != start; c = cameFrom[c] {
		path = append(path, c)
	}
	// Reverse into start→goal order.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type pathNode struct {
	coord    Coord
	priority int
}

type nodeQueue []*pathNode

func (q nodeQueue) Len() int            { return len(q) }
func (q nodeQueue) Less(i, j int) bool  { return q[i].priority < q[j].priority }
func (q nodeQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x any)         { *q = append(*q, x.(*pathNode)) }
func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
