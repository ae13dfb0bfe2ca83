package convert

import "github.com/dukex/blueprint/pkg/models"

// Layout places the nodes of g on a grid. A node's column is the length of
// the longest edge path leading to it and its row is its order among the
// nodes of that column. Cycles are broken at the earliest node still waiting
// for a predecessor, so every graph gets a layout.
func Layout(g *Graph, spacing float64) {
	n := len(g.Nodes)
	if n == 0 {
		return
	}

	index := g.Index()
	successors := make([][]int, n)
	pending := make([]int, n)

	for _, e := range g.Edges {
		from, fromOK := index[e.From]
		to, toOK := index[e.To]

		if !fromOK || !toOK || from == to {
			continue
		}

		successors[from] = append(successors[from], to)
		pending[to]++
	}

	depth := make([]int, n)
	placed := make([]bool, n)
	queue := make([]int, 0, n)

	for i := range n {
		if pending[i] == 0 {
			queue = append(queue, i)
		}
	}

	for count := 0; count < n; {
		if len(queue) == 0 {
			for i := range n {
				if !placed[i] {
					queue = append(queue, i)

					break
				}
			}
		}

		u := queue[0]
		queue = queue[1:]

		if placed[u] {
			continue
		}

		placed[u] = true
		count++

		for _, v := range successors[u] {
			if placed[v] {
				continue
			}

			depth[v] = max(depth[v], depth[u]+1)

			pending[v]--
			if pending[v] == 0 {
				queue = append(queue, v)
			}
		}
	}

	rows := make(map[int]int)

	for i := range g.Nodes {
		col := depth[i]
		row := rows[col]
		rows[col]++

		g.Nodes[i].Position = models.Position{
			X: float64(col) * spacing,
			Y: float64(row) * spacing,
		}
	}
}
