package dag

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/philopon/go-toposort"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopologicalSort_Chain(t *testing.T) {
	g := chain(t, "A", "B", "C")

	order, ok := g.TopologicalSort()
	require.True(t, ok)
	assert.Equal(t, []string{"C", "B", "A"}, order)
	assert.False(t, g.HasCycle())
	assert.NoError(t, g.DetectCycles())
}

func TestTopologicalSort_Empty(t *testing.T) {
	order, ok := New().TopologicalSort()
	assert.True(t, ok)
	assert.Empty(t, order)
}

func TestTopologicalSort_IsolatedNodesKeepInsertionOrder(t *testing.T) {
	g := New()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, g.AddNode(id))
	}
	order, ok := g.TopologicalSort()
	require.True(t, ok)
	assert.Equal(t, []string{"c", "a", "b"}, order)
}

func TestTopologicalSort_Diamond(t *testing.T) {
	g := New()
	require.NoError(t, g.AddDependency("app", "left"))
	require.NoError(t, g.AddDependency("app", "right"))
	require.NoError(t, g.AddDependency("left", "base"))
	require.NoError(t, g.AddDependency("right", "base"))

	order, ok := g.TopologicalSort()
	require.True(t, ok)
	assert.Equal(t, []string{"base", "left", "right", "app"}, order)
}

func TestCycleDetection(t *testing.T) {
	testCases := []struct {
		name      string
		edges     [][2]string
		wantCycle []string
	}{
		{
			name:      "three node cycle",
			edges:     [][2]string{{"A", "B"}, {"B", "C"}, {"C", "A"}},
			wantCycle: []string{"A", "B", "C", "A"},
		},
		{
			name:      "self loop",
			edges:     [][2]string{{"A", "A"}},
			wantCycle: []string{"A", "A"},
		},
		{
			name:      "two node cycle behind a clean prefix",
			edges:     [][2]string{{"root", "x"}, {"x", "y"}, {"y", "x"}},
			wantCycle: []string{"x", "y", "x"},
		},
		{
			name:  "acyclic",
			edges: [][2]string{{"A", "B"}, {"A", "C"}, {"B", "C"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := New()
			for _, e := range tc.edges {
				require.NoError(t, g.AddDependency(e[0], e[1]))
			}

			assert.Equal(t, tc.wantCycle != nil, g.HasCycle())
			assert.Equal(t, tc.wantCycle, g.FindCycle())

			order, ok := g.TopologicalSort()
			err := g.DetectCycles()
			if tc.wantCycle == nil {
				assert.True(t, ok)
				assert.Len(t, order, g.Len())
				assert.NoError(t, err)
				return
			}
			assert.False(t, ok)
			assert.Nil(t, order)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCyclicDependency)
			var cycleErr *CycleError
			require.ErrorAs(t, err, &cycleErr)
			assert.Equal(t, tc.wantCycle, cycleErr.Path)
		})
	}
}

func TestCycleError_Message(t *testing.T) {
	err := &CycleError{Path: []string{"a", "b", "a"}}
	assert.Equal(t, "cyclic dependency: a -> b -> a", err.Error())
}

func TestCycle_ClosingEdgeAfterSort(t *testing.T) {
	g := chain(t, "A", "B", "C")
	_, ok := g.TopologicalSort()
	require.True(t, ok)

	require.NoError(t, g.AddDependency("C", "A"))
	assert.True(t, g.HasCycle())
	order, ok := g.TopologicalSort()
	assert.False(t, ok)
	assert.Nil(t, order)

	g.RemoveDependency("C", "A")
	assert.False(t, g.HasCycle())
}

func TestAllDependencies(t *testing.T) {
	g := chain(t, "A", "B", "C")

	assert.ElementsMatch(t, []string{"B", "C"}, g.AllDependencies("A"))
	assert.ElementsMatch(t, []string{"C"}, g.AllDependencies("B"))
	assert.Empty(t, g.AllDependencies("C"))

	assert.ElementsMatch(t, []string{"A", "B"}, g.AllDependents("C"))
	assert.Empty(t, g.AllDependents("A"))
}

func TestAllDependencies_Diamond(t *testing.T) {
	g := New()
	require.NoError(t, g.AddDependency("app", "left"))
	require.NoError(t, g.AddDependency("app", "right"))
	require.NoError(t, g.AddDependency("left", "base"))
	require.NoError(t, g.AddDependency("right", "base"))

	deps := g.AllDependencies("app")
	assert.Equal(t, []string{"left", "right", "base"}, deps)
	assert.ElementsMatch(t, []string{"left", "right", "app"}, g.AllDependents("base"))
}

func TestAllDependencies_IncludesSelfOnCycle(t *testing.T) {
	g := New()
	require.NoError(t, g.AddDependency("a", "b"))
	require.NoError(t, g.AddDependency("b", "a"))
	require.NoError(t, g.AddDependency("c", "a"))

	assert.ElementsMatch(t, []string{"a", "b"}, g.AllDependencies("a"))
	assert.ElementsMatch(t, []string{"a", "b"}, g.AllDependencies("c"))
	assert.ElementsMatch(t, []string{"a", "b", "c"}, g.AllDependents("a"))
}

func TestDeepChain_NoStackOverflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping deep chain in short mode")
	}
	const depth = 100_000

	g := New()
	for i := 0; i < depth; i++ {
		require.NoError(t, g.AddDependency(fmt.Sprintf("n%d", i), fmt.Sprintf("n%d", i+1)))
	}

	order, ok := g.TopologicalSort()
	require.True(t, ok)
	require.Len(t, order, depth+1)
	assert.Equal(t, fmt.Sprintf("n%d", depth), order[0])
	assert.Equal(t, "n0", order[depth])

	require.NoError(t, g.AddDependency(fmt.Sprintf("n%d", depth), "n0"))
	cycle := g.FindCycle()
	require.Len(t, cycle, depth+2)
	assert.Equal(t, "n0", cycle[0])
	assert.Equal(t, "n0", cycle[len(cycle)-1])
}

// TestTopologicalSort_AgreesWithToposort cross-checks acyclicity against an
// independent Kahn implementation on random graphs.
func TestTopologicalSort_AgreesWithToposort(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		nodes := 2 + rng.Intn(12)
		edges := rng.Intn(nodes * 2)

		g := New()
		oracle := toposort.NewGraph(nodes)
		for i := 0; i < nodes; i++ {
			id := fmt.Sprintf("n%d", i)
			require.NoError(t, g.AddNode(id))
			oracle.AddNode(id)
		}
		seen := map[[2]int]bool{}
		for e := 0; e < edges; e++ {
			from, to := rng.Intn(nodes), rng.Intn(nodes)
			if from == to || seen[[2]int{from, to}] {
				continue
			}
			seen[[2]int{from, to}] = true
			fromID, toID := fmt.Sprintf("n%d", from), fmt.Sprintf("n%d", to)
			require.NoError(t, g.AddDependency(fromID, toID))
			// The oracle wants dependency -> dependent.
			oracle.AddEdge(toID, fromID)
		}

		_, wantOK := oracle.Toposort()
		order, gotOK := g.TopologicalSort()
		require.Equal(t, wantOK, gotOK, "round %d", round)
		require.Equal(t, !wantOK, g.HasCycle(), "round %d", round)
		if !gotOK {
			continue
		}

		position := make(map[string]int, len(order))
		for i, id := range order {
			position[id] = i
		}
		require.Len(t, position, nodes)
		for _, edge := range g.Edges() {
			assert.Less(t, position[edge.To], position[edge.From], "round %d: %s must precede %s", round, edge.To, edge.From)
		}
	}
}
