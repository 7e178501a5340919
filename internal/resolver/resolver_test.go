package resolver

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/deploygrid/internal/component"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func desc(name string, deps ...string) component.Descriptor {
	return component.Descriptor{Name: name, DependsOn: deps}
}

func TestResolve_OracleThenCoin(t *testing.T) {
	descriptors := []component.Descriptor{
		{
			Name:      "coin",
			DependsOn: []string{"oracle"},
			Template: component.Template{
				"supply":       component.Literal(cty.StringVal("1000000")),
				"oraclePrice":  component.Ref("oracle"),
				"initialPrice": component.Literal(cty.NumberIntVal(2000)),
			},
		},
		{Name: "oracle"},
	}

	plan, err := Resolve(descriptors)
	require.NoError(t, err)
	assert.Equal(t, []string{"oracle", "coin"}, plan.Order())
	assert.Equal(t, []string{"oracle"}, plan.Dependencies("coin"))
}

func TestResolve_RefImpliesEdge(t *testing.T) {
	descriptors := []component.Descriptor{
		{Name: "a", Template: component.Template{"b": component.Ref("b")}},
		{Name: "b"},
	}
	plan, err := Resolve(descriptors)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, plan.Order())
}

func TestResolve_TieBreaksByName(t *testing.T) {
	testCases := []struct {
		name        string
		descriptors []component.Descriptor
		want        []string
	}{
		{
			name:        "independent components",
			descriptors: []component.Descriptor{desc("c"), desc("a"), desc("b")},
			want:        []string{"a", "b", "c"},
		},
		{
			name:        "newly ready component competes with waiting ones",
			descriptors: []component.Descriptor{desc("z"), desc("b", "a"), desc("a")},
			want:        []string{"a", "b", "z"},
		},
		{
			name: "diamond",
			descriptors: []component.Descriptor{
				desc("top"), desc("left", "top"), desc("right", "top"), desc("bottom", "left", "right"),
			},
			want: []string{"top", "left", "right", "bottom"},
		},
		{
			name:        "empty",
			descriptors: nil,
			want:        []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := Resolve(tc.descriptors)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, plan.Order()); diff != "" {
				t.Fatalf("plan mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolve_UnknownDependency(t *testing.T) {
	_, err := Resolve([]component.Descriptor{desc("coin", "oracle")})
	require.Error(t, err)

	var unknown *UnknownDependencyError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "coin", unknown.Component)
	assert.Equal(t, "oracle", unknown.Dependency)
	assert.EqualError(t, err, `component "coin" depends on unknown component "oracle"`)
}

func TestResolve_UnknownReference(t *testing.T) {
	_, err := Resolve([]component.Descriptor{
		{Name: "coin", Template: component.Template{"oracle": component.Ref("oracle")}},
	})
	var unknown *UnknownDependencyError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "oracle", unknown.Dependency)
}

func TestResolve_Cycles(t *testing.T) {
	testCases := []struct {
		name        string
		descriptors []component.Descriptor
		wantCycle   []string
	}{
		{
			name:        "self dependency",
			descriptors: []component.Descriptor{desc("a", "a")},
			wantCycle:   []string{"a", "a"},
		},
		{
			name:        "direct cycle",
			descriptors: []component.Descriptor{desc("a", "b"), desc("b", "a")},
			wantCycle:   []string{"a", "b", "a"},
		},
		{
			name:        "longer cycle",
			descriptors: []component.Descriptor{desc("a", "d"), desc("b", "a"), desc("c", "b"), desc("d", "c")},
			wantCycle:   []string{"a", "d", "c", "b", "a"},
		},
		{
			name: "cycle behind a dependent",
			descriptors: []component.Descriptor{
				desc("root"), desc("a", "x"), desc("x", "y", "root"), desc("y", "x"),
			},
			wantCycle: []string{"x", "y", "x"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve(tc.descriptors)
			var cycle *CycleError
			require.ErrorAs(t, err, &cycle)
			assert.Equal(t, tc.wantCycle, cycle.Cycle)
			assert.ErrorContains(t, err, "dependency cycle detected")
		})
	}
}

func TestResolve_DuplicateNames(t *testing.T) {
	_, err := Resolve([]component.Descriptor{desc("a"), desc("a")})
	var dup *DuplicateComponentError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "a", dup.Name)

	_, err = Resolve([]component.Descriptor{desc("")})
	require.ErrorAs(t, err, &dup)
	assert.EqualError(t, err, "component name is required")
}

func TestPlan_LevelsAndDepth(t *testing.T) {
	plan, err := Resolve([]component.Descriptor{
		desc("oracle"), desc("feed"), desc("coin", "oracle"), desc("pool", "coin", "feed"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"feed", "oracle", "coin", "pool"}, plan.Order())
	assert.Equal(t, [][]string{{"feed", "oracle"}, {"coin"}, {"pool"}}, plan.Levels())

	d, ok := plan.Depth("pool")
	require.True(t, ok)
	assert.Equal(t, 2, d)

	_, ok = plan.Depth("missing")
	assert.False(t, ok)

	i, ok := plan.Index("coin")
	require.True(t, ok)
	assert.Equal(t, 2, i)
	assert.Equal(t, 4, plan.Len())
}

func TestPlan_OrderIsACopy(t *testing.T) {
	plan, err := Resolve([]component.Descriptor{desc("a"), desc("b")})
	require.NoError(t, err)

	order := plan.Order()
	order[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, plan.Order())
}

func TestPlan_Hash(t *testing.T) {
	p1, err := Resolve([]component.Descriptor{desc("b", "a"), desc("a")})
	require.NoError(t, err)
	p2, err := Resolve([]component.Descriptor{desc("a"), desc("b", "a")})
	require.NoError(t, err)
	p3, err := Resolve([]component.Descriptor{desc("a"), desc("b")})
	require.NoError(t, err)

	assert.Equal(t, p1.Hash(), p2.Hash())
	assert.NotEqual(t, p1.Hash(), p3.Hash())
	assert.Len(t, p1.Hash(), 64)
}

// randomDAG builds n components where each may only depend on components
// with a smaller index, which guarantees acyclicity. The input order is
// shuffled.
func randomDAG(r *rand.Rand, n int) []component.Descriptor {
	descriptors := make([]component.Descriptor, n)
	for i := 0; i < n; i++ {
		d := component.Descriptor{Name: fmt.Sprintf("c%03d", i)}
		for j := 0; j < i; j++ {
			if r.Intn(4) == 0 {
				d.DependsOn = append(d.DependsOn, fmt.Sprintf("c%03d", j))
			}
		}
		descriptors[i] = d
	}
	r.Shuffle(n, func(i, j int) { descriptors[i], descriptors[j] = descriptors[j], descriptors[i] })
	return descriptors
}

func TestResolve_RandomDAGsRespectEdges(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for iter := 0; iter < 50; iter++ {
		descriptors := randomDAG(r, 1+r.Intn(25))

		plan, err := Resolve(descriptors)
		require.NoError(t, err)
		require.Equal(t, len(descriptors), plan.Len())

		for _, d := range descriptors {
			pos, ok := plan.Index(d.Name)
			require.True(t, ok)
			for _, dep := range d.DependsOn {
				depPos, ok := plan.Index(dep)
				require.True(t, ok)
				assert.Less(t, depPos, pos, "%s must come after %s", d.Name, dep)
			}
		}

		again, err := Resolve(descriptors)
		require.NoError(t, err)
		assert.Equal(t, plan.Order(), again.Order(), "resolution must be deterministic")
	}
}

func TestResolve_RandomDAGsWithBackEdgeFail(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for iter := 0; iter < 30; iter++ {
		n := 2 + r.Intn(15)
		descriptors := make([]component.Descriptor, n)
		for i := 0; i < n; i++ {
			descriptors[i] = component.Descriptor{Name: fmt.Sprintf("c%03d", i)}
			if i > 0 {
				descriptors[i].DependsOn = []string{fmt.Sprintf("c%03d", i-1)}
			}
		}
		// Close the chain into a loop at a random point.
		from := r.Intn(n)
		descriptors[from].DependsOn = append(descriptors[from].DependsOn, fmt.Sprintf("c%03d", n-1))

		_, err := Resolve(descriptors)
		var cycle *CycleError
		require.ErrorAs(t, err, &cycle)
		require.NotEmpty(t, cycle.Cycle)
		assert.Equal(t, cycle.Cycle[0], cycle.Cycle[len(cycle.Cycle)-1])
	}
}
