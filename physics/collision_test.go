package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/exp/rand"
)

// outcomes keyed for set comparison.
func outcomeSet(outcomes []Outcome) map[Outcome]int {
	set := make(map[Outcome]int)
	for _, o := range outcomes {
		set[o]++
	}
	return set
}

func sameOutcomes(t *testing.T, got, want []Outcome) {
	t.Helper()
	g, w := outcomeSet(got), outcomeSet(want)
	if len(g) != len(w) {
		t.Fatalf("Expected %d distinct outcomes, got %d\nwant %v\ngot  %v", len(w), len(g), want, got)
	}
	for o, n := range w {
		if g[o] != n {
			t.Errorf("Expected %v %d times, got %d", o, n, g[o])
		}
	}
}

func TestCollision_MergeConservesMomentum(t *testing.T) {
	var f Factory
	heavy := f.New(BodyParams{Tier: Primary, Mass: 3, PhysicalRadius: 1, Vel: mgl64.Vec2{2, -1}})
	light := f.New(BodyParams{Tier: Primary, Mass: 1, PhysicalRadius: 1, Pos: mgl64.Vec2{1.5, 0}, Vel: mgl64.Vec2{-4, 5}})
	r := NewRegistry(heavy, light)

	outcomes := Detect(r, Exhaustive{})
	want := []Outcome{
		{Kind: Destroy, ID: light.ID()},
		{Kind: Merge, ID: heavy.ID(), Mass: 4, Vel: mgl64.Vec2{0.5, 0.5}},
	}
	if len(outcomes) != 2 || outcomes[0] != want[0] || outcomes[1].ID != heavy.ID() {
		t.Fatalf("Expected %v, got %v", want, outcomes)
	}
	if outcomes[1].Mass != 4 || !nearVec(outcomes[1].Vel, want[1].Vel, 1e-12) {
		t.Errorf("Expected mass 4 and velocity [0.5 0.5], got %v", outcomes[1])
	}

	if n := Apply(r, outcomes); n != 1 {
		t.Errorf("Expected 1 destroyed body, got %d", n)
	}
	if _, ok := r.Get(light.ID()); ok {
		t.Error("Expected lighter body to be removed")
	}
	if heavy.Mass != 4 || !nearVec(heavy.Vel, mgl64.Vec2{0.5, 0.5}, 1e-12) {
		t.Errorf("Expected merged heavy body, got %v", heavy)
	}
}

func TestCollision_TouchingCounts(t *testing.T) {
	var f Factory
	a := f.New(BodyParams{Tier: Primary, Mass: 2, PhysicalRadius: 1})
	b := f.New(BodyParams{Tier: Primary, Mass: 1, PhysicalRadius: 1, Pos: mgl64.Vec2{2, 0}})
	c := f.New(BodyParams{Tier: Primary, Mass: 1, PhysicalRadius: 1, Pos: mgl64.Vec2{-2.001, 0}})
	r := NewRegistry(a, b, c)

	if n := HandleCollisions(r, Exhaustive{}); n != 1 {
		t.Fatalf("Expected one collision, got %d", n)
	}
	if _, ok := r.Get(b.ID()); ok {
		t.Error("Expected touching body to be absorbed")
	}
	if _, ok := r.Get(c.ID()); !ok {
		t.Error("Expected separated body to survive")
	}
}

func TestCollision_EqualMassesLaterSurvives(t *testing.T) {
	var f Factory
	first := f.New(BodyParams{Tier: Primary, Mass: 1, PhysicalRadius: 1})
	second := f.New(BodyParams{Tier: Primary, Mass: 1, PhysicalRadius: 1})
	r := NewRegistry(first, second)

	out := Detect(r, Exhaustive{})
	if len(out) != 2 || out[0].ID != first.ID() || out[1].ID != second.ID() {
		t.Errorf("Expected %d destroyed and %d merged, got %v", first.ID(), second.ID(), out)
	}

	// the result doesn't depend on the detector
	sameOutcomes(t, Detect(r, DefaultBinned()), out)
	sameOutcomes(t, Detect(r, KDTree{}), out)
}

func TestCollision_FixedBodySurvives(t *testing.T) {
	var f Factory
	anchor := f.New(BodyParams{Tier: Primary, Mass: 1, PhysicalRadius: 1, Fixed: true})
	big := f.New(BodyParams{Tier: Primary, Mass: 100, PhysicalRadius: 1, Vel: mgl64.Vec2{3, 3}})
	r := NewRegistry(anchor, big)

	HandleCollisions(r, Exhaustive{})
	if _, ok := r.Get(big.ID()); ok {
		t.Fatal("Expected free body to be absorbed by the fixed one")
	}
	if anchor.Mass != 101 || anchor.Vel != (mgl64.Vec2{}) {
		t.Errorf("Expected fixed body to gain mass and keep its velocity, got %v", anchor)
	}
}

func TestCollision_SecondariesIgnoreEachOther(t *testing.T) {
	var f Factory
	r := NewRegistry(
		f.New(BodyParams{Tier: Secondary, Mass: 1, PhysicalRadius: 5}),
		f.New(BodyParams{Tier: Secondary, Mass: 2, PhysicalRadius: 5}),
	)
	for _, d := range []Detector{Exhaustive{}, DefaultBinned(), KDTree{}, QuadTree{}} {
		if out := Detect(r, d); len(out) != 0 {
			t.Errorf("%s: expected no collisions between secondaries, got %v", d.Name(), out)
		}
	}
}

func TestCollision_SurvivorAccumulates(t *testing.T) {
	var f Factory
	planet := f.New(BodyParams{Tier: Primary, Mass: 10, PhysicalRadius: 3, Vel: mgl64.Vec2{1, 0}})
	r1 := f.New(BodyParams{Tier: Secondary, Mass: 2, PhysicalRadius: 1, Pos: mgl64.Vec2{2, 0}, Vel: mgl64.Vec2{0, 6}})
	r2 := f.New(BodyParams{Tier: Secondary, Mass: 4, PhysicalRadius: 1, Pos: mgl64.Vec2{-2, 0}, Vel: mgl64.Vec2{-4, 0}})
	r := NewRegistry(planet, r1, r2)

	if n := HandleCollisions(r, Exhaustive{}); n != 2 {
		t.Fatalf("Expected both rocks absorbed, got %d", n)
	}
	if r.Len() != 1 || planet.Mass != 16 {
		t.Fatalf("Expected a single body of mass 16, got %d bodies, mass %v", r.Len(), planet.Mass)
	}
	// total momentum (10-16, 12) / 16
	if want := (mgl64.Vec2{-6.0 / 16, 12.0 / 16}); !nearVec(planet.Vel, want, 1e-12) {
		t.Errorf("Expected velocity %v, got %v", want, planet.Vel)
	}
}

func TestApply_SkipsStale(t *testing.T) {
	var f Factory
	a := f.New(BodyParams{Tier: Primary, Mass: 1})
	b := f.New(BodyParams{Tier: Primary, Mass: 1})
	r := NewRegistry(a, b)

	n := Apply(r, []Outcome{
		{Kind: Destroy, ID: a.ID()},
		{Kind: Merge, ID: a.ID(), Mass: 50},
		{Kind: Destroy, ID: a.ID()},
		{Kind: Merge, ID: ID(777), Mass: 50},
	})
	if n != 1 {
		t.Errorf("Expected one removal, got %d", n)
	}
	if r.Len() != 1 || b.Mass != 1 {
		t.Errorf("Expected only b left, untouched, got %d bodies", r.Len())
	}
}

func TestBinned_OneBodyPerBin(t *testing.T) {
	var f Factory
	body := func(x, y float64) *Body {
		return f.New(BodyParams{Tier: Primary, Mass: 1, PhysicalRadius: 1, Pos: mgl64.Vec2{x, y}})
	}
	bodies := []*Body{
		body(-10, -10), body(-5, -5), body(5, 5), body(10, 10), body(0, 0), body(2, 2),
	}
	shared := body(1, 1)
	r := NewRegistry(append(bodies, shared)...)

	bins := Binned{MaxDistance: 100, BinWidth: 2}.Bins(r)
	if len(bins) != 100 {
		t.Fatalf("Expected a 10x10 grid, got %d bins", len(bins))
	}
	total := 0
	for _, bin := range bins {
		total += len(bin)
		if len(bin) <= 1 {
			continue
		}
		found := false
		for _, b := range bin {
			found = found || b == shared
		}
		if !found {
			t.Errorf("Expected no more than a body per bin, got %v", bin)
		}
	}
	if total != len(bodies)+1 {
		t.Errorf("Expected every body binned once, got %d", total)
	}
	lo, hi, avg := BinStats(bins)
	if lo != 0 || hi != 2 || avg != 0 {
		t.Errorf("Expected stats 0/2/0, got %d/%d/%d", lo, hi, avg)
	}
}

func TestBinned_Degenerate(t *testing.T) {
	var f Factory
	d := Binned{MaxDistance: 10, BinWidth: 1}

	empty := NewRegistry()
	if bins := d.Bins(empty); len(bins) != 0 {
		t.Errorf("Expected no bins for no bodies, got %d", len(bins))
	}

	far := NewRegistry(f.New(BodyParams{Tier: Primary, Mass: 1, Pos: mgl64.Vec2{100, 0}}))
	if bins := d.Bins(far); len(bins) != 0 {
		t.Errorf("Expected no bins when nothing is in range, got %d", len(bins))
	}
	if out := Detect(far, d); len(out) != 0 {
		t.Errorf("Expected no collisions, got %v", out)
	}

	// all at the origin: a single cell
	origin := NewRegistry(
		f.New(BodyParams{Tier: Primary, Mass: 1, PhysicalRadius: 1}),
		f.New(BodyParams{Tier: Primary, Mass: 2, PhysicalRadius: 1}),
	)
	if bins := d.Bins(origin); len(bins) != 1 || len(bins[0]) != 2 {
		t.Errorf("Expected one bin holding both bodies, got %v", bins)
	}
}

func TestBinned_EdgeClamp(t *testing.T) {
	var f Factory
	r := NewRegistry(
		f.New(BodyParams{Tier: Primary, Mass: 1, Pos: mgl64.Vec2{-3, 3}}),
		f.New(BodyParams{Tier: Primary, Mass: 1, Pos: mgl64.Vec2{3, -3}}),
		f.New(BodyParams{Tier: Primary, Mass: 1, Pos: mgl64.Vec2{3, 3}}),
	)
	bins := Binned{MaxDistance: 10, BinWidth: 2.5}.Bins(r)
	if len(bins) != 4 {
		t.Fatalf("Expected a 2x2 grid, got %d", len(bins))
	}
	if len(bins[3]) != 1 || len(bins[1]) != 1 || len(bins[2]) != 1 {
		t.Errorf("Expected edge bodies in the last row and column, got %v", bins)
	}
}

func TestBinned_MatchesExhaustiveWithinBin(t *testing.T) {
	var f Factory
	rnd := rand.New(rand.NewSource(11))
	r := NewRegistry()
	for i := 0; i < 40; i++ {
		tier := Secondary
		if i%5 == 0 {
			tier = Primary
		}
		r.Add(f.New(BodyParams{
			Tier:           tier,
			Mass:           float64(1 + rnd.Intn(20)),
			PhysicalRadius: 1,
			Pos:            mgl64.Vec2{5, 5},
			Vel:            mgl64.Vec2{rnd.NormFloat64(), rnd.NormFloat64()},
		}))
	}

	d := Binned{MaxDistance: 100, BinWidth: 1}
	var filled [][]*Body
	for _, bin := range d.Bins(r) {
		if len(bin) > 0 {
			filled = append(filled, bin)
		}
	}
	if len(filled) != 1 {
		t.Fatalf("Expected a single occupied bin, got %d", len(filled))
	}

	sameOutcomes(t, Detect(r, d), settle(filled[0]))
	sameOutcomes(t, Detect(r, d), Detect(r, Exhaustive{}))
}

func TestBinned_MissesAcrossCells(t *testing.T) {
	var f Factory
	r := NewRegistry(
		f.New(BodyParams{Tier: Primary, Mass: 2, PhysicalRadius: 0.2, Pos: mgl64.Vec2{1.9, 0}}),
		f.New(BodyParams{Tier: Primary, Mass: 1, PhysicalRadius: 0.2, Pos: mgl64.Vec2{2.1, 0}}),
		f.New(BodyParams{Tier: Secondary, Mass: 1, Pos: mgl64.Vec2{10, 10}}),
	)

	if out := Detect(r, Binned{MaxDistance: 100, BinWidth: 2}); len(out) != 0 {
		t.Errorf("Expected the per-cell search to miss the border collision, got %v", out)
	}
	for _, d := range []Detector{Exhaustive{}, KDTree{}, QuadTree{}} {
		if out := Detect(r, d); len(out) != 2 {
			t.Errorf("%s: expected the border collision, got %v", d.Name(), out)
		}
	}
}

func TestTrees_MatchExhaustive(t *testing.T) {
	for seed := uint64(1); seed <= 5; seed++ {
		var f Factory
		rnd := rand.New(rand.NewSource(seed))
		r := NewRegistry()
		for i := 0; i < 8; i++ {
			r.Add(f.New(BodyParams{
				Tier:           Primary,
				Mass:           1e3 + rnd.Float64()*1e3,
				PhysicalRadius: 5 + rnd.Float64()*5,
				Pos:            mgl64.Vec2{rnd.Float64() * 100, rnd.Float64() * 100},
				Vel:            mgl64.Vec2{rnd.NormFloat64(), rnd.NormFloat64()},
			}))
		}
		for i := 0; i < 300; i++ {
			r.Add(f.New(BodyParams{
				Tier:           Secondary,
				Mass:           rnd.Float64() * 10,
				PhysicalRadius: rnd.Float64() * 2,
				Pos:            mgl64.Vec2{rnd.Float64() * 100, rnd.Float64() * 100},
				Vel:            mgl64.Vec2{rnd.NormFloat64(), rnd.NormFloat64()},
			}))
		}

		want := Detect(r, Exhaustive{})
		if len(want) == 0 {
			t.Fatalf("seed %d: expected some collisions to compare", seed)
		}
		for _, d := range []Detector{KDTree{}, QuadTree{}} {
			got := Detect(r, d)
			if len(got) != len(want) {
				t.Fatalf("%s seed %d: expected %d outcomes, got %d", d.Name(), seed, len(want), len(got))
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("%s seed %d: outcome %d expected %v, got %v", d.Name(), seed, i, want[i], got[i])
				}
			}
		}
	}
}

func TestQuadTree_CoincidentBodies(t *testing.T) {
	var f Factory
	r := NewRegistry()
	for i := 0; i < 50; i++ {
		tier, mass := Secondary, 1.0
		if i == 0 {
			tier, mass = Primary, 100
		}
		r.Add(f.New(BodyParams{Tier: tier, Mass: mass, PhysicalRadius: 1, Pos: mgl64.Vec2{3, 4}}))
	}

	groups := QuadTree{}.Candidates(r)
	if len(groups) != 1 || len(groups[0]) != 50 {
		t.Fatalf("Expected one group of 50, got %v", groups)
	}
	if n := HandleCollisions(r, QuadTree{}); n != 49 {
		t.Errorf("Expected the primary to absorb 49 bodies, got %d", n)
	}
}
