package plan_test

import (
	"reflect"
	"testing"

	"gpgpu/plan"
)

func TestGroupScenario1Identity(t *testing.T) {
	// identity packing yields one texture per value.
	l, err := plan.Group(vals(2, 4, 1), []int{0, 1, 2}, 4, plan.Buffers(1))
	if err != nil {
		t.Fatalf("Group: %v", err)
	}
	wantTex := [][]int{{0}, {1}, {2}}
	wantPass := [][]int{{0}, {1}, {2}}
	if !reflect.DeepEqual(l.Textures, wantTex) {
		t.Errorf("Textures = %v, want %v", l.Textures, wantTex)
	}
	if !reflect.DeepEqual(l.Passes, wantPass) {
		t.Errorf("Passes = %v, want %v", l.Passes, wantPass)
	}
	if !reflect.DeepEqual(l.ValueToTexture, []int{0, 1, 2}) {
		t.Errorf("ValueToTexture = %v, want [0 1 2]", l.ValueToTexture)
	}
	if !reflect.DeepEqual(l.ValueToPass, []int{0, 1, 2}) {
		t.Errorf("ValueToPass = %v, want [0 1 2]", l.ValueToPass)
	}
}

func TestGroupScenario2AutoPacked(t *testing.T) {
	// auto-packed layout merges undersized values into shared textures.
	packed, err := plan.Pack(vals(2, 4, 1), 4)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	l, err := plan.Group(vals(2, 4, 1), packed, 4, plan.Buffers(1))
	if err != nil {
		t.Fatalf("Group: %v", err)
	}
	wantTex := [][]int{{1}, {0, 2}}
	wantPass := [][]int{{0}, {1}}
	if !reflect.DeepEqual(l.Textures, wantTex) {
		t.Errorf("Textures = %v, want %v", l.Textures, wantTex)
	}
	if !reflect.DeepEqual(l.Passes, wantPass) {
		t.Errorf("Passes = %v, want %v", l.Passes, wantPass)
	}
	if !reflect.DeepEqual(l.ValueToTexture, []int{1, 0, 1}) {
		t.Errorf("ValueToTexture = %v, want [1 0 1]", l.ValueToTexture)
	}
	if !reflect.DeepEqual(l.ValueToPass, []int{1, 0, 1}) {
		t.Errorf("ValueToPass = %v, want [1 0 1]", l.ValueToPass)
	}
}

func TestGroupScenario3SinglePass(t *testing.T) {
	// same values, buffersMax=4 merges both textures into a single pass.
	packed, err := plan.Pack(vals(2, 4, 1), 4)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	l, err := plan.Group(vals(2, 4, 1), packed, 4, plan.Buffers(4))
	if err != nil {
		t.Fatalf("Group: %v", err)
	}
	wantPass := [][]int{{0, 1}}
	if !reflect.DeepEqual(l.Passes, wantPass) {
		t.Errorf("Passes = %v, want %v", l.Passes, wantPass)
	}
	for _, p := range l.ValueToPass {
		if p != 0 {
			t.Errorf("ValueToPass = %v, want all zero", l.ValueToPass)
			break
		}
	}
}

func TestGroupNoOutputNeverSplits(t *testing.T) {
	l, err := plan.Group(vals(4, 4, 4, 4), []int{0, 1, 2, 3}, 4, plan.NoOutput())
	if err != nil {
		t.Fatalf("Group: %v", err)
	}
	if len(l.Passes) != 1 {
		t.Fatalf("Passes = %v, want exactly one pass", l.Passes)
	}
	if len(l.Passes[0]) != 4 {
		t.Errorf("Passes[0] = %v, want all four textures", l.Passes[0])
	}
}

func TestGroupPartitionInvariants(t *testing.T) {
	// structural partition invariants, across a handful of shapes.
	cases := []struct {
		values      []plan.Value
		channelsMax int
		buffersMax  plan.BuffersMax
	}{
		{vals(1, 1, 1, 1, 1), 4, plan.Buffers(2)},
		{vals(4, 4, 4), 4, plan.Buffers(1)},
		{vals(2, 2, 2, 2, 2, 2), 4, plan.Buffers(3)},
		{vals(3, 1, 2, 2, 4), 4, plan.NoOutput()},
	}
	for ci, c := range cases {
		packed, err := plan.Pack(c.values, c.channelsMax)
		if err != nil {
			t.Fatalf("case %d: Pack: %v", ci, err)
		}
		l, err := plan.Group(c.values, packed, c.channelsMax, c.buffersMax)
		if err != nil {
			t.Fatalf("case %d: Group: %v", ci, err)
		}

		seen := make(map[int]bool)
		for _, tex := range l.Textures {
			sum := 0
			for _, v := range tex {
				if seen[v] {
					t.Fatalf("case %d: value %d appears in more than one texture", ci, v)
				}
				seen[v] = true
				sum += c.values[v].Channels
			}
			if sum > c.channelsMax {
				t.Errorf("case %d: texture %v sums to %d channels, want <= %d", ci, tex, sum, c.channelsMax)
			}
		}
		if len(seen) != len(c.values) {
			t.Errorf("case %d: textures cover %d values, want %d", ci, len(seen), len(c.values))
		}

		seenTex := make(map[int]bool)
		for _, pass := range l.Passes {
			if !c.buffersMax.IsNoOutput() && len(pass) > c.buffersMax.N() {
				t.Errorf("case %d: pass %v has %d textures, want <= %d", ci, pass, len(pass), c.buffersMax.N())
			}
			for _, ti := range pass {
				if seenTex[ti] {
					t.Fatalf("case %d: texture %d appears in more than one pass", ci, ti)
				}
				seenTex[ti] = true
			}
		}
		if len(seenTex) != len(l.Textures) {
			t.Errorf("case %d: passes cover %d textures, want %d", ci, len(seenTex), len(l.Textures))
		}

		for v := range c.values {
			if l.ValueToPass[v] != l.TextureToPass[l.ValueToTexture[v]] {
				t.Errorf("case %d: ValueToPass[%d] inconsistent with TextureToPass chain", ci, v)
			}
		}
	}
}

func TestGroupEmpty(t *testing.T) {
	l, err := plan.Group(nil, nil, 4, plan.Buffers(1))
	if err != nil {
		t.Fatalf("Group(empty): %v", err)
	}
	if len(l.Textures) != 0 || len(l.Passes) != 0 {
		t.Errorf("Group(empty) = %+v, want empty plans", l)
	}
}

func TestGroupCapabilityMismatch(t *testing.T) {
	if _, err := plan.Group(vals(1), []int{0}, 0, plan.Buffers(1)); err == nil {
		t.Error("Group with channelsMax=0: want error")
	}
	if _, err := plan.Group(vals(1), []int{0}, 4, plan.Buffers(0)); err == nil {
		t.Error("Group with buffersMax=0: want error")
	}
}
