package plan_test

import (
	"strings"
	"testing"

	"gpgpu/plan"
)

func TestBuildEndToEnd(t *testing.T) {
	cfg := plan.Config{
		Values:      vals(2, 4, 1),
		ChannelsMax: 4,
		BuffersMax:  plan.Buffers(1),
		Derives: []plan.Derive{
			{plan.OneAtStep{Value: 2, StepAgo: 0}},
			nil,
			{plan.OneAtStep{Value: 1, StepAgo: 0}},
		},
		Steps: 4,
		Bound: 1,
	}
	p, err := plan.Build(cfg, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(p.Layout.Textures) != 2 {
		t.Errorf("textures = %d, want 2 (auto-packed)", len(p.Layout.Textures))
	}
	if p.Config.Packed == nil {
		t.Error("Build did not record the packing permutation it used")
	}
	if !strings.Contains(p.String(), "steps=4") {
		t.Errorf("Plan.String() = %q, want it to mention steps=4", p.String())
	}
}

func TestBuildRejectsBadConfig(t *testing.T) {
	cases := []plan.Config{
		{Values: vals(0), ChannelsMax: 4, BuffersMax: plan.Buffers(1), Steps: 2, Bound: 1},
		{Values: vals(1), ChannelsMax: -1, BuffersMax: plan.Buffers(1), Steps: 2, Bound: 1},
		{Values: vals(1), ChannelsMax: 4, BuffersMax: plan.Buffers(0), Steps: 2, Bound: 1},
		{Values: vals(1), ChannelsMax: 4, BuffersMax: plan.Buffers(1), Steps: 1, Bound: 1},
		{Values: vals(1), ChannelsMax: 4, BuffersMax: plan.Buffers(1), Steps: 2, Bound: 2},
	}
	for i, c := range cases {
		if _, err := plan.Build(c, nil); err == nil {
			t.Errorf("case %d: Build(%+v): want error, got nil", i, c)
		}
	}
}

func TestBuildExplicitPackingSkipsPack(t *testing.T) {
	cfg := plan.Config{
		Values:      vals(2, 4, 1),
		ChannelsMax: 4,
		BuffersMax:  plan.Buffers(1),
		Packed:      []int{0, 1, 2},
		Steps:       2,
		Bound:       1,
	}
	p, err := plan.Build(cfg, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// identity packing yields one texture per value.
	if len(p.Layout.Textures) != 3 {
		t.Errorf("textures = %d, want 3 for identity packing", len(p.Layout.Textures))
	}
}

func TestBuildEmptyValues(t *testing.T) {
	cfg := plan.Config{Steps: 2, Bound: 1, BuffersMax: plan.Buffers(1)}
	p, err := plan.Build(cfg, nil)
	if err != nil {
		t.Fatalf("Build(empty): %v", err)
	}
	if len(p.Layout.Textures) != 0 || len(p.Layout.Passes) != 0 {
		t.Errorf("Build(empty) produced non-empty layout: %+v", p.Layout)
	}
}
