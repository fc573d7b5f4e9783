package step_test

import (
	"reflect"
	"testing"

	"gpgpu/api"
	"gpgpu/api/apitest"
	"gpgpu/plan"
	"gpgpu/step"
	"gpgpu/step/merge"
)

func ringPlan(t *testing.T) *plan.Plan {
	t.Helper()
	cfg := plan.Config{
		Values: []plan.Value{
			{Name: "a", Channels: 4},
			{Name: "b", Channels: 4},
		},
		BuffersMax: plan.Buffers(1),
		Packed:     []int{0, 1},
		Steps:      2,
	}
	p, err := plan.Build(cfg, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(p.Layout.Passes) != 2 {
		t.Fatalf("test setup: want 2 passes, got %d", len(p.Layout.Passes))
	}
	return p
}

func TestStepScenario6RingRotation(t *testing.T) {
	// A 2-step/2-pass plan, stepNow starting at 0. Calling Step twice
	// must produce the framebuffer sequence
	// [steps[1][0], steps[1][1], steps[0][0], steps[0][1]].
	stub := apitest.New(api.Limits{MaxChannels: 4, MaxDrawBuffers: 1, GLSL: "100"})
	d, err := step.New(step.Param{
		API:    stub,
		Plan:   ringPlan(t),
		Width:  4,
		Height: 4,
		Type:   api.TFloat,
		Merge:  merge.Off(),
		Count:  3,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Commands are compiled slot-major: [slot0 pass0, slot0 pass1,
	// slot1 pass0, slot1 pass1], i.e. indices 0,1 are steps[0][*] and
	// 2,3 are steps[1][*].
	if len(stub.Commands) != 4 {
		t.Fatalf("compiled %d commands, want 4", len(stub.Commands))
	}

	if err := d.Step(); err != nil {
		t.Fatalf("Step 1: %v", err)
	}
	if err := d.Step(); err != nil {
		t.Fatalf("Step 2: %v", err)
	}

	want := []int{2, 3, 0, 1}
	if !reflect.DeepEqual(stub.Invoked, want) {
		t.Errorf("framebuffer sequence = %v, want %v (steps[1][0],steps[1][1],steps[0][0],steps[0][1])",
			stub.Invoked, want)
	}
}

func TestStepClearPassClearsActiveFramebuffer(t *testing.T) {
	stub := apitest.New(api.Limits{MaxChannels: 4, MaxDrawBuffers: 1, GLSL: "100"})
	d, err := step.New(step.Param{
		API:        stub,
		Plan:       ringPlan(t),
		Width:      4,
		Height:     4,
		Type:       api.TFloat,
		Merge:      merge.Off(),
		Count:      3,
		ClearPass:  true,
		ClearParam: api.ClearParam{Color: [4]float32{0, 0, 0, 1}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := d.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if len(stub.Clears) != 2 {
		t.Fatalf("Clears = %d, want one per pass (2)", len(stub.Clears))
	}
}

func TestStepOnStepOnPassHooksRunInOrder(t *testing.T) {
	stub := apitest.New(api.Limits{MaxChannels: 4, MaxDrawBuffers: 1, GLSL: "100"})
	var trace []string
	d, err := step.New(step.Param{
		API:    stub,
		Plan:   ringPlan(t),
		Width:  4,
		Height: 4,
		Type:   api.TFloat,
		Merge:  merge.Off(),
		Count:  3,
		OnStep: func(_ any) any { trace = append(trace, "step"); return nil },
		OnPass: func(_ any, pass int) any { trace = append(trace, "pass"); return pass },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := d.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	want := []string{"step", "pass", "pass"}
	if !reflect.DeepEqual(trace, want) {
		t.Errorf("hook trace = %v, want %v", trace, want)
	}
}

func TestStepMergeModeCopiesEveryAttachment(t *testing.T) {
	cfg := plan.Config{
		Values: []plan.Value{
			{Name: "a", Channels: 2},
			{Name: "b", Channels: 2},
			{Name: "c", Channels: 4},
		},
		BuffersMax: plan.Buffers(1),
		Steps:      3,
	}
	p, err := plan.Build(cfg, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	stub := apitest.New(api.Limits{MaxChannels: 4, MaxDrawBuffers: 1, GLSL: "300 es", MaxSamplerSlots: 0})
	d, err := step.New(step.Param{
		API:    stub,
		Plan:   p,
		Width:  4,
		Height: 4,
		Type:   api.TFloat,
		Merge:  merge.On(),
		Count:  3,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := d.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	// One copy-command invocation per texture written this step (one
	// attachment per pass here, buffersMax=1): len(p.Layout.Textures).
	// The atlas copy command is compiled first, inside NewAtlas, before
	// any per-pass scratch command.
	wantCopies := len(p.Layout.Textures)
	if got := len(stub.Runs[0]); got != wantCopies {
		t.Errorf("atlas copy ran %d times, want %d", got, wantCopies)
	}
}

func TestStepNewRejectsNilAPIOrPlan(t *testing.T) {
	if _, err := step.New(step.Param{Plan: ringPlan(t)}); err == nil {
		t.Error("New with nil API: want error")
	}
	stub := apitest.New(api.Limits{MaxChannels: 4, MaxDrawBuffers: 1, GLSL: "100"})
	if _, err := step.New(step.Param{API: stub}); err == nil {
		t.Error("New with nil Plan: want error")
	}
}
