package plan

// Layout is the output of Group: the texture/pass partition of values and
// its three inverse maps.
type Layout struct {
	// Textures[t] is the ordered list of value indices packed into
	// texture t. sum(Values[v].Channels for v in Textures[t]) <= channelsMax.
	Textures [][]int
	// Passes[p] is the ordered list of texture indices written by pass p.
	// len(Passes[p]) <= buffersMax (when buffersMax is bounded).
	Passes [][]int

	ValueToTexture []int
	ValueToPass    []int
	TextureToPass  []int
}

// Group partitions values (in packed order) into textures, and textures
// into passes, respecting channelsMax and buffersMax.
//
// packed is a permutation of [0, len(values)); pass Pack's result, an
// explicit user permutation, or the identity (0, 1, 2, ...) to reproduce
// input order (at the cost of potentially more textures).
func Group(values []Value, packed []int, channelsMax int, buffersMax BuffersMax) (*Layout, error) {
	if channelsMax <= 0 {
		return nil, &CapabilityMismatchError{Reason: "channelsMax must be positive"}
	}
	if !buffersMax.IsNoOutput() && buffersMax.N() <= 0 {
		return nil, &CapabilityMismatchError{Reason: "buffersMax must be positive when outputs are demanded"}
	}

	n := len(values)
	textures := [][]int{}
	passes := [][]int{}

	var curTex []int
	curChan := 0

	closeTexture := func() {
		if len(curTex) == 0 {
			return
		}
		texIdx := len(textures)
		textures = append(textures, curTex)
		curTex = nil
		curChan = 0

		switch {
		case len(passes) == 0:
			passes = append(passes, []int{})
		case !buffersMax.IsNoOutput() && len(passes[len(passes)-1]) >= buffersMax.N():
			passes = append(passes, []int{})
		}
		p := len(passes) - 1
		passes[p] = append(passes[p], texIdx)
	}

	for _, vi := range packed {
		c := values[vi].Channels
		if curChan+c > channelsMax {
			closeTexture()
		}
		curTex = append(curTex, vi)
		curChan += c
	}
	closeTexture()

	valueToTexture := make([]int, n)
	for ti, tex := range textures {
		for _, vi := range tex {
			valueToTexture[vi] = ti
		}
	}
	textureToPass := make([]int, len(textures))
	for pi, pass := range passes {
		for _, ti := range pass {
			textureToPass[ti] = pi
		}
	}
	valueToPass := make([]int, n)
	for vi := range values {
		valueToPass[vi] = textureToPass[valueToTexture[vi]]
	}

	return &Layout{
		Textures:       textures,
		Passes:         passes,
		ValueToTexture: valueToTexture,
		ValueToPass:    valueToPass,
		TextureToPass:  textureToPass,
	}, nil
}
