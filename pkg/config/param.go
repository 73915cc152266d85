package config

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Distribution kinds accepted by Param.
const (
	DistFixed   = "fixed"
	DistConst   = "const"
	DistUniform = "uniform"
	DistNormal  = "normal"
	DistExpon   = "expon"
)

// Sampler is the subset of *rand.Rand a Param draws from.
type Sampler interface {
	Float64() float64
	NormFloat64() float64
	ExpFloat64() float64
}

// Param is a numeric setting that is either a fixed value or a distribution
// sampled once at setup:
//
//	riskAversionTerm: 0.1
//	noiseScale: {uniform: [0.0001, 0.001]}
//	chartWeight: {expon: [1.0]}
type Param struct {
	Kind   string
	Values []float64
}

// Fixed returns a Param that always resolves to v.
func Fixed(v float64) *Param {
	return &Param{Kind: DistFixed, Values: []float64{v}}
}

// Uniform returns a Param drawn uniformly from [lo, hi].
func Uniform(lo, hi float64) *Param {
	return &Param{Kind: DistUniform, Values: []float64{lo, hi}}
}

// UnmarshalYAML accepts a scalar or a single-key distribution mapping.
func (p *Param) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		var v float64
		if err := n.Decode(&v); err != nil {
			return fmt.Errorf("param: %w", err)
		}
		*p = Param{Kind: DistFixed, Values: []float64{v}}
		return nil
	case yaml.MappingNode:
		var m map[string][]float64
		if err := n.Decode(&m); err != nil {
			return fmt.Errorf("param: %w", err)
		}
		if len(m) != 1 {
			keys := make([]string, 0, len(m))
			for k := range m {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			return fmt.Errorf("param: expected exactly one distribution, got [%s]", strings.Join(keys, ", "))
		}
		for k, v := range m {
			*p = Param{Kind: strings.ToLower(k), Values: v}
		}
		return p.check()
	default:
		return fmt.Errorf("param: line %d: expected scalar or mapping", n.Line)
	}
}

// MarshalYAML writes the Param back in its config form.
func (p Param) MarshalYAML() (interface{}, error) {
	if p.Kind == DistFixed && len(p.Values) == 1 {
		return p.Values[0], nil
	}
	return map[string][]float64{p.Kind: p.Values}, nil
}

func (p *Param) check() error {
	arity := map[string]int{
		DistFixed:   1,
		DistConst:   1,
		DistUniform: 2,
		DistNormal:  2,
		DistExpon:   1,
	}
	want, ok := arity[p.Kind]
	if !ok {
		return fmt.Errorf("param: unknown distribution %q", p.Kind)
	}
	if len(p.Values) != want {
		return fmt.Errorf("param: %s expects %d value(s), got %d", p.Kind, want, len(p.Values))
	}
	switch p.Kind {
	case DistUniform:
		if p.Values[0] > p.Values[1] {
			return fmt.Errorf("param: uniform bounds out of order [%v, %v]", p.Values[0], p.Values[1])
		}
	case DistNormal:
		if p.Values[1] < 0 {
			return fmt.Errorf("param: normal sigma must be non-negative, got %v", p.Values[1])
		}
	case DistExpon:
		if p.Values[0] <= 0 {
			return fmt.Errorf("param: expon mean must be positive, got %v", p.Values[0])
		}
	}
	return nil
}

// Sample resolves the Param using r.
func (p *Param) Sample(r Sampler) (float64, error) {
	if p == nil {
		return 0, fmt.Errorf("param: not set")
	}
	if err := p.check(); err != nil {
		return 0, err
	}
	switch p.Kind {
	case DistFixed, DistConst:
		return p.Values[0], nil
	case DistUniform:
		lo, hi := p.Values[0], p.Values[1]
		return lo + (hi-lo)*r.Float64(), nil
	case DistNormal:
		return p.Values[0] + p.Values[1]*r.NormFloat64(), nil
	default: // expon
		return p.Values[0] * r.ExpFloat64(), nil
	}
}
