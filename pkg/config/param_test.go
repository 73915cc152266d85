package config

import (
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParamUnmarshal(t *testing.T) {
	var got struct {
		A *Param `yaml:"a"`
		B *Param `yaml:"b"`
		C *Param `yaml:"c"`
		D *Param `yaml:"d"`
		E *Param `yaml:"e"`
	}
	src := `
a: 0.25
b: {uniform: [1, 3]}
c: {normal: [0, 0.5]}
d:
  expon: [2]
e: {const: [40]}
`
	if err := yaml.Unmarshal([]byte(src), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	cases := []struct {
		p    *Param
		kind string
		n    int
	}{
		{got.A, DistFixed, 1},
		{got.B, DistUniform, 2},
		{got.C, DistNormal, 2},
		{got.D, DistExpon, 1},
		{got.E, DistConst, 1},
	}
	for i, c := range cases {
		if c.p == nil || c.p.Kind != c.kind || len(c.p.Values) != c.n {
			t.Fatalf("case %d: got %+v, want kind %s", i, c.p, c.kind)
		}
	}
}

func TestParamUnmarshalErrors(t *testing.T) {
	cases := map[string]string{
		"unknown":   `p: {gamma: [1, 2]}`,
		"arity":     `p: {uniform: [1]}`,
		"two dists": `p: {uniform: [1, 2], normal: [0, 1]}`,
		"order":     `p: {uniform: [3, 1]}`,
		"sigma":     `p: {normal: [0, -1]}`,
		"mean":      `p: {expon: [0]}`,
		"sequence":  `p: [1, 2]`,
		"text":      `p: abc`,
	}
	for name, src := range cases {
		var v struct {
			P *Param `yaml:"p"`
		}
		if err := yaml.Unmarshal([]byte(src), &v); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestParamSample(t *testing.T) {
	r := rand.New(rand.NewSource(3))

	if v, err := Fixed(4).Sample(r); err != nil || v != 4 {
		t.Fatalf("fixed: %v, %v", v, err)
	}
	for i := 0; i < 200; i++ {
		v, err := Uniform(1, 2).Sample(r)
		if err != nil || v < 1 || v > 2 {
			t.Fatalf("uniform draw %v, %v", v, err)
		}
		e, err := (&Param{Kind: DistExpon, Values: []float64{3}}).Sample(r)
		if err != nil || e < 0 {
			t.Fatalf("expon draw %v, %v", e, err)
		}
	}
	n, err := (&Param{Kind: DistNormal, Values: []float64{5, 0}}).Sample(r)
	if err != nil || n != 5 {
		t.Fatalf("degenerate normal: %v, %v", n, err)
	}
}

func TestParamSampleDeterministic(t *testing.T) {
	p := &Param{Kind: DistNormal, Values: []float64{0, 1}}
	a, _ := p.Sample(rand.New(rand.NewSource(11)))
	b, _ := p.Sample(rand.New(rand.NewSource(11)))
	if a != b {
		t.Fatalf("same seed produced %v and %v", a, b)
	}
}

func TestParamSampleNil(t *testing.T) {
	var p *Param
	if _, err := p.Sample(rand.New(rand.NewSource(1))); err == nil || !strings.Contains(err.Error(), "not set") {
		t.Fatalf("expected not-set error, got %v", err)
	}
}

func TestParamMarshalRoundTrip(t *testing.T) {
	in := map[string]*Param{
		"spread": Uniform(0.5, 1.5),
		"fixed":  Fixed(2),
		"decay":  {Kind: DistExpon, Values: []float64{0.2}},
	}
	out, err := yaml.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back map[string]*Param
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if len(back) != len(in) {
		t.Fatalf("got %d params, want %d:\n%s", len(back), len(in), out)
	}
	for k, want := range in {
		got := back[k]
		if got == nil || got.Kind != want.Kind || !reflect.DeepEqual(got.Values, want.Values) {
			t.Fatalf("%s: got %+v, want %+v\n%s", k, got, want, out)
		}
	}
}
