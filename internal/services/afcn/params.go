package afcn

import (
	"fmt"

	"FinSim/pkg/config"
)

// Settings is the per-agent configuration block. Every entry may be a fixed
// value or a distribution; MeanReversionTime defaults to TimeWindowSize.
type Settings struct {
	FundamentalWeight *config.Param `yaml:"fundamentalWeight" json:"fundamentalWeight" validate:"required"`
	ChartWeight       *config.Param `yaml:"chartWeight" json:"chartWeight" validate:"required"`
	FeedbackAsymmetry *config.Param `yaml:"feedbackAsymmetry" json:"feedbackAsymmetry" validate:"required"`
	NoiseWeight       *config.Param `yaml:"noiseWeight" json:"noiseWeight" validate:"required"`
	NoiseAsymmetry    *config.Param `yaml:"noiseAsymmetry" json:"noiseAsymmetry" validate:"required"`
	NoiseScale        *config.Param `yaml:"noiseScale" json:"noiseScale" validate:"required"`
	TimeWindowSize    *config.Param `yaml:"timeWindowSize" json:"timeWindowSize" validate:"required"`
	RiskAversionTerm  *config.Param `yaml:"riskAversionTerm" json:"riskAversionTerm" validate:"required"`
	MeanReversionTime *config.Param `yaml:"meanReversionTime,omitempty" json:"meanReversionTime,omitempty"`
}

// Params are the resolved base values of an agent. They never change after setup.
type Params struct {
	FundamentalWeight float64 `json:"fundamental_weight"`
	ChartWeight       float64 `json:"chart_weight"`
	FeedbackAsymmetry float64 `json:"feedback_asymmetry"`
	NoiseWeight       float64 `json:"noise_weight"`
	NoiseAsymmetry    float64 `json:"noise_asymmetry"`
	NoiseScale        float64 `json:"noise_scale"`
	TimeWindowSize    int     `json:"time_window_size"`
	RiskAversion      float64 `json:"risk_aversion"`
	MeanReversionTime int     `json:"mean_reversion_time"`
}

// Resolve samples every setting once, in declaration order, from r.
func (s Settings) Resolve(r config.Sampler) (Params, error) {
	var p Params
	draws := []struct {
		name  string
		param *config.Param
		dst   *float64
	}{
		{"fundamentalWeight", s.FundamentalWeight, &p.FundamentalWeight},
		{"chartWeight", s.ChartWeight, &p.ChartWeight},
		{"feedbackAsymmetry", s.FeedbackAsymmetry, &p.FeedbackAsymmetry},
		{"noiseWeight", s.NoiseWeight, &p.NoiseWeight},
		{"noiseAsymmetry", s.NoiseAsymmetry, &p.NoiseAsymmetry},
		{"noiseScale", s.NoiseScale, &p.NoiseScale},
	}
	for _, d := range draws {
		v, err := d.param.Sample(r)
		if err != nil {
			return Params{}, configErrorf("%s: %v", d.name, err)
		}
		*d.dst = v
	}

	window, err := s.TimeWindowSize.Sample(r)
	if err != nil {
		return Params{}, configErrorf("timeWindowSize: %v", err)
	}
	p.TimeWindowSize = int(window)

	if p.RiskAversion, err = s.RiskAversionTerm.Sample(r); err != nil {
		return Params{}, configErrorf("riskAversionTerm: %v", err)
	}

	p.MeanReversionTime = p.TimeWindowSize
	if s.MeanReversionTime != nil {
		mr, err := s.MeanReversionTime.Sample(r)
		if err != nil {
			return Params{}, configErrorf("meanReversionTime: %v", err)
		}
		p.MeanReversionTime = int(mr)
	}

	return p, p.Validate()
}

// Validate checks the structural preconditions on resolved parameters.
func (p Params) Validate() error {
	checks := []struct {
		ok  bool
		msg string
	}{
		{p.FundamentalWeight >= 0, fmt.Sprintf("fundamentalWeight must be >= 0, got %v", p.FundamentalWeight)},
		{p.ChartWeight >= 0, fmt.Sprintf("chartWeight must be >= 0, got %v", p.ChartWeight)},
		{p.NoiseWeight >= 0, fmt.Sprintf("noiseWeight must be >= 0, got %v", p.NoiseWeight)},
		{p.NoiseScale >= 0, fmt.Sprintf("noiseScale must be >= 0, got %v", p.NoiseScale)},
		{p.TimeWindowSize > 0, fmt.Sprintf("timeWindowSize must be > 0, got %d", p.TimeWindowSize)},
		{p.RiskAversion > 0, fmt.Sprintf("riskAversionTerm must be > 0, got %v", p.RiskAversion)},
		{p.MeanReversionTime > 0, fmt.Sprintf("meanReversionTime must be > 0, got %d", p.MeanReversionTime)},
	}
	for _, c := range checks {
		if !c.ok {
			return configErrorf("%s", c.msg)
		}
	}
	for name, v := range map[string]float64{
		"fundamentalWeight": p.FundamentalWeight,
		"chartWeight":       p.ChartWeight,
		"feedbackAsymmetry": p.FeedbackAsymmetry,
		"noiseWeight":       p.NoiseWeight,
		"noiseAsymmetry":    p.NoiseAsymmetry,
		"noiseScale":        p.NoiseScale,
		"riskAversionTerm":  p.RiskAversion,
	} {
		if !IsFinite(v) {
			return configErrorf("%s is not finite", name)
		}
	}
	return nil
}
