package engram

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config bundles every host-visible tunable named in the external
// interfaces surface: per-type decay, consolidation constants, replay,
// suppression, reward, and SessionWM parameters.
type Config struct {
	Path string `yaml:"path"`

	// DecayRates maps memory type to its base decay rate, used by
	// Stability (pkg/forgetting). Unlisted types fall back to 1.0.
	DecayRates map[MemoryType]float64 `yaml:"decay_rates"`

	// Activation (pkg/activation)
	RecencyExponent  float64 `yaml:"recency_exponent"`   // d, default 0.5
	ContextWeight    float64 `yaml:"context_weight"`     // default 1.5
	ImportanceWeight float64 `yaml:"importance_weight"`  // default 0.5
	MinActivation    float64 `yaml:"min_activation"`     // default -10

	// Consolidation (pkg/consolidation)
	Mu1               float64 `yaml:"mu1"`                // working decay, default 0.15
	Mu2               float64 `yaml:"mu2"`                // core decay, default 0.005
	Alpha             float64 `yaml:"alpha"`               // transfer rate, default 0.08
	PromoteThreshold  float64 `yaml:"promote_threshold"`   // default 0.25
	ArchiveThreshold  float64 `yaml:"archive_threshold"`   // default 0.15
	DemoteThreshold   float64 `yaml:"demote_threshold"`    // default 0.05
	InterleaveRatio   float64 `yaml:"interleave_ratio"`    // default 0.3
	ReplayBoost       float64 `yaml:"replay_boost"`        // default 0.1
	DownscaleFactor   float64 `yaml:"downscale_factor"`    // default 0.95

	// Forgetting (pkg/forgetting)
	ForgetThreshold    float64 `yaml:"forget_threshold"`     // E threshold, default 0.01
	SuppressionFactor  float64 `yaml:"suppression_factor"`   // default 0.05
	OverlapThreshold   float64 `yaml:"overlap_threshold"`    // default 0.3

	// Hebbian (pkg/store)
	HebbianCeiling float64 `yaml:"hebbian_ceiling"` // default 10.0

	// Reward (pkg/reward)
	RewardRecentN   int     `yaml:"reward_recent_n"`  // default 3
	RewardMagnitude float64 `yaml:"reward_magnitude"` // default 0.15

	// Session working memory (pkg/session)
	SessionCapacity int     `yaml:"session_capacity"`  // default 7
	SessionDecay    float64 `yaml:"session_decay"`     // seconds, default 300
	SessionOverlap  float64 `yaml:"session_overlap"`   // default 0.6

	// Anomaly (pkg/anomaly)
	AnomalyWindow     int     `yaml:"anomaly_window"`      // default 100
	AnomalySigma      float64 `yaml:"anomaly_sigma"`       // default 2.0
	AnomalyMinSamples int     `yaml:"anomaly_min_samples"` // default 5

	// EnableSemanticChannel turns on the optional vector-similarity recall
	// widening. Off by default; vectors are optional on every entry
	// regardless of this flag.
	EnableSemanticChannel bool `yaml:"enable_semantic_channel"`

	// ExtendSuppressionToAll applies retrieval-induced forgetting to every
	// returned entry instead of only the top-ranked one.
	ExtendSuppressionToAll bool `yaml:"extend_suppression_to_all"`
}

// DefaultConfig returns the spec's literature-cited defaults for an
// embedded store at path.
func DefaultConfig(path string) *Config {
	return &Config{
		Path: path,
		DecayRates: map[MemoryType]float64{
			TypeFactual:    1.0,
			TypeEpisodic:   1.2,
			TypeRelational: 0.9,
			TypeEmotional:  0.7,
			TypeProcedural: 0.5,
			TypeOpinion:    1.1,
		},
		RecencyExponent:  0.5,
		ContextWeight:    1.5,
		ImportanceWeight: 0.5,
		MinActivation:    -10,

		Mu1:              0.15,
		Mu2:              0.005,
		Alpha:            0.08,
		PromoteThreshold: 0.25,
		ArchiveThreshold: 0.15,
		DemoteThreshold:  0.05,
		InterleaveRatio:  0.3,
		ReplayBoost:      0.1,
		DownscaleFactor:  0.95,

		ForgetThreshold:   0.01,
		SuppressionFactor: 0.05,
		OverlapThreshold:  0.3,

		HebbianCeiling: 10.0,

		RewardRecentN:   3,
		RewardMagnitude: 0.15,

		SessionCapacity: 7,
		SessionDecay:    300,
		SessionOverlap:  0.6,

		AnomalyWindow:     100,
		AnomalySigma:      2.0,
		AnomalyMinSamples: 5,

		EnableSemanticChannel:  false,
		ExtendSuppressionToAll: false,
	}
}

// Validate checks configuration invariants, returning ErrConfigError on
// the first violation found.
func (c *Config) Validate() error {
	if c.Path == "" {
		return wrapError("Config.Validate", fmt.Errorf("%w: path must not be empty", ErrConfigError))
	}
	if c.DownscaleFactor <= 0 || c.DownscaleFactor > 1 {
		return wrapError("Config.Validate", fmt.Errorf("%w: downscale_factor must be in (0,1]", ErrConfigError))
	}
	if c.SessionCapacity <= 0 {
		return wrapError("Config.Validate", fmt.Errorf("%w: session_capacity must be positive", ErrConfigError))
	}
	if c.AnomalyWindow <= 0 {
		return wrapError("Config.Validate", fmt.Errorf("%w: anomaly_window must be positive", ErrConfigError))
	}
	return nil
}

// LoadConfig reads a YAML file into a Config, filling any field the file
// leaves unset from DefaultConfig("") before validating. The defaults carry
// no store path, so the file must set path or validation fails.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapError("LoadConfig", err)
	}
	cfg := DefaultConfig("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, wrapError("LoadConfig", fmt.Errorf("%w: %v", ErrConfigError, err))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Preset returns one of the four named convenience bundles as a tuned
// override of DefaultConfig. db is the store path to use.
func Preset(name, db string) (*Config, error) {
	cfg := DefaultConfig(db)
	switch name {
	case "chatbot":
		// Fast churn, short attention span: aggressive decay, small
		// session window, quick promotion of anything repeated.
		cfg.Mu1 = 0.25
		cfg.PromoteThreshold = 0.2
		cfg.SessionCapacity = 5
		cfg.SessionDecay = 120
	case "task-agent":
		// Procedural memory dominates; slower decay on working strength
		// so multi-step plans survive between tool calls.
		cfg.Mu1 = 0.10
		cfg.DecayRates[TypeProcedural] = 0.3
		cfg.SessionCapacity = 10
		cfg.SessionDecay = 600
	case "personal-assistant":
		// Long-lived episodic/relational facts, conservative forgetting.
		cfg.ForgetThreshold = 0.005
		cfg.ArchiveThreshold = 0.1
		cfg.DecayRates[TypeEpisodic] = 0.8
	case "researcher":
		// Large working sets, a lower activation cutoff, and slower
		// working-to-core transfer.
		cfg.Alpha = 0.05
		cfg.SessionCapacity = 12
		cfg.MinActivation = -15
	default:
		return nil, wrapError("Preset", fmt.Errorf("%w: unknown preset %q", ErrConfigError, name))
	}
	return cfg, nil
}
