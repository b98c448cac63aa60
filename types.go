package engram

import "time"

// MemoryType controls an entry's default decay rate and default reliability.
type MemoryType string

const (
	TypeFactual    MemoryType = "factual"
	TypeEpisodic   MemoryType = "episodic"
	TypeRelational MemoryType = "relational"
	TypeEmotional  MemoryType = "emotional"
	TypeProcedural MemoryType = "procedural"
	TypeOpinion    MemoryType = "opinion"
)

// validMemoryTypes is checked by Add to reject unknown types.
var validMemoryTypes = map[MemoryType]bool{
	TypeFactual:    true,
	TypeEpisodic:   true,
	TypeRelational: true,
	TypeEmotional:  true,
	TypeProcedural: true,
	TypeOpinion:    true,
}

// Layer is a memory's coarse lifecycle state. There is no L1 in the core;
// it is reserved for host-level identity memories outside this engine.
type Layer string

const (
	LayerCore    Layer = "L2_core"
	LayerWorking Layer = "L3_working"
	LayerArchive Layer = "L4_archive"
)

// Polarity is the outcome of feedback-text sentiment detection.
type Polarity string

const (
	PolarityPositive Polarity = "positive"
	PolarityNegative Polarity = "negative"
	PolarityNeutral  Polarity = "neutral"
)

// ConfidenceLabel is the labeling ladder over a combined confidence score.
type ConfidenceLabel string

const (
	LabelCertain   ConfidenceLabel = "certain"
	LabelLikely    ConfidenceLabel = "likely"
	LabelUncertain ConfidenceLabel = "uncertain"
	LabelVague     ConfidenceLabel = "vague"
)

// MemoryEntry is the core persisted record. Fields mirror the logical
// schema's memories table (see pkg/store).
type MemoryEntry struct {
	ID                string
	Content           string
	MemoryType        MemoryType
	Layer             Layer
	Importance        float64
	WorkingStrength   float64
	CoreStrength      float64
	AccessCount       int
	ConsolidationCount int
	CreatedAt         time.Time
	LastAccessed      time.Time
	LastConsolidated  time.Time
	Pinned            bool
	Contradicts       string // memory id, or "" if none
	ContradictedBy    string // memory id, or "" if none
	Context           map[string]string
	Vector            []float32 // optional, nil unless semantic channel enabled
}

// AccessLogEntry is one row of the append-only access log.
type AccessLogEntry struct {
	MemoryID   string
	AccessedAt time.Time
}

// GraphLink is one (memory, entity, relation) occurrence, written by the
// host at add-time; core never extracts entities itself.
type GraphLink struct {
	MemoryID string
	NodeID   string
	Relation string
}

// HebbianLink is a directed co-activation edge. Both directions are written
// on strengthening, so the pair is conceptually symmetric but stored as two
// rows with PRIMARY KEY(source, target).
type HebbianLink struct {
	SourceID          string
	TargetID          string
	Strength          float64
	CoactivationCount int
	CreatedAt         time.Time
}

// Confidence is the two-dimensional score decorating a recall result.
type Confidence struct {
	Reliability float64
	Salience    float64
	Combined    float64
	Label       ConfidenceLabel
}

// Result is one ranked recall hit.
type Result struct {
	Entry      MemoryEntry
	Activation float64
	Confidence Confidence
}

// AddInput is the argument bundle for Memory.Add.
type AddInput struct {
	Content     string
	MemoryType  MemoryType // defaults to TypeFactual if empty
	Importance  float64    // must be in [0,1]; zero is a valid importance, not a "use the default" sentinel
	Context     map[string]string
	Pinned      bool
	Contradicts string // optional memory id
	Vector      []float32
}

// RecallOptions configures Memory.Recall.
type RecallOptions struct {
	Limit           int
	MinConfidence   float64
	GraphExpand     bool
	IncludeArchive  bool
	ContextKeywords []string
	Vector          []float32 // optional query embedding for the semantic channel
}

// DefaultRecallOptions returns spec defaults (limit=5, graph_expand=true).
func DefaultRecallOptions() RecallOptions {
	return RecallOptions{
		Limit:          5,
		MinConfidence:  0.0,
		GraphExpand:    true,
		IncludeArchive: false,
	}
}

// ConsolidateOptions configures one consolidation cycle.
type ConsolidateOptions struct {
	DtDays float64 // defaults to 1.0 if zero
}

// ConsolidateStats summarizes one consolidation cycle's effects.
type ConsolidateStats struct {
	Stepped   int
	Replayed  int
	Promoted  int
	Demoted   int
	Archived  int
}

// RewardOptions configures Memory.Reward.
type RewardOptions struct {
	RecentN   int     // defaults to 3
	Magnitude float64 // defaults to 0.15
}

// FeedbackResult is the outcome of polarity detection over free text.
type FeedbackResult struct {
	Polarity   Polarity
	Confidence float64
}

// Stats summarizes the whole store for host dashboards.
type Stats struct {
	CountsByLayer  map[Layer]int
	AvgWorking     float64
	AvgCore        float64
	HebbianCount   int
	AnomalyMetrics map[string]AnomalySummary
}

// AnomalySummary is the baseline of one tracked metric.
type AnomalySummary struct {
	Mean      float64
	StdDev    float64
	Samples   int
	Anomalous bool
}

// SessionResult is the outcome of a session-gated recall.
type SessionResult struct {
	Results []Result
	Reason  string // "empty_wm", "empty_probe", "topic_change", or "topic_continuous"
	FullRecall bool
}
