// Package engram is an embeddable memory engine for autonomous agents.
//
// It stores text "memories" with cognitive metadata, ranks retrievals by a
// biologically-inspired activation score (ACT-R base-level + spreading +
// importance) rather than embedding cosine similarity, decays and
// consolidates memories over time (Memory-Chain dual-trace dynamics),
// forms associative links from co-activation (Hebbian), and prunes or
// archives weak traces (Ebbinghaus retrievability). A host process supplies
// the text content and consumes ranked recall results; engram does not call
// language models and does not require a vector index.
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/tonitangpotato/engram-ai"
//	)
//
//	func main() {
//	    ctx := context.Background()
//	    m, _ := engram.Open(ctx, engram.DefaultConfig("memories.db"))
//	    defer m.Close()
//
//	    _, _ = m.Add(ctx, engram.AddInput{Content: "Alice prefers dark mode"})
//
//	    results, _ := m.Recall(ctx, "dark mode", engram.RecallOptions{Limit: 5})
//	    for _, r := range results {
//	        println(r.Entry.Content, r.Activation)
//	    }
//
//	    stats, _ := m.Consolidate(ctx, engram.ConsolidateOptions{})
//	    println(stats.Promoted)
//	}
//
// # Presets
//
// Four convenience configuration bundles are provided — chatbot, task-agent,
// personal-assistant, researcher — tuned for different decay/consolidation
// tradeoffs (see Preset).
//
// # Concurrency
//
// The façade serializes mutations under one exclusive lock; recall takes a
// shared lock and fans its candidate-gathering channels out concurrently.
// See the package-level comment on Memory for the full lock discipline.
package engram
