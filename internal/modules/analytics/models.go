// Package analytics implements the strategy performance and correlation engine:
// per-template return series, pairwise correlation and diversification analysis,
// and the combinatorial search for the best-diversified multi-template portfolio.
//
// Every entry point computes over an immutable ledger snapshot taken at call
// time. There is no shared mutable state between calls; results are
// deterministic for an unchanged ledger.
package analytics

// Recommendation is the qualitative label for a template pair
type Recommendation string

const (
	RecommendationExcellent Recommendation = "excellent"
	RecommendationGood      Recommendation = "good"
	RecommendationNeutral   Recommendation = "neutral"
	RecommendationAvoid     Recommendation = "avoid"
)

// CorrelationMatrix is the full pairwise correlation matrix across templates.
// Matrix is square over Templates order: diagonal 1, symmetric, values in
// [-1, 1] with 0 for empty or zero-variance series.
type CorrelationMatrix struct {
	Templates    []string          `json:"templates" msgpack:"templates"`
	Matrix       [][]float64       `json:"matrix" msgpack:"matrix"`
	Descriptions map[string]string `json:"descriptions" msgpack:"descriptions"`
}

// TemplateCorrelation describes one unordered template pair
type TemplateCorrelation struct {
	TemplateA              string         `json:"template_a" msgpack:"template_a"`
	TemplateB              string         `json:"template_b" msgpack:"template_b"`
	Correlation            float64        `json:"correlation" msgpack:"correlation"`
	DiversificationBenefit float64        `json:"diversification_benefit" msgpack:"diversification_benefit"`
	CombinedWinRate        float64        `json:"combined_win_rate" msgpack:"combined_win_rate"`
	CombinedAvgReturn      float64        `json:"combined_avg_return" msgpack:"combined_avg_return"`
	Recommendation         Recommendation `json:"recommendation" msgpack:"recommendation"`
}

// PortfolioRecommendation is one ranked template subset of the requested size
type PortfolioRecommendation struct {
	Templates            []string `json:"templates" msgpack:"templates"`
	ExpectedWinRate      float64  `json:"expected_win_rate" msgpack:"expected_win_rate"`
	ExpectedAvgReturn    float64  `json:"expected_avg_return" msgpack:"expected_avg_return"`
	DiversificationScore float64  `json:"diversification_score" msgpack:"diversification_score"`
	RiskReduction        float64  `json:"risk_reduction" msgpack:"risk_reduction"`
	Rationale            string   `json:"rationale" msgpack:"rationale"`
}
