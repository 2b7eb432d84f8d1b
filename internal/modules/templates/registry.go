// Package templates provides the static catalog of named trading strategies
// ("templates"). Each ledger trade records which template produced it; the
// catalog is the unit of correlation analysis.
package templates

// Template is an immutable catalog entry: a named, pre-defined rule set.
// The analytics engine treats it as an opaque key plus display metadata.
type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// builtinTemplates is the pre-defined strategy catalog.
var builtinTemplates = []Template{
	{
		ID:          "golden-cross",
		Name:        "Golden Cross",
		Description: "50-day moving average crossing above the 200-day moving average.",
	},
	{
		ID:          "rsi-oversold",
		Name:        "RSI Oversold Bounce",
		Description: "Entry when the 14-day RSI drops below 30 and turns upward.",
	},
	{
		ID:          "macd-bullish",
		Name:        "MACD Bullish Crossover",
		Description: "MACD line crossing above its signal line with positive histogram.",
	},
	{
		ID:          "breakout-52w",
		Name:        "52-Week Breakout",
		Description: "Price closing above its trailing 52-week high on elevated volume.",
	},
	{
		ID:          "mean-reversion",
		Name:        "Mean Reversion",
		Description: "Entry after an extended move below the 20-day Bollinger band.",
	},
	{
		ID:          "earnings-momentum",
		Name:        "Earnings Momentum",
		Description: "Entry on a post-earnings gap with analyst estimate revisions up.",
	},
	{
		ID:          "dividend-capture",
		Name:        "Dividend Capture",
		Description: "Entry before the ex-dividend date, exit shortly after.",
	},
	{
		ID:          "gap-fill",
		Name:        "Gap Fill",
		Description: "Fade of an opening gap back toward the prior session close.",
	},
}

// Registry supplies the template catalog
type Registry struct {
	templates []Template
	byID      map[string]Template
}

// NewRegistry creates a registry with the built-in catalog
func NewRegistry() *Registry {
	return newRegistry(builtinTemplates)
}

// NewRegistryWith creates a registry with a custom catalog (used by tests)
func NewRegistryWith(templates []Template) *Registry {
	return newRegistry(templates)
}

func newRegistry(templates []Template) *Registry {
	byID := make(map[string]Template, len(templates))
	for _, t := range templates {
		byID[t.ID] = t
	}
	return &Registry{
		templates: templates,
		byID:      byID,
	}
}

// All returns the catalog in definition order
func (r *Registry) All() []Template {
	out := make([]Template, len(r.templates))
	copy(out, r.templates)
	return out
}

// Get returns the template with the given id, or false when unknown
func (r *Registry) Get(id string) (Template, bool) {
	t, ok := r.byID[id]
	return t, ok
}

// Descriptions returns a name -> description map for display layers
func (r *Registry) Descriptions() map[string]string {
	out := make(map[string]string, len(r.templates))
	for _, t := range r.templates {
		out[t.Name] = t.Description
	}
	return out
}
