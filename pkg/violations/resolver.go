package violations

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pa-inspections/inspections-engine/pkg/models"
)

// Resolver resolves violation codes against a lookup and remembers every
// cleaned code that had no entry.
type Resolver struct {
	lookup    Lookup
	unmatched map[string]struct{}
	logger    *zap.Logger
}

// NewResolver creates a resolver for one run.
func NewResolver(lookup Lookup, logger *zap.Logger) *Resolver {
	return &Resolver{
		lookup:    lookup,
		unmatched: make(map[string]struct{}),
		logger:    logger.Named("violations"),
	}
}

// Resolve resolves a single raw code. A miss yields NA for category,
// priority and risk and carries originalDescription through unchanged.
func (r *Resolver) Resolve(rawCode, originalDescription string) models.ViolationResolution {
	cleaned := CleanCode(rawCode)
	if entry, ok := r.lookup[cleaned]; ok {
		return models.ViolationResolution{
			Category:      entry.Category,
			PriorityLevel: entry.PriorityLevel,
			RiskLevel:     TranslateRisk(entry.PriorityLevel),
			Description:   entry.Description,
			Matched:       true,
		}
	}
	if cleaned != "" {
		r.unmatched[cleaned] = struct{}{}
	}
	return models.ViolationResolution{
		Category:      NotAvailable,
		PriorityLevel: NotAvailable,
		RiskLevel:     NotAvailable,
		Description:   originalDescription,
	}
}

// ResolveRecord fills the four detail fields of rec. Codes and descriptions
// are pipe-delimited and positionally aligned; missing descriptions are
// treated as empty. A record without codes gets four empty fields.
func (r *Resolver) ResolveRecord(rec *models.InspectionRecord) {
	if strings.TrimSpace(rec.ViolationCode) == "" {
		rec.SpotlightPA = ""
		rec.PriorityLevel = ""
		rec.RiskLevel = ""
		rec.RequirementDescription = ""
		return
	}

	codes := splitPipes(rec.ViolationCode)
	descriptions := splitPipes(rec.ViolationDescription)
	for len(descriptions) < len(codes) {
		descriptions = append(descriptions, "")
	}

	categories := make([]string, len(codes))
	priorities := make([]string, len(codes))
	risks := make([]string, len(codes))
	details := make([]string, len(codes))
	for i, code := range codes {
		res := r.Resolve(code, descriptions[i])
		categories[i] = res.Category
		priorities[i] = res.PriorityLevel
		risks[i] = res.RiskLevel
		details[i] = res.Description
	}

	rec.SpotlightPA = strings.Join(categories, " | ")
	rec.PriorityLevel = strings.Join(priorities, " | ")
	rec.RiskLevel = strings.Join(risks, " | ")
	rec.RequirementDescription = strings.Join(details, " | ")
}

// ResolveTable resolves every record and adds the detail columns to the
// table schema. Tables without a violation_code column are left untouched
// and reported as skipped.
func (r *Resolver) ResolveTable(table *models.InspectionTable) (resolved bool) {
	if !table.HasColumn(models.ColViolationCode) {
		r.logger.Info("No violation_code column, skipping violation details")
		return false
	}
	for _, rec := range table.Records {
		r.ResolveRecord(rec)
	}
	table.HasViolationDetails = true
	return true
}

// Unmatched returns the distinct cleaned codes with no lookup entry, sorted.
func (r *Resolver) Unmatched() []string {
	out := make([]string, 0, len(r.unmatched))
	for code := range r.unmatched {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Report logs the unmatched codes once.
func (r *Resolver) Report() {
	missing := r.Unmatched()
	if len(missing) == 0 {
		return
	}
	r.logger.Warn("Violation codes not found in food codes",
		zap.Int("count", len(missing)),
		zap.Strings("codes", missing))
}

func splitPipes(s string) []string {
	parts := strings.Split(s, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
