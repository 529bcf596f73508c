package match

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/raushan1140/invoice-po-matcher/internal/config"
	"github.com/raushan1140/invoice-po-matcher/internal/entity"
)

// Matcher scores purchase orders against an invoice using weighted fuzzy
// similarity on vendor and item names.
type Matcher struct {
	cfg    config.MatchingConfig
	logger *slog.Logger
}

func NewMatcher(cfg config.MatchingConfig, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{cfg: cfg, logger: logger}
}

// FindCandidates scores every PO in the snapshot and returns the ones
// clearing the minimum overall score, best first. A similarity component
// contributes to the weighted score only when it independently clears its
// own threshold; a strong item match cannot rescue a weak vendor match and
// vice versa. Ties keep the snapshot's iteration order.
func (m *Matcher) FindCandidates(invoice entity.InvoiceRecord, pos []entity.PurchaseOrder) []entity.MatchCandidate {
	invoiceVendor := strings.TrimSpace(invoice.Vendor)

	var candidates []entity.MatchCandidate
	for _, po := range pos {
		c := entity.MatchCandidate{PO: po}

		if invoiceVendor != "" {
			c.VendorSimilarity = Ratio(strings.ToLower(invoiceVendor), strings.ToLower(po.Vendor))
			if c.VendorSimilarity >= m.cfg.VendorSimilarityThreshold {
				c.OverallScore += c.VendorSimilarity * m.cfg.VendorWeight
			}
		}

		for _, item := range invoice.LineItems {
			name := strings.TrimSpace(item.Item)
			if name == "" {
				continue
			}
			if s := Ratio(strings.ToLower(name), strings.ToLower(po.Item)); s > c.ItemSimilarity {
				c.ItemSimilarity = s
			}
		}
		if c.ItemSimilarity >= m.cfg.ItemSimilarityThreshold {
			c.OverallScore += c.ItemSimilarity * m.cfg.ItemWeight
		}

		if c.OverallScore >= m.cfg.MinOverallScore {
			candidates = append(candidates, c)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].OverallScore > candidates[j].OverallScore
	})

	m.logger.Debug("match.candidates",
		"invoice_vendor", invoiceVendor,
		"pos", len(pos),
		"candidates", len(candidates),
	)
	return candidates
}
