package admin

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-bakery/pkg/finance"
	"github.com/goliatone/go-bakery/pkg/renderers/html"
)

const dateLayout = "2006-01-02"

// handleFinance lists ledger entries with their totals. The optional branch,
// since and until query parameters narrow the list; until is inclusive of
// the whole day.
func (s *Server) handleFinance(w http.ResponseWriter, r *http.Request) {
	filter, query, err := financeFilter(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	entries, err := s.ledger.List(r.Context(), filter)
	if err != nil {
		s.serverError(w, r, err, "list ledger")
		return
	}
	branches, err := s.service.Branches(r.Context())
	if err != nil {
		s.serverError(w, r, err, "list branches")
		return
	}
	out, err := s.renderer.RenderFinance(r.Context(), entries, branches, finance.Summarize(entries), query)
	if err != nil {
		s.serverError(w, r, err, "render finance")
		return
	}
	s.writeHTML(w, http.StatusOK, out)
}

func financeFilter(values url.Values) (finance.Filter, html.FinanceQuery, error) {
	var filter finance.Filter
	query := html.FinanceQuery{
		Since: strings.TrimSpace(values.Get("since")),
		Until: strings.TrimSpace(values.Get("until")),
	}
	if raw := strings.TrimSpace(values.Get("branch")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return filter, query, fmt.Errorf("invalid branch %q", raw)
		}
		filter.BranchID = id
		query.BranchID = id
	}
	if query.Since != "" {
		since, err := time.Parse(dateLayout, query.Since)
		if err != nil {
			return filter, query, fmt.Errorf("invalid date %q", query.Since)
		}
		filter.Since = since
	}
	if query.Until != "" {
		until, err := time.Parse(dateLayout, query.Until)
		if err != nil {
			return filter, query, fmt.Errorf("invalid date %q", query.Until)
		}
		filter.Until = until.Add(24*time.Hour - time.Nanosecond)
	}
	return filter, query, nil
}
