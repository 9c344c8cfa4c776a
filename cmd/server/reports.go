package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/raphaelsaraiva17/FeraFreshROI/internal/roi"
)

type reportListItem struct {
	CreatedAt  string
	Title      string
	ShareToken string
	NetProfit  float64
}

type reportsViewData struct {
	baseViewData
	Query   string
	Reports []reportListItem
}

type reportDetail struct {
	Title      string
	Notes      string
	CreatedAt  string
	ShareToken string
	Inputs     roi.Inputs
	Results    []roi.Result
}

type reportViewData struct {
	baseViewData
	Report   reportDetail
	Rows     []resultRow
	ShareURL string
}

type createReportRequest struct {
	Title  string     `json:"title"`
	Notes  string     `json:"notes"`
	Inputs roi.Inputs `json:"inputs"`
}

func (s *server) handleReportsList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	reports, err := s.listReports(query)
	if err != nil {
		http.Error(w, "failed to load reports", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "reports.html", reportsViewData{
		Query:   query,
		Reports: reports,
	})
}

// handleReportCreate stores a snapshot of the posted inputs together with
// the results computed right now. A saved report never changes, even if the
// catalog or defaults are edited later.
func (s *server) handleReportCreate(w http.ResponseWriter, r *http.Request) {
	var req createReportRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCalculateBody))
	if err := dec.Decode(&req); err != nil {
		http.Error(w, "invalid report request", http.StatusBadRequest)
		return
	}

	inputsJSON, err := json.Marshal(req.Inputs)
	if err != nil {
		http.Error(w, "failed to encode report inputs", http.StatusInternalServerError)
		return
	}
	resultsJSON, err := json.Marshal(roi.ComputeAll(req.Inputs))
	if err != nil {
		http.Error(w, "failed to encode report results", http.StatusInternalServerError)
		return
	}

	token := uuid.NewString()
	_, err = s.db.Exec(`
		INSERT INTO reports (share_token, title, notes, inputs_json, results_json)
		VALUES (?, ?, ?, ?, ?)
	`, token, strings.TrimSpace(req.Title), strings.TrimSpace(req.Notes), string(inputsJSON), string(resultsJSON))
	if err != nil {
		http.Error(w, "failed to save report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"token": token,
		"url":   s.baseURL + "/reports/" + token,
	})
}

func (s *server) handleReportDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.getReport(chi.URLParam(r, "token"))
	if errors.Is(err, sql.ErrNoRows) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "failed to load report", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "report_detail.html", reportViewData{
		Report:   detail,
		Rows:     formatResults(detail.Results),
		ShareURL: s.baseURL + "/reports/" + detail.ShareToken,
	})
}

// handleReportText renders the plain-text summary consumed by email bodies
// and clipboard export.
func (s *server) handleReportText(w http.ResponseWriter, r *http.Request) {
	detail, err := s.getReport(chi.URLParam(r, "token"))
	if errors.Is(err, sql.ErrNoRows) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "failed to load report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(formatReportText(detail, s.baseURL)))
}

func formatReportText(detail reportDetail, baseURL string) string {
	var b strings.Builder

	title := detail.Title
	if title == "" {
		title = "Herd health ROI report"
	}
	fmt.Fprintf(&b, "%s\n", title)
	fmt.Fprintf(&b, "Created: %s\n", detail.CreatedAt)
	if detail.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", detail.Notes)
	}
	fmt.Fprintf(&b, "Link: %s/reports/%s\n", baseURL, detail.ShareToken)

	in := detail.Inputs
	b.WriteString("\nAssumptions:\n")
	fmt.Fprintf(&b, "  Milking cows: %.0f\n", in.MilkingCows)
	fmt.Fprintf(&b, "  Fresh events/year: %.0f\n", in.EffectiveFresh())
	fmt.Fprintf(&b, "  Replacement cost: $%.2f, salvage value: $%.2f\n", in.ReplacementCost, in.SalvageValue)
	fmt.Fprintf(&b, "  Milk price: $%.2f/cwt, feed efficiency: %.2f lb milk/lb DM, DM cost: $%.3f/lb\n",
		in.MilkPrice, in.LbMilkPerLbDM, in.DMCost)
	fmt.Fprintf(&b, "  Death events: %.0f, sold events: %.0f\n", in.DeathEvents, in.SoldEvents)
	for _, ev := range in.HealthEvents {
		fmt.Fprintf(&b, "  %s: %.0f cases/year at $%.2f/case\n", ev.Name, ev.Count, ev.CostPerEvent)
	}

	b.WriteString("\nResults:\n")
	for _, res := range detail.Results {
		fmt.Fprintf(&b, "  %s:\n", res.Label)
		fmt.Fprintf(&b, "    Annual savings: $%.2f\n", res.SavingsAnnual)
		fmt.Fprintf(&b, "    Annual investment: $%.2f\n", res.InvestmentAnnual)
		fmt.Fprintf(&b, "    Net profit: $%.2f\n", res.NetProfitAnnual)
		fmt.Fprintf(&b, "    ROI: %.2f:1\n", res.ROIRatio)
		fmt.Fprintf(&b, "    Return per cow: $%.2f/year\n", res.ReturnPerCowYear)
		if res.MonthsToBreakeven != nil {
			fmt.Fprintf(&b, "    Breakeven: %.1f months (%.0f days)\n", *res.MonthsToBreakeven, *res.DaysToBreakeven)
		} else {
			b.WriteString("    Breakeven: not applicable\n")
		}
	}

	return b.String()
}

func (s *server) listReports(query string) ([]reportListItem, error) {
	search := "%" + query + "%"
	rows, err := s.db.Query(`
		SELECT
			created_at,
			COALESCE(title, ''),
			share_token,
			results_json
		FROM reports
		WHERE (? = '' OR COALESCE(title, '') LIKE ? OR COALESCE(notes, '') LIKE ?)
		ORDER BY datetime(created_at) DESC, id DESC
	`, query, search, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := make([]reportListItem, 0)
	for rows.Next() {
		var item reportListItem
		var resultsJSON string
		if err := rows.Scan(&item.CreatedAt, &item.Title, &item.ShareToken, &resultsJSON); err != nil {
			return nil, err
		}
		item.NetProfit = extractBaseNetProfit(resultsJSON)
		reports = append(reports, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reports, nil
}

// extractBaseNetProfit pulls the base-scenario net profit out of a stored
// results snapshot; 0 if the snapshot cannot be read.
func extractBaseNetProfit(resultsJSON string) float64 {
	var results []roi.Result
	if err := json.Unmarshal([]byte(resultsJSON), &results); err != nil {
		return 0
	}

	for _, res := range results {
		if res.Scenario == roi.Base {
			return res.NetProfitAnnual
		}
	}

	return 0
}

func (s *server) getReport(token string) (reportDetail, error) {
	var detail reportDetail
	var inputsJSON, resultsJSON string

	err := s.db.QueryRow(`
		SELECT COALESCE(title, ''), COALESCE(notes, ''), created_at, share_token, inputs_json, results_json
		FROM reports
		WHERE share_token = ?
	`, token).Scan(&detail.Title, &detail.Notes, &detail.CreatedAt, &detail.ShareToken, &inputsJSON, &resultsJSON)
	if err != nil {
		return reportDetail{}, err
	}

	if err := json.Unmarshal([]byte(inputsJSON), &detail.Inputs); err != nil {
		return reportDetail{}, fmt.Errorf("decode report inputs: %w", err)
	}
	if err := json.Unmarshal([]byte(resultsJSON), &detail.Results); err != nil {
		return reportDetail{}, fmt.Errorf("decode report results: %w", err)
	}

	return detail, nil
}
