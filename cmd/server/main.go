package main

import (
	"database/sql"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/raphaelsaraiva17/FeraFreshROI/internal/catalog"
	"github.com/raphaelsaraiva17/FeraFreshROI/internal/config"
	"github.com/raphaelsaraiva17/FeraFreshROI/internal/db"
	"github.com/raphaelsaraiva17/FeraFreshROI/internal/migrations"
	"github.com/raphaelsaraiva17/FeraFreshROI/internal/roi"
	"github.com/raphaelsaraiva17/FeraFreshROI/internal/seed"
)

type server struct {
	auth    *authService
	db      *sql.DB
	baseURL string
}

type baseViewData struct {
	ErrorMessage   string
	SuccessMessage string
}

type loginViewData struct {
	baseViewData
}

// calcDefaults mirrors the calc_defaults singleton row: the herd economics
// pre-filled into the public calculator form.
type calcDefaults struct {
	MilkingCows     float64
	ReplacementCost float64
	SalvageValue    float64
	MilkPrice       float64
	LbMilkPerLbDM   float64
	DMCost          float64
	DeathEvents     float64
	SoldEvents      float64
}

type catalogEntry struct {
	ID           int64
	Key          string
	Name         string
	CostPerEvent float64
	DefaultCount float64
	Active       bool
	Position     int
}

type calculatorViewData struct {
	baseViewData
	Defaults calcDefaults
	Catalog  []catalogEntry
	Fresh    float64
	Results  []resultRow
}

// resultRow is a scenario result preformatted for templates. Breakeven is a
// sentence rather than a pair of nullable numbers.
type resultRow struct {
	Label      string
	Savings    string
	Investment string
	NetProfit  string
	ROI        string
	PerCowYear string
	Breakeven  string
}

func formatResults(results []roi.Result) []resultRow {
	rows := make([]resultRow, 0, len(results))
	for _, res := range results {
		row := resultRow{
			Label:      res.Label,
			Savings:    fmt.Sprintf("$%.2f", res.SavingsAnnual),
			Investment: fmt.Sprintf("$%.2f", res.InvestmentAnnual),
			NetProfit:  fmt.Sprintf("$%.2f", res.NetProfitAnnual),
			ROI:        fmt.Sprintf("%.2f:1", res.ROIRatio),
			PerCowYear: fmt.Sprintf("$%.2f", res.ReturnPerCowYear),
			Breakeven:  "Not applicable",
		}
		if res.MonthsToBreakeven != nil && res.DaysToBreakeven != nil {
			row.Breakeven = fmt.Sprintf("%.1f months (%.0f days)", *res.MonthsToBreakeven, *res.DaysToBreakeven)
		}
		rows = append(rows, row)
	}
	return rows
}

type defaultsViewData struct {
	baseViewData
	Defaults calcDefaults
}

type catalogViewData struct {
	baseViewData
	Entries []catalogEntry
}

func main() {
	cfg := config.Load()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database, "migrations"); err != nil {
			log.Fatalf("failed to run database migrations: %v", err)
		}
	}

	defaults, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("failed to load catalog file: %v", err)
	}

	stats, err := seed.Run(database, seed.Config{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		Defaults:      defaults,
	})
	if err != nil {
		log.Fatalf("failed to run startup seed: %v", err)
	}
	if stats.Inserts > 0 {
		log.Printf("seed inserted %d rows", stats.Inserts)
	}

	auth := newAuthService(database, cfg.SessionSecret)

	srv := &server{auth: auth, db: database, baseURL: strings.TrimRight(cfg.BaseURL, "/")}

	r := chi.NewRouter()
	r.Use(srv.adminAuthMiddleware)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))
	r.Get("/", srv.handleCalculator)
	r.Post("/api/calculate", srv.handleCalculate)
	r.Get("/reports", srv.handleReportsList)
	r.Post("/reports", srv.handleReportCreate)
	r.Get("/reports/{token}", srv.handleReportDetail)
	r.Get("/reports/{token}/text", srv.handleReportText)
	r.Get("/login", srv.handleLoginForm)
	r.Post("/login", srv.handleLoginSubmit)
	r.Post("/logout", srv.handleLogout)
	r.Get("/admin/defaults", srv.handleAdminDefaultsForm)
	r.Post("/admin/defaults", srv.handleAdminDefaultsSubmit)
	r.Get("/admin/catalog", srv.handleAdminCatalogForm)
	r.Post("/admin/catalog", srv.handleAdminCatalogCreate)
	r.Post("/admin/catalog/{id}", srv.handleAdminCatalogUpdate)

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func (s *server) handleCalculator(w http.ResponseWriter, r *http.Request) {
	defaults, err := s.getCalcDefaults()
	if err != nil {
		http.Error(w, "failed to load calculator defaults", http.StatusInternalServerError)
		return
	}

	entries, err := s.listCatalog(true)
	if err != nil {
		http.Error(w, "failed to load health event catalog", http.StatusInternalServerError)
		return
	}

	inputs := buildInputs(defaults, entries)
	s.renderTemplate(w, "calculator.html", calculatorViewData{
		Defaults: defaults,
		Catalog:  entries,
		Fresh:    inputs.EffectiveFresh(),
		Results:  formatResults(roi.ComputeAll(inputs)),
	})
}

// buildInputs assembles the calculator's starting snapshot from the stored
// defaults and the active catalog rows.
func buildInputs(defaults calcDefaults, entries []catalogEntry) roi.Inputs {
	events := make([]roi.HealthEvent, 0, len(entries))
	for _, e := range entries {
		events = append(events, roi.HealthEvent{
			Key:          e.Key,
			Name:         e.Name,
			Count:        e.DefaultCount,
			CostPerEvent: e.CostPerEvent,
		})
	}

	return roi.Inputs{
		MilkingCows:     defaults.MilkingCows,
		ReplacementCost: defaults.ReplacementCost,
		SalvageValue:    defaults.SalvageValue,
		MilkPrice:       defaults.MilkPrice,
		LbMilkPerLbDM:   defaults.LbMilkPerLbDM,
		DMCost:          defaults.DMCost,
		DeathEvents:     defaults.DeathEvents,
		SoldEvents:      defaults.SoldEvents,
		HealthEvents:    events,
	}
}

func (s *server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if isAuthenticated(r, s.auth) {
		http.Redirect(w, r, "/admin/defaults", http.StatusSeeOther)
		return
	}
	s.renderTemplate(w, "login.html", loginViewData{})
}

func (s *server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")
	valid, err := s.auth.validateCredentials(email, password)
	if err != nil {
		http.Error(w, "authentication error", http.StatusInternalServerError)
		return
	}
	if !valid {
		w.WriteHeader(http.StatusUnauthorized)
		s.renderTemplate(w, "login.html", loginViewData{baseViewData: baseViewData{ErrorMessage: "Invalid credentials. Try again."}})
		return
	}

	s.auth.setSessionCookie(w, email)
	http.Redirect(w, r, "/admin/defaults", http.StatusSeeOther)
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handleAdminDefaultsForm(w http.ResponseWriter, r *http.Request) {
	defaults, err := s.getCalcDefaults()
	if err != nil {
		http.Error(w, "failed to load calculator defaults", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "admin_defaults.html", defaultsViewData{Defaults: defaults})
}

func (s *server) handleAdminDefaultsSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	defaults, validationErr := parseDefaultsForm(r)
	if validationErr != nil {
		w.WriteHeader(http.StatusBadRequest)
		s.renderTemplate(w, "admin_defaults.html", defaultsViewData{
			baseViewData: baseViewData{ErrorMessage: validationErr.Error()},
			Defaults:     defaults,
		})
		return
	}

	if err := s.updateCalcDefaults(defaults); err != nil {
		http.Error(w, "failed to save calculator defaults", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "admin_defaults.html", defaultsViewData{
		baseViewData: baseViewData{SuccessMessage: "Defaults saved."},
		Defaults:     defaults,
	})
}

func (s *server) handleAdminCatalogForm(w http.ResponseWriter, r *http.Request) {
	entries, err := s.listCatalog(false)
	if err != nil {
		http.Error(w, "failed to load health event catalog", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "admin_catalog.html", catalogViewData{
		baseViewData: baseViewData{
			ErrorMessage:   r.URL.Query().Get("error"),
			SuccessMessage: r.URL.Query().Get("success"),
		},
		Entries: entries,
	})
}

func (s *server) handleAdminCatalogCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	entry, err := parseCatalogEntryForm(r)
	if err != nil {
		http.Redirect(w, r, "/admin/catalog?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}

	_, err = s.db.Exec(`
		INSERT INTO health_event_catalog (key, name, cost_per_event, default_count, active, position)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.Key, entry.Name, entry.CostPerEvent, entry.DefaultCount, entry.Active, entry.Position)
	if err != nil {
		http.Error(w, "failed to create catalog entry", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/catalog?success=Health+event+created", http.StatusSeeOther)
}

func (s *server) handleAdminCatalogUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid catalog entry id", http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	entry, err := parseCatalogEntryForm(r)
	if err != nil {
		http.Redirect(w, r, "/admin/catalog?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}

	result, err := s.db.Exec(`
		UPDATE health_event_catalog
		SET
			key = ?,
			name = ?,
			cost_per_event = ?,
			default_count = ?,
			active = ?,
			position = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, entry.Key, entry.Name, entry.CostPerEvent, entry.DefaultCount, entry.Active, entry.Position, id)
	if err != nil {
		http.Error(w, "failed to update catalog entry", http.StatusInternalServerError)
		return
	}

	affected, err := result.RowsAffected()
	if err != nil {
		http.Error(w, "failed to update catalog entry", http.StatusInternalServerError)
		return
	}
	if affected == 0 {
		http.NotFound(w, r)
		return
	}

	http.Redirect(w, r, "/admin/catalog?success=Health+event+updated", http.StatusSeeOther)
}

func parseDefaultsForm(r *http.Request) (calcDefaults, error) {
	var defaults calcDefaults

	var err error
	if defaults.MilkingCows, err = parseNonNegativeFloat(r.FormValue("milking_cows"), "milking_cows"); err != nil {
		return defaults, err
	}
	if defaults.ReplacementCost, err = parseNonNegativeFloat(r.FormValue("replacement_cost"), "replacement_cost"); err != nil {
		return defaults, err
	}
	if defaults.SalvageValue, err = parseNonNegativeFloat(r.FormValue("salvage_value"), "salvage_value"); err != nil {
		return defaults, err
	}
	if defaults.MilkPrice, err = parseNonNegativeFloat(r.FormValue("milk_price"), "milk_price"); err != nil {
		return defaults, err
	}
	if defaults.LbMilkPerLbDM, err = parseNonNegativeFloat(r.FormValue("lb_milk_per_lb_dm"), "lb_milk_per_lb_dm"); err != nil {
		return defaults, err
	}
	if defaults.DMCost, err = parseNonNegativeFloat(r.FormValue("dm_cost"), "dm_cost"); err != nil {
		return defaults, err
	}
	if defaults.DeathEvents, err = parseNonNegativeFloat(r.FormValue("death_events"), "death_events"); err != nil {
		return defaults, err
	}
	if defaults.SoldEvents, err = parseNonNegativeFloat(r.FormValue("sold_events"), "sold_events"); err != nil {
		return defaults, err
	}

	return defaults, nil
}

func parseCatalogEntryForm(r *http.Request) (catalogEntry, error) {
	entry := catalogEntry{
		Key:    strings.TrimSpace(r.FormValue("key")),
		Name:   strings.TrimSpace(r.FormValue("name")),
		Active: r.FormValue("active") == "1",
	}

	if entry.Key == "" {
		return entry, fmt.Errorf("key is required")
	}
	if strings.ContainsAny(entry.Key, " \t") {
		return entry, fmt.Errorf("key must not contain whitespace")
	}
	if entry.Name == "" {
		return entry, fmt.Errorf("name is required")
	}

	var err error
	if entry.CostPerEvent, err = parsePositiveFloat(r.FormValue("cost_per_event"), "cost_per_event"); err != nil {
		return entry, err
	}
	if entry.DefaultCount, err = parseNonNegativeFloat(r.FormValue("default_count"), "default_count"); err != nil {
		return entry, err
	}

	position, err := strconv.Atoi(strings.TrimSpace(r.FormValue("position")))
	if err != nil || position < 0 {
		return entry, fmt.Errorf("position must be a non-negative integer")
	}
	entry.Position = position

	return entry, nil
}

func parseNonNegativeFloat(raw, field string) (float64, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be numeric", field)
	}
	if value < 0 {
		return 0, fmt.Errorf("%s must be greater than or equal to 0", field)
	}
	return value, nil
}

func parsePositiveFloat(raw, field string) (float64, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be numeric", field)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", field)
	}
	return value, nil
}

func (s *server) renderTemplate(w http.ResponseWriter, page string, data any) {
	templates, err := template.ParseFiles(
		"web/templates/layout.html",
		"web/templates/"+page,
	)
	if err != nil {
		http.Error(w, "failed to parse template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, "layout.html", data); err != nil {
		http.Error(w, "failed to render template", http.StatusInternalServerError)
		return
	}
}

// adminAuthMiddleware gates the admin area only; the calculator and report
// pages are public.
func (s *server) adminAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/admin") {
			next.ServeHTTP(w, r)
			return
		}

		if !isAuthenticated(r, s.auth) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isAuthenticated(r *http.Request, auth *authService) bool {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return false
	}

	_, ok := auth.verifySessionValue(cookie.Value)
	return ok
}

func (s *server) getCalcDefaults() (calcDefaults, error) {
	var d calcDefaults
	err := s.db.QueryRow(`
		SELECT milking_cows, replacement_cost, salvage_value, milk_price, lb_milk_per_lb_dm, dm_cost, death_events, sold_events
		FROM calc_defaults
		WHERE id = 1
	`).Scan(
		&d.MilkingCows,
		&d.ReplacementCost,
		&d.SalvageValue,
		&d.MilkPrice,
		&d.LbMilkPerLbDM,
		&d.DMCost,
		&d.DeathEvents,
		&d.SoldEvents,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return calcDefaults{}, fmt.Errorf("calc_defaults singleton not found")
		}
		return calcDefaults{}, fmt.Errorf("query calc_defaults: %w", err)
	}
	return d, nil
}

func (s *server) updateCalcDefaults(d calcDefaults) error {
	_, err := s.db.Exec(`
		UPDATE calc_defaults
		SET
			milking_cows = ?,
			replacement_cost = ?,
			salvage_value = ?,
			milk_price = ?,
			lb_milk_per_lb_dm = ?,
			dm_cost = ?,
			death_events = ?,
			sold_events = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`,
		d.MilkingCows,
		d.ReplacementCost,
		d.SalvageValue,
		d.MilkPrice,
		d.LbMilkPerLbDM,
		d.DMCost,
		d.DeathEvents,
		d.SoldEvents,
	)
	if err != nil {
		return fmt.Errorf("update calc_defaults: %w", err)
	}

	return nil
}

func (s *server) listCatalog(activeOnly bool) ([]catalogEntry, error) {
	query := `
		SELECT id, key, name, cost_per_event, default_count, active, position
		FROM health_event_catalog
	`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY position ASC, id ASC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query health event catalog: %w", err)
	}
	defer rows.Close()

	entries := make([]catalogEntry, 0)
	for rows.Next() {
		var e catalogEntry
		if err := rows.Scan(&e.ID, &e.Key, &e.Name, &e.CostPerEvent, &e.DefaultCount, &e.Active, &e.Position); err != nil {
			return nil, fmt.Errorf("scan catalog entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog entries: %w", err)
	}

	return entries, nil
}
