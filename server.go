package main

import (
	"fmt"
	"html/template"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"syndicate-ops/game"
)

type App struct {
	stores     *Stores
	tmpl       *template.Template
	exporter   snapshotExporter
	adminToken string
}

// newApp wires the HTTP front end. exporter may be nil.
func newApp(stores *Stores, tmpl *template.Template, exporter snapshotExporter, adminToken string) *App {
	return &App{stores: stores, tmpl: tmpl, exporter: exporter, adminToken: adminToken}
}

func newMux(app *App) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/toggle", handleToggle).Methods(http.MethodGet)
	r.HandleFunc("/admin", app.handleAdmin).Methods(http.MethodGet)
	r.HandleFunc("/admin/tick", app.handleAdminTick).Methods(http.MethodPost)
	r.HandleFunc("/admin/reset", app.handleAdminReset).Methods(http.MethodPost)
	for _, s := range app.stores.All() {
		app.registerMode(r, s)
	}
	return noCacheHeaders(r)
}

func (a *App) registerMode(r *mux.Router, s *Store) {
	m := s.Mode
	r.HandleFunc(m.IndexPath(), a.handleIndex(s)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc(m.Path("mission_plan"), a.handleMissionPlan(s)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc(m.Path("launch_mission"), a.handleLaunchMission(s)).Methods(http.MethodPost)
	r.HandleFunc(m.Path("mission_result"), a.handleView(s, "mission_result", "Mission Result")).Methods(http.MethodGet)
	r.HandleFunc(m.Path("history"), a.handleView(s, "history", "History")).Methods(http.MethodGet)
	r.HandleFunc(m.Path("crew"), a.handleView(s, "crew", "Crew")).Methods(http.MethodGet)
	r.HandleFunc(m.Path("medical"), a.handleMedical(s)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc(m.Path("war_machine"), a.handleWarMachine(s)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc(m.Path("lay_low"), a.handleHeatAction(s, "lay_low")).Methods(http.MethodPost)
	r.HandleFunc(m.Path("espionage"), a.handleHeatAction(s, "espionage")).Methods(http.MethodPost)
	r.HandleFunc(m.Path("export"), a.handleExport(s)).Methods(http.MethodPost)
}

// noCacheHeaders wraps the whole router so 404 and 405 replies carry the
// headers too.
func noCacheHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

func (a *App) pageLocked(s *Store, title string) PageData {
	data := buildPageDataLocked(s, title, true)
	data.ExportEnabled = a.exporter != nil
	return data
}

func (a *App) handleIndex(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Lock for the full handler so every action is one atomic read-modify-write.
		s.mu.Lock()
		defer s.mu.Unlock()

		if r.Method == http.MethodPost {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "bad form", http.StatusBadRequest)
				return
			}
			action := strings.TrimSpace(r.PostForm.Get("action"))
			if action != "advance_day" {
				data := a.pageLocked(s, "Status")
				data.Error = fmt.Sprintf("Unknown action %q.", action)
				renderPageStatus(w, a.tmpl, "index", http.StatusBadRequest, data)
				return
			}
			_, span := startActionSpan(r, s.Mode, "advance_day")
			runDayTickLocked(s, time.Now().UTC())
			recordStateAttributes(span, s)
			span.End()
			setToastLocked(s, fmt.Sprintf("Day %d begins. Heat is now %d.", s.State.Day, s.State.Heat))
			http.Redirect(w, r, s.Mode.IndexPath(), http.StatusSeeOther)
			return
		}

		renderPage(w, a.tmpl, "index", a.pageLocked(s, "Status"))
	}
}

type missionForm struct {
	RawType string
	Crew    []string
}

func parseMissionForm(r *http.Request) (missionForm, error) {
	if err := r.ParseForm(); err != nil {
		return missionForm{}, err
	}
	form := missionForm{RawType: r.PostForm.Get("mission_type")}
	for _, name := range r.PostForm["crew"] {
		name = strings.TrimSpace(name)
		if name != "" {
			form.Crew = append(form.Crew, name)
		}
	}
	return form, nil
}

// validate resolves the mission type and checks every crew name against the
// roster. The returned problem is shown to the player.
func (f missionForm) validate(st *game.State) (game.MissionKind, string) {
	kind, err := game.ParseMissionKind(f.RawType)
	if err != nil {
		return "", fmt.Sprintf("Unknown mission type %q.", f.RawType)
	}
	if unknown := st.UnknownCrew(f.Crew); len(unknown) > 0 {
		return kind, "Unknown crew: " + strings.Join(unknown, ", ") + "."
	}
	return kind, ""
}

func (a *App) handleMissionPlan(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		data := a.pageLocked(s, "Plan Mission")
		if r.Method == http.MethodGet {
			if last := s.State.LastConfig; last != nil {
				data.selectCrew(last.SelectedCrew)
			}
			renderPage(w, a.tmpl, "mission_plan", data)
			return
		}

		form, err := parseMissionForm(r)
		if err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		data.selectCrew(form.Crew)
		kind, problem := form.validate(s.State)
		if problem != "" {
			data.Error = problem
			renderPageStatus(w, a.tmpl, "mission_plan", http.StatusBadRequest, data)
			return
		}
		data.SelectedType = kind
		if len(form.Crew) > 0 {
			preview, err := s.State.Preview(kind, form.Crew)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			data.Preview = &preview
		}
		renderPage(w, a.tmpl, "mission_plan", data)
	}
}

func (a *App) handleLaunchMission(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		form, err := parseMissionForm(r)
		if err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		if len(form.Crew) == 0 {
			http.Redirect(w, r, s.Mode.Path("mission_plan"), http.StatusSeeOther)
			return
		}
		kind, problem := form.validate(s.State)
		if problem != "" {
			data := a.pageLocked(s, "Plan Mission")
			data.selectCrew(form.Crew)
			data.Error = problem
			renderPageStatus(w, a.tmpl, "mission_plan", http.StatusBadRequest, data)
			return
		}

		_, span := startActionSpan(r, s.Mode, "launch_mission")
		res, err := s.State.Resolve(kind, form.Crew, s.rng)
		if err != nil {
			span.End()
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		recordStateAttributes(span, s)
		span.End()
		s.persistLocked()

		toast := fmt.Sprintf("%s: %s.", res.MissionLabel, res.Outcome)
		if len(res.Injuries) > 0 {
			toast += " Injured: " + strings.Join(res.Injuries, ", ") + "."
		}
		setToastLocked(s, toast)
		http.Redirect(w, r, s.Mode.Path("mission_result"), http.StatusSeeOther)
	}
}

func (a *App) handleView(s *Store, page, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		renderPage(w, a.tmpl, page, a.pageLocked(s, title))
	}
}

func (a *App) handleMedical(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		if r.Method == http.MethodPost {
			_, span := startActionSpan(r, s.Mode, "heal_crew")
			healed := s.State.HealCrew()
			span.End()
			s.persistLocked()
			if len(healed) == 0 {
				setToastLocked(s, "Nobody needed treatment.")
			} else {
				setToastLocked(s, "Treated: "+strings.Join(healed, ", ")+".")
			}
			http.Redirect(w, r, s.Mode.Path("medical"), http.StatusSeeOther)
			return
		}
		renderPage(w, a.tmpl, "medical", a.pageLocked(s, "Medical"))
	}
}

func (a *App) handleWarMachine(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		if r.Method == http.MethodPost {
			_, span := startActionSpan(r, s.Mode, "repair_war_machine")
			s.State.RepairWarMachine()
			recordStateAttributes(span, s)
			span.End()
			s.persistLocked()
			setToastLocked(s, "War machine restored to full integrity.")
			http.Redirect(w, r, s.Mode.Path("war_machine"), http.StatusSeeOther)
			return
		}
		renderPage(w, a.tmpl, "war_machine", a.pageLocked(s, "War Machine"))
	}
}

func (a *App) handleHeatAction(s *Store, action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		_, span := startActionSpan(r, s.Mode, action)
		switch action {
		case "espionage":
			s.State.Espionage()
			setToastLocked(s, fmt.Sprintf("Espionage muddies the trail. Heat is now %d.", s.State.Heat))
		default:
			s.State.LayLow()
			setToastLocked(s, fmt.Sprintf("The crew lays low. Heat is now %d.", s.State.Heat))
		}
		recordStateAttributes(span, s)
		span.End()
		s.persistLocked()
		http.Redirect(w, r, s.Mode.IndexPath(), http.StatusSeeOther)
	}
}

func (a *App) handleExport(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a.exporter == nil {
			http.Error(w, "export not configured", http.StatusServiceUnavailable)
			return
		}
		ctx, span := startActionSpan(r, s.Mode, "export")
		key, err := exportStore(ctx, s, a.exporter)
		span.End()

		s.mu.Lock()
		if err != nil {
			log.Printf("export %s failed: %v", s.Mode, err)
			setToastLocked(s, "Export failed. Try again later.")
		} else {
			setToastLocked(s, "Snapshot exported to "+key+".")
		}
		s.mu.Unlock()
		http.Redirect(w, r, s.Mode.IndexPath(), http.StatusSeeOther)
	}
}

// handleToggle flips between modes based on where the player came from.
func handleToggle(w http.ResponseWriter, r *http.Request) {
	target := ModeSandbox.IndexPath()
	if strings.Contains(r.Referer(), "sandbox") {
		target = ModeCampaign.IndexPath()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (a *App) handleAdmin(w http.ResponseWriter, r *http.Request) {
	if !a.isAdmin(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	suffix := template.HTMLEscapeString(a.adminTokenSuffix(r))
	_, _ = fmt.Fprintf(w, "<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>Admin</title><style>body{font-family:ui-sans-serif,system-ui;background:#0b0f14;color:#e5ecf4;padding:24px}pre{background:#121923;border:1px solid #2a3442;padding:12px;border-radius:8px;overflow:auto}button{background:#1f6feb;color:#fff;border:0;padding:8px 12px;border-radius:6px;margin-right:8px;cursor:pointer}</style></head><body>")
	_, _ = fmt.Fprintf(w, "<h1>Admin</h1>")
	for _, s := range a.stores.All() {
		s.mu.Lock()
		st := s.State
		_, _ = fmt.Fprintf(w, "<h2>%s</h2>", s.Mode.Label())
		_, _ = fmt.Fprintf(w, "<form style=\"display:inline\" method=\"post\" action=\"/admin/tick%s\"><input type=\"hidden\" name=\"mode\" value=\"%s\"><button type=\"submit\">Advance Day</button></form>", suffix, s.Mode)
		_, _ = fmt.Fprintf(w, "<form style=\"display:inline\" method=\"post\" action=\"/admin/reset%s\"><input type=\"hidden\" name=\"mode\" value=\"%s\"><button type=\"submit\">Reset</button></form>", suffix, s.Mode)
		_, _ = fmt.Fprintf(w, "<pre>day=%d heat=%d tier=%s integrity=%d credits=%d\nmissions=%d injured=%d ticks=%d last_tick=%s</pre>",
			st.Day, st.Heat, game.TierFor(st.Heat), st.WarMachine.Integrity, st.Credits,
			len(st.History), len(st.InjuredCrew()), s.TickCount, s.LastTickAt.Format(time.RFC3339))
		s.mu.Unlock()
	}
	_, _ = fmt.Fprintf(w, "</body></html>")
}

func (a *App) adminStore(w http.ResponseWriter, r *http.Request) *Store {
	if !a.isAdmin(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return nil
	}
	mode, err := parseMode(r.FormValue("mode"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}
	return a.stores.ByMode(mode)
}

func (a *App) handleAdminTick(w http.ResponseWriter, r *http.Request) {
	s := a.adminStore(w, r)
	if s == nil {
		return
	}
	s.mu.Lock()
	runDayTickLocked(s, time.Now().UTC())
	s.mu.Unlock()
	http.Redirect(w, r, "/admin"+a.adminTokenSuffix(r), http.StatusSeeOther)
}

func (a *App) handleAdminReset(w http.ResponseWriter, r *http.Request) {
	s := a.adminStore(w, r)
	if s == nil {
		return
	}
	s.mu.Lock()
	err := resetStoreLocked(s)
	s.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin"+a.adminTokenSuffix(r), http.StatusSeeOther)
}

func (a *App) isAdmin(r *http.Request) bool {
	if a.adminToken != "" && r.URL.Query().Get("token") == a.adminToken {
		return true
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	ip := net.ParseIP(host)
	return host == "localhost" || (ip != nil && ip.IsLoopback())
}

func (a *App) adminTokenSuffix(r *http.Request) string {
	if a.adminToken != "" && r.URL.Query().Get("token") == a.adminToken {
		return "?token=" + url.QueryEscape(a.adminToken)
	}
	return ""
}
