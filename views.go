package main

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"syndicate-ops/game"
)

//go:embed templates/*.html
var templateFS embed.FS

type navLinks struct {
	Index      string
	Plan       string
	Launch     string
	Result     string
	History    string
	Medical    string
	WarMachine string
	Crew       string
	LayLow     string
	Espionage  string
	Export     string
	Toggle     string
}

func navFor(m Mode) navLinks {
	return navLinks{
		Index:      m.IndexPath(),
		Plan:       m.Path("mission_plan"),
		Launch:     m.Path("launch_mission"),
		Result:     m.Path("mission_result"),
		History:    m.Path("history"),
		Medical:    m.Path("medical"),
		WarMachine: m.Path("war_machine"),
		Crew:       m.Path("crew"),
		LayLow:     m.Path("lay_low"),
		Espionage:  m.Path("espionage"),
		Export:     m.Path("export"),
		Toggle:     "/toggle",
	}
}

type crewView struct {
	game.CrewMember
	Selected         bool
	CapabilitiesText string
}

type PageData struct {
	Mode      Mode
	ModeLabel string
	OtherMode string
	Title     string
	Toast     string
	Error     string
	Nav       navLinks

	Day        int
	Credits    int
	Heat       int
	Tier       game.HeatTier
	Advisory   game.Advisory
	Risk       game.Risk
	WarMachine game.WarMachine

	Crew         []crewView
	Injured      []game.CrewMember
	Missions     []game.MissionType
	SelectedType game.MissionKind
	Preview      *game.Preview
	Result       *game.MissionResult
	History      []game.MissionResult

	ExportEnabled bool
}

func parseTemplates() *template.Template {
	funcs := template.FuncMap{
		"credits":   formatCredits,
		"join":      strings.Join,
		"tierClass": func(t game.HeatTier) string { return strings.ToLower(string(t)) },
		"signed":    signedHTML,
	}
	return template.Must(template.New("root").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

// formatCredits groups digits the way the status bar shows money: 12,500.
func formatCredits(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

func formatSigned(n int) string {
	if n > 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// signedHTML keeps the leading plus literal; the value is only a sign and digits.
func signedHTML(n int) template.HTML {
	return template.HTML(formatSigned(n))
}

func capabilityText(caps []game.Capability) string {
	parts := make([]string, len(caps))
	for i, c := range caps {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}

func buildPageDataLocked(s *Store, title string, consumeToast bool) PageData {
	st := s.State
	data := PageData{
		Mode:       s.Mode,
		ModeLabel:  s.Mode.Label(),
		OtherMode:  s.Mode.Other().Label(),
		Title:      title,
		Nav:        navFor(s.Mode),
		Day:        st.Day,
		Credits:    st.Credits,
		Heat:       st.Heat,
		Tier:       game.TierFor(st.Heat),
		Advisory:   game.AdvisoryFor(st.Heat),
		Risk:       game.RiskFor(st.Heat),
		WarMachine: st.WarMachine,
		Injured:    st.InjuredCrew(),
		Missions:   game.Catalog(),
		Result:     st.LastResult,
		History:    st.History,
	}
	if consumeToast {
		data.Toast = popToastLocked(s)
	}
	for _, m := range st.Crew {
		data.Crew = append(data.Crew, crewView{CrewMember: m, CapabilitiesText: capabilityText(m.Capabilities)})
	}
	data.SelectedType = game.MissionTech
	if st.LastConfig != nil {
		data.SelectedType = st.LastConfig.MissionType
	}
	return data
}

// selectCrew marks the named members as checked in the plan form.
func (d *PageData) selectCrew(names []string) {
	picked := map[string]bool{}
	for _, n := range names {
		picked[n] = true
	}
	for i := range d.Crew {
		d.Crew[i].Selected = picked[d.Crew[i].Name]
	}
}

func renderPage(w http.ResponseWriter, tmpl *template.Template, name string, data PageData) {
	renderPageStatus(w, tmpl, name, http.StatusOK, data)
}

func renderPageStatus(w http.ResponseWriter, tmpl *template.Template, name string, status int, data PageData) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
