package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"

	"questlog/internal/engine"
	"questlog/internal/progression"
	"questlog/internal/ui"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"onboarding", "dashboard", "settings"}

type renderer struct {
	pages    map[string]*template.Template
	partials *template.Template
}

var funcs = template.FuncMap{
	"date":      formatDate,
	"dateInput": formatDateInput,
	"themeName": themeName,
	"card":      func(q engine.QuestItem) cardData { return cardData{Quest: q} },
}

func newRenderer() (*renderer, error) {
	partials, err := template.New("partials").Funcs(funcs).ParseFS(templateFS, "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("parse partials: %w", err)
	}
	rr := &renderer{pages: map[string]*template.Template{}, partials: partials}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/partials.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		rr.pages[name] = t
	}
	return rr, nil
}

// layoutData wraps every full page.
type layoutData struct {
	Title    string
	Theme    progression.Theme
	HeroName string
	Page     any
}

type dashboardPage struct {
	*engine.Dashboard
}

func (p dashboardPage) Progress() progressData {
	return progressData{MainProgress: p.MainProgress, Hero: p.Hero}
}

type settingsPage struct {
	Hero         *engine.Hero
	Themes       []engine.ThemeOption
	Achievements []engine.Achievement
}

// cardData feeds the quest_card and quest_edit fragments.
type cardData struct {
	Quest engine.QuestItem
}

type progressData struct {
	MainProgress int
	Hero         *engine.Hero
	// OOB marks the fragments for an out-of-band htmx swap.
	OOB bool
}

type completionData struct {
	Card     cardData
	Progress progressData
	Result   *engine.CompleteResult
}

func (rr *renderer) page(w http.ResponseWriter, name string, data layoutData) error {
	t, ok := rr.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return execute(w, t, "layout", data)
}

func (rr *renderer) partial(w http.ResponseWriter, name string, data any) error {
	return execute(w, rr.partials, name, data)
}

func execute(w http.ResponseWriter, t *template.Template, name string, data any) error {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("Jan 02, 2006")
}

func formatDateInput(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func themeName(t progression.Theme) string {
	return ui.ThemeLabel(string(t))
}

var errBadRequest = errors.New("bad request")

// writeError maps service errors to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var locked engine.ThemeLockedError
	switch {
	case errors.As(err, &locked):
		status = http.StatusForbidden
	case errors.Is(err, engine.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrAlreadyOnboarded),
		errors.Is(err, engine.ErrNotOnboarded),
		errors.Is(err, engine.ErrMainQuest):
		status = http.StatusConflict
	case errors.Is(err, engine.ErrTitleRequired),
		errors.Is(err, engine.ErrInvalidXPValue),
		errors.Is(err, engine.ErrUnknownTheme),
		errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		msg = "internal error"
	} else {
		s.log.Debug("request rejected", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	}
	http.Error(w, msg, status)
}
