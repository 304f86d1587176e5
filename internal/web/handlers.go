package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"questlog/internal/engine"
)

const dateLayout = "2006-01-02"

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Dashboard(r.Context())
	if errors.Is(err, engine.ErrNotOnboarded) {
		s.render(w, r, "onboarding", layoutData{
			Title: "Begin your quest",
			Theme: s.svc.Progression().NewProfile().ActiveTheme,
		})
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.render(w, r, "dashboard", layoutData{
		Title:    d.Main.Title,
		Theme:    d.Hero.Profile.ActiveTheme,
		HeroName: d.Hero.Name,
		Page:     dashboardPage{Dashboard: d},
	})
}

func (s *Server) handleSettingsPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h, err := s.svc.Hero(ctx)
	if errors.Is(err, engine.ErrNotOnboarded) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<p>Please finish onboarding first.</p>"))
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	themes, err := s.svc.Themes(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	achievements, err := s.svc.Achievements(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.render(w, r, "settings", layoutData{
		Title:    "Settings",
		Theme:    h.Profile.ActiveTheme,
		HeroName: h.Name,
		Page:     settingsPage{Hero: h, Themes: themes, Achievements: achievements},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if err := s.svc.Ping(r.Context()); err != nil {
		s.log.Warn("health check failed", zap.Error(err))
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]string{"status": status})
}

func (s *Server) handleOnboard(w http.ResponseWriter, r *http.Request) {
	due, err := parseDateField(r.FormValue("deadline"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	_, err = s.svc.Onboard(r.Context(), engine.OnboardInput{
		Goal:     r.FormValue("goal"),
		HeroName: r.FormValue("hero_name"),
		DueAt:    due,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("HX-Redirect", "/")
	w.WriteHeader(http.StatusOK)
}

var goalInput = template.Must(template.New("goal").Parse(
	`<input type="text" id="goal" name="goal" value="{{.}}" required>`))

func (s *Server) handleSuggestGoal(w http.ResponseWriter, r *http.Request) {
	hint := r.FormValue("goal")
	suggestion, err := s.svc.SuggestGoal(r.Context(), hint)
	if err != nil {
		s.log.Warn("goal suggestion failed", zap.Error(err))
		suggestion = hint
	}
	if err := execute(w, goalInput, "goal", strings.TrimSpace(suggestion)); err != nil {
		s.writeError(w, r, err)
	}
}

func (s *Server) handleArchitect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	quests, err := s.svc.GenerateBreakdown(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	now := time.Now()
	cards := make([]cardData, 0, len(quests))
	for _, q := range quests {
		cards = append(cards, cardData{Quest: engine.QuestItem{Quest: q, Overdue: engine.IsOverdue(q, now)}})
	}
	progress, err := s.progress(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.partial(w, r, "quest_cards", struct {
		Cards    []cardData
		Progress progressData
	}{cards, progress})
}

func (s *Server) handleAddQuest(w http.ResponseWriter, r *http.Request) {
	due, err := parseDateField(r.FormValue("deadline"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	xp := 0
	if v := strings.TrimSpace(r.FormValue("xp")); v != "" {
		xp, err = strconv.Atoi(v)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("xp %q: %w", v, errBadRequest))
			return
		}
	}
	q, err := s.svc.AddQuest(r.Context(), engine.AddQuestInput{
		Title:       r.FormValue("title"),
		Category:    r.FormValue("category"),
		Description: r.FormValue("description"),
		DueAt:       due,
		XPValue:     xp,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	progress, err := s.progress(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.partial(w, r, "quest_cards", struct {
		Cards    []cardData
		Progress progressData
	}{[]cardData{{Quest: engine.QuestItem{Quest: *q, Overdue: engine.IsOverdue(*q, time.Now())}}}, progress})
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	id, err := questID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx := r.Context()
	res, err := s.svc.CompleteQuest(ctx, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q, err := s.svc.GetQuest(ctx, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	progress, err := s.progress(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.partial(w, r, "completion", completionData{
		Card:     cardData{Quest: *q},
		Progress: progress,
		Result:   res,
	})
}

func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	q, ok := s.loadQuest(w, r)
	if !ok {
		return
	}
	s.partial(w, r, "quest_edit", cardData{Quest: *q})
}

func (s *Server) handleCancelEdit(w http.ResponseWriter, r *http.Request) {
	q, ok := s.loadQuest(w, r)
	if !ok {
		return
	}
	s.partial(w, r, "quest_card", cardData{Quest: *q})
}

func (s *Server) handleUpdateQuest(w http.ResponseWriter, r *http.Request) {
	id, err := questID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	due, err := parseDateField(r.FormValue("deadline"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx := r.Context()
	if _, err := s.svc.UpdateQuest(ctx, id, r.FormValue("title"), due); err != nil {
		s.writeError(w, r, err)
		return
	}
	q, err := s.svc.GetQuest(ctx, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.partial(w, r, "quest_card", cardData{Quest: *q})
}

func (s *Server) handleDeleteQuest(w http.ResponseWriter, r *http.Request) {
	id, err := questID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.DeleteQuest(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	progress, err := s.progress(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.partial(w, r, "progress_oob", progress)
}

// handleReorder accepts the sortable list as repeated item=quest-<id> fields.
func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	var ids []int64
	for _, item := range r.Form["item"] {
		raw, ok := strings.CutPrefix(item, "quest-")
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if err := s.svc.ReorderQuests(r.Context(), ids); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	theme := engine.ParseTheme(r.FormValue("theme_name"))
	if err := s.svc.UpdateSettings(r.Context(), r.FormValue("hero_name"), theme); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.svc.Export(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", "attachment; filename=questlog_backup.json")
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Reset(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("HX-Redirect", "/")
	w.WriteHeader(http.StatusOK)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, page string, data layoutData) {
	if err := s.views.page(w, page, data); err != nil {
		s.writeError(w, r, err)
	}
}

func (s *Server) partial(w http.ResponseWriter, r *http.Request, name string, data any) {
	if err := s.views.partial(w, name, data); err != nil {
		s.writeError(w, r, err)
	}
}

func (s *Server) progress(r *http.Request) (progressData, error) {
	ctx := r.Context()
	pct, err := s.svc.MainProgress(ctx)
	if err != nil {
		return progressData{}, err
	}
	h, err := s.svc.Hero(ctx)
	if err != nil {
		return progressData{}, err
	}
	return progressData{MainProgress: pct, Hero: h, OOB: true}, nil
}

func (s *Server) loadQuest(w http.ResponseWriter, r *http.Request) (*engine.QuestItem, bool) {
	id, err := questID(r)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	q, err := s.svc.GetQuest(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return q, true
}

func questID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("quest id %q: %w", raw, errBadRequest)
	}
	return id, nil
}

// parseDateField reads an optional YYYY-MM-DD form value as a UTC date.
func parseDateField(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, fmt.Errorf("date %q: %w", v, errBadRequest)
	}
	return &t, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
