package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/folio-site/folio/internal/db"
	"github.com/folio-site/folio/internal/kanban"
	"github.com/folio-site/folio/internal/models"
)

type homeSectionRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Icon    string `json:"icon"`
	Enabled *bool  `json:"enabled"` // defaults to true
}

const defaultSectionIcon = "fa-solid fa-graduation-cap"

func (s *Server) listHomeSections(w http.ResponseWriter, r *http.Request) {
	sections, err := s.store.ListHomeSections(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.renderSections(sections)
	writeJSON(w, http.StatusOK, sections)
}

func (s *Server) replaceHomeSections(w http.ResponseWriter, r *http.Request) {
	var req []homeSectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	sections := make([]models.HomeSection, 0, len(req))
	for i, in := range req {
		content := strings.TrimSpace(in.Content)
		if content == "" {
			s.writeError(w, r, &kanban.ValidationError{
				Field:   fmt.Sprintf("sections[%d].content", i),
				Message: "content is required",
			})
			return
		}
		section := models.HomeSection{
			Title:   strings.TrimSpace(in.Title),
			Content: content,
			Icon:    strings.TrimSpace(in.Icon),
			Enabled: in.Enabled == nil || *in.Enabled,
		}
		if section.Icon == "" {
			section.Icon = defaultSectionIcon
		}
		sections = append(sections, section)
	}

	replaced, err := s.store.ReplaceHomeSections(r.Context(), sections)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("Home sections replaced", zap.Int("count", len(replaced)))
	s.renderSections(replaced)
	writeJSON(w, http.StatusOK, replaced)
}

// renderSections fills ContentHTML. A section that fails to render is sent
// without it.
func (s *Server) renderSections(sections []models.HomeSection) {
	for i := range sections {
		html, err := s.content.Markdown(sections[i].Content)
		if err != nil {
			s.logger.Warn("Failed to render home section",
				zap.Uint("section_id", sections[i].ID), zap.Error(err))
			continue
		}
		sections[i].ContentHTML = html
	}
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.ListProjects(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	project, err := s.store.GetProject(r.Context(), id)
	if err != nil {
		s.writeError(w, r, projectErr(id, err))
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var project models.Project
	if err := decodeJSON(w, r, &project); err != nil {
		s.writeError(w, r, err)
		return
	}
	project.ID = 0
	if err := s.cleanProject(&project); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.store.CreateProject(r.Context(), &project); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("Project created", zap.Uint("project_id", project.ID))
	writeJSON(w, http.StatusOK, project)
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var project models.Project
	if err := decodeJSON(w, r, &project); err != nil {
		s.writeError(w, r, err)
		return
	}
	project.ID = id
	if err := s.cleanProject(&project); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.store.UpdateProject(r.Context(), &project); err != nil {
		s.writeError(w, r, projectErr(id, err))
		return
	}
	s.logger.Info("Project updated", zap.Uint("project_id", project.ID))
	writeJSON(w, http.StatusOK, project)
}

// cleanProject validates a project and sanitizes its free text
func (s *Server) cleanProject(p *models.Project) error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return &kanban.ValidationError{Field: "title", Message: "title is required"}
	}
	p.Description = s.content.Sanitize(p.Description)
	p.WalkthroughStep1 = s.content.Sanitize(p.WalkthroughStep1)
	p.WalkthroughStep2 = s.content.Sanitize(p.WalkthroughStep2)
	p.WalkthroughStep3 = s.content.Sanitize(p.WalkthroughStep3)

	links := []struct {
		field string
		value *string
	}{
		{"github_link", &p.GithubLink},
		{"live_demo", &p.LiveDemo},
		{"video_url", &p.VideoURL},
		{"background_img", &p.BackgroundImg},
		{"img2", &p.Img2},
		{"img3", &p.Img3},
		{"img4", &p.Img4},
	}
	for _, link := range links {
		*link.value = strings.TrimSpace(*link.value)
		if *link.value == "" {
			continue
		}
		if !isWebURL(*link.value) {
			return &kanban.ValidationError{Field: link.field, Message: "must be an http(s) URL or a site path"}
		}
	}
	return nil
}

func isWebURL(raw string) bool {
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func projectErr(id uint, err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return &kanban.NotFoundError{Kind: "project", ID: id}
	}
	return err
}
