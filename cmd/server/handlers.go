package main

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"section-hub/internal/catalog"
	"section-hub/internal/installer"
	"section-hub/internal/model"
	"section-hub/internal/templating"
	"section-hub/internal/webutil"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/justinas/nosurf"
)

// DashboardPageData holds the data of the "my sections" page.
type DashboardPageData struct {
	Stats          model.Stats
	Installed      []model.InstalledSection
	AvailableCount int
	Error          string
}

// ExplorePageData holds the data of the catalog browser.
type ExplorePageData struct {
	Sections   []model.SectionMetadata
	Categories []string
	Query      string
	Category   string
	FreeOnly   bool
}

// SectionPageData holds the data of the section detail page.
type SectionPageData struct {
	Section     *model.SectionContent
	Result      *installer.Response
	PayloadSize string
}

// newTemplateData creates the data shared by every admin page.
func (app *application) newTemplateData(r *http.Request, activeNav string) map[string]any {
	return map[string]any{
		"CSRFToken":   nosurf.Token(r),
		"ActiveNav":   activeNav,
		"CurrentYear": time.Now().Year(),
	}
}

func (app *application) render(w http.ResponseWriter, status int, page string, data map[string]any) {
	w.Header().Set(webutil.HeaderContentType, webutil.ContentTypeHTMLUTF8)
	var buf strings.Builder
	if err := app.templates.Render(&buf, page, data); err != nil {
		app.logger.Error("Error rendering page", "page", page, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, buf.String())
}

// --- JSON API ---

func (app *application) healthHandler(w http.ResponseWriter, r *http.Request) error {
	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	return nil
}

// filterFromQuery reads ?q=, ?category= and ?free= into catalog filter options.
// An unparsable free flag is reported and treated as false.
func filterFromQuery(r *http.Request) (catalog.FilterOptions, error) {
	q := r.URL.Query()
	opts := catalog.FilterOptions{
		Query:    strings.TrimSpace(q.Get("q")),
		Category: q.Get("category"),
	}
	if raw := q.Get("free"); raw != "" {
		free, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, err
		}
		opts.FreeOnly = free
	}
	return opts, nil
}

func (app *application) listSectionsHandler(w http.ResponseWriter, r *http.Request) error {
	opts, err := filterFromQuery(r)
	if err != nil {
		return webutil.ErrBadRequest("free must be true or false")
	}
	sections := app.catalog.Filter(opts)
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"sections": sections,
		"count":    len(sections),
	})
	return nil
}

func (app *application) getSectionHandler(w http.ResponseWriter, r *http.Request) error {
	section, err := app.catalog.Get(chi.URLParam(r, "sectionID"))
	if err != nil {
		return webutil.ErrNotFoundWrap(installer.MsgSectionNotFound, err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, section)
	return nil
}

type payloadResponse struct {
	*installer.Payload
	Bytes int    `json:"bytes"`
	Size  string `json:"size"`
}

func (app *application) sectionPayloadHandler(w http.ResponseWriter, r *http.Request) error {
	payload, err := app.installer.Payload(chi.URLParam(r, "sectionID"))
	if err != nil {
		return installErrorToHTTP(err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, payloadResponse{
		Payload: payload,
		Bytes:   len(payload.Content),
		Size:    humanize.Bytes(uint64(len(payload.Content))),
	})
	return nil
}

func (app *application) categoriesHandler(w http.ResponseWriter, r *http.Request) error {
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"categories": app.catalog.Categories(),
	})
	return nil
}

func (app *application) installedHandler(w http.ResponseWriter, r *http.Request) error {
	report, err := app.installed.Installed(r.Context())
	if err != nil {
		return webutil.NewHTTPErrorWrap(http.StatusBadGateway, "Installierte Sections konnten nicht geladen werden", err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, report)
	return nil
}

// installSectionHandler answers with the install envelope, never with the
// generic error body, so clients can always read success/error.
func (app *application) installSectionHandler(w http.ResponseWriter, r *http.Request) {
	sectionID, err := sectionIDFromRequest(r)
	if err != nil {
		app.logger.Warn("Unreadable install request", "error", err)
		sectionID = ""
	}
	result, err := app.installer.Install(r.Context(), sectionID)
	resp, status := installer.Envelope(result, err)
	webutil.RespondWithJSON(w, status, resp)
}

// sectionIDFromRequest accepts a JSON body {"sectionId": "..."} or a form field sectionId.
func sectionIDFromRequest(r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get(webutil.HeaderContentType))
	if mediaType == "application/json" {
		var body struct {
			SectionID string `json:"sectionId"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&body); err != nil {
			return "", err
		}
		return body.SectionID, nil
	}
	if err := r.ParseForm(); err != nil {
		return "", err
	}
	return r.PostForm.Get("sectionId"), nil
}

func installErrorToHTTP(err error) error {
	var ie *installer.Error
	if errors.As(err, &ie) {
		return webutil.NewHTTPErrorWrap(ie.HTTPStatus(), ie.Message, err)
	}
	return webutil.ErrInternalServerWrap("", err)
}

// --- Admin pages ---

func (app *application) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	data := app.newTemplateData(r, "dashboard")
	page := DashboardPageData{
		Installed:      []model.InstalledSection{},
		AvailableCount: len(app.catalog.All()),
	}
	report, err := app.installed.Installed(r.Context())
	if err != nil {
		app.logger.Error("Failed to load installed sections", "error", err)
		page.Error = "Installierte Sections konnten nicht geladen werden."
	} else {
		page.Stats = report.Stats
		page.Installed = report.Sections
	}
	data["Page"] = page
	app.render(w, http.StatusOK, "dashboard.html", data)
}

func (app *application) exploreHandler(w http.ResponseWriter, r *http.Request) {
	opts, _ := filterFromQuery(r)
	data := app.newTemplateData(r, "explore")
	data["Page"] = ExplorePageData{
		Sections:   app.catalog.Filter(opts),
		Categories: app.catalog.Categories(),
		Query:      opts.Query,
		Category:   opts.Category,
		FreeOnly:   opts.FreeOnly,
	}
	app.render(w, http.StatusOK, "explore.html", data)
}

func (app *application) sectionPage(r *http.Request, section *model.SectionContent, result *installer.Response) map[string]any {
	data := app.newTemplateData(r, "explore")
	data["Page"] = SectionPageData{
		Section:     section,
		Result:      result,
		PayloadSize: humanize.Bytes(uint64(len(installer.BuildPayload(*section)))),
	}
	return data
}

func (app *application) sectionDetailHandler(w http.ResponseWriter, r *http.Request) {
	section, err := app.catalog.Get(chi.URLParam(r, "sectionID"))
	if err != nil {
		http.Error(w, installer.MsgSectionNotFound, http.StatusNotFound)
		return
	}
	app.render(w, http.StatusOK, "section.html", app.sectionPage(r, section, nil))
}

func (app *application) sectionPreviewHandler(w http.ResponseWriter, r *http.Request) {
	section, err := app.catalog.Get(chi.URLParam(r, "sectionID"))
	if err != nil {
		http.Error(w, installer.MsgSectionNotFound, http.StatusNotFound)
		return
	}
	doc, err := templating.PreviewDocument(*section)
	if err != nil {
		app.logger.Error("Error rendering preview", "sectionID", section.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set(webutil.HeaderContentType, webutil.ContentTypeHTMLUTF8)
	_, _ = io.WriteString(w, doc)
}

func (app *application) sectionInstallHandler(w http.ResponseWriter, r *http.Request) {
	sectionID := chi.URLParam(r, "sectionID")
	section, err := app.catalog.Get(sectionID)
	if err != nil {
		http.Error(w, installer.MsgSectionNotFound, http.StatusNotFound)
		return
	}
	result, err := app.installer.Install(r.Context(), sectionID)
	resp, status := installer.Envelope(result, err)
	app.render(w, status, "section.html", app.sectionPage(r, section, &resp))
}
