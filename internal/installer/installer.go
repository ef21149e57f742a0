package installer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"section-hub/internal/model"

	"github.com/google/uuid"
)

// SectionSource resolves a section id to its hydrated content.
type SectionSource interface {
	Get(sectionID string) (*model.SectionContent, error)
}

// ThemeLister lists the shop's themes.
type ThemeLister interface {
	ListThemes(ctx context.Context) ([]model.Theme, error)
}

// Publisher writes one file into a theme, overwriting any previous version.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, theme model.Theme, path, content string) error
}

// SelectMainTheme returns the first theme with role MAIN.
func SelectMainTheme(themes []model.Theme) (model.Theme, error) {
	for _, t := range themes {
		if t.IsMain() {
			return t, nil
		}
	}
	return model.Theme{}, ErrNoActiveTheme
}

// Result describes a successful installation.
type Result struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	ThemeName       string `json:"themeName"`
	SectionFileName string `json:"sectionFileName"`
	InstallID       string `json:"installId"`
}

// Installer publishes catalog sections into the shop's live theme.
type Installer struct {
	sections  SectionSource
	themes    ThemeLister
	publisher Publisher
	logger    *slog.Logger
}

// New creates a new Installer instance.
func New(sections SectionSource, themes ThemeLister, publisher Publisher, logger *slog.Logger) *Installer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Installer{
		sections:  sections,
		themes:    themes,
		publisher: publisher,
		logger:    logger,
	}
}

// Payload builds the theme file for a section without publishing it.
func (in *Installer) Payload(sectionID string) (*Payload, error) {
	section, err := in.lookup(sectionID)
	if err != nil {
		return nil, err
	}
	return &Payload{
		SectionID: section.ID,
		Path:      ThemeFilePath(sectionID),
		Content:   BuildPayload(*section),
	}, nil
}

func (in *Installer) lookup(sectionID string) (*model.SectionContent, error) {
	if strings.TrimSpace(sectionID) == "" {
		return nil, NewError(KindInput, MsgMissingSectionID, nil)
	}
	section, err := in.sections.Get(sectionID)
	if err != nil {
		return nil, NewError(KindNotFound, MsgSectionNotFound, err)
	}
	return section, nil
}

// Install publishes one section into the MAIN theme. It lists themes once and
// publishes at most once; a failure at any step skips the remaining ones.
// Failures are returned as *Error.
func (in *Installer) Install(ctx context.Context, sectionID string) (*Result, error) {
	installID := uuid.NewString()
	logger := in.logger.With("installID", installID, "sectionID", sectionID)

	section, err := in.lookup(sectionID)
	if err != nil {
		logger.Warn("Install rejected", "error", err)
		return nil, err
	}

	themes, err := in.themes.ListThemes(ctx)
	if err != nil {
		logger.Error("Error listing themes", "error", err)
		return nil, asInstallError(fmt.Errorf("listing themes: %w", err))
	}

	theme, err := SelectMainTheme(themes)
	if err != nil {
		logger.Warn("No active theme", "themes", len(themes))
		return nil, NewError(KindPrecondition, MsgNoActiveTheme, err)
	}

	path := ThemeFilePath(sectionID)
	payload := BuildPayload(*section)
	logger.Info("Publishing section",
		"theme", theme.Name,
		"themeID", theme.ID,
		"path", path,
		"bytes", len(payload),
		"transport", in.publisher.Name(),
	)

	if err := in.publisher.Publish(ctx, theme, path, payload); err != nil {
		logger.Error("Error publishing section", "path", path, "error", err)
		return nil, asInstallError(err)
	}

	logger.Info("Section installed", "theme", theme.Name, "path", path)
	return &Result{
		Success:         true,
		Message:         fmt.Sprintf("%s wurde erfolgreich in \"%s\" installiert!", section.Name, theme.Name),
		ThemeName:       theme.Name,
		SectionFileName: SectionFileName(sectionID),
		InstallID:       installID,
	}, nil
}

// Response is the envelope the install endpoint answers with.
type Response struct {
	Success         bool   `json:"success"`
	Message         string `json:"message,omitempty"`
	Error           string `json:"error,omitempty"`
	ThemeName       string `json:"themeName,omitempty"`
	SectionFileName string `json:"sectionFileName,omitempty"`
	InstallID       string `json:"installId,omitempty"`
}

// Envelope converts the outcome of Install into the response body and status.
func Envelope(result *Result, err error) (Response, int) {
	if err != nil {
		ie := asInstallError(err)
		return Response{Success: false, Error: ie.Message}, ie.HTTPStatus()
	}
	if result == nil {
		return Response{Success: false, Error: MsgUnexpected}, http.StatusInternalServerError
	}
	return Response{
		Success:         true,
		Message:         result.Message,
		ThemeName:       result.ThemeName,
		SectionFileName: result.SectionFileName,
		InstallID:       result.InstallID,
	}, http.StatusOK
}
