package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"section-hub/internal/installer"
	"section-hub/internal/model"
)

// Transport names accepted by NewPublisher.
const (
	TransportUpsert = "upsert"
	TransportAsset  = "asset"
)

// NewPublisher returns the publisher for a configured transport name.
func NewPublisher(transport string, client *Client) (installer.Publisher, error) {
	switch strings.ToLower(transport) {
	case "", TransportUpsert:
		return &UpsertPublisher{client: client}, nil
	case TransportAsset:
		return &AssetPublisher{client: client}, nil
	default:
		return nil, fmt.Errorf("unknown shopify transport %q (want %q or %q)", transport, TransportUpsert, TransportAsset)
	}
}

// UpsertPublisher writes theme files with the themeFilesUpsert mutation,
// keyed by the theme's global id.
type UpsertPublisher struct {
	client *Client
}

// Name returns the transport name.
func (p *UpsertPublisher) Name() string { return TransportUpsert }

const themeFilesUpsertMutation = `mutation ThemeFilesUpsert($files: [OnlineStoreThemeFilesUpsertFileInput!]!, $themeId: ID!) {
  themeFilesUpsert(files: $files, themeId: $themeId) {
    upsertedThemeFiles {
      filename
    }
    userErrors {
      field
      message
    }
    job {
      id
      status
    }
  }
}`

type themeFileBody struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type themeFileInput struct {
	Filename string        `json:"filename"`
	Body     themeFileBody `json:"body"`
}

type userError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

type themeFilesUpsertResponse struct {
	Data struct {
		ThemeFilesUpsert *struct {
			UpsertedThemeFiles []struct {
				Filename string `json:"filename"`
			} `json:"upsertedThemeFiles"`
			UserErrors []userError `json:"userErrors"`
			Job        *struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"job"`
		} `json:"themeFilesUpsert"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// Publish upserts one text file. The response is checked in order for
// GraphQL errors, user errors and an empty upsert list.
func (p *UpsertPublisher) Publish(ctx context.Context, theme model.Theme, path, content string) error {
	variables := map[string]any{
		"files": []themeFileInput{{
			Filename: path,
			Body:     themeFileBody{Type: "TEXT", Value: content},
		}},
		"themeId": theme.ID,
	}

	var resp themeFilesUpsertResponse
	if err := p.client.GraphQL(ctx, themeFilesUpsertMutation, variables, &resp); err != nil {
		return fmt.Errorf("themeFilesUpsert: %w", err)
	}

	if len(resp.Errors) > 0 {
		msg := resp.Errors[0].Message
		if msg == "" {
			raw, _ := json.Marshal(resp.Errors)
			msg = string(raw)
		}
		return installer.NewError(installer.KindTransport, "GraphQL Fehler: "+msg, errors.New(msg))
	}

	result := resp.Data.ThemeFilesUpsert
	if result == nil {
		return installer.NewError(installer.KindTransport, installer.MsgTryAgainLater, errors.New("themeFilesUpsert returned no payload"))
	}

	if len(result.UserErrors) > 0 {
		msg := formatUserErrors(result.UserErrors)
		return installer.NewError(installer.KindValidation, "Fehler beim Erstellen der Section: "+msg, errors.New(msg))
	}

	if len(result.UpsertedThemeFiles) == 0 {
		return installer.NewError(installer.KindTransport, installer.MsgTryAgainLater, errors.New("no theme files upserted"))
	}

	attrs := []any{"filename", result.UpsertedThemeFiles[0].Filename, "themeID", theme.ID}
	if result.Job != nil {
		attrs = append(attrs, "jobID", result.Job.ID, "jobStatus", result.Job.Status)
	}
	p.client.logger.Info("Theme file upserted", attrs...)
	return nil
}

// formatUserErrors renders "field.path: message" pairs joined by ", ".
func formatUserErrors(errs []userError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, strings.Join(e.Field, ".")+": "+e.Message)
	}
	return strings.Join(parts, ", ")
}

// AssetPublisher writes theme files through the REST asset endpoint,
// keyed by the numeric theme id.
type AssetPublisher struct {
	client *Client
}

// Name returns the transport name.
func (p *AssetPublisher) Name() string { return TransportAsset }

type assetRequest struct {
	Asset asset `json:"asset"`
}

type asset struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Publish PUTs the asset. Any non-2xx answer is logged and reported as a
// generic upload failure.
func (p *AssetPublisher) Publish(ctx context.Context, theme model.Theme, path, content string) error {
	url := p.client.adminURL("/themes/" + theme.NumericID() + "/assets.json")
	_, err := p.client.do(ctx, http.MethodPut, url, assetRequest{Asset: asset{Key: path, Value: content}})
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			p.client.logger.Error("Asset upload error", "status", se.StatusCode, "body", se.Body, "key", path)
			return installer.NewError(installer.KindTransport, installer.MsgUploadFailed, err)
		}
		return fmt.Errorf("asset upload: %w", err)
	}
	p.client.logger.Info("Theme asset written", "key", path, "themeID", theme.NumericID())
	return nil
}
