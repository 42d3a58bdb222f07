package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/postframe/postframe/pkg/buildinfo"
	"github.com/postframe/postframe/pkg/integrations"
	"github.com/postframe/postframe/pkg/integrations/imagegen"
	"github.com/postframe/postframe/pkg/pipeline"
)

// maxUploadBytes bounds multipart compose requests.
const maxUploadBytes = 32 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// handleCompose runs one pipeline pass and streams the PNG back.
// Multipart requests upload the background (and optionally the logo)
// directly; JSON requests reference them by URL or let the fallback
// gradient stand in. Nothing is kept server-side after the response.
func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	var (
		opts    pipeline.Options
		cleanup func()
		err     error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		opts, cleanup, err = composeOptionsFromMultipart(r)
	} else {
		opts, err = composeOptionsFromJSON(r)
	}
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(opts.Text) == "" && opts.Background == "" {
		writeError(w, http.StatusBadRequest, "nothing to compose: provide text, an image, or both")
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		status := http.StatusInternalServerError
		if isOptionError(err) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", result.Filename))
	w.Header().Set("X-Postframe-Preset", result.Preset.String())
	w.Header().Set("X-Postframe-Font-Size", strconv.FormatFloat(result.Layout.FontSize, 'f', -1, 64))
	w.Header().Set("X-Postframe-Lines", strconv.Itoa(len(result.Layout.Lines)))
	w.Header().Set("X-Postframe-Overflow", strconv.FormatBool(result.Layout.Overflow))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.PNG)
}

func (s *Server) handleCaption(w http.ResponseWriter, r *http.Request) {
	if s.caption == nil {
		writeError(w, http.StatusServiceUnavailable, "caption service not configured")
		return
	}

	var req captionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	rewritten, err := s.caption.Rewrite(r.Context(), req.Text, req.Refresh)
	if err != nil {
		writeError(w, collaboratorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, captionResponse{Caption: rewritten})
}

func (s *Server) handleBackground(w http.ResponseWriter, r *http.Request) {
	if s.art == nil {
		writeError(w, http.StatusServiceUnavailable, "generation service not configured")
		return
	}

	var req backgroundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	img, err := s.art.Generate(r.Context(), req.toArtRequest(), req.Refresh)
	if err != nil {
		writeError(w, collaboratorStatus(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

// composeOptionsFromJSON maps a JSON request body onto pipeline options.
func composeOptionsFromJSON(r *http.Request) (pipeline.Options, error) {
	var req composeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return pipeline.Options{}, fmt.Errorf("invalid JSON body: %w", err)
	}
	return pipeline.Options{
		Text:         req.Text,
		Background:   req.ImageURL,
		Logo:         req.LogoURL,
		Preset:       req.Preset,
		FontFamily:   req.FontFamily,
		FamilyPinned: req.FontFamily != "",
		FontWeight:   req.FontWeight,
		FontSize:     req.FontSize,
		Seed:         req.Seed,
		LogoWidth:    req.LogoWidth,
		LogoPadding:  req.LogoPadding,
		LogoBlur:     req.LogoBlur,
		LogoOpacity:  req.LogoOpacity,
		Refresh:      req.Refresh,
	}, nil
}

// composeOptionsFromMultipart saves uploaded parts to temp files and
// maps form fields onto pipeline options. The returned cleanup removes
// the temp files once the response has been written.
func composeOptionsFromMultipart(r *http.Request) (pipeline.Options, func(), error) {
	var temps []string
	cleanup := func() {
		for _, p := range temps {
			_ = os.Remove(p)
		}
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return pipeline.Options{}, cleanup, fmt.Errorf("parse multipart form: %w", err)
	}

	opts := pipeline.Options{
		Text:       r.FormValue("text"),
		Preset:     r.FormValue("preset"),
		FontFamily: r.FormValue("font_family"),
	}
	opts.FamilyPinned = opts.FontFamily != ""

	var err error
	if opts.FontWeight, err = formInt(r, "font_weight"); err != nil {
		return opts, cleanup, err
	}
	if opts.FontSize, err = formFloat(r, "font_size"); err != nil {
		return opts, cleanup, err
	}
	if opts.Seed, err = formUint(r, "seed"); err != nil {
		return opts, cleanup, err
	}
	if opts.LogoWidth, err = formInt(r, "logo_width"); err != nil {
		return opts, cleanup, err
	}
	if opts.LogoPadding, err = formInt(r, "logo_padding"); err != nil {
		return opts, cleanup, err
	}
	if opts.LogoBlur, err = formFloat(r, "logo_blur"); err != nil {
		return opts, cleanup, err
	}
	if opts.LogoOpacity, err = formFloat(r, "logo_opacity"); err != nil {
		return opts, cleanup, err
	}
	opts.Refresh = r.FormValue("refresh") == "true"

	for field, dst := range map[string]*string{"image": &opts.Background, "logo": &opts.Logo} {
		file, header, err := r.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			return opts, cleanup, fmt.Errorf("read %s upload: %w", field, err)
		}
		path, err := saveUpload(file, header)
		file.Close()
		if err != nil {
			return opts, cleanup, fmt.Errorf("save %s upload: %w", field, err)
		}
		temps = append(temps, path)
		*dst = path
	}

	return opts, cleanup, nil
}

// saveUpload spools one multipart file to a temp path the pipeline can
// load. The original extension is kept so suggested output names stay
// recognizable.
func saveUpload(file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = ".img"
	}
	tmp, err := os.CreateTemp("", "postframe-upload-*"+ext)
	if err != nil {
		return "", err
	}
	defer tmp.Close()
	if _, err := io.Copy(tmp, file); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func formInt(r *http.Request, field string) (int, error) {
	v := r.FormValue(field)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", field, v)
	}
	return n, nil
}

func formUint(r *http.Request, field string) (uint64, error) {
	v := r.FormValue(field)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", field, v)
	}
	return n, nil
}

func formFloat(r *http.Request, field string) (float64, error) {
	v := r.FormValue(field)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", field, v)
	}
	return f, nil
}

// collaboratorStatus maps collaborator errors onto response codes.
// Upstream errors keep their original status so callers see exactly
// what the collaborator reported.
func collaboratorStatus(err error) int {
	var upstream *integrations.UpstreamError
	switch {
	case errors.As(err, &upstream):
		if upstream.StatusCode >= 400 && upstream.StatusCode < 600 {
			return upstream.StatusCode
		}
		return http.StatusBadGateway
	case errors.Is(err, integrations.ErrMissingCredential),
		errors.Is(err, integrations.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, integrations.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, integrations.ErrNetwork):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

// isOptionError reports whether a pipeline failure came from request
// validation rather than rendering.
func isOptionError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "unknown preset") ||
		strings.Contains(msg, "invalid font weight") ||
		strings.Contains(msg, "invalid font size") ||
		strings.Contains(msg, "invalid logo opacity")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

type composeRequest struct {
	Text        string  `json:"text"`
	ImageURL    string  `json:"image_url,omitempty"`
	LogoURL     string  `json:"logo_url,omitempty"`
	Preset      string  `json:"preset,omitempty"`
	FontFamily  string  `json:"font_family,omitempty"`
	FontWeight  int     `json:"font_weight,omitempty"`
	FontSize    float64 `json:"font_size,omitempty"`
	Seed        uint64  `json:"seed,omitempty"`
	LogoWidth   int     `json:"logo_width,omitempty"`
	LogoPadding int     `json:"logo_padding,omitempty"`
	LogoBlur    float64 `json:"logo_blur,omitempty"`
	LogoOpacity float64 `json:"logo_opacity,omitempty"`
	Refresh     bool    `json:"refresh,omitempty"`
}

type captionRequest struct {
	Text    string `json:"text"`
	Refresh bool   `json:"refresh,omitempty"`
}

type captionResponse struct {
	Caption string `json:"caption"`
}

type backgroundRequest struct {
	Prompt  string `json:"prompt"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	Seed    int64  `json:"seed,omitempty"`
	Refresh bool   `json:"refresh,omitempty"`
}

func (r backgroundRequest) toArtRequest() imagegen.Request {
	return imagegen.Request{
		Prompt: r.Prompt,
		Width:  r.Width,
		Height: r.Height,
		Seed:   r.Seed,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}
