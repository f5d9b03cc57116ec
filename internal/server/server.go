// Package server exposes the engine's two entry points over HTTP for a UI
// caller: settings analysis and full processing. The engine itself stays
// pure; this package only adapts bytes in and JSON out.
package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"paintbynum"
)

// New builds the HTTP handler. maxBody bounds the accepted request size in
// bytes; pass 0 for the default of 64 MiB.
func New(log *slog.Logger, maxBody int64) http.Handler {
	if maxBody <= 0 {
		maxBody = 64 << 20
	}
	s := &server{log: log, maxBody: maxBody}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Post("/analyze", s.handleAnalyze)
	r.Post("/process", s.handleProcess)
	return r
}

type server struct {
	log     *slog.Logger
	maxBody int64
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	img, ok := s.decodeBody(w, r)
	if !ok {
		return
	}
	analysis, err := paintbynum.Analyze(img)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// layerPayload is one raster layer encoded as base64 PNG.
type layerPayload struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

type processResponse struct {
	Palette  []string         `json:"palette"`
	Zones    []paintbynum.Zone `json:"zones"`
	Metadata struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"metadata"`
	Contours  layerPayload `json:"contours"`
	Numbered  layerPayload `json:"numbered"`
	Colorized layerPayload `json:"colorized"`
}

func (s *server) handleProcess(w http.ResponseWriter, r *http.Request) {
	img, ok := s.decodeBody(w, r)
	if !ok {
		return
	}
	opts, err := optionsFromQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"kind":    paintbynum.ErrInvalidInput,
			"message": err.Error(),
		})
		return
	}

	result, err := paintbynum.ProcessContext(r.Context(), img, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := processResponse{Palette: result.Palette, Zones: result.Zones}
	resp.Metadata.Width = result.Width
	resp.Metadata.Height = result.Height
	if resp.Contours, err = encodeLayer(result.Contours); err == nil {
		if resp.Numbered, err = encodeLayer(result.Numbered); err == nil {
			resp.Colorized, err = encodeLayer(result.Colorized)
		}
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) decodeBody(w http.ResponseWriter, r *http.Request) (image.Image, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	img, format, err := image.Decode(r.Body)
	if err != nil {
		s.log.Warn("rejecting undecodable image", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"kind":    paintbynum.ErrInvalidInput,
			"message": "request body is not a decodable image",
		})
		return nil, false
	}
	s.log.Info("decoded request image", "format", format,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return img, true
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	kind := paintbynum.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case paintbynum.ErrInvalidInput:
		status = http.StatusBadRequest
	case paintbynum.ErrResourceExceeded:
		status = http.StatusRequestEntityTooLarge
	case paintbynum.ErrTimeout:
		status = http.StatusGatewayTimeout
	}
	s.log.Error("request failed", "kind", kind, "error", err)
	writeJSON(w, status, map[string]string{"kind": kind, "message": err.Error()})
}

func optionsFromQuery(r *http.Request) (paintbynum.Options, error) {
	opts := paintbynum.DefaultOptions()
	q := r.URL.Query()

	if v := q.Get("numColors"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, err
		}
		opts.NumColors = n
	}
	if v := q.Get("minRegionSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, err
		}
		opts.MinRegionSize = n
	}
	if v := q.Get("smoothness"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, err
		}
		opts.Smoothness = f
	}
	if v := q.Get("mergeTolerance"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, err
		}
		opts.MergeTolerance = f
	}
	if v := q.Get("artisticMerge"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, err
		}
		opts.EnableArtisticMerge = b
	}
	if v := q.Get("smartPalette"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, err
		}
		opts.SmartPalette = b
	}
	return opts, nil
}

func encodeLayer(img image.Image) (layerPayload, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return layerPayload{}, err
	}
	return layerPayload{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
