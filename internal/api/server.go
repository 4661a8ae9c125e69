// Package api exposes tape trailer checks and repairs over HTTP.
//
// The server operates on the .tap files directly under a configured
// directory. It is a reporting and repair surface only; it never creates
// or deletes tapes.
package api

import (
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/acms-au/tapfix/internal/logger"
	"github.com/acms-au/tapfix/internal/tapfile"
)

type Server struct {
	dir string
	log logger.Logger
}

func NewServer(dir string, log logger.Logger) *Server {
	return &Server{dir: dir, log: log}
}

// Register mounts the API routes.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/v1/tapes", s.handleListTapes)
	e.GET("/v1/tapes/:name", s.handleCheckTape)
	e.POST("/v1/tapes/:name/fix", s.handleFixTape)
}

// TapeStatus is the per-tape entry of the list and check responses.
type TapeStatus struct {
	Name          string `json:"name"`
	Size          int64  `json:"size"`
	TrailingMarks int    `json:"trailing_marks"`
	NeedsFix      bool   `json:"needs_fix"`
}

// FixResponse reports one repair performed over the API.
type FixResponse struct {
	Name          string `json:"name"`
	TrailingMarks int    `json:"trailing_marks"`
	Removed       int    `json:"removed"`
	Modified      bool   `json:"modified"`
	DryRun        bool   `json:"dry_run,omitempty"`
}

type apiError struct {
	Error string `json:"error"`
}

func (s *Server) handleListTapes(c *echo.Context) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.log.Error("list tapes", "dir", s.dir, "error", err)
		return writeJSON(c, http.StatusInternalServerError, apiError{Error: err.Error()})
	}

	tapes := []TapeStatus{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".tap") {
			continue
		}
		check, err := tapfile.Check(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			s.log.Warn("skipping unreadable tape", "name", entry.Name(), "error", err)
			continue
		}
		tapes = append(tapes, TapeStatus{
			Name:          entry.Name(),
			Size:          check.Size,
			TrailingMarks: check.TrailingMarks,
			NeedsFix:      check.NeedsFix,
		})
	}
	sort.Slice(tapes, func(i, j int) bool { return tapes[i].Name < tapes[j].Name })

	return writeJSON(c, http.StatusOK, map[string]any{"tapes": tapes})
}

func (s *Server) handleCheckTape(c *echo.Context) error {
	path, ok := s.tapePath(c.Param("name"))
	if !ok {
		return writeJSON(c, http.StatusBadRequest, apiError{Error: "invalid tape name"})
	}

	check, err := tapfile.Check(path)
	if err != nil {
		if os.IsNotExist(err) {
			return writeJSON(c, http.StatusNotFound, apiError{Error: "no such tape"})
		}
		s.log.Error("check tape", "path", path, "error", err)
		return writeJSON(c, http.StatusInternalServerError, apiError{Error: err.Error()})
	}

	return writeJSON(c, http.StatusOK, TapeStatus{
		Name:          filepath.Base(path),
		Size:          check.Size,
		TrailingMarks: check.TrailingMarks,
		NeedsFix:      check.NeedsFix,
	})
}

func (s *Server) handleFixTape(c *echo.Context) error {
	path, ok := s.tapePath(c.Param("name"))
	if !ok {
		return writeJSON(c, http.StatusBadRequest, apiError{Error: "invalid tape name"})
	}
	dryRun := c.QueryParam("dry_run") == "true"

	fix, err := tapfile.Fix(path, "", dryRun)
	if err != nil {
		if os.IsNotExist(err) {
			return writeJSON(c, http.StatusNotFound, apiError{Error: "no such tape"})
		}
		s.log.Error("fix tape", "path", path, "error", err)
		return writeJSON(c, http.StatusInternalServerError, apiError{Error: err.Error()})
	}

	if fix.Modified && !dryRun {
		s.log.Info("fixed tape", "name", filepath.Base(path), "removed", fix.Removed)
	}
	return writeJSON(c, http.StatusOK, FixResponse{
		Name:          filepath.Base(path),
		TrailingMarks: fix.TrailingMarks,
		Removed:       fix.Removed,
		Modified:      fix.Modified,
		DryRun:        dryRun,
	})
}

// tapePath resolves a request name inside the tapes directory, rejecting
// anything that could escape it.
func (s *Server) tapePath(name string) (string, bool) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", false
	}
	if !strings.HasSuffix(strings.ToLower(name), ".tap") {
		return "", false
	}
	return filepath.Join(s.dir, name), true
}

func writeJSON(c *echo.Context, status int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.JSONBlob(status, body)
}
