package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/favor-advisor/internal/analysis"
	"github.com/jonathan/favor-advisor/internal/config"
	"github.com/jonathan/favor-advisor/internal/rendering"
	"github.com/jonathan/favor-advisor/internal/server/middleware"
	"github.com/jonathan/favor-advisor/internal/types"
)

// RunSummary describes a stored analysis run without its result.
type RunSummary struct {
	ID           uuid.UUID `json:"id"`
	CharacterIDs []string  `json:"character_ids"`
	CreatedAt    time.Time `json:"created_at"`
}

// RunResponse is a stored analysis run.
type RunResponse struct {
	RunSummary
	Result json.RawMessage `json:"result"`
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &ErrBodyTooLarge{Limit: tooLarge.Limit}
		}
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}

// validationError converts validator output into an ErrValidation.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ErrValidation{Field: fe.Namespace(), Message: fmt.Sprintf("failed on '%s'", fe.Tag())}
	}
	return &ErrValidation{Field: "body", Message: err.Error()}
}

// handleListCharacters lists catalog characters in display order.
// The optional q parameter filters by name substring.
func (s *Server) handleListCharacters(w http.ResponseWriter, r *http.Request) {
	chars := s.catalog.Characters()
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		filtered := chars[:0:0]
		for _, c := range chars {
			if strings.Contains(c.Name, q) {
				filtered = append(filtered, c)
			}
		}
		chars = filtered
	}
	s.jsonResponse(w, http.StatusOK, chars)
}

// handleListGifts lists catalog gifts, optionally filtered by rarity.
func (s *Server) handleListGifts(w http.ResponseWriter, r *http.Request) {
	gifts := s.catalog.Gifts()
	if raw := r.URL.Query().Get("rarity"); raw != "" {
		rarity := types.ParseRarity(raw)
		if rarity == types.RarityUnknown {
			s.writeError(w, &ErrValidation{Field: "rarity", Message: "must be one of N, R, SR, SSR"})
			return
		}
		filtered := gifts[:0:0]
		for _, g := range gifts {
			if g.Rarity == rarity {
				filtered = append(filtered, g)
			}
		}
		gifts = filtered
	}
	s.jsonResponse(w, http.StatusOK, gifts)
}

// runAnalysis decodes an AnalyzeRequest and analyzes the known characters.
func (s *Server) runAnalysis(w http.ResponseWriter, r *http.Request) (*types.AnalyzeRequest, *types.AnalyzeResponse, error) {
	var req types.AnalyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return nil, nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, nil, validationError(err)
	}

	selected, unknown := s.catalog.Select(req.CharacterIDs)
	if len(selected) == 0 {
		return nil, nil, &ErrUnknownCharacters{IDs: unknown}
	}

	result := analysis.Analyze(selected, s.catalog.Gifts(), &analysis.Options{
		JunkExclusions: s.exclusions.Snapshot(),
		Collator:       s.collator,
	})

	return &req, &types.AnalyzeResponse{
		Result:            result,
		UnknownCharacters: unknown,
	}, nil
}

// handleAnalyze analyzes the requested characters and stores the run when storage is configured.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, resp, err := s.runAnalysis(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if s.runs != nil && resp.Result != nil {
		id, err := s.runs.CreateAnalysisRun(r.Context(), req.CharacterIDs, resp.Result)
		if err != nil {
			// The analysis is still useful without its stored copy.
			s.logger.Warn("failed to store analysis run", zap.Error(err))
		} else {
			resp.RunID = &id
		}
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// handleAnalyzeReport renders the analysis as an HTML page.
func (s *Server) handleAnalyzeReport(w http.ResponseWriter, r *http.Request) {
	_, resp, err := s.runAnalysis(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	html, err := rendering.RenderHTML(r.Context(), resp.Result, s.report)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(html)); err != nil {
		s.logger.Warn("failed to write report", zap.Error(err))
	}
}

// handleAnalyzeExport renders the analysis as a PNG attachment.
func (s *Server) handleAnalyzeExport(w http.ResponseWriter, r *http.Request) {
	_, resp, err := s.runAnalysis(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	png, err := rendering.Export(r.Context(), resp.Result, s.report, s.screenshot)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rendering.ExportFileName(time.Now())))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		s.logger.Warn("failed to write export", zap.Error(err))
	}
}

// handleListRuns lists recent stored runs. The optional limit parameter caps the count.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		s.writeError(w, &ErrFeatureDisabled{Feature: "run storage"})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeError(w, &ErrValidation{Field: "limit", Message: "must be a positive integer"})
			return
		}
		limit = n
	}

	runs, err := s.runs.ListAnalysisRuns(r.Context(), limit)
	if err != nil {
		s.writeError(w, fmt.Errorf("failed to list runs: %w", err))
		return
	}

	summaries := make([]RunSummary, 0, len(runs))
	for _, run := range runs {
		summaries = append(summaries, RunSummary{ID: run.ID, CharacterIDs: run.CharacterIDs, CreatedAt: run.CreatedAt})
	}
	s.jsonResponse(w, http.StatusOK, summaries)
}

// handleGetRun returns one stored run with its result.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		s.writeError(w, &ErrFeatureDisabled{Feature: "run storage"})
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, &ErrValidation{Field: "id", Message: "must be a UUID"})
		return
	}

	run, err := s.runs.GetAnalysisRun(r.Context(), id)
	if err != nil {
		s.writeError(w, fmt.Errorf("failed to get run: %w", err))
		return
	}
	if run == nil {
		s.writeError(w, &ErrRunNotFound{RunID: id})
		return
	}

	s.jsonResponse(w, http.StatusOK, RunResponse{
		RunSummary: RunSummary{ID: run.ID, CharacterIDs: run.CharacterIDs, CreatedAt: run.CreatedAt},
		Result:     json.RawMessage(run.Result),
	})
}

// handleGetExclusions returns the current junk exclusion names.
func (s *Server) handleGetExclusions(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, types.ExclusionsPayload{Names: s.exclusions.Snapshot().Names()})
}

// handleAdminLogin exchanges the operator password for a bearer token.
func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		s.writeError(w, &ErrFeatureDisabled{Feature: "admin access"})
		return
	}

	var req types.AdminLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, validationError(err))
		return
	}

	if !s.admin.VerifyPassword(req.Password) {
		s.logger.Warn("admin login failed", zap.String("client", s.extractClientID(r)))
		s.writeError(w, &ErrInvalidCredentials{})
		return
	}

	session, err := s.sessions.Issue(AdminSubject, ScopeExclusionsWrite)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("admin session issued", zap.Time("expires_at", session.ExpiresAt))
	s.jsonResponse(w, http.StatusOK, session)
}

// handlePutExclusions replaces the junk exclusion list and persists it when a file is configured.
func (s *Server) handlePutExclusions(w http.ResponseWriter, r *http.Request) {
	var req types.ExclusionsPayload
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, validationError(err))
		return
	}

	names := make([]string, 0, len(req.Names))
	for _, name := range req.Names {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}

	if s.exclusionsFile != "" {
		if err := config.WriteExclusionsFile(s.exclusionsFile, names); err != nil {
			s.writeError(w, fmt.Errorf("failed to persist exclusions: %w", err))
			return
		}
	}
	s.exclusions.Replace(names)

	subject := ""
	if principal, ok := middleware.PrincipalFrom(r.Context()); ok {
		subject = principal.Subject
	}
	s.logger.Info("junk exclusions updated", zap.String("subject", subject), zap.Int("count", len(names)))

	s.jsonResponse(w, http.StatusOK, types.ExclusionsPayload{Names: s.exclusions.Snapshot().Names()})
}
