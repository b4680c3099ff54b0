package handler

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/fadilmartias/signal/internal/dto"
	"github.com/fadilmartias/signal/internal/middleware"
	"github.com/fadilmartias/signal/internal/repository"
	"github.com/fadilmartias/signal/internal/response"
	"github.com/fadilmartias/signal/internal/service"
	"github.com/fadilmartias/signal/internal/usecase"
	"github.com/fadilmartias/signal/internal/util"
)

const maxResumeUploadSize = 5 * 1024 * 1024

type SearchHandler struct {
	search     *usecase.SearchUsecase
	ingest     *usecase.IngestUsecase
	candidates *usecase.CandidateUsecase
	validate   *validator.Validate
}

func NewSearchHandler(search *usecase.SearchUsecase, ingest *usecase.IngestUsecase, candidates *usecase.CandidateUsecase) *SearchHandler {
	return &SearchHandler{
		search:     search,
		ingest:     ingest,
		candidates: candidates,
		validate:   validator.New(),
	}
}

func (h *SearchHandler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")
	api.Post("/search", h.Search)
	api.Get("/search", h.SearchGet)
	api.Post("/ingest_application", middleware.RateLimiter(10, 1*time.Minute), h.IngestApplication)
	api.Post("/shortlist", h.Shortlist)
	api.Post("/reject", h.Reject)
	api.Get("/candidates", h.ListCandidates)
	api.Get("/candidate/:id", h.GetCandidate)
}

func (h *SearchHandler) Search(c *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code: fiber.StatusBadRequest, Message: "invalid request body", Reason: "bad_request",
		}, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code: fiber.StatusUnprocessableEntity, Message: "query is required", Reason: "invalid_input",
		}, err)
	}
	return h.runSearch(c, req.Query, req.Limit)
}

// SearchGet is the query-string variant. It runs the exact same pipeline as
// POST so the scoring formula stays the single source of truth.
func (h *SearchHandler) SearchGet(c *fiber.Ctx) error {
	q := c.Query("query")
	if strings.TrimSpace(q) == "" {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code: fiber.StatusUnprocessableEntity, Message: "query is required", Reason: "invalid_input",
		})
	}
	return h.runSearch(c, q, c.QueryInt("limit"))
}

func (h *SearchHandler) runSearch(c *fiber.Ctx, query string, limit int) error {
	results, err := h.search.Search(c.UserContext(), query, limit)
	if err != nil {
		return h.errorFor(c, "search failed", err)
	}

	out := make([]dto.CandidateResult, 0, len(results))
	for _, r := range results {
		out = append(out, dto.CandidateResult{
			CandidateID:  r.CandidateID,
			Name:         r.Name,
			Relevance:    round3(r.Relevance),
			FitScore:     round3(r.FitScore),
			IntentCount:  r.IntentCount,
			MatchedTerms: r.MatchedTerms,
			Snippet:      r.Snippet,
			Shortlisted:  r.Shortlisted,
			Status:       r.Status,
			Email:        r.Email,
			ResumeURL:    r.ResumeURL,
		})
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Search completed",
		Data:    out,
	})
}

func (h *SearchHandler) IngestApplication(c *fiber.Ctx) error {
	req, err := h.parseIngestRequest(c)
	if err != nil {
		return err
	}
	if err := h.validate.Struct(req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code: fiber.StatusUnprocessableEntity, Message: "invalid application payload", Reason: "invalid_input",
		}, err)
	}

	appliedAt, err := parseAppliedAt(req.AppliedAt)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code: fiber.StatusUnprocessableEntity, Message: "applied_at must be RFC3339 or YYYY-MM-DD", Reason: "invalid_input",
		}, err)
	}

	applicationID := req.ApplicationID
	if applicationID == "" {
		applicationID = uuid.NewString()
	}

	candidate, err := h.ingest.Ingest(c.UserContext(), usecase.IngestRequest{
		ApplicationID: applicationID,
		CandidateID:   req.CandidateID,
		Name:          req.Name,
		Email:         req.Email,
		ResumeURL:     req.ResumeURL,
		ResumeText:    req.ResumeText,
		RoleTitle:     req.RoleTitle,
		RoleFamily:    req.RoleFamily,
		AppliedAt:     appliedAt,
	})
	if err != nil {
		return h.errorFor(c, "failed to ingest application", err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Application ingested",
		Data: fiber.Map{
			"application_id": applicationID,
			"candidate_id":   candidate.CandidateID,
			"intent_count":   candidate.IntentCount,
		},
	})
}

// parseIngestRequest accepts either a JSON body or a multipart form with an
// optional PDF resume upload.
func (h *SearchHandler) parseIngestRequest(c *fiber.Ctx) (*dto.IngestApplicationRequest, error) {
	var req dto.IngestApplicationRequest

	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		if err := c.BodyParser(&req); err != nil {
			return nil, util.ErrorResponse(c, util.ErrorResponseFormat{
				Code: fiber.StatusBadRequest, Message: "invalid request body", Reason: "bad_request",
			}, err)
		}
		return &req, nil
	}

	req = dto.IngestApplicationRequest{
		ApplicationID: c.FormValue("application_id"),
		CandidateID:   c.FormValue("candidate_id"),
		Name:          c.FormValue("name"),
		Email:         c.FormValue("email"),
		ResumeURL:     c.FormValue("resume_url"),
		ResumeText:    c.FormValue("resume_text"),
		RoleTitle:     c.FormValue("role_title"),
		RoleFamily:    c.FormValue("role_family"),
		AppliedAt:     c.FormValue("applied_at"),
	}

	file, err := c.FormFile("resume")
	if err != nil {
		return &req, nil
	}
	if file.Size > maxResumeUploadSize {
		return nil, util.ErrorResponse(c, util.ErrorResponseFormat{
			Code: fiber.StatusRequestEntityTooLarge, Message: "resume file too large (max 5MB)", Reason: "invalid_input",
		})
	}

	savePath := filepath.Join("./uploads/resume/", filepath.Base(file.Filename))
	if err := c.SaveFile(file, savePath); err != nil {
		return nil, util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "cannot save resume file", Reason: "internal_error",
		}, err)
	}

	text, err := util.ExtractPDFText(savePath)
	if err != nil {
		return nil, util.ErrorResponse(c, util.ErrorResponseFormat{
			Code: fiber.StatusUnprocessableEntity, Message: "failed to extract resume text", Reason: "invalid_input",
		}, err)
	}
	req.ResumeText = text

	return &req, nil
}

func (h *SearchHandler) Shortlist(c *fiber.Ctx) error {
	var req dto.ShortlistRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code: fiber.StatusBadRequest, Message: "invalid request body", Reason: "bad_request",
		}, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code: fiber.StatusUnprocessableEntity, Message: "candidate_id is required", Reason: "invalid_input",
		}, err)
	}

	if err := h.candidates.Shortlist(c.UserContext(), req.CandidateID, req.Shortlisted); err != nil {
		return h.errorFor(c, "failed to update shortlist", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Shortlist updated",
		Data:    fiber.Map{"candidate_id": req.CandidateID, "shortlisted": req.Shortlisted},
	})
}

func (h *SearchHandler) Reject(c *fiber.Ctx) error {
	var req dto.RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code: fiber.StatusBadRequest, Message: "invalid request body", Reason: "bad_request",
		}, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code: fiber.StatusUnprocessableEntity, Message: "candidate_id is required", Reason: "invalid_input",
		}, err)
	}

	if err := h.candidates.Reject(c.UserContext(), req.CandidateID); err != nil {
		return h.errorFor(c, "failed to reject candidate", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Candidate rejected",
		Data:    fiber.Map{"candidate_id": req.CandidateID},
	})
}

func (h *SearchHandler) GetCandidate(c *fiber.Ctx) error {
	candidate, err := h.candidates.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.errorFor(c, "failed to get candidate", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get candidate",
		Data:    candidate,
	})
}

func (h *SearchHandler) ListCandidates(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 20)

	candidates, total, err := h.candidates.List(c.UserContext(), page, pageSize)
	if err != nil {
		return h.errorFor(c, "failed to list candidates", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success list candidates",
		Data:       candidates,
		Pagination: response.NewPagination(page, pageSize, total),
	})
}

func (h *SearchHandler) errorFor(c *fiber.Ctx, message string, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code: fiber.StatusUnprocessableEntity, Message: message, Reason: "invalid_input",
		}, err)
	case errors.Is(err, usecase.ErrRankingUnavailable):
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code: fiber.StatusServiceUnavailable, Message: message, Reason: "ranking_unavailable",
		}, err)
	case errors.Is(err, repository.ErrCandidateNotFound):
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code: fiber.StatusNotFound, Message: message, Reason: "candidate_not_found",
		}, err)
	default:
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: message, Reason: "internal_error",
		}, err)
	}
}

func parseAppliedAt(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
