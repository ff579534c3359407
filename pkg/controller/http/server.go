package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"

	"github.com/apexfs/firstline/pkg/domain/model"
	"github.com/apexfs/firstline/pkg/domain/model/config"
	"github.com/apexfs/firstline/pkg/domain/types"
	"github.com/apexfs/firstline/pkg/usecase"
	"github.com/apexfs/firstline/pkg/utils/errutil"
	"github.com/apexfs/firstline/pkg/utils/safe"
)

// maxBodySize bounds request bodies; submissions are small structured JSON.
const maxBodySize = 1 << 20

// Server is the JSON API consumed by the UI collaborator
type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
	policy *config.Policy
}

// New creates an HTTP server over the use case layer
func New(uc *usecase.UseCases, policy *config.Policy) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
		policy: policy,
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/policy", s.handlePolicy)

		r.Route("/models", func(r chi.Router) {
			r.Post("/", s.handleRegister)
			r.Post("/import", s.handleImport)
			r.Get("/", s.handleList)
			r.Get("/{id}", s.handleGet)
			r.Put("/{id}/narrative", s.handleNarrative)
			r.Get("/{id}/export", s.handleExport)
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// submissionRequest is the wire form of a raw submission
type submissionRequest struct {
	ModelID          string            `json:"model_id,omitempty"`
	ModelName        string            `json:"model_name"`
	BusinessUse      string            `json:"business_use"`
	Domain           string            `json:"domain"`
	ModelType        string            `json:"model_type"`
	DeploymentMode   string            `json:"deployment_mode"`
	OwnerTeam        string            `json:"owner_team,omitempty"`
	ModelStage       string            `json:"model_stage,omitempty"`
	DeploymentRegion string            `json:"deployment_region,omitempty"`
	CreatedBy        string            `json:"created_by,omitempty"`
	FactorSelections map[string]string `json:"factor_selections"`
}

func (req *submissionRequest) toSubmission() model.Submission {
	selections := make(map[types.FactorID]string, len(req.FactorSelections))
	for id, value := range req.FactorSelections {
		selections[types.FactorID(id)] = value
	}
	return model.Submission{
		ModelID:          types.ModelID(req.ModelID),
		ModelName:        req.ModelName,
		BusinessUse:      req.BusinessUse,
		Domain:           req.Domain,
		ModelType:        req.ModelType,
		DeploymentMode:   req.DeploymentMode,
		OwnerTeam:        req.OwnerTeam,
		ModelStage:       req.ModelStage,
		DeploymentRegion: req.DeploymentRegion,
		CreatedBy:        req.CreatedBy,
		FactorSelections: selections,
	}
}

// narrativeRequest is the wire form of a narrative update
type narrativeRequest struct {
	OwnerRiskNarrative  string `json:"owner_risk_narrative"`
	MitigationsProposed string `json:"mitigations_proposed"`
	OpenQuestions       string `json:"open_questions"`
}

// breakdownEntryResponse preserves catalog order, unlike the keyed object
// in the export artifact.
type breakdownEntryResponse struct {
	Factor string `json:"factor"`
	Value  string `json:"value"`
	Points int    `json:"points"`
	Valid  bool   `json:"valid"`
}

type recordResponse struct {
	ModelID          string            `json:"model_id"`
	ModelName        string            `json:"model_name"`
	BusinessUse      string            `json:"business_use"`
	Domain           string            `json:"domain"`
	ModelType        string            `json:"model_type"`
	DeploymentMode   string            `json:"deployment_mode"`
	OwnerTeam        string            `json:"owner_team"`
	ModelStage       string            `json:"model_stage"`
	DeploymentRegion string            `json:"deployment_region"`
	CreatedBy        string            `json:"created_by"`
	FactorSelections map[string]string `json:"factor_selections"`
	CreatedAt        time.Time         `json:"created_at"`
	ScoringVersion   string            `json:"scoring_version"`

	InherentRiskScore       int                      `json:"inherent_risk_score"`
	ProposedRiskTier        string                   `json:"proposed_risk_tier"`
	ProposedTierDescription string                   `json:"proposed_tier_description"`
	ScoreBreakdown          []breakdownEntryResponse `json:"score_breakdown"`

	State      string `json:"state"`
	Exportable bool   `json:"exportable"`
}

func toRecordResponse(record *model.ModelRecord) recordResponse {
	breakdown := make([]breakdownEntryResponse, len(record.Breakdown))
	for i, entry := range record.Breakdown {
		breakdown[i] = breakdownEntryResponse{
			Factor: entry.FactorID.String(),
			Value:  entry.Value,
			Points: entry.Points,
			Valid:  entry.Valid,
		}
	}

	selections := make(map[string]string, len(record.FactorSelections))
	for id, value := range record.FactorSelections {
		selections[id.String()] = value
	}

	state := record.State()
	return recordResponse{
		ModelID:          record.ID.String(),
		ModelName:        record.ModelName,
		BusinessUse:      record.BusinessUse,
		Domain:           record.Domain,
		ModelType:        record.ModelType,
		DeploymentMode:   record.DeploymentMode,
		OwnerTeam:        record.OwnerTeam,
		ModelStage:       record.ModelStage,
		DeploymentRegion: record.DeploymentRegion,
		CreatedBy:        record.CreatedBy,
		FactorSelections: selections,
		CreatedAt:        record.CreatedAt,
		ScoringVersion:   record.ScoringVersion,

		InherentRiskScore:       record.TotalScore,
		ProposedRiskTier:        record.TierName,
		ProposedTierDescription: record.TierDescription,
		ScoreBreakdown:          breakdown,

		State:      state.String(),
		Exportable: state == types.RecordStateExportable,
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req submissionRequest
	if err := decodeJSON(r, &req); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	record, err := s.uc.Registrar.Register(r.Context(), req.toSubmission())
	if err != nil {
		s.writeRegisterError(w, r, err)
		return
	}

	writeJSON(r.Context(), w, http.StatusCreated, toRecordResponse(record))
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}

	record, err := s.uc.Registrar.ImportArtifact(r.Context(), data)
	if err != nil {
		if errors.Is(err, model.ErrFormatVersionMismatch) {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		}
		s.writeRegisterError(w, r, err)
		return
	}

	writeJSON(r.Context(), w, http.StatusCreated, toRecordResponse(record))
}

func (s *Server) writeRegisterError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		resp := struct {
			Error  string   `json:"error"`
			Fields []string `json:"fields"`
		}{
			Error:  verr.Error(),
			Fields: verr.Fields(),
		}
		writeJSON(r.Context(), w, http.StatusBadRequest, resp)
		return
	}
	errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	var filter types.RecordState
	if v := r.URL.Query().Get("state"); v != "" {
		state, err := types.ParseRecordState(v)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid state filter",
				goerr.V("valid", types.AllRecordStates())), http.StatusBadRequest)
			return
		}
		filter = state
	}

	records, err := s.uc.Registrar.ListRecords(r.Context())
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}

	resp := struct {
		Models []recordResponse `json:"models"`
	}{
		Models: make([]recordResponse, 0, len(records)),
	}
	for _, record := range records {
		if filter != "" && record.State() != filter {
			continue
		}
		resp.Models = append(resp.Models, toRecordResponse(record))
	}
	writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	record, err := s.uc.Registrar.GetRecord(r.Context(), types.ModelID(chi.URLParam(r, "id")))
	if err != nil {
		s.writeRecordError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toRecordResponse(record))
}

func (s *Server) handleNarrative(w http.ResponseWriter, r *http.Request) {
	var req narrativeRequest
	if err := decodeJSON(r, &req); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	record, err := s.uc.Narrative.Update(r.Context(), types.ModelID(chi.URLParam(r, "id")), model.Narrative{
		OwnerRiskNarrative:  req.OwnerRiskNarrative,
		MitigationsProposed: req.MitigationsProposed,
		OpenQuestions:       req.OpenQuestions,
	})
	if err != nil {
		s.writeRecordError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toRecordResponse(record))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	artifact, err := s.uc.Export.Assemble(r.Context(), types.ModelID(chi.URLParam(r, "id")))
	if err != nil {
		if errors.Is(err, usecase.ErrNotExportable) {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusConflict)
			return
		}
		s.writeRecordError(w, r, err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.FileName()))
	writeJSON(r.Context(), w, http.StatusOK, artifact)
}

func (s *Server) handlePolicy(w http.ResponseWriter, r *http.Request) {
	type valueResponse struct {
		Value  string `json:"value"`
		Points int    `json:"points"`
	}
	type factorResponse struct {
		ID     string          `json:"id"`
		Name   string          `json:"name"`
		Values []valueResponse `json:"values"`
	}
	type tierResponse struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		MinScore    int    `json:"min_score"`
		MaxScore    int    `json:"max_score"`
		Description string `json:"description"`
	}
	type policyResponse struct {
		ScoringVersion  string           `json:"scoring_version"`
		Factors         []factorResponse `json:"factors"`
		Tiers           []tierResponse   `json:"tiers"`
		Domains         []string         `json:"domains"`
		ModelTypes      []string         `json:"model_types"`
		DeploymentModes []string         `json:"deployment_modes"`
		ModelStages     []string         `json:"model_stages"`
	}

	resp := policyResponse{
		ScoringVersion:  s.policy.Catalog.ScoringVersion,
		Factors:         make([]factorResponse, len(s.policy.Catalog.Factors)),
		Tiers:           make([]tierResponse, len(s.policy.TierTable.Tiers)),
		Domains:         s.policy.Options.Domains,
		ModelTypes:      s.policy.Options.ModelTypes,
		DeploymentModes: s.policy.Options.DeploymentModes,
		ModelStages:     s.policy.Options.ModelStages,
	}
	for i, f := range s.policy.Catalog.Factors {
		values := make([]valueResponse, len(f.Values))
		for j, v := range f.Values {
			values[j] = valueResponse{Value: v.Value, Points: v.Points}
		}
		resp.Factors[i] = factorResponse{ID: f.ID.String(), Name: f.Name, Values: values}
	}
	for i, t := range s.policy.TierTable.Tiers {
		resp.Tiers[i] = tierResponse{
			ID:          t.ID.String(),
			Name:        t.Name,
			MinScore:    t.MinScore,
			MaxScore:    t.MaxScore,
			Description: t.Description,
		}
	}

	writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (s *Server) writeRecordError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, usecase.ErrRecordNotFound) {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusNotFound)
		return
	}
	errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		return goerr.Wrap(err, "failed to decode request body")
	}
	return nil
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(ctx, w, data)
}
