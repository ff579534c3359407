package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	httpctrl "github.com/apexfs/firstline/pkg/controller/http"
	"github.com/apexfs/firstline/pkg/domain/model"
	"github.com/apexfs/firstline/pkg/domain/model/config"
	"github.com/apexfs/firstline/pkg/repository/memory"
	"github.com/apexfs/firstline/pkg/usecase"
)

func testPolicy() *config.Policy {
	return &config.Policy{
		Catalog: config.Catalog{
			ScoringVersion: "v1.2",
			Factors: []config.Factor{
				{
					ID:   "decision_criticality",
					Name: "Decision Criticality",
					Values: []config.FactorValue{
						{Value: "Low", Points: 1},
						{Value: "High", Points: 5},
					},
				},
				{
					ID:   "data_sensitivity",
					Name: "Data Sensitivity",
					Values: []config.FactorValue{
						{Value: "Public", Points: 1},
						{Value: "Regulated-PII", Points: 5},
					},
				},
			},
		},
		TierTable: config.TierTable{
			Tiers: []config.Tier{
				{ID: "low", Name: "Low", MinScore: 0, MaxScore: 5, Description: "Minimal oversight needed."},
				{ID: "high", Name: "High", MinScore: 6, MaxScore: 10, Description: "Independent validation required."},
			},
		},
	}
}

func newServer(t *testing.T) *httpctrl.Server {
	t.Helper()
	policy := testPolicy()
	uc, err := usecase.New(memory.New(), policy, usecase.WithClock(func() time.Time {
		return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	}))
	gt.NoError(t, err).Required()
	return httpctrl.New(uc, policy)
}

func doJSON(t *testing.T, s *httpctrl.Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		gt.NoError(t, json.NewEncoder(&buf).Encode(body)).Required()
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func validBody() map[string]any {
	return map[string]any{
		"model_name":      "Churn Predictor",
		"business_use":    "Predicts customer churn for retention campaigns",
		"domain":          "Fraud Detection",
		"model_type":      "ML classifier",
		"deployment_mode": "Batch",
		"owner_team":      "Data Science",
		"factor_selections": map[string]string{
			"decision_criticality": "Low",
			"data_sensitivity":     "Public",
		},
	}
}

func decodeRecord(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
	return resp
}

func TestServer_RegisterFlow(t *testing.T) {
	s := newServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/models", validBody())
	gt.Number(t, rec.Code).Equal(http.StatusCreated)

	resp := decodeRecord(t, rec)
	gt.Value(t, resp["model_name"]).Equal("Churn Predictor")
	gt.Value(t, resp["inherent_risk_score"]).Equal(float64(2))
	gt.Value(t, resp["proposed_risk_tier"]).Equal("Low")
	gt.Value(t, resp["state"]).Equal("SCORED")
	gt.Value(t, resp["exportable"]).Equal(false)

	breakdown := resp["score_breakdown"].([]any)
	gt.Array(t, breakdown).Length(2).Required()
	first := breakdown[0].(map[string]any)
	gt.Value(t, first["factor"]).Equal("decision_criticality")
	gt.Value(t, first["valid"]).Equal(true)

	id := resp["model_id"].(string)
	gt.Value(t, id == "").Equal(false)

	t.Run("get by ID", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodGet, "/api/models/"+id, nil)
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		got := decodeRecord(t, rec)
		gt.Value(t, got["model_id"]).Equal(id)
	})

	t.Run("list", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodGet, "/api/models", nil)
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		var listResp struct {
			Models []map[string]any `json:"models"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp)).Required()
		gt.Array(t, listResp.Models).Length(1)
	})
}

func TestServer_RegisterValidationError(t *testing.T) {
	s := newServer(t)

	body := validBody()
	body["business_use"] = ""
	body["factor_selections"] = map[string]string{
		"decision_criticality": "Extreme",
	}

	rec := doJSON(t, s, http.MethodPost, "/api/models", body)
	gt.Number(t, rec.Code).Equal(http.StatusBadRequest)

	var resp struct {
		Error  string   `json:"error"`
		Fields []string `json:"fields"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
	gt.Array(t, resp.Fields).Has("business_use")
	gt.Array(t, resp.Fields).Has("decision_criticality")
	gt.Array(t, resp.Fields).Has("data_sensitivity")
	gt.String(t, resp.Error).Contains("business_use")
}

func TestServer_RegisterMalformedJSON(t *testing.T) {
	s := newServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/models", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
}

func TestServer_GetNotFound(t *testing.T) {
	s := newServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/models/no-such-id", nil)
	gt.Number(t, rec.Code).Equal(http.StatusNotFound)
}

func TestServer_NarrativeAndExport(t *testing.T) {
	s := newServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/models", validBody())
	gt.Number(t, rec.Code).Equal(http.StatusCreated)
	id := decodeRecord(t, rec)["model_id"].(string)

	t.Run("export before narrative conflicts", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodGet, "/api/models/"+id+"/export", nil)
		gt.Number(t, rec.Code).Equal(http.StatusConflict)
	})

	t.Run("short narrative keeps the record scored", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPut, "/api/models/"+id+"/narrative", map[string]any{
			"owner_risk_narrative": strings.Repeat("a", model.NarrativeMinLength-1),
		})
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		resp := decodeRecord(t, rec)
		gt.Value(t, resp["state"]).Equal("SCORED")
		gt.Value(t, resp["exportable"]).Equal(false)
	})

	t.Run("sufficient narrative unlocks export", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPut, "/api/models/"+id+"/narrative", map[string]any{
			"owner_risk_narrative": strings.Repeat("a", model.NarrativeMinLength),
			"mitigations_proposed": "Quarterly recalibration review",
		})
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		resp := decodeRecord(t, rec)
		gt.Value(t, resp["state"]).Equal("EXPORTABLE")
		gt.Value(t, resp["exportable"]).Equal(true)
	})

	t.Run("export artifact", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodGet, "/api/models/"+id+"/export", nil)
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		gt.String(t, rec.Header().Get("Content-Disposition")).Contains(`churn_predictor.json`)

		artifact := decodeRecord(t, rec)
		gt.Value(t, artifact["export_format_version"]).Equal("lab1_export_v1")
		gt.Value(t, artifact["inherent_risk_score"]).Equal(float64(2))
		gt.Value(t, artifact["mitigations_proposed"]).Equal("Quarterly recalibration review")
		// optional fields are explicit nulls
		gt.Map(t, artifact).HasKey("model_stage")
		gt.Value(t, artifact["model_stage"]).Equal(nil)
	})

	t.Run("round-trip through import", func(t *testing.T) {
		exportRec := doJSON(t, s, http.MethodGet, "/api/models/"+id+"/export", nil)
		gt.Number(t, exportRec.Code).Equal(http.StatusOK)

		req := httptest.NewRequest(http.MethodPost, "/api/models/import", bytes.NewReader(exportRec.Body.Bytes()))
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		gt.Number(t, rec.Code).Equal(http.StatusCreated)

		resp := decodeRecord(t, rec)
		gt.Value(t, resp["model_id"]).Equal(id)
		gt.Value(t, resp["state"]).Equal("EXPORTABLE")
	})

	t.Run("narrative for unknown record", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPut, "/api/models/no-such-id/narrative", map[string]any{
			"owner_risk_narrative": strings.Repeat("a", model.NarrativeMinLength),
		})
		gt.Number(t, rec.Code).Equal(http.StatusNotFound)
	})
}

func TestServer_ListStateFilter(t *testing.T) {
	s := newServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/models", validBody())
	gt.Number(t, rec.Code).Equal(http.StatusCreated)
	scoredID := decodeRecord(t, rec)["model_id"].(string)

	second := validBody()
	second["model_name"] = "Limit Monitor"
	rec = doJSON(t, s, http.MethodPost, "/api/models", second)
	gt.Number(t, rec.Code).Equal(http.StatusCreated)
	exportableID := decodeRecord(t, rec)["model_id"].(string)

	rec = doJSON(t, s, http.MethodPut, "/api/models/"+exportableID+"/narrative", map[string]any{
		"owner_risk_narrative": strings.Repeat("a", model.NarrativeMinLength),
	})
	gt.Number(t, rec.Code).Equal(http.StatusOK)

	listModels := func(t *testing.T, query string) []map[string]any {
		t.Helper()
		rec := doJSON(t, s, http.MethodGet, "/api/models"+query, nil)
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		var resp struct {
			Models []map[string]any `json:"models"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
		return resp.Models
	}

	t.Run("no filter returns everything", func(t *testing.T) {
		gt.Array(t, listModels(t, "")).Length(2)
	})

	t.Run("filter by exportable", func(t *testing.T) {
		models := listModels(t, "?state=EXPORTABLE")
		gt.Array(t, models).Length(1).Required()
		gt.Value(t, models[0]["model_id"]).Equal(exportableID)
	})

	t.Run("filter by scored", func(t *testing.T) {
		models := listModels(t, "?state=SCORED")
		gt.Array(t, models).Length(1).Required()
		gt.Value(t, models[0]["model_id"]).Equal(scoredID)
	})

	t.Run("unknown state is rejected", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodGet, "/api/models?state=exported", nil)
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	})
}

func TestServer_ImportRejectsWrongVersion(t *testing.T) {
	s := newServer(t)

	body := strings.NewReader(`{"model_id":"x","model_name":"y","export_format_version":"v999"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/models/import", body)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
}

func TestServer_Policy(t *testing.T) {
	s := newServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/policy", nil)
	gt.Number(t, rec.Code).Equal(http.StatusOK)

	var resp struct {
		ScoringVersion string `json:"scoring_version"`
		Factors        []struct {
			ID     string `json:"id"`
			Values []struct {
				Value  string `json:"value"`
				Points int    `json:"points"`
			} `json:"values"`
		} `json:"factors"`
		Tiers []struct {
			ID       string `json:"id"`
			MinScore int    `json:"min_score"`
			MaxScore int    `json:"max_score"`
		} `json:"tiers"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
	gt.Value(t, resp.ScoringVersion).Equal("v1.2")
	gt.Array(t, resp.Factors).Length(2).Required()
	gt.Value(t, resp.Factors[0].ID).Equal("decision_criticality")
	gt.Array(t, resp.Tiers).Length(2).Required()
	gt.Number(t, resp.Tiers[1].MaxScore).Equal(10)
}
