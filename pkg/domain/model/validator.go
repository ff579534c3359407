package model

import (
	"sort"
	"strings"

	"github.com/apexfs/firstline/pkg/domain/model/config"
)

// FieldIssue describes a single offending field in a rejected submission
type FieldIssue struct {
	Field  string
	Reason string
}

// ValidationError is returned when a submission fails registration. It
// enumerates every offending field, not just the first, so the caller
// can display all problems at once. No partial record is produced when
// this error is returned.
type ValidationError struct {
	Issues []FieldIssue
}

// Error returns the string representation of the validation error
func (e *ValidationError) Error() string {
	fields := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		fields[i] = issue.Field + " (" + issue.Reason + ")"
	}
	return "submission validation failed: " + strings.Join(fields, ", ")
}

// Fields returns the names of all offending fields
func (e *ValidationError) Fields() []string {
	fields := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		fields[i] = issue.Field
	}
	return fields
}

// SubmissionValidator validates raw submissions against the loaded policy
type SubmissionValidator struct {
	catalog *config.Catalog
	options *config.MetadataOptions
}

// NewSubmissionValidator creates a new SubmissionValidator
func NewSubmissionValidator(catalog *config.Catalog, options *config.MetadataOptions) *SubmissionValidator {
	return &SubmissionValidator{
		catalog: catalog,
		options: options,
	}
}

const (
	reasonRequired     = "required field is empty"
	reasonNotInOptions = "value is not in the configured option list"
	reasonNotInCatalog = "value is not in the factor's allowed set"
)

// Validate checks the submission and returns a *ValidationError listing
// all offending fields, or nil when the submission is acceptable.
func (v *SubmissionValidator) Validate(sub Submission) error {
	var issues []FieldIssue

	required := []struct {
		field string
		value string
	}{
		{"model_name", sub.ModelName},
		{"business_use", sub.BusinessUse},
		{"domain", sub.Domain},
		{"model_type", sub.ModelType},
		{"deployment_mode", sub.DeploymentMode},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			issues = append(issues, FieldIssue{Field: f.field, Reason: reasonRequired})
		}
	}

	// Enum-constrained metadata fields are checked only when an option
	// list is configured; an empty list degrades the field to free text.
	enums := []struct {
		field   string
		value   string
		options []string
	}{
		{"domain", sub.Domain, v.options.Domains},
		{"model_type", sub.ModelType, v.options.ModelTypes},
		{"deployment_mode", sub.DeploymentMode, v.options.DeploymentModes},
		{"model_stage", sub.ModelStage, v.options.ModelStages},
	}
	for _, e := range enums {
		if e.value == "" || len(e.options) == 0 {
			continue
		}
		if !contains(e.options, e.value) {
			issues = append(issues, FieldIssue{Field: e.field, Reason: reasonNotInOptions})
		}
	}

	// Every catalog factor needs a selection drawn from its allowed set.
	for _, factor := range v.catalog.Factors {
		selected, ok := sub.FactorSelections[factor.ID]
		if !ok || selected == "" {
			issues = append(issues, FieldIssue{Field: factor.ID.String(), Reason: reasonRequired})
			continue
		}
		if _, ok := factor.Points(selected); !ok {
			issues = append(issues, FieldIssue{Field: factor.ID.String(), Reason: reasonNotInCatalog})
		}
	}

	// Selections for factors outside the catalog are rejected rather
	// than silently dropped. Sorted for reproducible issue ordering.
	var unknown []string
	for id := range sub.FactorSelections {
		if _, ok := v.catalog.Factor(id); !ok {
			unknown = append(unknown, id.String())
		}
	}
	sort.Strings(unknown)
	for _, id := range unknown {
		issues = append(issues, FieldIssue{Field: id, Reason: "unknown risk factor"})
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

func contains(options []string, value string) bool {
	for _, opt := range options {
		if opt == value {
			return true
		}
	}
	return false
}
