package api

import (
	"github.com/JaimeStill/sgmr/internal/cases"
	"github.com/JaimeStill/sgmr/internal/config"
	"github.com/JaimeStill/sgmr/pkg/openapi"
)

func ptr[T any](v T) *T { return &v }

func buildDocument(cfg *config.Config) *openapi.Document {
	doc := openapi.New(cfg.API.OpenAPI.Title, cfg.Version, cfg.API.OpenAPI.Description, cfg.API.BasePath)
	doc.AddSchemas(schemas())

	caseID := openapi.PathParam("id", "Case identifier", cases.IDPattern)

	doc.Paths["/diagnoses"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Submit symptoms",
			Description: "Classifies the symptoms, persists a case, and notifies the reviewer. A failed notification still answers 201 with delivered=false.",
			Tags:        []string{"Diagnoses"},
			RequestBody: openapi.JSONBody("Submission"),
			Responses: map[int]*openapi.Response{
				201: openapi.JSONResponse("Case created", "IntakeResult"),
				400: openapi.ResponseRef("BadRequest"),
				413: openapi.ResponseRef("TooLarge"),
				422: openapi.JSONResponse("Missing required field", "IntakeResult"),
				429: openapi.ResponseRef("TooManyRequests"),
				502: openapi.ResponseRef("BadGateway"),
			},
		},
	}

	doc.Paths["/cases/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Get case",
			Tags:       []string{"Cases"},
			Parameters: []*openapi.Parameter{caseID},
			Responses: map[int]*openapi.Response{
				200: openapi.JSONResponse("Case", "Case"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	doc.Paths["/cases/{id}/reply"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Send verified reply",
			Description: "Emails the doctor's verified text to the patient. The first delivered reply is recorded on the case.",
			Tags:        []string{"Cases"},
			Parameters:  []*openapi.Parameter{caseID},
			RequestBody: openapi.JSONBody("Reply"),
			Responses: map[int]*openapi.Response{
				200: openapi.JSONResponse("Reply delivered", "ReviewResult"),
				400: openapi.ResponseRef("BadRequest"),
				404: openapi.ResponseRef("NotFound"),
				413: openapi.ResponseRef("TooLarge"),
				422: openapi.JSONResponse("Doctor name or text missing", "ReviewResult"),
				429: openapi.ResponseRef("TooManyRequests"),
				502: openapi.JSONResponse("Reply could not be delivered", "ReviewResult"),
			},
		},
	}

	return doc
}

func schemas() map[string]*openapi.Schema {
	str := func(desc string) *openapi.Schema {
		return &openapi.Schema{Type: "string", Description: desc}
	}
	probability := &openapi.Schema{Type: "number", Minimum: ptr(0.0), Maximum: ptr(1.0)}

	return map[string]*openapi.Schema{
		"Submission": {
			Type:     "object",
			Required: []string{"name", "email", "symptoms"},
			Properties: map[string]*openapi.Schema{
				"name":     str("Patient name"),
				"email":    {Type: "string", Format: "email"},
				"symptoms": str("Free-text symptom description"),
			},
		},
		"Candidate": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"label":       str("Display name"),
				"raw_label":   str("Classifier label"),
				"probability": probability,
				"severity":    str("Severity tier or Unknown"),
			},
		},
		"Report": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"patient_name":   {Type: "string"},
				"patient_email":  {Type: "string"},
				"symptoms":       {Type: "string"},
				"candidates":     {Type: "array", Items: openapi.Ref("Candidate")},
				"model_accuracy": probability,
			},
		},
		"Review": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"doctor":  {Type: "string"},
				"text":    {Type: "string"},
				"sent_at": {Type: "string", Format: "date-time"},
			},
		},
		"Case": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":            {Type: "string", Pattern: cases.IDPattern},
				"patient_email": {Type: "string"},
				"report":        openapi.Ref("Report"),
				"report_text":   str("Canonical rendered report"),
				"created_at":    {Type: "string", Format: "date-time"},
				"review":        openapi.Ref("Review"),
			},
		},
		"ValidationWarning": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"field":   {Type: "string", Enum: []string{"symptoms", "email", "name"}},
				"message": {Type: "string"},
			},
		},
		"IntakeResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"state":     {Type: "string", Enum: []string{"awaiting_input", "done"}},
				"warning":   openapi.Ref("ValidationWarning"),
				"case":      openapi.Ref("Case"),
				"delivered": {Type: "boolean"},
				"notice":    {Type: "string"},
			},
		},
		"Reply": {
			Type:     "object",
			Required: []string{"doctor", "text"},
			Properties: map[string]*openapi.Schema{
				"doctor": str("Doctor display name"),
				"text":   str("Verified report text"),
			},
		},
		"ReviewResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"state":     {Type: "string", Enum: []string{"awaiting_doctor_input", "done"}},
				"case":      openapi.Ref("Case"),
				"warning":   {Type: "string"},
				"delivered": {Type: "boolean"},
				"notice":    {Type: "string"},
			},
		},
	}
}
