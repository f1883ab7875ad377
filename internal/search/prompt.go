package search

import (
	"fmt"
	"strings"

	"github.com/medbridge/medbridge/internal/types"
)

const patientFocus = `PATIENT FOCUS: Prioritize practical information, patient-friendly language, local options, and supportive resources. Focus on trials they can join, accessible information, and community support.`

const researcherFocus = `RESEARCHER FOCUS: Prioritize research quality, collaboration opportunities, academic rigor, and scientific depth. Focus on cutting-edge research, peer connections, and professional advancement.`

// buildSystemPrompt produces the role-aware scoring instruction set
func buildSystemPrompt(req types.SearchRequest) string {
	var sb strings.Builder
	sb.WriteString(`You are a medical search relevance expert. Score the relevance of clinical trials, researchers, forum questions, and publications on a scale of 0-100 based on the user's query, condition, user type, and location.

`)

	if req.UserType == types.UserTypePatient {
		sb.WriteString(patientFocus)
	} else {
		sb.WriteString(researcherFocus)
	}
	sb.WriteString("\n\n")

	if req.Location != "" {
		sb.WriteString(fmt.Sprintf("LOCATION PRIORITY: Give higher scores (+20 points) to items matching or near location: %s. For trials and researchers, proximity is very important.\n\n", req.Location))
	}

	sb.WriteString(`Return ONLY valid JSON with this exact structure:
{
  "trials": [{"id": "uuid", "score": 95, "reason": "brief explanation"}],
  "researchers": [{"id": "uuid", "score": 90, "reason": "brief explanation"}],
  "questions": [{"id": "uuid", "score": 85, "reason": "brief explanation"}],
  "publications": [{"id": "uuid", "score": 80, "reason": "brief explanation"}]
}

Only include items with score >= 30. Sort each array by score descending.`)

	return sb.String()
}

// buildUserPrompt serializes the requester context and the four candidate
// collections, one candidate per line
func buildUserPrompt(req types.SearchRequest, c candidates) string {
	var sb strings.Builder

	userType := string(req.UserType)
	if userType == "" {
		userType = "unknown"
	}
	condition := req.Condition
	if condition == "" {
		condition = "unknown"
	}

	sb.WriteString(fmt.Sprintf("User type: %s\n", userType))
	sb.WriteString(fmt.Sprintf("Query: %q\n", req.Query))
	sb.WriteString(fmt.Sprintf("Condition: %q\n", condition))
	if req.Location != "" {
		sb.WriteString(fmt.Sprintf("Location: %q\n", req.Location))
	}

	sb.WriteString("\nClinical Trials:\n")
	for _, t := range c.trials {
		sb.WriteString(fmt.Sprintf("ID: %s, Title: %s, Description: %s, Phase: %s, Status: %s", t.ID, t.Title, t.Description, t.Phase, t.Status))
		if t.Location != "" {
			sb.WriteString(fmt.Sprintf(", Location: %s", t.Location))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\nResearchers:\n")
	for _, r := range c.researchers {
		sb.WriteString(fmt.Sprintf("ID: %s, Name: %s, Specialty: %s, Institution: %s", r.ID, r.Name, r.Specialty, r.Institution))
		if r.Location != "" {
			sb.WriteString(fmt.Sprintf(", Location: %s", r.Location))
		}
		sb.WriteString(fmt.Sprintf(", Interests: %s\n", r.Interests))
	}

	sb.WriteString("\nForum Questions:\n")
	for _, q := range c.questions {
		sb.WriteString(fmt.Sprintf("ID: %s, Title: %s, Content: %s, Category: %s\n", q.ID, q.Title, q.Content, q.Category))
	}

	sb.WriteString("\nPublications:\n")
	for _, p := range c.publications {
		sb.WriteString(fmt.Sprintf("ID: %s, Title: %s, Journal: %s, Year: %d, Authors: %s\n", p.ID, p.Title, p.Journal, p.Year, p.Authors))
	}

	return sb.String()
}
