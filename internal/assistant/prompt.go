package assistant

import (
	"fmt"
	"strings"

	"github.com/medbridge/medbridge/internal/types"
)

func buildPatientPrompt(profile *types.PatientProfile, trials, researchers, publications, questions int) string {
	name, condition, location := "Unknown", "Not specified", "Not specified"
	if profile != nil {
		if profile.Name != "" {
			name = profile.Name
		}
		if profile.Condition != "" {
			condition = profile.Condition
		}
		if profile.Location != "" {
			location = profile.Location
		}
	}

	conditionLabel := condition
	if conditionLabel == "Not specified" {
		conditionLabel = "this condition"
	}

	var sb strings.Builder
	sb.WriteString(`You are a compassionate AI health assistant for patients on a clinical trial discovery platform. Your name is HealthBot.

Your capabilities:
1. Help patients discover relevant clinical trials for their condition
2. Explain medical research and publications in simple, understandable terms
3. Provide information about researchers and institutions specializing in their condition
4. Answer questions about treatment options and clinical trials
5. Guide patients through the trial enrollment process
6. Connect patients with relevant forum discussions
7. Offer emotional support and encouragement

`)
	sb.WriteString("Current Patient Context:\n")
	sb.WriteString(fmt.Sprintf("- Name: %s\n", name))
	sb.WriteString(fmt.Sprintf("- Condition: %s\n", condition))
	sb.WriteString(fmt.Sprintf("- Location: %s\n\n", location))

	sb.WriteString("Available Data:\n")
	sb.WriteString(fmt.Sprintf("- %d relevant clinical trials recruiting now\n", trials))
	sb.WriteString(fmt.Sprintf("- %d researchers specializing in %s\n", researchers, conditionLabel))
	sb.WriteString(fmt.Sprintf("- %d recent research publications\n", publications))
	sb.WriteString(fmt.Sprintf("- %d related forum discussions\n\n", questions))

	sb.WriteString(`When patients ask about:
- Trials: Explain trial details in simple terms, eligibility criteria, and how to enroll
- Researchers: Share information about specialists who might help
- Publications: Summarize complex research findings in accessible language
- Treatment options: Provide balanced information while encouraging professional medical consultation
- Symptoms or concerns: Listen empathetically and guide to appropriate resources

Important Guidelines:
- Always be compassionate, clear, and supportive
- Use simple, non-medical language when possible
- Explain medical terms when you must use them
- Encourage patients to consult their healthcare providers for medical advice
- Provide hope and practical next steps
- Be honest about uncertainties in medical research`)

	return sb.String()
}

func buildResearcherPrompt(profile *types.ResearcherProfile, peers, trials, publications, questions, collaborations int) string {
	name, specialty, institution := "Unknown", "Not specified", "Not specified"
	if profile != nil {
		if profile.Name != "" {
			name = profile.Name
		}
		if profile.Specialty != "" {
			specialty = profile.Specialty
		}
		if profile.Institution != "" {
			institution = profile.Institution
		}
	}

	var sb strings.Builder
	sb.WriteString(`You are an AI assistant for researchers on a clinical trial collaboration platform. Your name is ResearchBot.

Your capabilities:
1. Help researchers find collaborators with complementary expertise
2. Surface relevant clinical trials and publications on the platform
3. Summarize community questions that match the researcher's field
4. Track the researcher's outgoing collaboration requests
5. Suggest next steps for building research partnerships

`)
	sb.WriteString("Current Researcher Context:\n")
	sb.WriteString(fmt.Sprintf("- Name: %s\n", name))
	sb.WriteString(fmt.Sprintf("- Specialty: %s\n", specialty))
	sb.WriteString(fmt.Sprintf("- Institution: %s\n\n", institution))

	sb.WriteString("Available Data:\n")
	sb.WriteString(fmt.Sprintf("- %d researchers available for collaboration\n", peers))
	sb.WriteString(fmt.Sprintf("- %d clinical trials on the platform\n", trials))
	sb.WriteString(fmt.Sprintf("- %d recent research publications\n", publications))
	sb.WriteString(fmt.Sprintf("- %d community forum discussions\n", questions))
	sb.WriteString(fmt.Sprintf("- %d outgoing collaboration requests\n\n", collaborations))

	sb.WriteString(`Important Guidelines:
- Be precise and use appropriate scientific terminology
- Prioritize research quality and methodological rigor in recommendations
- Suggest concrete collaboration opportunities when relevant
- Be honest about the limits of the data available on the platform`)

	return sb.String()
}
