package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderOllama Provider = "ollama"
	ProviderGroq   Provider = "groq"
	ProviderNone   Provider = "none"
)

type Service struct {
	provider Provider
	apiKey   string
	model    string
	timeout  time.Duration
}

// ResumeExtraction is the structured profile pulled out of a resume.
type ResumeExtraction struct {
	Candidate      Candidate   `json:"candidate"`
	Skills         []Skill     `json:"skills"`
	SoftSkills     []string    `json:"soft_skills"`
	Certifications []string    `json:"certifications"`
	Companies      []Company   `json:"companies"`
	Education      []Education `json:"education"`
	Locations      []string    `json:"locations"`
	Languages      []string    `json:"languages"`
}

type Candidate struct {
	Name                 string      `json:"name"`
	CurrentPosition      string      `json:"current_position"`
	Seniority            string      `json:"seniority"`
	TotalExperienceYears interface{} `json:"total_experience_years"` // Can be int, string, or null
}

type Skill struct {
	Name           string  `json:"skill"`
	Proficiency    string  `json:"proficiency"`
	Years          *int    `json:"years"`
	Confidence     float64 `json:"confidence"`
	NormalizedFrom string  `json:"normalized_from,omitempty"`
}

type Company struct {
	Name          string      `json:"name"`
	Position      string      `json:"position"`
	DurationYears interface{} `json:"duration_years"` // Can be int or float
	StartYear     interface{} `json:"start_year"`     // Can be int or string
	EndYear       interface{} `json:"end_year"`       // Can be int or string
	IsCurrent     bool        `json:"is_current"`
	Confidence    float64     `json:"confidence"`
}

type Education struct {
	Degree         string      `json:"degree"`
	Field          string      `json:"field"`
	Institution    string      `json:"institution"`
	GraduationYear interface{} `json:"graduation_year"` // Can be int or string
}

// JobExtraction is the structured attribute set pulled out of a job
// description.
type JobExtraction struct {
	RequiredSkills   []string `json:"required_skills"`
	PreferredSkills  []string `json:"preferred_skills"`
	Certifications   []string `json:"certifications"`
	Responsibilities []string `json:"responsibilities"`
	Roles            []string `json:"suitable_roles"`
	Benefits         []string `json:"benefits"`
}

func NewService(provider, apiKey, model string) *Service {
	return &Service{
		provider: Provider(provider),
		apiKey:   apiKey,
		model:    model,
		timeout:  600 * time.Second, // large resumes and slower models
	}
}

// Generate sends a raw prompt and returns the model's response.
func (s *Service) Generate(ctx context.Context, prompt string) (string, error) {
	switch s.provider {
	case ProviderOpenAI:
		return s.callOpenAI(ctx, prompt, true)
	case ProviderOllama:
		return s.callOllama(ctx, prompt)
	case ProviderGroq:
		return s.callGroq(ctx, prompt, true)
	case ProviderNone:
		return "", fmt.Errorf("LLM provider not configured")
	default:
		return "", fmt.Errorf("unknown provider: %s", s.provider)
	}
}

// generateText is Generate without JSON response forcing, for prose output.
func (s *Service) generateText(ctx context.Context, prompt string) (string, error) {
	switch s.provider {
	case ProviderOpenAI:
		return s.callOpenAI(ctx, prompt, false)
	case ProviderOllama:
		return s.callOllama(ctx, prompt)
	case ProviderGroq:
		return s.callGroq(ctx, prompt, false)
	case ProviderNone:
		return "", fmt.Errorf("LLM provider not configured")
	default:
		return "", fmt.Errorf("unknown provider: %s", s.provider)
	}
}

// ExtractResume parses resume text into a structured profile.
func (s *Service) ExtractResume(ctx context.Context, resumeText string) (*ResumeExtraction, error) {
	response, err := s.Generate(ctx, buildResumePrompt(resumeText))
	if err != nil {
		return nil, err
	}

	var extraction ResumeExtraction
	if err := json.Unmarshal([]byte(response), &extraction); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}
	return &extraction, nil
}

// ExtractJobAttributes parses a job description into the attribute sets the
// graph projection needs.
func (s *Service) ExtractJobAttributes(ctx context.Context, title, description string) (*JobExtraction, error) {
	response, err := s.Generate(ctx, buildJobPrompt(title, description))
	if err != nil {
		return nil, err
	}

	var extraction JobExtraction
	if err := json.Unmarshal([]byte(response), &extraction); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}
	return &extraction, nil
}

// GenerateJobDescription writes a job description from a title and a sparse
// attribute list supplied by the employer.
func (s *Service) GenerateJobDescription(ctx context.Context, title string, attributes map[string]string) (string, error) {
	var attrs strings.Builder
	for k, v := range attributes {
		if v == "" {
			continue
		}
		fmt.Fprintf(&attrs, "- %s: %s\n", k, v)
	}

	prompt := fmt.Sprintf(`You are a recruiting copywriter. Write a clear, professional job description.

Job title: %s
Attributes:
%s
Write 3-5 short paragraphs: role summary, responsibilities, requirements, and what the company offers. Plain text only, no markdown headings.`, title, attrs.String())

	return s.generateText(ctx, prompt)
}

// EvaluateMatchSummary writes a short explanation of why a candidate matches
// a job, shown in the employer's match notification.
func (s *Service) EvaluateMatchSummary(ctx context.Context, jobTitle string, jobSkills, candidateSkills []string, score float64) (string, error) {
	prompt := fmt.Sprintf(`You are a recruiting assistant. In 2-3 sentences, explain to an employer why this candidate matches their open position. Be specific and factual, no superlatives.

Position: %s
Position requires: %s
Candidate offers: %s
Computed match score: %.2f`,
		jobTitle,
		strings.Join(jobSkills, ", "),
		strings.Join(candidateSkills, ", "),
		score)

	return s.generateText(ctx, prompt)
}

func buildResumePrompt(resumeText string) string {
	return fmt.Sprintf(`You are an expert resume parser. Extract structured information from this resume.

Resume text:
"""
%s
"""

Extract and return ONLY valid JSON (no markdown, no explanation) with this exact structure:
{
  "candidate": {
    "name": "Full name",
    "current_position": "Current job title",
    "seniority": "Junior|Mid-level|Senior|Lead|Architect",
    "total_experience_years": 0
  },
  "skills": [
    {
      "skill": "Canonical skill name",
      "proficiency": "Beginner|Intermediate|Advanced|Expert",
      "years": null,
      "confidence": 0.95,
      "normalized_from": "Original text if normalized"
    }
  ],
  "soft_skills": ["Communication", "Leadership"],
  "certifications": ["Certification names"],
  "companies": [
    {
      "name": "Company name",
      "position": "Job title",
      "duration_years": null,
      "start_year": null,
      "end_year": null,
      "is_current": false,
      "confidence": 0.95
    }
  ],
  "education": [
    {
      "degree": "Degree type",
      "field": "Field of study",
      "institution": "University name",
      "graduation_year": null
    }
  ],
  "locations": ["City names"],
  "languages": ["Language names"]
}

Important:
- Normalize skill names (e.g., "K8s" → "Kubernetes", "JS" → "JavaScript", "React.js" → "React")
- Infer proficiency from context (e.g., "expert in Java" → "Expert", "familiar with Python" → "Beginner")
- Separate soft skills (communication, teamwork) from technical skills
- Calculate duration from date ranges if available
- Extract implicit skills (e.g., "built microservices" → add "Microservices")
- Return empty arrays if no data found for a category
- Use null for missing numeric values`, resumeText)
}

func buildJobPrompt(title, description string) string {
	return fmt.Sprintf(`You are an expert job posting parser. Extract structured attributes from this posting.

Job title: %s

Description:
"""
%s
"""

Extract and return ONLY valid JSON (no markdown, no explanation) with this exact structure:
{
  "required_skills": ["Must-have skill names"],
  "preferred_skills": ["Nice-to-have skill names"],
  "certifications": ["Required certification names"],
  "responsibilities": ["Short responsibility phrases"],
  "suitable_roles": ["Role titles a fitting candidate held before"],
  "benefits": ["Offered benefits"]
}

Important:
- Normalize skill names (e.g., "K8s" → "Kubernetes", "JS" → "JavaScript")
- Keep responsibility phrases under 10 words each
- Return empty arrays if no data found for a category`, title, description)
}

func (s *Service) callOpenAI(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	reqBody := map[string]interface{}{
		"model": s.model,
		"messages": []map[string]string{
			{
				"role":    "system",
				"content": "You are a recruiting data assistant. Follow the output format exactly.",
			},
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"temperature": 0.1,
	}
	if jsonMode {
		reqBody["response_format"] = map[string]string{"type": "json_object"}
	}

	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, "POST",
		"https://api.openai.com/v1/chat/completions",
		bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: s.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenAI API error: %d", resp.StatusCode)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("OpenAI error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return result.Choices[0].Message.Content, nil
}

func (s *Service) callOllama(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model":  s.model,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	}

	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, "POST",
		"http://localhost:11434/api/generate",
		bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: s.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("Ollama connection failed (is Ollama running?): %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Response string `json:"response"`
		Error    string `json:"error"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.Error != "" {
		return "", fmt.Errorf("Ollama error: %s", result.Error)
	}

	return result.Response, nil
}

func (s *Service) callGroq(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	reqBody := map[string]interface{}{
		"model": s.model,
		"messages": []map[string]string{
			{
				"role":    "system",
				"content": "You are a recruiting data assistant. Follow the output format exactly.",
			},
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"temperature": 0.1,
	}
	if jsonMode {
		reqBody["response_format"] = map[string]string{"type": "json_object"}
	}

	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, "POST",
		"https://api.groq.com/openai/v1/chat/completions",
		bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: s.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("Groq API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Groq API error: %d", resp.StatusCode)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("Groq error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no response from Groq")
	}

	return result.Choices[0].Message.Content, nil
}
