package ai

import (
	"fmt"
	"strings"

	"github.com/matheuskafuri/techradar/internal/topic"
)

// NewsRequest carries everything a news prompt is built from.
type NewsRequest struct {
	Topic     topic.Key
	Query     string
	Exclude   []string
	Count     int
	Headlines []string
}

const newsSystem = `You are an API that returns data in JSON format. You do not provide conversational text, summaries, or any output that is not valid JSON matching the user's requested schema.`

const outputFormat = `Output Format:
- Return a JSON array of exactly %d objects and nothing else.
- Do NOT use markdown code fences.
- Do NOT include any text before or after the JSON.
- Each object MUST have this exact structure:
  {"title": "string", "summary": "string", "sourceUrl": "string", "sourceTitle": "string"}`

const techTask = `Task: Find, analyze, and summarize the %d most recent and impactful technical updates, tool releases, and research findings from the last 48 hours for a broad AI development and research team.

Focus on significant developments across these domains: %s.

Prioritize new open-source tool releases, new developer platforms and APIs, influential research papers with practical implications, and breakthroughs in model architecture, training, or performance optimization.

AVOID business-centric news like funding rounds, partnerships, or market analysis. Focus on the technology itself.

For each item, write a 2-3 sentence summary explaining its technical significance for developers or researchers.`

const nvidiaTask = `Task: Find, analyze, and summarize the %d most recent and impactful technical updates, tool releases, and research findings from the last 48 hours exclusively about NVIDIA technologies.

Stay strictly within the NVIDIA ecosystem. Focus on these domains: %s.

Do NOT include news about other companies unless it is a partnership or integration with NVIDIA technology.

For each item, write a 2-3 sentence summary explaining its technical significance for developers using NVIDIA hardware and software.`

const customTask = `Task: Research the user's technical query. Find the %d most relevant and recent news articles, technical blog posts, or official documentation releases about it from the last 48 hours.

User's Query: %q

Focus ONLY on the query. Prefer primary sources such as official blogs, GitHub repositories, and research papers. Summarize each finding in 2-3 sentences. AVOID high-level business news.`

// NewsPrompt builds the instruction for one round of articles.
func NewsPrompt(r NewsRequest) (Prompt, error) {
	var task string
	switch r.Topic {
	case topic.Tech:
		task = fmt.Sprintf(techTask, r.Count, strings.Join(r.Topic.Domains(), ", "))
	case topic.Nvidia:
		task = fmt.Sprintf(nvidiaTask, r.Count, strings.Join(r.Topic.Domains(), ", "))
	case topic.Custom:
		if strings.TrimSpace(r.Query) == "" {
			return Prompt{}, fmt.Errorf("custom topic requires a query")
		}
		task = fmt.Sprintf(customTask, r.Count, strings.TrimSpace(r.Query))
	default:
		return Prompt{}, fmt.Errorf("%w %q", topic.ErrUnknown, r.Topic)
	}

	var sb strings.Builder
	sb.WriteString(task)
	if len(r.Headlines) > 0 {
		sb.WriteString("\n\nRecent headlines you may draw on:\n")
		for _, h := range r.Headlines {
			sb.WriteString("- ")
			sb.WriteString(h)
			sb.WriteString("\n")
		}
	}
	if len(r.Exclude) > 0 {
		quoted := make([]string, len(r.Exclude))
		for i, t := range r.Exclude {
			quoted[i] = fmt.Sprintf("%q", t)
		}
		sb.WriteString("\n\nCRITICAL: Do not include any articles with the following titles, as they have already been shown: ")
		sb.WriteString(strings.Join(quoted, ", "))
		sb.WriteString(".")
	}
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf(outputFormat, r.Count))

	return Prompt{System: newsSystem, User: sb.String(), Search: true}, nil
}

const validationPrompt = `Analyze the user's query. Is it related to technology, software development, AI, machine learning, computer science, developer tools, or hardware?

User Query: %q

Respond with a single JSON object with two keys: "isValid" (boolean) and "reason" (a brief string explaining why, e.g., "The query is tech-related." or "The query is about cooking, not technology.").`

// ValidationPrompt asks whether query belongs to the technology domain.
func ValidationPrompt(query string) string {
	return fmt.Sprintf(validationPrompt, query)
}

// ValidationSchema is the shape of a validation verdict.
var ValidationSchema = &Schema{
	Type: "object",
	Properties: map[string]*Schema{
		"isValid": {Type: "boolean"},
		"reason":  {Type: "string"},
	},
	Required: []string{"isValid", "reason"},
}
