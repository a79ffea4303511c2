package services

import "strings"

const transcriptPlaceholder = "{{transcript}}"

const basePrompt = `You are an expert productivity assistant. Process this voice transcript and create a structured markdown document.

CRITICAL: You must decide whether this content would benefit from AI commentary or analysis.

Include commentary for:
- Questions: give accurate answers with practical details
- Mixed content with embedded questions: answer them in context
- Project ideas: feasibility, recommendations, market insights
- Problem-solving: solution approaches and troubleshooting steps
- Technical content: explanations and learning resources
- Shopping, travel, finance or entertainment: realistic prices, places and logistics

No commentary for:
- Simple tasks or reminders ("buy groceries", "call mom")
- Basic notes without questions
- Short factual statements

Content to process:
---
{{transcript}}
---

REQUIRED FORMAT. Return exactly this structure:

---
category: <category>
filename: <short-kebab-case-name>
commentary_needed: <true|false>
tags: [<tag>, <tag>]
---

# <Title>

## Summary
<summary>

## Ideas
<ideas>

## Action Items
<action items>

## AI Commentary
<only when commentary_needed is true>

## Tags
<tags>

Categories to choose from: projects, daily, personal, work, notes, questions, learning, technical, problem-solving, travel, finance, health, shopping, investment, entertainment, research, or create your own.

Return ONLY the markdown content with no additional explanations.`

// BuildPrompt renders the note-structuring prompt for one transcript.
func BuildPrompt(transcript string) string {
	return strings.Replace(basePrompt, transcriptPlaceholder, transcript, 1)
}
