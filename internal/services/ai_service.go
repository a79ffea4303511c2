package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/yoockh/scribely/internal/logger"
	"github.com/yoockh/scribely/internal/providers/llm"
	"github.com/yoockh/scribely/internal/utils"
)

// AIService turns a raw transcript into a structured markdown note.
type AIService interface {
	Process(ctx context.Context, transcript string) (string, error)
}

type aiService struct {
	llm llm.Provider
	log *logrus.Logger
}

func NewAIService(p llm.Provider, log *logrus.Logger) AIService {
	return &aiService{llm: p, log: log}
}

var (
	codeFence         = regexp.MustCompile("```(?:markdown|md)?\n?")
	frontmatterRe     = regexp.MustCompile(`(?s)^---[ \t]*\r?\n(.*?)\r?\n---[ \t]*(?:\r?\n|$)`)
	commentarySection = regexp.MustCompile(`(?s)## AI Commentary.*?(?:(?:^|\n)## |\z)`)
)

type noteMeta struct {
	Category         string   `yaml:"category" json:"category"`
	Filename         string   `yaml:"filename" json:"filename"`
	CommentaryNeeded *bool    `yaml:"commentary_needed" json:"commentary_needed,omitempty"`
	Tags             []string `yaml:"tags" json:"tags,omitempty"`
}

func (s *aiService) Process(ctx context.Context, transcript string) (string, error) {
	const op = "AIService.Process"

	if s.llm == nil {
		return "", utils.E(utils.CodeInternal, op, "Server configuration error", nil)
	}

	s.log.WithFields(logrus.Fields{
		"transcript_len": len(transcript),
		"preview":        logger.Preview(transcript, 300),
	}).Info("processing transcript with llm")

	out, err := llm.Collect(ctx, s.llm, BuildPrompt(transcript))
	if err != nil {
		if ctx.Err() != nil {
			return "", utils.E(utils.CodeTimeout, op, "AI service timed out", err)
		}
		return "", utils.E(utils.CodeUnavailable, op, "AI service is currently unavailable", err)
	}

	note := PostProcess(out)
	if note == "" {
		return "", utils.E(utils.CodeUnavailable, op, "AI service is currently unavailable", nil)
	}
	s.log.WithField("response_len", len(note)).Debug("llm response received")
	return note, nil
}

// PostProcess strips code fences and removes the commentary section when the
// frontmatter says it is not needed.
func PostProcess(raw string) string {
	text := strings.TrimSpace(codeFence.ReplaceAllString(raw, ""))

	meta, _, ok := parseFrontmatter(text)
	if !ok || meta.CommentaryNeeded == nil || *meta.CommentaryNeeded {
		return text
	}
	return removeCommentary(text)
}

func removeCommentary(text string) string {
	out := commentarySection.ReplaceAllStringFunc(text, func(m string) string {
		if strings.HasSuffix(m, "## ") {
			return "## "
		}
		return ""
	})
	return strings.TrimSpace(out)
}

// parseFrontmatter splits a leading YAML block from the body. ok is false
// when no block is present.
func parseFrontmatter(text string) (noteMeta, string, bool) {
	var meta noteMeta
	loc := frontmatterRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return meta, text, false
	}
	block := text[loc[2]:loc[3]]
	if err := yaml.Unmarshal([]byte(block), &meta); err != nil {
		meta = scanFrontmatter(block)
	}
	return meta, strings.TrimSpace(text[loc[1]:]), true
}

var metaLine = regexp.MustCompile(`(?m)^(category|filename|commentary_needed):[ \t]*(.+?)[ \t]*$`)

// scanFrontmatter reads the known keys line by line from a block that is not
// valid YAML.
func scanFrontmatter(block string) noteMeta {
	var meta noteMeta
	for _, m := range metaLine.FindAllStringSubmatch(block, -1) {
		switch m[1] {
		case "category":
			meta.Category = m[2]
		case "filename":
			meta.Filename = m[2]
		case "commentary_needed":
			switch m[2] {
			case "true":
				v := true
				meta.CommentaryNeeded = &v
			case "false":
				v := false
				meta.CommentaryNeeded = &v
			}
		}
	}
	return meta
}
