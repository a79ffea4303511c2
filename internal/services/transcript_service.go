package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/scribely/internal/logger"
	"github.com/yoockh/scribely/internal/models"
	"github.com/yoockh/scribely/internal/providers/stt"
	"github.com/yoockh/scribely/internal/utils"
)

const (
	MethodTextExtraction = "direct_text_extraction"
	sourceDirectText     = "direct text input"

	minAudioBytes = 1024
)

// TranscriptService runs the intake pipeline: extract, structure, save.
type TranscriptService interface {
	ProcessTranscript(ctx context.Context, transcript string) (*models.ProcessResult, error)
	// Classify checks an upload before it is accepted for processing.
	Classify(u *models.Upload) (models.FileType, error)
	Extract(ctx context.Context, u *models.Upload) (*models.Extraction, error)
	// ProcessFile handles a file, a transcript, or both. u may be nil.
	ProcessFile(ctx context.Context, u *models.Upload, transcript string) (*models.ProcessResult, error)
}

type transcriptService struct {
	ai     AIService
	notes  NoteWriter
	speech stt.Provider // optional
	log    *logrus.Logger
}

func NewTranscriptService(ai AIService, notes NoteWriter, speech stt.Provider, log *logrus.Logger) TranscriptService {
	return &transcriptService{ai: ai, notes: notes, speech: speech, log: log}
}

func (s *transcriptService) ProcessTranscript(ctx context.Context, transcript string) (*models.ProcessResult, error) {
	text := strings.TrimSpace(transcript)
	s.log.WithFields(logrus.Fields{
		"transcript_len": len(text),
		"preview":        logger.Preview(text, 300),
	}).Info("processing transcript")
	s.log.WithField("transcript", text).Debug("full transcript")

	path, note, err := s.structureAndSave(ctx, text, "transcript")
	if err != nil {
		return nil, err
	}
	return &models.ProcessResult{
		Result:  note,
		SavedTo: path,
		Message: fmt.Sprintf("Idea processed and saved to %s", path),
	}, nil
}

func (s *transcriptService) ProcessFile(ctx context.Context, u *models.Upload, transcript string) (*models.ProcessResult, error) {
	const op = "TranscriptService.ProcessFile"

	transcript = strings.TrimSpace(transcript)
	text, source := transcript, sourceDirectText

	if u != nil {
		ex, err := s.Extract(ctx, u)
		if err != nil {
			return nil, err
		}
		source = fmt.Sprintf("%s from file: %s", ex.Method, u.Filename)
		text = ex.Text
		if transcript != "" {
			text = transcript + "\n\n" + ex.Text
		}
		s.log.WithFields(logrus.Fields{
			"filename":      u.Filename,
			"file_type":     ex.FileType,
			"method":        ex.Method,
			"extracted_len": len(ex.Text),
			"preview":       logger.Preview(ex.Text, 300),
		}).Info("file processed, extracted text for llm")
	}
	if text == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Either a file or transcript text is required", nil)
	}

	path, note, err := s.structureAndSave(ctx, text, "file")
	if err != nil {
		return nil, err
	}
	return &models.ProcessResult{
		Result:  note,
		SavedTo: path,
		Message: fmt.Sprintf("Idea processed (%s) and saved to %s", source, path),
	}, nil
}

func (s *transcriptService) structureAndSave(ctx context.Context, text, source string) (string, string, error) {
	note, err := s.ai.Process(ctx, text)
	if err != nil {
		return "", "", err
	}
	path, err := s.notes.Save(ctx, note, source)
	if err != nil {
		return "", "", err
	}
	return path, note, nil
}

func (s *transcriptService) Classify(u *models.Upload) (models.FileType, error) {
	const op = "TranscriptService.Classify"

	ft := DetectFileType(u)
	switch ft {
	case models.FileTypeText:
		return ft, nil
	case models.FileTypeAudio:
		return ft, s.checkAudio(u)
	}
	return ft, utils.E(utils.CodeInvalidArgument, op, "Unsupported file type. Supported formats: "+Formats().String(), nil)
}

func (s *transcriptService) checkAudio(u *models.Upload) error {
	const op = "TranscriptService.checkAudio"
	const mb = 1024 * 1024

	if s.speech == nil || !s.speech.IsReady() {
		return utils.E(utils.CodeUnavailable, op, "Audio transcription is not available", nil)
	}
	if limit := s.speech.MaxFileSize(); u.Size > limit {
		return utils.E(utils.CodeInvalidArgument, op, fmt.Sprintf(
			"Audio file is too large (%dMB). Maximum size for %s is %dMB", u.Size/mb, s.speech.Name(), limit/mb), nil)
	}
	if !stt.Supports(s.speech, u.Filename) {
		return utils.E(utils.CodeInvalidArgument, op, fmt.Sprintf(
			"Unsupported audio format: %s. %s supports: %s",
			stt.Extension(u.Filename), s.speech.Name(), strings.Join(s.speech.SupportedFormats(), ", ")), nil)
	}
	if u.Size < minAudioBytes {
		return utils.E(utils.CodeInvalidArgument, op, "Audio file appears to be too small or corrupted", nil)
	}
	return nil
}

func (s *transcriptService) Extract(ctx context.Context, u *models.Upload) (*models.Extraction, error) {
	const op = "TranscriptService.Extract"

	ft, err := s.Classify(u)
	if err != nil {
		return nil, err
	}

	var ex models.Extraction
	switch ft {
	case models.FileTypeText:
		text, err := ExtractText(u.Data)
		if err != nil {
			return nil, utils.E(utils.CodeInvalidArgument, op, "No usable content could be extracted from the file", err)
		}
		ex = models.Extraction{Text: text, FileType: ft, Method: MethodTextExtraction}

	case models.FileTypeAudio:
		res, err := s.speech.Transcribe(ctx, u.Data, u.Filename)
		if err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"filename": u.Filename,
				"provider": s.speech.Name(),
			}).Error("failed to transcribe audio file")
			if ctx.Err() != nil {
				return nil, utils.E(utils.CodeTimeout, op, "Audio transcription timed out", err)
			}
			return nil, utils.E(utils.CodeUnavailable, op, "Audio transcription failed", err)
		}
		lang := res.Language
		if lang == "" {
			lang = "auto"
		}
		ex = models.Extraction{
			Text:     strings.TrimSpace(res.Text),
			FileType: ft,
			Method:   fmt.Sprintf("%s_%s", s.speech.Name(), lang),
		}
		s.log.WithField("transcription", ex.Text).Debug("full transcription result")
	}

	if ex.Text == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "No usable content could be extracted from the file", nil)
	}
	return &ex, nil
}
