package stt

import (
	"context"
	"errors"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
)

type GoogleSpeech struct {
	c *speech.Client

	Language string
}

func NewGoogleSpeech(ctx context.Context, language string) (*GoogleSpeech, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	if language == "" {
		language = "en-US"
	}
	return &GoogleSpeech{c: c, Language: language}, nil
}

func (g *GoogleSpeech) Name() string { return "google_speech" }

func (g *GoogleSpeech) Close() error { return g.c.Close() }

func (g *GoogleSpeech) IsReady() bool { return g.c != nil }

// SupportedFormats is limited to containers the synchronous v1 API can decode
// without an explicit sample rate.
func (g *GoogleSpeech) SupportedFormats() []string {
	return []string{"wav", "flac", "ogg", "webm"}
}

// MaxFileSize is the inline-content limit of synchronous recognition.
func (g *GoogleSpeech) MaxFileSize() int64 { return 10 << 20 }

func encodingFor(filename string) (speechpb.RecognitionConfig_AudioEncoding, int32) {
	switch Extension(filename) {
	case "ogg":
		return speechpb.RecognitionConfig_OGG_OPUS, 48000
	case "webm":
		return speechpb.RecognitionConfig_WEBM_OPUS, 48000
	default:
		// wav and flac carry their own header
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, 0
	}
}

func (g *GoogleSpeech) Transcribe(ctx context.Context, audio []byte, filename string) (Result, error) {
	enc, rate := encodingFor(filename)

	resp, err := g.c.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   enc,
			SampleRateHertz:            rate,
			LanguageCode:               g.Language,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return Result{}, err
	}

	// results are consecutive portions of the audio; keep the best
	// alternative of each
	parts := make([]string, 0, len(resp.Results))
	lang := g.Language
	for _, r := range resp.Results {
		if len(r.Alternatives) == 0 {
			continue
		}
		best := r.Alternatives[0]
		for _, alt := range r.Alternatives[1:] {
			if alt.Confidence > best.Confidence {
				best = alt
			}
		}
		if t := strings.TrimSpace(best.Transcript); t != "" {
			parts = append(parts, t)
		}
		if r.LanguageCode != "" {
			lang = r.LanguageCode
		}
	}

	text := strings.Join(parts, " ")
	if text == "" {
		return Result{}, errors.New("google speech returned no transcript")
	}
	return Result{Text: text, Language: lang}, nil
}
