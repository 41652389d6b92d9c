package transcribe

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"google.golang.org/api/option"
	speechpb "google.golang.org/genproto/googleapis/cloud/speech/v1"
)

// Voice notes are predominantly French.
const languageCode = "fr-FR"

// GoogleTranscriber turns voice notes into text with Cloud Speech.
type GoogleTranscriber struct {
	client *speech.Client
}

func NewGoogleTranscriber(ctx context.Context, credentialsFile string) (*GoogleTranscriber, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}

	return &GoogleTranscriber{client: client}, nil
}

func (t *GoogleTranscriber) Close() error {
	return t.client.Close()
}

// Transcribe recognizes the audio and returns the joined transcript. The
// encoding is picked from the filename extension; Telegram voice notes
// arrive as OGG/Opus.
func (t *GoogleTranscriber) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	resp, err := t.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: recognitionConfig(filename),
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", fmt.Errorf("recognize audio: %w", err)
	}

	var parts []string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			parts = append(parts, result.Alternatives[0].Transcript)
		}
	}

	return strings.TrimSpace(strings.Join(parts, " ")), nil
}

func recognitionConfig(filename string) *speechpb.RecognitionConfig {
	config := &speechpb.RecognitionConfig{
		LanguageCode: languageCode,
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav":
		// Sample rate is read from the WAV header.
		config.Encoding = speechpb.RecognitionConfig_LINEAR16
	default:
		config.Encoding = speechpb.RecognitionConfig_OGG_OPUS
		config.SampleRateHertz = 48000
	}

	return config
}
