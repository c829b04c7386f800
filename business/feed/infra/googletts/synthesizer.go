// Package googletts synthesizes alert speech with Google Cloud
// Text-to-Speech.
package googletts

import (
	"context"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/googleapis/gax-go/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/trader-sentinel/internal/apperror"
	"github.com/fd1az/trader-sentinel/internal/circuitbreaker"
	"github.com/fd1az/trader-sentinel/internal/logger"
)

const (
	tracerName = "googletts"

	// Name labels the service in errors and breaker state.
	Name = "google-tts"
)

// speechAPI is the part of the Text-to-Speech client in use.
type speechAPI interface {
	SynthesizeSpeech(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest, opts ...gax.CallOption) (*texttospeechpb.SynthesizeSpeechResponse, error)
	Close() error
}

// Synthesizer renders text as MP3 audio.
type Synthesizer struct {
	api    speechAPI
	cb     *circuitbreaker.CircuitBreaker[[]byte]
	logger logger.LoggerInterface
	tracer trace.Tracer
}

// New dials Text-to-Speech with the application default credentials.
func New(ctx context.Context, log logger.LoggerInterface) (*Synthesizer, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("google text-to-speech client"),
			apperror.WithCause(err))
	}
	return newSynthesizer(client, log), nil
}

func newSynthesizer(api speechAPI, log logger.LoggerInterface) *Synthesizer {
	cbCfg := circuitbreaker.DefaultConfig(Name)
	cbCfg.OnStateChange = func(name string, from, to circuitbreaker.State) {
		log.Warn(context.Background(), "circuit breaker state changed",
			"breaker", name, "from", from.String(), "to", to.String())
	}

	return &Synthesizer{
		api:    api,
		cb:     circuitbreaker.New[[]byte](cbCfg),
		logger: log,
		tracer: otel.Tracer(tracerName),
	}
}

// Synthesize returns MP3 audio of text spoken by voice in language.
func (s *Synthesizer) Synthesize(ctx context.Context, text, language, voice string) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "googletts.synthesize",
		trace.WithAttributes(
			attribute.String("language", language),
			attribute.String("voice", voice),
			attribute.Int("text_length", len(text)),
		),
	)
	defer span.End()

	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: language,
			Name:         voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	}

	audio, err := s.cb.Execute(func() ([]byte, error) {
		resp, err := s.api.SynthesizeSpeech(ctx, req)
		if err != nil {
			return nil, err
		}
		return resp.GetAudioContent(), nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "synthesis failed")
		return nil, apperror.New(apperror.CodeExternalServiceError,
			apperror.WithContext(Name),
			apperror.WithCause(err))
	}

	span.SetAttributes(attribute.Int("audio_bytes", len(audio)))
	return audio, nil
}

// Close releases the client connection.
func (s *Synthesizer) Close() error {
	return s.api.Close()
}
