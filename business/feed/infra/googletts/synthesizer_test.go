package googletts

import (
	"context"
	"errors"
	"io"
	"testing"

	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/trader-sentinel/internal/apperror"
	"github.com/fd1az/trader-sentinel/internal/circuitbreaker"
	"github.com/fd1az/trader-sentinel/internal/logger"
)

type fakeAPI struct {
	audio  []byte
	err    error
	last   *texttospeechpb.SynthesizeSpeechRequest
	calls  int
	closed bool
}

func (f *fakeAPI) SynthesizeSpeech(_ context.Context, req *texttospeechpb.SynthesizeSpeechRequest, _ ...gax.CallOption) (*texttospeechpb.SynthesizeSpeechResponse, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &texttospeechpb.SynthesizeSpeechResponse{AudioContent: f.audio}, nil
}

func (f *fakeAPI) Close() error {
	f.closed = true
	return nil
}

func newTestSynthesizer(api speechAPI) *Synthesizer {
	return newSynthesizer(api, logger.New(io.Discard, logger.LevelError, "test", nil))
}

func TestSynthesize_BuildsMP3Request(t *testing.T) {
	api := &fakeAPI{audio: []byte("ID3audio")}
	s := newTestSynthesizer(api)

	audio, err := s.Synthesize(context.Background(), "BTC spread 0.5 percent", "en-US", "en-US-Neural2-D")
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3audio"), audio)

	require.NotNil(t, api.last)
	assert.Equal(t, "BTC spread 0.5 percent", api.last.GetInput().GetText())
	assert.Equal(t, "en-US", api.last.GetVoice().GetLanguageCode())
	assert.Equal(t, "en-US-Neural2-D", api.last.GetVoice().GetName())
	assert.Equal(t, texttospeechpb.AudioEncoding_MP3, api.last.GetAudioConfig().GetAudioEncoding())
}

func TestSynthesize_WrapsServiceErrors(t *testing.T) {
	api := &fakeAPI{err: errors.New("PermissionDenied: billing disabled")}
	s := newTestSynthesizer(api)

	_, err := s.Synthesize(context.Background(), "hello", "en-US", "en-US-Neural2-D")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeExternalServiceError))
	assert.Equal(t, "PermissionDenied: billing disabled", apperror.Message(err))
}

func TestSynthesize_OpensBreakerAfterRepeatedFailures(t *testing.T) {
	api := &fakeAPI{err: errors.New("unavailable")}
	s := newTestSynthesizer(api)

	for range 5 {
		_, _ = s.Synthesize(context.Background(), "hello", "en-US", "en-US-Neural2-D")
	}

	_, err := s.Synthesize(context.Background(), "hello", "en-US", "en-US-Neural2-D")
	require.Error(t, err)
	assert.True(t, circuitbreaker.IsOpen(err))
	assert.Equal(t, 5, api.calls)
}

func TestClose(t *testing.T) {
	api := &fakeAPI{}
	require.NoError(t, newTestSynthesizer(api).Close())
	assert.True(t, api.closed)
}
