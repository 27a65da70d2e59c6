package review

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"contractbot/internal/domain"
	"contractbot/internal/ports"
)

type fakeStore struct {
	confirmTexts map[string]string
	confirmErr   error
	correctErr   error
	corrected    []string
	queued       [][]string
}

func (f *fakeStore) StoreOcrSample(context.Context, domain.OcrSample) error { return nil }

func (f *fakeStore) GetOcrSample(context.Context, int64, string) (domain.OcrSample, error) {
	return domain.OcrSample{}, ports.ErrNotFound
}

func (f *fakeStore) ListOcrSamples(context.Context, int64) ([]domain.OcrSample, error) {
	return nil, nil
}

func (f *fakeStore) ConfirmOcrContract(context.Context, int64, string) (map[string]string, error) {
	return f.confirmTexts, f.confirmErr
}

func (f *fakeStore) CorrectOcrSample(_ context.Context, _ int64, region, text, _ string) error {
	if f.correctErr != nil {
		return f.correctErr
	}
	f.corrected = append(f.corrected, region+"="+text)
	return nil
}

func (f *fakeStore) QueueTrainingWords(_ context.Context, words []string) (int, error) {
	f.queued = append(f.queued, words)
	return len(words), nil
}

func (f *fakeStore) ConsumeTrainingWords(context.Context) ([]string, error) { return nil, nil }

func TestExtractWords(t *testing.T) {
	got := ExtractWords("Alpha Centauri - 7", "Vex ---> O'Neil", "x 42 Alpha Железо-2 a-b")
	assert.Equal(t, []string{"Alpha", "Centauri", "Vex", "O'Neil", "Железо-2", "a-b"}, got)
	assert.Empty(t, ExtractWords("", "- 1 2 ---"))
}

func TestConfirmContract(t *testing.T) {
	store := &fakeStore{confirmTexts: map[string]string{
		"system":      "Sol Prime",
		"player_name": "Vex",
		"game_time":   "12:30",
	}}
	svc := NewService(store, zap.NewNop())

	res, err := svc.ConfirmContract(context.Background(), 3, "op")
	require.NoError(t, err)
	assert.Equal(t, []string{"Vex", "Sol", "Prime"}, res.Words)
	assert.Equal(t, 3, res.Queued)
	assert.Len(t, res.Texts, 3)
	require.Len(t, store.queued, 1)
}

func TestConfirmContractNotFound(t *testing.T) {
	svc := NewService(&fakeStore{confirmErr: ports.ErrNotFound}, zap.NewNop())
	_, err := svc.ConfirmContract(context.Background(), 99, "op")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestCorrectSample(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, zap.NewNop())

	res, err := svc.CorrectSample(context.Background(), 3, "player_name", "Vexillum", "op")
	require.NoError(t, err)
	assert.Equal(t, []string{"player_name=Vexillum"}, store.corrected)
	assert.Equal(t, []string{"Vexillum"}, res.Words)

	_, err = svc.CorrectSample(context.Background(), 3, " ", "x", "op")
	assert.ErrorIs(t, err, ports.ErrInvalidInput)

	store.correctErr = errors.New("disk full")
	_, err = svc.CorrectSample(context.Background(), 3, "system", "Sol", "op")
	require.Error(t, err)
	assert.Len(t, store.queued, 1)
}

func TestCorrectSampleWithoutWords(t *testing.T) {
	store := &fakeStore{}
	res, err := NewService(store, zap.NewNop()).CorrectSample(context.Background(), 1, "game_time", "12:30", "op")
	require.NoError(t, err)
	assert.Empty(t, res.Words)
	assert.Empty(t, store.queued)
}
