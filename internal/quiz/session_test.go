package quiz

import (
	"bytes"
	"context"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehmann314159/tasklex/internal/errors"
	"github.com/lehmann314159/tasklex/internal/logging"
	"github.com/lehmann314159/tasklex/internal/models"
	"github.com/lehmann314159/tasklex/internal/repository"
)

type fakeSource struct {
	words   []models.Word
	answers []models.AnswerLog
	logErr  error
}

func (f *fakeSource) GetWords(ctx context.Context) ([]models.Word, error) {
	return f.words, nil
}

func (f *fakeSource) LogAnswer(ctx context.Context, answer models.AnswerLog) (int64, error) {
	if f.logErr != nil {
		return 0, f.logErr
	}
	f.answers = append(f.answers, answer)
	return int64(len(f.answers)), nil
}

var fixedTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestSession(src WordSource, dir models.TestType, input string, out *bytes.Buffer) *Session {
	return NewSession(src, dir, strings.NewReader(input), out,
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithClock(func() time.Time { return fixedTime }),
		WithLogger(logging.Discard()),
	)
}

func TestSampler_NoImmediateRepeat(t *testing.T) {
	words := []models.Word{
		{ID: 1, EnglishWord: "a"},
		{ID: 2, EnglishWord: "b"},
		{ID: 3, EnglishWord: "c"},
	}

	for seed := uint64(0); seed < 50; seed++ {
		s := newSampler(words, rand.New(rand.NewPCG(seed, seed+1)))
		prev := int64(0)
		for round := 0; round < 10; round++ {
			seen := map[int64]bool{}
			for i := 0; i < len(words); i++ {
				w := s.next()
				require.NotEqual(t, prev, w.ID, "seed %d round %d", seed, round)
				require.False(t, seen[w.ID], "word repeated within a round")
				seen[w.ID] = true
				prev = w.ID
			}
		}
	}
}

func TestSampler_SingleWord(t *testing.T) {
	s := newSampler([]models.Word{{ID: 7}}, rand.New(rand.NewPCG(1, 1)))
	for i := 0; i < 3; i++ {
		assert.Equal(t, int64(7), s.next().ID)
	}
}

func TestSession_EnToRu(t *testing.T) {
	src := &fakeSource{words: []models.Word{{ID: 1, EnglishWord: "cat", RussianTranslation: "кот"}}}
	var out bytes.Buffer

	res, err := newTestSession(src, models.EnToRu, " КОТ \nпёс\nexit\n", &out).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Result{Asked: 2, Correct: 1}, res)
	assert.Equal(t, 1, res.Incorrect())
	require.Len(t, src.answers, 2)
	assert.Equal(t, models.AnswerLog{WordID: 1, Timestamp: "2024-05-01 12:00:00", TestType: models.EnToRu, IsCorrect: true}, src.answers[0])
	assert.False(t, src.answers[1].IsCorrect)

	assert.Contains(t, out.String(), "How do you translate 'cat'?")
	assert.Contains(t, out.String(), "The answer is 'кот'")
	assert.Contains(t, out.String(), "Quiz stopped.")
}

func TestSession_RuToEnSentinel(t *testing.T) {
	src := &fakeSource{words: []models.Word{{ID: 4, EnglishWord: "dog", RussianTranslation: "собака"}}}
	var out bytes.Buffer

	// "exit" is an ordinary wrong answer in this direction
	res, err := newTestSession(src, models.RuToEn, "Dog\nexit\nСТОП\n", &out).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Result{Asked: 2, Correct: 1}, res)
	assert.Contains(t, out.String(), "How do you translate 'собака'?")
	for _, a := range src.answers {
		assert.Equal(t, models.RuToEn, a.TestType)
	}
}

func TestSession_EndOfInput(t *testing.T) {
	src := &fakeSource{words: []models.Word{
		{ID: 1, EnglishWord: "cat", RussianTranslation: "кот"},
		{ID: 2, EnglishWord: "dog", RussianTranslation: "собака"},
	}}
	var out bytes.Buffer

	res, err := newTestSession(src, models.EnToRu, "кот\n", &out).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Asked)
	assert.Len(t, src.answers, 1)
}

func TestSession_EmptyDictionary(t *testing.T) {
	src := &fakeSource{}
	var out bytes.Buffer

	res, err := newTestSession(src, models.EnToRu, "anything\n", &out).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Asked)
	assert.Contains(t, out.String(), "dictionary is empty")
}

func TestSession_Errors(t *testing.T) {
	src := &fakeSource{
		words:  []models.Word{{ID: 1, EnglishWord: "cat", RussianTranslation: "кот"}},
		logErr: errors.New("disk full"),
	}
	var out bytes.Buffer

	_, err := newTestSession(src, models.EnToRu, "кот\n", &out).Run(context.Background())
	assert.ErrorContains(t, err, "disk full")

	_, err = newTestSession(src, "de_en", "", &out).Run(context.Background())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = newTestSession(&fakeSource{words: src.words}, models.EnToRu, "кот\n", &out).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSession_WithStore(t *testing.T) {
	ctx := context.Background()
	store := repository.NewVocabularyStore(filepath.Join(t.TempDir(), "vocabulary.db"), logging.Discard())
	require.True(t, store.InitStore(ctx))

	_, err := store.AddWord(ctx, "cat", "кот")
	require.NoError(t, err)

	var out bytes.Buffer
	res, err := newTestSession(store, models.EnToRu, "кот\nкошка\nкот\nexit\n", &out).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Asked: 3, Correct: 2}, res)

	stats, err := store.OverallStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 3, stats[0].Total)
	require.NotNil(t, stats[0].Accuracy)
	assert.InDelta(t, 66.67, *stats[0].Accuracy, 1e-9)
}

func TestSessionIDsAreUnique(t *testing.T) {
	var out bytes.Buffer
	a := newTestSession(&fakeSource{}, models.EnToRu, "", &out)
	b := newTestSession(&fakeSource{}, models.EnToRu, "", &out)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}
