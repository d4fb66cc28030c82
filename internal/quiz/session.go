// Package quiz runs interactive translation drills over the vocabulary store and
// records every attempt in the answers log.
package quiz

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/lehmann314159/tasklex/internal/models"
)

// WordSource is the part of the vocabulary store a session needs.
type WordSource interface {
	GetWords(ctx context.Context) ([]models.Word, error)
	LogAnswer(ctx context.Context, answer models.AnswerLog) (int64, error)
}

// Result summarizes a finished session.
type Result struct {
	Asked   int `json:"asked"`
	Correct int `json:"correct"`
}

// Incorrect returns the number of wrong answers.
func (r Result) Incorrect() int {
	return r.Asked - r.Correct
}

// Sentinel returns the answer that ends a session in the given direction.
func Sentinel(direction models.TestType) string {
	if direction == models.RuToEn {
		return "стоп"
	}
	return "exit"
}

// Option configures a Session.
type Option func(*Session)

// WithRand sets the random source used to order questions.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.rng = rng }
}

// WithClock sets the clock used to stamp answers.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithLogger sets the logger; the session ID is attached to every line.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// Session is a single quiz run in one direction.
type Session struct {
	ID        string
	Direction models.TestType

	source WordSource
	in     *bufio.Scanner
	out    io.Writer
	rng    *rand.Rand
	now    func() time.Time
	logger *slog.Logger
}

// NewSession prepares a session that reads answers from in and writes prompts to out.
func NewSession(source WordSource, direction models.TestType, in io.Reader, out io.Writer, opts ...Option) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		Direction: direction,
		source:    source,
		in:        bufio.NewScanner(in),
		out:       out,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s.logger = s.logger.With("session", s.ID, "direction", string(direction))
	return s
}

// Run asks questions until the sentinel is typed, input ends, or ctx is done.
// Each answer is logged before the next question is asked.
func (s *Session) Run(ctx context.Context) (Result, error) {
	var result Result

	if !s.Direction.Valid() {
		return result, fmt.Errorf("invalid quiz direction %q", s.Direction)
	}

	words, err := s.source.GetWords(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to load words: %w", err)
	}
	if len(words) == 0 {
		fmt.Fprintln(s.out, "The dictionary is empty. Add some words first.")
		return result, nil
	}

	sentinel := Sentinel(s.Direction)
	s.logger.Info("quiz started", "words", len(words))
	fmt.Fprintf(s.out, "Quiz %s: %d words. Type '%s' to stop.\n\n", s.Direction, len(words), sentinel)

	next := newSampler(words, s.rng)
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		word := next.next()
		question, expected := word.EnglishWord, word.RussianTranslation
		if s.Direction == models.RuToEn {
			question, expected = expected, question
		}

		fmt.Fprintf(s.out, "How do you translate '%s'? ", question)
		if !s.in.Scan() {
			if err := s.in.Err(); err != nil {
				return result, fmt.Errorf("failed to read answer: %w", err)
			}
			fmt.Fprintln(s.out)
			break
		}

		answer := models.NormalizeWord(s.in.Text())
		if answer == sentinel {
			fmt.Fprintln(s.out, "\nQuiz stopped.")
			break
		}

		correct := answer == expected
		if correct {
			result.Correct++
			fmt.Fprint(s.out, "Correct!\n\n")
		} else {
			fmt.Fprintf(s.out, "Wrong. The answer is '%s'.\n\n", expected)
		}
		result.Asked++

		_, err := s.source.LogAnswer(ctx, models.AnswerLog{
			WordID:    word.ID,
			Timestamp: s.now().Format(models.TimestampLayout),
			TestType:  s.Direction,
			IsCorrect: correct,
		})
		if err != nil {
			return result, fmt.Errorf("failed to log answer: %w", err)
		}
	}

	s.logger.Info("quiz finished", "asked", result.Asked, "correct", result.Correct)
	fmt.Fprintf(s.out, "Asked: %d  Correct: %d  Wrong: %d\n", result.Asked, result.Correct, result.Incorrect())
	return result, nil
}
