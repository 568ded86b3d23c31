package classifier

import (
	"context"
	"math"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// Sample is one labeled training example
type Sample struct {
	Text     string
	Phishing bool
}

// trainingSet is the small fixed labeled set the reference classifier trains
// on at startup. Any model satisfying the scoring contract may replace this
// classifier without touching the engine.
var trainingSet = []Sample{
	{Text: "Your account has been suspended. Click here to verify.", Phishing: true},
	{Text: "Urgent: Payment failed for your subscription.", Phishing: true},
	{Text: "New login detected from an unknown device.", Phishing: true},
	{Text: "Verify your password now to avoid account deletion.", Phishing: true},
	{Text: "Hey, are we still meeting for lunch today?", Phishing: false},
	{Text: "The project report is attached for your review.", Phishing: false},
	{Text: "Meeting invitation: Sprint Planning tomorrow.", Phishing: false},
	{Text: "Welcome to SecureGuard! Your account is ready.", Phishing: false},
}

// BayesClassifier is the reference ContentClassifier: a multinomial naive
// Bayes model with Laplace smoothing over word tokens. After training the
// model is read-only, so concurrent Score calls are safe.
type BayesClassifier struct {
	phishCounts map[string]int
	hamCounts   map[string]int
	phishTotal  int
	hamTotal    int
	vocabSize   int
	trained     bool
	logger      *zap.Logger
}

// NewBayesClassifier creates a classifier trained on the built-in sample set
func NewBayesClassifier(logger *zap.Logger) *BayesClassifier {
	c := &BayesClassifier{
		phishCounts: make(map[string]int),
		hamCounts:   make(map[string]int),
		logger:      logger,
	}
	c.train(trainingSet)
	return c
}

// NewUntrainedBayesClassifier creates a classifier with no model. It always
// scores the neutral 0.5, which callers must treat as "unknown".
func NewUntrainedBayesClassifier(logger *zap.Logger) *BayesClassifier {
	return &BayesClassifier{
		phishCounts: make(map[string]int),
		hamCounts:   make(map[string]int),
		logger:      logger,
	}
}

// train fits token counts per class. Called once at construction; the model
// is immutable afterwards.
func (c *BayesClassifier) train(samples []Sample) {
	vocab := make(map[string]struct{})
	for _, sample := range samples {
		for _, token := range tokenize(sample.Text) {
			vocab[token] = struct{}{}
			if sample.Phishing {
				c.phishCounts[token]++
				c.phishTotal++
			} else {
				c.hamCounts[token]++
				c.hamTotal++
			}
		}
	}
	c.vocabSize = len(vocab)
	c.trained = c.phishTotal > 0 && c.hamTotal > 0

	if c.logger != nil {
		c.logger.Info("Trained reference classifier",
			zap.Int("samples", len(samples)),
			zap.Int("vocabulary", c.vocabSize))
	}
}

// Score returns the posterior probability that the text is phishing,
// always within [0,1]. An untrained model returns the neutral 0.5.
func (c *BayesClassifier) Score(_ context.Context, text string) (float64, error) {
	if !c.trained {
		return 0.5, nil
	}

	tokens := tokenize(text)
	if len(tokens) == 0 {
		return 0.5, nil
	}

	// Equal class priors: the training set is balanced by construction.
	// Work in log space to avoid underflow on long bodies.
	logPhish := 0.0
	logHam := 0.0
	phishDenom := float64(c.phishTotal + c.vocabSize)
	hamDenom := float64(c.hamTotal + c.vocabSize)
	for _, token := range tokens {
		logPhish += math.Log(float64(c.phishCounts[token]+1) / phishDenom)
		logHam += math.Log(float64(c.hamCounts[token]+1) / hamDenom)
	}

	// Normalize back to a probability
	maxLog := math.Max(logPhish, logHam)
	phish := math.Exp(logPhish - maxLog)
	ham := math.Exp(logHam - maxLog)
	return phish / (phish + ham), nil
}

// tokenize lowercases and splits on anything that is not a letter or digit
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
