package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBayesClassifier_Score(t *testing.T) {
	c := NewBayesClassifier(zap.NewNop())

	tests := []struct {
		name  string
		text  string
		check func(t *testing.T, score float64)
	}{
		{
			name: "Phishing language scores high",
			text: "URGENT: verify your account password now, click here to avoid suspension",
			check: func(t *testing.T, score float64) {
				assert.Greater(t, score, 0.7)
			},
		},
		{
			name: "Benign language scores low",
			text: "Hey, are we still meeting for lunch today?",
			check: func(t *testing.T, score float64) {
				assert.Less(t, score, 0.3)
			},
		},
		{
			name: "Empty text is neutral",
			text: "",
			check: func(t *testing.T, score float64) {
				assert.Equal(t, 0.5, score)
			},
		},
		{
			name: "Punctuation only is neutral",
			text: "!!! ... ???",
			check: func(t *testing.T, score float64) {
				assert.Equal(t, 0.5, score)
			},
		},
		{
			name: "Unseen vocabulary stays in range",
			text: "zxcvb qwerty asdfgh",
			check: func(t *testing.T, score float64) {
				assert.GreaterOrEqual(t, score, 0.0)
				assert.LessOrEqual(t, score, 1.0)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := c.Score(context.Background(), tt.text)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
			tt.check(t, score)
		})
	}
}

func TestBayesClassifier_Deterministic(t *testing.T) {
	c := NewBayesClassifier(zap.NewNop())
	text := "Your account has been suspended, verify your password immediately"

	first, err := c.Score(context.Background(), text)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		score, err := c.Score(context.Background(), text)
		require.NoError(t, err)
		assert.Equal(t, first, score)
	}
}

func TestBayesClassifier_Untrained(t *testing.T) {
	c := NewUntrainedBayesClassifier(zap.NewNop())

	score, err := c.Score(context.Background(), "verify your account now")
	require.NoError(t, err)
	assert.Equal(t, 0.5, score)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t,
		[]string{"click", "here", "to", "verify", "2024"},
		tokenize("Click HERE... to-verify! (2024)"))
	assert.Empty(t, tokenize("!@#$%"))
}
