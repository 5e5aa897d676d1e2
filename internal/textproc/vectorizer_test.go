package textproc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	terms := Tokenize("Verify Your Account now")

	// Stop words drop out; unigrams come first, then adjacent bigrams.
	assert.Contains(t, terms, "verify")
	assert.Contains(t, terms, "account")
	assert.NotContains(t, terms, "your")
	assert.Contains(t, terms, "verify account")
}

func TestTokenize_ShortTokensDropped(t *testing.T) {
	terms := Tokenize("a b cd")
	assert.Equal(t, []string{"cd"}, terms)
}

func TestVectorizer_FitEmptyCorpus(t *testing.T) {
	v := NewVectorizer(DefaultOptions())
	assert.ErrorIs(t, v.Fit(nil), ErrEmptyCorpus)
}

func TestVectorizer_TransformUnfitted(t *testing.T) {
	v := NewVectorizer(DefaultOptions())
	assert.Empty(t, v.Transform("anything at all"))
}

func TestVectorizer_FitTransform(t *testing.T) {
	corpus := []string{
		"verify account password reset",
		"verify account suspended login",
		"meeting schedule project deadline",
		"meeting schedule lunch friday",
	}

	v := NewVectorizer(Options{MaxFeatures: 1000, MinDocFreq: 2, MaxDocRatio: 0.95})
	require.NoError(t, v.Fit(corpus))
	assert.True(t, v.Fitted)

	// Only terms in at least two documents survive.
	assert.Contains(t, v.Vocabulary, "verify")
	assert.Contains(t, v.Vocabulary, "verify account")
	assert.Contains(t, v.Vocabulary, "meeting schedule")
	assert.NotContains(t, v.Vocabulary, "lunch")

	vec := v.Transform("verify account")
	assert.Len(t, vec, v.Size())

	// Matching terms light up, the rest stay zero.
	assert.Greater(t, vec[v.Vocabulary["verify"]], 0.0)
	assert.Greater(t, vec[v.Vocabulary["verify account"]], 0.0)
	assert.Equal(t, 0.0, vec[v.Vocabulary["meeting"]])

	// Output is L2-normalized.
	norm := 0.0
	for _, x := range vec {
		norm += x * x
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)
}

func TestVectorizer_UnseenTokensContributeNothing(t *testing.T) {
	corpus := []string{"verify account", "verify account"}
	v := NewVectorizer(Options{MaxFeatures: 1000, MinDocFreq: 2, MaxDocRatio: 1.0})
	require.NoError(t, v.Fit(corpus))

	vec := v.Transform("completely unrelated words")
	for _, x := range vec {
		assert.Equal(t, 0.0, x)
	}
}

func TestVectorizer_MaxFeaturesCap(t *testing.T) {
	corpus := []string{
		"alpha beta gamma delta",
		"alpha beta gamma delta",
	}
	v := NewVectorizer(Options{MaxFeatures: 3, MinDocFreq: 2, MaxDocRatio: 1.0})
	require.NoError(t, v.Fit(corpus))

	assert.Equal(t, 3, v.Size())
}

func TestVectorizer_Deterministic(t *testing.T) {
	corpus := []string{
		"verify account password reset today",
		"verify account suspended login today",
		"meeting schedule project deadline today",
	}

	a := NewVectorizer(Options{MaxFeatures: 10, MinDocFreq: 2, MaxDocRatio: 1.0})
	b := NewVectorizer(Options{MaxFeatures: 10, MinDocFreq: 2, MaxDocRatio: 1.0})
	require.NoError(t, a.Fit(corpus))
	require.NoError(t, b.Fit(corpus))

	assert.Equal(t, a.Vocabulary, b.Vocabulary)
	assert.Equal(t, a.IDF, b.IDF)
	assert.Equal(t, a.Transform("verify account today"), b.Transform("verify account today"))
}
