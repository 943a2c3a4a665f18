package tagger

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/happyhackingspace/ciya/corpus"
	"github.com/happyhackingspace/ciya/internal/vectorizer"
	"github.com/happyhackingspace/ciya/tokenizer"
	"github.com/happyhackingspace/ciya/tokenizer/tokenizertest"
)

// row tags every word prefixed with '@' as an entity.
func row(id, text string) corpus.Row {
	r := corpus.Row{ID: id}
	for _, w := range strings.Fields(text) {
		tag := corpus.Other
		if strings.HasPrefix(w, "@") {
			w, tag = w[1:], corpus.Entity
		}
		r.Tokens = append(r.Tokens, w)
		r.Tags = append(r.Tags, tag)
	}
	return r
}

func trainingRows() []corpus.Row {
	return []corpus.Row{
		row("0", "I climbed @Everest today"),
		row("1", "@Matterhorn is steep"),
		row("2", "We saw @Kilimanjaro at dawn"),
		row("3", "I walked home today"),
		row("4", "Paris is big"),
		row("5", "We saw friends at noon"),
		row("6", "The @Eiger north face"),
		row("7", "The river runs north"),
	}
}

func TestTokenFeatures(t *testing.T) {
	enc, err := tokenizertest.New(3).EncodeWords([][]string{{"Mont", "Blanc"}})
	require.NoError(t, err)
	// [CLS] Mon ##t Bla ##nc [SEP]
	feats := TokenFeatures(enc[0])
	require.Len(t, feats, 6)

	assert.Equal(t, map[string]any{"bias": true, "special": "[CLS]"}, feats[0])

	first := feats[1]
	assert.Equal(t, "Mon", first["tok"])
	assert.Equal(t, "mon", first["lower"])
	assert.Equal(t, "Xx", first["shape"])
	assert.Equal(t, false, first["cont"])
	assert.Equal(t, true, first["split"])
	assert.Equal(t, boundary, first["prev"])
	assert.Equal(t, "##t", first["next"])
	assert.Equal(t, []string{"<mo", "mon", "on>"}, first["tri"])

	cont := feats[2]
	assert.Equal(t, true, cont["cont"])
	assert.Equal(t, "x", cont["shape"])
	assert.Equal(t, "Xx", cont["prev_shape"])
	assert.NotContains(t, cont, "split")

	assert.Equal(t, boundary, feats[4]["next"])
}

func TestTrainLearnsSeparableRows(t *testing.T) {
	rows := trainingRows()
	cfg := DefaultTrainerConfig()
	cfg.LearningRate = 0.5
	cfg.Epochs = 30
	cfg.BatchSize = 2

	tr := NewTrainer(tokenizertest.New(3), cfg)
	model, stats, err := tr.Train(context.Background(), rows, rows)
	require.NoError(t, err)

	require.Len(t, stats.Epochs, 30)
	assert.NotEmpty(t, stats.RunID)
	assert.Equal(t, 30, stats.BestEpoch)
	assert.Less(t, stats.Epochs[29].TrainLoss, stats.Epochs[0].TrainLoss)
	assert.Greater(t, stats.ClassWeights[1], stats.ClassWeights[0])

	r, err := tr.Evaluate(model, rows)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r.F1, 1e-6)
	assert.InDelta(t, 1.0, r.Accuracy, 1e-6)
	assert.Equal(t, *stats.Epochs[29].Eval, r)
}

func TestTrainDeterministic(t *testing.T) {
	cfg := DefaultTrainerConfig()
	cfg.Epochs = 3
	cfg.BatchSize = 3

	a, _, err := NewTrainer(tokenizertest.New(4), cfg).Train(context.Background(), trainingRows(), nil)
	require.NoError(t, err)
	b, _, err := NewTrainer(tokenizertest.New(4), cfg).Train(context.Background(), trainingRows(), nil)
	require.NoError(t, err)

	assert.Equal(t, a.Coef, b.Coef)
	assert.Equal(t, a.Intercept, b.Intercept)
}

func TestTrainEarlyStopping(t *testing.T) {
	cfg := DefaultTrainerConfig()
	cfg.Epochs = 10
	cfg.Patience = 1
	cfg.Tolerance = 2 // no epoch can improve F1 by this much

	_, stats, err := NewTrainer(tokenizertest.New(3), cfg).Train(context.Background(), trainingRows(), trainingRows())
	require.NoError(t, err)
	assert.True(t, stats.StoppedEarly)
	assert.Len(t, stats.Epochs, 1)
}

func TestTrainCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := NewTrainer(tokenizertest.New(3), DefaultTrainerConfig()).Train(ctx, trainingRows(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTrainWithoutEntities(t *testing.T) {
	rows := []corpus.Row{row("0", "nothing to see"), row("1", "still nothing")}
	_, _, err := NewTrainer(tokenizertest.New(3), DefaultTrainerConfig()).Train(context.Background(), rows, nil)
	assert.Error(t, err)
}

func TestSaveLoadModel(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultTrainerConfig()
	cfg.Epochs = 2
	tk := tokenizertest.New(3)
	model, _, err := NewTrainer(tk, cfg).Train(ctx, trainingRows(), nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, SaveModel(ctx, model, path))

	loaded, err := LoadModel(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, model.Labels, loaded.Labels)
	assert.Equal(t, model.Coef, loaded.Coef)
	assert.Equal(t, model.Vectorizer.FeatureNames, loaded.Vectorizer.FeatureNames)

	enc, err := tk.Encode("We saw Everest")
	require.NoError(t, err)
	assert.Equal(t, model.Predict(enc), loaded.Predict(enc))
}

func TestValidate(t *testing.T) {
	m := &Model{Labels: Labels}
	assert.Error(t, m.Validate())

	dv := vectorizer.NewDictVectorizer(1)
	dv.Fit([]map[string]any{{"bias": true, "tok": "K2"}})
	m = NewModel(dv)
	require.NoError(t, m.Validate())

	m.Coef[1] = m.Coef[1][:1]
	assert.ErrorContains(t, m.Validate(), "weight row 1")
}

func TestBackwardMovesLogits(t *testing.T) {
	enc := tokenizer.Encoding{
		IDs:     []int{1},
		Tokens:  []string{"Denali"},
		WordIDs: []int{0},
		Special: []bool{false},
	}
	dv := vectorizer.NewDictVectorizer(1)
	dv.Fit(TokenFeatures(enc))
	m := NewModel(dv)
	xs := m.Featurize(enc)

	before := m.Logits(xs)[0]
	// gradient of a loss that wants class 1
	m.Backward(xs, [][]float64{{0.5, -0.5}}, 0.1)
	after := m.Logits(xs)[0]
	assert.Greater(t, after[1]-after[0], before[1]-before[0])

	m.Decay(0.1, 1)
	decayed := m.Logits(xs)[0]
	assert.Less(t, decayed[1]-decayed[0], after[1]-after[0])
}
