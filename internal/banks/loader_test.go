package banks

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certprep/quiz-service/internal/utils"
	"github.com/certprep/quiz-service/internal/validator"
)

const validBank = `{
	"bank_id": "pk0-sample",
	"title": "Sample Bank",
	"version": "1.0",
	"questions": [
		{
			"id": "q1",
			"type": "multiple_choice",
			"domain": "1",
			"question": "Which artifact authorizes the project?",
			"options": [
				{"key": "a", "text": "Charter"},
				{"key": "b", "text": "Schedule"}
			],
			"correct": "a"
		},
		{
			"id": "q2",
			"type": "fill_in",
			"domain": "2",
			"question": "Name the scope decomposition artifact.",
			"correct_answers": ["WBS"]
		}
	]
}`

const secondBank = `{
	"questions": [
		{
			"id": "q3",
			"type": "multiple_choice",
			"domain": "3",
			"question": "Pick one.",
			"options": [
				{"key": "a", "text": "A"},
				{"key": "b", "text": "B"}
			],
			"correct": "b"
		}
	]
}`

func writeBank(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newTestProvider(t *testing.T) (*FileProvider, string) {
	t.Helper()
	dir := t.TempDir()
	return NewFileProvider(dir, validator.New().Question(), utils.NewDevelopmentLogger()), dir
}

func TestFileProvider_LoadBank(t *testing.T) {
	provider, dir := newTestProvider(t)
	writeBank(t, dir, "sample.json", validBank)
	ctx := context.Background()

	bank, err := provider.LoadBank(ctx, "sample.json")
	require.NoError(t, err)
	assert.Equal(t, "pk0-sample", bank.BankID)
	assert.Len(t, bank.Questions, 2)
	assert.Equal(t, "pk0-sample", bank.Questions[0].BankID)

	t.Run("bank id defaults to file name", func(t *testing.T) {
		writeBank(t, dir, "extra.json", secondBank)
		bank, err := provider.LoadBank(ctx, "extra.json")
		require.NoError(t, err)
		assert.Equal(t, "extra", bank.BankID)
		assert.Equal(t, "extra", bank.Title)
	})

	t.Run("path traversal rejected", func(t *testing.T) {
		_, err := provider.LoadBank(ctx, "../sample.json")
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := provider.LoadBank(ctx, "nope.json")
		assert.Error(t, err)
	})

	t.Run("invalid question rejected at load", func(t *testing.T) {
		writeBank(t, dir, "broken.json", `{"questions":[{"id":"x","type":"multiple_choice","domain":"1","question":"?","options":[{"key":"a","text":"A"},{"key":"b","text":"B"}],"correct":"z"}]}`)
		_, err := provider.LoadBank(ctx, "broken.json")
		assert.Error(t, err)
	})
}

func TestFileProvider_ListBanks(t *testing.T) {
	provider, dir := newTestProvider(t)
	writeBank(t, dir, "b.json", secondBank)
	writeBank(t, dir, "a.json", validBank)
	writeBank(t, dir, "notes.txt", "not a bank")
	writeBank(t, dir, "bad.json", "{ not json")

	infos, err := provider.ListBanks(context.Background())
	require.NoError(t, err)

	// Sorted by file name, bad files skipped.
	require.Len(t, infos, 2)
	assert.Equal(t, "a.json", infos[0].File)
	assert.Equal(t, "b.json", infos[1].File)
	assert.Equal(t, 2, infos[0].QuestionCount)
	assert.Equal(t, 1, infos[0].TypeCounts["multiple_choice"])
	assert.Equal(t, 1, infos[0].DomainCounts["2"])
}

func TestFileProvider_ListBanks_MissingDir(t *testing.T) {
	provider := NewFileProvider("does-not-exist", validator.New().Question(), utils.NewDevelopmentLogger())

	infos, err := provider.ListBanks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestFileProvider_LoadQuestions(t *testing.T) {
	provider, dir := newTestProvider(t)
	writeBank(t, dir, "a.json", validBank)
	writeBank(t, dir, "b.json", secondBank)
	ctx := context.Background()

	questions, err := provider.LoadQuestions(ctx, []string{"a.json", "b.json"})
	require.NoError(t, err)
	assert.Len(t, questions, 3)

	t.Run("duplicate ids across banks rejected", func(t *testing.T) {
		writeBank(t, dir, "dup.json", validBank)
		_, err := provider.LoadQuestions(ctx, []string{"a.json", "dup.json"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "q1")
	})
}
