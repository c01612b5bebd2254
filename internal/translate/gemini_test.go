package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResultPlainJSON(t *testing.T) {
	res, err := parseResult(`{"translation":"Olá","pronunciation":"/oˈla/","sources":[{"title":"Dict","uri":"https://d.test"}]}`)
	require.NoError(t, err)
	assert.Equal(t, "Olá", res.Translation)
	require.NotNil(t, res.Pronunciation)
	assert.Equal(t, "/oˈla/", *res.Pronunciation)
	require.Len(t, res.Sources, 1)
	assert.Equal(t, "Dict", res.Sources[0].Title)
}

func TestParseResultStripsCodeFences(t *testing.T) {
	fenced := "```json\n{\"translation\":\"Olá\",\"pronunciation\":null,\"sources\":[]}\n```"
	res, err := parseResult(fenced)
	require.NoError(t, err)
	assert.Equal(t, "Olá", res.Translation)
	assert.Nil(t, res.Pronunciation)

	bare := "```\n{\"translation\":\"Olá\"}\n```"
	res, err = parseResult(bare)
	require.NoError(t, err)
	assert.Equal(t, "Olá", res.Translation)
}

func TestParseResultNullPronunciation(t *testing.T) {
	res, err := parseResult(`{"translation":"Translation not available","pronunciation":null,"sources":[]}`)
	require.NoError(t, err)
	assert.Nil(t, res.Pronunciation)
}

func TestParseResultNilSourcesBecomesEmptySlice(t *testing.T) {
	res, err := parseResult(`{"translation":"Olá"}`)
	require.NoError(t, err)
	require.NotNil(t, res.Sources)
	assert.Empty(t, res.Sources)
}

func TestParseResultRejectsMalformedOutput(t *testing.T) {
	for _, text := range []string{
		"I translated it for you: Olá",
		`{"translation":""}`,
		`{"unexpected":"shape"}`,
		"",
	} {
		_, err := parseResult(text)
		assert.Error(t, err, "input %q", text)
	}
}

func TestTranslateDisabledWithoutKey(t *testing.T) {
	svc := NewGeminiTranslator("", "gemini-2.5-flash")
	assert.False(t, svc.IsEnabled())
}

func TestValidateLanguages(t *testing.T) {
	assert.NoError(t, ValidateLanguages("English", "Makhuwa"))
	assert.NoError(t, ValidateLanguages("Changana", "Portuguese"))

	err := ValidateLanguages("Klingon", "Portuguese")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid source language: 'Klingon'")
	assert.Contains(t, err.Error(), "Supported languages are:")

	err = ValidateLanguages("English", "French")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid target language: 'French'")

	// Matching is exact, not case-folded.
	assert.Error(t, ValidateLanguages("english", "Portuguese"))
}
