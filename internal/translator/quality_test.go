package translator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func kindsOf(warnings []Warning) []WarningKind {
	kinds := make([]WarningKind, 0, len(warnings))
	for _, w := range warnings {
		kinds = append(kinds, w.Kind)
	}
	return kinds
}

func TestValidate_CleanTelugu(t *testing.T) {
	warnings := Validate(map[string]string{
		"teluguTitle": "ప్రధాని కొత్త విధానం ప్రకటించారు",
	}, EnglishToTelugu)
	assert.Empty(t, warnings)
}

func TestValidate_TeluguTargetScriptMismatch(t *testing.T) {
	warnings := Validate(map[string]string{"teluguTitle": "PM"}, EnglishToTelugu)
	assert.Equal(t, []WarningKind{WarnScriptMismatch, WarnUntranslatedFragment}, kindsOf(warnings))
	assert.Equal(t, "teluguTitle", warnings[0].Field)
}

func TestValidate_UntranslatedFragment(t *testing.T) {
	warnings := Validate(map[string]string{"teluguTitle": "ప్రధాని Modi"}, EnglishToTelugu)
	assert.Equal(t, []WarningKind{WarnUntranslatedFragment}, kindsOf(warnings))
}

func TestValidate_PlaceholderAndEditorialNote(t *testing.T) {
	warnings := Validate(map[string]string{"teluguContent": "వార్త ??? [అనువాదకుడి గమనిక]"}, EnglishToTelugu)
	assert.Equal(t, []WarningKind{WarnPlaceholderLeft, WarnEditorialNoteLeft}, kindsOf(warnings))
	assert.Equal(t, "[అనువాదకుడి గమనిక]", warnings[1].Detail)
}

func TestValidate_EnglishTarget(t *testing.T) {
	warnings := Validate(map[string]string{"englishTitle": "హైదరాబాద్"}, TeluguToEnglish)
	assert.Equal(t, []WarningKind{WarnScriptMismatch, WarnUntranslatedFragment}, kindsOf(warnings))

	warnings = Validate(map[string]string{"englishTitle": "Rain in Hyderabad"}, TeluguToEnglish)
	assert.Empty(t, warnings)
}

func TestValidate_SortedFieldOrder(t *testing.T) {
	fields := map[string]string{
		"teluguTitle":   "Title",
		"teluguContent": "Body",
	}
	warnings := Validate(fields, EnglishToTelugu)
	if assert.NotEmpty(t, warnings) {
		assert.Equal(t, "teluguContent", warnings[0].Field)
		assert.Equal(t, "teluguTitle", warnings[len(warnings)-1].Field)
	}
	assert.Equal(t, warnings, Validate(fields, EnglishToTelugu))
}

func TestValidate_LanguageMismatch(t *testing.T) {
	text := "ప్రధానమంత్రి ఢిల్లీలో నూతన విద్యా విధానాన్ని ప్రారంభించారు"
	warnings := Validate(map[string]string{"englishContent": text}, TeluguToEnglish)
	assert.Equal(t, []WarningKind{WarnScriptMismatch, WarnUntranslatedFragment, WarnLanguageMismatch}, kindsOf(warnings))
}

func TestDetectLanguage_ShortTextSkipped(t *testing.T) {
	_, ok := detectLanguage("short text")
	assert.False(t, ok)
}
