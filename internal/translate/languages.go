package translate

import (
	"fmt"
	"strings"
)

// Languages lists the supported translation languages. The gateway
// serves Mozambican Bantu languages plus the colonial and regional
// lingua francas they are most often translated against.
var Languages = []string{
	"Portuguese",
	"English",
	"Changana",
	"Chuwabu",
	"Lomwe",
	"Makhuwa",
	"Makonde",
	"Ndau",
	"Nyungwe",
	"Ronga",
	"Sena",
	"Shona",
	"Swahili",
	"Tswa",
	"Yao",
}

// ValidateLanguages checks both ends of a language pair against the
// supported list. The error text names the offending language and the
// supported set so embedding sites can self-diagnose.
func ValidateLanguages(sourceLang, targetLang string) error {
	if !isSupported(sourceLang) {
		return fmt.Errorf("invalid source language: '%s'. Supported languages are: %s", sourceLang, strings.Join(Languages, ", "))
	}
	if !isSupported(targetLang) {
		return fmt.Errorf("invalid target language: '%s'. Supported languages are: %s", targetLang, strings.Join(Languages, ", "))
	}
	return nil
}

func isSupported(lang string) bool {
	for _, l := range Languages {
		if l == lang {
			return true
		}
	}
	return false
}
