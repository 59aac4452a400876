package models

// Language язык контента.
type Language string

const (
	// LanguageEnglish английский, язык по умолчанию.
	LanguageEnglish Language = "en"
	// LanguageSpanish испанский.
	LanguageSpanish Language = "es"
)

// ParseLanguage возвращает поддерживаемый язык, неизвестные значения приводятся к en.
func ParseLanguage(s string) Language {
	switch Language(s) {
	case LanguageEnglish, LanguageSpanish:
		return Language(s)
	default:
		return LanguageEnglish
	}
}

// Jurisdiction регион, для которого подбирается справочник и фразы.
type Jurisdiction struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Jurisdictions фиксированный список регионов, доступных для выбора.
var Jurisdictions = []Jurisdiction{
	{Code: "CA", Name: "California"},
	{Code: "NY", Name: "New York"},
	{Code: "TX", Name: "Texas"},
	{Code: "FL", Name: "Florida"},
	{Code: "IL", Name: "Illinois"},
	{Code: "PA", Name: "Pennsylvania"},
	{Code: "OH", Name: "Ohio"},
	{Code: "GA", Name: "Georgia"},
	{Code: "NC", Name: "North Carolina"},
	{Code: "MI", Name: "Michigan"},
}

// IsJurisdiction сообщает, входит ли код в список доступных регионов.
func IsJurisdiction(code string) bool {
	for _, j := range Jurisdictions {
		if j.Code == code {
			return true
		}
	}
	return false
}

// GuideContent содержимое справочника.
type GuideContent struct {
	Overview       string   `json:"overview"`
	WhatToDo       []string `json:"what_to_do"`
	WhatNotToSay   []string `json:"what_not_to_say"`
	SpecificRights []string `json:"specific_rights"`
}

// Guide справочник о правах для юрисдикции.
type Guide struct {
	ID           string       `json:"id"`
	Jurisdiction string       `json:"jurisdiction"`
	Title        string       `json:"title"`
	Content      GuideContent `json:"content"`
	Language     Language     `json:"language"`
}
