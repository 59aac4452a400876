package script

import (
	"fmt"
	"strings"

	"github.com/magabrotheeeer/knowyourrights/internal/models"
)

// Scenario тип ситуации, для которой генерируется фраза.
type Scenario string

const (
	ScenarioTrafficStop   Scenario = "traffic-stop"
	ScenarioQuestioning   Scenario = "questioning"
	ScenarioSearchRequest Scenario = "search-request"
	ScenarioArrest        Scenario = "arrest"
	ScenarioStopAndFrisk  Scenario = "stop-and-frisk"
)

// Scenarios поддерживаемые ситуации в порядке показа.
var Scenarios = []Scenario{
	ScenarioTrafficStop,
	ScenarioQuestioning,
	ScenarioSearchRequest,
	ScenarioArrest,
	ScenarioStopAndFrisk,
}

// NotAvailable ответ для неизвестной ситуации.
const NotAvailable = "Script not available"

const scriptSystemPrompt = "You are a legal rights advisor helping people understand their rights during police interactions. Provide clear, concise, and legally accurate scripts that people can use to assert their constitutional rights. Always emphasize remaining calm and respectful."

const summarySystemPrompt = "You are a legal documentation assistant. Create clear, factual summaries of police interactions that can be used for legal reference. Focus on rights exercised, key events, and important details."

var descriptions = map[Scenario]string{
	ScenarioTrafficStop:   "during a traffic stop",
	ScenarioQuestioning:   "when being questioned by police",
	ScenarioSearchRequest: "when police request to search person or property",
	ScenarioArrest:        "during an arrest situation",
	ScenarioStopAndFrisk:  "during a stop and frisk encounter",
}

var fallback = map[Scenario]map[models.Language]string{
	ScenarioTrafficStop: {
		models.LanguageEnglish: `"Good evening, officer. I understand you've stopped me. Am I free to leave? I choose to remain silent and would like to speak with an attorney. I do not consent to any searches of my person or vehicle."`,
		models.LanguageSpanish: `"Buenas tardes, oficial. Entiendo que me ha detenido. ¿Soy libre de irme? Elijo permanecer en silencio y me gustaría hablar con un abogado. No consiento ningún registro de mi persona o vehículo."`,
	},
	ScenarioQuestioning: {
		models.LanguageEnglish: `"I am exercising my right to remain silent. I would like to speak with an attorney before answering any questions. Am I under arrest or am I free to leave?"`,
		models.LanguageSpanish: `"Estoy ejerciendo mi derecho a permanecer en silencio. Me gustaría hablar con un abogado antes de responder cualquier pregunta. ¿Estoy arrestado o soy libre de irme?"`,
	},
	ScenarioSearchRequest: {
		models.LanguageEnglish: `"I do not consent to any search of my person, belongings, or property. I am exercising my Fourth Amendment rights. Please state clearly if this is a lawful order or a request."`,
		models.LanguageSpanish: `"No consiento ningún registro de mi persona, pertenencias o propiedad. Estoy ejerciendo mis derechos de la Cuarta Enmienda. Por favor, declare claramente si esto es una orden legal o una solicitud."`,
	},
	ScenarioArrest: {
		models.LanguageEnglish: `"I am invoking my right to remain silent and my right to an attorney. I will not answer any questions without my lawyer present. Please ensure this interaction is being recorded."`,
		models.LanguageSpanish: `"Estoy invocando mi derecho a permanecer en silencio y mi derecho a un abogado. No responderé ninguna pregunta sin mi abogado presente. Por favor, asegúrese de que esta interacción esté siendo grabada."`,
	},
	ScenarioStopAndFrisk: {
		models.LanguageEnglish: `"Am I being detained or am I free to leave? I do not consent to this search. I am not resisting, but I do not consent. I want to speak with an attorney."`,
		models.LanguageSpanish: `"¿Estoy siendo detenido o soy libre de irme? No consiento este registro. No me estoy resistiendo, pero no consiento. Quiero hablar con un abogado."`,
	},
}

// IsScenario сообщает, поддерживается ли ситуация.
func IsScenario(s string) bool {
	_, ok := descriptions[Scenario(s)]
	return ok
}

// Fallback статическая фраза для ситуации и языка.
func Fallback(scenario Scenario, language models.Language) string {
	byLang, ok := fallback[scenario]
	if !ok {
		return NotAvailable
	}
	if text, ok := byLang[models.ParseLanguage(string(language))]; ok {
		return text
	}
	return byLang[models.LanguageEnglish]
}

func scriptPrompt(scenario Scenario, jurisdiction string, language models.Language, extra string) string {
	instruction := "Respond in English."
	if language == models.LanguageSpanish {
		instruction = "Respond in Spanish."
	}
	var additional string
	if strings.TrimSpace(extra) != "" {
		additional = "Additional context: " + extra
	}

	return strings.TrimSpace(fmt.Sprintf(`
Generate a clear, respectful script for someone to use %s in %s.

Requirements:
- Include assertion of constitutional rights (4th, 5th, 6th amendments)
- Emphasize remaining calm and respectful
- Be specific to %s laws where applicable
- Keep it concise and memorable
- Include key phrases like "Am I free to leave?" and "I do not consent to searches"

%s

%s

Provide only the script text, formatted as a direct quote.
`, descriptions[scenario], jurisdiction, jurisdiction, additional, instruction))
}

func durationText(seconds int) string {
	if seconds <= 0 {
		return "Not specified"
	}
	return fmt.Sprintf("%d seconds", seconds)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func summaryPrompt(rec models.RecordingRecord) string {
	return strings.TrimSpace(fmt.Sprintf(`
Create a factual summary of this police interaction for legal documentation:

Date/Time: %s
Location: %s
Duration: %s
Notes: %s

Please create a structured summary including:
1. Basic interaction details
2. Rights that were exercised
3. Key events or statements
4. Recommendations for follow-up

Keep it professional and factual.
`, rec.Timestamp.Format("2006-01-02T15:04:05Z07:00"), rec.Location, durationText(rec.Duration), orDefault(rec.Notes, "No additional notes")))
}

// FallbackSummary статическая карточка взаимодействия.
func FallbackSummary(rec models.RecordingRecord) string {
	return strings.TrimSpace(fmt.Sprintf(`
POLICE INTERACTION SUMMARY

Date/Time: %s
Location: %s
Duration: %s

RIGHTS EXERCISED:
• Right to remain silent was invoked
• Right to legal representation was requested
• Did not consent to searches
• Asked if free to leave

INTERACTION NOTES:
%s

RECOMMENDATIONS:
• Keep this documentation for your records
• Contact an attorney if you have concerns
• Report any rights violations to appropriate authorities
• Consider filing a complaint if misconduct occurred

This summary is for documentation purposes only and does not constitute legal advice.
`, rec.Timestamp.Format("2006-01-02T15:04:05Z07:00"), rec.Location, durationText(rec.Duration), orDefault(rec.Notes, "No additional notes provided")))
}
