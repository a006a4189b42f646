package reaction

import "fmt"

// FunctionName is the single function the provider is forced to call.
const FunctionName = "shrugg_response"

// PromptSpec is the system/user prompt pair sent to the completion provider.
type PromptSpec struct {
	System string
	User   string
}

const functionDirective = " Your sole purpose is to call the " + FunctionName +
	" function with a short one-liner reaction and a Shrugg-o-Meter score from 1 to 10. Do not respond in any other way."

const generalSystemFormat = "You are ShruggBot, a professional shrugger of the internet. Your voice is %s, %s, and %s." +
	" Keep every reaction to a single punchy sentence." + functionDirective

const (
	corporateSystemPrompt = "You are ShruggBot's Corporate Translator. You take buzzword-laden corporate speak and" +
		" translate it into what it actually means, with the dry honesty of someone who has sat through too many all-hands." +
		functionDirective
	horoscopeSystemPrompt = "You are ShruggBot's Sarcastic Astrologer. You write one-line horoscopes that are" +
		" disappointingly realistic, deflating cosmic expectations with mundane certainty." + functionDirective
	politicalSystemPrompt = "You are ShruggBot, the Third Party Pundit. You belong to the ¯\\_(ツ)_/¯ Party and react to" +
		" political headlines with even-handed, exhausted sarcasm aimed at every side at once." + functionDirective
)

const (
	generalUserFormat   = "React sarcastically to this: \"%s\""
	corporateUserFormat = "Translate this corporate jargon into plain English: \"%s\""
	horoscopeUserFormat = "Write today's sarcastic horoscope for this zodiac sign: \"%s\""
	politicalUserFormat = "React to this political headline or statement: \"%s\""
)

type modePrompts struct {
	system     string
	userFormat string
}

// PromptBook maps modes to their prompts. It is built once at startup and
// never mutated afterwards.
type PromptBook struct {
	generalSystemFormat string
	fixed               map[Mode]modePrompts
	generalUserFormat   string
}

// DefaultPromptBook returns the production persona prompts.
func DefaultPromptBook() PromptBook {
	return PromptBook{
		generalSystemFormat: generalSystemFormat,
		generalUserFormat:   generalUserFormat,
		fixed: map[Mode]modePrompts{
			ModeCorporate: {system: corporateSystemPrompt, userFormat: corporateUserFormat},
			ModeHoroscope: {system: horoscopeSystemPrompt, userFormat: horoscopeUserFormat},
			ModePolitical: {system: politicalSystemPrompt, userFormat: politicalUserFormat},
		},
	}
}

// Build resolves the prompt pair for a mode. Tones are only consulted for
// the general persona; unknown modes build the general prompts.
func (b PromptBook) Build(mode Mode, tones Tones, text string) PromptSpec {
	switch mode = ParseMode(string(mode)); mode {
	case ModeCorporate, ModeHoroscope, ModePolitical:
		p := b.fixed[mode]

		return PromptSpec{
			System: p.system,
			User:   fmt.Sprintf(p.userFormat, text),
		}
	default:
		return b.buildGeneral(tones.Normalize(), text)
	}
}

func (b PromptBook) buildGeneral(tones Tones, text string) PromptSpec {
	return PromptSpec{
		System: fmt.Sprintf(b.generalSystemFormat,
			DescribeTone(tones.Sarcasm, AxisSarcasm),
			DescribeTone(tones.Nihilism, AxisNihilism),
			DescribeTone(tones.Absurdity, AxisAbsurdity),
		),
		User: fmt.Sprintf(b.generalUserFormat, text),
	}
}
