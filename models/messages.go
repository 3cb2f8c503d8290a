package models

// EmptyQueryPrompt is returned for blank questions. No language can be detected
// from an empty string, so it is English only.
const EmptyQueryPrompt = "Please type a question about the Central Bank of Sri Lanka, its policies, rates or services."

// cannedAnswers holds the fixed answers for degraded and fatal outcomes, already
// written in each supported language so they never need a translation call.
var cannedAnswers = map[Reason]map[Language]string{
	ReasonUnreachable: {
		LanguageEnglish: "Sorry, the official Central Bank of Sri Lanka website could not be reached right now. Please try again in a few minutes.",
		LanguageSinhala: "සමාවන්න, ශ්‍රී ලංකා මහ බැංකුවේ නිල වෙබ් අඩවියට මේ මොහොතේ සම්බන්ධ විය නොහැක. කරුණාකර මිනිත්තු කිහිපයකින් නැවත උත්සාහ කරන්න.",
		LanguageTamil:   "மன்னிக்கவும், இலங்கை மத்திய வங்கியின் அதிகாரப்பூர்வ இணையதளத்தை தற்போது அணுக முடியவில்லை. சில நிமிடங்களில் மீண்டும் முயற்சிக்கவும்.",
	},
	ReasonInsufficient: {
		LanguageEnglish: "I couldn't find enough information on the official Central Bank of Sri Lanka website to answer that. Please try rephrasing your question.",
		LanguageSinhala: "ඔබගේ ප්‍රශ්නයට පිළිතුරු දීමට ප්‍රමාණවත් තොරතුරු ශ්‍රී ලංකා මහ බැංකුවේ නිල වෙබ් අඩවියෙන් සොයාගත නොහැකි විය. කරුණාකර ප්‍රශ්නය වෙනත් ආකාරයකින් අසන්න.",
		LanguageTamil:   "உங்கள் கேள்விக்கு பதிலளிக்க போதுமான தகவல்கள் இலங்கை மத்திய வங்கியின் அதிகாரப்பூர்வ இணையதளத்தில் கிடைக்கவில்லை. தயவுசெய்து கேள்வியை வேறு விதமாக கேட்கவும்.",
	},
	ReasonSynthesisFailed: {
		LanguageEnglish: "Sorry, something went wrong while preparing your answer. Please try again.",
		LanguageSinhala: "සමාවන්න, ඔබගේ පිළිතුර සකස් කිරීමේදී දෝෂයක් ඇති විය. කරුණාකර නැවත උත්සාහ කරන්න.",
		LanguageTamil:   "மன்னிக்கவும், உங்கள் பதிலைத் தயாரிக்கும்போது பிழை ஏற்பட்டது. தயவுசெய்து மீண்டும் முயற்சிக்கவும்.",
	},
}

// CannedAnswer returns the fixed answer for reason in lang. Unknown languages fall
// back to English; translation failures share the synthesis apology.
func CannedAnswer(reason Reason, lang Language) string {
	if reason == ReasonInputEmpty {
		return EmptyQueryPrompt
	}
	if reason == ReasonTranslationFailed {
		reason = ReasonSynthesisFailed
	}
	byLang, ok := cannedAnswers[reason]
	if !ok {
		byLang = cannedAnswers[ReasonSynthesisFailed]
	}
	if msg, ok := byLang[lang]; ok {
		return msg
	}
	return byLang[LanguageEnglish]
}
