package assembler

import (
	"fmt"

	"github.com/jonesrussell/blogsmith/internal/domain"
)

// generateFAQs produces the standard topic-templated FAQ block. The entries
// are deterministic so repeated assembly of the same draft does not churn
// the metadata.
func generateFAQs(topic string) []domain.FAQ {
	return []domain.FAQ{
		{
			Question: fmt.Sprintf("How long does recovery from %s usually take?", topic),
			Answer: fmt.Sprintf("Recovery timelines for %s vary with severity and individual factors. "+
				"A physiotherapist can assess your situation and give you a realistic timeframe "+
				"along with a structured plan to get there.", topic),
		},
		{
			Question: fmt.Sprintf("Do I need a referral to see a physiotherapist about %s?", topic),
			Answer: "No referral is needed for private physiotherapy. You can book an assessment " +
				"directly and be seen within days rather than waiting for an NHS pathway.",
		},
		{
			Question: fmt.Sprintf("Can I keep exercising while dealing with %s?", topic),
			Answer: fmt.Sprintf("Often yes, with the right modifications. Complete rest is rarely the "+
				"best approach for %s. A physiotherapist can show you which activities to adapt "+
				"and which to pause.", topic),
		},
		{
			Question: "What should I expect at my first physiotherapy appointment?",
			Answer: "Your first session includes a detailed assessment of your symptoms, movement and " +
				"goals, followed by a diagnosis, hands-on treatment where appropriate, and a plan " +
				"you can start straight away.",
		},
	}
}

// generateChecklist produces the action checklist appended to every article.
func generateChecklist(topic string) []string {
	return []string{
		fmt.Sprintf("Note when your %s symptoms started and what makes them better or worse", topic),
		"Keep gently moving within a comfortable range rather than resting completely",
		"Apply ice for the first 48 to 72 hours if the area is swollen or acutely painful",
		"Avoid pushing through sharp or worsening pain",
		"Book a physiotherapy assessment if symptoms persist beyond a week",
		"Follow your tailored exercise programme consistently once you have one",
	}
}
