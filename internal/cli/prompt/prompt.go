// Package prompt provides interactive confirmation for gated actions.
package prompt

import (
	"github.com/AlecAivazis/survey/v2"

	"github.com/warden-dev/warden/internal/pipeline"
)

// SurveyConfirmer asks the user yes/no questions on the terminal using
// the survey library.
type SurveyConfirmer struct{}

// Confirm asks one question, defaulting to no.
func (SurveyConfirmer) Confirm(question string) (bool, error) {
	var answer bool
	err := survey.AskOne(&survey.Confirm{
		Message: question,
		Default: false,
	}, &answer)
	return answer, err
}

// NewConfirmer returns the confirmer matching the CLI flags: with
// assumeYes everything is approved without prompting.
func NewConfirmer(assumeYes bool) pipeline.Confirmer {
	if assumeYes {
		return pipeline.AutoApprove{Answer: true}
	}
	return SurveyConfirmer{}
}
