// Package prompts holds the fixed prompt text sent to the text-completion
// provider.
package prompts

// ResumeReviewInstruction prefixes the extracted resume text before it is
// sent for review.
const ResumeReviewInstruction = "Review the following resume and provide constructive feedback on its strength, weaknesses, and areas for improvement. Resume Content: \n\n "

// ResumeReviewPrompt is the synthesized prompt stored on resume-review
// creation rows in place of the raw document text.
const ResumeReviewPrompt = "Review the uploaded resume"

// RemoveBackgroundPrompt is the synthesized prompt stored on
// background-removal creation rows.
const RemoveBackgroundPrompt = "Remove Background from image"

// RemoveObjectPrompt builds the synthesized prompt stored on
// object-removal creation rows.
func RemoveObjectPrompt(object string) string {
	return "Remove " + object + " from image"
}
