package workflow

import ai "github.com/spetersoncode/maildraft"

// Structure guidance per intent for the draft writer.
var intentGuides = map[ai.Intent]string{
	ai.IntentOutreach: `Write a professional outreach email:
1. A personalized opening that references the recipient's work
2. A brief self-introduction
3. A clear value proposition
4. A specific ask or next step
Keep it concise (150-200 words) and action-oriented.`,
	ai.IntentFollowUp: `Write a follow-up email that:
1. References the previous interaction
2. Reminds the reader of the context
3. Adds new value or information
4. Ends with a clear call to action
Keep it brief (100-150 words) and not pushy.`,
	ai.IntentThankYou: `Write a genuine thank-you email that:
1. Opens with sincere gratitude
2. Names exactly what you are thankful for
3. Explains the impact it had
4. Offers reciprocity where appropriate
Make it warm and authentic (100-150 words).`,
	ai.IntentMeetingRequest: `Write a meeting request email that:
1. Gives brief context for the meeting
2. Proposes an agenda or topics
3. Offers specific time options
4. States the expected duration
Be respectful and organized (150-200 words).`,
	ai.IntentApology: `Write a sincere apology email that:
1. Takes clear responsibility
2. Acknowledges the impact
3. Explains briefly what happened, without excuses
4. Describes the corrective action
Be genuine and concise (150-200 words).`,
	ai.IntentInformationRequest: `Write an information request email that:
1. Opens politely
2. Gives context for the request
3. Lists the specific questions
4. Thanks the reader for their time
Be clear and respectful (150-200 words).`,
	ai.IntentStatusUpdate: `Write a status update email that:
1. States the headline status up front
2. Summarizes progress since the last update
3. Calls out risks or blockers
4. Lists next steps and owners
Be factual and skimmable (120-180 words).`,
	ai.IntentIntroduction: `Write an introduction email that:
1. Explains who is being introduced and why
2. Gives each party a short, relevant background
3. Suggests a concrete next step
Keep it short (100-150 words).`,
	ai.IntentNetworking: `Write a networking email that:
1. Explains how you found the recipient
2. Names a genuine shared interest
3. Makes a small, specific ask
Keep it light and brief (100-150 words).`,
	ai.IntentComplaint: `Write a complaint email that:
1. States the problem plainly with dates and details
2. Explains the impact
3. Requests a specific resolution and timeline
Stay firm and courteous (150-200 words).`,
}

const defaultGuide = `Write a clear, well-structured email with a greeting, the purpose up front,
the key points, a call to action and a closing.`

const writeSystem = `You are an expert email writer. Return only the email body, starting with the greeting.
Do not include a subject line, explanations or placeholder text in brackets.`

const styleSystem = `You are an expert at adjusting email tone while preserving the core message.
Rewrite the email in the target tone. Keep every fact, name, number and date. Keep a similar length.
Return only the rewritten email, no explanations.`

const personalizeSystem = `You are personalizing an email draft with the sender's details.
Only use profile fields that have values. Never produce placeholders such as "[Your Name]".
Keep the core message intact and end with exactly one closing and signature.
Return only the personalized email.`

const refineSystem = `You are an email refinement specialist. Polish the draft:
1. Remove duplicate signatures so only one closing block remains
2. Fix grammar, spelling and punctuation
3. Remove sentences that repeat the same information
Do not change the greeting, the recipient, key facts or dates. Do not add information.
Return only the refined email, with no explanations or markdown.`

func intentGuide(in ai.Intent) string {
	if g, ok := intentGuides[in]; ok {
		return g
	}
	return defaultGuide
}
