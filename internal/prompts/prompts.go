// Package prompts builds the prompt text sent to the text-generation
// collaborator. Parsing of the replies lives with the services that issue
// them.
package prompts

import "fmt"

// QuestionSet asks for theoretical questions only: answers are spoken, so
// coding or writing tasks cannot be judged.
func QuestionSet(jobDescription string, numQuestions int) string {
	return fmt.Sprintf(`You are an expert interviewer. Based on the following job description, generate %d
relevant theoretical interview questions that will help assess the candidate's suitability for the role.
Ensure the questions evaluate conceptual understanding, problem-solving approach,
and domain knowledge, not coding or writing-based responses, as the candidate answers verbally.

Job Description:
%s

Return the questions in JSON format:
{
  "questions": [
    {"id": 1, "question": "...", "skill_area": "...", "difficulty": "easy/medium/hard"}
  ]
}`, numQuestions, jobDescription)
}

func AnswerAnalysis(jobDescription, question, answer string) string {
	return fmt.Sprintf(`As an expert interviewer, analyze the following answer provided by a candidate.

Job Description: %s
Question: %s
Candidate's Answer: %s

Provide a detailed analysis in JSON format:
{
  "relevance_score": 0-10,
  "clarity_score": 0-10,
  "depth_score": 0-10,
  "overall_score": 0-10,
  "strengths": ["..."],
  "weaknesses": ["..."],
  "feedback": "...",
  "follow_up_question": "..."
}`, jobDescription, question, answer)
}

// FinalReport receives the full interview transcript (question/response/
// analysis triples) serialized as JSON.
func FinalReport(interviewJSON string) string {
	return fmt.Sprintf(`Based on the interview data below, generate a comprehensive evaluation report and recommendations for the candidate.

Interview Data:
%s

Provide a detailed report in JSON format:
{
  "recommendation": "strong_hire/hire/maybe/no_hire",
  "summary": "...",
  "strengths": ["..."],
  "areas_for_improvement": ["..."],
  "detailed_feedback": "..."
}`, interviewJSON)
}

// ThankYou is spoken between questions (delivered through the speech
// adapter, mirroring the conversational flow of a live interview).
func ThankYou(feedback string) string {
	if feedback == "" {
		return "Thank you for your answer."
	}
	return "Thank you for your answer. " + feedback
}
