package gemini

import "fmt"

func buildFitPrompt(resumeText, jobDescription string) string {
	return fmt.Sprintf(`Evaluate the following resume against the job description. For each criterion, provide a score out of 100:
- Relevance to the job role
- Skills and expertise
- Experience level
- Presentation and clarity

Use a positive and supportive scoring approach, emphasizing strengths and giving the benefit of the doubt for minor gaps. Aim to highlight areas where the candidate shows potential even if direct experience or skills are slightly lacking.

For the composite score, calculate it based on the following weightages:
- Relevance: 20%%
- Skills: 35%%
- Experience: 35%%
- Presentation: 10%%

Ensure that the composite score leans towards fit unless there are major discrepancies.

Resume:
%s

Job Description:
%s

Note:
Respond strictly in the following JSON format:
{
  "scores": {
    "relevance": <score>,
    "skills": <score>,
    "experience": <score>,
    "presentation": <score>
  },
  "compositeScore": <weighted score>,
  "recommendation": "<one concise suggestion if applicable>",
  "isFit": true/false
}`, resumeText, jobDescription)
}

func buildStatsPrompt(resumeText string) string {
	return fmt.Sprintf(`You are an expert career coach and resume evaluator. Based on the following resume, analyze the person's strengths, weaknesses, and provide numeric skill proficiency levels (out of 100) for technical skills mentioned in the resume. Provide the analysis based on the following criteria:

1. Relevance to the job market (how well the skills and experience fit common job roles).
2. Technical skills and expertise (assign a skill proficiency value out of 100 for each key technical skill).
3. Professional experience (years and quality of experience in relevant fields).
4. Presentation and clarity (how well-structured and clear the resume is).

Specifically provide the following:

- Strengths: A list of strengths based on the resume content.
- Weaknesses: A list of weaknesses or areas where improvement is needed.
- Skills and Proficiency: Assign a numeric value out of 100 for each relevant technical skill. For example, Python, React, Machine Learning, SQL, etc.

Resume Content:
%s

Your response format should be in JSON as follows:
{
  "strengths": ["list of strengths"],
  "weaknesses": ["list of weaknesses"],
  "skills": [
    {"skillName": "Python", "skillLevel": 85},
    {"skillName": "React", "skillLevel": 70}
  ]
}

Return ONLY the JSON object, no markdown formatting, no explanation.`, resumeText)
}

func buildPreparationPrompt(jobDescription string) string {
	return fmt.Sprintf(`Based on the following job description, generate a list of key skills, potential interview questions, and preparation tips specific to this role.

Job Description:
%s

Respond strictly in the following JSON format:
{
  "keySkills": ["list of key skills"],
  "interviewQuestions": ["list of likely interview questions"],
  "preparationTips": ["list of preparation tips"]
}

Return ONLY the JSON object, no markdown formatting, no explanation.`, jobDescription)
}
