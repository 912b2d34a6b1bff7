package services

// Prompt templates for each artifact kind. The JSON-producing prompts pin
// the exact shape the parser in generation_service.go validates against.

const notesSystemPrompt = `You are an expert study assistant. Generate detailed, well-structured study notes that cover ALL important content. Use markdown formatting for clarity and organization.`

const notesPromptTemplate = `Create comprehensive study notes for the subject "%s" following this structure:

## Document Overview
- Brief summary of the main topics covered
- Key learning objectives

## Detailed Notes
For each major section/topic:
- **Key Concepts**: clear definitions and explanations
- **Main Points**: detailed bullet points, bold for critical terms
- **Examples & Applications**: worked examples when present
- **Important Notes**: critical details, common pitfalls

## Key Takeaways
- Most important concepts to remember

Instructions:
1. Process the ENTIRE text below - don't skip any sections
2. Maintain the document's logical flow
3. Preserve exact formulas/equations when present
4. Markdown formatting is required

Document content:
"""%s"""`

const flashcardSystemPrompt = `You are a study assistant that produces flashcards as strict JSON. Reply with JSON only, no prose, no code fences.`

const flashcardPromptTemplate = `Create flashcards for the study material titled "%s" (subject: %s).

Guidelines for Effective Flashcards:
- One concept per card, front is a question or term, back is a concise answer
- Cover every key concept in the material
- Assign a category and a difficulty of "easy", "medium" or "hard"

Reply with exactly this JSON shape:
{"flashcards": [{"front": "...", "back": "...", "category": "...", "difficulty": "easy"}]}

Study material:
"""%s"""`

const quizSystemPrompt = `You are a study assistant that produces multiple-choice quiz questions as strict JSON. Reply with JSON only, no prose, no code fences.`

const quizPromptTemplate = `Create exactly 5 multiple-choice quiz questions for the study material titled "%s" (subject: %s).

Rules:
- Exactly 5 questions, each with exactly 4 options
- "correct_answer" is the zero-based index of the right option
- Include a short explanation and a difficulty of "easy", "medium" or "hard"

Reply with exactly this JSON shape:
{"questions": [{"question": "...", "options": ["...", "...", "...", "..."], "correct_answer": 0, "explanation": "...", "difficulty": "easy"}]}

Study material:
"""%s"""`

const qaSystemPrompt = `You are a study assistant answering questions based only on the provided study notes. If the notes do not contain the answer, say so. Use markdown formatting.`

const qaPromptTemplate = `Study notes:
"""%s"""

Question: %s

Answer the question using only the notes above.`
