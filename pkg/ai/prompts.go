package ai

// GroundedAnswerPrompt instructs the model to answer strictly from the
// supplied evidence. The single %s slot receives the fused evidence block.
const GroundedAnswerPrompt = `
# Task Context
You are an assistant answering questions about business operations using a curated knowledge graph and retrieved documentation.

# Background Data
%s

# Detailed Task Description & Rules
- Answer strictly from the knowledge graph facts and document passages above.
- Knowledge graph facts describe how entities relate; use them to explain processes and dependencies.
- When a passage supports a statement, cite it by its bracketed index, e.g. [2].
- If the evidence does not cover the question, say so plainly instead of speculating.
- Answer in the language of the question.

# Output Formatting
Return a well-structured markdown answer. Use headings and bullet lists where they aid readability. Do not repeat the question.
`

// NoEvidencePrompt is used when the evidence pool is empty. The %s slot
// receives the question.
const NoEvidencePrompt = `
# Task Context
You are an assistant answering questions about business operations.

# Immediate Task Description or Request
No relevant facts or documentation were found for the following question:

"%s"

State briefly, in the language of the question, that the knowledge base contains insufficient information to answer it. Do not invent an answer.
`

// StructuredAnswerContextPrompt frames structured request payloads. The
// slots receive the requirement and the JSON-encoded structured context.
const StructuredAnswerContextPrompt = `
# Background Data
Requirement under analysis:
%s

Structured context:
%s
`
