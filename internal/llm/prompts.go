package llm

// Each prompt ends with the input it operates on appended verbatim.

const summarizerPrompt = `Extract the key concepts, ideas, and insights a reader should retain after reading the document.
Regroup them by type of concepts or ideas that fit together.
Ignore any content related to the structure or formatting of the document.
Focus exclusively on the core concepts that would interest the reader.
For each core concept, provide detailed insights, including any relevant statistics, facts, numbers, or references mentioned.
Ensure the summary is comprehensive and structured, highlighting all significant details that add depth to the core concepts.

Text to summarize:
`

const diagramPrompt = `I want to create a comprehensive Mermaid diagram from a document. The diagram should represent the document's structure, key concepts, and interconnections. Please ensure the output is in Mermaid syntax and follows this structure:

Hierarchy and Structure:

Use a root node to represent the overall topic or document title.
Create main branches for primary sections of the document.
Add sub-branches for subsections and break down detailed points as leaf nodes.

Contextual Details:

For each leaf node (end of a branch), add a separate node connected to it that includes a brief summary or explanation of its significance. These should serve as supporting explanations for someone unfamiliar with the content.

Styling and Formatting:

Use different styles to visually distinguish node levels:
Root node: prominent and central.
Main sections: second-level branches.
Subsections: third-level branches.
Contextual explanation nodes: separate, with lighter styling.

Flow and Connectivity:

Ensure nodes are logically connected to reflect the document flow of information.
Include line breaks (<br>) or concise bullet-style text in the nodes where appropriate for readability.

Output Requirements:

Provide clean and structured Mermaid syntax.
Ensure that the final diagram:
Is hierarchical and tree-like.
Highlights interconnections.
Includes explanation nodes for context.

Use and follow exactly the format as a structural reference for your output:

graph TD
    %% Root Node
    A[Root Topic or Document Title]

    %% Subgraph 1
    subgraph SG1[Main Section 1]
        B1[Subsection 1.1]
        B1 --> Context_B1[Context: Brief explanation or significance of Subsection 1.1.]
        B2[Subsection 1.2]
        B2 --> Context_B2[Context: Brief explanation or significance of Subsection 1.2.]
    end
    A --> SG1

Here's the document to analyze:
`

const extractPrompt = `From this mermaid diagram structure generated by a LLM, extract the mermaid diagram piece and output just that and nothing else.

Output requirements:
- Do not output explanations, introduction, conclusion or special characters.
- Do not add triple backticks or asterisks or quotation marks or any special characters.
- It has to start with "graph " followed by the rest of the mermaid diagram structure.

Here's the diagram structure to extract:
`

// Prompts returns the instruction text of each prompt by name
func Prompts() map[string]string {
	return map[string]string{
		"summarize": summarizerPrompt,
		"diagram":   diagramPrompt,
		"extract":   extractPrompt,
	}
}
