package agent

import "fmt"

const systemPrompt = `You are an expert research assistant tasked with answering questions based on document content.`

// actorPrompt seeds a fresh conversation with the pruned outline, the
// question, and the running memory guideline.
func actorPrompt(outline, question, memory string) string {
	return fmt.Sprintf(`I've uploaded a document, and below is the outline in XML format:
%s

Can you answer the following question based on the content of the document?
<question>
%s
</question>

Follow these steps to answer the question:
1. As a first step, it might be a good idea to explore the document with the provided tools to familiarize yourself with its structure.
2. Locate the source in the document that can be used to answer the question. Then retrieve the full content of the source in the document with tools to examine it in detail.
3. Find the quote from the document that are most relevant to answering the question, and put it within the <quote></quote> tags. If there are no relevant quotes, write "No relevant quotes" instead.
4. When you gather enough information, return the final concise answer within the <final_result></final_result> tags, leave the explanation outside of the <final_result> tags.

Important guidelines:
- Be aware that the document content is obtained using OCR, so there may be scanning errors or typos.
- Before each step, wrap your thought process in <analysis></analysis> tags. This will help ensure a thorough and accurate analysis of the document and question.
%s`, outline, question, memory)
}

const reviewerPrompt = `Now, please validate the answer using the tools to retrieve the source of information that can be used to answer the question. Only use necessary tools. Return the final concise answer within the <final_result></final_result> tags, leave the explanation outside of the <final_result> tags.`

// reflectionPrompt asks for a guideline update bounded to one sentence
// of change.
func reflectionPrompt(memory string) string {
	return fmt.Sprintf(`Please update the reflection listed within the <guideline></guideline> tags below that can help you perform better next time. Provide the updated guidance within the <updated_guideline></updated_guideline> tags. Be concise and clear. Ensure the revised guideline deviates from the original by at most one sentence.

<guideline>%s</guideline>`, memory)
}
