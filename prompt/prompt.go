package prompt

import "fmt"

const EXTRACTION_PROMPT = `Task:

Extract frequently asked questions (FAQs) from the given markdown or context.
Read the markdown document from starting to end. Identify the question and you will get the answer.
Extract each question and the entire answer for the same question.
DO NOT include "Related Articles" sections or links to other FAQ questions in the extracted answer.
Identify and structure the data in JSON format with the following fields:

Expected output:

organisation_name: The name of the university or organization.
category: The category the FAQs belong to.
question: The FAQ question.
answer: A concise response extracted from the markdown or context.
links (if available): Any hyperlinks related to the FAQ, including the display text and URL only if available.

Ensure the extracted text remains accurate and preserves key details. If links are embedded within the answer, extract them separately in a structured format. Ignore or exclude any links that point to other FAQ questions or that appear in "Related Articles" sections.

Examples:
Example 1: Extracting FAQs
Input:

What financial aid is available?
Watch our financial aid overview video here to learn about which financial aid services we offer, how much tuition costs, and how to make college affordable.

Expected Output:

{
  "question": "What financial aid is available?",
  "answer": "Watch our financial aid overview video to learn about which financial aid services we offer, how much tuition costs, and how to make college affordable.",
  "links": [
    {
      "text": "Financial Aid Overview Video",
      "url": "https://www.nu.edu/admissions/financial-aid-and-scholarships/"
    }
  ]
}

context:
%s
`

// CreateExtractionPrompt builds the FAQ extraction prompt for a page's
// markdown content.
func CreateExtractionPrompt(context string) string {
	return fmt.Sprintf(EXTRACTION_PROMPT, context)
}
