package summarizer

const shortPrompt = `You are a concise video content analyst. Based on the transcript below, write a SHORT summary of 50-100 words in %s.

Requirements:
- Capture the core topic and the single most important takeaway
- Plain prose, no headings or bullet points
- Do not mention that this is a transcript or a summary

Transcript:
---
%s
---`

const detailedPrompt = `You are an expert video content analyst. Based on the transcript below, write a DETAILED summary in %s using markdown.

Structure the summary into exactly these four sections:
## Overview
One paragraph describing the topic and purpose of the video.
## Key Points
Bullet points covering all main arguments or steps, in the order they appear.
## Details
Deeper explanation of the most important points, including caveats and practical tips mentioned.
## Conclusion
The takeaway the viewer should leave with.

Keep technical terms in their original language in parentheses where translation would lose meaning.

Transcript:
---
%s
---`

// languageNames maps caption track codes to the language the summary
// should be written in. Unknown codes fall back to English.
var languageNames = map[string]string{
	"pl": "Polish",
	"en": "English",
	"de": "German",
	"fr": "French",
	"es": "Spanish",
	"uk": "Ukrainian",
}

func languageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return "English"
}
