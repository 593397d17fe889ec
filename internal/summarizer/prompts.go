package summarizer

import (
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

// 模板使用 FString 语法，正文中不能出现字面量花括号

const summarizeSystem = `You are an assistant that summarizes YouTube videos from their transcripts.
Write a clear, well organized summary of the video titled "{title}".
Reply with a single JSON object only: each key is a section heading (for example Overview, Key Points, Conclusion)
and each value is the text of that section, either a string or an array of bullet strings.
Do not wrap the JSON in code fences and do not add any text outside of it.`

const summarizeUser = `Video title: {title}

Transcript (each line starts with its timestamp in seconds):
{text}`

const answerSystem = `You are an assistant answering follow-up questions about the YouTube video titled "{title}".
Answer the question directly and concisely in plain text. If the question cannot be answered from what is
known about the video, say so.`

const answerUser = `Video title: {title}

Question: {question}`

const translatePlainSystem = `You are a professional translator. Translate the user's text into {language} (language code {code}).
Keep the meaning, tone and formatting. Reply with the translation only.`

const translateSectionedSystem = `You are a professional translator. The user sends a JSON object whose keys are section headings
and whose values are section texts. Translate every heading and every text into {language} (language code {code}).
Keep the same number of sections in the same order. Reply with the translated JSON object only, without code fences.`

var (
	summarizeTemplate = prompt.FromMessages(schema.FString,
		schema.SystemMessage(summarizeSystem),
		schema.UserMessage(summarizeUser),
	)
	answerTemplate = prompt.FromMessages(schema.FString,
		schema.SystemMessage(answerSystem),
		schema.UserMessage(answerUser),
	)
	translatePlainTemplate = prompt.FromMessages(schema.FString,
		schema.SystemMessage(translatePlainSystem),
		schema.UserMessage("{summary}"),
	)
	translateSectionedTemplate = prompt.FromMessages(schema.FString,
		schema.SystemMessage(translateSectionedSystem),
		schema.UserMessage("{summary}"),
	)
)
