package main

import (
	"fmt"
	"strings"
)

const systemPrompt = "You are assistant that capable to work Confluent Cloud Kafka Clusters via Confluent MCP Server"

// summaryPrompt asks the model to read the last five minutes of source and
// publish a short PG-rated summary to sink.
func summaryPrompt(source, sink string) string {
	var b strings.Builder
	b.WriteString("You are a writer generating concise summaries for a live event LED display.\n")
	fmt.Fprintf(&b, "Consume messages for the last five minutes from Confluent Kafka topic '%s'. ", source)
	b.WriteString("Use the consume-messages MCP tool with the provided connection details. ")
	b.WriteString("Return the messages as JSON.\n")
	b.WriteString("Those are messages from audience observations of a moment that just happened:\n\n")
	b.WriteString("Generate a single concise up to 10 word summary that captures the essence of the events. ")
	b.WriteString("Do not use quotes or punctuation at the end.\n")
	b.WriteString("Avoid profanity, rude humor and bad words. Assume people are in a PG audience.\n")
	fmt.Fprintf(&b, "Publish the summary to `%s` topic in JSON format including `summary`, `timestamp` and `messageCount` fields.\n", sink)
	return b.String()
}
