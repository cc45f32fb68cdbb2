package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

type CurrentTimeInput struct {
	OffsetMinutes int `json:"offset_minutes,omitempty" jsonschema_description:"Optional minutes to add (negative for the past), e.g. -5 for five minutes ago."`
}

// CurrentTimeOutput is the JSON payload returned to the model.
type CurrentTimeOutput struct {
	UTC       string `json:"utc"`
	UnixMilli int64  `json:"unix_millis"`
}

var CurrentTimeDefinition = ToolDefinition{
	Name:        "current_time",
	Description: "Return the current UTC time (RFC3339 and unix milliseconds), optionally shifted by offset_minutes. Use it to compute time windows and timestamps.",
	InputSchema: CurrentTimeInputSchema,
	Function:    CurrentTime,
}

var CurrentTimeInputSchema = GenerateSchema[CurrentTimeInput]()

// now is swapped in tests.
var now = time.Now

func CurrentTime(_ context.Context, input json.RawMessage) (string, error) {
	var in CurrentTimeInput
	if len(input) > 0 {
		if err := json.Unmarshal(input, &in); err != nil {
			return "", fmt.Errorf("invalid current_time input: %w", err)
		}
	}
	t := now().UTC().Add(time.Duration(in.OffsetMinutes) * time.Minute)
	b, err := json.Marshal(CurrentTimeOutput{UTC: t.Format(time.RFC3339), UnixMilli: t.UnixMilli()})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
