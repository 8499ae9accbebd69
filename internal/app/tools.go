package app

import (
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// Tool names exposed to the conversational dispatcher.
const (
	ToolBookMeeting       = "book_meeting"
	ToolCancelMeeting     = "cancel_meeting"
	ToolListMeetings      = "list_meetings"
	ToolCheckAvailability = "check_availability"
)

var (
	emailProp = jsonschema.Definition{
		Type:        jsonschema.String,
		Description: "Email address of the attendee",
	}
	dateProp = jsonschema.Definition{
		Type:        jsonschema.String,
		Description: "Calendar date in YYYY-MM-DD format",
	}
	timeProp = jsonschema.Definition{
		Type:        jsonschema.String,
		Description: "Local wall-clock time in 24h HH:MM format",
	}
	timezoneProp = jsonschema.Definition{
		Type:        jsonschema.String,
		Description: "IANA time zone name, e.g. America/Los_Angeles. Defaults to UTC.",
	}
)

func function(name, description string, props map[string]jsonschema.Definition, required ...string) openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        name,
			Description: description,
			Parameters: jsonschema.Definition{
				Type:       jsonschema.Object,
				Properties: props,
				Required:   required,
			},
		},
	}
}

// Tools returns the function-call declarations the dispatcher offers to the model.
func Tools() []openai.Tool {
	return []openai.Tool{
		function(ToolBookMeeting,
			"Book a meeting with the account owner at a specific local date and time.",
			map[string]jsonschema.Definition{
				"email":    emailProp,
				"date":     dateProp,
				"time":     timeProp,
				"timezone": timezoneProp,
				"reason": {
					Type:        jsonschema.String,
					Description: "Short reason for the meeting, stored as booking notes",
				},
			},
			"email", "date", "time"),
		function(ToolCancelMeeting,
			"Cancel the attendee's meeting that starts at the given local date and time.",
			map[string]jsonschema.Definition{
				"email":    emailProp,
				"date":     dateProp,
				"time":     timeProp,
				"timezone": timezoneProp,
			},
			"email", "date", "time"),
		function(ToolListMeetings,
			"List the attendee's scheduled meetings, excluding cancelled ones.",
			map[string]jsonschema.Definition{
				"email":    emailProp,
				"timezone": timezoneProp,
			},
			"email"),
		function(ToolCheckAvailability,
			"Check whether a meeting can start at the given local date and time.",
			map[string]jsonschema.Definition{
				"date": dateProp,
				"time": timeProp,
				"duration": {
					Type:        jsonschema.Integer,
					Description: "Meeting length in minutes. Defaults to 30.",
				},
				"timezone": timezoneProp,
			},
			"date", "time"),
	}
}
