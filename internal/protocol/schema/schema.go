package schema

import (
	"fmt"

	"github.com/andres-sumihe/swift-generator/internal/protocol/block"
	"github.com/rs/zerolog/log"
)

// Message type codes with known body requirements.
const (
	MT101 = "101"
	MT103 = "103"
	MT202 = "202"
	MT940 = "940"
	MT950 = "950"
)

// Requirement is one mandatory body tag. Alternatives lists tags that
// satisfy the same slot (option letters such as 32A/32B).
type Requirement struct {
	Tag          string
	Alternatives []string
}

type ValidationError struct {
	MessageType string
	Tag         string
	Reason      string
}

func (e ValidationError) Error() string {
	if e.Tag == "" {
		return fmt.Sprintf("schema: message_type=%s: %s", e.MessageType, e.Reason)
	}
	return fmt.Sprintf("schema: message_type=%s tag=%s: %s", e.MessageType, e.Tag, e.Reason)
}

var requirements = map[string][]Requirement{
	MT101: {
		{Tag: "20"},
		{Tag: "28D"},
		{Tag: "30"},
		{Tag: "21"},
		{Tag: "32B"},
		{Tag: "59", Alternatives: []string{"59A", "59F"}},
		{Tag: "71A"},
	},
	MT103: {
		{Tag: "20"},
		{Tag: "23B"},
		{Tag: "32A"},
		{Tag: "50K", Alternatives: []string{"50A", "50F"}},
		{Tag: "59", Alternatives: []string{"59A", "59F"}},
		{Tag: "71A"},
	},
	MT202: {
		{Tag: "20"},
		{Tag: "21"},
		{Tag: "32A"},
		{Tag: "58A", Alternatives: []string{"58D"}},
	},
	MT940: {
		{Tag: "20"},
		{Tag: "25"},
		{Tag: "28C"},
		{Tag: "60F", Alternatives: []string{"60M"}},
		{Tag: "62F", Alternatives: []string{"62M"}},
	},
	MT950: {
		{Tag: "20"},
		{Tag: "25"},
		{Tag: "28C"},
		{Tag: "60F", Alternatives: []string{"60M"}},
		{Tag: "62F", Alternatives: []string{"62M"}},
	},
}

// Known reports whether a message type has registered requirements.
func Known(messageType string) bool {
	_, ok := requirements[messageType]
	return ok
}

// Validate enforces required body tags for a message type.
// Unknown tags are ignored.
func Validate(messageType string, fields []block.Field) error {
	log.Debug().Str("message_type", messageType).Int("fields", len(fields)).Msg("schema.Validate")
	reqs, ok := requirements[messageType]
	if !ok {
		log.Error().Str("message_type", messageType).Msg("schema.Validate unknown message_type")
		return ValidationError{MessageType: messageType, Reason: "unknown message_type"}
	}
	for _, req := range reqs {
		if !present(fields, req) {
			log.Error().
				Str("message_type", messageType).
				Str("tag", req.Tag).
				Msg("schema.Validate missing tag")
			return ValidationError{MessageType: messageType, Tag: req.Tag, Reason: "missing required tag"}
		}
	}
	return nil
}

func present(fields []block.Field, req Requirement) bool {
	if f, ok := block.GetField(fields, req.Tag); ok && f.Value != "" {
		return true
	}
	for _, alt := range req.Alternatives {
		if f, ok := block.GetField(fields, alt); ok && f.Value != "" {
			return true
		}
	}
	return false
}
